package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/testutil"
)

func TestUserListOmitsPasswordHashes(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodGet, "/api/users", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("user listing leaked password material")
	}

	var users []model.User
	testutil.Decode(t, rec, &users)
	if len(users) != 1 {
		t.Fatalf("expected 1 seeded user, got %d", len(users))
	}
	if users[0].Username != "admin" || users[0].Role != "admin" {
		t.Errorf("unexpected seeded user: %+v", users[0])
	}
}

func TestUserCreateAndDelete(t *testing.T) {
	e, db, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/users",
		`{"username":"sales1","password":"sales123","full_name":"Sales One"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID uint `json:"id"`
	}
	testutil.Decode(t, rec, &created)

	var user model.User
	if err := db.First(&user, created.ID).Error; err != nil {
		t.Fatalf("failed to load created user: %v", err)
	}
	if user.Role != "staff" {
		t.Errorf("expected default role staff, got %q", user.Role)
	}
	if user.PasswordHash == "sales123" {
		t.Error("password was stored in the clear")
	}

	// The new account can log in
	testutil.LoginAs(t, e, "sales1", "sales123")

	rec = testutil.Request(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var count int64
	db.Model(&model.User{}).Where("id = ?", created.ID).Count(&count)
	if count != 0 {
		t.Error("expected user row to be gone")
	}
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	e, db, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/users",
		`{"username":"admin","password":"whatever"}`, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	testutil.Decode(t, rec, &resp)
	if resp["error"] != "Username already exists" {
		t.Errorf("unexpected error %q", resp["error"])
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 user after rejected insert, got %d", count)
	}
}

func TestUserDeleteAdminIsNoOp(t *testing.T) {
	e, db, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	var admin model.User
	if err := db.Where("username = ?", model.AdminUsername).First(&admin).Error; err != nil {
		t.Fatalf("failed to load admin: %v", err)
	}

	rec := testutil.Request(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	testutil.Decode(t, rec, &resp)
	if resp["message"] != "User deleted successfully" {
		t.Errorf("unexpected message %q", resp["message"])
	}

	// The row must still be there
	var count int64
	db.Model(&model.User{}).Where("id = ?", admin.ID).Count(&count)
	if count != 1 {
		t.Error("admin account was deleted")
	}
}

func TestUserDeleteNotFound(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodDelete, "/api/users/9999", "", cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
