package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/session"
	"github.com/annaimjamhari/aircond-crm-app/internal/testutil"
	"github.com/annaimjamhari/aircond-crm-app/pkg/sessiontoken"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginSuccess(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)

	rec := testutil.Request(e, http.MethodPost, "/login", `{"username":"admin","password":"admin123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		Redirect string `json:"redirect"`
	}
	testutil.Decode(t, rec, &resp)
	if !resp.Success {
		t.Error("expected success to be true")
	}
	if resp.Redirect != "/dashboard" {
		t.Errorf("expected redirect /dashboard, got %q", resp.Redirect)
	}

	var gotCookie bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName && cookie.Value != "" {
			gotCookie = true
		}
	}
	if !gotCookie {
		t.Error("expected a session cookie to be set")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`},
		{"unknown user", `{"username":"ghost","password":"admin123"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.Request(e, http.MethodPost, "/login", tc.body, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}

			var resp map[string]string
			testutil.Decode(t, rec, &resp)
			if resp["error"] != "Invalid credentials" {
				t.Errorf("expected error %q, got %q", "Invalid credentials", resp["error"])
			}
		})
	}
}

func TestPageRedirectsWhenUnauthenticated(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)

	rec := testutil.Request(e, http.MethodGet, "/dashboard", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestAPIReturns401WhenUnauthenticated(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)

	rec := testutil.Request(e, http.MethodGet, "/api/customers", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp map[string]string
	testutil.Decode(t, rec, &resp)
	if resp["error"] != "authentication required" {
		t.Errorf("expected error %q, got %q", "authentication required", resp["error"])
	}
}

func TestRootRedirectsToLogin(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)

	rec := testutil.Request(e, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	e, _, sessions := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	if sessions.Count() != 1 {
		t.Fatalf("expected 1 live session, got %d", sessions.Count())
	}

	rec := testutil.Request(e, http.MethodGet, "/logout", "", cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 from logout, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	if sessions.Count() != 0 {
		t.Errorf("expected session store to be empty after logout, got %d", sessions.Count())
	}

	// A replayed cookie still carries a valid signature but must be rejected
	rec = testutil.Request(e, http.MethodGet, "/api/customers", "", cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for replayed cookie, got %d", rec.Code)
	}
}

func TestExpiredSessionIsDroppedFromStore(t *testing.T) {
	e, _, sessions := testutil.SetupApp(t)

	sess := sessions.Create(1, "admin", -time.Minute)
	token, err := sessiontoken.Generate(sess.ID, sess.UserID, sess.Username, sess.ExpiresAt)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	cookie := &http.Cookie{Name: session.DefaultCookieName, Value: token}

	rec := testutil.Request(e, http.MethodGet, "/api/customers", "", cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", rec.Code)
	}

	// Rejecting the request is not enough: the stale record must go too,
	// not linger until an explicit logout that will never come
	if sessions.Count() != 0 {
		t.Errorf("expected expired session to be removed from the store, %d left", sessions.Count())
	}
}

func TestLoginPageRedirectsWhenAuthenticated(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodGet, "/login", "", cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	e, db, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/settings/change-password",
		`{"current_password":"wrong","new_password":"newpass456"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	testutil.Decode(t, rec, &resp)
	if resp["error"] != "Current password is incorrect" {
		t.Errorf("expected error %q, got %q", "Current password is incorrect", resp["error"])
	}

	// The stored hash must be untouched
	var admin model.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("failed to load admin: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")); err != nil {
		t.Error("admin password hash changed after a rejected request")
	}
}

func TestChangePassword(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/settings/change-password",
		`{"current_password":"admin123","new_password":"newpass456"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = testutil.Request(e, http.MethodPost, "/login", `{"username":"admin","password":"admin123"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected old password to be rejected, got %d", rec.Code)
	}

	testutil.LoginAs(t, e, "admin", "newpass456")
}

func TestChangePasswordRequiresNewPassword(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/settings/change-password",
		`{"current_password":"admin123","new_password":""}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
