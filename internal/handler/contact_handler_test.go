package handler_test

import (
	"net/http"
	"testing"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/testutil"
)

func TestContactListIncludesCustomerName(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodGet, "/api/contacts", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rows []struct {
		ContactName  string `json:"contact_name"`
		CustomerName string `json:"customer_name"`
	}
	testutil.Decode(t, rec, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected 1 seeded contact, got %d", len(rows))
	}
	if rows[0].ContactName != "Ahmad Zaki" {
		t.Errorf("unexpected contact name %q", rows[0].ContactName)
	}
	if rows[0].CustomerName != "Tech Solutions Inc." {
		t.Errorf("expected joined customer name, got %q", rows[0].CustomerName)
	}
}

func TestContactCreate(t *testing.T) {
	e, db, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	var customer model.Customer
	if err := db.Where("phone = ?", "012-3456789").First(&customer).Error; err != nil {
		t.Fatalf("failed to load seeded customer: %v", err)
	}

	body := `{"customer_id":` + uintString(customer.ID) + `,"contact_name":"Siti Aminah","position":"CTO","phone":"017-2223333"}`
	rec := testutil.Request(e, http.MethodPost, "/api/contacts", body, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	db.Model(&model.Contact{}).Where("contact_name = ?", "Siti Aminah").Count(&count)
	if count != 1 {
		t.Errorf("expected contact to be stored, found %d rows", count)
	}
}

func TestContactCreateUnknownCustomer(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/contacts",
		`{"customer_id":9999,"contact_name":"Nobody"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	testutil.Decode(t, rec, &resp)
	if resp["error"] != "Referenced customer does not exist" {
		t.Errorf("unexpected error %q", resp["error"])
	}
}

func TestContactCreateMissingFields(t *testing.T) {
	e, _, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	rec := testutil.Request(e, http.MethodPost, "/api/contacts", `{"contact_name":"No Customer"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
