package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/server"
	"github.com/annaimjamhari/aircond-crm-app/internal/session"
	"github.com/annaimjamhari/aircond-crm-app/pkg/config"
	"github.com/annaimjamhari/aircond-crm-app/pkg/database"
	"github.com/annaimjamhari/aircond-crm-app/pkg/sessiontoken"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory sqlite database with the full
// schema migrated and the bootstrap data seeded
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := testConfig()
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = database.MigrateModels(db,
		&model.User{},
		&model.Customer{},
		&model.Contact{},
		&model.Opportunity{},
		&model.Activity{},
		&model.Setting{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	if err := database.Seed(db); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	return db
}

// SetupApp wires a complete application over a fresh test database
func SetupApp(t *testing.T) (*echo.Echo, *gorm.DB, *session.Store) {
	t.Helper()

	cfg := testConfig()
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = database.MigrateModels(db,
		&model.User{},
		&model.Customer{},
		&model.Contact{},
		&model.Opportunity{},
		&model.Activity{},
		&model.Setting{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	if err := database.Seed(db); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	sessiontoken.Initialize(&cfg.Session)
	sessions := session.NewStore()
	return server.New(cfg, db, sessions), db, sessions
}

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DBConfig{
			Driver:   "sqlite",
			Path:     fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
			LogLevel: gormlogger.Silent,
		},
		Server: config.ServerConfig{
			Port:      "0",
			Env:       "test",
			StaticDir: "views",
		},
		Session: config.SessionConfig{
			SigningKey:      "test-signing-key",
			ExpirationHours: 24,
		},
		Log: config.LogConfig{
			Level: "error",
		},
	}
}

// Login authenticates as the seeded admin and returns the session cookie
func Login(t *testing.T, e *echo.Echo) *http.Cookie {
	t.Helper()
	return LoginAs(t, e, "admin", "admin123")
}

// LoginAs authenticates with the given credentials and returns the session cookie
func LoginAs(t *testing.T, e *echo.Echo, username, password string) *http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := Request(e, http.MethodPost, "/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}

	t.Fatal("login response did not set a session cookie")
	return nil
}

// Request performs a JSON request against the app and returns the recorder
func Request(e *echo.Echo, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a JSON response body into out
func Decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
