package session

import (
	"testing"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore()

	sess := store.Create(7, "admin", time.Hour)
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}
	if sess.UserID != 7 || sess.Username != "admin" {
		t.Errorf("unexpected session: %+v", sess)
	}

	got, ok := store.Get(sess.ID)
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got.ID != sess.ID || got.Username != "admin" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore()

	if _, ok := store.Get("no-such-id"); ok {
		t.Error("expected lookup of an unknown id to fail")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()

	sess := store.Create(1, "admin", time.Hour)
	store.Delete(sess.ID)

	if _, ok := store.Get(sess.ID); ok {
		t.Error("expected deleted session to be gone")
	}

	// Deleting again is a no-op
	store.Delete(sess.ID)
	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d", store.Count())
	}
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore()

	sess := store.Create(1, "admin", -time.Second)
	if _, ok := store.Get(sess.ID); ok {
		t.Fatal("expected expired session to be rejected")
	}

	// Expired sessions are dropped on access
	if store.Count() != 0 {
		t.Errorf("expected expired session to be removed, store holds %d", store.Count())
	}
}

func TestStoreSweepExpired(t *testing.T) {
	store := NewStore()

	store.Create(1, "admin", time.Hour)
	store.Create(2, "staff1", -time.Minute)
	store.Create(3, "staff2", -time.Minute)

	if removed := store.SweepExpired(); removed != 2 {
		t.Errorf("expected 2 sessions swept, got %d", removed)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 session left, got %d", store.Count())
	}

	// Nothing left to sweep
	if removed := store.SweepExpired(); removed != 0 {
		t.Errorf("expected no sessions swept, got %d", removed)
	}
}

func TestStoreTracksActiveSessionsGauge(t *testing.T) {
	store := NewStore()
	base := promtestutil.ToFloat64(prometheus.ActiveSessionsGauge)

	live := store.Create(1, "admin", time.Hour)
	expired := store.Create(2, "staff1", -time.Minute)
	if got := promtestutil.ToFloat64(prometheus.ActiveSessionsGauge); got != base+2 {
		t.Errorf("expected gauge at %v after two logins, got %v", base+2, got)
	}

	// Lazy expiry on access decrements
	if _, ok := store.Get(expired.ID); ok {
		t.Fatal("expected expired session to be rejected")
	}
	if got := promtestutil.ToFloat64(prometheus.ActiveSessionsGauge); got != base+1 {
		t.Errorf("expected gauge at %v after expiry, got %v", base+1, got)
	}

	// Explicit removal decrements once, repeats are no-ops
	store.Delete(live.ID)
	store.Delete(live.ID)
	if got := promtestutil.ToFloat64(prometheus.ActiveSessionsGauge); got != base {
		t.Errorf("expected gauge back at %v, got %v", base, got)
	}
}

func TestStoreDistinctIDs(t *testing.T) {
	store := NewStore()

	a := store.Create(1, "admin", time.Hour)
	b := store.Create(1, "admin", time.Hour)
	if a.ID == b.ID {
		t.Error("two sessions for the same user must get distinct ids")
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Count())
	}
}
