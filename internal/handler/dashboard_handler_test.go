package handler_test

import (
	"net/http"
	"testing"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/testutil"
)

func TestDashboardStats(t *testing.T) {
	e, db, _ := testutil.SetupApp(t)
	cookie := testutil.Login(t, e)

	// Two extra opportunities so the stage breakdown has more than one row
	var customer model.Customer
	if err := db.Where("phone = ?", "012-3456789").First(&customer).Error; err != nil {
		t.Fatalf("failed to load seeded customer: %v", err)
	}
	extra := []model.Opportunity{
		{CustomerID: customer.ID, Title: "AC Servicing", Value: 5000, Stage: model.StageProspecting, Status: "active"},
		{CustomerID: customer.ID, Title: "Chiller Upgrade", Value: 90000, Stage: model.StageProspecting, Status: "active"},
	}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("failed to insert opportunities: %v", err)
	}

	rec := testutil.Request(e, http.MethodGet, "/api/dashboard/stats", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats struct {
		TotalCustomers       int64 `json:"totalCustomers"`
		TotalOpportunities   int64 `json:"totalOpportunities"`
		TotalActivities      int64 `json:"totalActivities"`
		OpportunitiesByStage []struct {
			Stage string `json:"stage"`
			Count int64  `json:"count"`
		} `json:"opportunitiesByStage"`
		RecentActivities []model.Activity    `json:"recentActivities"`
		TopOpportunities []model.Opportunity `json:"topOpportunities"`
	}
	testutil.Decode(t, rec, &stats)

	if stats.TotalCustomers != 1 {
		t.Errorf("expected 1 customer, got %d", stats.TotalCustomers)
	}
	if stats.TotalOpportunities != 3 {
		t.Errorf("expected 3 opportunities, got %d", stats.TotalOpportunities)
	}
	if stats.TotalActivities != 1 {
		t.Errorf("expected 1 activity, got %d", stats.TotalActivities)
	}

	byStage := make(map[string]int64)
	for _, row := range stats.OpportunitiesByStage {
		byStage[row.Stage] = row.Count
	}
	if byStage[model.StageProspecting] != 2 || byStage[model.StageProposal] != 1 {
		t.Errorf("unexpected stage breakdown: %v", byStage)
	}

	if len(stats.RecentActivities) != 1 {
		t.Errorf("expected 1 recent activity, got %d", len(stats.RecentActivities))
	}
	if len(stats.TopOpportunities) != 3 {
		t.Fatalf("expected 3 top opportunities, got %d", len(stats.TopOpportunities))
	}
	if stats.TopOpportunities[0].Value != 250000 {
		t.Errorf("expected highest value first, got %v", stats.TopOpportunities[0].Value)
	}
}
