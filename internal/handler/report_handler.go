package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PipelineStageRow is one stage of the sales pipeline report
type PipelineStageRow struct {
	Stage      string  `json:"stage"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
	AvgValue   float64 `json:"avg_value"`
}

// chartSeries is a label/data pair for the summary charts
type chartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ReportHandler serves the reporting endpoints
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// SalesPipeline aggregates opportunities per stage in the fixed pipeline
// order, with any unrecognized stage sorting last
func (h *ReportHandler) SalesPipeline(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReport("sales_pipeline")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []PipelineStageRow
	err := h.db.Raw(`
		SELECT
			stage,
			COUNT(*) AS count,
			SUM(value) AS total_value,
			AVG(value) AS avg_value
		FROM opportunities
		GROUP BY stage
		ORDER BY
			CASE stage
				WHEN 'prospecting' THEN 1
				WHEN 'qualification' THEN 2
				WHEN 'proposal' THEN 3
				WHEN 'negotiation' THEN 4
				WHEN 'closed-won' THEN 5
				WHEN 'closed-lost' THEN 6
				ELSE 7
			END
	`).Scan(&rows).Error
	if err != nil {
		log.Error("Failed to compute sales pipeline report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute sales pipeline report"})
	}

	return c.JSON(http.StatusOK, rows)
}

// Summary computes the reports-page aggregates from the store. The period
// query parameter (days, default 30) bounds the activity figures.
func (h *ReportHandler) Summary(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReport("summary")

	periodDays, err := strconv.Atoi(c.QueryParam("period"))
	if err != nil || periodDays <= 0 {
		periodDays = 30
	}
	now := time.Now()
	cutoff := now.AddDate(0, 0, -periodDays)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var totalCustomers int64
	if err := h.db.Model(&model.Customer{}).Count(&totalCustomers).Error; err != nil {
		return h.fail(c, log, err)
	}

	// Session makes the open-opportunity scope reusable across queries
	openOpp := h.db.Model(&model.Opportunity{}).
		Where("status = ? AND stage NOT IN ?", "active", []string{model.StageClosedWon, model.StageClosedLost}).
		Session(&gorm.Session{})

	var openOpportunities int64
	if err := openOpp.Count(&openOpportunities).Error; err != nil {
		return h.fail(c, log, err)
	}

	var pipelineValue float64
	if err := openOpp.Select("COALESCE(SUM(value), 0)").Scan(&pipelineValue).Error; err != nil {
		return h.fail(c, log, err)
	}

	var pendingActivities int64
	err = h.db.Model(&model.Activity{}).
		Where("status = ? AND created_at >= ?", model.ActivityStatusPending, cutoff).
		Count(&pendingActivities).Error
	if err != nil {
		return h.fail(c, log, err)
	}

	var won, lost int64
	if err := h.db.Model(&model.Opportunity{}).Where("stage = ?", model.StageClosedWon).Count(&won).Error; err != nil {
		return h.fail(c, log, err)
	}
	if err := h.db.Model(&model.Opportunity{}).Where("stage = ?", model.StageClosedLost).Count(&lost).Error; err != nil {
		return h.fail(c, log, err)
	}
	var conversionRate float64
	if won+lost > 0 {
		conversionRate = float64(won) / float64(won+lost) * 100
	}

	var averageDealSize float64
	err = h.db.Model(&model.Opportunity{}).
		Where("stage = ?", model.StageClosedWon).
		Select("COALESCE(AVG(value), 0)").
		Scan(&averageDealSize).Error
	if err != nil {
		return h.fail(c, log, err)
	}

	var periodActivities, completedActivities int64
	if err := h.db.Model(&model.Activity{}).Where("created_at >= ?", cutoff).Count(&periodActivities).Error; err != nil {
		return h.fail(c, log, err)
	}
	err = h.db.Model(&model.Activity{}).
		Where("status = ? AND created_at >= ?", model.ActivityStatusCompleted, cutoff).
		Count(&completedActivities).Error
	if err != nil {
		return h.fail(c, log, err)
	}
	var activityCompletion float64
	if periodActivities > 0 {
		activityCompletion = float64(completedActivities) / float64(periodActivities) * 100
	}

	opportunityStages, err := h.stageSeries()
	if err != nil {
		return h.fail(c, log, err)
	}

	activityTypes, err := h.activityTypeSeries()
	if err != nil {
		return h.fail(c, log, err)
	}

	customerGrowth, err := h.customerGrowthSeries(now)
	if err != nil {
		return h.fail(c, log, err)
	}

	revenueForecast, err := h.revenueForecastSeries(now)
	if err != nil {
		return h.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalCustomers":     totalCustomers,
		"openOpportunities":  openOpportunities,
		"pendingActivities":  pendingActivities,
		"pipelineValue":      pipelineValue,
		"conversionRate":     conversionRate,
		"averageDealSize":    averageDealSize,
		"activityCompletion": activityCompletion,
		"opportunityStages":  opportunityStages,
		"customerGrowth":     customerGrowth,
		"activityTypes":      activityTypes,
		"revenueForecast":    revenueForecast,
	})
}

// stageDisplay maps the stored stage values to chart labels.
var stageDisplay = map[string]string{
	model.StageProspecting:   "Prospecting",
	model.StageQualification: "Qualification",
	model.StageProposal:      "Proposal",
	model.StageNegotiation:   "Negotiation",
	model.StageClosedWon:     "Closed Won",
	model.StageClosedLost:    "Closed Lost",
}

// activityTypeDisplay maps the stored activity types to chart labels.
var activityTypeDisplay = map[string]string{
	model.ActivityTypeCall:    "Call",
	model.ActivityTypeMeeting: "Meeting",
	model.ActivityTypeEmail:   "Email",
	model.ActivityTypeTask:    "Task",
}

func (h *ReportHandler) stageSeries() (chartSeries, error) {
	var rows []StageCount
	err := h.db.Model(&model.Opportunity{}).
		Select("stage, COUNT(*) AS count").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return chartSeries{}, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Stage] = row.Count
	}

	series := chartSeries{}
	for _, stage := range model.StageOrder {
		series.Labels = append(series.Labels, stageDisplay[stage])
		series.Data = append(series.Data, float64(counts[stage]))
	}
	return series, nil
}

func (h *ReportHandler) activityTypeSeries() (chartSeries, error) {
	type typeCount struct {
		Type  string
		Count int64
	}
	var rows []typeCount
	err := h.db.Model(&model.Activity{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return chartSeries{}, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}

	series := chartSeries{}
	for _, t := range []string{model.ActivityTypeCall, model.ActivityTypeMeeting, model.ActivityTypeEmail, model.ActivityTypeTask} {
		series.Labels = append(series.Labels, activityTypeDisplay[t])
		series.Data = append(series.Data, float64(counts[t]))
	}
	return series, nil
}

// customerGrowthSeries returns the cumulative customer count at the end
// of each of the last six months
func (h *ReportHandler) customerGrowthSeries(now time.Time) (chartSeries, error) {
	series := chartSeries{}
	for i := 5; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		endOfMonth := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

		var count int64
		err := h.db.Model(&model.Customer{}).
			Where("created_at < ?", endOfMonth).
			Count(&count).Error
		if err != nil {
			return chartSeries{}, err
		}

		series.Labels = append(series.Labels, month.Format("Jan"))
		series.Data = append(series.Data, float64(count))
	}
	return series, nil
}

// revenueForecastSeries sums open opportunity value by expected close
// quarter, starting from the current quarter
func (h *ReportHandler) revenueForecastSeries(now time.Time) (chartSeries, error) {
	quarterStart := time.Date(now.Year(), time.Month((int(now.Month())-1)/3*3+1), 1, 0, 0, 0, 0, time.UTC)

	series := chartSeries{}
	for i := 0; i < 4; i++ {
		start := quarterStart.AddDate(0, 3*i, 0)
		end := start.AddDate(0, 3, 0)

		var total float64
		err := h.db.Model(&model.Opportunity{}).
			Where("status = ? AND stage NOT IN ?", "active", []string{model.StageClosedWon, model.StageClosedLost}).
			Where("expected_close_date >= ? AND expected_close_date < ?",
				start.Format("2006-01-02"), end.Format("2006-01-02")).
			Select("COALESCE(SUM(value), 0)").
			Scan(&total).Error
		if err != nil {
			return chartSeries{}, err
		}

		series.Labels = append(series.Labels, fmt.Sprintf("Q%d", (int(start.Month())-1)/3+1))
		series.Data = append(series.Data, total)
	}
	return series, nil
}

func (h *ReportHandler) fail(c echo.Context, log *zap.Logger, err error) error {
	log.Error("Failed to compute reports summary", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute reports summary"})
}
