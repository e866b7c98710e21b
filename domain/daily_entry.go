package domain

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var (
	MessageSuccessSubmitAuditLog  = "audit log saved successfully"
	MessageSuccessCloseoutWaste   = "waste closeout logged successfully"
	MessageSuccessGetHistory      = "history retrieved successfully"
	MessageSuccessGetAuditDefault = "audit defaults retrieved successfully"
	MessageSuccessGetDashboard    = "dashboard statistics retrieved successfully"
	MessageSuccessExportHistory   = "history exported successfully"
	MessageSuccessWasteAnalysis   = "waste analysis generated successfully"
	MessageFailedSubmitAuditLog   = "failed to save audit log"
	MessageFailedCloseoutWaste    = "failed to log waste closeout"
	MessageFailedGetHistory       = "failed to retrieve history"
	MessageFailedGetAuditDefault  = "failed to retrieve audit defaults"
	MessageFailedGetDashboard     = "failed to retrieve dashboard statistics"
	MessageFailedExportHistory    = "failed to export history"
	MessageFailedWasteAnalysis    = "failed to generate waste analysis"

	ErrInvalidDailyEntry = errors.New("invalid daily entry")
	ErrInvalidEntryDate  = errors.New("invalid entry date")
	ErrNoHistory         = errors.New("no history available")
)

type (
	// DailyEntry is an immutable ledger record. Build it with NewDailyEntry so that
	// waste always equals prepared minus consumed.
	DailyEntry struct {
		ID                  string `json:"id"`
		Date                string `json:"date"`
		MenuItemID          string `json:"menuItemId"`
		Prepared            int    `json:"prepared"`
		Consumed            int    `json:"consumed"`
		Waste               int    `json:"waste"`
		PreOrders           int    `json:"preOrders"`
		DayOfWeek           string `json:"dayOfWeek"`
		IsHoliday           bool   `json:"isHoliday"`
		QualitativeFeedback string `json:"qualitativeFeedback,omitempty"`
	}

	AuditLogRequest struct {
		Date                string `json:"date" validate:"required,datetime=2006-01-02"`
		MenuItemID          string `json:"menuItemId" validate:"required"`
		Prepared            *int   `json:"prepared" validate:"required,min=0"`
		Consumed            *int   `json:"consumed" validate:"required,min=0"`
		IsHoliday           bool   `json:"isHoliday"`
		QualitativeFeedback string `json:"qualitativeFeedback" validate:"max=500"`
	}

	WasteCloseoutRequest struct {
		MenuItemID string `json:"menuItemId" validate:"required"`
		Waste      *int   `json:"waste" validate:"required,min=0"`
	}

	AuditDefaultsResponse struct {
		MenuItemID string `json:"menuItemId"`
		Prepared   int    `json:"prepared"`
		FromPlan   bool   `json:"fromPlan"`
	}

	HistoryFilter struct {
		MenuItemID string
		From       string
		To         string
	}

	DashboardStatsResponse struct {
		TotalWaste       int          `json:"totalWaste"`
		TotalPrepared    int          `json:"totalPrepared"`
		TotalConsumed    int          `json:"totalConsumed"`
		AvgEfficiency    float64      `json:"avgEfficiency"`
		CarbonSavedGrams int          `json:"carbonSavedGrams"`
		PendingOrders    int          `json:"pendingOrders"`
		LatestEntries    []DailyEntry `json:"latestEntries"`
	}

	ExportHistoryResponse struct {
		FileName string `json:"fileName"`
		URL      string `json:"url"`
		Rows     int    `json:"rows"`
	}

	WasteAnalysisResponse struct {
		Strategy string `json:"strategy"`
	}
)

// NewDailyEntry validates the triple and derives waste and weekday from its inputs.
func NewDailyEntry(id, date, menuItemID string, prepared, consumed, preOrders int, isHoliday bool, feedback string) (DailyEntry, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return DailyEntry{}, fmt.Errorf("%w: %q", ErrInvalidEntryDate, date)
	}
	if menuItemID == "" {
		return DailyEntry{}, fmt.Errorf("%w: missing menu item", ErrInvalidDailyEntry)
	}
	if prepared < 0 || consumed < 0 || preOrders < 0 {
		return DailyEntry{}, fmt.Errorf("%w: quantities must not be negative", ErrInvalidDailyEntry)
	}
	if consumed > prepared {
		return DailyEntry{}, fmt.Errorf("%w: consumed %d exceeds prepared %d", ErrInvalidDailyEntry, consumed, prepared)
	}

	return DailyEntry{
		ID:                  id,
		Date:                date,
		MenuItemID:          menuItemID,
		Prepared:            prepared,
		Consumed:            consumed,
		Waste:               prepared - consumed,
		PreOrders:           preOrders,
		DayOfWeek:           day.Weekday().String(),
		IsHoliday:           isHoliday,
		QualitativeFeedback: feedback,
	}, nil
}

// Efficiency is the consumed share of prepared portions, in percent.
func (e DailyEntry) Efficiency() float64 {
	if e.Prepared <= 0 {
		return 0
	}
	return float64(e.Consumed) / float64(e.Prepared) * 100
}
