package domain

import "time"

// SyncStatus is the outcome of one product in a sync run
type SyncStatus string

const (
	SyncStatusCreated SyncStatus = "created"
	SyncStatusSkipped SyncStatus = "skipped"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncStage names the step of a product synchronization
type SyncStage string

const (
	SyncStageLookup      SyncStage = "lookup"
	SyncStageTradeItems  SyncStage = "trade_items"
	SyncStageVariants    SyncStage = "variants"
	SyncStageAttachments SyncStage = "attachments"
	SyncStageCreate      SyncStage = "create"
	SyncStageImages      SyncStage = "images"
)

// ProductOutcome is the per-product line of a SyncReport
type ProductOutcome struct {
	ProductNumber string     `json:"product_number"`
	Status        SyncStatus `json:"status"`
	StorefrontID  uint64     `json:"storefront_id,omitempty"`
	Variants      int        `json:"variants"`
	Images        int        `json:"images"`
	Stage         SyncStage  `json:"stage,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// SyncReport summarises one sync run
type SyncReport struct {
	SellerNumber string           `json:"seller_number"`
	Shop         string           `json:"shop"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
	Created      int              `json:"created"`
	Skipped      int              `json:"skipped"`
	Failed       int              `json:"failed"`
	Outcomes     []ProductOutcome `json:"outcomes"`
}

// Record appends an outcome and updates the counters.
func (r *SyncReport) Record(outcome ProductOutcome) {
	switch outcome.Status {
	case SyncStatusCreated:
		r.Created++
	case SyncStatusSkipped:
		r.Skipped++
	case SyncStatusFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, outcome)
}

// Failures returns the outcomes that failed.
func (r *SyncReport) Failures() []ProductOutcome {
	var failed []ProductOutcome
	for _, o := range r.Outcomes {
		if o.Status == SyncStatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}
