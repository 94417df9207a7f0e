package domain

import "time"

// DashboardSummary aggregates finalized counts for a church.
type DashboardSummary struct {
	OpenBatches     int
	ClosedBatches   int
	LastFinalized   *Batch
	YearToDateCents int64
	YearCashCents   int64
	YearCheckCents  int64
	Trend           []BatchTrendPoint
}

// BatchTrendPoint is one finalized batch total in the trend chart.
type BatchTrendPoint struct {
	BatchID    string
	Name       string
	CountDate  time.Time
	TotalCents int64
}
