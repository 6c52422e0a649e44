package models

import "time"

// DashboardSummary holds the figures shown on the dashboard cards
type DashboardSummary struct {
	InvoiceCount  int64     `json:"invoice_count"`
	CustomerCount int64     `json:"customer_count"`
	TotalPaid     int64     `json:"total_paid"`
	TotalPending  int64     `json:"total_pending"`
	GeneratedAt   time.Time `json:"generated_at"`
}
