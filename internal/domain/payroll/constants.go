package payroll

const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusPaid     = "paid"

	DefaultTrendPeriods = 6
)
