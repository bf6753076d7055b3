package payroll

import "errors"

var (
	ErrNotFound      = errors.New("payroll not found")
	ErrLocked        = errors.New("payroll is no longer a draft")
	ErrNotApproved   = errors.New("payroll must be approved before payment")
	ErrEmpty         = errors.New("payroll has no calculations")
	ErrNoCalculation = errors.New("employee is not part of this payroll")
)
