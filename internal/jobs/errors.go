package jobs

import "errors"

var (
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrEstimateNotFound     = errors.New("estimate not found")
	ErrNoActiveEstimate     = errors.New("no estimate is open for editing")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrJobFinalized         = errors.New("job is paid or archived")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNoSession            = errors.New("no active session")
	ErrNoActuals            = errors.New("no field actuals reported")
	ErrNoFieldLog           = errors.New("work order has no field log")
	ErrInvalidPurchaseOrder = errors.New("purchase order has no valid lines")
)
