package domain

import "errors"

var (
	// ErrInvalidInput marks a malformed request or context. Always fatal.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicatePeriod marks an attempt to create a second payslip for the
	// same employee and month. Reported as a skipped month, not a failure.
	ErrDuplicatePeriod = errors.New("payslip already exists for period")
	// ErrInternalConsistency marks a computed result that breaks the
	// netToPay <= netBeforeTax <= gross <= employerCost chain. Always fatal.
	ErrInternalConsistency = errors.New("internal consistency violation")
	// ErrPersistenceFailure marks a store write that did not go through.
	ErrPersistenceFailure = errors.New("persistence failure")

	ErrEmployeeNotFound = errors.New("employee not found")
	ErrPayslipNotFound  = errors.New("payslip not found")
)
