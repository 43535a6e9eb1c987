package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrConfigurationMissing   = errors.New("no fee schedule configured for this student")
	ErrSponsoredRestricted    = errors.New("sponsored students may only pay the registration installment")
	ErrRegistrationPartialPay = errors.New("registration installment must be paid in full")
	ErrInvalidAmount          = errors.New("invalid payment amount")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrStudentNotFound        = errors.New("student not found")
)

// BusinessError represents a billing policy error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeConfigurationMissing       = "CONFIGURATION_MISSING"
	ErrCodeSponsoredPaymentRestricted = "SPONSORED_PAYMENT_RESTRICTED"
	ErrCodeRegistrationMustBePaidFull = "REGISTRATION_MUST_BE_PAID_IN_FULL"
	ErrCodeInvalidAmount              = "INVALID_AMOUNT"
	ErrCodePaymentNotFound            = "PAYMENT_NOT_FOUND"
	ErrCodeStudentNotFound            = "STUDENT_NOT_FOUND"
	ErrCodeStoreError                 = "STORE_ERROR"
)

// Wrap common errors with billing context

// WrapConfigurationMissing flags a student whose level/year has no fee
// schedule yet. Not a bug: the student is simply not billable.
func WrapConfigurationMissing(studentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConfigurationMissing,
		fmt.Sprintf("no fee schedule resolvable for student %s", studentID),
		ErrConfigurationMissing,
	)
}

func WrapSponsoredPaymentRestricted(studentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeSponsoredPaymentRestricted,
		fmt.Sprintf("student %s is sponsored and may only pay the registration installment", studentID),
		ErrSponsoredRestricted,
	)
}

func WrapRegistrationMustBePaidInFull(remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodeRegistrationMustBePaidFull,
		fmt.Sprintf("registration balance of %s cannot be partially paid", remaining),
		ErrRegistrationPartialPay,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("invalid payment amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapStudentNotFound(studentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeStudentNotFound,
		fmt.Sprintf("student with ID %s not found", studentID),
		ErrStudentNotFound,
	)
}

func WrapStoreError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStoreError,
		"record store operation failed",
		err,
	)
}

// CodeOf extracts the business error code, or empty when err is not a
// BusinessError.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
