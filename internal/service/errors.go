package service

import "errors"

// Error kinds. Every service error wraps exactly one of these so the HTTP
// layer can map it to a status code with errors.Is.
var (
	// ErrNotFound is returned when a resource is missing or belongs to another organization
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrInvalidState is returned when an operation is not allowed in the current state
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

var (
	ErrOrganizationNotFound    = newKindError(ErrNotFound, "organization not found")
	ErrTaxNotFound             = newKindError(ErrNotFound, "tax not found")
	ErrProductNotFound         = newKindError(ErrNotFound, "product not found")
	ErrCustomerNotFound        = newKindError(ErrNotFound, "customer not found")
	ErrVehicleNotFound         = newKindError(ErrNotFound, "vehicle not found")
	ErrVehicleDocumentNotFound = newKindError(ErrNotFound, "vehicle document not found")
	ErrNumberingNotFound       = newKindError(ErrNotFound, "document numbering not configured")
	ErrQuoteNotFound           = newKindError(ErrNotFound, "quote not found")
	ErrQuoteLineNotFound       = newKindError(ErrNotFound, "quote line not found")
	ErrDeliveryNotFound        = newKindError(ErrNotFound, "delivery not found")
	ErrInvoiceNotFound         = newKindError(ErrNotFound, "invoice not found")
	ErrPaymentNotFound         = newKindError(ErrNotFound, "payment not found")
	ErrExpenseNotFound         = newKindError(ErrNotFound, "expense not found")
	ErrExpenseCategoryNotFound = newKindError(ErrNotFound, "expense category not found")
	ErrUserNotFound            = newKindError(ErrNotFound, "user not found")
	ErrCustomerAddressNotFound = newKindError(ErrNotFound, "customer address not found")
	ErrCustomerContactNotFound = newKindError(ErrNotFound, "customer contact not found")

	ErrTaxInUse             = newKindError(ErrConflict, "tax is still used by products")
	ErrDeliveryExists       = newKindError(ErrConflict, "a delivery already exists for this quote")
	ErrExpenseCategoryInUse = newKindError(ErrConflict, "expense category is still used by expenses")
	ErrCustomerInUse        = newKindError(ErrConflict, "customer is still referenced by quotes or invoices")
	ErrVehicleInUse         = newKindError(ErrConflict, "vehicle is still referenced by quotes or deliveries")
	ErrQuoteInvoiced        = newKindError(ErrConflict, "quote has been invoiced")
	ErrUserEmailExists      = newKindError(ErrConflict, "email already exists")

	ErrQuoteAccepted    = newKindError(ErrInvalidState, "cannot edit accepted quote")
	ErrQuoteNotAccepted = newKindError(ErrInvalidState, "only accepted quotes can be converted")

	ErrInvalidDateRange = newKindError(ErrInvalidInput, "end date must not be before start date")
	ErrInvalidAmounts   = newKindError(ErrInvalidInput, "either amountHT or amountTTC is required")
)
