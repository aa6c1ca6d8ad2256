package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Common
// ============================================================================

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse computes the page count for a result set
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) *PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// ============================================================================
// Users
// ============================================================================

type UserDTO struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	FullName    string       `json:"fullName"`
	Phone       string       `json:"phone,omitempty"`
	Role        UserRoleType `json:"role"`
	IsActive    bool         `json:"isActive"`
	LastLoginAt *string      `json:"lastLoginAt,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// CreateUserRequest adds a user to the caller's organization. Role
// defaults to READ_ONLY.
type CreateUserRequest struct {
	Email     string       `json:"email" validate:"required,email,max=255"`
	FirstName string       `json:"firstName" validate:"required,max=100"`
	LastName  string       `json:"lastName" validate:"required,max=100"`
	Phone     string       `json:"phone,omitempty" validate:"omitempty,phone"`
	Role      UserRoleType `json:"role,omitempty" validate:"omitempty,oneof=ADMIN COMMERCIAL ACCOUNTING READ_ONLY"`
}

// UpdateUserRequest changes only the fields that are present
type UpdateUserRequest struct {
	Email     *string       `json:"email,omitempty" validate:"omitempty,email,max=255"`
	FirstName *string       `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string       `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone     *string       `json:"phone,omitempty" validate:"omitempty,phone"`
	Role      *UserRoleType `json:"role,omitempty" validate:"omitempty,oneof=ADMIN COMMERCIAL ACCOUNTING READ_ONLY"`
	IsActive  *bool         `json:"isActive,omitempty"`
}

// ============================================================================
// Organization
// ============================================================================

type OrganizationDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LegalName string    `json:"legalName,omitempty"`
	VATNumber string    `json:"vatNumber,omitempty"`
	IBAN      string    `json:"iban,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	Street    string    `json:"street,omitempty"`
	City      string    `json:"city,omitempty"`
	ZipCode   string    `json:"zipCode,omitempty"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	Locale    string    `json:"locale"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type UpdateOrganizationRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	LegalName string `json:"legalName,omitempty" validate:"max=200"`
	VATNumber string `json:"vatNumber,omitempty" validate:"max=50"`
	IBAN      string `json:"iban,omitempty" validate:"max=50"`
	Email     string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone"`
	Website   string `json:"website,omitempty" validate:"omitempty,url,max=255"`
	Street    string `json:"street,omitempty" validate:"max=255"`
	City      string `json:"city,omitempty" validate:"max=100"`
	ZipCode   string `json:"zipCode,omitempty" validate:"max=20"`
	Country   string `json:"country,omitempty" validate:"omitempty,len=2"`
	Currency  string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Locale    string `json:"locale,omitempty" validate:"max=10"`
}

// ============================================================================
// Taxes
// ============================================================================

type TaxDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description,omitempty"`
	IsDefault   bool            `json:"isDefault"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

type CreateTaxRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Rate        float64 `json:"rate" validate:"gte=0,lte=100"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	IsDefault   bool    `json:"isDefault"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type UpdateTaxRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Rate        float64 `json:"rate" validate:"gte=0,lte=100"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	IsDefault   bool    `json:"isDefault"`
	IsActive    bool    `json:"isActive"`
}

// ============================================================================
// Products
// ============================================================================

type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	SKU         string           `json:"sku,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	TaxID       *uuid.UUID       `json:"taxId,omitempty"`
	TaxName     string           `json:"taxName,omitempty"`
	TaxRate     *decimal.Decimal `json:"taxRate,omitempty"`
	Unit        string           `json:"unit"`
	IsService   bool             `json:"isService"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

type CreateProductRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	SKU         string     `json:"sku,omitempty" validate:"max=100"`
	Price       float64    `json:"price" validate:"gte=0"`
	TaxID       *uuid.UUID `json:"taxId,omitempty"`
	Unit        string     `json:"unit,omitempty" validate:"max=20"`
	IsService   bool       `json:"isService"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

type UpdateProductRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	SKU         string     `json:"sku,omitempty" validate:"max=100"`
	Price       float64    `json:"price" validate:"gte=0"`
	TaxID       *uuid.UUID `json:"taxId,omitempty"`
	Unit        string     `json:"unit,omitempty" validate:"max=20"`
	IsService   bool       `json:"isService"`
	IsActive    bool       `json:"isActive"`
}

// ============================================================================
// Customers
// ============================================================================

type CustomerDTO struct {
	ID          uuid.UUID    `json:"id"`
	Type        CustomerType `json:"type"`
	DisplayName string       `json:"displayName"`
	CompanyName string       `json:"companyName,omitempty"`
	VATNumber   string       `json:"vatNumber,omitempty"`
	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Street      string       `json:"street,omitempty"`
	City        string       `json:"city,omitempty"`
	ZipCode     string       `json:"zipCode,omitempty"`
	Country     string       `json:"country"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`

	Addresses []CustomerAddressDTO `json:"addresses,omitempty"`
	Contacts  []CustomerContactDTO `json:"contacts,omitempty"`
}

type CreateCustomerRequest struct {
	Type        CustomerType `json:"type" validate:"required,oneof=B2B B2C"`
	CompanyName string       `json:"companyName,omitempty" validate:"required_if=Type B2B,max=200"`
	VATNumber   string       `json:"vatNumber,omitempty" validate:"max=50"`
	FirstName   string       `json:"firstName,omitempty" validate:"max=100"`
	LastName    string       `json:"lastName,omitempty" validate:"required_if=Type B2C,max=100"`
	Email       string       `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       string       `json:"phone,omitempty" validate:"omitempty,phone"`
	Street      string       `json:"street,omitempty" validate:"max=255"`
	City        string       `json:"city,omitempty" validate:"max=100"`
	ZipCode     string       `json:"zipCode,omitempty" validate:"max=20"`
	Country     string       `json:"country,omitempty" validate:"omitempty,len=2"`
	Notes       string       `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateCustomerRequest = CreateCustomerRequest

type CustomerAddressDTO struct {
	ID        uuid.UUID   `json:"id"`
	Type      AddressType `json:"type"`
	Street    string      `json:"street"`
	City      string      `json:"city"`
	ZipCode   string      `json:"zipCode"`
	Country   string      `json:"country"`
	IsDefault bool        `json:"isDefault"`
	CreatedAt string      `json:"createdAt"`
}

type CreateCustomerAddressRequest struct {
	Type      AddressType `json:"type" validate:"required,oneof=BILLING SHIPPING"`
	Street    string      `json:"street" validate:"required,max=255"`
	City      string      `json:"city" validate:"required,max=100"`
	ZipCode   string      `json:"zipCode" validate:"required,max=20"`
	Country   string      `json:"country,omitempty" validate:"omitempty,len=2"`
	IsDefault bool        `json:"isDefault"`
}

type CustomerContactDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Position  string    `json:"position,omitempty"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt string    `json:"createdAt"`
}

type CreateCustomerContactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone"`
	Position  string `json:"position,omitempty" validate:"max=100"`
	IsPrimary bool   `json:"isPrimary"`
}

// ============================================================================
// Vehicles
// ============================================================================

type VehicleDTO struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	LicensePlate    string               `json:"licensePlate"`
	VIN             string               `json:"vin,omitempty"`
	Category        string               `json:"category,omitempty"`
	Brand           string               `json:"brand,omitempty"`
	Model           string               `json:"model,omitempty"`
	Year            *int                 `json:"year,omitempty"`
	LoadCapacity    *decimal.Decimal     `json:"loadCapacity,omitempty"`
	Volume          *decimal.Decimal     `json:"volume,omitempty"`
	Seats           *int                 `json:"seats,omitempty"`
	DailyRate       decimal.Decimal      `json:"dailyRate"`
	FlatRate        *decimal.Decimal     `json:"flatRate,omitempty"`
	KmRate          decimal.Decimal      `json:"kmRate"`
	CurrentKm       int                  `json:"currentKm"`
	LastMaintenance *string              `json:"lastMaintenance,omitempty"`
	Status          VehicleStatus        `json:"status"`
	Documents       []VehicleDocumentDTO `json:"documents,omitempty"`
	CreatedAt       string               `json:"createdAt"`
	UpdatedAt       string               `json:"updatedAt"`
}

type CreateVehicleRequest struct {
	Name            string        `json:"name" validate:"required,max=200"`
	LicensePlate    string        `json:"licensePlate" validate:"required,max=20"`
	VIN             string        `json:"vin,omitempty" validate:"max=50"`
	Category        string        `json:"category,omitempty" validate:"max=50"`
	Brand           string        `json:"brand,omitempty" validate:"max=100"`
	Model           string        `json:"model,omitempty" validate:"max=100"`
	Year            *int          `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	LoadCapacity    *float64      `json:"loadCapacity,omitempty" validate:"omitempty,gte=0"`
	Volume          *float64      `json:"volume,omitempty" validate:"omitempty,gte=0"`
	Seats           *int          `json:"seats,omitempty" validate:"omitempty,gte=0"`
	DailyRate       float64       `json:"dailyRate" validate:"gte=0"`
	FlatRate        *float64      `json:"flatRate,omitempty" validate:"omitempty,gte=0"`
	KmRate          float64       `json:"kmRate" validate:"gte=0"`
	CurrentKm       int           `json:"currentKm" validate:"gte=0"`
	LastMaintenance *time.Time    `json:"lastMaintenance,omitempty"`
	Status          VehicleStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE MAINTENANCE INACTIVE"`
}

type UpdateVehicleRequest = CreateVehicleRequest

type VehicleDocumentDTO struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicleId"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	ExpiresAt *string   `json:"expiresAt,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// AvailabilityConflictDTO is a rental quote overlapping the requested period
type AvailabilityConflictDTO struct {
	QuoteID         uuid.UUID   `json:"quoteId"`
	Number          string      `json:"number"`
	Status          QuoteStatus `json:"status"`
	CustomerName    string      `json:"customerName,omitempty"`
	RentalStartDate string      `json:"rentalStartDate"`
	RentalEndDate   string      `json:"rentalEndDate"`
}

type AvailabilityDTO struct {
	VehicleID uuid.UUID                 `json:"vehicleId"`
	Start     string                    `json:"start"`
	End       string                    `json:"end"`
	Available bool                      `json:"available"`
	Conflicts []AvailabilityConflictDTO `json:"conflicts"`
}

// ============================================================================
// Document numbering
// ============================================================================

type DocumentNumberingDTO struct {
	Type      DocumentType `json:"type"`
	Prefix    string       `json:"prefix"`
	Next      int          `json:"next"`
	Length    int          `json:"length"`
	Preview   string       `json:"preview"`
	UpdatedAt string       `json:"updatedAt"`
}

type UpsertDocumentNumberingRequest struct {
	Prefix *string `json:"prefix,omitempty" validate:"omitempty,max=20"`
	Next   *int    `json:"next,omitempty" validate:"omitempty,gte=1"`
	Length *int    `json:"length,omitempty" validate:"omitempty,gte=1,lte=12"`
}

// ============================================================================
// Document lines (quotes and invoices)
// ============================================================================

type LineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"productId,omitempty"`
	IsSection   bool            `json:"isSection"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	TaxID       *uuid.UUID      `json:"taxId,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Total       decimal.Decimal `json:"total"`
	Order       int             `json:"order"`
}

// LineRequest creates or replaces a quote or invoice line. Description and
// unit price fall back to the referenced product when omitted.
type LineRequest struct {
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	IsSection   bool       `json:"isSection"`
	Description string     `json:"description,omitempty" validate:"required_without=ProductID,max=2000"`
	Quantity    float64    `json:"quantity" validate:"gte=0"`
	UnitPrice   *float64   `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	Discount    float64    `json:"discount" validate:"gte=0,lte=100"`
	TaxID       *uuid.UUID `json:"taxId,omitempty"`
	Order       *int       `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// ============================================================================
// Quotes
// ============================================================================

type QuoteDTO struct {
	ID              uuid.UUID        `json:"id"`
	Number          string           `json:"number"`
	Type            QuoteType        `json:"type"`
	Status          QuoteStatus      `json:"status"`
	Date            string           `json:"date"`
	ValidUntil      *string          `json:"validUntil,omitempty"`
	CustomerID      uuid.UUID        `json:"customerId"`
	CustomerName    string           `json:"customerName,omitempty"`
	VehicleID       *uuid.UUID       `json:"vehicleId,omitempty"`
	VehicleName     string           `json:"vehicleName,omitempty"`
	RentalStartDate *string          `json:"rentalStartDate,omitempty"`
	RentalEndDate   *string          `json:"rentalEndDate,omitempty"`
	IncludedKm      *int             `json:"includedKm,omitempty"`
	ExtraKmRate     *decimal.Decimal `json:"extraKmRate,omitempty"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount"`
	TaxAmount       decimal.Decimal  `json:"taxAmount"`
	Total           decimal.Decimal  `json:"total"`
	CustomerNotes   string           `json:"customerNotes,omitempty"`
	InternalNotes   string           `json:"internalNotes,omitempty"`
	Terms           string           `json:"terms,omitempty"`
	Lines           []LineDTO        `json:"lines"`
	Delivery        *DeliveryDTO     `json:"delivery,omitempty"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

type CreateQuoteRequest struct {
	Type            QuoteType     `json:"type" validate:"required,oneof=SALE RENTAL"`
	CustomerID      uuid.UUID     `json:"customerId" validate:"required"`
	VehicleID       *uuid.UUID    `json:"vehicleId,omitempty"`
	Date            *time.Time    `json:"date,omitempty"`
	ValidUntil      *time.Time    `json:"validUntil,omitempty"`
	RentalStartDate *time.Time    `json:"rentalStartDate,omitempty"`
	RentalEndDate   *time.Time    `json:"rentalEndDate,omitempty" validate:"omitempty,gtefield=RentalStartDate"`
	IncludedKm      *int          `json:"includedKm,omitempty" validate:"omitempty,gte=0"`
	ExtraKmRate     *float64      `json:"extraKmRate,omitempty" validate:"omitempty,gte=0"`
	CustomerNotes   string        `json:"customerNotes,omitempty" validate:"max=5000"`
	InternalNotes   string        `json:"internalNotes,omitempty" validate:"max=5000"`
	Terms           string        `json:"terms,omitempty" validate:"max=10000"`
	Lines           []LineRequest `json:"lines,omitempty" validate:"dive"`
}

type UpdateQuoteRequest struct {
	CustomerID      uuid.UUID  `json:"customerId" validate:"required"`
	VehicleID       *uuid.UUID `json:"vehicleId,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	RentalStartDate *time.Time `json:"rentalStartDate,omitempty"`
	RentalEndDate   *time.Time `json:"rentalEndDate,omitempty" validate:"omitempty,gtefield=RentalStartDate"`
	IncludedKm      *int       `json:"includedKm,omitempty" validate:"omitempty,gte=0"`
	ExtraKmRate     *float64   `json:"extraKmRate,omitempty" validate:"omitempty,gte=0"`
	CustomerNotes   string     `json:"customerNotes,omitempty" validate:"max=5000"`
	InternalNotes   string     `json:"internalNotes,omitempty" validate:"max=5000"`
	Terms           string     `json:"terms,omitempty" validate:"max=10000"`
}

type UpdateQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required,oneof=DRAFT SENT ACCEPTED REJECTED EXPIRED"`
}

// QuoteFilters narrows quote listings and exports
type QuoteFilters struct {
	Status     *QuoteStatus
	Type       *QuoteType
	CustomerID *uuid.UUID
	Search     string
}

// ============================================================================
// Delivery
// ============================================================================

type DeliveryDTO struct {
	ID           uuid.UUID        `json:"id"`
	QuoteID      uuid.UUID        `json:"quoteId"`
	VehicleID    *uuid.UUID       `json:"vehicleId,omitempty"`
	Type         DeliveryType     `json:"type"`
	Street       string           `json:"street,omitempty"`
	City         string           `json:"city,omitempty"`
	ZipCode      string           `json:"zipCode,omitempty"`
	Country      string           `json:"country"`
	DeliveryDate *string          `json:"deliveryDate,omitempty"`
	Distance     *decimal.Decimal `json:"distance,omitempty"`
	FixedPrice   *decimal.Decimal `json:"fixedPrice,omitempty"`
	PricePerKm   *decimal.Decimal `json:"pricePerKm,omitempty"`
	HasReturn    bool             `json:"hasReturn"`
	DriverNotes  string           `json:"driverNotes,omitempty"`
	Cost         decimal.Decimal  `json:"cost"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
}

type DeliveryRequest struct {
	VehicleID    *uuid.UUID   `json:"vehicleId,omitempty"`
	Type         DeliveryType `json:"type" validate:"required,oneof=WITHOUT_DELIVERY WITH_DELIVERY"`
	Street       string       `json:"street,omitempty" validate:"max=255"`
	City         string       `json:"city,omitempty" validate:"max=100"`
	ZipCode      string       `json:"zipCode,omitempty" validate:"max=20"`
	Country      string       `json:"country,omitempty" validate:"omitempty,len=2"`
	DeliveryDate *time.Time   `json:"deliveryDate,omitempty"`
	Distance     *float64     `json:"distance,omitempty" validate:"omitempty,gte=0"`
	FixedPrice   *float64     `json:"fixedPrice,omitempty" validate:"omitempty,gte=0"`
	PricePerKm   *float64     `json:"pricePerKm,omitempty" validate:"omitempty,gte=0"`
	HasReturn    bool         `json:"hasReturn"`
	DriverNotes  string       `json:"driverNotes,omitempty" validate:"max=2000"`
}

// ============================================================================
// Invoices
// ============================================================================

type InvoiceDTO struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	CustomerID     uuid.UUID       `json:"customerId"`
	CustomerName   string          `json:"customerName,omitempty"`
	QuoteID        *uuid.UUID      `json:"quoteId,omitempty"`
	QuoteNumber    string          `json:"quoteNumber,omitempty"`
	Status         InvoiceStatus   `json:"status"`
	Date           string          `json:"date"`
	DueDate        *string         `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Balance        decimal.Decimal `json:"balance"`
	Notes          string          `json:"notes,omitempty"`
	PaymentTerms   string          `json:"paymentTerms,omitempty"`
	Lines          []LineDTO       `json:"lines"`
	Payments       []PaymentDTO    `json:"payments"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

type CreateInvoiceRequest struct {
	CustomerID   uuid.UUID     `json:"customerId" validate:"required"`
	Date         *time.Time    `json:"date,omitempty"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	Notes        string        `json:"notes,omitempty" validate:"max=5000"`
	PaymentTerms string        `json:"paymentTerms,omitempty" validate:"max=2000"`
	Lines        []LineRequest `json:"lines" validate:"dive"`
}

type CreateInvoiceFromQuoteRequest struct {
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Notes        string     `json:"notes,omitempty" validate:"max=5000"`
	PaymentTerms string     `json:"paymentTerms,omitempty" validate:"max=2000"`
}

type UpdateInvoiceRequest struct {
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Notes        string     `json:"notes,omitempty" validate:"max=5000"`
	PaymentTerms string     `json:"paymentTerms,omitempty" validate:"max=2000"`
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=DRAFT SENT PARTIAL PAID OVERDUE CANCELLED"`
}

// InvoiceFilters narrows invoice listings
type InvoiceFilters struct {
	Status     *InvoiceStatus
	CustomerID *uuid.UUID
	Search     string
}

type PaymentDTO struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoiceId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Date      string          `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

type CreatePaymentRequest struct {
	Amount    float64       `json:"amount" validate:"required,gte=0.01"`
	Method    PaymentMethod `json:"method" validate:"required,oneof=CARD CASH TRANSFER CHECK"`
	Reference string        `json:"reference,omitempty" validate:"max=100"`
	Date      *time.Time    `json:"date,omitempty"`
	Notes     string        `json:"notes,omitempty" validate:"max=2000"`
}

// ============================================================================
// Expenses
// ============================================================================

type ExpenseCategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

type ExpenseCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type ExpenseDTO struct {
	ID            uuid.UUID       `json:"id"`
	CategoryID    *uuid.UUID      `json:"categoryId,omitempty"`
	CategoryName  string          `json:"categoryName,omitempty"`
	Date          string          `json:"date"`
	Supplier      string          `json:"supplier"`
	Description   string          `json:"description,omitempty"`
	AmountHT      decimal.Decimal `json:"amountHT"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	AmountTTC     decimal.Decimal `json:"amountTTC"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	CostCenter    string          `json:"costCenter,omitempty"`
	Project       string          `json:"project,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Status        ExpenseStatus   `json:"status"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

// CreateExpenseRequest accepts either the tax-exclusive or the tax-inclusive amount
type CreateExpenseRequest struct {
	CategoryID    *uuid.UUID    `json:"categoryId,omitempty"`
	Date          time.Time     `json:"date" validate:"required"`
	Supplier      string        `json:"supplier" validate:"required,max=200"`
	Description   string        `json:"description,omitempty" validate:"max=2000"`
	AmountHT      *float64      `json:"amountHT,omitempty" validate:"required_without=AmountTTC,omitempty,gte=0"`
	TaxRate       float64       `json:"taxRate" validate:"gte=0,lte=100"`
	AmountTTC     *float64      `json:"amountTTC,omitempty" validate:"required_without=AmountHT,omitempty,gte=0"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=CARD CASH TRANSFER CHECK"`
	Reference     string        `json:"reference,omitempty" validate:"max=100"`
	CostCenter    string        `json:"costCenter,omitempty" validate:"max=100"`
	Project       string        `json:"project,omitempty" validate:"max=100"`
	Notes         string        `json:"notes,omitempty" validate:"max=2000"`
	Status        ExpenseStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED PAID"`
}

type UpdateExpenseRequest = CreateExpenseRequest

type UpdateExpenseStatusRequest struct {
	Status ExpenseStatus `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED PAID"`
}

// ExpenseFilters narrows expense listings
type ExpenseFilters struct {
	Status     *ExpenseStatus
	CategoryID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Search     string
}

// ============================================================================
// Audit
// ============================================================================

type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      string      `json:"userId,omitempty"`
	UserEmail   string      `json:"userEmail,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    *uuid.UUID  `json:"entityId,omitempty"`
	Changes     string      `json:"changes,omitempty"`
	IPAddress   string      `json:"ipAddress,omitempty"`
	UserAgent   string      `json:"userAgent,omitempty"`
	RequestID   string      `json:"requestId,omitempty"`
	PerformedAt string      `json:"performedAt"`
}

// AuditLogFilters narrows audit log listings
type AuditLogFilters struct {
	EntityType string
	EntityID   *uuid.UUID
	UserID     string
	Action     *AuditAction
	Limit      int
	Offset     int
}
