package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a fresh UUID when the caller did not set one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ============================================================================
// Roles
// ============================================================================

// UserRoleType represents the role carried by an authenticated user
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "ADMIN"
	RoleCommercial UserRoleType = "COMMERCIAL"
	RoleAccounting UserRoleType = "ACCOUNTING"
	RoleReadOnly   UserRoleType = "READ_ONLY"
)

// IsValid checks if the role is a known role
func (r UserRoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCommercial, RoleAccounting, RoleReadOnly:
		return true
	}
	return false
}

// User is a member of an organization. Authentication happens upstream;
// this row only carries the directory data and the role.
type User struct {
	BaseModel
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_users_organization_email"`
	Email          string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_organization_email"`
	FirstName      string       `gorm:"type:varchar(100);not null"`
	LastName       string       `gorm:"type:varchar(100);not null"`
	Phone          string       `gorm:"type:varchar(50)"`
	Role           UserRoleType `gorm:"type:varchar(20);not null"`
	IsActive       bool         `gorm:"not null"`
	LastLoginAt    *time.Time
}

// FullName returns the first and last name
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// ============================================================================
// Organization
// ============================================================================

// Organization is the tenant boundary. Every other entity belongs to exactly one.
type Organization struct {
	BaseModel
	Name      string `gorm:"type:varchar(200);not null"`
	LegalName string `gorm:"type:varchar(200)"`
	VATNumber string `gorm:"type:varchar(50);column:vat_number"`
	IBAN      string `gorm:"type:varchar(50);column:iban"`
	Email     string `gorm:"type:varchar(255)"`
	Phone     string `gorm:"type:varchar(50)"`
	Website   string `gorm:"type:varchar(255)"`
	Street    string `gorm:"type:varchar(255)"`
	City      string `gorm:"type:varchar(100)"`
	ZipCode   string `gorm:"type:varchar(20)"`
	Country   string `gorm:"type:varchar(2);not null;default:'BE'"`
	Currency  string `gorm:"type:varchar(3);not null;default:'EUR'"`
	Locale    string `gorm:"type:varchar(10);not null;default:'fr-BE'"`
}

// ============================================================================
// Taxes & products
// ============================================================================

// Tax is a percentage rate applied to line subtotals
type Tax struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"type:varchar(100);not null"`
	Rate           decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Description    string          `gorm:"type:text"`
	IsDefault      bool            `gorm:"not null;default:false"`
	IsActive       bool            `gorm:"not null"`
}

// Product is a catalogue item that can be referenced from document lines
type Product struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	SKU            string          `gorm:"type:varchar(100);column:sku"`
	Price          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxID          *uuid.UUID      `gorm:"type:uuid;index"`
	Tax            *Tax            `gorm:"foreignKey:TaxID"`
	Unit           string          `gorm:"type:varchar(20);not null;default:'unit'"`
	IsService      bool            `gorm:"not null;default:false"`
	IsActive       bool            `gorm:"not null"`
}

// ============================================================================
// Customers
// ============================================================================

// CustomerType distinguishes companies from private persons
type CustomerType string

const (
	CustomerTypeB2B CustomerType = "B2B"
	CustomerTypeB2C CustomerType = "B2C"
)

// IsValid checks if the customer type is valid
func (t CustomerType) IsValid() bool {
	return t == CustomerTypeB2B || t == CustomerTypeB2C
}

// Customer is shared by quotes and invoices and never owned by them
type Customer struct {
	BaseModel
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type           CustomerType `gorm:"type:varchar(3);not null;default:'B2B'"`
	CompanyName    string       `gorm:"type:varchar(200)"`
	VATNumber      string       `gorm:"type:varchar(50);column:vat_number"`
	FirstName      string       `gorm:"type:varchar(100)"`
	LastName       string       `gorm:"type:varchar(100)"`
	Email          string       `gorm:"type:varchar(255)"`
	Phone          string       `gorm:"type:varchar(50)"`
	Street         string       `gorm:"type:varchar(255)"`
	City           string       `gorm:"type:varchar(100)"`
	ZipCode        string       `gorm:"type:varchar(20)"`
	Country        string       `gorm:"type:varchar(2);not null;default:'BE'"`
	Notes          string       `gorm:"type:text"`

	Addresses []CustomerAddress `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Contacts  []CustomerContact `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// AddressType tells billing and shipping addresses apart
type AddressType string

const (
	AddressTypeBilling  AddressType = "BILLING"
	AddressTypeShipping AddressType = "SHIPPING"
)

// CustomerAddress is an additional address of a customer. At most one
// address per type is the default.
type CustomerAddress struct {
	BaseModel
	CustomerID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Type       AddressType `gorm:"type:varchar(20);not null"`
	Street     string      `gorm:"type:varchar(255);not null"`
	City       string      `gorm:"type:varchar(100);not null"`
	ZipCode    string      `gorm:"type:varchar(20);not null"`
	Country    string      `gorm:"type:varchar(2);not null"`
	IsDefault  bool        `gorm:"not null"`
}

// CustomerContact is a person to reach at a customer. At most one contact
// is the primary one.
type CustomerContact struct {
	BaseModel
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	FirstName  string    `gorm:"type:varchar(100);not null"`
	LastName   string    `gorm:"type:varchar(100);not null"`
	Email      string    `gorm:"type:varchar(255)"`
	Phone      string    `gorm:"type:varchar(50)"`
	Position   string    `gorm:"type:varchar(100)"`
	IsPrimary  bool      `gorm:"not null"`
}

// DisplayName returns the company name for businesses and the full name otherwise
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ============================================================================
// Vehicles
// ============================================================================

// VehicleStatus represents the operational state of a vehicle
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "ACTIVE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusInactive    VehicleStatus = "INACTIVE"
)

// IsValid checks if the vehicle status is valid
func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusInactive:
		return true
	}
	return false
}

// Vehicle is a rentable or delivery vehicle
type Vehicle struct {
	BaseModel
	OrganizationID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name            string              `gorm:"type:varchar(200);not null"`
	LicensePlate    string              `gorm:"type:varchar(20);not null"`
	VIN             string              `gorm:"type:varchar(50);column:vin"`
	Category        string              `gorm:"type:varchar(50)"`
	Brand           string              `gorm:"type:varchar(100)"`
	Model           string              `gorm:"type:varchar(100)"`
	Year            *int                `gorm:"type:integer"`
	LoadCapacity    decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Volume          decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Seats           *int                `gorm:"type:integer"`
	DailyRate       decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
	FlatRate        decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	KmRate          decimal.Decimal     `gorm:"type:decimal(15,4);not null;default:0"`
	CurrentKm       int                 `gorm:"not null;default:0"`
	LastMaintenance *time.Time
	Status          VehicleStatus     `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Documents       []VehicleDocument `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

// VehicleDocument is a stored file attached to a vehicle (registration, insurance, ...)
type VehicleDocument struct {
	BaseModel
	VehicleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Type        string    `gorm:"type:varchar(50)"`
	StoragePath string    `gorm:"type:varchar(500);not null"`
	MimeType    string    `gorm:"type:varchar(100);not null"`
	Size        int64     `gorm:"not null"`
	ExpiresAt   *time.Time
}

// ============================================================================
// Document numbering
// ============================================================================

// DocumentType identifies an independent numbering series within an organization
type DocumentType string

const (
	DocumentTypeQuoteSale   DocumentType = "quote_sale"
	DocumentTypeQuoteRental DocumentType = "quote_rental"
	DocumentTypeInvoice     DocumentType = "invoice"
)

// DefaultPrefix returns the prefix used when a numbering series is created lazily
func (t DocumentType) DefaultPrefix() string {
	switch t {
	case DocumentTypeQuoteSale:
		return "QS-"
	case DocumentTypeQuoteRental:
		return "QR-"
	case DocumentTypeInvoice:
		return "INV-"
	default:
		return "DOC-"
	}
}

// DocumentNumbering holds the next number to hand out for one series.
// A soft-deleted row means the series was removed on purpose and allocation must fail.
type DocumentNumbering struct {
	BaseModel
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_numbering_org_type"`
	Type           DocumentType   `gorm:"type:varchar(50);not null;uniqueIndex:idx_numbering_org_type"`
	Prefix         string         `gorm:"type:varchar(20);not null;default:''"`
	Next           int            `gorm:"not null;default:1"`
	Length         int            `gorm:"not null;default:6"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// Format renders the number the series would hand out next
func (n *DocumentNumbering) Format() string {
	return fmt.Sprintf("%s%0*d", n.Prefix, n.Length, n.Next)
}

// ============================================================================
// Quotes
// ============================================================================

// QuoteType represents the kind of quote
type QuoteType string

const (
	QuoteTypeSale   QuoteType = "SALE"
	QuoteTypeRental QuoteType = "RENTAL"
)

// IsValid checks if the quote type is valid
func (t QuoteType) IsValid() bool {
	return t == QuoteTypeSale || t == QuoteTypeRental
}

// DocumentType returns the numbering series used by quotes of this type
func (t QuoteType) DocumentType() DocumentType {
	if t == QuoteTypeRental {
		return DocumentTypeQuoteRental
	}
	return DocumentTypeQuoteSale
}

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// IsValid checks if the quote status is valid
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// BlocksVehicle reports whether a quote in this status reserves its vehicle
func (s QuoteStatus) BlocksVehicle() bool {
	return s == QuoteStatusSent || s == QuoteStatusAccepted
}

// Quote is a sale or rental estimate. Money fields are always derived from its lines.
type Quote struct {
	BaseModel
	OrganizationID  uuid.UUID   `gorm:"type:uuid;not null;index"`
	Number          string      `gorm:"type:varchar(50);not null;index"`
	Type            QuoteType   `gorm:"type:varchar(10);not null"`
	Status          QuoteStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Date            time.Time   `gorm:"not null"`
	ValidUntil      *time.Time
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Customer        *Customer  `gorm:"foreignKey:CustomerID"`
	VehicleID       *uuid.UUID `gorm:"type:uuid;index"`
	Vehicle         *Vehicle   `gorm:"foreignKey:VehicleID"`
	RentalStartDate *time.Time
	RentalEndDate   *time.Time
	IncludedKm      *int                `gorm:"type:integer"`
	ExtraKmRate     decimal.NullDecimal `gorm:"type:decimal(15,4)"`
	Subtotal        decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount  decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount       decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
	Total           decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
	CustomerNotes   string              `gorm:"type:text"`
	InternalNotes   string              `gorm:"type:text"`
	Terms           string              `gorm:"type:text"`
	Lines           []QuoteLine         `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Delivery        *Delivery           `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// IsLocked reports whether the quote content is frozen
func (q *Quote) IsLocked() bool {
	return q.Status == QuoteStatusAccepted
}

// QuoteLine is a priced line or a section header of a quote
type QuoteLine struct {
	BaseModel
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	IsSection   bool            `gorm:"not null;default:false"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxID       *uuid.UUID      `gorm:"type:uuid"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Order       int             `gorm:"column:sort_order;not null;default:0"`
}

// ============================================================================
// Delivery
// ============================================================================

// DeliveryType says whether goods are delivered at all
type DeliveryType string

const (
	DeliveryTypeWithout DeliveryType = "WITHOUT_DELIVERY"
	DeliveryTypeWith    DeliveryType = "WITH_DELIVERY"
)

// IsValid checks if the delivery type is valid
func (t DeliveryType) IsValid() bool {
	return t == DeliveryTypeWithout || t == DeliveryTypeWith
}

// Delivery is the optional 1:1 delivery attached to a quote
type Delivery struct {
	BaseModel
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index"`
	QuoteID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	VehicleID      *uuid.UUID   `gorm:"type:uuid;index"`
	Type           DeliveryType `gorm:"type:varchar(20);not null;default:'WITHOUT_DELIVERY'"`
	Street         string       `gorm:"type:varchar(255)"`
	City           string       `gorm:"type:varchar(100)"`
	ZipCode        string       `gorm:"type:varchar(20)"`
	Country        string       `gorm:"type:varchar(2);not null;default:'BE'"`
	DeliveryDate   *time.Time
	Distance       decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	FixedPrice     decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	PricePerKm     decimal.NullDecimal `gorm:"type:decimal(15,4)"`
	HasReturn      bool                `gorm:"not null;default:false"`
	DriverNotes    string              `gorm:"type:text"`
	Cost           decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
}

// ============================================================================
// Invoices
// ============================================================================

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice owns its lines and payments
type Invoice struct {
	BaseModel
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Number         string        `gorm:"type:varchar(50);not null;index"`
	CustomerID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	Customer       *Customer     `gorm:"foreignKey:CustomerID"`
	QuoteID        *uuid.UUID    `gorm:"type:uuid;index"`
	Quote          *Quote        `gorm:"foreignKey:QuoteID"`
	Status         InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Date           time.Time     `gorm:"not null"`
	DueDate        *time.Time
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	PaymentTerms   string          `gorm:"type:text"`
	Lines          []InvoiceLine   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments       []Payment       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceLine mirrors QuoteLine for invoices
type InvoiceLine struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	IsSection   bool            `gorm:"not null;default:false"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxID       *uuid.UUID      `gorm:"type:uuid"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Order       int             `gorm:"column:sort_order;not null;default:0"`
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCheck    PaymentMethod = "CHECK"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCheck:
		return true
	}
	return false
}

// Payment is a manually recorded payment. Payments are never edited in place.
type Payment struct {
	BaseModel
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null"`
	Reference string          `gorm:"type:varchar(100)"`
	Date      time.Time       `gorm:"not null"`
	Notes     string          `gorm:"type:text"`
}

// ============================================================================
// Expenses
// ============================================================================

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusRejected ExpenseStatus = "REJECTED"
	ExpenseStatusPaid     ExpenseStatus = "PAID"
)

// IsValid checks if the expense status is valid
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected, ExpenseStatusPaid:
		return true
	}
	return false
}

// ExpenseCategory groups expenses for reporting
type ExpenseCategory struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(100);not null"`
	Description    string    `gorm:"type:text"`
	Color          string    `gorm:"type:varchar(7)"`
}

// Expense is a purchase recorded with both tax-exclusive and tax-inclusive amounts
type Expense struct {
	BaseModel
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index"`
	CategoryID     *uuid.UUID       `gorm:"type:uuid;index"`
	Category       *ExpenseCategory `gorm:"foreignKey:CategoryID"`
	Date           time.Time        `gorm:"not null"`
	Supplier       string           `gorm:"type:varchar(200);not null"`
	Description    string           `gorm:"type:text"`
	AmountHT       decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0;column:amount_ht"`
	TaxRate        decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount      decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0"`
	AmountTTC      decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0;column:amount_ttc"`
	PaymentMethod  PaymentMethod    `gorm:"type:varchar(20)"`
	Reference      string           `gorm:"type:varchar(100)"`
	CostCenter     string           `gorm:"type:varchar(100)"`
	Project        string           `gorm:"type:varchar(100)"`
	Notes          string           `gorm:"type:text"`
	Status         ExpenseStatus    `gorm:"type:varchar(20);not null;default:'PENDING'"`
}

// ============================================================================
// Audit
// ============================================================================

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog records a successful write performed through the API
type AuditLog struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID   `gorm:"type:uuid;not null;index"`
	UserID         string      `gorm:"type:varchar(100);column:user_id"`
	UserEmail      string      `gorm:"type:varchar(255);column:user_email"`
	Action         AuditAction `gorm:"type:varchar(20);not null"`
	EntityType     string      `gorm:"type:varchar(50);not null;column:entity_type;index"`
	EntityID       *uuid.UUID  `gorm:"type:uuid;column:entity_id;index"`
	Changes        string      `gorm:"type:text"`
	IPAddress      string      `gorm:"type:varchar(64);column:ip_address"`
	UserAgent      string      `gorm:"type:text;column:user_agent"`
	RequestID      string      `gorm:"type:varchar(100);column:request_id"`
	PerformedAt    time.Time   `gorm:"not null;column:performed_at"`
}

// BeforeCreate assigns the audit log ID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
