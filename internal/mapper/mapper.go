package mapper

import (
	"time"

	"github.com/straye-as/backoffice-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	dto := domain.UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Phone:     user.Phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: formatTimestamp(user.CreatedAt),
		UpdatedAt: formatTimestamp(user.UpdatedAt),
	}
	if user.LastLoginAt != nil {
		ts := formatTimestamp(*user.LastLoginAt)
		dto.LastLoginAt = &ts
	}
	return dto
}

// ToOrganizationDTO converts Organization to OrganizationDTO
func ToOrganizationDTO(org *domain.Organization) domain.OrganizationDTO {
	return domain.OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		LegalName: org.LegalName,
		VATNumber: org.VATNumber,
		IBAN:      org.IBAN,
		Email:     org.Email,
		Phone:     org.Phone,
		Website:   org.Website,
		Street:    org.Street,
		City:      org.City,
		ZipCode:   org.ZipCode,
		Country:   org.Country,
		Currency:  org.Currency,
		Locale:    org.Locale,
		CreatedAt: formatTimestamp(org.CreatedAt),
		UpdatedAt: formatTimestamp(org.UpdatedAt),
	}
}

// ToTaxDTO converts Tax to TaxDTO
func ToTaxDTO(tax *domain.Tax) domain.TaxDTO {
	return domain.TaxDTO{
		ID:          tax.ID,
		Name:        tax.Name,
		Rate:        tax.Rate,
		Description: tax.Description,
		IsDefault:   tax.IsDefault,
		IsActive:    tax.IsActive,
		CreatedAt:   formatTimestamp(tax.CreatedAt),
		UpdatedAt:   formatTimestamp(tax.UpdatedAt),
	}
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	dto := domain.ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		SKU:         product.SKU,
		Price:       product.Price,
		TaxID:       product.TaxID,
		Unit:        product.Unit,
		IsService:   product.IsService,
		IsActive:    product.IsActive,
		CreatedAt:   formatTimestamp(product.CreatedAt),
		UpdatedAt:   formatTimestamp(product.UpdatedAt),
	}
	if product.Tax != nil {
		rate := product.Tax.Rate
		dto.TaxName = product.Tax.Name
		dto.TaxRate = &rate
	}
	return dto
}

// ToCustomerDTO converts Customer to CustomerDTO, including loaded
// addresses and contacts
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	dto := domain.CustomerDTO{
		ID:          customer.ID,
		Type:        customer.Type,
		DisplayName: customer.DisplayName(),
		CompanyName: customer.CompanyName,
		VATNumber:   customer.VATNumber,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		Phone:       customer.Phone,
		Street:      customer.Street,
		City:        customer.City,
		ZipCode:     customer.ZipCode,
		Country:     customer.Country,
		Notes:       customer.Notes,
		CreatedAt:   formatTimestamp(customer.CreatedAt),
		UpdatedAt:   formatTimestamp(customer.UpdatedAt),
	}
	for i := range customer.Addresses {
		dto.Addresses = append(dto.Addresses, ToCustomerAddressDTO(&customer.Addresses[i]))
	}
	for i := range customer.Contacts {
		dto.Contacts = append(dto.Contacts, ToCustomerContactDTO(&customer.Contacts[i]))
	}
	return dto
}

func ToCustomerAddressDTO(address *domain.CustomerAddress) domain.CustomerAddressDTO {
	return domain.CustomerAddressDTO{
		ID:        address.ID,
		Type:      address.Type,
		Street:    address.Street,
		City:      address.City,
		ZipCode:   address.ZipCode,
		Country:   address.Country,
		IsDefault: address.IsDefault,
		CreatedAt: formatTimestamp(address.CreatedAt),
	}
}

func ToCustomerContactDTO(contact *domain.CustomerContact) domain.CustomerContactDTO {
	return domain.CustomerContactDTO{
		ID:        contact.ID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Position:  contact.Position,
		IsPrimary: contact.IsPrimary,
		CreatedAt: formatTimestamp(contact.CreatedAt),
	}
}

// ToVehicleDTO converts Vehicle to VehicleDTO, including loaded documents
func ToVehicleDTO(vehicle *domain.Vehicle) domain.VehicleDTO {
	dto := domain.VehicleDTO{
		ID:              vehicle.ID,
		Name:            vehicle.Name,
		LicensePlate:    vehicle.LicensePlate,
		VIN:             vehicle.VIN,
		Category:        vehicle.Category,
		Brand:           vehicle.Brand,
		Model:           vehicle.Model,
		Year:            vehicle.Year,
		LoadCapacity:    domain.NullToPtr(vehicle.LoadCapacity),
		Volume:          domain.NullToPtr(vehicle.Volume),
		Seats:           vehicle.Seats,
		DailyRate:       vehicle.DailyRate,
		FlatRate:        domain.NullToPtr(vehicle.FlatRate),
		KmRate:          vehicle.KmRate,
		CurrentKm:       vehicle.CurrentKm,
		LastMaintenance: formatOptionalDate(vehicle.LastMaintenance),
		Status:          vehicle.Status,
		CreatedAt:       formatTimestamp(vehicle.CreatedAt),
		UpdatedAt:       formatTimestamp(vehicle.UpdatedAt),
	}
	for i := range vehicle.Documents {
		dto.Documents = append(dto.Documents, ToVehicleDocumentDTO(&vehicle.Documents[i]))
	}
	return dto
}

// ToVehicleDocumentDTO converts VehicleDocument to VehicleDocumentDTO
func ToVehicleDocumentDTO(doc *domain.VehicleDocument) domain.VehicleDocumentDTO {
	return domain.VehicleDocumentDTO{
		ID:        doc.ID,
		VehicleID: doc.VehicleID,
		Name:      doc.Name,
		Type:      doc.Type,
		MimeType:  doc.MimeType,
		Size:      doc.Size,
		ExpiresAt: formatOptionalDate(doc.ExpiresAt),
		CreatedAt: formatTimestamp(doc.CreatedAt),
	}
}

// ToAvailabilityConflictDTO converts a conflicting rental quote
func ToAvailabilityConflictDTO(quote *domain.Quote) domain.AvailabilityConflictDTO {
	dto := domain.AvailabilityConflictDTO{
		QuoteID: quote.ID,
		Number:  quote.Number,
		Status:  quote.Status,
	}
	if quote.Customer != nil {
		dto.CustomerName = quote.Customer.DisplayName()
	}
	if quote.RentalStartDate != nil {
		dto.RentalStartDate = formatDate(*quote.RentalStartDate)
	}
	if quote.RentalEndDate != nil {
		dto.RentalEndDate = formatDate(*quote.RentalEndDate)
	}
	return dto
}

// ToDocumentNumberingDTO converts DocumentNumbering to DocumentNumberingDTO
func ToDocumentNumberingDTO(n *domain.DocumentNumbering) domain.DocumentNumberingDTO {
	return domain.DocumentNumberingDTO{
		Type:      n.Type,
		Prefix:    n.Prefix,
		Next:      n.Next,
		Length:    n.Length,
		Preview:   n.Format(),
		UpdatedAt: formatTimestamp(n.UpdatedAt),
	}
}

// ToQuoteLineDTO converts QuoteLine to LineDTO
func ToQuoteLineDTO(line *domain.QuoteLine) domain.LineDTO {
	return domain.LineDTO{
		ID:          line.ID,
		ProductID:   line.ProductID,
		IsSection:   line.IsSection,
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		Discount:    line.Discount,
		TaxID:       line.TaxID,
		Subtotal:    line.Subtotal,
		TaxAmount:   line.TaxAmount,
		Total:       line.Total,
		Order:       line.Order,
	}
}

// ToInvoiceLineDTO converts InvoiceLine to LineDTO
func ToInvoiceLineDTO(line *domain.InvoiceLine) domain.LineDTO {
	return domain.LineDTO{
		ID:          line.ID,
		ProductID:   line.ProductID,
		IsSection:   line.IsSection,
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		Discount:    line.Discount,
		TaxID:       line.TaxID,
		Subtotal:    line.Subtotal,
		TaxAmount:   line.TaxAmount,
		Total:       line.Total,
		Order:       line.Order,
	}
}

// ToQuoteDTO converts Quote to QuoteDTO with lines and delivery
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:              quote.ID,
		Number:          quote.Number,
		Type:            quote.Type,
		Status:          quote.Status,
		Date:            formatDate(quote.Date),
		ValidUntil:      formatOptionalDate(quote.ValidUntil),
		CustomerID:      quote.CustomerID,
		VehicleID:       quote.VehicleID,
		RentalStartDate: formatOptionalDate(quote.RentalStartDate),
		RentalEndDate:   formatOptionalDate(quote.RentalEndDate),
		IncludedKm:      quote.IncludedKm,
		ExtraKmRate:     domain.NullToPtr(quote.ExtraKmRate),
		Subtotal:        quote.Subtotal,
		DiscountAmount:  quote.DiscountAmount,
		TaxAmount:       quote.TaxAmount,
		Total:           quote.Total,
		CustomerNotes:   quote.CustomerNotes,
		InternalNotes:   quote.InternalNotes,
		Terms:           quote.Terms,
		Lines:           make([]domain.LineDTO, 0, len(quote.Lines)),
		CreatedAt:       formatTimestamp(quote.CreatedAt),
		UpdatedAt:       formatTimestamp(quote.UpdatedAt),
	}
	if quote.Customer != nil {
		dto.CustomerName = quote.Customer.DisplayName()
	}
	if quote.Vehicle != nil {
		dto.VehicleName = quote.Vehicle.Name
	}
	for i := range quote.Lines {
		dto.Lines = append(dto.Lines, ToQuoteLineDTO(&quote.Lines[i]))
	}
	if quote.Delivery != nil {
		delivery := ToDeliveryDTO(quote.Delivery)
		dto.Delivery = &delivery
	}
	return dto
}

// ToDeliveryDTO converts Delivery to DeliveryDTO
func ToDeliveryDTO(delivery *domain.Delivery) domain.DeliveryDTO {
	return domain.DeliveryDTO{
		ID:           delivery.ID,
		QuoteID:      delivery.QuoteID,
		VehicleID:    delivery.VehicleID,
		Type:         delivery.Type,
		Street:       delivery.Street,
		City:         delivery.City,
		ZipCode:      delivery.ZipCode,
		Country:      delivery.Country,
		DeliveryDate: formatOptionalDate(delivery.DeliveryDate),
		Distance:     domain.NullToPtr(delivery.Distance),
		FixedPrice:   domain.NullToPtr(delivery.FixedPrice),
		PricePerKm:   domain.NullToPtr(delivery.PricePerKm),
		HasReturn:    delivery.HasReturn,
		DriverNotes:  delivery.DriverNotes,
		Cost:         delivery.Cost,
		CreatedAt:    formatTimestamp(delivery.CreatedAt),
		UpdatedAt:    formatTimestamp(delivery.UpdatedAt),
	}
}

// ToInvoiceDTO converts Invoice to InvoiceDTO with lines and payments
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	dto := domain.InvoiceDTO{
		ID:             invoice.ID,
		Number:         invoice.Number,
		CustomerID:     invoice.CustomerID,
		QuoteID:        invoice.QuoteID,
		Status:         invoice.Status,
		Date:           formatDate(invoice.Date),
		DueDate:        formatOptionalDate(invoice.DueDate),
		Subtotal:       invoice.Subtotal,
		DiscountAmount: invoice.DiscountAmount,
		TaxAmount:      invoice.TaxAmount,
		Total:          invoice.Total,
		PaidAmount:     invoice.PaidAmount,
		Balance:        invoice.Total.Sub(invoice.PaidAmount),
		Notes:          invoice.Notes,
		PaymentTerms:   invoice.PaymentTerms,
		Lines:          make([]domain.LineDTO, 0, len(invoice.Lines)),
		Payments:       make([]domain.PaymentDTO, 0, len(invoice.Payments)),
		CreatedAt:      formatTimestamp(invoice.CreatedAt),
		UpdatedAt:      formatTimestamp(invoice.UpdatedAt),
	}
	if invoice.Customer != nil {
		dto.CustomerName = invoice.Customer.DisplayName()
	}
	if invoice.Quote != nil {
		dto.QuoteNumber = invoice.Quote.Number
	}
	for i := range invoice.Lines {
		dto.Lines = append(dto.Lines, ToInvoiceLineDTO(&invoice.Lines[i]))
	}
	for i := range invoice.Payments {
		dto.Payments = append(dto.Payments, ToPaymentDTO(&invoice.Payments[i]))
	}
	return dto
}

// ToPaymentDTO converts Payment to PaymentDTO
func ToPaymentDTO(payment *domain.Payment) domain.PaymentDTO {
	return domain.PaymentDTO{
		ID:        payment.ID,
		InvoiceID: payment.InvoiceID,
		Amount:    payment.Amount,
		Method:    payment.Method,
		Reference: payment.Reference,
		Date:      formatDate(payment.Date),
		Notes:     payment.Notes,
		CreatedAt: formatTimestamp(payment.CreatedAt),
	}
}

// ToExpenseCategoryDTO converts ExpenseCategory to ExpenseCategoryDTO
func ToExpenseCategoryDTO(category *domain.ExpenseCategory) domain.ExpenseCategoryDTO {
	return domain.ExpenseCategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		CreatedAt:   formatTimestamp(category.CreatedAt),
	}
}

// ToExpenseDTO converts Expense to ExpenseDTO
func ToExpenseDTO(expense *domain.Expense) domain.ExpenseDTO {
	dto := domain.ExpenseDTO{
		ID:            expense.ID,
		CategoryID:    expense.CategoryID,
		Date:          formatDate(expense.Date),
		Supplier:      expense.Supplier,
		Description:   expense.Description,
		AmountHT:      expense.AmountHT,
		TaxRate:       expense.TaxRate,
		TaxAmount:     expense.TaxAmount,
		AmountTTC:     expense.AmountTTC,
		PaymentMethod: expense.PaymentMethod,
		Reference:     expense.Reference,
		CostCenter:    expense.CostCenter,
		Project:       expense.Project,
		Notes:         expense.Notes,
		Status:        expense.Status,
		CreatedAt:     formatTimestamp(expense.CreatedAt),
		UpdatedAt:     formatTimestamp(expense.UpdatedAt),
	}
	if expense.Category != nil {
		dto.CategoryName = expense.Category.Name
	}
	return dto
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(log *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          log.ID,
		UserID:      log.UserID,
		UserEmail:   log.UserEmail,
		Action:      log.Action,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Changes:     log.Changes,
		IPAddress:   log.IPAddress,
		UserAgent:   log.UserAgent,
		RequestID:   log.RequestID,
		PerformedAt: formatTimestamp(log.PerformedAt),
	}
}
