package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func applyCustomerRequest(customer *domain.Customer, req *domain.CreateCustomerRequest) {
	customer.Type = req.Type
	customer.CompanyName = req.CompanyName
	customer.VATNumber = req.VATNumber
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Street = req.Street
	customer.City = req.City
	customer.ZipCode = req.ZipCode
	customer.Notes = req.Notes
	customer.Country = req.Country
	if customer.Country == "" {
		customer.Country = "BE"
	}
}

func (s *CustomerService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	customer := &domain.Customer{OrganizationID: orgID}
	applyCustomerRequest(customer, req)

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// GetByID returns the customer with its addresses and contacts
func (s *CustomerService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetWithContacts(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	applyCustomerRequest(customer, req)

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// Delete removes a customer that no quote or invoice references
func (s *CustomerService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.customerRepo.GetByID(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	count, err := s.customerRepo.CountDocuments(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to count customer documents: %w", err)
	}
	if count > 0 {
		return ErrCustomerInUse
	}

	if err := s.customerRepo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	return nil
}

func (s *CustomerService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, customerType *domain.CustomerType) (*domain.PaginatedResponse, error) {
	page, pageSize, _ = repository.Pagination(page, pageSize)

	customers, total, err := s.customerRepo.List(ctx, orgID, page, pageSize, search, customerType)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}

	return domain.NewPaginatedResponse(dtos, total, page, pageSize), nil
}

// verifyCustomer checks that the customer belongs to the organization
func (s *CustomerService) verifyCustomer(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.customerRepo.GetByID(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}
	return nil
}

// AddAddress attaches an address to a customer of the organization
func (s *CustomerService) AddAddress(ctx context.Context, orgID, customerID uuid.UUID, req *domain.CreateCustomerAddressRequest) (*domain.CustomerAddressDTO, error) {
	if err := s.verifyCustomer(ctx, orgID, customerID); err != nil {
		return nil, err
	}

	address := &domain.CustomerAddress{
		CustomerID: customerID,
		Type:       req.Type,
		Street:     req.Street,
		City:       req.City,
		ZipCode:    req.ZipCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
	if address.Country == "" {
		address.Country = "BE"
	}

	if err := s.customerRepo.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create customer address: %w", err)
	}

	dto := mapper.ToCustomerAddressDTO(address)
	return &dto, nil
}

func (s *CustomerService) RemoveAddress(ctx context.Context, orgID, customerID, addressID uuid.UUID) error {
	if err := s.verifyCustomer(ctx, orgID, customerID); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return ErrCustomerAddressNotFound
		}
		return err
	}

	deleted, err := s.customerRepo.DeleteAddress(ctx, customerID, addressID)
	if err != nil {
		return fmt.Errorf("failed to delete customer address: %w", err)
	}
	if !deleted {
		return ErrCustomerAddressNotFound
	}
	return nil
}

// AddContact attaches a contact person to a customer of the organization
func (s *CustomerService) AddContact(ctx context.Context, orgID, customerID uuid.UUID, req *domain.CreateCustomerContactRequest) (*domain.CustomerContactDTO, error) {
	if err := s.verifyCustomer(ctx, orgID, customerID); err != nil {
		return nil, err
	}

	contact := &domain.CustomerContact{
		CustomerID: customerID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		IsPrimary:  req.IsPrimary,
	}

	if err := s.customerRepo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create customer contact: %w", err)
	}

	dto := mapper.ToCustomerContactDTO(contact)
	return &dto, nil
}

func (s *CustomerService) RemoveContact(ctx context.Context, orgID, customerID, contactID uuid.UUID) error {
	if err := s.verifyCustomer(ctx, orgID, customerID); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return ErrCustomerContactNotFound
		}
		return err
	}

	deleted, err := s.customerRepo.DeleteContact(ctx, customerID, contactID)
	if err != nil {
		return fmt.Errorf("failed to delete customer contact: %w", err)
	}
	if !deleted {
		return ErrCustomerContactNotFound
	}
	return nil
}
