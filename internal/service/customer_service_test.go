package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	private, err := env.customers.Create(env.ctx, env.org.ID, &domain.CreateCustomerRequest{
		Type:      domain.CustomerTypeB2C,
		FirstName: "Marie",
		LastName:  "Lambert",
		Email:     "marie@example.be",
	})
	require.NoError(t, err)
	assert.Equal(t, "Marie Lambert", private.DisplayName)
	assert.Equal(t, "BE", private.Country)

	b2c := domain.CustomerTypeB2C
	page, err := env.customers.List(env.ctx, env.org.ID, 1, 20, "", &b2c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = env.customers.List(env.ctx, env.org.ID, 1, 20, "acme", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, env.customer.ID, page.Data.([]domain.CustomerDTO)[0].ID)
}

func TestCustomerService_Update(t *testing.T) {
	env := newTestEnv(t)

	updated, err := env.customers.Update(env.ctx, env.org.ID, env.customer.ID, &domain.UpdateCustomerRequest{
		Type:        domain.CustomerTypeB2B,
		CompanyName: "Acme Logistics SPRL",
		VATNumber:   "BE0123456789",
		Country:     "LU",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Logistics SPRL", updated.DisplayName)
	assert.Equal(t, "LU", updated.Country)
}

func TestCustomerService_DeleteInUse(t *testing.T) {
	env := newTestEnv(t)
	env.createSaleQuote(t)

	err := env.customers.Delete(env.ctx, env.org.ID, env.customer.ID)
	assert.ErrorIs(t, err, service.ErrCustomerInUse)
	assert.ErrorIs(t, err, service.ErrConflict)

	unused := testutil.CreateCustomer(t, env.db, env.org.ID, "Unused SA")
	require.NoError(t, env.customers.Delete(env.ctx, env.org.ID, unused.ID))

	_, err = env.customers.GetByID(env.ctx, env.org.ID, unused.ID)
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestCustomerService_Addresses(t *testing.T) {
	env := newTestEnv(t)

	billing, err := env.customers.AddAddress(env.ctx, env.org.ID, env.customer.ID, &domain.CreateCustomerAddressRequest{
		Type:      domain.AddressTypeBilling,
		Street:    "Rue de la Loi 16",
		City:      "Bruxelles",
		ZipCode:   "1000",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "BE", billing.Country)

	depot, err := env.customers.AddAddress(env.ctx, env.org.ID, env.customer.ID, &domain.CreateCustomerAddressRequest{
		Type:      domain.AddressTypeBilling,
		Street:    "Chaussée de Louvain 200",
		City:      "Namur",
		ZipCode:   "5000",
		IsDefault: true,
	})
	require.NoError(t, err)

	customer, err := env.customers.GetByID(env.ctx, env.org.ID, env.customer.ID)
	require.NoError(t, err)
	require.Len(t, customer.Addresses, 2)
	for _, a := range customer.Addresses {
		assert.Equal(t, a.ID == depot.ID, a.IsDefault, a.Street)
	}

	require.NoError(t, env.customers.RemoveAddress(env.ctx, env.org.ID, env.customer.ID, billing.ID))
	assert.ErrorIs(t, env.customers.RemoveAddress(env.ctx, env.org.ID, env.customer.ID, billing.ID), service.ErrCustomerAddressNotFound)

	customer, err = env.customers.GetByID(env.ctx, env.org.ID, env.customer.ID)
	require.NoError(t, err)
	require.Len(t, customer.Addresses, 1)
	assert.Equal(t, depot.ID, customer.Addresses[0].ID)
}

func TestCustomerService_Contacts(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.customers.AddContact(env.ctx, env.org.ID, env.customer.ID, &domain.CreateCustomerContactRequest{
		FirstName: "Luc",
		LastName:  "Peeters",
		Position:  "Acheteur",
		IsPrimary: true,
	})
	require.NoError(t, err)
	second, err := env.customers.AddContact(env.ctx, env.org.ID, env.customer.ID, &domain.CreateCustomerContactRequest{
		FirstName: "Anne",
		LastName:  "Claes",
		Email:     "anne@acme.be",
		IsPrimary: true,
	})
	require.NoError(t, err)

	customer, err := env.customers.GetByID(env.ctx, env.org.ID, env.customer.ID)
	require.NoError(t, err)
	require.Len(t, customer.Contacts, 2)
	for _, c := range customer.Contacts {
		assert.Equal(t, c.ID == second.ID, c.IsPrimary, c.LastName)
	}

	require.NoError(t, env.customers.RemoveContact(env.ctx, env.org.ID, env.customer.ID, first.ID))
	assert.ErrorIs(t, env.customers.RemoveContact(env.ctx, env.org.ID, env.customer.ID, first.ID), service.ErrCustomerContactNotFound)
}

func TestCustomerService_AddressesAndContactsOfOtherOrganization(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.CreateOrganization(t, env.db, "Other")

	_, err := env.customers.AddAddress(env.ctx, other.ID, env.customer.ID, &domain.CreateCustomerAddressRequest{
		Type: domain.AddressTypeShipping, Street: "Rue Haute 1", City: "Liège", ZipCode: "4000",
	})
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)

	_, err = env.customers.AddContact(env.ctx, env.org.ID, uuid.New(), &domain.CreateCustomerContactRequest{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)

	contact, err := env.customers.AddContact(env.ctx, env.org.ID, env.customer.ID, &domain.CreateCustomerContactRequest{FirstName: "Luc", LastName: "Peeters"})
	require.NoError(t, err)
	assert.ErrorIs(t, env.customers.RemoveContact(env.ctx, other.ID, env.customer.ID, contact.ID), service.ErrCustomerContactNotFound)

	// a contact id under the wrong customer is not found either
	sibling := testutil.CreateCustomer(t, env.db, env.org.ID, "Beta SPRL")
	assert.ErrorIs(t, env.customers.RemoveContact(env.ctx, env.org.ID, sibling.ID, contact.ID), service.ErrCustomerContactNotFound)
}

func TestCustomerService_DeleteRemovesAddressesAndContacts(t *testing.T) {
	env := newTestEnv(t)
	customer := testutil.CreateCustomer(t, env.db, env.org.ID, "Beta SPRL")

	_, err := env.customers.AddAddress(env.ctx, env.org.ID, customer.ID, &domain.CreateCustomerAddressRequest{
		Type: domain.AddressTypeBilling, Street: "Rue Haute 1", City: "Liège", ZipCode: "4000",
	})
	require.NoError(t, err)
	_, err = env.customers.AddContact(env.ctx, env.org.ID, customer.ID, &domain.CreateCustomerContactRequest{FirstName: "Luc", LastName: "Peeters"})
	require.NoError(t, err)

	require.NoError(t, env.customers.Delete(env.ctx, env.org.ID, customer.ID))

	var addresses, contacts int64
	require.NoError(t, env.db.Model(&domain.CustomerAddress{}).Where("customer_id = ?", customer.ID).Count(&addresses).Error)
	require.NoError(t, env.db.Model(&domain.CustomerContact{}).Where("customer_id = ?", customer.ID).Count(&contacts).Error)
	assert.Zero(t, addresses)
	assert.Zero(t, contacts)
}

func TestProductService_CRUD(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.products.Create(env.ctx, env.org.ID, &domain.CreateProductRequest{
		Name:  "Sangle 5m",
		SKU:   "SG-5",
		Price: 7.5,
		TaxID: &env.vat21.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "unit", created.Unit)
	assert.True(t, created.IsActive)
	assert.Equal(t, "TVA 21%", created.TaxName)
	require.NotNil(t, created.TaxRate)
	assertMoney(t, "21.00", *created.TaxRate)

	updated, err := env.products.Update(env.ctx, env.org.ID, created.ID, &domain.UpdateProductRequest{
		Name:     "Sangle 5m",
		Price:    8,
		Unit:     "piece",
		IsActive: false,
	})
	require.NoError(t, err)
	assertMoney(t, "8.00", updated.Price)
	assert.Equal(t, "piece", updated.Unit)
	assert.Nil(t, updated.TaxID)

	testutil.CreateProduct(t, env.db, env.org.ID, "Palette Europe", 12.5, nil)

	active, err := env.products.List(env.ctx, env.org.ID, 1, 20, "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Total)

	all, err := env.products.List(env.ctx, env.org.ID, 1, 20, "sangle", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), all.Total)

	require.NoError(t, env.products.Delete(env.ctx, env.org.ID, created.ID))
	_, err = env.products.GetByID(env.ctx, env.org.ID, created.ID)
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestProductService_RejectsForeignTax(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.CreateOrganization(t, env.db, "Other")
	foreign := testutil.CreateTax(t, env.db, other.ID, "Foreign", 20, true)

	_, err := env.products.Create(env.ctx, env.org.ID, &domain.CreateProductRequest{
		Name:  "Carton",
		Price: 1,
		TaxID: &foreign.ID,
	})
	assert.ErrorIs(t, err, service.ErrTaxNotFound)
}

func TestOrganizationService_Update(t *testing.T) {
	env := newTestEnv(t)

	dto, err := env.organizations.Update(env.ctx, env.org.ID, &domain.UpdateOrganizationRequest{
		Name:    "  Transports Dupont & Fils ",
		IBAN:    "be68 5390 0754 7034",
		Country: "be",
	})
	require.NoError(t, err)
	assert.Equal(t, "Transports Dupont & Fils", dto.Name)
	assert.Equal(t, "BE68539007547034", dto.IBAN)
	assert.Equal(t, "BE", dto.Country)
	assert.Equal(t, env.org.Currency, dto.Currency)

	fetched, err := env.organizations.Get(env.ctx, env.org.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.IBAN, fetched.IBAN)
}
