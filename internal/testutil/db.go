package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/backoffice-api/internal/database"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with every model migrated.
// A single connection keeps the whole test on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")
	return db
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateOrganization inserts an organization with Belgian defaults
func CreateOrganization(t *testing.T, db *gorm.DB, name string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{
		Name:     name,
		Country:  "BE",
		Currency: "EUR",
		Locale:   "fr-BE",
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

// CreateCustomer inserts a B2B customer owned by the organization
func CreateCustomer(t *testing.T, db *gorm.DB, orgID uuid.UUID, companyName string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		OrganizationID: orgID,
		Type:           domain.CustomerTypeB2B,
		CompanyName:    companyName,
		Email:          "billing@example.com",
		Country:        "BE",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(customer).Error)
	return customer
}

// CreateTax inserts an active tax with the given rate in percent
func CreateTax(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string, rate float64, isDefault bool) *domain.Tax {
	t.Helper()
	tax := &domain.Tax{
		OrganizationID: orgID,
		Name:           name,
		Rate:           decimal.NewFromFloat(rate),
		IsDefault:      isDefault,
		IsActive:       true,
	}
	require.NoError(t, db.Create(tax).Error)
	return tax
}

// CreateProduct inserts an active product, optionally linked to a tax
func CreateProduct(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string, price float64, taxID *uuid.UUID) *domain.Product {
	t.Helper()
	product := &domain.Product{
		OrganizationID: orgID,
		Name:           name,
		Description:    name,
		Price:          decimal.NewFromFloat(price),
		TaxID:          taxID,
		Unit:           "unit",
		IsActive:       true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(product).Error)
	return product
}

// CreateVehicle inserts an active vehicle
func CreateVehicle(t *testing.T, db *gorm.DB, orgID uuid.UUID, plate string) *domain.Vehicle {
	t.Helper()
	vehicle := &domain.Vehicle{
		OrganizationID: orgID,
		Name:           "Van " + plate,
		LicensePlate:   plate,
		DailyRate:      decimal.NewFromInt(80),
		KmRate:         decimal.NewFromFloat(0.35),
		Status:         domain.VehicleStatusActive,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(vehicle).Error)
	return vehicle
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
