package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/repository"
	"github.com/straye-as/backoffice-api/internal/service"
	"github.com/straye-as/backoffice-api/internal/storage"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableDeleteStorage stores files locally but fails every delete
type unreachableDeleteStorage struct {
	storage.Storage
	deletes int
}

func (s *unreachableDeleteStorage) Delete(ctx context.Context, storagePath string) error {
	s.deletes++
	return errors.New("storage unavailable")
}

// rentalQuote books the vehicle between start and end and moves the quote to status
func (e *testEnv) rentalQuote(t *testing.T, vehicle *domain.Vehicle, start, end [3]int, status domain.QuoteStatus) *domain.QuoteDTO {
	t.Helper()
	quote, err := e.quotes.Create(e.ctx, e.org.ID, &domain.CreateQuoteRequest{
		Type:            domain.QuoteTypeRental,
		CustomerID:      e.customer.ID,
		VehicleID:       &vehicle.ID,
		RentalStartDate: testutil.Ptr(testutil.Date(start[0], time.Month(start[1]), start[2])),
		RentalEndDate:   testutil.Ptr(testutil.Date(end[0], time.Month(end[1]), end[2])),
	})
	require.NoError(t, err)
	if status != domain.QuoteStatusDraft {
		quote, err = e.quotes.ChangeStatus(e.ctx, e.org.ID, quote.ID, status)
		require.NoError(t, err)
	}
	return quote
}

func TestVehicleService_CheckAvailability(t *testing.T) {
	env := newTestEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	booked := env.rentalQuote(t, van, [3]int{2024, 1, 10}, [3]int{2024, 1, 15}, domain.QuoteStatusSent)

	tests := []struct {
		name      string
		start     [3]int
		end       [3]int
		available bool
	}{
		{"overlapping end", [3]int{2024, 1, 14}, [3]int{2024, 1, 20}, false},
		{"touching last day", [3]int{2024, 1, 15}, [3]int{2024, 1, 18}, false},
		{"inside period", [3]int{2024, 1, 11}, [3]int{2024, 1, 12}, false},
		{"after period", [3]int{2024, 1, 16}, [3]int{2024, 1, 20}, true},
		{"before period", [3]int{2024, 1, 1}, [3]int{2024, 1, 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.vehicles.CheckAvailability(env.ctx, env.org.ID, van.ID,
				testutil.Date(tt.start[0], time.Month(tt.start[1]), tt.start[2]),
				testutil.Date(tt.end[0], time.Month(tt.end[1]), tt.end[2]))
			require.NoError(t, err)
			assert.Equal(t, tt.available, result.Available)
			if !tt.available {
				require.Len(t, result.Conflicts, 1)
				assert.Equal(t, booked.ID, result.Conflicts[0].QuoteID)
				assert.Equal(t, "2024-01-10", result.Conflicts[0].RentalStartDate)
			}
		})
	}
}

func TestVehicleService_DraftAndRejectedQuotesDoNotReserve(t *testing.T) {
	env := newTestEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	env.rentalQuote(t, van, [3]int{2024, 1, 10}, [3]int{2024, 1, 15}, domain.QuoteStatusDraft)
	env.rentalQuote(t, van, [3]int{2024, 1, 10}, [3]int{2024, 1, 15}, domain.QuoteStatusRejected)

	result, err := env.vehicles.CheckAvailability(env.ctx, env.org.ID, van.ID,
		testutil.Date(2024, 1, 12), testutil.Date(2024, 1, 13))
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)
}

func TestVehicleService_CheckAvailabilityInvalidRange(t *testing.T) {
	env := newTestEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")

	_, err := env.vehicles.CheckAvailability(env.ctx, env.org.ID, van.ID,
		testutil.Date(2024, 1, 20), testutil.Date(2024, 1, 10))
	assert.ErrorIs(t, err, service.ErrInvalidDateRange)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestVehicleService_DeleteInUse(t *testing.T) {
	env := newTestEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	env.rentalQuote(t, van, [3]int{2024, 1, 10}, [3]int{2024, 1, 15}, domain.QuoteStatusDraft)

	err := env.vehicles.Delete(env.ctx, env.org.ID, van.ID)
	assert.ErrorIs(t, err, service.ErrVehicleInUse)

	spare := testutil.CreateVehicle(t, env.db, env.org.ID, "2-XYZ-999")
	require.NoError(t, env.vehicles.Delete(env.ctx, env.org.ID, spare.ID))
	_, err = env.vehicles.GetByID(env.ctx, env.org.ID, spare.ID)
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)
}

func TestVehicleService_DeleteReferencedByDelivery(t *testing.T) {
	env := newTestEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	quote := env.createSaleQuote(t)

	_, err := env.deliveries.Create(env.ctx, env.org.ID, quote.ID, &domain.DeliveryRequest{
		Type:      domain.DeliveryTypeWith,
		VehicleID: &van.ID,
	})
	require.NoError(t, err)

	err = env.vehicles.Delete(env.ctx, env.org.ID, van.ID)
	assert.ErrorIs(t, err, service.ErrVehicleInUse)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = env.vehicles.GetByID(env.ctx, env.org.ID, van.ID)
	assert.NoError(t, err)
}

func TestVehicleService_DeleteSucceedsWhenFileCleanupFails(t *testing.T) {
	env := newTestEnv(t)
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := &unreachableDeleteStorage{Storage: local}
	vehicles := service.NewVehicleService(repository.NewVehicleRepository(env.db), repository.NewQuoteRepository(env.db), store, zap.NewNop())

	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	for _, name := range []string{"assurance.pdf", "carte-grise.pdf"} {
		_, err := vehicles.UploadDocument(env.ctx, env.org.ID, van.ID, &service.DocumentUpload{
			Filename: name,
			Data:     bytes.NewReader([]byte("%PDF-1.4 " + name)),
		})
		require.NoError(t, err)
	}

	require.NoError(t, vehicles.Delete(env.ctx, env.org.ID, van.ID))
	assert.Equal(t, 2, store.deletes)

	_, err = vehicles.GetByID(env.ctx, env.org.ID, van.ID)
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)

	var remaining int64
	require.NoError(t, env.db.Model(&domain.VehicleDocument{}).Where("vehicle_id = ?", van.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestVehicleService_CreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.vehicles.Create(env.ctx, env.org.ID, &domain.CreateVehicleRequest{
		Name:         "Sprinter",
		LicensePlate: "1-SPR-001",
		DailyRate:    95,
		KmRate:       0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStatusActive, created.Status)
	assertMoney(t, "95.00", created.DailyRate)

	updated, err := env.vehicles.Update(env.ctx, env.org.ID, created.ID, &domain.UpdateVehicleRequest{
		Name:         "Sprinter XL",
		LicensePlate: "1-SPR-001",
		DailyRate:    110,
		KmRate:       0.4,
		Status:       domain.VehicleStatusMaintenance,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sprinter XL", updated.Name)
	assert.Equal(t, domain.VehicleStatusMaintenance, updated.Status)

	status := domain.VehicleStatusMaintenance
	page, err := env.vehicles.List(env.ctx, env.org.ID, 1, 20, "", &status)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestVehicleService_Documents(t *testing.T) {
	env := newTestEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	content := []byte("%PDF-1.4 insurance certificate")

	doc, err := env.vehicles.UploadDocument(env.ctx, env.org.ID, van.ID, &service.DocumentUpload{
		Filename: "assurance.pdf",
		Type:     "insurance",
		Data:     bytes.NewReader(content),
	})
	require.NoError(t, err)
	assert.Equal(t, "assurance.pdf", doc.Name)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len(content)), doc.Size)

	docs, err := env.vehicles.ListDocuments(env.ctx, env.org.ID, van.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)

	meta, reader, err := env.vehicles.DownloadDocument(env.ctx, env.org.ID, van.ID, doc.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "insurance", meta.Type)

	require.NoError(t, env.vehicles.DeleteDocument(env.ctx, env.org.ID, van.ID, doc.ID))
	_, _, err = env.vehicles.DownloadDocument(env.ctx, env.org.ID, van.ID, doc.ID)
	assert.ErrorIs(t, err, service.ErrVehicleDocumentNotFound)
}

func TestVehicleService_DocumentsOfOtherOrganization(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.CreateOrganization(t, env.db, "Other")
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")

	_, err := env.vehicles.UploadDocument(env.ctx, other.ID, van.ID, &service.DocumentUpload{
		Filename: "carte-grise.pdf",
		Data:     bytes.NewReader([]byte("x")),
	})
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)

	_, err = env.vehicles.ListDocuments(env.ctx, other.ID, van.ID)
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)
}
