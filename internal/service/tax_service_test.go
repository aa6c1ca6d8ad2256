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

func defaultTaxes(t *testing.T, env *testEnv) []uuid.UUID {
	t.Helper()
	taxes, err := env.taxes.List(env.ctx, env.org.ID, false)
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, tax := range taxes {
		if tax.IsDefault {
			ids = append(ids, tax.ID)
		}
	}
	return ids
}

func TestTaxService_CreateDefaultReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.taxes.Create(env.ctx, env.org.ID, &domain.CreateTaxRequest{
		Name:      "TVA 6%",
		Rate:      6,
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	assert.Equal(t, []uuid.UUID{created.ID}, defaultTaxes(t, env))
}

func TestTaxService_SetDefault(t *testing.T) {
	env := newTestEnv(t)
	reduced := testutil.CreateTax(t, env.db, env.org.ID, "TVA 12%", 12, false)

	dto, err := env.taxes.SetDefault(env.ctx, env.org.ID, reduced.ID)
	require.NoError(t, err)
	assert.True(t, dto.IsDefault)
	assert.Equal(t, []uuid.UUID{reduced.ID}, defaultTaxes(t, env))

	// setting it again keeps a single default
	_, err = env.taxes.SetDefault(env.ctx, env.org.ID, reduced.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{reduced.ID}, defaultTaxes(t, env))
}

func TestTaxService_SetDefaultOtherOrganization(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.CreateOrganization(t, env.db, "Other")
	foreign := testutil.CreateTax(t, env.db, other.ID, "Foreign", 20, false)

	_, err := env.taxes.SetDefault(env.ctx, env.org.ID, foreign.ID)
	assert.ErrorIs(t, err, service.ErrTaxNotFound)
	assert.Equal(t, []uuid.UUID{env.vat21.ID}, defaultTaxes(t, env))
}

func TestTaxService_UpdateToDefault(t *testing.T) {
	env := newTestEnv(t)
	zero := testutil.CreateTax(t, env.db, env.org.ID, "Exonéré", 0, false)

	dto, err := env.taxes.Update(env.ctx, env.org.ID, zero.ID, &domain.UpdateTaxRequest{
		Name:      "Exonéré",
		Rate:      0,
		IsDefault: true,
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.True(t, dto.IsDefault)
	assert.Equal(t, []uuid.UUID{zero.ID}, defaultTaxes(t, env))
}

func TestTaxService_DeleteInUse(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateProduct(t, env.db, env.org.ID, "Palette", 12.5, &env.vat21.ID)

	err := env.taxes.Delete(env.ctx, env.org.ID, env.vat21.ID)
	assert.ErrorIs(t, err, service.ErrTaxInUse)
	assert.ErrorIs(t, err, service.ErrConflict)

	unused := testutil.CreateTax(t, env.db, env.org.ID, "Unused", 6, false)
	require.NoError(t, env.taxes.Delete(env.ctx, env.org.ID, unused.ID))

	_, err = env.taxes.GetByID(env.ctx, env.org.ID, unused.ID)
	assert.ErrorIs(t, err, service.ErrTaxNotFound)
}

func TestTaxService_GetRate(t *testing.T) {
	env := newTestEnv(t)

	rate, err := env.taxes.GetRate(env.ctx, env.org.ID, &env.vat21.ID)
	require.NoError(t, err)
	assertMoney(t, "21.00", rate)

	rate, err = env.taxes.GetRate(env.ctx, env.org.ID, nil)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())

	missing := uuid.New()
	rate, err = env.taxes.GetRate(env.ctx, env.org.ID, &missing)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestTaxService_ListActiveOnly(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.taxes.Create(env.ctx, env.org.ID, &domain.CreateTaxRequest{
		Name:     "Old rate",
		Rate:     19.5,
		IsActive: testutil.Ptr(false),
	})
	require.NoError(t, err)

	all, err := env.taxes.List(env.ctx, env.org.ID, false)
	require.NoError(t, err)
	active, err := env.taxes.List(env.ctx, env.org.ID, true)
	require.NoError(t, err)

	assert.Len(t, all, 2)
	assert.Len(t, active, 1)
	assert.Equal(t, env.vat21.ID, active[0].ID)
}
