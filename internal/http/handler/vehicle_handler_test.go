package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadRequest builds an authenticated multipart request carrying one file
func (e *handlerEnv) uploadRequest(t *testing.T, target, filename string, content []byte, fields map[string]string, params map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withURLParams(req.WithContext(e.userContext()), params)
}

func TestVehicleHandler_CreateAndGet(t *testing.T) {
	env := newHandlerEnv(t)

	rr := serve(env.vehicles.Create, env.request(t, http.MethodPost, "/vehicles", domain.CreateVehicleRequest{
		Name:         "Sprinter",
		LicensePlate: "1-ABC-123",
		DailyRate:    85,
		KmRate:       0.3,
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	vehicle := decodeBody[domain.VehicleDTO](t, rr)
	assert.Equal(t, domain.VehicleStatusActive, vehicle.Status)

	rr = serve(env.vehicles.GetByID, env.request(t, http.MethodGet, "/vehicles/"+vehicle.ID.String(), nil,
		map[string]string{"id": vehicle.ID.String()}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1-ABC-123", decodeBody[domain.VehicleDTO](t, rr).LicensePlate)

	rr = serve(env.vehicles.Create, env.request(t, http.MethodPost, "/vehicles", `{"name":"Sans plaque"}`, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[domain.APIError](t, rr).Errors, "licensePlate")
}

func TestVehicleHandler_Availability(t *testing.T) {
	env := newHandlerEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	params := map[string]string{"id": van.ID.String()}
	base := "/vehicles/" + van.ID.String() + "/availability"

	rr := serve(env.vehicles.Availability, env.request(t, http.MethodGet, base+"?start=2024-01-10&end=2024-01-12", nil, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decodeBody[domain.AvailabilityDTO](t, rr)
	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)

	rr = serve(env.vehicles.Availability, env.request(t, http.MethodGet, base+"?start=2024-01-10", nil, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(env.vehicles.Availability, env.request(t, http.MethodGet, base+"?start=10/01/2024&end=2024-01-12", nil, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(env.vehicles.Availability, env.request(t, http.MethodGet, base+"?start=2024-01-12&end=2024-01-10", nil, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVehicleHandler_Documents(t *testing.T) {
	env := newHandlerEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	params := map[string]string{"id": van.ID.String()}
	target := "/vehicles/" + van.ID.String() + "/documents"
	content := []byte("%PDF-1.4 insurance certificate")

	rr := serve(env.vehicles.UploadDocument, env.uploadRequest(t, target, "assurance.pdf", content,
		map[string]string{"type": "insurance", "expiresAt": "2025-06-30"}, params))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	doc := decodeBody[domain.VehicleDocumentDTO](t, rr)
	assert.Equal(t, "application/pdf", doc.MimeType)
	require.NotNil(t, doc.ExpiresAt)
	assert.Equal(t, "2025-06-30", *doc.ExpiresAt)

	rr = serve(env.vehicles.ListDocuments, env.request(t, http.MethodGet, target, nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]domain.VehicleDocumentDTO](t, rr), 1)

	docParams := map[string]string{"id": van.ID.String(), "documentId": doc.ID.String()}

	rr = serve(env.vehicles.DownloadDocument, env.request(t, http.MethodGet, target+"/"+doc.ID.String(), nil, docParams))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, content, rr.Body.Bytes())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "assurance.pdf")

	rr = serve(env.vehicles.DeleteDocument, env.request(t, http.MethodDelete, target+"/"+doc.ID.String(), nil, docParams))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(env.vehicles.DownloadDocument, env.request(t, http.MethodGet, target+"/"+doc.ID.String(), nil, docParams))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVehicleHandler_UploadValidation(t *testing.T) {
	env := newHandlerEnv(t)
	van := testutil.CreateVehicle(t, env.db, env.org.ID, "1-ABC-123")
	params := map[string]string{"id": van.ID.String()}
	target := "/vehicles/" + van.ID.String() + "/documents"

	t.Run("file too large", func(t *testing.T) {
		rr := serve(env.vehicles.UploadDocument, env.uploadRequest(t, target, "scan.pdf",
			bytes.Repeat([]byte("x"), 2<<20), nil, params))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("invalid expiry", func(t *testing.T) {
		rr := serve(env.vehicles.UploadDocument, env.uploadRequest(t, target, "scan.pdf",
			[]byte("%PDF-1.4"), map[string]string{"expiresAt": "demain"}, params))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
