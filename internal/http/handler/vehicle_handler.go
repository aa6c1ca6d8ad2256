package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
	maxUploadMB    int64
	logger         *zap.Logger
}

func NewVehicleHandler(vehicleService *service.VehicleService, maxUploadMB int64, logger *zap.Logger) *VehicleHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &VehicleHandler{
		vehicleService: vehicleService,
		maxUploadMB:    maxUploadMB,
		logger:         logger,
	}
}

// List godoc
// @Summary List vehicles
// @Tags Vehicles
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, plate, brand or model"
// @Param status query string false "Filter by status" Enums(ACTIVE, MAINTENANCE, INACTIVE)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.VehicleDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles [get]
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)

	var status *domain.VehicleStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.VehicleStatus(raw)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid vehicle status")
			return
		}
		status = &s
	}

	result, err := h.vehicleService.List(r.Context(), orgID, page, pageSize, r.URL.Query().Get("search"), status)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list vehicles")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param request body domain.CreateVehicleRequest true "Vehicle data"
// @Success 201 {object} domain.VehicleDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles [post]
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateVehicleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vehicle, err := h.vehicleService.Create(r.Context(), orgID, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "create vehicle")
		return
	}

	w.Header().Set("Location", "/api/v1/vehicles/"+vehicle.ID.String())
	respondJSON(w, http.StatusCreated, vehicle)
}

// GetByID godoc
// @Summary Get vehicle
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID" format(uuid)
// @Success 200 {object} domain.VehicleDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.GetByID(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "get vehicle")
		return
	}

	respondJSON(w, http.StatusOK, vehicle)
}

// Update godoc
// @Summary Update vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID" format(uuid)
// @Param request body domain.UpdateVehicleRequest true "Vehicle data"
// @Success 200 {object} domain.VehicleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}

	var req domain.UpdateVehicleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vehicle, err := h.vehicleService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "update vehicle")
		return
	}

	respondJSON(w, http.StatusOK, vehicle)
}

// Delete godoc
// @Summary Delete vehicle
// @Description Vehicles referenced by quotes or deliveries cannot be deleted
// @Tags Vehicles
// @Param id path string true "Vehicle ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}

	if err := h.vehicleService.Delete(r.Context(), orgID, id); err != nil {
		respondServiceError(w, r, h.logger, err, "delete vehicle")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Availability godoc
// @Summary Check vehicle availability
// @Description Lists SENT and ACCEPTED rental quotes overlapping the period
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID" format(uuid)
// @Param start query string true "First day (YYYY-MM-DD)"
// @Param end query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} domain.AvailabilityDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id}/availability [get]
func (h *VehicleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}

	start, err := dateQuery(r, "start")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := dateQuery(r, "end")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if start == nil || end == nil {
		respondWithError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	result, err := h.vehicleService.CheckAvailability(r.Context(), orgID, id, *start, *end)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "check vehicle availability")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// UploadDocument godoc
// @Summary Upload vehicle document
// @Description Stores a registration, insurance or inspection document for the vehicle
// @Tags Vehicles
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Vehicle ID" format(uuid)
// @Param file formData file true "File to upload"
// @Param type formData string false "Document type (e.g. insurance, inspection)"
// @Param expiresAt formData string false "Expiry date (YYYY-MM-DD)"
// @Success 201 {object} domain.VehicleDocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id}/documents [post]
func (h *VehicleHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	upload := &service.DocumentUpload{
		Filename:    header.Filename,
		Type:        r.FormValue("type"),
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	}
	if raw := r.FormValue("expiresAt"); raw != "" {
		expires, err := parseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid expiresAt: expected YYYY-MM-DD")
			return
		}
		upload.ExpiresAt = &expires
	}

	doc, err := h.vehicleService.UploadDocument(r.Context(), orgID, id, upload)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "upload vehicle document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// ListDocuments godoc
// @Summary List vehicle documents
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID" format(uuid)
// @Success 200 {array} domain.VehicleDocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id}/documents [get]
func (h *VehicleHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}

	docs, err := h.vehicleService.ListDocuments(r.Context(), orgID, id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "list vehicle documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// DownloadDocument godoc
// @Summary Download vehicle document
// @Tags Vehicles
// @Produce octet-stream
// @Param id path string true "Vehicle ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id}/documents/{documentId} [get]
func (h *VehicleHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}
	docID, ok := uuidParam(w, r, "documentId", "document")
	if !ok {
		return
	}

	doc, reader, err := h.vehicleService.DownloadDocument(r.Context(), orgID, id, docID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "download vehicle document")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("failed to stream vehicle document", zap.Error(err))
	}
}

// DeleteDocument godoc
// @Summary Delete vehicle document
// @Tags Vehicles
// @Param id path string true "Vehicle ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id}/documents/{documentId} [delete]
func (h *VehicleHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", "vehicle")
	if !ok {
		return
	}
	docID, ok := uuidParam(w, r, "documentId", "document")
	if !ok {
		return
	}

	if err := h.vehicleService.DeleteDocument(r.Context(), orgID, id, docID); err != nil {
		respondServiceError(w, r, h.logger, err, "delete vehicle document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
