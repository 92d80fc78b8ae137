package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/model"
	"syllabye/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SyllabusHandler relays syllabus reads and the upload registration.
type SyllabusHandler struct {
	backend  service.BackendClient
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewSyllabusHandler creates a new SyllabusHandler
func NewSyllabusHandler(backend service.BackendClient, validate *validator.Validate, logger zerolog.Logger) *SyllabusHandler {
	return &SyllabusHandler{
		backend:  backend,
		validate: validate,
		logger:   logger.With().Str("handler", "SyllabusHandler").Logger(),
	}
}

// RegisterRoutes mounts syllabus routes
func (h *SyllabusHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/syllabi/syllabi", h.listSyllabi)
	mux.HandleFunc("GET /api/syllabi/syllabi/{syllabusId}", h.getSyllabus)
	mux.HandleFunc("GET /api/syllabi/{syllabusId}", h.getSyllabus)
	mux.HandleFunc("POST /api/syllabi/upload", h.uploadSyllabus)
}

// listSyllabi godoc
// @Summary List syllabi
// @Tags syllabi
// @Produce json
// @Param userId query string false "Uploader"
// @Param courseId query string false "Course ID"
// @Param year query int false "Year"
// @Param semester query string false "Semester"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {array} model.Syllabus
// @Router /api/syllabi/syllabi [get]
func (h *SyllabusHandler) listSyllabi(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/syllabi", RawQuery: r.URL.RawQuery})
}

// getSyllabus godoc
// @Summary Get a syllabus
// @Description Relays the syllabus and its presigned download URL in the X-Presigned-Url header.
// @Tags syllabi
// @Produce json
// @Param syllabusId path string true "Syllabus ID"
// @Success 200 {object} model.Syllabus
// @Header 200 {string} X-Presigned-Url "Presigned download URL"
// @Router /api/syllabi/{syllabusId} [get]
func (h *SyllabusHandler) getSyllabus(w http.ResponseWriter, r *http.Request) {
	path := "/syllabi/" + url.PathEscape(r.PathValue("syllabusId"))
	resp, err := h.backend.Do(r.Context(), service.BackendRequest{Path: path, Cookie: r.Header.Get("Cookie")})
	if err != nil {
		h.logger.Warn().Err(err).Str("path", path).Msg("Syllabus fetch failed in proxy route")
		writeJSON(w, http.StatusOK, nullBody)
		return
	}
	if presigned := resp.Header.Get(service.HeaderPresignedURL); presigned != "" {
		w.Header().Set(service.HeaderPresignedURL, presigned)
	}
	writeJSON(w, http.StatusOK, resp.JSON())
}

// uploadSyllabus godoc
// @Summary Register a syllabus upload
// @Description Submits upload metadata to the backend and returns the presigned storage URL.
// @Tags syllabi
// @Accept json
// @Produce json
// @Param metadata body model.UploadMetadata true "Upload metadata"
// @Success 200 {object} dto.UploadSyllabusResponseDTO
// @Router /api/syllabi/upload [post]
func (h *SyllabusHandler) uploadSyllabus(w http.ResponseWriter, r *http.Request) {
	var meta model.UploadMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeJSON(w, http.StatusOK, dto.UploadSyllabusResponseDTO{
			Status:    http.StatusBadRequest,
			ErrorText: "Invalid JSON payload: " + err.Error(),
		})
		return
	}
	if err := h.validate.Struct(&meta); err != nil {
		writeJSON(w, http.StatusOK, dto.UploadSyllabusResponseDTO{
			Status:    http.StatusBadRequest,
			ErrorText: "Validation failed: " + err.Error(),
		})
		return
	}

	ticket, err := h.backend.CreateSyllabus(r.Context(), r.Header.Get("Cookie"), meta)
	if err != nil {
		h.logger.Error().Err(err).Str("course_id", meta.CourseID).Msg("Syllabus metadata submission failed")
		writeJSON(w, http.StatusOK, dto.UploadSyllabusResponseDTO{
			Status:    backendStatus(err),
			ErrorText: backendErrorText(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, dto.UploadSyllabusResponseDTO{Success: true, Data: ticket})
}
