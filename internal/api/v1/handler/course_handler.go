package handler

import (
	"net/http"
	"net/url"

	"syllabye/internal/service"

	"github.com/rs/zerolog"
)

// CourseHandler relays the course, category and program catalog.
type CourseHandler struct {
	backend service.BackendClient
	logger  zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(backend service.BackendClient, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		backend: backend,
		logger:  logger.With().Str("handler", "CourseHandler").Logger(),
	}
}

// RegisterRoutes mounts catalog routes
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses/courses", h.listCourses)
	mux.HandleFunc("GET /api/courses/categories", h.listCategories)
	mux.HandleFunc("GET /api/courses/{courseId}", h.getCourse)
	mux.HandleFunc("GET /api/programs/programs", h.listPrograms)
	mux.HandleFunc("GET /api/programs/{programId}", h.getProgram)
}

// listCourses godoc
// @Summary List courses
// @Description Relays the course listing; the query string is forwarded as is.
// @Tags courses
// @Produce json
// @Param search query string false "Search term"
// @Param category query string false "Category ID"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {array} model.Course
// @Router /api/courses/courses [get]
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/courses", RawQuery: r.URL.RawQuery})
}

// listCategories godoc
// @Summary List course categories
// @Tags courses
// @Produce json
// @Param search query string false "Search term"
// @Success 200 {array} model.Category
// @Router /api/courses/categories [get]
func (h *CourseHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/courses/categories", RawQuery: r.URL.RawQuery})
}

// getCourse godoc
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} model.Course
// @Router /api/courses/{courseId} [get]
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/courses/" + url.PathEscape(r.PathValue("courseId"))})
}

// listPrograms godoc
// @Summary List programs
// @Tags programs
// @Produce json
// @Param search query string false "Search term"
// @Param faculty query string false "Faculty"
// @Success 200 {array} model.Program
// @Router /api/programs/programs [get]
func (h *CourseHandler) listPrograms(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/programs", RawQuery: r.URL.RawQuery})
}

// getProgram godoc
// @Summary Get a program
// @Tags programs
// @Produce json
// @Param programId path string true "Program ID"
// @Success 200 {object} model.Program
// @Router /api/programs/{programId} [get]
func (h *CourseHandler) getProgram(w http.ResponseWriter, r *http.Request) {
	relay(w, r, h.backend, h.logger, service.BackendRequest{Path: "/programs/" + url.PathEscape(r.PathValue("programId"))})
}
