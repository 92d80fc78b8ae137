package handler

import (
	"errors"
	"net/http"
	"strconv"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/auth"
	"syllabye/internal/model"
	"syllabye/internal/query"
	"syllabye/internal/service"
	"syllabye/internal/upload"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PageHandler assembles page models from the cached composables and the
// request's auth state.
type PageHandler struct {
	courses    service.CourseService
	programs   service.ProgramService
	syllabi    service.SyllabusService
	uploader   *upload.Uploader
	validate   *validator.Validate
	cookieName string
	maxUpload  int64
	logger     zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(
	courses service.CourseService,
	programs service.ProgramService,
	syllabi service.SyllabusService,
	uploader *upload.Uploader,
	validate *validator.Validate,
	cookieName string,
	maxUpload int64,
	logger zerolog.Logger,
) *PageHandler {
	return &PageHandler{
		courses:    courses,
		programs:   programs,
		syllabi:    syllabi,
		uploader:   uploader,
		validate:   validate,
		cookieName: cookieName,
		maxUpload:  maxUpload,
		logger:     logger.With().Str("handler", "PageHandler").Logger(),
	}
}

// RegisterRoutes mounts page routes. Guarded pages go through authMw.
func (h *PageHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /courses", h.coursesPage)
	mux.HandleFunc("GET /courses/{courseId}", h.coursePage)
	mux.HandleFunc("GET /programs", h.programsPage)
	mux.HandleFunc("GET /programs/{programId}", h.programPage)
	mux.Handle("GET /profile", authMw(http.HandlerFunc(h.profilePage)))
	mux.Handle("GET /syllabi/{syllabusId}", authMw(http.HandlerFunc(h.syllabusPage)))
	mux.Handle("POST /upload", authMw(http.HandlerFunc(h.uploadPage)))
}

func (h *PageHandler) caller(r *http.Request) (*auth.State, service.Caller) {
	st := auth.FromContext(r.Context())
	return st, service.CallerFor(st, h.cookieName)
}

func authSnapshot(st *auth.State) dto.AuthDTO {
	return dto.AuthDTO{Session: st.Session(), User: st.User()}
}

// home godoc
// @Summary Home page model
// @Tags pages
// @Produce json
// @Success 200 {object} dto.HomePageDTO
// @Router / [get]
func (h *PageHandler) home(w http.ResponseWriter, r *http.Request) {
	st, c := h.caller(r)
	writeJSON(w, http.StatusOK, dto.HomePageDTO{
		AuthDTO:    authSnapshot(st),
		Categories: h.courses.Categories(r.Context(), c, service.CategoryFilter{}),
	})
}

// coursesPage godoc
// @Summary Course catalog page model
// @Tags pages
// @Produce json
// @Param search query string false "Search term"
// @Param category query string false "Category ID"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {object} dto.CoursesPageDTO
// @Failure 400 {object} dto.ErrorDTO "Invalid filter"
// @Router /courses [get]
func (h *PageHandler) coursesPage(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := service.CourseFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Size:     size,
	}
	if err := h.validate.Struct(&filter); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	st, c := h.caller(r)
	writeJSON(w, http.StatusOK, dto.CoursesPageDTO{
		AuthDTO:    authSnapshot(st),
		Courses:    h.courses.Courses(r.Context(), c, filter),
		Categories: h.courses.Categories(r.Context(), c, service.CategoryFilter{}),
	})
}

// coursePage godoc
// @Summary Course page model
// @Description The course and the syllabi uploaded for it.
// @Tags pages
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CoursePageDTO
// @Router /courses/{courseId} [get]
func (h *PageHandler) coursePage(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("courseId")
	st, c := h.caller(r)
	writeJSON(w, http.StatusOK, dto.CoursePageDTO{
		AuthDTO: authSnapshot(st),
		Course:  h.courses.Course(r.Context(), c, courseID),
		Syllabi: h.syllabi.Syllabi(r.Context(), c, service.SyllabusFilter{CourseID: courseID}),
	})
}

// programsPage godoc
// @Summary Program listing page model
// @Tags pages
// @Produce json
// @Param search query string false "Search term"
// @Param faculty query string false "Faculty"
// @Success 200 {object} dto.ProgramsPageDTO
// @Failure 400 {object} dto.ErrorDTO "Invalid filter"
// @Router /programs [get]
func (h *PageHandler) programsPage(w http.ResponseWriter, r *http.Request) {
	filter := service.ProgramFilter{
		Search:  r.URL.Query().Get("search"),
		Faculty: r.URL.Query().Get("faculty"),
	}
	if err := h.validate.Struct(&filter); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	st, c := h.caller(r)
	writeJSON(w, http.StatusOK, dto.ProgramsPageDTO{
		AuthDTO:  authSnapshot(st),
		Programs: h.programs.Programs(r.Context(), c, filter),
	})
}

// programPage godoc
// @Summary Program page model
// @Tags pages
// @Produce json
// @Param programId path string true "Program ID"
// @Success 200 {object} dto.ProgramsPageDTO
// @Router /programs/{programId} [get]
func (h *PageHandler) programPage(w http.ResponseWriter, r *http.Request) {
	st, c := h.caller(r)
	writeJSON(w, http.StatusOK, dto.ProgramsPageDTO{
		AuthDTO:  authSnapshot(st),
		Programs: h.programs.Programs(r.Context(), c, service.ProgramFilter{ProgramID: r.PathValue("programId")}),
	})
}

// profilePage godoc
// @Summary Profile page model
// @Description The signed-in user, their program and the syllabi they uploaded.
// @Tags pages
// @Produce json
// @Success 200 {object} dto.ProfilePageDTO
// @Success 302 {string} string "Redirects to /?redirect= without a session"
// @Router /profile [get]
func (h *PageHandler) profilePage(w http.ResponseWriter, r *http.Request) {
	st, c := h.caller(r)
	userID, err := st.UserID()
	if err != nil {
		http.Redirect(w, r, auth.LoginRedirect(r.URL.RequestURI()), http.StatusFound)
		return
	}

	// Without a program the profile shows none rather than the whole listing.
	program := service.ProgramsResult{
		Program:  query.Success[*model.Program](nil),
		Programs: query.Success([]model.Program{}),
	}
	if user := st.User(); user != nil && user.ProgramID != nil && *user.ProgramID != "" {
		program = h.programs.Programs(r.Context(), c, service.ProgramFilter{ProgramID: *user.ProgramID})
	}

	writeJSON(w, http.StatusOK, dto.ProfilePageDTO{
		AuthDTO: authSnapshot(st),
		Program: program,
		Syllabi: h.syllabi.Syllabi(r.Context(), c, service.SyllabusFilter{UserID: userID}),
	})
}

// syllabusPage godoc
// @Summary Syllabus page model
// @Tags pages
// @Produce json
// @Param syllabusId path string true "Syllabus ID"
// @Success 200 {object} dto.SyllabusPageDTO
// @Success 302 {string} string "Redirects to /?redirect= without a session"
// @Router /syllabi/{syllabusId} [get]
func (h *PageHandler) syllabusPage(w http.ResponseWriter, r *http.Request) {
	st, c := h.caller(r)
	res := h.syllabi.Syllabi(r.Context(), c, service.SyllabusFilter{SyllabusID: r.PathValue("syllabusId")})
	page := dto.SyllabusPageDTO{AuthDTO: authSnapshot(st), Syllabus: res}
	if res.Syllabus.Data != nil {
		page.DownloadURL = res.Syllabus.Data.DownloadURL
	}
	writeJSON(w, http.StatusOK, page)
}

// uploadPage godoc
// @Summary Upload a syllabus
// @Description Runs the presigned upload flow for a multipart file. Failures carry a generic error text.
// @Tags pages
// @Accept multipart/form-data
// @Produce json
// @Param courseId formData string true "Course ID"
// @Param year formData int true "Year"
// @Param semester formData string true "Semester"
// @Param file formData file true "Syllabus file"
// @Success 200 {object} upload.Result
// @Router /upload [post]
func (h *PageHandler) uploadPage(w http.ResponseWriter, r *http.Request) {
	st := auth.FromContext(r.Context())
	userID, err := st.UserID()
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, upload.Result{ErrorText: upload.GenericError})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.logger.Warn().Err(err).Msg("Invalid upload form")
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, upload.Result{ErrorText: upload.GenericError})
		return
	}

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		h.logger.Warn().Str("year", r.FormValue("year")).Msg("Upload form carries an invalid year")
		writeJSON(w, http.StatusBadRequest, upload.Result{ErrorText: upload.GenericError})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("Upload form carries no file")
		writeJSON(w, http.StatusBadRequest, upload.Result{ErrorText: upload.GenericError})
		return
	}
	defer file.Close()

	data := model.SyllabusUploadData{
		CourseID: r.FormValue("courseId"),
		Year:     year,
		Semester: r.FormValue("semester"),
	}

	res := h.uploader.Upload(r.Context(), st.Cookie(), userID, data, upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	writeJSON(w, http.StatusOK, res)
}
