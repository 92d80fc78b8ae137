package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"syllabye/internal/model"

	"github.com/rs/zerolog"
)

// Response headers set by the backend on syllabus endpoints.
const (
	HeaderPresignedURL = "X-Presigned-Url"
	HeaderLocation     = "Location"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("backend %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// BackendRequest describes one call to the backend API. Cookie is forwarded verbatim.
type BackendRequest struct {
	Method   string
	Path     string
	RawQuery string
	Cookie   string
	Body     any
}

// BackendResponse is a successful (2xx) backend answer.
type BackendResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON returns the body as raw JSON, mapping an empty or non-JSON body to null.
func (r *BackendResponse) JSON() json.RawMessage {
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return json.RawMessage("null")
	}
	return json.RawMessage(trimmed)
}

// BackendClient talks to the Syllabye backend API on behalf of a browser session.
type BackendClient interface {
	Do(ctx context.Context, req BackendRequest) (*BackendResponse, error)

	GetSession(ctx context.Context, cookie string) (*model.Session, error)
	GetUser(ctx context.Context, cookie, userID string) (*model.User, error)
	UpdateUser(ctx context.Context, cookie, userID string, patch model.UserUpdate) (*model.User, error)
	NicknameExists(ctx context.Context, cookie, search string) (*model.NicknameExists, error)

	ListCourses(ctx context.Context, cookie, rawQuery string) ([]model.Course, error)
	GetCourse(ctx context.Context, cookie, courseID string) (*model.Course, error)
	ListCategories(ctx context.Context, cookie, rawQuery string) ([]model.Category, error)
	ListPrograms(ctx context.Context, cookie, rawQuery string) ([]model.Program, error)
	GetProgram(ctx context.Context, cookie, programID string) (*model.Program, error)
	ListSyllabi(ctx context.Context, cookie, rawQuery string) ([]model.Syllabus, error)
	GetSyllabus(ctx context.Context, cookie, syllabusID string) (*model.Syllabus, error)
	CreateSyllabus(ctx context.Context, cookie string, meta model.UploadMetadata) (*model.UploadTicket, error)
}

type backendClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewBackendClient(baseURL string, timeout time.Duration, logger zerolog.Logger) BackendClient {
	return &backendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("service", "BackendClient").Logger(),
	}
}

func (c *backendClient) Do(ctx context.Context, r BackendRequest) (*BackendResponse, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + r.Path
	if r.RawQuery != "" {
		target += "?" + r.RawQuery
	}

	var body io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if r.Cookie != "" {
		req.Header.Set("Cookie", r.Cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request to backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().
			Str("method", method).
			Str("path", r.Path).
			Int("status_code", resp.StatusCode).
			Msg("Backend returned error status")
		return nil, &StatusError{
			Method:     method,
			Path:       r.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return &BackendResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// getJSON issues a GET and decodes the body into out. A null body leaves out untouched.
func (c *backendClient) getJSON(ctx context.Context, cookie, path, rawQuery string, out any) error {
	resp, err := c.Do(ctx, BackendRequest{Path: path, RawQuery: rawQuery, Cookie: cookie})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.JSON(), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *backendClient) GetSession(ctx context.Context, cookie string) (*model.Session, error) {
	var session *model.Session
	if err := c.getJSON(ctx, cookie, "/me", "", &session); err != nil {
		return nil, err
	}
	if session != nil && session.UserID == "" {
		return nil, nil
	}
	return session, nil
}

func (c *backendClient) GetUser(ctx context.Context, cookie, userID string) (*model.User, error) {
	var user *model.User
	if err := c.getJSON(ctx, cookie, "/users/"+url.PathEscape(userID), "", &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *backendClient) UpdateUser(ctx context.Context, cookie, userID string, patch model.UserUpdate) (*model.User, error) {
	resp, err := c.Do(ctx, BackendRequest{
		Method: http.MethodPatch,
		Path:   "/users/" + url.PathEscape(userID),
		Cookie: cookie,
		Body:   patch,
	})
	if err != nil {
		return nil, err
	}
	var user *model.User
	if err := json.Unmarshal(resp.JSON(), &user); err != nil {
		return nil, fmt.Errorf("decoding user patch response: %w", err)
	}
	return user, nil
}

func (c *backendClient) NicknameExists(ctx context.Context, cookie, search string) (*model.NicknameExists, error) {
	var exists model.NicknameExists
	query := url.Values{"search": []string{search}}.Encode()
	if err := c.getJSON(ctx, cookie, "/users/exists", query, &exists); err != nil {
		return nil, err
	}
	return &exists, nil
}

func (c *backendClient) ListCourses(ctx context.Context, cookie, rawQuery string) ([]model.Course, error) {
	var courses []model.Course
	if err := c.getJSON(ctx, cookie, "/courses", rawQuery, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *backendClient) GetCourse(ctx context.Context, cookie, courseID string) (*model.Course, error) {
	var course *model.Course
	if err := c.getJSON(ctx, cookie, "/courses/"+url.PathEscape(courseID), "", &course); err != nil {
		return nil, err
	}
	return course, nil
}

func (c *backendClient) ListCategories(ctx context.Context, cookie, rawQuery string) ([]model.Category, error) {
	var categories []model.Category
	if err := c.getJSON(ctx, cookie, "/courses/categories", rawQuery, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *backendClient) ListPrograms(ctx context.Context, cookie, rawQuery string) ([]model.Program, error) {
	var programs []model.Program
	if err := c.getJSON(ctx, cookie, "/programs", rawQuery, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *backendClient) GetProgram(ctx context.Context, cookie, programID string) (*model.Program, error) {
	var program *model.Program
	if err := c.getJSON(ctx, cookie, "/programs/"+url.PathEscape(programID), "", &program); err != nil {
		return nil, err
	}
	return program, nil
}

func (c *backendClient) ListSyllabi(ctx context.Context, cookie, rawQuery string) ([]model.Syllabus, error) {
	var syllabi []model.Syllabus
	if err := c.getJSON(ctx, cookie, "/syllabi", rawQuery, &syllabi); err != nil {
		return nil, err
	}
	return syllabi, nil
}

func (c *backendClient) GetSyllabus(ctx context.Context, cookie, syllabusID string) (*model.Syllabus, error) {
	resp, err := c.Do(ctx, BackendRequest{Path: "/syllabi/" + url.PathEscape(syllabusID), Cookie: cookie})
	if err != nil {
		return nil, err
	}
	var syllabus *model.Syllabus
	if err := json.Unmarshal(resp.JSON(), &syllabus); err != nil {
		return nil, fmt.Errorf("decoding syllabus response: %w", err)
	}
	if syllabus != nil {
		syllabus.DownloadURL = resp.Header.Get(HeaderPresignedURL)
	}
	return syllabus, nil
}

// CreateSyllabus registers the upload metadata. The backend answers 201 with the
// presigned storage URL and the new resource location in headers.
func (c *backendClient) CreateSyllabus(ctx context.Context, cookie string, meta model.UploadMetadata) (*model.UploadTicket, error) {
	resp, err := c.Do(ctx, BackendRequest{
		Method: http.MethodPost,
		Path:   "/syllabi",
		Cookie: cookie,
		Body:   meta,
	})
	if err != nil {
		return nil, err
	}
	ticket := &model.UploadTicket{
		Body:         string(resp.Body),
		Location:     resp.Header.Get(HeaderLocation),
		PresignedURL: resp.Header.Get(HeaderPresignedURL),
	}
	if ticket.PresignedURL == "" {
		return nil, fmt.Errorf("backend did not return a presigned upload URL")
	}
	return ticket, nil
}
