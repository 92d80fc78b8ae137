package service

import (
	"context"

	"syllabye/internal/model"
	"syllabye/internal/query"
)

// SyllabusFilter selects one syllabus by ID or narrows the syllabus listing.
type SyllabusFilter struct {
	UserID     string `validate:"omitempty,max=64"`
	CourseID   string `validate:"omitempty,max=64"`
	Year       int    `validate:"omitempty,min=1900,max=2100"`
	Semester   string `validate:"omitempty,max=32"`
	Page       int    `validate:"omitempty,min=1"`
	Size       int    `validate:"omitempty,min=1,max=100"`
	SyllabusID string `validate:"omitempty,max=64"`
}

func (f SyllabusFilter) Params() *query.Params {
	p := &query.Params{}
	p.Set("userId", f.UserID)
	p.Set("courseId", f.CourseID)
	p.SetInt("year", f.Year)
	p.Set("semester", f.Semester)
	p.SetInt("page", f.Page)
	p.SetInt("size", f.Size)
	return p
}

// SyllabiResult carries both paths; only the selected one touches the backend.
type SyllabiResult struct {
	Syllabus query.Result[*model.Syllabus]  `json:"syllabus"`
	Syllabi  query.Result[[]model.Syllabus] `json:"syllabi"`
}

type SyllabusService interface {
	Syllabi(ctx context.Context, c Caller, f SyllabusFilter) SyllabiResult
}

type syllabusService struct {
	backend BackendClient
	store   *query.Store
}

func NewSyllabusService(backend BackendClient, store *query.Store) SyllabusService {
	return &syllabusService{backend: backend, store: store}
}

func (s *syllabusService) Syllabi(ctx context.Context, c Caller, f SyllabusFilter) SyllabiResult {
	if f.SyllabusID != "" {
		return SyllabiResult{
			Syllabus: query.Fetch(ctx, s.store, c.Scope, query.ItemKey("syllabus", f.SyllabusID), nil,
				func(ctx context.Context) (*model.Syllabus, error) {
					return s.backend.GetSyllabus(ctx, c.Cookie, f.SyllabusID)
				}),
			Syllabi: query.Success([]model.Syllabus{}),
		}
	}

	params := f.Params()
	return SyllabiResult{
		Syllabus: query.Success[*model.Syllabus](nil),
		Syllabi: query.Fetch(ctx, s.store, c.Scope, query.ListKey("syllabi", params), []model.Syllabus{},
			func(ctx context.Context) ([]model.Syllabus, error) {
				return s.backend.ListSyllabi(ctx, c.Cookie, params.Encode())
			}),
	}
}
