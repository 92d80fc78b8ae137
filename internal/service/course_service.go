package service

import (
	"context"

	"syllabye/internal/model"
	"syllabye/internal/query"
)

// CourseFilter narrows a course listing. Zero fields are left out.
type CourseFilter struct {
	Search   string `validate:"omitempty,max=100"`
	Category string `validate:"omitempty,max=64"`
	Page     int    `validate:"omitempty,min=1"`
	Size     int    `validate:"omitempty,min=1,max=100"`
}

func (f CourseFilter) Params() *query.Params {
	p := &query.Params{}
	p.Set("search", f.Search)
	p.Set("category", f.Category)
	p.SetInt("page", f.Page)
	p.SetInt("size", f.Size)
	return p
}

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	Search string `validate:"omitempty,max=100"`
}

func (f CategoryFilter) Params() *query.Params {
	p := &query.Params{}
	p.Set("search", f.Search)
	return p
}

// CourseService defines the cached course and category reads.
type CourseService interface {
	Courses(ctx context.Context, c Caller, f CourseFilter) query.Result[[]model.Course]
	Course(ctx context.Context, c Caller, courseID string) query.Result[*model.Course]
	RefreshCourse(ctx context.Context, c Caller, courseID string) query.Result[*model.Course]
	Categories(ctx context.Context, c Caller, f CategoryFilter) query.Result[[]model.Category]
}

type courseService struct {
	backend BackendClient
	store   *query.Store
}

func NewCourseService(backend BackendClient, store *query.Store) CourseService {
	return &courseService{backend: backend, store: store}
}

func (s *courseService) Courses(ctx context.Context, c Caller, f CourseFilter) query.Result[[]model.Course] {
	params := f.Params()
	return query.Fetch(ctx, s.store, c.Scope, query.ListKey("courses", params), []model.Course{},
		func(ctx context.Context) ([]model.Course, error) {
			return s.backend.ListCourses(ctx, c.Cookie, params.Encode())
		})
}

func (s *courseService) Course(ctx context.Context, c Caller, courseID string) query.Result[*model.Course] {
	return query.Fetch(ctx, s.store, c.Scope, query.ItemKey("course", courseID), nil,
		func(ctx context.Context) (*model.Course, error) {
			return s.backend.GetCourse(ctx, c.Cookie, courseID)
		})
}

// RefreshCourse drops the cached course and fetches it again.
func (s *courseService) RefreshCourse(ctx context.Context, c Caller, courseID string) query.Result[*model.Course] {
	s.store.Invalidate(c.Scope, query.ItemKey("course", courseID))
	return s.Course(ctx, c, courseID)
}

func (s *courseService) Categories(ctx context.Context, c Caller, f CategoryFilter) query.Result[[]model.Category] {
	params := f.Params()
	return query.Fetch(ctx, s.store, c.Scope, query.ListKey("categories", params), []model.Category{},
		func(ctx context.Context) ([]model.Category, error) {
			return s.backend.ListCategories(ctx, c.Cookie, params.Encode())
		})
}
