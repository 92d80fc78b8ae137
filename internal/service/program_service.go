package service

import (
	"context"

	"syllabye/internal/model"
	"syllabye/internal/query"
)

// ProgramFilter selects one program by ID or narrows the program listing.
type ProgramFilter struct {
	Search    string `validate:"omitempty,max=100"`
	Faculty   string `validate:"omitempty,max=100"`
	ProgramID string `validate:"omitempty,max=64"`
}

func (f ProgramFilter) Params() *query.Params {
	p := &query.Params{}
	p.Set("search", f.Search)
	p.Set("faculty", f.Faculty)
	return p
}

// ProgramsResult carries both paths; only the selected one touches the backend.
type ProgramsResult struct {
	Program  query.Result[*model.Program]  `json:"program"`
	Programs query.Result[[]model.Program] `json:"programs"`
}

type ProgramService interface {
	Programs(ctx context.Context, c Caller, f ProgramFilter) ProgramsResult
}

type programService struct {
	backend BackendClient
	store   *query.Store
}

func NewProgramService(backend BackendClient, store *query.Store) ProgramService {
	return &programService{backend: backend, store: store}
}

func (s *programService) Programs(ctx context.Context, c Caller, f ProgramFilter) ProgramsResult {
	if f.ProgramID != "" {
		return ProgramsResult{
			Program: query.Fetch(ctx, s.store, c.Scope, query.ItemKey("program", f.ProgramID), nil,
				func(ctx context.Context) (*model.Program, error) {
					return s.backend.GetProgram(ctx, c.Cookie, f.ProgramID)
				}),
			Programs: query.Success([]model.Program{}),
		}
	}

	params := f.Params()
	return ProgramsResult{
		Program: query.Success[*model.Program](nil),
		Programs: query.Fetch(ctx, s.store, c.Scope, query.ListKey("programs", params), []model.Program{},
			func(ctx context.Context) ([]model.Program, error) {
				return s.backend.ListPrograms(ctx, c.Cookie, params.Encode())
			}),
	}
}
