package dto

import (
	"syllabye/internal/model"
	"syllabye/internal/query"
	"syllabye/internal/service"
)

// AuthDTO is the session snapshot every page carries.
type AuthDTO struct {
	Session *model.Session `json:"session"`
	User    *model.User    `json:"user"`
}

type HomePageDTO struct {
	AuthDTO
	Categories query.Result[[]model.Category] `json:"categories"`
}

type CoursesPageDTO struct {
	AuthDTO
	Courses    query.Result[[]model.Course]   `json:"courses"`
	Categories query.Result[[]model.Category] `json:"categories"`
}

type CoursePageDTO struct {
	AuthDTO
	Course  query.Result[*model.Course] `json:"course"`
	Syllabi service.SyllabiResult       `json:"syllabi"`
}

type ProgramsPageDTO struct {
	AuthDTO
	Programs service.ProgramsResult `json:"programs"`
}

type ProfilePageDTO struct {
	AuthDTO
	Program service.ProgramsResult `json:"program"`
	Syllabi service.SyllabiResult  `json:"syllabi"`
}

type SyllabusPageDTO struct {
	AuthDTO
	Syllabus service.SyllabiResult `json:"syllabus"`
	// DownloadURL is the presigned URL for the syllabus file, when the backend sent one.
	DownloadURL string `json:"downloadUrl,omitempty"`
}
