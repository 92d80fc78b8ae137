package model

// Syllabus is an uploaded syllabus document record.
// Received is owned by the backend and only ever read here.
type Syllabus struct {
	ID          string `json:"id,omitempty"`
	CourseID    string `json:"courseId"`
	UserID      string `json:"userId"`
	Year        int    `json:"year"`
	Semester    string `json:"semester"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	DateAdded   int64  `json:"dateAdded"`
	Received    bool   `json:"received"`

	// DownloadURL carries the X-Presigned-Url header of a single syllabus fetch.
	DownloadURL string `json:"-"`
}

// SyllabusUploadData holds the caller-supplied metadata of an upload.
type SyllabusUploadData struct {
	CourseID string `json:"courseId" validate:"required"`
	Year     int    `json:"year" validate:"required,min=1900,max=2100"`
	Semester string `json:"semester" validate:"required"`
}

// UploadMetadata is the body posted to the backend to register a syllabus
// and obtain a presigned storage URL.
type UploadMetadata struct {
	SyllabusUploadData
	Checksum    string `json:"checksum" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	FileName    string `json:"fileName" validate:"required"`
	FileSize    int64  `json:"fileSize" validate:"required,gt=0"`
}

// UploadTicket is what the backend hands back for a registered upload.
type UploadTicket struct {
	Body         string `json:"body"`
	Location     string `json:"location"`
	PresignedURL string `json:"presignedUrl"`
}

// UploadEvent announces a syllabus whose bytes reached storage.
type UploadEvent struct {
	UserID      string `json:"userId,omitempty"`
	CourseID    string `json:"courseId"`
	Location    string `json:"location"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	Checksum    string `json:"checksum"`
	UploadedAt  int64  `json:"uploadedAt"`
}
