// Package upload runs the presigned syllabus upload: checksum, metadata
// registration with the backend, then a direct PUT to object storage.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"syllabye/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// GenericError is the only failure text callers ever see.
const GenericError = "Unexpected error occurred. Please try again."

type Stage string

const (
	StagePreparing          Stage = "preparing"
	StageSubmittingMetadata Stage = "submitting_metadata"
	StageAwaitingStoragePut Stage = "awaiting_storage_put"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// Result is the outcome reported to the caller.
type Result struct {
	Success   bool   `json:"success"`
	ErrorText string `json:"errorText,omitempty"`
	Location  string `json:"location,omitempty"`
}

// File is a local file to upload. Its content is read fully into memory.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// MetadataSubmitter registers upload metadata and returns the presigned URL.
type MetadataSubmitter interface {
	CreateSyllabus(ctx context.Context, cookie string, meta model.UploadMetadata) (*model.UploadTicket, error)
}

// Notifier is told about completed uploads. Failures are logged only.
type Notifier interface {
	PublishUpload(ctx context.Context, event model.UploadEvent) error
}

type Uploader struct {
	submitter MetadataSubmitter
	storage   *http.Client
	validate  *validator.Validate
	notifier  Notifier
	logger    zerolog.Logger

	// OnStage, when set, observes every stage transition.
	OnStage func(Stage)
}

func NewUploader(submitter MetadataSubmitter, storageTimeout time.Duration, v *validator.Validate, notifier Notifier, logger zerolog.Logger) *Uploader {
	return &Uploader{
		submitter: submitter,
		storage:   &http.Client{Timeout: storageTimeout},
		validate:  v,
		notifier:  notifier,
		logger:    logger.With().Str("service", "Uploader").Logger(),
	}
}

func (u *Uploader) enter(stage Stage) {
	if u.OnStage != nil {
		u.OnStage(stage)
	}
}

// Upload runs the whole flow. Any failure collapses to GenericError; the
// failing stage is only logged. A storage failure after the metadata was
// accepted is still a failure, and the metadata record is left as is.
func (u *Uploader) Upload(ctx context.Context, cookie, userID string, data model.SyllabusUploadData, file File) Result {
	location, meta, err := u.run(ctx, cookie, data, file)
	if err != nil {
		u.enter(StageFailed)
		u.logger.Error().Err(err).Str("file_name", file.Name).Str("course_id", data.CourseID).Msg("Syllabus upload failed")
		return Result{Success: false, ErrorText: GenericError}
	}
	u.enter(StageDone)

	if u.notifier != nil {
		event := model.UploadEvent{
			UserID:      userID,
			CourseID:    meta.CourseID,
			Location:    location,
			FileName:    meta.FileName,
			FileSize:    meta.FileSize,
			ContentType: meta.ContentType,
			Checksum:    meta.Checksum,
			UploadedAt:  time.Now().Unix(),
		}
		if err := u.notifier.PublishUpload(ctx, event); err != nil {
			u.logger.Warn().Err(err).Str("location", location).Msg("Failed to publish upload event")
		}
	}
	return Result{Success: true, Location: location}
}

func (u *Uploader) run(ctx context.Context, cookie string, data model.SyllabusUploadData, file File) (string, *model.UploadMetadata, error) {
	u.enter(StagePreparing)
	if file.Content == nil {
		return "", nil, fmt.Errorf("preparing: no file content")
	}
	content, err := io.ReadAll(file.Content)
	if err != nil {
		return "", nil, fmt.Errorf("preparing: reading file: %w", err)
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	meta := model.UploadMetadata{
		SyllabusUploadData: data,
		Checksum:           Checksum(content),
		ContentType:        contentType,
		FileName:           file.Name,
		FileSize:           int64(len(content)),
	}
	if err := u.validate.Struct(&meta); err != nil {
		return "", nil, fmt.Errorf("preparing: invalid metadata: %w", err)
	}

	u.enter(StageSubmittingMetadata)
	ticket, err := u.submitter.CreateSyllabus(ctx, cookie, meta)
	if err != nil {
		return "", nil, fmt.Errorf("submitting metadata: %w", err)
	}
	if ticket == nil || ticket.PresignedURL == "" {
		return "", nil, fmt.Errorf("submitting metadata: no presigned URL returned")
	}

	u.enter(StageAwaitingStoragePut)
	if err := u.put(ctx, ticket.PresignedURL, contentType, content); err != nil {
		return "", nil, fmt.Errorf("storage put: %w", err)
	}
	return ticket.Location, &meta, nil
}

func (u *Uploader) put(ctx context.Context, presignedURL, contentType string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.storage.Do(req)
	if err != nil {
		return fmt.Errorf("making request to storage: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("storage returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
