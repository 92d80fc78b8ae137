package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/model"
	"syllabye/internal/nickname"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	ticket *model.UploadTicket
	err    error
	calls  int
	meta   model.UploadMetadata
}

func (f *fakeSubmitter) CreateSyllabus(ctx context.Context, cookie string, meta model.UploadMetadata) (*model.UploadTicket, error) {
	f.calls++
	f.meta = meta
	return f.ticket, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []model.UploadEvent
	err    error
}

func (f *fakeNotifier) PublishUpload(ctx context.Context, e model.UploadEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

type storageRecorder struct {
	status      int
	body        []byte
	contentType string
	method      string
	calls       int
}

func (s *storageRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.method = r.Method
		s.contentType = r.Header.Get("Content-Type")
		s.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(s.status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var uploadData = model.SyllabusUploadData{CourseID: "c1", Year: 2024, Semester: "fall"}

func newTestUploader(sub MetadataSubmitter, n Notifier) (*Uploader, *[]Stage) {
	u := NewUploader(sub, 5*time.Second, nickname.NewValidate(), n, zerolog.Nop())
	var stages []Stage
	u.OnStage = func(s Stage) { stages = append(stages, s) }
	return u, &stages
}

func TestChecksumDeterministic(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	assert.Equal(t, Checksum(data), Checksum(append([]byte(nil), data...)))
	// crc32("The quick brown fox jumps over the lazy dog") = 0x414FA339
	assert.Equal(t, "QU+jOQ==", Checksum(data))
	assert.Equal(t, "AAAAAA==", Checksum(nil))
	assert.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}

func TestUploadSuccess(t *testing.T) {
	storage := &storageRecorder{status: http.StatusOK}
	srv := storage.server(t)
	sub := &fakeSubmitter{ticket: &model.UploadTicket{PresignedURL: srv.URL + "/bucket/key?sig=1", Location: "https://api/syllabi/s1"}}
	notifier := &fakeNotifier{}
	u, stages := newTestUploader(sub, notifier)

	content := "%PDF-1.4 syllabus"
	res := u.Upload(context.Background(), "c=1", "u1", uploadData, File{
		Name:        "syllabus.pdf",
		ContentType: "application/pdf",
		Content:     strings.NewReader(content),
	})

	assert.Equal(t, Result{Success: true, Location: "https://api/syllabi/s1"}, res)
	assert.Equal(t, []Stage{StagePreparing, StageSubmittingMetadata, StageAwaitingStoragePut, StageDone}, *stages)

	assert.Equal(t, Checksum([]byte(content)), sub.meta.Checksum)
	assert.Equal(t, int64(len(content)), sub.meta.FileSize)
	assert.Equal(t, "syllabus.pdf", sub.meta.FileName)
	assert.Equal(t, "c1", sub.meta.CourseID)

	assert.Equal(t, http.MethodPut, storage.method)
	assert.Equal(t, "application/pdf", storage.contentType)
	assert.Equal(t, content, string(storage.body))

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "u1", notifier.events[0].UserID)
	assert.Equal(t, sub.meta.Checksum, notifier.events[0].Checksum)
}

func TestUploadStorageFailureAfterMetadata(t *testing.T) {
	storage := &storageRecorder{status: http.StatusForbidden}
	srv := storage.server(t)
	sub := &fakeSubmitter{ticket: &model.UploadTicket{PresignedURL: srv.URL}}
	notifier := &fakeNotifier{}
	u, stages := newTestUploader(sub, notifier)

	res := u.Upload(context.Background(), "", "u1", uploadData, File{Name: "a.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")})

	assert.Equal(t, Result{Success: false, ErrorText: GenericError}, res)
	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, 1, storage.calls)
	assert.Equal(t, StageFailed, (*stages)[len(*stages)-1])
	assert.Empty(t, notifier.events)
}

func TestUploadMetadataRejected(t *testing.T) {
	storage := &storageRecorder{status: http.StatusOK}
	storage.server(t)
	sub := &fakeSubmitter{err: errors.New("status 400")}
	u, _ := newTestUploader(sub, nil)

	res := u.Upload(context.Background(), "", "", uploadData, File{Name: "a.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")})

	assert.Equal(t, Result{Success: false, ErrorText: GenericError}, res)
	assert.Equal(t, 0, storage.calls)
}

func TestUploadInvalidMetadataNeverSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	u, _ := newTestUploader(sub, nil)

	res := u.Upload(context.Background(), "", "", model.SyllabusUploadData{}, File{Name: "a.pdf", Content: strings.NewReader("x")})

	assert.False(t, res.Success)
	assert.Equal(t, GenericError, res.ErrorText)
	assert.Equal(t, 0, sub.calls)
}

func TestUploadNotifierFailureKeepsSuccess(t *testing.T) {
	storage := &storageRecorder{status: http.StatusOK}
	srv := storage.server(t)
	sub := &fakeSubmitter{ticket: &model.UploadTicket{PresignedURL: srv.URL}}
	u, _ := newTestUploader(sub, &fakeNotifier{err: errors.New("pubsub down")})

	res := u.Upload(context.Background(), "", "u1", uploadData, File{Name: "a.txt", Content: strings.NewReader("plain text")})

	assert.True(t, res.Success)
	assert.Equal(t, "text/plain; charset=utf-8", storage.contentType)
}

func TestHTTPSubmitter(t *testing.T) {
	var gotCookie string
	var gotMeta model.UploadMetadata
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/syllabi/upload", r.URL.Path)
		gotCookie = r.Header.Get("Cookie")
		_ = json.NewDecoder(r.Body).Decode(&gotMeta)
		_ = json.NewEncoder(w).Encode(dto.UploadSyllabusResponseDTO{
			Success: true,
			Data:    &model.UploadTicket{PresignedURL: "https://storage/put", Location: "https://api/syllabi/s1"},
		})
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL+"/", time.Second)
	ticket, err := s.CreateSyllabus(context.Background(), "syllabye.session=abc", model.UploadMetadata{SyllabusUploadData: uploadData, Checksum: "AAAAAA=="})
	require.NoError(t, err)
	assert.Equal(t, "https://storage/put", ticket.PresignedURL)
	assert.Equal(t, "syllabye.session=abc", gotCookie)
	assert.Equal(t, "c1", gotMeta.CourseID)
	assert.Equal(t, "AAAAAA==", gotMeta.Checksum)
}

func TestHTTPSubmitterRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dto.UploadSyllabusResponseDTO{Success: false, Status: 401, ErrorText: "unauthorized"})
	}))
	defer srv.Close()

	_, err := NewHTTPSubmitter(srv.URL, time.Second).CreateSyllabus(context.Background(), "", model.UploadMetadata{})
	assert.ErrorContains(t, err, "unauthorized")
}
