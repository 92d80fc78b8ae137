package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "syllabus.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUploadCommand(t *testing.T) {
	var (
		gotCookie string
		gotMeta   model.UploadMetadata
		stored    []byte
	)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /api/syllabi/upload", func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotMeta))
		json.NewEncoder(w).Encode(dto.UploadSyllabusResponseDTO{
			Success: true,
			Data: &model.UploadTicket{
				Location:     "/syllabi/s1",
				PresignedURL: srv.URL + "/storage/s1",
			},
		})
	})
	mux.HandleFunc("PUT /storage/s1", func(w http.ResponseWriter, r *http.Request) {
		stored, _ = io.ReadAll(r.Body)
	})

	path := writeTempFile(t, "The quick brown fox jumps over the lazy dog")
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--site", srv.URL, "--cookie", "abc", "--course", "c1", "--year", "2024", "--semester", "fall", path})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "syllabye.session=abc", gotCookie)
	assert.Equal(t, "c1", gotMeta.CourseID)
	assert.Equal(t, 2024, gotMeta.Year)
	assert.Equal(t, "QU+jOQ==", gotMeta.Checksum)
	assert.Equal(t, "syllabus.txt", gotMeta.FileName)
	assert.Equal(t, "The quick brown fox jumps over the lazy dog", string(stored))
	assert.Contains(t, out.String(), `"success": true`)
	assert.Contains(t, out.String(), `"/syllabi/s1"`)
}

func TestUploadCommandReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.UploadSyllabusResponseDTO{Status: http.StatusForbidden, ErrorText: "forbidden"})
	}))
	defer srv.Close()

	path := writeTempFile(t, "content")
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--site", srv.URL, "--course", "c1", "--year", "2024", "--semester", "fall", path})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Unexpected error occurred. Please try again.", err.Error())
	assert.Contains(t, out.String(), `"success": false`)
}

func TestUploadCommandRequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--site", "http://localhost", writeTempFile(t, "x")})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestSessionCookie(t *testing.T) {
	assert.Equal(t, "syllabye.session=abc", sessionCookie("syllabye.session", "abc"))
	assert.Equal(t, "other=abc", sessionCookie("syllabye.session", "other=abc"))
	assert.Empty(t, sessionCookie("syllabye.session", ""))
}
