package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"syllabye/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackendClient(t *testing.T, h http.HandlerFunc) BackendClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewBackendClient(srv.URL+"/", time.Second, zerolog.Nop())
}

func TestDoForwardsCookieVerbatim(t *testing.T) {
	var gotCookie, gotPath, gotQuery string
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"ok":true}`))
	})

	resp, err := client.Do(context.Background(), BackendRequest{
		Path:     "/courses",
		RawQuery: "search=algo",
		Cookie:   "a=1; syllabye.session=xyz",
	})
	require.NoError(t, err)
	assert.Equal(t, "a=1; syllabye.session=xyz", gotCookie)
	assert.Equal(t, "/courses", gotPath)
	assert.Equal(t, "search=algo", gotQuery)
	assert.JSONEq(t, `{"ok":true}`, string(resp.JSON()))
}

func TestDoOmitsEmptyCookie(t *testing.T) {
	var hasCookie bool
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasCookie = r.Header["Cookie"]
	})

	resp, err := client.Do(context.Background(), BackendRequest{Path: "/me"})
	require.NoError(t, err)
	assert.False(t, hasCookie)
	assert.Equal(t, "null", string(resp.JSON()))
}

func TestDoReturnsStatusError(t *testing.T) {
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := client.Do(context.Background(), BackendRequest{Path: "/users/u1"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "/users/u1", statusErr.Path)
	assert.Equal(t, "nope", statusErr.Body)
}

func TestGetSessionAbsent(t *testing.T) {
	for name, body := range map[string]string{
		"null":         `null`,
		"empty":        ``,
		"empty userId": `{"userId":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			session, err := client.GetSession(context.Background(), "")
			require.NoError(t, err)
			assert.Nil(t, session)
		})
	}
}

func TestGetSessionPresent(t *testing.T) {
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		w.Write([]byte(`{"userId":"u1"}`))
	})
	session, err := client.GetSession(context.Background(), "syllabye.session=abc")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "u1", session.UserID)
}

func TestUpdateUserSendsPatch(t *testing.T) {
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/u1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var patch map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, "new.nick", patch["nickname"])
		w.Write([]byte(`{"id":"u1","nickname":"new.nick"}`))
	})

	nick := "new.nick"
	user, err := client.UpdateUser(context.Background(), "", "u1", model.UserUpdate{Nickname: &nick})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "new.nick", user.NicknameValue())
}

func TestNicknameExists(t *testing.T) {
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/exists", r.URL.Path)
		assert.Equal(t, "valid.user-1", r.URL.Query().Get("search"))
		w.Write([]byte(`{"Exists":true}`))
	})

	res, err := client.NicknameExists(context.Background(), "", "valid.user-1")
	require.NoError(t, err)
	assert.True(t, res.Exists)
}

func TestGetSyllabusReadsDownloadURL(t *testing.T) {
	client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderPresignedURL, "https://storage.example/get?sig=1")
		w.Write([]byte(`{"id":"s1","courseId":"c1"}`))
	})

	syllabus, err := client.GetSyllabus(context.Background(), "", "s1")
	require.NoError(t, err)
	require.NotNil(t, syllabus)
	assert.Equal(t, "https://storage.example/get?sig=1", syllabus.DownloadURL)
}

func TestCreateSyllabus(t *testing.T) {
	t.Run("reads ticket from headers", func(t *testing.T) {
		client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/syllabi", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"checksum":"QU+jOQ=="`)

			w.Header().Set(HeaderPresignedURL, "https://storage.example/put?sig=1")
			w.Header().Set(HeaderLocation, "/syllabi/s1")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("created"))
		})

		ticket, err := client.CreateSyllabus(context.Background(), "", model.UploadMetadata{
			SyllabusUploadData: model.SyllabusUploadData{CourseID: "c1", Year: 2024, Semester: "fall"},
			Checksum:           "QU+jOQ==",
			ContentType:        "application/pdf",
			FileName:           "s.pdf",
			FileSize:           10,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://storage.example/put?sig=1", ticket.PresignedURL)
		assert.Equal(t, "/syllabi/s1", ticket.Location)
		assert.Equal(t, "created", ticket.Body)
	})

	t.Run("missing presigned url", func(t *testing.T) {
		client := newTestBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		_, err := client.CreateSyllabus(context.Background(), "", model.UploadMetadata{})
		assert.Error(t, err)
	})
}
