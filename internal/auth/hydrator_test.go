package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"syllabye/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	session    *model.Session
	sessionErr error
	user       *model.User
	userErr    error

	sessionCalls int32
	userCalls    int32
	lastCookie   string
	mu           sync.Mutex
}

func (f *fakeSource) GetSession(ctx context.Context, cookie string) (*model.Session, error) {
	atomic.AddInt32(&f.sessionCalls, 1)
	f.mu.Lock()
	f.lastCookie = cookie
	f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeSource) GetUser(ctx context.Context, cookie, userID string) (*model.User, error) {
	atomic.AddInt32(&f.userCalls, 1)
	return f.user, f.userErr
}

func strPtr(s string) *string { return &s }

func TestHydrateAnonymous(t *testing.T) {
	src := &fakeSource{}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("")

	h.Hydrate(context.Background(), st)

	assert.False(t, st.Authenticated())
	assert.Nil(t, st.User())
	assert.Equal(t, int32(1), src.sessionCalls)
	assert.Equal(t, int32(0), src.userCalls, "no session must mean no user fetch")
}

func TestHydrateSessionFailureFailsOpen(t *testing.T) {
	src := &fakeSource{sessionErr: errors.New("backend down")}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("syllabye.session=abc")

	h.Hydrate(context.Background(), st)

	assert.False(t, st.Authenticated())
	assert.Equal(t, int32(0), src.userCalls)
	assert.Equal(t, "syllabye.session=abc", src.lastCookie)
}

func TestHydrateOncePerRequest(t *testing.T) {
	src := &fakeSource{
		session: &model.Session{UserID: "u1"},
		user:    &model.User{ID: "u1", Nickname: strPtr("neo")},
	}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("syllabye.session=abc")

	h.Hydrate(context.Background(), st)
	h.Hydrate(context.Background(), st)

	assert.Equal(t, int32(1), src.sessionCalls)
	assert.Equal(t, int32(1), src.userCalls)
	require.NotNil(t, st.User())
	assert.False(t, st.User().NewUser)
}

func TestUserHydratedExactlyOnceForDuplicateTriggers(t *testing.T) {
	src := &fakeSource{user: &model.User{ID: "u1"}}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("c=1")

	h.SetSession(context.Background(), st, &model.Session{UserID: "u1"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.HydrateUser(context.Background(), st)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.userCalls))
	require.NotNil(t, st.User())
	assert.True(t, st.User().NewUser, "missing nickname marks a new user")
}

func TestUserFailureKeepsSession(t *testing.T) {
	src := &fakeSource{
		session: &model.Session{UserID: "u1"},
		userErr: errors.New("user service down"),
	}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("c=1")

	h.Hydrate(context.Background(), st)

	assert.True(t, st.Authenticated())
	assert.Nil(t, st.User())
}

func TestResetAllowsNewUserFetch(t *testing.T) {
	src := &fakeSource{user: &model.User{ID: "u1", Nickname: strPtr("neo")}}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("c=1")

	h.SetSession(context.Background(), st, &model.Session{UserID: "u1"})
	st.Reset()
	assert.False(t, st.Authenticated())
	assert.Nil(t, st.User())

	h.SetSession(context.Background(), st, &model.Session{UserID: "u1"})
	assert.Equal(t, int32(2), src.userCalls)
}

func TestSetSessionTransitions(t *testing.T) {
	st := NewState("")
	assert.False(t, st.SetSession(nil))
	assert.False(t, st.SetSession(&model.Session{}), "empty user id counts as absent")
	assert.True(t, st.SetSession(&model.Session{UserID: "u1"}))
	assert.False(t, st.SetSession(&model.Session{UserID: "u1"}))
}

func TestSwitchingSessionRefetchesUser(t *testing.T) {
	src := &fakeSource{user: &model.User{ID: "u1"}}
	h := NewHydrator(src, zerolog.Nop())
	st := NewState("syllabye.session=abc")

	h.SetSession(context.Background(), st, &model.Session{UserID: "u1"})
	require.NotNil(t, st.User())
	assert.Equal(t, "u1", st.User().ID)

	src.user = &model.User{ID: "u2"}
	h.SetSession(context.Background(), st, &model.Session{UserID: "u2"})
	require.NotNil(t, st.User())
	assert.Equal(t, "u2", st.User().ID)
	assert.Equal(t, int32(2), src.userCalls)

	// Same session again is not a new trigger.
	h.SetSession(context.Background(), st, &model.Session{UserID: "u2"})
	assert.Equal(t, int32(2), src.userCalls)
}

func TestSwitchingSessionDropsPreviousUser(t *testing.T) {
	st := NewState("")
	st.SetSession(&model.Session{UserID: "u1"})
	st.SetUser(&model.User{ID: "u1"})

	assert.True(t, st.SetSession(&model.Session{UserID: "u2"}))
	assert.Nil(t, st.User())
}

func TestFromContext(t *testing.T) {
	st := NewState("c=1")
	ctx := WithState(context.Background(), st)
	assert.Same(t, st, FromContext(ctx))

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.False(t, fallback.Authenticated())
}

func TestSessionCookie(t *testing.T) {
	st := NewState("theme=dark; syllabye.session=abc123; other=1")
	assert.Equal(t, "syllabye.session=abc123", st.SessionCookie("syllabye.session"))
	assert.Equal(t, "", st.SessionCookie("missing"))
	assert.Equal(t, "", NewState("").SessionCookie("syllabye.session"))
	assert.Equal(t, "", NewState("syllabye.session=").SessionCookie("syllabye.session"))
}

func TestSessionCookieSkipsMalformedNeighbours(t *testing.T) {
	for _, header := range []string{
		"consent; syllabye.session=abc123",
		"a@b=1; syllabye.session=abc123",
		`x="q; syllabye.session=abc123`,
		"syllabye.session=abc123; consent",
	} {
		t.Run(header, func(t *testing.T) {
			assert.Equal(t, "syllabye.session=abc123", NewState(header).SessionCookie("syllabye.session"))
		})
	}
}

func TestUserID(t *testing.T) {
	st := NewState("")
	_, err := st.UserID()
	assert.ErrorIs(t, err, ErrNoSession)

	st.SetSession(&model.Session{UserID: "u1"})
	id, err := st.UserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}
