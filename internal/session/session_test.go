package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar"
	"github.com/recurrence-scheduler/scheduler-web/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSessionConfig = config.Session{
	CookieName:    "test_session",
	IdleTimeout:   time.Hour,
	SweepSchedule: "@every 1m",
}

func setupManagerTest(t *testing.T) (*Manager, *utils.MockClock) {
	clock := &utils.MockClock{FixedNow: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	client := api.NewClientStub()
	manager := NewManager(testSessionConfig, clock, func(id string) *Session {
		return New(id, calendar.NewStore(client, nil, 0), event.NewStore(client, nil, 0), State{Tab: TabCalendars})
	})
	return manager, clock
}

func captureSession(seen **Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := Current(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		*seen = s
	})
}

func TestManager_Middleware(t *testing.T) {
	t.Run("should start a session and set cookie", func(t *testing.T) {
		// given
		manager, _ := setupManagerTest(t)
		var seen *Session
		handler := manager.Middleware(captureSession(&seen))

		// when
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		// then
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "test_session", cookies[0].Name)
		assert.Equal(t, seen.ID, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 1, manager.Len())
	})

	t.Run("should reuse the session of a known cookie", func(t *testing.T) {
		// given
		manager, _ := setupManagerTest(t)
		var first, second *Session
		w := httptest.NewRecorder()
		manager.Middleware(captureSession(&first)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		cookie := w.Result().Cookies()[0]

		// when
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		w = httptest.NewRecorder()
		manager.Middleware(captureSession(&second)).ServeHTTP(w, req)

		// then
		assert.Same(t, first, second)
		assert.Empty(t, w.Result().Cookies())
		assert.Equal(t, 1, manager.Len())
	})

	t.Run("should replace an unknown cookie", func(t *testing.T) {
		manager, _ := setupManagerTest(t)
		var seen *Session
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "test_session", Value: "stale"})

		w := httptest.NewRecorder()
		manager.Middleware(captureSession(&seen)).ServeHTTP(w, req)

		require.NotNil(t, seen)
		assert.NotEqual(t, "stale", seen.ID)
		require.Len(t, w.Result().Cookies(), 1)
	})
}

func TestManager_Sweep(t *testing.T) {
	// given
	manager, clock := setupManagerTest(t)
	var idle, active *Session
	manager.Middleware(captureSession(&idle)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	clock.Advance(50 * time.Minute)
	manager.Middleware(captureSession(&active)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	clock.Advance(20 * time.Minute)

	// when
	removed := manager.Sweep()

	// then
	assert.Equal(t, 1, removed)
	_, ok := manager.Get(idle.ID)
	assert.False(t, ok)
	_, ok = manager.Get(active.ID)
	assert.True(t, ok)
}

func TestSweeper(t *testing.T) {
	manager, _ := setupManagerTest(t)

	_, err := NewSweeper(manager, "every now and then")
	assert.Error(t, err)

	sweeper, err := NewSweeper(manager, testSessionConfig.SweepSchedule)
	require.NoError(t, err)
	sweeper.Start()
	sweeper.Stop()
}

func TestSession_Toast(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := New("s1", nil, nil, State{Tab: TabEvents})

	s.ShowToast("カレンダーを作成しました", ToastSuccess, now, 3*time.Second)

	assert.Equal(t, "カレンダーを作成しました", s.State(now.Add(2*time.Second)).Toast.Text)
	assert.Equal(t, ToastSuccess, s.State(now.Add(2*time.Second)).Toast.Kind)
	assert.Empty(t, s.State(now.Add(3*time.Second)).Toast.Text)
	assert.Equal(t, TabEvents, s.State(now).Tab)
}

func TestSession_Update(t *testing.T) {
	s := New("s1", nil, nil, State{})

	s.Update(func(st *State) {
		st.SelectedCalendarID = "c1"
		st.Tab = TabMonth
	})

	state := s.State(time.Now())
	assert.Equal(t, "c1", state.SelectedCalendarID)
	assert.Equal(t, TabMonth, state.Tab)
}

func TestCurrent(t *testing.T) {
	_, err := Current(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	s := New("s1", nil, nil, State{})
	got, err := Current(WithSession(context.Background(), s))
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab("month")
	assert.True(t, ok)
	assert.Equal(t, TabMonth, tab)

	_, ok = ParseTab("settings")
	assert.False(t, ok)
}
