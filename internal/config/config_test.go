package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "ja", cfg.UI.Locale)
	assert.Equal(t, 3*time.Second, cfg.UI.ToastDuration)
	assert.Equal(t, 100, cfg.UI.CalendarPageSize)
	assert.Equal(t, 50, cfg.UI.EventPageSize)
	assert.True(t, cfg.Proxy.Enabled)
	assert.Equal(t, time.Sunday, cfg.UI.FirstWeekday())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	yaml := `
listen: ":9000"
api:
  baseurl: "http://backend:8080/api/v1/"
ui:
  locale: en
  weekstart: Monday
  timezone: Asia/Tokyo
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SCHEDULER_UI_EVENTPAGESIZE", "20")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "http://backend:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.Equal(t, time.Monday, cfg.UI.FirstWeekday())
	assert.Equal(t, "Asia/Tokyo", cfg.UI.Location().String())
	assert.Equal(t, 20, cfg.UI.EventPageSize)
}

func TestNormalize_UnknownValuesFallBack(t *testing.T) {
	cfg := Application{UI: UI{Locale: "fr", WeekStart: "friday"}}
	cfg.normalize()

	assert.Equal(t, "ja", cfg.UI.Locale)
	assert.Equal(t, "sunday", cfg.UI.WeekStart)
	assert.Equal(t, "scheduler_session", cfg.Session.CookieName)
}

func TestUI_LocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, UI{Timezone: "Nowhere/Special"}.Location())
}
