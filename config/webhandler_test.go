package config

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler_Get(t *testing.T) {
	cfile := writeConfigFile(t, validConfig)
	handler := ConfigHandler(cfile)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rt RuntimeConfig
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rt))
	assert.Equal(t, 0.8, rt.Feedback.Gain)
	assert.True(t, rt.QuietHours.Enabled)
	assert.Equal(t, 48.14, rt.QuietHours.Latitude)
}

func TestConfigHandler_PostPersists(t *testing.T) {
	cfile := writeConfigFile(t, validConfig)
	handler := ConfigHandler(cfile)

	update := RuntimeConfig{
		Feedback: FeedbackConfig{Gain: 0.3},
		QuietHours: QuietHoursConfig{
			Enabled:   false,
			Latitude:  48.14,
			Longitude: 11.58,
		},
	}
	body, err := json.Marshal(update)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The change must be visible on disk, not only in memory.
	conf, err := ReadConfig(cfile, false)
	require.NoError(t, err)
	assert.Equal(t, 0.3, conf.Feedback.Gain)
	assert.False(t, conf.QuietHours.Enabled)
	// Engine settings are not runtime-changeable and must survive.
	assert.Equal(t, 18, conf.Engine.GPIO.Pin)
}

func TestConfigHandler_PostInvalidBody(t *testing.T) {
	cfile := writeConfigFile(t, validConfig)
	handler := ConfigHandler(cfile)

	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigHandler_PostRejectsInvalidConfig(t *testing.T) {
	cfile := writeConfigFile(t, validConfig)
	handler := ConfigHandler(cfile)

	update := RuntimeConfig{Feedback: FeedbackConfig{Gain: -1}}
	body, err := json.Marshal(update)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Disk must be untouched.
	conf, err := ReadConfig(cfile, false)
	require.NoError(t, err)
	assert.Equal(t, 0.8, conf.Feedback.Gain)
}

func TestConfigHandler_MethodNotAllowed(t *testing.T) {
	cfile := writeConfigFile(t, validConfig)
	handler := ConfigHandler(cfile)

	req := httptest.NewRequest(http.MethodDelete, "/api/config", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
