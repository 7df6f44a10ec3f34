package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatthewBerasa/PEISS-APIs/internal/models"
	"github.com/MatthewBerasa/PEISS-APIs/internal/security"
)

func doGet(t *testing.T, engine http.Handler, path string, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (e *testEnv) accessToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.issuer.IssueAccess(security.UserInfo{UserID: userID})
	require.NoError(t, err)
	return token
}

func TestProvideSettingsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedDevice(models.Device{ID: "dev-1", AlarmEnabled: true, NotificationsEnabled: false})
	token := env.accessToken(t, "user-1")

	rec, body := doGet(t, env.engine, "/api/provideSettings?deviceID=dev-1", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["alarmSetting"])
	assert.Equal(t, false, body["notificationSetting"])

	rec, _ = doGet(t, env.engine, "/api/provideSettings?deviceID=dev-1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doGet(t, env.engine, "/api/provideSettings?deviceID=dev-404", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doGet(t, env.engine, "/api/provideSettings", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedDevice(models.Device{ID: "dev-1"})
	token := env.accessToken(t, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/updateSettings",
		strings.NewReader(`{"deviceID":"dev-1","alarmSetting":true,"notificationSetting":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	device := env.devices.devices["dev-1"]
	assert.True(t, device.AlarmEnabled)
	assert.True(t, device.NotificationsEnabled)

	// Truthy non-booleans must not coerce.
	req = httptest.NewRequest(http.MethodPost, "/api/updateSettings",
		strings.NewReader(`{"deviceID":"dev-1","alarmSetting":"yes","notificationSetting":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectDisconnectEndpoints(t *testing.T) {
	env := newTestEnv()
	user := env.seedUser("a@x.com", "pw1")
	env.seedDevice(models.Device{ID: "dev-1"})

	rec, _ := doGet(t, env.engine, "/api/connectSystem?deviceID=dev-1&userID="+user.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.users.users[user.ID].IsConnected)
	assert.True(t, env.devices.devices["dev-1"].HasMember(user.ID))

	rec, body := doJSON(t, env.engine, http.MethodPost, "/api/checkConnection", map[string]string{
		"userID": user.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["connectionStatus"])

	rec, _ = doGet(t, env.engine, "/api/disconnectSystem?deviceID=dev-1&userID="+user.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.users.users[user.ID].IsConnected)
	assert.False(t, env.devices.devices["dev-1"].HasMember(user.ID))

	// Disconnecting again: the user is no longer a member.
	rec, body = doGet(t, env.engine, "/api/disconnectSystem?deviceID=dev-1&userID="+user.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User is not connected to this System", body["error"])

	rec, _ = doGet(t, env.engine, "/api/connectSystem?deviceID=dev-404&userID="+user.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doGet(t, env.engine, "/api/connectSystem?deviceID=dev-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlarmStateEndpoints(t *testing.T) {
	env := newTestEnv()
	env.seedDevice(models.Device{ID: "dev-1", AlarmEnabled: true})

	rec, body := doGet(t, env.engine, "/api/getAlarmState?deviceID=dev-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state, ok := body["alarmState"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, state["alarmSounding"])
	assert.Equal(t, true, state["alarmEnabled"])

	rec, _ = doJSON(t, env.engine, http.MethodPost, "/api/updateAlarmState", map[string]any{
		"deviceID":   "dev-1",
		"alarmState": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.devices.devices["dev-1"].AlarmSounding)

	// Non-boolean alarmState is rejected.
	rec, _ = doJSON(t, env.engine, http.MethodPost, "/api/updateAlarmState", map[string]any{
		"deviceID":   "dev-1",
		"alarmState": "yes",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, env.engine, http.MethodPost, "/api/updateAlarmState", map[string]any{
		"deviceID":   "dev-404",
		"alarmState": false,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
