package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/database"
)

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: "router-test-secret", Issuer: "test", ExpireHours: 1},
		Office: config.OfficeConfig{UTCOffsetHours: 0},
		App:    config.AppSubConfig{PageSize: 10},
	}
	return SetupRouter(cfg, db)
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func register(t *testing.T, r *gin.Engine, email string) {
	t.Helper()
	w, _ := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":            email,
		"password":         "Sup3rSecret",
		"confirm_password": "Sup3rSecret",
		"name":             "Test " + email,
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := env.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPI_PresenceLifecycle(t *testing.T) {
	r := setupRouter(t)

	// first account bootstraps as approved admin
	register(t, r, "admin@example.com")
	adminToken := login(t, r, "admin@example.com")

	// second account is pending until approved
	register(t, r, "emp@example.com")
	w, _ := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "emp@example.com", "password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code) // login works, gate rejects

	empToken := login(t, r, "emp@example.com")
	w, _ = do(t, r, http.MethodGet, "/api/me", empToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// approve: creates the employee row
	w, env := do(t, r, http.MethodGet, "/api/admin/users/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := env.Data["users"].([]interface{})
	require.Len(t, users, 1)
	userID := int(users[0].(map[string]interface{})["id"].(float64))

	w, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/approve", userID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// approval state is read from the db, the old token now passes
	w, _ = do(t, r, http.MethodGet, "/api/me", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// full shift cycle
	w, env = do(t, r, http.MethodPost, "/api/shifts/clock-in", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ACTIVE", env.Data["state"])

	w, _ = do(t, r, http.MethodPost, "/api/shifts/clock-in", empToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/shifts/break/start", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ON_BREAK", env.Data["state"])

	w, env = do(t, r, http.MethodPost, "/api/shifts/clock-out", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "IDLE", env.Data["state"])
	rec := env.Data["record"].(map[string]interface{})
	require.NotNil(t, rec["check_out"])
	require.NotNil(t, rec["break_end"])

	w, env = do(t, r, http.MethodGet, "/api/shifts/stats", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := env.Data["stats"].(map[string]interface{})
	require.EqualValues(t, 1, stats["record_count"])

	// logout revokes the session
	w, _ = do(t, r, http.MethodPost, "/api/auth/logout", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/me", empToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_SecurityConfigAndGate(t *testing.T) {
	r := setupRouter(t)

	// the read endpoint is allow-listed and lazily creates the row
	w, env := do(t, r, http.MethodGet, "/api/security-config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sc := env.Data["security_config"].(map[string]interface{})
	require.Equal(t, false, sc["is_security_enabled"])

	register(t, r, "admin@example.com")
	adminToken := login(t, r, "admin@example.com")

	register(t, r, "emp@example.com")
	w, env = do(t, r, http.MethodGet, "/api/admin/users/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	userID := int(env.Data["users"].([]interface{})[0].(map[string]interface{})["id"].(float64))
	w, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/approve", userID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	empToken := login(t, r, "emp@example.com")

	// non-admins may not update the config
	w, _ = do(t, r, http.MethodPut, "/api/security-config", empToken, gin.H{
		"is_security_enabled": true,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// enable with an office IP nobody matches
	w, _ = do(t, r, http.MethodPut, "/api/security-config", adminToken, gin.H{
		"office_ip":           "203.0.113.9",
		"is_security_enabled": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// non-admin from outside is denied with diagnostics
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+empToken)
	req.Header.Set("X-Forwarded-For", "8.8.8.8")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), `"reason":"ip"`)
	require.Contains(t, rec.Body.String(), "8.8.8.8")

	// admin bypasses the gate entirely
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("X-Forwarded-For", "8.8.8.8")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
