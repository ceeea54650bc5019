package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/catalog"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/store"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/resilience"
)

var fixedNow = time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)

type stubHealth struct {
	restored bool
	state    resilience.State
}

func (s stubHealth) Restored() bool                     { return s.restored }
func (s stubHealth) PersistenceState() resilience.State { return s.state }

func setupRouter(t *testing.T, health HealthSource) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Builtin()
	st := store.New(system.Default(fixedNow.UnixMilli(), cat.Apps, cat.HomeGrid), store.Options{
		Now: func() time.Time { return fixedNow },
	})

	h := NewHandlers(st, Options{
		Health:   health,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		Metrics:  monitoring.NewMetrics(),
	})

	router := gin.New()
	h.Register(router)
	return router, st
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRoot(t *testing.T) {
	router, _ := setupRouter(t, nil)

	w := perform(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t, stubHealth{restored: true, state: resilience.StateClosed})

	w := perform(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["restored"])
	assert.Equal(t, "closed", body["persistence"])
	assert.Equal(t, false, body["booted"])
}

func TestHealthDegradedWhenPersistenceOpen(t *testing.T) {
	router, _ := setupRouter(t, stubHealth{state: resilience.StateOpen})

	body := decode(t, perform(router, http.MethodGet, "/health", ""))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "open", body["persistence"])
}

func TestState(t *testing.T) {
	router, _ := setupRouter(t, nil)

	w := perform(router, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var s system.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, system.ThemeDark, s.Theme)
	assert.Len(t, s.Apps, len(catalog.Builtin().Apps))
	assert.Empty(t, s.Running)
}

func TestDispatchOpenApp(t *testing.T) {
	router, st := setupRouter(t, nil)

	w := perform(router, http.MethodPost, "/actions", `{"type":"OPEN_APP","id":"calculator"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "OPEN_APP", decode(t, w)["accepted"])

	top, ok := st.State().Foreground()
	require.True(t, ok)
	assert.Equal(t, system.AppID("calculator"), top.ID)
	assert.Equal(t, "Calculator", top.Title)

	apps := decode(t, perform(router, http.MethodGet, "/apps", ""))
	assert.Len(t, apps["running"], 1)
	assert.Len(t, apps["dock"], 4)
}

func TestDispatchUnknownAppIsAcceptedNoOp(t *testing.T) {
	router, st := setupRouter(t, nil)
	before := st.State()

	w := perform(router, http.MethodPost, "/actions", `{"type":"OPEN_APP","id":"nope"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Same(t, before, st.State())
}

func TestDispatchRejectsBadActions(t *testing.T) {
	router, _ := setupRouter(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"REBOOT"}`},
		{"not json", `garbage`},
		{"wrong field type", `{"type":"SET_VOLUME","value":"loud"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/actions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestDispatchNotificationFillsIDAndTime(t *testing.T) {
	router, _ := setupRouter(t, nil)

	w := perform(router, http.MethodPost, "/actions",
		`{"type":"ADD_NOTIFICATION","notif":{"appId":"messages","title":"Hi","body":"there","actions":[]}}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	body := decode(t, perform(router, http.MethodGet, "/notifications", ""))
	assert.Equal(t, float64(1), body["unread"])

	list := body["notifications"].([]interface{})
	require.Len(t, list, 1)
	n := list[0].(map[string]interface{})
	assert.True(t, strings.HasPrefix(n["id"].(string), "ntf_"))
	assert.Equal(t, float64(fixedNow.UnixMilli()), n["time"])
}

func TestStatus(t *testing.T) {
	router, _ := setupRouter(t, nil)
	perform(router, http.MethodPost, "/actions", `{"type":"SET_THEME","value":"light"}`)

	body := decode(t, perform(router, http.MethodGet, "/status", ""))
	assert.Equal(t, "09:05", body["clock"])
	assert.Equal(t, false, body["dark"])
}

func TestOptions(t *testing.T) {
	router, _ := setupRouter(t, nil)

	body := decode(t, perform(router, http.MethodGet, "/options", ""))
	assert.Len(t, body["themes"], 3)
	assert.Len(t, body["quickSettings"], 5)
	assert.NotEmpty(t, body["wallpapers"])
}

func TestStateETag(t *testing.T) {
	router, _ := setupRouter(t, nil)

	first := perform(router, http.MethodGet, "/state", "")
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	perform(router, http.MethodPost, "/actions", `{"type":"BOOT"}`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))
}
