package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/store"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
)

type frame struct {
	Type  string        `json:"type"`
	State *system.State `json:"state"`
	Error string        `json:"error"`
}

func setupHub(t *testing.T) (*Hub, *store.Store, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(system.Default(0, []system.AppSpec{
		{ID: "clock", Name: "Clock"},
		{ID: "messages", Name: "Messages"},
	}, []system.AppID{"clock", "messages"}), store.Options{})

	hub := NewHub(st, Options{Metrics: monitoring.NewMetrics()})
	router := gin.New()
	router.GET("/stream", hub.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, st, "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestInitialStateOnConnect(t *testing.T) {
	_, _, url := setupHub(t)
	conn := dial(t, url)

	f := read(t, conn)
	assert.Equal(t, TypeState, f.Type)
	require.NotNil(t, f.State)
	assert.False(t, f.State.Booted)
	assert.Len(t, f.State.Apps, 2)
}

func TestDispatchPushesState(t *testing.T) {
	_, st, url := setupHub(t)
	conn := dial(t, url)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"dispatch","action":{"type":"OPEN_APP","id":"clock"}}`)))

	f := read(t, conn)
	assert.Equal(t, TypeState, f.Type)
	require.Len(t, f.State.Running, 1)
	assert.Equal(t, system.AppID("clock"), f.State.Running[0].ID)

	top, ok := st.State().Foreground()
	require.True(t, ok)
	assert.Equal(t, top.InstanceID, f.State.Running[0].InstanceID)
}

func TestExternalDispatchReachesEveryClient(t *testing.T) {
	hub, st, url := setupHub(t)
	a := dial(t, url)
	b := dial(t, url)
	read(t, a)
	read(t, b)

	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)
	st.Dispatch(system.Boot{})

	assert.True(t, read(t, a).State.Booted)
	assert.True(t, read(t, b).State.Booted)
}

func TestPingPong(t *testing.T) {
	_, _, url := setupHub(t)
	conn := dial(t, url)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, read(t, conn).Type)
}

func TestErrors(t *testing.T) {
	_, _, url := setupHub(t)
	conn := dial(t, url)
	read(t, conn)

	for _, msg := range []string{
		`not json`,
		`{"type":"shout"}`,
		`{"type":"dispatch","action":{"type":"REBOOT"}}`,
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		f := read(t, conn)
		assert.Equal(t, TypeError, f.Type, msg)
		assert.NotEmpty(t, f.Error, msg)
	}
}

func TestNoOpDispatchSendsNothing(t *testing.T) {
	_, _, url := setupHub(t)
	conn := dial(t, url)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"dispatch","action":{"type":"OPEN_APP","id":"missing"}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	assert.Equal(t, TypePong, read(t, conn).Type)
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub, _, url := setupHub(t)
	conn := dial(t, url)
	read(t, conn)

	hub.Close()
	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.Clients())
}
