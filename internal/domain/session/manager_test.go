package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/storage"
)

var testApps = []system.AppSpec{
	{ID: "clock", Name: "Clock", Icon: "⏰"},
	{ID: "phone", Name: "Phone", Icon: "📞"},
}

func defaults() *system.State {
	return system.Default(1_000, testApps, []system.AppID{"clock", "phone"})
}

func busyState() *system.State {
	s := defaults()
	s = system.Transition(s, system.Boot{})
	for i := 0; i < 15; i++ {
		s = system.Transition(s, system.OpenApp{ID: "clock", InstanceID: fmt.Sprintf("clock-%d", i), At: int64(i)})
		s = system.Transition(s, system.CloseApp{InstanceID: fmt.Sprintf("clock-%d", i)})
	}
	s = system.Transition(s, system.OpenApp{ID: "phone", InstanceID: "phone-x", At: 99})
	s = system.Transition(s, system.AddNotification{Notification: system.Notification{
		ID: "n1", AppID: system.SystemAppID, Title: "Hello", Time: 5,
		Actions: []system.NotificationAction{{ID: "ok", Label: "OK"}},
	}})
	s = system.Transition(s, system.SetTheme{Value: system.ThemeAmoled})
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress=%v", compress), func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemory()
			mgr := NewManager(kv, Options{Compress: compress, Defaults: defaults})

			s := busyState()
			mgr.Save(ctx, s)

			raw, err := kv.Get(ctx, DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, compress, bytes.HasPrefix(raw, zstdMagic))

			loaded, ok := mgr.Load(ctx)
			require.True(t, ok)

			want := *s
			want.Running = []system.RunningApp{}
			assert.Equal(t, &want, loaded)
			assert.Len(t, loaded.Recents, system.MaxRecents)
		})
	}
}

func TestEncodeDropsRunningAndCapsRecents(t *testing.T) {
	mgr := NewManager(storage.NewMemory(), Options{})
	s := busyState()
	// recents past the cap can only come from outside the transition function
	s.Recents = append(append([]system.RunningApp(nil), s.Recents...), system.RunningApp{ID: "x", InstanceID: "x-1"})

	data, err := mgr.Encode(s)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"running":[]`)
	assert.NotContains(t, string(data), "x-1")
	// the input is left alone
	assert.Len(t, s.Running, 1)
}

func TestLoadFallsBack(t *testing.T) {
	ctx := context.Background()

	cases := map[string][]byte{
		"not json":   []byte("{{{"),
		"null":       []byte("null"),
		"empty":      []byte(""),
		"bad zstd":   append(append([]byte(nil), zstdMagic...), 1, 2, 3),
		"wrong type": []byte(`{"booted":"yes"}`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			kv := storage.NewMemory()
			require.NoError(t, kv.Set(ctx, DefaultKey, raw))

			s, ok := NewManager(kv, Options{Defaults: defaults}).Load(ctx)
			assert.False(t, ok)
			assert.Nil(t, s)
		})
	}

	s, ok := NewManager(storage.NewMemory(), Options{}).Load(ctx)
	assert.False(t, ok)
	assert.Nil(t, s)
}

type failingKV struct {
	storage.KV
	mu    sync.Mutex
	err   error
	calls int
}

func (f *failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, f.err
}

func (f *failingKV) Set(context.Context, string, []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *failingKV) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBackendErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{err: errors.New("disk on fire")}
	mgr := NewManager(kv, Options{})

	s, ok := mgr.Load(ctx)
	assert.False(t, ok)
	assert.Nil(t, s)

	assert.NotPanics(t, func() { mgr.Save(ctx, defaults()) })
	assert.Equal(t, 1, kv.Calls())
}

func TestLoadFillsMissingFields(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, "custom", []byte(`{
		"booted": true,
		"theme": "neon",
		"brightness": 4,
		"quickSettings": {"airplane": true}
	}`)))

	s, ok := NewManager(kv, Options{Key: "custom", Defaults: defaults}).Load(ctx)
	require.True(t, ok)

	assert.True(t, s.Booted)
	assert.Equal(t, system.ThemeDark, s.Theme)
	assert.Equal(t, 1.0, s.Brightness)
	assert.Equal(t, 0.7, s.Volume)
	assert.True(t, s.QuickSettings[system.QSAirplane])
	assert.True(t, s.QuickSettings[system.QSWifi])
	assert.False(t, s.QuickSettings[system.QSRotationLock])
	assert.Equal(t, testApps, s.Apps)
	assert.NotNil(t, s.Running)
	assert.NotNil(t, s.Recents)
}

func TestWriterSavesLatest(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	mgr := NewManager(kv, Options{Defaults: defaults})
	w := NewWriter(mgr, WriterOptions{})

	s := defaults()
	for i := 0; i < 50; i++ {
		s = system.Transition(s, system.Tick{At: int64(i)})
		w.Submit(s)
	}
	w.Close()

	loaded, ok := mgr.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(49), loaded.Now)

	// submissions after close are ignored and Close is idempotent
	w.Submit(defaults())
	w.Close()
}

func TestWriterStopsHammeringFailingBackend(t *testing.T) {
	kv := &failingKV{err: errors.New("read-only filesystem")}
	mgr := NewManager(kv, Options{})

	var mu sync.Mutex
	var states []resilience.State
	w := NewWriter(mgr, WriterOptions{Breaker: resilience.Settings{
		Timeout: time.Hour,
		OnStateChange: func(_ string, _, to resilience.State) {
			mu.Lock()
			states = append(states, to)
			mu.Unlock()
		},
	}})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.Error(t, w.Flush(ctx, defaults()))
	}
	assert.ErrorIs(t, w.Flush(ctx, defaults()), resilience.ErrCircuitOpen)
	assert.Equal(t, 3, kv.Calls())

	w.Submit(defaults())
	w.Close()
	assert.Equal(t, 3, kv.Calls())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []resilience.State{resilience.StateOpen}, states)
}
