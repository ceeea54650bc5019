package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHomeAppsSkipsUnknownIDs(t *testing.T) {
	s := newTestState()
	s.HomeGrid = []AppID{"clock", "gone", "phone"}

	apps := HomeApps(s)
	assert.Len(t, apps, 2)
	assert.Equal(t, AppID("clock"), apps[0].ID)
	assert.Equal(t, AppID("phone"), apps[1].ID)
}

func TestDockOnlyListsInstalledFavorites(t *testing.T) {
	dock := Dock(newTestState())
	assert.Equal(t, []AppSpec{
		{ID: "phone", Name: "Phone", Icon: "📞"},
		{ID: "messages", Name: "Messages", Icon: "💬"},
	}, dock)
}

func TestNetworkLabel(t *testing.T) {
	assert.Equal(t, "wifi", NetworkLabel(Network{Signal: 4, Type: Network5G, Wifi: true}))
	assert.Equal(t, "4G", NetworkLabel(Network{Signal: 3, Type: Network4G}))
	assert.Equal(t, "airplane", NetworkLabel(Network{Type: NetworkNone}))
}

func TestStatus(t *testing.T) {
	s := newTestState()
	s.Now = time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC).UnixMilli()
	s = Transition(s, AddNotification{Notification: Notification{ID: "n"}})
	s = Transition(s, OpenApp{ID: "clock", InstanceID: "c", At: 1})

	bar := Status(s, time.UTC)
	assert.Equal(t, "09:05", bar.Clock)
	assert.Equal(t, 76, bar.BatteryPercent)
	assert.Equal(t, "wifi", bar.Network)
	assert.Equal(t, 1, bar.Unread)
	assert.True(t, bar.Dark)
	assert.False(t, bar.Locked)
	if assert.NotNil(t, bar.Foreground) {
		assert.Equal(t, AppID("clock"), *bar.Foreground)
	}

	light := Transition(s, SetTheme{Value: ThemeLight})
	assert.False(t, IsDark(light))
}
