package system

// AppID identifies an installed app in the catalog
type AppID string

// SystemAppID marks notifications raised by the shell itself
const SystemAppID AppID = "system"

// Theme is the device-wide color scheme
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeAmoled Theme = "amoled"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAmoled:
		return true
	}
	return false
}

// NetworkType is the cellular generation shown in the status bar
type NetworkType string

const (
	NetworkNone NetworkType = "none"
	Network2G   NetworkType = "2G"
	Network3G   NetworkType = "3G"
	Network4G   NetworkType = "4G"
	Network5G   NetworkType = "5G"
)

// QuickSettingKey names a quick settings toggle
type QuickSettingKey string

const (
	QSWifi         QuickSettingKey = "wifi"
	QSBluetooth    QuickSettingKey = "bluetooth"
	QSAirplane     QuickSettingKey = "airplane"
	QSDoNotDisturb QuickSettingKey = "dnd"
	QSRotationLock QuickSettingKey = "rotationLock"
)

// QuickSettingKeys lists every toggle in panel order
var QuickSettingKeys = []QuickSettingKey{QSWifi, QSBluetooth, QSAirplane, QSDoNotDisturb, QSRotationLock}

// Valid reports whether k is a known toggle
func (k QuickSettingKey) Valid() bool {
	for _, known := range QuickSettingKeys {
		if k == known {
			return true
		}
	}
	return false
}

// MaxRecents bounds the recents list
const MaxRecents = 12

// Battery holds charge level (0..1) and charger state
type Battery struct {
	Level    float64 `json:"level"`
	Charging bool    `json:"charging"`
}

// Network describes connectivity as shown in the status bar
type Network struct {
	Signal int         `json:"signal"`
	Type   NetworkType `json:"type"`
	Wifi   bool        `json:"wifi"`
}

// QuickSettings maps each toggle to its value. Treat as immutable; use with.
type QuickSettings map[QuickSettingKey]bool

func (q QuickSettings) with(key QuickSettingKey, value bool) QuickSettings {
	next := make(QuickSettings, len(q)+1)
	for k, v := range q {
		next[k] = v
	}
	next[key] = value
	return next
}

// AppSpec is a catalog entry
type AppSpec struct {
	ID   AppID  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// RunningApp is one open instance of an app
type RunningApp struct {
	ID         AppID  `json:"id"`
	InstanceID string `json:"instanceId"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"createdAt"`
}

// NotificationAction is a button on a notification. The click handler lives
// with whoever rendered it.
type NotificationAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Notification is an entry in the notification shade
type Notification struct {
	ID      string               `json:"id"`
	AppID   AppID                `json:"appId"`
	Title   string               `json:"title"`
	Body    string               `json:"body"`
	Time    int64                `json:"time"`
	Actions []NotificationAction `json:"actions"`
	Unread  *bool                `json:"unread,omitempty"`
}

// IsUnread treats a missing flag as unread
func (n Notification) IsUnread() bool {
	return n.Unread == nil || *n.Unread
}

// State is the whole device model. Values are never mutated after they are
// published; Transition returns a new State that may share unchanged slices.
type State struct {
	Booted        bool           `json:"booted"`
	Locked        bool           `json:"locked"`
	Wallpaper     string         `json:"wallpaper"`
	Theme         Theme          `json:"theme"`
	Brightness    float64        `json:"brightness"`
	Volume        float64        `json:"volume"`
	Battery       Battery        `json:"battery"`
	Network       Network        `json:"network"`
	QuickSettings QuickSettings  `json:"quickSettings"`
	Notifications []Notification `json:"notifications"`
	Apps          []AppSpec      `json:"apps"`
	HomeGrid      []AppID        `json:"homeGrid"`
	Running       []RunningApp   `json:"running"`
	Recents       []RunningApp   `json:"recents"`
	Now           int64          `json:"now"`

	// SavedNetwork holds the connectivity that airplane mode replaced
	SavedNetwork *Network `json:"savedNetwork,omitempty"`
}

// clone returns a shallow copy; slices and maps are shared and must be
// replaced, not written through.
func (s *State) clone() *State {
	next := *s
	return &next
}

// FindApp looks up a catalog entry
func (s *State) FindApp(id AppID) (AppSpec, bool) {
	for _, app := range s.Apps {
		if app.ID == id {
			return app, true
		}
	}
	return AppSpec{}, false
}

// Foreground returns the top of the task stack
func (s *State) Foreground() (RunningApp, bool) {
	if len(s.Running) == 0 {
		return RunningApp{}, false
	}
	return s.Running[len(s.Running)-1], true
}

func indexOfInstance(apps []RunningApp, instanceID string) int {
	for i, app := range apps {
		if app.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	// NaN compares false both ways
	if v != v {
		return 0
	}
	return v
}
