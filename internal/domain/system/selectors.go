package system

import (
	"math"
	"time"
)

// DockFavorites are pinned to the dock when installed
var DockFavorites = []AppID{"phone", "messages", "camera", "gallery"}

// StatusBar is everything the status bar and lock screen show
type StatusBar struct {
	Clock          string `json:"clock"`
	BatteryPercent int    `json:"batteryPercent"`
	Charging       bool   `json:"charging"`
	Network        string `json:"network"`
	Unread         int    `json:"unread"`
	Locked         bool   `json:"locked"`
	Booted         bool   `json:"booted"`
	Dark           bool   `json:"dark"`
	Foreground     *AppID `json:"foreground,omitempty"`
}

// UnreadCount counts notifications that have not been acted on
func UnreadCount(s *State) int {
	n := 0
	for _, item := range s.Notifications {
		if item.IsUnread() {
			n++
		}
	}
	return n
}

// HomeApps resolves the home grid, skipping ids missing from the catalog
func HomeApps(s *State) []AppSpec {
	return resolve(s, s.HomeGrid)
}

// Dock resolves the dock favorites that are installed
func Dock(s *State) []AppSpec {
	return resolve(s, DockFavorites)
}

func resolve(s *State, ids []AppID) []AppSpec {
	out := make([]AppSpec, 0, len(ids))
	for _, id := range ids {
		if app, ok := s.FindApp(id); ok {
			out = append(out, app)
		}
	}
	return out
}

// NetworkLabel is "wifi" on wifi, the cell type when on cellular, and
// "airplane" when nothing is connected.
func NetworkLabel(n Network) string {
	if n.Wifi {
		return "wifi"
	}
	if n.Type != NetworkNone && n.Type != "" {
		return string(n.Type)
	}
	return "airplane"
}

// BatteryPercent rounds the level to a whole percentage
func BatteryPercent(b Battery) int {
	return int(math.Round(b.Level * 100))
}

// ClockText formats now (Unix ms) as HH:MM in loc
func ClockText(now int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(now).In(loc).Format("15:04")
}

// IsDark reports whether the shell renders with dark colors
func IsDark(s *State) bool {
	return s.Theme != ThemeLight
}

// Status builds the status bar view
func Status(s *State, loc *time.Location) StatusBar {
	bar := StatusBar{
		Clock:          ClockText(s.Now, loc),
		BatteryPercent: BatteryPercent(s.Battery),
		Charging:       s.Battery.Charging,
		Network:        NetworkLabel(s.Network),
		Unread:         UnreadCount(s),
		Locked:         s.Locked,
		Booted:         s.Booted,
		Dark:           IsDark(s),
	}
	if top, ok := s.Foreground(); ok {
		id := top.ID
		bar.Foreground = &id
	}
	return bar
}
