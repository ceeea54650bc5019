package system

// DefaultWallpaper is the first of the built-in gradient presets
const DefaultWallpaper = "linear-gradient(135deg, hsl(265 85% 60%), hsl(200 90% 55%))"

// WallpaperPresets are the gradients offered by the settings app
var WallpaperPresets = []string{
	DefaultWallpaper,
	"linear-gradient(135deg, hsl(15 85% 60%), hsl(45 90% 55%))",
	"linear-gradient(135deg, hsl(140 85% 40%), hsl(200 90% 60%))",
}

// Themes lists the selectable themes in settings order
var Themes = []Theme{ThemeLight, ThemeDark, ThemeAmoled}

// Default builds the factory state: powered off, locked, dark theme, 76%
// battery, wifi on 5G, nothing running. apps and grid seed the launcher.
func Default(now int64, apps []AppSpec, grid []AppID) *State {
	return &State{
		Booted:     false,
		Locked:     true,
		Wallpaper:  DefaultWallpaper,
		Theme:      ThemeDark,
		Brightness: 0.9,
		Volume:     0.7,
		Battery:    Battery{Level: 0.76, Charging: false},
		Network:    Network{Signal: defaultSignal, Type: defaultNetworkType, Wifi: true},
		QuickSettings: QuickSettings{
			QSWifi:         true,
			QSBluetooth:    false,
			QSAirplane:     false,
			QSDoNotDisturb: false,
			QSRotationLock: false,
		},
		Notifications: []Notification{},
		Apps:          append([]AppSpec(nil), apps...),
		HomeGrid:      append([]AppID(nil), grid...),
		Running:       []RunningApp{},
		Recents:       []RunningApp{},
		Now:           now,
	}
}
