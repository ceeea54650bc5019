package system

// Kind is the wire name of an action
type Kind string

const (
	KindBoot                 Kind = "BOOT"
	KindLock                 Kind = "LOCK"
	KindOpenApp              Kind = "OPEN_APP"
	KindCloseTopApp          Kind = "CLOSE_TOP_APP"
	KindCloseApp             Kind = "CLOSE_APP"
	KindBringToFront         Kind = "BRING_TO_FRONT"
	KindAddNotification      Kind = "ADD_NOTIFICATION"
	KindDismissNotification  Kind = "DISMISS_NOTIFICATION"
	KindMarkNotificationRead Kind = "MARK_NOTIFICATION_READ"
	KindSetBrightness        Kind = "SET_BRIGHTNESS"
	KindSetVolume            Kind = "SET_VOLUME"
	KindSetTheme             Kind = "SET_THEME"
	KindToggleQS             Kind = "TOGGLE_QS"
	KindTick                 Kind = "TICK"
	KindSetWallpaper         Kind = "SET_WALLPAPER"
	KindSetBattery           Kind = "SET_BATTERY"
)

// Kinds lists the whole action vocabulary
var Kinds = []Kind{
	KindBoot,
	KindLock,
	KindOpenApp,
	KindCloseTopApp,
	KindCloseApp,
	KindBringToFront,
	KindAddNotification,
	KindDismissNotification,
	KindMarkNotificationRead,
	KindSetBrightness,
	KindSetVolume,
	KindSetTheme,
	KindToggleQS,
	KindTick,
	KindSetWallpaper,
	KindSetBattery,
}

// Action is the closed set of events the transition function accepts. Only
// types in this package can implement it.
type Action interface {
	Kind() Kind
	action()
}

type Boot struct{}

type Lock struct {
	Locked bool `json:"locked"`
}

// OpenApp pushes a new instance of ID. InstanceID and At are stamped by the
// store before the action is reduced.
type OpenApp struct {
	ID         AppID  `json:"id"`
	InstanceID string `json:"instanceId,omitempty"`
	At         int64  `json:"at,omitempty"`
}

type CloseTopApp struct{}

type CloseApp struct {
	InstanceID string `json:"instanceId"`
}

type BringToFront struct {
	InstanceID string `json:"instanceId"`
}

type AddNotification struct {
	Notification Notification `json:"notif"`
}

type DismissNotification struct {
	ID string `json:"id"`
}

type MarkNotificationRead struct {
	ID string `json:"id"`
}

type SetBrightness struct {
	Value float64 `json:"value"`
}

type SetVolume struct {
	Value float64 `json:"value"`
}

type SetTheme struct {
	Value Theme `json:"value"`
}

type ToggleQS struct {
	Key QuickSettingKey `json:"key"`
}

// Tick advances the clock to At (Unix milliseconds)
type Tick struct {
	At int64 `json:"at,omitempty"`
}

type SetWallpaper struct {
	CSS string `json:"css"`
}

// SetBattery sets the level; a nil Charging keeps the charger state
type SetBattery struct {
	Level    float64 `json:"level"`
	Charging *bool   `json:"charging,omitempty"`
}

func (Boot) Kind() Kind                 { return KindBoot }
func (Lock) Kind() Kind                 { return KindLock }
func (OpenApp) Kind() Kind              { return KindOpenApp }
func (CloseTopApp) Kind() Kind          { return KindCloseTopApp }
func (CloseApp) Kind() Kind             { return KindCloseApp }
func (BringToFront) Kind() Kind         { return KindBringToFront }
func (AddNotification) Kind() Kind      { return KindAddNotification }
func (DismissNotification) Kind() Kind  { return KindDismissNotification }
func (MarkNotificationRead) Kind() Kind { return KindMarkNotificationRead }
func (SetBrightness) Kind() Kind        { return KindSetBrightness }
func (SetVolume) Kind() Kind            { return KindSetVolume }
func (SetTheme) Kind() Kind             { return KindSetTheme }
func (ToggleQS) Kind() Kind             { return KindToggleQS }
func (Tick) Kind() Kind                 { return KindTick }
func (SetWallpaper) Kind() Kind         { return KindSetWallpaper }
func (SetBattery) Kind() Kind           { return KindSetBattery }

func (Boot) action()                 {}
func (Lock) action()                 {}
func (OpenApp) action()              {}
func (CloseTopApp) action()          {}
func (CloseApp) action()             {}
func (BringToFront) action()         {}
func (AddNotification) action()      {}
func (DismissNotification) action()  {}
func (MarkNotificationRead) action() {}
func (SetBrightness) action()        {}
func (SetVolume) action()            {}
func (SetTheme) action()             {}
func (ToggleQS) action()             {}
func (Tick) action()                 {}
func (SetWallpaper) action()         {}
func (SetBattery) action()           {}

// newAction returns a zero value pointer for kind, for decoding
func newAction(kind Kind) (any, bool) {
	switch kind {
	case KindBoot:
		return &Boot{}, true
	case KindLock:
		return &Lock{}, true
	case KindOpenApp:
		return &OpenApp{}, true
	case KindCloseTopApp:
		return &CloseTopApp{}, true
	case KindCloseApp:
		return &CloseApp{}, true
	case KindBringToFront:
		return &BringToFront{}, true
	case KindAddNotification:
		return &AddNotification{}, true
	case KindDismissNotification:
		return &DismissNotification{}, true
	case KindMarkNotificationRead:
		return &MarkNotificationRead{}, true
	case KindSetBrightness:
		return &SetBrightness{}, true
	case KindSetVolume:
		return &SetVolume{}, true
	case KindSetTheme:
		return &SetTheme{}, true
	case KindToggleQS:
		return &ToggleQS{}, true
	case KindTick:
		return &Tick{}, true
	case KindSetWallpaper:
		return &SetWallpaper{}, true
	case KindSetBattery:
		return &SetBattery{}, true
	}
	return nil, false
}
