package system

import "fmt"

const (
	// Battery change per tick
	ChargeRate        = 0.0005
	DrainRate         = 0.00012
	AirplaneDrainRate = 0.00005
)

const (
	defaultSignal           = 4
	defaultNetworkType      = Network5G
	unstampedInstanceFormat = "%s-%d-%d"
)

// Transition applies a to s and returns the next state. It never fails and
// never mutates s: an action that targets something missing returns s itself.
func Transition(s *State, a Action) *State {
	next, _ := apply(s, a)
	return next
}

// apply reports whether the action kind was recognised, so tests can check
// that the switch covers the whole vocabulary.
func apply(s *State, a Action) (*State, bool) {
	switch a := a.(type) {
	case Boot:
		next := s.clone()
		next.Booted = true
		next.Locked = true
		return next, true

	case Lock:
		next := s.clone()
		next.Locked = a.Locked
		return next, true

	case OpenApp:
		return openApp(s, a), true

	case CloseTopApp:
		if len(s.Running) == 0 {
			return s, true
		}
		closing := s.Running[len(s.Running)-1]
		next := s.clone()
		next.Running = s.Running[:len(s.Running)-1:len(s.Running)-1]
		next.Recents = pushRecent(s.Recents, closing)
		return next, true

	case CloseApp:
		i := indexOfInstance(s.Running, a.InstanceID)
		if i < 0 {
			return s, true
		}
		closing := s.Running[i]
		next := s.clone()
		next.Running = removeAt(s.Running, i)
		next.Recents = pushRecent(s.Recents, closing)
		return next, true

	case BringToFront:
		i := indexOfInstance(s.Running, a.InstanceID)
		if i < 0 || i == len(s.Running)-1 {
			return s, true
		}
		target := s.Running[i]
		next := s.clone()
		next.Running = append(removeAt(s.Running, i), target)
		return next, true

	case AddNotification:
		next := s.clone()
		notifications := make([]Notification, 0, len(s.Notifications)+1)
		notifications = append(notifications, a.Notification)
		next.Notifications = append(notifications, s.Notifications...)
		return next, true

	case DismissNotification:
		i := indexOfNotification(s.Notifications, a.ID)
		if i < 0 {
			return s, true
		}
		next := s.clone()
		next.Notifications = make([]Notification, 0, len(s.Notifications)-1)
		next.Notifications = append(next.Notifications, s.Notifications[:i]...)
		next.Notifications = append(next.Notifications, s.Notifications[i+1:]...)
		return next, true

	case MarkNotificationRead:
		i := indexOfNotification(s.Notifications, a.ID)
		if i < 0 || !s.Notifications[i].IsUnread() {
			return s, true
		}
		next := s.clone()
		next.Notifications = append([]Notification(nil), s.Notifications...)
		read := false
		next.Notifications[i].Unread = &read
		return next, true

	case SetBrightness:
		next := s.clone()
		next.Brightness = clamp01(a.Value)
		return next, true

	case SetVolume:
		next := s.clone()
		next.Volume = clamp01(a.Value)
		return next, true

	case SetTheme:
		if !a.Value.Valid() {
			return s, true
		}
		next := s.clone()
		next.Theme = a.Value
		return next, true

	case ToggleQS:
		return toggleQuickSetting(s, a.Key), true

	case SetWallpaper:
		next := s.clone()
		next.Wallpaper = a.CSS
		return next, true

	case SetBattery:
		next := s.clone()
		next.Battery.Level = clamp01(a.Level)
		if a.Charging != nil {
			next.Battery.Charging = *a.Charging
		}
		return next, true

	case Tick:
		next := s.clone()
		if a.At != 0 {
			next.Now = a.At
		}
		if s.Battery.Charging {
			next.Battery.Level = clamp01(s.Battery.Level + ChargeRate)
		} else {
			drain := DrainRate
			if s.QuickSettings[QSAirplane] {
				drain = AirplaneDrainRate
			}
			next.Battery.Level = clamp01(s.Battery.Level - drain)
		}
		return next, true
	}

	return s, false
}

func openApp(s *State, a OpenApp) *State {
	spec, ok := s.FindApp(a.ID)
	if !ok {
		return s
	}

	// Instance ids stay unique across running and recents, whoever chose them
	instanceID := a.InstanceID
	if instanceID == "" || instanceInUse(s, instanceID) {
		instanceID = unusedInstanceID(s, spec.ID, a.At)
	}

	next := s.clone()
	running := make([]RunningApp, 0, len(s.Running)+1)
	running = append(running, s.Running...)
	next.Running = append(running, RunningApp{
		ID:         spec.ID,
		InstanceID: instanceID,
		Title:      spec.Name,
		CreatedAt:  a.At,
	})
	next.Locked = false
	return next
}

// unusedInstanceID derives an id for actions that skipped stamping
func unusedInstanceID(s *State, id AppID, at int64) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf(unstampedInstanceFormat, id, at, n)
		if !instanceInUse(s, candidate) {
			return candidate
		}
	}
}

func instanceInUse(s *State, instanceID string) bool {
	return indexOfInstance(s.Running, instanceID) >= 0 || indexOfInstance(s.Recents, instanceID) >= 0
}

func toggleQuickSetting(s *State, key QuickSettingKey) *State {
	if !key.Valid() {
		return s
	}

	value := !s.QuickSettings[key]
	next := s.clone()
	next.QuickSettings = s.QuickSettings.with(key, value)

	switch key {
	case QSAirplane:
		if value {
			if s.SavedNetwork == nil {
				saved := s.Network
				next.SavedNetwork = &saved
			}
			next.Network = Network{Signal: 0, Type: NetworkNone, Wifi: false}
		} else {
			restored := Network{Signal: defaultSignal, Type: defaultNetworkType}
			if s.SavedNetwork != nil {
				restored = *s.SavedNetwork
			}
			restored.Wifi = next.QuickSettings[QSWifi]
			next.Network = restored
			next.SavedNetwork = nil
		}
	case QSWifi:
		next.Network.Wifi = value
	}

	return next
}

// pushRecent puts app at the head of recents, dropping any older entry for
// the same instance and anything past MaxRecents.
func pushRecent(recents []RunningApp, app RunningApp) []RunningApp {
	out := make([]RunningApp, 0, min(len(recents)+1, MaxRecents))
	out = append(out, app)
	for _, r := range recents {
		if len(out) == MaxRecents {
			break
		}
		if r.InstanceID != app.InstanceID {
			out = append(out, r)
		}
	}
	return out
}

func removeAt(apps []RunningApp, i int) []RunningApp {
	out := make([]RunningApp, 0, len(apps))
	out = append(out, apps[:i]...)
	return append(out, apps[i+1:]...)
}

func indexOfNotification(items []Notification, id string) int {
	for i, n := range items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
