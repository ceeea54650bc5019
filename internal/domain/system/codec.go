package system

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
)

var (
	// ErrUnknownAction is returned for a wire type outside the vocabulary
	ErrUnknownAction = errors.New("unknown action type")
	// ErrMalformedAction is returned when the payload is not valid JSON
	ErrMalformedAction = errors.New("malformed action")
)

var codec = sonic.ConfigStd

type envelope struct {
	Type Kind `json:"type"`
}

// DecodeAction parses the wire form {"type": "...", ...fields}
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	target, ok := newAction(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	if err := codec.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedAction, env.Type, err)
	}

	return reflect.ValueOf(target).Elem().Interface().(Action), nil
}

// EncodeAction renders an action in wire form
func EncodeAction(a Action) ([]byte, error) {
	body, err := codec.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", a.Kind(), err)
	}

	fields := map[string]any{}
	if err := codec.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to re-read %s: %w", a.Kind(), err)
	}
	fields["type"] = a.Kind()

	return codec.Marshal(fields)
}

// CompleteNotification fills the id and time of an AddNotification that
// arrived from outside without them. Any other action is returned as is.
func CompleteNotification(a Action, newID func() string, now int64) Action {
	add, ok := a.(AddNotification)
	if !ok {
		return a
	}
	if add.Notification.ID == "" {
		add.Notification.ID = newID()
	}
	if add.Notification.Time == 0 {
		add.Notification.Time = now
	}
	return add
}
