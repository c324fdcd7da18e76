package game

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/comalice/riskbox/internal/primitives"
)

// Player events.
const (
	EventLoseLife = "LOSE_LIFE"
	EventRespawn  = "RESPAWN"
)

// Box events.
const (
	EventAccept = "ACCEPT"
	EventReject = "REJECT"
	EventReset  = "RESET"
)

// Game events.
const (
	EventAwardPoints       = "AWARD_POINTS"
	EventShootPlayer       = "SHOOT_PLAYER"
	EventRespawnPlayer     = "RESPAWN_PLAYER"
	EventPlayerDied        = "PLAYER_DIED"
	EventAcceptBox         = "ACCEPT_BOX"
	EventRejectBox         = "REJECT_BOX"
	EventNewBox            = "NEW_BOX"
	EventNotifyBoxContents = "NOTIFY_BOX_CONTENTS"
	EventNotifyBoxWin      = "NOTIFY_BOX_WIN"
	EventNotifyBoxExplode  = "NOTIFY_BOX_EXPLODE"
	EventRestart           = "RESTART"
)

// ErrUnknownEvent is returned by DecodeEvent for event types the Game does not accept.
var ErrUnknownEvent = errors.New("unknown event type")

// AwardPoints is the payload of AWARD_POINTS.
type AwardPoints struct {
	Total int `json:"total" mapstructure:"total"`
}

// payloadTypes maps every Game event to a constructor of its payload; nil means
// the event carries none.
var payloadTypes = map[string]func() any{
	EventAwardPoints:       func() any { return &AwardPoints{} },
	EventNotifyBoxContents: func() any { return &BoxContents{} },
	EventNotifyBoxWin:      func() any { return &BoxContents{} },
	EventNotifyBoxExplode:  func() any { return &BoxContents{} },
	EventShootPlayer:       nil,
	EventRespawnPlayer:     nil,
	EventPlayerDied:        nil,
	EventAcceptBox:         nil,
	EventRejectBox:         nil,
	EventNewBox:            nil,
	EventRestart:           nil,
}

// DecodeEvent builds a typed Game event from an external type and loosely
// typed payload, as received over JSON.
func DecodeEvent(eventType string, data map[string]any) (primitives.Event, error) {
	newPayload, ok := payloadTypes[eventType]
	if !ok {
		return primitives.Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, eventType)
	}
	if newPayload == nil {
		if len(data) > 0 {
			return primitives.Event{}, fmt.Errorf("event %s takes no payload", eventType)
		}
		return primitives.NewEvent(eventType, nil), nil
	}
	target := newPayload()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: true,
	})
	if err != nil {
		return primitives.Event{}, err
	}
	if err := dec.Decode(data); err != nil {
		return primitives.Event{}, fmt.Errorf("event %s: invalid payload: %w", eventType, err)
	}
	switch p := target.(type) {
	case *AwardPoints:
		return primitives.NewEvent(eventType, *p), nil
	case *BoxContents:
		return primitives.NewEvent(eventType, *p), nil
	}
	return primitives.NewEvent(eventType, target), nil
}

// ExternalEvents lists the event types DecodeEvent accepts, in a fixed order.
func ExternalEvents() []string {
	return []string{
		EventAwardPoints, EventShootPlayer, EventRespawnPlayer, EventAcceptBox, EventRejectBox, EventNewBox,
		EventNotifyBoxContents, EventNotifyBoxWin, EventNotifyBoxExplode, EventPlayerDied, EventRestart,
	}
}
