package game

import "strings"

// Autopilot plays on the player's behalf. It accepts a counting-down box whose
// risk is at most MaxRisk, passes on riskier ones and respawns when it can.
type Autopilot struct {
	MaxRisk int
}

// Decide returns the event to send for v, if any.
func (a Autopilot) Decide(v View) (string, bool) {
	switch {
	case v.Offers(EventRespawnPlayer):
		return EventRespawnPlayer, true
	case v.Box == nil || !strings.HasPrefix(v.BoxState, BoxCountdown):
		return "", false
	case v.Box.Risk <= a.MaxRisk && v.Box.Gems > 0 && v.Offers(EventAcceptBox):
		return EventAcceptBox, true
	case v.Offers(EventRejectBox):
		return EventRejectBox, true
	}
	return "", false
}
