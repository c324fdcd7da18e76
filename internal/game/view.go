package game

import (
	"slices"

	"github.com/comalice/riskbox/internal/core"
)

// View flattens a Game snapshot for presentation.
type View struct {
	State       string
	Points      int
	WinPoints   int
	Lives       int
	PlayerState string
	Box         *BoxContents
	BoxState    string
	NextEvents  []string
}

// ViewOf reads a root Game snapshot. Children that are not running leave
// their fields zero.
func ViewOf(snap core.Snapshot) View {
	v := View{State: snap.Value, NextEvents: snap.NextEvents}
	if c, ok := snap.Context.(GameContext); ok {
		v.Points = c.Points
		v.WinPoints = c.WinPoints
	}
	if p, ok := snap.Child(PlayerActor); ok {
		v.PlayerState = p.Value
		if c, ok := p.Context.(PlayerContext); ok {
			v.Lives = c.Lives
		}
	}
	if b, ok := snap.Child(BoxActor); ok {
		v.BoxState = b.Value
		if c, ok := b.Context.(BoxContents); ok {
			v.Box = &c
		}
	}
	return v
}

// Over reports whether the game has ended.
func (v View) Over() bool {
	return v.State == GameWin || v.State == GameLose
}

// Offers reports whether event is worth offering to a player: the Game must
// accept it and the player must be in a state where it makes sense. Box
// decisions need a living player, respawning needs a respawning one, and
// restart is offered once the game is over.
func (v View) Offers(event string) bool {
	if !slices.Contains(v.NextEvents, event) {
		return false
	}
	switch event {
	case EventAcceptBox, EventRejectBox, EventNewBox, EventShootPlayer:
		return v.State == GamePlaying && v.PlayerState == PlayerAlive
	case EventRespawnPlayer:
		return v.State == GamePlaying && v.PlayerState == PlayerRespawning
	case EventRestart:
		return v.Over()
	}
	return true
}
