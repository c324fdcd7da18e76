package game

import (
	"fmt"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/extensibility"
	"github.com/comalice/riskbox/internal/primitives"
)

// PlayerContext is the Player's extended state.
type PlayerContext struct {
	Lives int `json:"lives" yaml:"lives" mapstructure:"lives"`
}

// Player state names.
const (
	PlayerAlive      = "alive"
	PlayerRespawning = "respawning"
	PlayerDying      = "dying"
	PlayerDead       = "dead"
)

// NewPlayer builds the Player machine. It loses a life per LOSE_LIFE, waits for
// RESPAWN, and reports PLAYER_DIED to its parent once it runs out of lives.
func NewPlayer(cfg Config) (*core.Definition, error) {
	impl := core.Implementations{
		Actions: map[string]*core.Action{
			"loseLife": core.Assign("loseLife", func(c PlayerContext, _ core.Event) PlayerContext {
				if c.Lives > 0 {
					c.Lives--
				}
				return c
			}),
			"notifyParentOfDeath": core.SendParent("notifyParentOfDeath", func(PlayerContext, core.Event) core.Event {
				return primitives.NewEvent(EventPlayerDied, nil)
			}),
		},
		Guards: map[string]*core.Guard{
			"noLivesLeft": extensibility.MustExpr("noLivesLeft", "lives < 1"),
		},
	}

	config, err := primitives.NewMachineBuilder("player", PlayerAlive).
		Context(PlayerContext{Lives: cfg.Lives}).
		Atomic(PlayerAlive).
		Always(primitives.When("noLivesLeft", PlayerDying)).
		On(EventLoseLife, primitives.To(PlayerRespawning, "loseLife")).
		Machine().
		Atomic(PlayerRespawning).
		Always(primitives.When("noLivesLeft", PlayerDying)).
		On(EventRespawn, primitives.To(PlayerAlive)).
		Machine().
		Atomic(PlayerDying).
		After(cfg.DyingDelay, primitives.To(PlayerDead)).
		Machine().
		Atomic(PlayerDead).
		Entry("notifyParentOfDeath").
		Machine().
		Build()
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	return core.NewDefinition(config, impl)
}
