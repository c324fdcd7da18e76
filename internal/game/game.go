package game

import (
	"fmt"
	"math"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

// GameContext is the Game's extended state. It holds no pointers so a
// snapshot's copy is detached from the live actor. CurrentBox is zero until
// the first box reports its contents.
type GameContext struct {
	Points     int         `json:"points" yaml:"points" mapstructure:"points"`
	WinPoints  int         `json:"win_points" yaml:"win_points" mapstructure:"win_points"`
	BoxNumber  int         `json:"box_number" yaml:"box_number" mapstructure:"box_number"`
	CurrentBox BoxContents `json:"current_box" yaml:"current_box" mapstructure:"current_box"`
}

// Game state names and child actor names.
const (
	GamePlaying = "playing"
	GameWin     = "win"
	GameLose    = "lose"

	PlayerActor = "player"
	BoxActor    = "box"
)

// Machines bundles the three definitions of one game.
type Machines struct {
	Player *core.Definition
	Box    *core.Definition
	Game   *core.Definition
}

// ByID returns the definition with the given machine id.
func (m *Machines) ByID(id string) (*core.Definition, bool) {
	for _, def := range []*core.Definition{m.Game, m.Player, m.Box} {
		if def.ID() == id {
			return def, true
		}
	}
	return nil, false
}

// NewMachines builds the Player, Box and Game definitions from cfg. A nil rnd
// uses DefaultRand.
func NewMachines(cfg Config, rnd Rand) (*Machines, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = DefaultRand()
	}
	player, err := NewPlayer(cfg)
	if err != nil {
		return nil, err
	}
	box, err := NewBox(cfg, rnd)
	if err != nil {
		return nil, err
	}
	g, err := newGame(cfg, rnd, player, box)
	if err != nil {
		return nil, err
	}
	return &Machines{Player: player, Box: box, Game: g}, nil
}

// New builds the machines and starts a System rooted at the Game.
func New(cfg Config, rnd Rand, opts ...core.Option) (*core.System, *Machines, error) {
	m, err := NewMachines(cfg, rnd)
	if err != nil {
		return nil, nil, err
	}
	sys, err := core.NewSystem(m.Game, opts...)
	if err != nil {
		return nil, nil, err
	}
	return sys, m, nil
}

// boxPayload extracts box contents from a notification.
func boxPayload(evt core.Event) (BoxContents, bool) {
	if c, ok := primitives.PayloadAs[BoxContents](evt); ok {
		return c, true
	}
	if c, ok := primitives.PayloadAs[*BoxContents](evt); ok && c != nil {
		return *c, true
	}
	return BoxContents{}, false
}

func newGame(cfg Config, rnd Rand, player, box *core.Definition) (*core.Definition, error) {
	rules := boxRules{cfg: cfg.Box, rnd: rnd}
	reset := func(c GameContext, _ core.Event) GameContext {
		return GameContext{WinPoints: cfg.WinPoints}
	}
	resetBox := core.Send("newBox", core.ChildTarget(BoxActor), EventReset)

	impl := core.Implementations{
		Actions: map[string]*core.Action{
			"resetGame":   core.Assign("resetGame", reset),
			"spawnPlayer": core.Spawn[GameContext]("spawnPlayer", PlayerActor, player, nil),
			"spawnBox": core.Spawn("spawnBox", BoxActor, box, func(c GameContext, _ core.Event) any {
				return rules.fresh(c.CurrentBox.BoxNumber + 1)
			}),
			"stopPlayer": core.StopChild("stopPlayer", PlayerActor),
			"stopBox":    core.StopChild("stopBox", BoxActor),
			"newBox":     resetBox,
			"awardPoints": core.Assign("awardPoints", func(c GameContext, evt core.Event) GameContext {
				if p, ok := primitives.PayloadAs[AwardPoints](evt); ok {
					c.Points += p.Total
				}
				return c
			}),
			"shootPlayer":   core.Send("shootPlayer", core.ChildTarget(PlayerActor), EventLoseLife),
			"respawnPlayer": core.Send("respawnPlayer", core.ChildTarget(PlayerActor), EventRespawn),
			"acceptBox":     core.Send("acceptBox", core.ChildTarget(BoxActor), EventAccept),
			"storeBox": core.Assign("storeBox", func(c GameContext, evt core.Event) GameContext {
				if b, ok := boxPayload(evt); ok {
					c.CurrentBox = b
				}
				c.BoxNumber++
				return c
			}),
			"awardBoxWinnings": core.Assign("awardBoxWinnings", func(c GameContext, evt core.Event) GameContext {
				if b, ok := boxPayload(evt); ok {
					c.Points += int(math.Round(rnd() * float64(b.Gems)))
				}
				return c
			}),
			"handleExplosion": core.Raise("handleExplosion", EventShootPlayer),
			"reportDeath": core.Log("reportDeath", func(c GameContext, evt core.Event) string {
				return fmt.Sprintf("count: %d, event: %s", c.Points, evt.Type)
			}),
		},
		Guards: map[string]*core.Guard{
			"didPlayerWin": core.NewGuard("didPlayerWin", func(c GameContext, _ core.Event) bool {
				return c.Points > c.WinPoints
			}),
		},
	}

	config, err := primitives.NewMachineBuilder("game", GamePlaying).
		Context(GameContext{WinPoints: cfg.WinPoints}).
		On(EventRestart, primitives.To(GamePlaying, "stopPlayer", "stopBox", "resetGame")).
		Atomic(GamePlaying).
		Entry("resetGame", "spawnPlayer", "spawnBox").
		Exit("stopBox").
		Always(primitives.When("didPlayerWin", GameWin)).
		On(EventAwardPoints, primitives.Do("awardPoints")).
		On(EventShootPlayer, primitives.Do("shootPlayer")).
		On(EventRespawnPlayer, primitives.Do("stopBox", "spawnBox", "respawnPlayer")).
		On(EventPlayerDied, primitives.To(GameLose, "reportDeath")).
		On(EventAcceptBox, primitives.Do("acceptBox")).
		On(EventRejectBox, primitives.Do("newBox")).
		On(EventNewBox, primitives.Do("newBox")).
		On(EventNotifyBoxContents, primitives.Do("storeBox")).
		On(EventNotifyBoxWin, primitives.Do("awardBoxWinnings", "newBox")).
		On(EventNotifyBoxExplode, primitives.Do("handleExplosion", "newBox")).
		Machine().
		Atomic(GameWin).
		Machine().
		Atomic(GameLose).
		Machine().
		Build()
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	return core.NewDefinition(config, impl)
}
