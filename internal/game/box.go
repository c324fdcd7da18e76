package game

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

// Rand returns a uniform value in [0, 1).
type Rand func() float64

// DefaultRand draws from math/rand/v2.
func DefaultRand() Rand { return rand.Float64 }

// BoxContents is the Box's extended state, and the payload of every box
// notification the Game receives.
type BoxContents struct {
	Gems      int `json:"gems" yaml:"gems" mapstructure:"gems"`
	Risk      int `json:"risk" yaml:"risk" mapstructure:"risk"`
	BoxNumber int `json:"box_number" yaml:"box_number" mapstructure:"box_number"`
}

// Box state names.
const (
	BoxCountdown = "countdown"
	BoxIdle      = "idle"
	BoxDropGems  = "dropGems"
	BoxAccepted  = "accepted"
	BoxRejected  = "rejected"
)

// boxRules derives contents from the box constants.
type boxRules struct {
	cfg BoxConfig
	rnd Rand
}

// fresh rolls the contents of box number n.
func (r boxRules) fresh(n int) BoxContents {
	c := BoxContents{
		Gems:      int(math.Round(r.rnd() * float64(r.cfg.StartGems))),
		Risk:      int(math.Round(r.rnd() * float64(r.cfg.StartRisk))),
		BoxNumber: n,
	}
	if c.Gems < r.cfg.RiskThreshold {
		c.Risk = 0
	}
	return c
}

// grow applies one drop: gems grow by at least one up to max_gems, and risk
// starts climbing once gems reach the threshold.
func (r boxRules) grow(c BoxContents) BoxContents {
	grown := int(math.Round(float64(c.Gems) * r.cfg.Growth))
	c.Gems = min(max(c.Gems+1, grown), r.cfg.MaxGems)
	if c.Gems < r.cfg.RiskThreshold {
		c.Risk = 0
	} else {
		c.Risk = min(c.Risk+r.cfg.RiskStep, r.cfg.MaxRisk)
	}
	return c
}

// survives reports whether an accepted box pays out.
func (r boxRules) survives(c BoxContents) bool {
	return r.rnd()*100 > float64(c.Risk)
}

// NewBox builds the Box machine. While counting down it keeps growing its gems
// and risk and reports each offer to its parent. ACCEPT spins the wheel and
// reports a win or an explosion; RESET rolls a new box.
func NewBox(cfg Config, rnd Rand) (*core.Definition, error) {
	if rnd == nil {
		rnd = DefaultRand()
	}
	rules := boxRules{cfg: cfg.Box, rnd: rnd}

	notify := func(eventType string) func(BoxContents, core.Event) core.Event {
		return func(c BoxContents, _ core.Event) core.Event {
			return primitives.NewEvent(eventType, c)
		}
	}
	impl := core.Implementations{
		Actions: map[string]*core.Action{
			"notifyParentOfRiskReward": core.SendParent("notifyParentOfRiskReward", notify(EventNotifyBoxContents)),
			"dropGems": core.Assign("dropGems", func(c BoxContents, _ core.Event) BoxContents {
				return rules.grow(c)
			}),
			"spinWheelOfDeath": core.SendParent("spinWheelOfDeath", func(c BoxContents, _ core.Event) core.Event {
				if rules.survives(c) {
					return primitives.NewEvent(EventNotifyBoxWin, c)
				}
				return primitives.NewEvent(EventNotifyBoxExplode, c)
			}),
			"resetBox": core.Assign("resetBox", func(c BoxContents, _ core.Event) BoxContents {
				return rules.fresh(c.BoxNumber + 1)
			}),
		},
	}

	config, err := primitives.NewMachineBuilder("box", BoxCountdown).
		Context(rules.fresh(1)).
		On(EventReset, primitives.To(BoxCountdown, "resetBox")).
		Compound(BoxCountdown, BoxIdle).
		Entry("notifyParentOfRiskReward").
		On(EventAccept, primitives.To(BoxAccepted)).
		On(EventReject, primitives.To(BoxRejected)).
		Atomic(BoxIdle).
		After(cfg.Box.IdleDelay, primitives.To(BoxDropGems)).
		Up().
		Atomic(BoxDropGems).
		Entry("dropGems").
		Exit("notifyParentOfRiskReward").
		After(cfg.Box.DropDelay, primitives.To(BoxIdle)).
		Machine().
		Atomic(BoxAccepted).
		Entry("spinWheelOfDeath").
		Machine().
		Atomic(BoxRejected).
		Machine().
		Build()
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	return core.NewDefinition(config, impl)
}
