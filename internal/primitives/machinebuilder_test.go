package primitives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineBuilderNesting(t *testing.T) {
	b := NewMachineBuilder("box", "countdown").Context(7).On("RESET", To("countdown", "reset"))
	countdown := b.Compound("countdown", "idle").On("ACCEPT", To("accepted"))
	countdown.Atomic("idle").After(100*time.Millisecond, To("dropGems"))
	countdown.Atomic("dropGems").
		Entry("grow").
		Exit("notify").
		After(100*time.Millisecond, To("idle")).
		Up().On("REJECT", To("rejected"))
	b.Atomic("accepted").Entry("spin")
	b.Final("rejected")

	config, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 7, config.Context)
	require.Len(t, config.States, 3)
	assert.Equal(t, Compound, config.States[0].Type)
	assert.Len(t, config.States[0].On, 2)

	drop, err := config.FindState("countdown.dropGems")
	require.NoError(t, err)
	assert.Equal(t, []ActionRef{"grow"}, drop.Entry)
	assert.Equal(t, []ActionRef{"notify"}, drop.Exit)
	assert.Equal(t, []ActionRef{"reset"}, config.On["RESET"][0].Actions)
}

func TestMachineBuilderPromotesToCompound(t *testing.T) {
	b := NewMachineBuilder("m", "outer")
	outer := b.Atomic("outer").WithInitial("inner")
	outer.Atomic("inner").Always(When("ready", "#done"))
	b.Final("done")

	config, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, Compound, config.States[0].Type)
}

func TestMachineBuilderRejectsEmptyCandidates(t *testing.T) {
	b := NewMachineBuilder("m", "a")
	b.Atomic("a").On("GO")

	_, err := b.Build()
	assert.ErrorContains(t, err, "no transition candidates")
}

func TestFingerprintStable(t *testing.T) {
	build := func(target string) MachineConfig {
		b := NewMachineBuilder("m", "a").On("X", To("a")).On("Y", To("b"))
		b.Atomic("a").On("GO", When("ok", target, "act"))
		b.Atomic("b")
		config, err := b.Build()
		require.NoError(t, err)
		return config
	}

	c1, c2, c3 := build("b"), build("b"), build("a")
	assert.Equal(t, Fingerprint(&c1), Fingerprint(&c2))
	assert.NotEqual(t, Fingerprint(&c1), Fingerprint(&c3))
	assert.Len(t, Fingerprint(&c1), 16)
}
