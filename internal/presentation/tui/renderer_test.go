package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/game"
)

func TestRulesMarkdown(t *testing.T) {
	md := RulesMarkdown(game.DefaultConfig())

	assert.Contains(t, md, "more than **10000** points")
	assert.Contains(t, md, "**3** lives")
	assert.Contains(t, md, "Every 200ms the box drops more gems, up to 1000")
	assert.Contains(t, md, "| `a` | ACCEPT_BOX |")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render(RulesMarkdown(game.DefaultConfig()))
	require.NoError(t, err)
	assert.Contains(t, out, "Riskbox")
	assert.Contains(t, out, "ACCEPT_BOX")
}
