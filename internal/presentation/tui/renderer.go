package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/comalice/riskbox/internal/game"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// RulesMarkdown describes the game played with cfg.
func RulesMarkdown(cfg game.Config) string {
	var b strings.Builder
	b.WriteString("# Riskbox\n\n")
	fmt.Fprintf(&b, "Score more than **%d** points before you run out of **%d** lives.\n\n", cfg.WinPoints, cfg.Lives)
	b.WriteString("## The box\n\n")
	fmt.Fprintf(&b, "Every %s the box drops more gems, up to %d. Once it holds %d gems its risk climbs by %d%% per drop, up to %d%%.\n\n",
		cfg.Box.IdleDelay+cfg.Box.DropDelay, cfg.Box.MaxGems, cfg.Box.RiskThreshold, cfg.Box.RiskStep, cfg.Box.MaxRisk)
	b.WriteString("Accepting spins the wheel: beat the risk and you win a random share of the gems, ")
	b.WriteString("lose and the box explodes and costs you a life.\n\n")
	b.WriteString("## Keys\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, key := range []rune{'a', 'r', 'n', 's', 'p', 'x'} {
		fmt.Fprintf(&b, "| `%c` | %s |\n", key, Keys[key])
	}
	b.WriteString("| `q` | quit |\n")
	return b.String()
}
