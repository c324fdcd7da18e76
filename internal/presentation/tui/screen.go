// Package tui renders the game to a terminal.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/comalice/riskbox/internal/game"
)

// Keys maps key presses to Game events.
var Keys = map[rune]string{
	'a': game.EventAcceptBox,
	'r': game.EventRejectBox,
	'n': game.EventNewBox,
	's': game.EventShootPlayer,
	'p': game.EventRespawnPlayer,
	'x': game.EventRestart,
}

// hints lists key labels in display order.
var hints = []struct {
	key   rune
	label string
}{
	{'a', "accept"},
	{'r', "reject"},
	{'n', "new box"},
	{'s', "shoot"},
	{'p', "respawn"},
	{'x', "restart"},
}

// KeyEvent returns the Game event bound to key.
func KeyEvent(key rune) (string, bool) {
	evt, ok := Keys[key]
	return evt, ok
}

// Screen draws frames on a termenv output.
type Screen struct {
	out   *termenv.Output
	lives int
}

// NewScreen creates a Screen writing to w for a game started with lives
// lives. Options are passed to termenv, e.g.
// termenv.WithProfile(termenv.Ascii) to disable colors.
func NewScreen(w io.Writer, lives int, opts ...termenv.OutputOption) *Screen {
	return &Screen{out: termenv.NewOutput(w, opts...), lives: lives}
}

// Draw clears the terminal and writes the frame for v.
func (s *Screen) Draw(v game.View) {
	s.out.ClearScreen()
	fmt.Fprint(s.out, s.Frame(v))
}

// Frame renders v. Lines end in "\r\n" so frames stay aligned in raw mode.
func (s *Screen) Frame(v game.View) string {
	var lines []string
	title := s.out.String("RISKBOX").Bold().Foreground(s.out.Color("#c084fc"))
	lines = append(lines, fmt.Sprintf("%s  %s", title, s.status(v)), "")

	lines = append(lines, fmt.Sprintf("Points  %d / %d", v.Points, v.WinPoints))

	hearts := strings.Repeat("♥", v.Lives) + strings.Repeat("·", max(0, s.lives-v.Lives))
	lines = append(lines, fmt.Sprintf("Lives   %s  (%s)",
		s.out.String(hearts).Foreground(s.out.Color("#fb7185")), orDash(v.PlayerState)))

	if v.Box != nil {
		risk := s.out.String(fmt.Sprintf("%d%%", v.Box.Risk)).Foreground(s.out.Color(riskColor(v.Box.Risk)))
		lines = append(lines, fmt.Sprintf("Box #%d  %d gems, risk %s  (%s)", v.Box.BoxNumber, v.Box.Gems, risk, v.BoxState))
	} else {
		lines = append(lines, "Box     -")
	}

	var keys []string
	for _, h := range hints {
		if v.Offers(Keys[h.key]) {
			keys = append(keys, fmt.Sprintf("[%c] %s", h.key, h.label))
		}
	}
	lines = append(lines, "", strings.Join(append(keys, "[q] quit"), "  "))
	return strings.Join(lines, "\r\n") + "\r\n"
}

func (s *Screen) status(v game.View) termenv.Style {
	switch v.State {
	case game.GameWin:
		return s.out.String("YOU WIN").Bold().Foreground(s.out.Color("#4ade80"))
	case game.GameLose:
		return s.out.String("GAME OVER").Bold().Foreground(s.out.Color("#f87171"))
	}
	return s.out.String(v.State).Faint()
}

func riskColor(risk int) string {
	switch {
	case risk >= 75:
		return "#f87171"
	case risk >= 40:
		return "#facc15"
	}
	return "#4ade80"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
