package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/logging"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "riskbox version "))
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "player", "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "stateDiagram-v2")
	assert.Contains(t, out, "dying --> dead : after 1s")

	out, err = run(t, "graph", "box", "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph Statechart")

	_, err = run(t, "graph", "dealer", "--format", "dot")
	assert.ErrorContains(t, err, "unknown machine")

	_, err = run(t, "graph", "game", "--format", "svg")
	assert.ErrorContains(t, err, "unknown format")
}

func TestGraphCommand_ConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dying_delay: 3s\n"), 0o600))

	out, err := run(t, "graph", "player", "--format", "mermaid", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "after 3s")

	_, err = run(t, "graph", "player", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRulesCommand(t *testing.T) {
	out, err := run(t, "rules", "--config", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Riskbox")
}

func TestReadKeys_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	keys := make(chan rune)
	done := make(chan struct{})
	go func() {
		readKeys(ctx, strings.NewReader("ab"), keys)
		close(done)
	}()

	assert.Equal(t, 'a', <-keys)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readKeys still blocked after cancel")
	}
	_, ok := <-keys
	assert.False(t, ok)
}

func TestPlay_QuitWithAutoplay(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("q"))
		_ = w.Close()
	}()

	var out bytes.Buffer
	opts := playOptions{tickRate: 5 * time.Millisecond, autoplay: 5 * time.Millisecond, autoplayRisk: 30}
	require.NoError(t, play(context.Background(), game.DefaultConfig(), logging.NewNop(), opts, r, &out))
	assert.Contains(t, out.String(), "RISKBOX")
	assert.Contains(t, out.String(), "Lives")
}
