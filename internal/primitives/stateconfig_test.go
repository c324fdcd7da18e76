package primitives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		newConfig   func() *StateConfig
		errContains string
	}{
		{
			name:      "valid atomic",
			newConfig: func() *StateConfig { return NewStateConfig("atomic", Atomic) },
		},
		{
			name:        "missing ID",
			newConfig:   func() *StateConfig { return NewStateConfig("", Atomic) },
			errContains: "ID is required",
		},
		{
			name:        "dotted ID",
			newConfig:   func() *StateConfig { return NewStateConfig("a.b", Atomic) },
			errContains: "invalid character",
		},
		{
			name:        "invalid type",
			newConfig:   func() *StateConfig { return NewStateConfig("bad", StateType("parallel")) },
			errContains: "invalid state type",
		},
		{
			name:        "atomic with initial",
			newConfig:   func() *StateConfig { return NewStateConfig("atomic", Atomic).WithInitial("foo") },
			errContains: "cannot have Initial",
		},
		{
			name: "atomic with children",
			newConfig: func() *StateConfig {
				return NewStateConfig("atomic", Atomic).WithChildren([]*StateConfig{NewStateConfig("child", Atomic)})
			},
			errContains: "cannot have Children",
		},
		{
			name: "compound no initial",
			newConfig: func() *StateConfig {
				return NewStateConfig("compound", Compound).WithChildren([]*StateConfig{NewStateConfig("child", Atomic)})
			},
			errContains: "requires Initial child",
		},
		{
			name: "compound invalid initial",
			newConfig: func() *StateConfig {
				return NewStateConfig("compound", Compound).WithInitial("missing").WithChildren([]*StateConfig{NewStateConfig("other", Atomic)})
			},
			errContains: "initial child \"missing\"",
		},
		{
			name: "duplicate children",
			newConfig: func() *StateConfig {
				return NewStateConfig("compound", Compound).WithInitial("a").WithChildren([]*StateConfig{
					NewStateConfig("a", Atomic), NewStateConfig("a", Atomic),
				})
			},
			errContains: "duplicate child",
		},
		{
			name: "final with delayed transition",
			newConfig: func() *StateConfig {
				return NewStateConfig("dead", Final).AddAfter(time.Second, To("alive"))
			},
			errContains: "final state dead",
		},
		{
			name: "empty event name",
			newConfig: func() *StateConfig {
				return NewStateConfig("s", Atomic).AddTransition(" ", To("s"))
			},
			errContains: "empty event name",
		},
		{
			name: "valid compound",
			newConfig: func() *StateConfig {
				return NewStateConfig("compound", Compound).WithInitial("child").WithChildren([]*StateConfig{NewStateConfig("child", Atomic)})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.newConfig().Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestStateConfigAddAfterMergesDelays(t *testing.T) {
	s := NewStateConfig("dying", Atomic).
		AddAfter(time.Second, To("dead")).
		AddAfter(time.Second, To("gone")).
		AddAfter(2*time.Second, To("later"))

	require.Len(t, s.After, 2)
	assert.Len(t, s.After[0].Transitions, 2)
	assert.Equal(t, 2*time.Second, s.After[1].Delay)
}
