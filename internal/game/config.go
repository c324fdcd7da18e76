// Package game defines the Player, Box and Game machines and wires them into a
// core.System.
package game

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable constants of the game.
type Config struct {
	WinPoints  int           `yaml:"win_points"`
	Lives      int           `yaml:"lives"`
	DyingDelay time.Duration `yaml:"dying_delay"`
	Box        BoxConfig     `yaml:"box"`
}

// BoxConfig tunes the risk/reward offer.
type BoxConfig struct {
	IdleDelay     time.Duration `yaml:"idle_delay"`
	DropDelay     time.Duration `yaml:"drop_delay"`
	MaxGems       int           `yaml:"max_gems"`
	Growth        float64       `yaml:"growth"`
	MaxRisk       int           `yaml:"max_risk"`
	RiskStep      int           `yaml:"risk_step"`
	RiskThreshold int           `yaml:"risk_threshold"`
	StartGems     int           `yaml:"start_gems"`
	StartRisk     int           `yaml:"start_risk"`
}

// DefaultConfig returns the stock game constants.
func DefaultConfig() Config {
	return Config{
		WinPoints:  10000,
		Lives:      3,
		DyingDelay: time.Second,
		Box: BoxConfig{
			IdleDelay:     100 * time.Millisecond,
			DropDelay:     100 * time.Millisecond,
			MaxGems:       1000,
			Growth:        1.3,
			MaxRisk:       95,
			RiskStep:      5,
			RiskThreshold: 50,
			StartGems:     200,
			StartRisk:     50,
		},
	}
}

// LoadConfig reads YAML from path over DefaultConfig. An empty path returns
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	var errs []error
	if c.WinPoints <= 0 {
		errs = append(errs, errors.New("win_points must be positive"))
	}
	if c.Lives <= 0 {
		errs = append(errs, errors.New("lives must be positive"))
	}
	if c.DyingDelay <= 0 {
		errs = append(errs, errors.New("dying_delay must be positive"))
	}
	b := c.Box
	if b.IdleDelay <= 0 || b.DropDelay <= 0 {
		errs = append(errs, errors.New("box delays must be positive"))
	}
	if b.MaxGems <= 0 || b.StartGems < 0 || b.StartGems > b.MaxGems {
		errs = append(errs, errors.New("box gems must satisfy 0 <= start_gems <= max_gems"))
	}
	if b.Growth < 1 {
		errs = append(errs, errors.New("box growth must be at least 1"))
	}
	if b.MaxRisk < 0 || b.MaxRisk > 100 || b.StartRisk < 0 || b.StartRisk > b.MaxRisk {
		errs = append(errs, errors.New("box risk must satisfy 0 <= start_risk <= max_risk <= 100"))
	}
	if b.RiskStep < 0 || b.RiskThreshold < 0 {
		errs = append(errs, errors.New("box risk_step and risk_threshold must not be negative"))
	}
	return errors.Join(errs...)
}
