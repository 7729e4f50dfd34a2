package cli

import (
	"fmt"
	"time"

	"github.com/okian/lineup/internal/domain/model"
)

// Output formats for the final board.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// Config holds one terminal reveal run.
type Config struct {
	BackendURL string        // Base URL of the team generation backend
	Source     model.Source  // Roster and assignment source
	TeamA      string        // Team A label
	TeamB      string        // Team B label
	StartDelay time.Duration // Pause before the first draw
	Settle     time.Duration // Pause between a draw and its retirement
	Seed       int64         // Draw order seed; 0 picks a random order
	Output     string        // text or yaml
	Timeout    time.Duration // Backend request timeout
}

// Validate checks the run configuration.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend url is required")
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if c.Output != OutputText && c.Output != OutputYAML {
		return fmt.Errorf("unknown output %q: want %s or %s", c.Output, OutputText, OutputYAML)
	}
	if c.StartDelay < 0 || c.Settle < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
