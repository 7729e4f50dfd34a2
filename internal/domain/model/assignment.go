package model

import (
	"fmt"
	"strings"

	"github.com/okian/lineup/internal/domain/dedupe"
)

// Assignment is the team generator's result. It is immutable once produced.
type Assignment struct {
	TeamA []PlayerEntry `json:"team_a"            yaml:"team_a"`
	TeamB []PlayerEntry `json:"team_b"            yaml:"team_b"`
	Bench []PlayerEntry `json:"benched,omitempty" yaml:"benched,omitempty"`
}

// Names returns every entry name in team A, team B, bench order.
func (a *Assignment) Names() []string {
	names := make([]string, 0, len(a.TeamA)+len(a.TeamB)+len(a.Bench))
	for _, group := range [][]PlayerEntry{a.TeamA, a.TeamB, a.Bench} {
		for _, e := range group {
			names = append(names, e.Name)
		}
	}
	return names
}

// Size returns the number of entries across all buckets.
func (a *Assignment) Size() int {
	return len(a.TeamA) + len(a.TeamB) + len(a.Bench)
}

// Validate rejects an assignment that places one identifier in more than
// one slot across team A, team B and bench.
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrNilAssignment
	}
	dups := dedupe.Duplicates(a.Names(), dedupe.WithCapacity(a.Size()))
	if len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, strings.Join(dedupe.Unique(dups), ", "))
	}
	return nil
}
