// Package model contains domain models passed between layers.
package model

// PlayerToken is one attendee shown on screen, identified by name.
type PlayerToken struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TokensFromNames builds one token per name, using the name as both
// identifier and label.
func TokensFromNames(names []string) []PlayerToken {
	tokens := make([]PlayerToken, 0, len(names))
	for _, n := range names {
		tokens = append(tokens, PlayerToken{ID: n, Label: n})
	}
	return tokens
}

// TokenIDs returns the identifiers of tokens in order.
func TokenIDs(tokens []PlayerToken) []string {
	ids := make([]string, len(tokens))
	for i, t := range tokens {
		ids[i] = t.ID
	}
	return ids
}

// PlayerEntry is a player placed into a bucket by the team generator.
type PlayerEntry struct {
	Name     string  `json:"name"     yaml:"name"`
	Position string  `json:"position" yaml:"position"`
	Rating   float64 `json:"rating"   yaml:"rating"`
}

// Record is a display-only row from the players or matches listing.
type Record map[string]any
