package board

// Option configures a Board.
type Option func(*Board)

// WithLabels sets the default team labels used when none are given.
func WithLabels(teamA, teamB string) Option {
	return func(b *Board) {
		if teamA != "" {
			b.labelA = teamA
		}
		if teamB != "" {
			b.labelB = teamB
		}
	}
}
