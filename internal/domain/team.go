package domain

// Team is a team-Swiss entrant: an ordered board roster (board 1 first),
// already sorted by descending rating by the snapshot loader.
type Team struct {
	ID      string
	Name    string
	Section string
	Boards  []string // player ids, board 1 at index 0
}

// TeamState is the derived per-computation state for one team, analogous to
// PlayerState but at team granularity.
type TeamState struct {
	Team        *Team
	MatchPoints float64
	GamePoints  float64
	Opponents   map[string]bool
}
