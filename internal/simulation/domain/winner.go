package domain

// Winner identifies which participant of a match won. Matches never draw.
type Winner int

const (
	// WinnerUnspecified represents an invalid winner value.
	WinnerUnspecified Winner = iota
	// WinnerPlayerOne indicates the first participant won.
	WinnerPlayerOne
	// WinnerPlayerTwo indicates the second participant won.
	WinnerPlayerTwo
)

// String returns a stable lowercase name for the winner.
func (w Winner) String() string {
	switch w {
	case WinnerPlayerOne:
		return "player_one"
	case WinnerPlayerTwo:
		return "player_two"
	default:
		return "unspecified"
	}
}
