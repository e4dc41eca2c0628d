package matrixgame

// Action indices for the Rock-Paper-Scissors payoff matrix.
const (
	Rock = iota
	Paper
	Scissors
)

// RPSActionNames are the display names for the RockPaperScissors
// payoff matrix, indexed by action.
var RPSActionNames = []string{"rock", "paper", "scissors"}

// RockPaperScissors returns the standard zero-sum payoff matrix for
// Rock-Paper-Scissors from the row player's point of view.
func RockPaperScissors() [][]float64 {
	return [][]float64{
		{0, -1, 1}, // rock
		{1, 0, -1}, // paper
		{-1, 1, 0}, // scissors
	}
}
