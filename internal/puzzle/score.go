package puzzle

import "fmt"

// assistPenalty scales the final score when the assist (hint) mode was used
// at any point during the attempt. This is the multiplayer-facing value.
const assistPenalty = 0.01

// ComputeScore derives the score for an attempt. The base is
// gridSize²·1000 minus 10 per move and 5 per elapsed second, floored at
// zero. Void mode earns a filter-dependent multiplier; normal mode is
// always ×1.0. The result is floored to an integer after every scaling.
func ComputeScore(gridSize, moves, elapsedSec int, isVoidMode bool, filter string, usedAssist bool) int {
	score := gridSize*gridSize*1000 - moves*10 - elapsedSec*5
	if score < 0 {
		score = 0
	}

	multiplier := 1.0
	if isVoidMode {
		multiplier = filterMultiplier(filter)
	}
	score = int(float64(score) * multiplier)

	if usedAssist {
		score = int(float64(score) * assistPenalty)
	}
	return score
}

func filterMultiplier(filter string) float64 {
	switch filter {
	case "none":
		return 1.1
	case "grayscale":
		return 1.2
	case "invert", "contrast", "void":
		return 1.5
	case "blur":
		return 1.7
	default:
		return 1.0
	}
}

// FormatTime renders elapsed seconds as mm:ss for display surfaces.
func FormatTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
