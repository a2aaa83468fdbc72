package internal

// PhaseWeights hold the scoring knobs for one game phase.
type PhaseWeights struct {
	// FoundationWeight rewards banking a card.
	FoundationWeight float64
	// FlipWeight rewards exposing a face-down tableau card.
	FlipWeight float64
	// EmptyColumnWeight rewards clearing a tableau pile for a King.
	EmptyColumnWeight float64
	// KingToEmptyWeight rewards parking a buried King run on a cleared pile.
	KingToEmptyWeight float64
	// WasteWeight rewards unloading the waste.
	WasteWeight float64
	// RunLengthWeight rewards each extra card carried along in a run.
	RunLengthWeight float64
	// PointlessPenalty punishes moves with no structural gain.
	PointlessPenalty float64
}

// BotTuning bundles per-phase weights with the draw threshold.
type BotTuning struct {
	Opening PhaseWeights
	Mid     PhaseWeights
	End     PhaseWeights

	// PassThreshold is the minimum score a move must reach before it is
	// preferred over drawing from the stock.
	PassThreshold float64
}

// ForPhase selects the weights for the detected phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// ScoredMove pairs a candidate with its computed score.
type ScoredMove struct {
	Move  ValidMove
	Score float64
}

// ScoreMove rates a candidate by the structural gains it produces.
func ScoreMove(move ValidMove, weights PhaseWeights) float64 {
	score := 0.0
	if move.ToFoundation {
		score += weights.FoundationWeight
	}
	if move.Flips {
		score += weights.FlipWeight
	}
	if move.FromWaste {
		score += weights.WasteWeight
	}
	switch {
	case move.EmptiesSource && move.KingToEmpty:
		// Shuffling a King-rooted run between empty piles changes nothing.
		score -= weights.PointlessPenalty
	case move.EmptiesSource:
		score += weights.EmptyColumnWeight
	case move.KingToEmpty:
		score += weights.KingToEmptyWeight
	}
	score += float64(move.RunLength-1) * weights.RunLengthWeight
	if !move.ToFoundation && !move.FromWaste && !move.Flips &&
		!move.EmptiesSource && !move.KingToEmpty {
		score -= weights.PointlessPenalty
	}
	return score
}

// BuildScoredMoves scores every candidate with the given weights.
func BuildScoredMoves(moves []ValidMove, weights PhaseWeights) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		scored = append(scored, ScoredMove{Move: move, Score: ScoreMove(move, weights)})
	}
	return scored
}
