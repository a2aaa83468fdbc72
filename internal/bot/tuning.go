package bot

import (
	botinternal "klondike/internal/bot/internal"
)

// DefaultTuning is the shipped weight set for the scored advisor.
//
// Opening favors flips over early banking so low cards stay available
// for tableau builds. The end game flips that preference around.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		FoundationWeight:  8,
		FlipWeight:        10,
		EmptyColumnWeight: 6,
		KingToEmptyWeight: 5,
		WasteWeight:       3,
		RunLengthWeight:   0.5,
		PointlessPenalty:  20,
	},
	Mid: botinternal.PhaseWeights{
		FoundationWeight:  10,
		FlipWeight:        9,
		EmptyColumnWeight: 5,
		KingToEmptyWeight: 4,
		WasteWeight:       3,
		RunLengthWeight:   0.4,
		PointlessPenalty:  20,
	},
	End: botinternal.PhaseWeights{
		FoundationWeight:  14,
		FlipWeight:        8,
		EmptyColumnWeight: 3,
		KingToEmptyWeight: 2,
		WasteWeight:       4,
		RunLengthWeight:   0.2,
		PointlessPenalty:  20,
	},
	PassThreshold: 0.5,
}
