package tables

import "github.com/JonMunkholm/dexedit/internal/core"

// Slot limits of the learnset tables in the ROM layout.
const (
	maxLevelUpMoves = 20
	maxEggMoves     = 10
)

func init() {
	registerLevelUp()
	registerEggMoves()
}

func registerLevelUp() {
	core.Register(core.Descriptor{
		Kind:     core.KindLevelUp,
		Label:    "Level-up Learnsets",
		Section:  "Level-up Moves",
		Arity:    core.ArityMoveLevel,
		MaxSlots: maxLevelUpMoves,
	})
}

func registerEggMoves() {
	core.Register(core.Descriptor{
		Kind:     core.KindEggMoves,
		Label:    "Egg Moves",
		Arity:    core.ArityMove,
		MaxSlots: maxEggMoves,
	})
}
