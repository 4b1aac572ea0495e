package tables

import (
	"fmt"

	"github.com/JonMunkholm/dexedit/internal/core"
)

func init() {
	registerTMCompat()
	registerTutorCompat()
}

// registerTMCompat registers TM/HM compatibility. Columns are labeled
// "TM01 <move>"; the data layer's table carries the reserved leading bit.
func registerTMCompat() {
	core.Register(core.Descriptor{
		Kind:      core.KindTMCompat,
		Label:     "TM Compatibility",
		Section:   "TM Compatibility",
		Arity:     core.ArityFlags,
		FlagLabel: tmLabel,
	})
}

func registerTutorCompat() {
	core.Register(core.Descriptor{
		Kind:      core.KindTutorCompat,
		Label:     "Move Tutor Compatibility",
		Section:   "Tutor Compatibility",
		Arity:     core.ArityFlags,
		FlagLabel: tutorLabel,
	})
}

func tmLabel(i int, move string, _ bool) string {
	if move == "" {
		return fmt.Sprintf("TM%02d", i+1)
	}
	return fmt.Sprintf("TM%02d %s", i+1, move)
}

// tutorLabel uses the bare move name unless two tutors teach the same move.
func tutorLabel(i int, move string, repeated bool) string {
	switch {
	case move == "":
		return fmt.Sprintf("Tutor %d", i+1)
	case repeated:
		return fmt.Sprintf("Tutor %d %s", i+1, move)
	default:
		return move
	}
}
