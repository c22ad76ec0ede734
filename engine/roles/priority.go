package roles

import (
	"sort"

	"github.com/nathoo/wolfcore/types"
)

// WitchPriority is the tier at which kill-aware roles act.
const WitchPriority = 70

// Priority returns the execution priority of kind. Higher runs first.
func Priority(kind types.ActionKind) int {
	switch kind {
	case types.ActionCupidLink:
		return 100
	case types.ActionNightmareBlock:
		return 98
	case types.ActionThiefChoose:
		return 95
	case types.ActionGuardProtect, types.ActionGuardianWolfProtect, types.ActionMagicianSwap:
		return 90
	case types.ActionWerewolfVote, types.ActionWolfBeautyCharm:
		return 80
	case types.ActionWhiteWolfKill:
		return 75
	case types.ActionWitchSave, types.ActionWitchPoison:
		return WitchPriority
	case types.ActionSeerCheck:
		return 60
	case types.ActionGraveyardCheck:
		return 50
	case types.ActionRavenMark:
		return 40
	case types.ActionUnknown, types.ActionKnightDuel, types.ActionVote, types.ActionDeathShot:
		return 0
	}
	return 0
}

// SortActions orders actions by descending priority. Actions of equal
// priority keep their submission order.
func SortActions(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return Priority(actions[i].Kind()) > Priority(actions[j].Kind())
	})
}
