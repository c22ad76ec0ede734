// Package victory decides whether a game is over and who won.
package victory

import (
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Evaluate checks the win conditions in order: lovers, werewolves,
// villagers. The first match wins.
func Evaluate(g *state.Game) types.Victory {
	alive := g.Alive()

	if len(alive) == 2 && alive[0].LoverID == alive[1].ID && alive[1].LoverID == alive[0].ID {
		return types.Victory{
			HasWinner:  true,
			WinnerCamp: types.CampLovers,
			WinnerIDs:  []string{alive[0].ID, alive[1].ID},
			Reason:     "The lovers are the last ones standing.",
		}
	}

	wolves := 0
	for _, p := range alive {
		if p.IsWolf() {
			wolves++
		}
	}
	others := len(alive) - wolves

	switch {
	case wolves > 0 && wolves >= others:
		return types.Victory{
			HasWinner:  true,
			WinnerCamp: types.CampWerewolf,
			WinnerIDs:  campMembers(g, types.CampWerewolf),
			Reason:     "The werewolves equal or outnumber the village.",
		}
	case wolves == 0:
		return types.Victory{
			HasWinner:  true,
			WinnerCamp: types.CampVillager,
			WinnerIDs:  campMembers(g, types.CampVillager),
			Reason:     "Every werewolf has been eliminated.",
		}
	}
	return types.Victory{}
}

// campMembers lists every player, alive or dead, whose camp is camp.
func campMembers(g *state.Game, camp types.Camp) []string {
	var ids []string
	for _, p := range g.Players {
		if p.Camp() == camp {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
