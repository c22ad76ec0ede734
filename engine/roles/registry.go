package roles

import (
	"fmt"
	"strings"

	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

var all = []types.RoleKind{
	types.RoleWerewolf, types.RoleAlphaWolf, types.RoleWhiteWolf, types.RoleWolfBeauty,
	types.RoleGuardianWolf, types.RoleHiddenWolf, types.RoleBloodMoonApostle, types.RoleNightmareWolf,
	types.RoleVillager, types.RoleSeer, types.RoleWitch, types.RoleHunter, types.RoleGuard,
	types.RoleIdiot, types.RoleElder, types.RoleKnight, types.RoleMagician, types.RoleCupid,
	types.RoleRaven, types.RoleGraveyardKeeper,
	types.RoleThief,
}

// All returns every role kind.
func All() []types.RoleKind {
	out := make([]types.RoleKind, len(all))
	copy(out, all)
	return out
}

// New builds a fresh role of kind with its starting state.
func New(kind types.RoleKind) (state.Role, error) {
	switch kind {
	case types.RoleWerewolf:
		return &Werewolf{}, nil
	case types.RoleAlphaWolf:
		return &AlphaWolf{}, nil
	case types.RoleWhiteWolf:
		return &WhiteWolf{}, nil
	case types.RoleWolfBeauty:
		return &WolfBeauty{}, nil
	case types.RoleGuardianWolf:
		return &GuardianWolf{}, nil
	case types.RoleHiddenWolf:
		return &HiddenWolf{}, nil
	case types.RoleBloodMoonApostle:
		return &BloodMoonApostle{}, nil
	case types.RoleNightmareWolf:
		return &NightmareWolf{}, nil
	case types.RoleVillager:
		return &Villager{}, nil
	case types.RoleSeer:
		return &Seer{}, nil
	case types.RoleWitch:
		return &Witch{HasSavePotion: true, HasPoisonPotion: true}, nil
	case types.RoleHunter:
		return &Hunter{}, nil
	case types.RoleGuard:
		return &Guard{}, nil
	case types.RoleIdiot:
		return &Idiot{}, nil
	case types.RoleElder:
		return &Elder{LivesLeft: 2}, nil
	case types.RoleKnight:
		return &Knight{}, nil
	case types.RoleMagician:
		return &Magician{}, nil
	case types.RoleCupid:
		return &Cupid{}, nil
	case types.RoleRaven:
		return &Raven{}, nil
	case types.RoleGraveyardKeeper:
		return &GraveyardKeeper{}, nil
	case types.RoleThief:
		return &Thief{}, nil
	}
	return nil, fmt.Errorf("unknown role %q", kind)
}

// Parse resolves a role name, ignoring case.
func Parse(name string) (types.RoleKind, error) {
	for _, k := range all {
		if strings.EqualFold(string(k), strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", name)
}

// CampOf returns the starting camp of kind.
func CampOf(kind types.RoleKind) types.Camp {
	switch kind {
	case types.RoleWerewolf, types.RoleAlphaWolf, types.RoleWhiteWolf, types.RoleWolfBeauty,
		types.RoleGuardianWolf, types.RoleHiddenWolf, types.RoleBloodMoonApostle, types.RoleNightmareWolf:
		return types.CampWerewolf
	case types.RoleThief:
		return types.CampNeutral
	}
	return types.CampVillager
}

// NewThief builds a Thief holding cards.
func NewThief(cards []types.RoleKind) *Thief {
	return &Thief{Cards: append([]types.RoleKind(nil), cards...)}
}
