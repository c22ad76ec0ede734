package roles

import (
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Thief takes one of two extra cards on the first night. Its kind stays
// Thief for the whole game; camp and abilities come from the chosen card.
type Thief struct {
	base
	Cards     []types.RoleKind
	Chosen    state.Role
	HasChosen bool
}

func (*Thief) Kind() types.RoleKind { return types.RoleThief }

func (t *Thief) Camp() types.Camp {
	if t.Chosen != nil {
		return t.Chosen.Camp()
	}
	return types.CampNeutral
}

func (t *Thief) Disabled() bool {
	if t.Chosen != nil {
		return t.Chosen.Disabled()
	}
	return t.base.Disabled()
}

func (t *Thief) Disable() {
	if t.Chosen != nil {
		t.Chosen.Disable()
	}
	t.base.Disable()
}

func (t *Thief) HasNightAction(g *state.Game, _ *state.Player) bool {
	return g.Round == 1 && !t.HasChosen && len(t.Cards) > 0
}

func (t *Thief) NightActions(env Env) []Action {
	req := env.request("Choose the card you will play as", nil, false)
	req.Options = cardOptions(t.Cards)
	idx, ok := env.Ask.Target(env.Ctx, env.Self.Agent, req)
	if !ok {
		return nil
	}
	return []Action{NewThiefChoose(env.Game, env.Self, t.Cards[idx])}
}
