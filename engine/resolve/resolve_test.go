package resolve

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine/events"
	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

type fixedRand struct{ n int }

func (r fixedRand) Intn(m int) int { return r.n % m }

// testTable seats one player per kind as player_1..N with no agents.
func testTable(t *testing.T, kinds ...types.RoleKind) *Table {
	t.Helper()
	players := make([]*state.Player, len(kinds))
	for i, k := range kinds {
		r, err := roles.New(k)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		players[i] = state.NewPlayer(fmt.Sprintf("player_%d", i+1), fmt.Sprintf("P%d", i+1), r, nil)
	}
	g := state.NewGame(players)
	return &Table{
		Game:   g,
		Log:    events.NewLog(func() (int, types.Phase) { return g.Round, g.Phase }),
		Ask:    agent.NewSelector(fixedRand{}, zerolog.Nop()),
		Rand:   fixedRand{},
		Config: state.DefaultConfig(),
		Logger: zerolog.Nop(),
	}
}

func script(p *state.Player, responses ...string) *agent.Scripted {
	a := agent.NewScripted(p.Name, responses...)
	p.Agent = a
	return a
}

func countEvents(tb *Table, typ types.EventType) int {
	n := 0
	for _, e := range tb.Log.All() {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func expectDead(t *testing.T, g *state.Game, id string, cause types.DeathCause) {
	t.Helper()
	p := g.Player(id)
	if p.Alive {
		t.Fatalf("expected %s to be dead", id)
	}
	if g.DeathCauses[id] != cause {
		t.Errorf("%s: expected cause %s, got %s", id, cause, g.DeathCauses[id])
	}
}

func expectAlive(t *testing.T, g *state.Game, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if !g.Player(id).Alive {
			t.Errorf("expected %s to be alive (cause %s)", id, g.DeathCauses[id])
		}
	}
}

func TestDeath_LoverCascade(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleSeer)
	g := tb.Game
	g.SetPhase(types.PhaseNight)
	g.Link(g.Players[1], g.Players[2])
	g.WerewolfTarget = "player_2"

	(&Death{Table: tb}).ResolveNight(context.Background())

	expectDead(t, g, "player_2", types.CauseWerewolf)
	expectDead(t, g, "player_3", types.CauseHeartbreak)
	expectAlive(t, g, "player_1", "player_4")
	if len(g.NightDeaths) != 2 {
		t.Errorf("expected both lovers in the night's deaths, got %v", g.NightDeaths)
	}
	if countEvents(tb, types.EventLoverDied) != 1 {
		t.Error("expected one lover_died event")
	}
}

func TestDeath_ElderSurvivesFirstAttack(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleElder, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	d := &Death{Table: tb}

	g.SetPhase(types.PhaseNight)
	g.WerewolfTarget = "player_2"
	d.ResolveNight(context.Background())
	expectAlive(t, g, "player_2")
	if lives := g.Players[1].Role.(*roles.Elder).Lives(); lives != 1 {
		t.Errorf("expected 1 life left, got %d", lives)
	}

	g.SetPhase(types.PhaseNight)
	g.WerewolfTarget = "player_2"
	d.ResolveNight(context.Background())
	expectDead(t, g, "player_2", types.CauseWerewolf)
}

func TestDeath_PoisonDisablesHunter(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleHunter, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	hunter := script(g.Players[1], "1")
	g.SetPhase(types.PhaseNight)
	g.WitchPoisonTarget = "player_2"

	(&Death{Table: tb}).ResolveNight(context.Background())

	expectDead(t, g, "player_2", types.CauseWitchPoison)
	expectAlive(t, g, "player_1", "player_3", "player_4")
	if len(hunter.Prompts) != 0 {
		t.Errorf("a poisoned hunter must not be asked to shoot, got %d prompts", len(hunter.Prompts))
	}
	if countEvents(tb, types.EventPoisonedNoAbility) != 1 {
		t.Error("expected a poisoned_no_ability event")
	}
}

func TestDeath_HunterShootsOnWerewolfKill(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleHunter, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[1], "1")
	g.SetPhase(types.PhaseNight)
	g.WerewolfTarget = "player_2"

	(&Death{Table: tb}).ResolveNight(context.Background())

	expectDead(t, g, "player_2", types.CauseWerewolf)
	expectDead(t, g, "player_1", types.CauseDeathShot)
	if !g.DeathAbilitiesUsed["player_2"] {
		t.Error("death ability should be marked used")
	}
}

func TestDeath_HunterShotCascadesToLover(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleHunter, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[1], "2") // alive after the kill: P1, P3, P4
	g.SetPhase(types.PhaseNight)
	g.Link(g.Players[2], g.Players[3])
	g.WerewolfTarget = "player_2"

	(&Death{Table: tb}).ResolveNight(context.Background())

	expectDead(t, g, "player_3", types.CauseDeathShot)
	expectDead(t, g, "player_4", types.CauseHeartbreak)
	expectAlive(t, g, "player_1")
}

func TestDeath_SheriffDyingAloneTearsBadge(t *testing.T) {
	tb := testTable(t, types.RoleVillager, types.RoleWerewolf)
	g := tb.Game
	sheriff := script(g.Players[0], "1")
	g.SetPhase(types.PhaseDayVoting)
	g.SetSheriff("player_1")
	g.Kill(g.Players[1], types.CauseVote)
	g.Kill(g.Players[0], types.CauseKnightDuel)

	(&Death{Table: tb}).Aftermath(context.Background())

	if g.SheriffID != "" {
		t.Errorf("expected the badge torn, sheriff is %q", g.SheriffID)
	}
	if len(sheriff.Prompts) != 0 {
		t.Errorf("no agent should be prompted, got %d prompts", len(sheriff.Prompts))
	}
	if countEvents(tb, types.EventBadgeTorn) != 1 {
		t.Error("expected a badge_torn event")
	}
}

func TestDeath_SheriffPassesBadge(t *testing.T) {
	tb := testTable(t, types.RoleVillager, types.RoleWerewolf, types.RoleSeer, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "2") // alive: P2, P3, P4
	g.SetPhase(types.PhaseNight)
	g.SetSheriff("player_1")
	g.WerewolfTarget = "player_1"

	(&Death{Table: tb}).ResolveNight(context.Background())

	if g.SheriffID != "player_3" {
		t.Errorf("expected badge passed to player_3, got %q", g.SheriffID)
	}
	if !g.Players[2].HasStatus(types.StatusSheriff) || g.Players[0].HasStatus(types.StatusSheriff) {
		t.Error("sheriff status should follow the badge")
	}
}

func TestDeath_WolfBeautyTakesCharmedTarget(t *testing.T) {
	tb := testTable(t, types.RoleWolfBeauty, types.RoleWerewolf, types.RoleVillager, types.RoleSeer, types.RoleVillager)
	g := tb.Game
	g.Players[0].Role.(*roles.WolfBeauty).CharmedID = "player_4"
	g.SetPhase(types.PhaseDayVoting)
	g.Kill(g.Players[0], types.CauseVote)

	(&Death{Table: tb}).Aftermath(context.Background())

	expectDead(t, g, "player_4", types.CauseCharm)
}

func TestDeath_CharmSettlesBeforeHunterShoots(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleHunter, types.RoleWolfBeauty, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	hunter := script(g.Players[1], "2") // alive when shooting: P1, P5
	g.Players[2].Role.(*roles.WolfBeauty).CharmedID = "player_4"
	g.SetPhase(types.PhaseNight)
	g.WerewolfTarget = "player_2"
	g.WitchPoisonTarget = "player_3"

	(&Death{Table: tb}).ResolveNight(context.Background())

	expectDead(t, g, "player_4", types.CauseCharm)
	expectDead(t, g, "player_5", types.CauseDeathShot)
	expectAlive(t, g, "player_1")
	if len(hunter.Prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(hunter.Prompts))
	}
	if strings.Contains(hunter.Prompts[0], "Player ID: player_4") {
		t.Errorf("charmed player should not be offered as a target:\n%s", hunter.Prompts[0])
	}
}

func TestNight_WhiteWolfKillTakesLoverAtOnce(t *testing.T) {
	tb := testTable(t, types.RoleWhiteWolf, types.RoleWerewolf, types.RoleSeer, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "2", "1") // vote P4, then kill P2
	script(g.Players[1], "2")      // vote P4
	seer := script(g.Players[2], "1")
	g.Link(g.Players[1], g.Players[2])
	g.SetPhase(types.PhaseNight)
	g.SetPhase(types.PhaseNight) // round 2: the White Wolf may kill

	(&Night{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectDead(t, g, "player_2", types.CauseWhiteWolf)
	expectDead(t, g, "player_3", types.CauseHeartbreak)
	expectDead(t, g, "player_4", types.CauseWerewolf)
	if len(seer.Prompts) != 1 {
		t.Errorf("expected the seer to be asked before the kill, got %d prompts", len(seer.Prompts))
	}
	if len(g.SeerChecked) != 0 {
		t.Errorf("a seer dead of heartbreak must not check, got %v", g.SeerChecked)
	}
	if countEvents(tb, types.EventLoverDied) != 1 {
		t.Error("expected one lover_died event")
	}
}

func TestNight_SplitWolfVotePicksALeader(t *testing.T) {
	for n := 0; n < 2; n++ {
		tb := testTable(t, types.RoleWerewolf, types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleVillager)
		tb.Rand = fixedRand{n: n}
		g := tb.Game
		// Each wolf speaks once, then votes; prey is P3, P4, P5.
		script(g.Players[0], "P3 looks suspicious.", "1")
		script(g.Players[1], "I'd rather take P4.", "2")
		g.SetPhase(types.PhaseNight)

		(&Night{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

		want := []string{"player_3", "player_4"}[n]
		if g.WerewolfTarget != want {
			t.Errorf("rand %d: expected target %s, got %s", n, want, g.WerewolfTarget)
		}
		expectDead(t, g, want, types.CauseWerewolf)
		if countEvents(tb, types.EventWerewolfDiscussion) != 2 {
			t.Errorf("expected 2 werewolf speeches, got %d", countEvents(tb, types.EventWerewolfDiscussion))
		}
	}
}

func TestNight_WitchSavesTonightsVictim(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleWitch, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "2") // prey: P2, P3, P4
	witch := script(g.Players[1], "YES")
	g.SetPhase(types.PhaseNight)

	(&Night{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectAlive(t, g, "player_1", "player_2", "player_3", "player_4")
	if g.WitchSavedTarget != "player_3" {
		t.Errorf("expected witch to save player_3, got %q", g.WitchSavedTarget)
	}
	if len(witch.Prompts) != 1 {
		t.Fatalf("expected one witch prompt, got %d", len(witch.Prompts))
	}
	if countEvents(tb, types.EventPlayerSaved) != 1 {
		t.Error("expected a player_saved event")
	}
}

func TestNight_GuardProtects(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleGuard, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "2") // prey: P2, P3, P4
	script(g.Players[1], "3") // all alive plus skip
	g.SetPhase(types.PhaseNight)

	(&Night{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectAlive(t, g, "player_3")
	if g.Players[1].Role.(*roles.Guard).LastProtectedID != "player_3" {
		t.Error("guard should remember the protected player")
	}
}

func TestNight_BlockedActorIsSkipped(t *testing.T) {
	tb := testTable(t, types.RoleNightmareWolf, types.RoleSeer, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "1", "3") // block P2, then kill P4
	seer := script(g.Players[1], "1")
	g.SetPhase(types.PhaseNight)

	(&Night{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	if len(seer.Prompts) != 1 {
		t.Errorf("blocked players are still asked, got %d prompts", len(seer.Prompts))
	}
	if len(g.SeerChecked) != 0 {
		t.Errorf("blocked seer must not check anyone, got %v", g.SeerChecked)
	}
	if countEvents(tb, types.EventPlayerBlocked) != 1 {
		t.Error("expected a player_blocked event")
	}
	expectDead(t, g, "player_4", types.CauseWerewolf)
}

func TestNight_SeerResultIsPrivate(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleSeer, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "3") // prey: P2, P3, P4
	script(g.Players[1], "1") // check P1
	g.SetPhase(types.PhaseNight)

	(&Night{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	for _, e := range tb.Log.All() {
		if e.Type != types.EventSeerChecked {
			continue
		}
		if len(e.VisibleTo) != 1 || e.VisibleTo[0] != "player_2" {
			t.Errorf("seer result should be visible to the seer only, got %v", e.VisibleTo)
		}
		if e.Data["camp"] != string(types.CampWerewolf) {
			t.Errorf("expected werewolf result, got %v", e.Data["camp"])
		}
		return
	}
	t.Fatal("expected a seer_checked event")
}

func TestVoting_TieEliminatesNobody(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleSeer)
	g := tb.Game
	script(g.Players[0], "1") // P2
	script(g.Players[1], "1") // P1
	script(g.Players[2], "2") // P2
	script(g.Players[3], "1") // P1
	g.SetPhase(types.PhaseDayVoting)

	(&Voting{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectAlive(t, g, "player_1", "player_2", "player_3", "player_4")
}

func TestVoting_RavenMarkBreaksTie(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleRaven)
	g := tb.Game
	script(g.Players[0], "1")
	script(g.Players[1], "1")
	script(g.Players[2], "2")
	script(g.Players[3], "1")
	g.SetPhase(types.PhaseNight)
	g.RavenMarked = "player_1"
	g.SetPhase(types.PhaseDayVoting)

	(&Voting{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectDead(t, g, "player_1", types.CauseVote)
}

func TestVoting_RunoffResolvesTie(t *testing.T) {
	tb := testTable(t, types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleSeer)
	tb.Config.AllowRevote = true
	g := tb.Game
	script(g.Players[0], "1", "1")
	script(g.Players[1], "1", "1")
	script(g.Players[2], "2", "2")
	script(g.Players[3], "1", "2")
	g.SetPhase(types.PhaseDayVoting)

	(&Voting{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectDead(t, g, "player_2", types.CauseVote)
	expectAlive(t, g, "player_1")
}

func TestVoting_IdiotRevealedOnlyOnce(t *testing.T) {
	tb := testTable(t, types.RoleIdiot, types.RoleWerewolf, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	idiotAgent := script(g.Players[0], "1")
	script(g.Players[1], "1", "1")
	script(g.Players[2], "1", "1")
	script(g.Players[3], "1", "1")
	v := &Voting{Table: tb, Death: &Death{Table: tb}}

	g.SetPhase(types.PhaseDayVoting)
	v.Run(context.Background())

	idiot := g.Players[0]
	expectAlive(t, g, idiot.ID)
	if idiot.CanVote {
		t.Error("a revealed idiot loses the vote")
	}
	if !idiot.Role.(*roles.Idiot).Revealed {
		t.Error("idiot should be revealed")
	}

	g.SetPhase(types.PhaseDayVoting)
	v.Run(context.Background())

	expectDead(t, g, idiot.ID, types.CauseVote)
	if len(idiotAgent.Prompts) != 1 {
		t.Errorf("revealed idiot must not vote again, got %d prompts", len(idiotAgent.Prompts))
	}
}

func TestVoting_ElderPenaltyDisablesVillage(t *testing.T) {
	tb := testTable(t, types.RoleElder, types.RoleWerewolf, types.RoleSeer, types.RoleWitch, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "1")
	for _, p := range g.Players[1:] {
		script(p, "1")
	}
	g.SetPhase(types.PhaseDayVoting)

	(&Voting{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectDead(t, g, "player_1", types.CauseVote)
	for _, p := range g.Players[2:] {
		if !p.Role.Disabled() {
			t.Errorf("%s (%s) should be disabled", p.ID, p.Role.Kind())
		}
	}
	if g.Players[1].Role.Disabled() {
		t.Error("the werewolf keeps its ability")
	}
	if roles.CanActAtNight(g, g.Players[2]) {
		t.Error("a disabled seer has no night action")
	}
}

func TestSheriff_SingleCandidateElected(t *testing.T) {
	tb := testTable(t, types.RoleVillager, types.RoleWerewolf, types.RoleSeer, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "YES")
	script(g.Players[1], "NO")
	script(g.Players[2], "no thanks")
	g.SetPhase(types.PhaseSheriffElection)

	(&Sheriff{Table: tb}).Run(context.Background())

	if g.SheriffID != "player_1" {
		t.Errorf("expected player_1 elected, got %q", g.SheriffID)
	}
	if !g.SheriffElectionDone {
		t.Error("election should be marked done")
	}
}

func TestSheriff_TieElectsNobody(t *testing.T) {
	tb := testTable(t, types.RoleVillager, types.RoleWerewolf, types.RoleSeer, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "YES", "Vote for me.")
	script(g.Players[1], "YES", "I will protect you.")
	script(g.Players[2], "NO", "1")
	script(g.Players[3], "NO", "2")
	g.SetPhase(types.PhaseSheriffElection)

	(&Sheriff{Table: tb}).Run(context.Background())

	if g.SheriffID != "" {
		t.Errorf("expected no sheriff after a tie, got %q", g.SheriffID)
	}
	if countEvents(tb, types.EventSheriffTie) != 1 {
		t.Error("expected a sheriff_tie event")
	}
	if countEvents(tb, types.EventSheriffSpeech) != 2 {
		t.Error("expected both candidates to speak")
	}
	if !g.SheriffElectionDone {
		t.Error("election should be marked done")
	}
}

func TestSheriff_NoCandidates(t *testing.T) {
	tb := testTable(t, types.RoleVillager, types.RoleWerewolf, types.RoleSeer)
	g := tb.Game
	for _, p := range g.Players {
		script(p, "NO")
	}
	g.SetPhase(types.PhaseSheriffElection)

	(&Sheriff{Table: tb}).Run(context.Background())

	if g.SheriffID != "" || countEvents(tb, types.EventSheriffNone) != 1 {
		t.Error("expected no sheriff and a sheriff_none event")
	}
}

func TestSheriff_AgentlessSeatsSitOut(t *testing.T) {
	tb := testTable(t, types.RoleVillager, types.RoleSeer, types.RoleWerewolf, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "yes", "I will lead.")
	script(g.Players[1], "yes", "Trust me.")
	voter := script(g.Players[2], "no", "2") // votes for P2
	g.SetPhase(types.PhaseSheriffElection)

	(&Sheriff{Table: tb}).Run(context.Background())

	if g.SheriffID != "player_2" {
		t.Errorf("expected player_2 elected, got %q", g.SheriffID)
	}
	if n := countEvents(tb, types.EventSheriffVoteCast); n != 1 {
		t.Errorf("expected only the agent-backed voter to vote, got %d votes", n)
	}
	if n := countEvents(tb, types.EventSheriffVoteAbstained); n != 0 {
		t.Errorf("agentless seats must not be recorded as abstaining, got %d", n)
	}
	if len(voter.Prompts) != 2 {
		t.Errorf("expected candidacy and vote prompts, got %d", len(voter.Prompts))
	}
	if !g.SheriffElectionDone {
		t.Error("expected the election marked done")
	}
}

func TestDiscussion_KnightDuelKillsWolf(t *testing.T) {
	tb := testTable(t, types.RoleKnight, types.RoleWerewolf, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "I have a feeling about P2.", "YES", "1")
	g.SetPhase(types.PhaseNight)
	g.SetPhase(types.PhaseDayDiscussion)

	(&Discussion{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectDead(t, g, "player_2", types.CauseKnightDuel)
	expectAlive(t, g, "player_1")
	if len(g.Discussion) != 1 {
		t.Errorf("expected 1 speech recorded, got %d", len(g.Discussion))
	}
}

func TestDiscussion_KnightDiesOnWrongGuess(t *testing.T) {
	tb := testTable(t, types.RoleKnight, types.RoleWerewolf, types.RoleVillager, types.RoleVillager)
	g := tb.Game
	script(g.Players[0], "", "YES", "2")
	g.SetPhase(types.PhaseNight)
	g.SetPhase(types.PhaseDayDiscussion)

	(&Discussion{Table: tb, Death: &Death{Table: tb}}).Run(context.Background())

	expectDead(t, g, "player_1", types.CauseKnightDuel)
	expectAlive(t, g, "player_2", "player_3")
	if len(g.Discussion) != 0 {
		t.Errorf("empty speeches are not recorded, got %v", g.Discussion)
	}
}
