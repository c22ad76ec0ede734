package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine/save"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

var names = []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi"}

// seats returns n player specs without agents.
func seats(n int) []PlayerSpec {
	out := make([]PlayerSpec, n)
	for i := range out {
		out[i] = PlayerSpec{Name: names[i]}
	}
	return out
}

func classic() []types.RoleKind {
	return []types.RoleKind{
		types.RoleWerewolf, types.RoleWerewolf, types.RoleSeer, types.RoleWitch,
		types.RoleGuard, types.RoleHunter, types.RoleVillager, types.RoleVillager,
	}
}

func newEngine(t *testing.T, seed int64, specs []PlayerSpec, kinds []types.RoleKind, opts ...Option) *Engine {
	t.Helper()
	e := New(state.DefaultConfig(), append([]Option{WithRNG(NewRNG(seed))}, opts...)...)
	if err := e.Setup(specs, kinds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

// optionFor returns the menu number of the option naming id, or "1".
func optionFor(prompt, id string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.Contains(line, "(Player ID: "+id+")") {
			if n, _, ok := strings.Cut(line, "."); ok {
				return n
			}
		}
	}
	return "1"
}

func wolfID(t *testing.T, e *Engine) string {
	t.Helper()
	for _, p := range e.Game().Players {
		if p.IsWolf() {
			return p.ID
		}
	}
	t.Fatal("no werewolf seated")
	return ""
}

type step struct {
	Type    types.EventType
	Message string
}

func trace(evs []types.Event) []step {
	out := make([]step, len(evs))
	for i, e := range evs {
		out[i] = step{e.Type, e.Message}
	}
	return out
}

func TestStep_BeforeSetup(t *testing.T) {
	e := New(state.DefaultConfig())
	if _, err := e.Step(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup, got %v", err)
	}
	if _, err := e.PlayToCompletion(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup, got %v", err)
	}
	if _, err := e.Save(); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup, got %v", err)
	}
}

func TestSetup_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		specs []PlayerSpec
		kinds []types.RoleKind
		cards []string
	}{
		{"count mismatch", seats(3), []types.RoleKind{types.RoleWerewolf, types.RoleSeer}, nil},
		{"empty name", []PlayerSpec{{Name: "Alice"}, {Name: " "}}, []types.RoleKind{types.RoleWerewolf, types.RoleSeer}, nil},
		{"duplicate name", []PlayerSpec{{Name: "Alice"}, {Name: "Alice"}}, []types.RoleKind{types.RoleWerewolf, types.RoleSeer}, nil},
		{"unknown role", seats(2), []types.RoleKind{types.RoleWerewolf, "Dragon"}, nil},
		{"no werewolf", seats(2), []types.RoleKind{types.RoleSeer, types.RoleVillager}, nil},
		{"bad thief card", seats(2), []types.RoleKind{types.RoleWerewolf, types.RoleThief}, []string{"Dragon"}},
		{"thief steals thief", seats(2), []types.RoleKind{types.RoleWerewolf, types.RoleThief}, []string{"Thief"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := state.DefaultConfig()
			if tt.cards != nil {
				cfg.ThiefCards = tt.cards
			}
			e := New(cfg, WithRNG(NewRNG(1)))
			if err := e.Setup(tt.specs, tt.kinds); err == nil {
				t.Error("expected setup error")
			}
			if e.Game() != nil {
				t.Error("expected no game after a failed setup")
			}
		})
	}
}

func TestSetup_SeatsPlayers(t *testing.T) {
	e := newEngine(t, 42, seats(8), classic())
	g := e.Game()

	if g.Phase != types.PhaseSetup || g.Round != 0 {
		t.Errorf("expected setup round 0, got %s %d", g.Phase, g.Round)
	}
	dealt := map[types.RoleKind]int{}
	for i, p := range g.Players {
		if want := fmt.Sprintf("player_%d", i+1); p.ID != want {
			t.Errorf("expected id %s, got %s", want, p.ID)
		}
		if p.Name != names[i] {
			t.Errorf("expected name %s, got %s", names[i], p.Name)
		}
		dealt[p.Role.Kind()]++
	}
	want := map[types.RoleKind]int{}
	for _, k := range classic() {
		want[k]++
	}
	if diff := cmp.Diff(want, dealt); diff != "" {
		t.Errorf("dealt roles mismatch (-want +got):\n%s", diff)
	}

	// Same seed, same deal.
	again := newEngine(t, 42, seats(8), classic())
	for i, p := range again.Game().Players {
		if p.Role.Kind() != g.Players[i].Role.Kind() {
			t.Errorf("seat %d: expected %s, got %s", i, g.Players[i].Role.Kind(), p.Role.Kind())
		}
	}
}

func TestSetup_ThiefCards(t *testing.T) {
	cfg := state.DefaultConfig()
	cfg.ThiefCards = []string{"seer", "WOLFBEAUTY"}
	e := New(cfg, WithRNG(NewRNG(3)))
	if err := e.Setup(seats(3), []types.RoleKind{types.RoleWerewolf, types.RoleThief, types.RoleVillager}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range e.Game().Players {
		if p.Role.Kind() != types.RoleThief {
			continue
		}
		if p.Camp() != types.CampNeutral {
			t.Errorf("expected neutral before choosing, got %s", p.Camp())
		}
		return
	}
	t.Fatal("no thief seated")
}

func TestSetup_RoleRevealIsPrivate(t *testing.T) {
	e := newEngine(t, 5, seats(8), classic())
	for _, p := range e.Game().Players {
		n := 0
		for _, ev := range e.VisibleEvents(p.ID) {
			if ev.Type == types.EventRoleRevealed {
				n++
				if ev.Data["player_id"] != p.ID {
					t.Errorf("%s sees the reveal of %v", p.ID, ev.Data["player_id"])
				}
			}
		}
		if n != 1 {
			t.Errorf("%s: expected 1 reveal, got %d", p.ID, n)
		}
	}
}

func TestStep_PhaseOrder(t *testing.T) {
	tests := []struct {
		name    string
		sheriff bool
		want    []types.Phase
	}{
		{"without sheriff", false, []types.Phase{
			types.PhaseNight, types.PhaseDayDiscussion, types.PhaseDayVoting,
			types.PhaseNight, types.PhaseDayDiscussion,
		}},
		{"with sheriff", true, []types.Phase{
			types.PhaseNight, types.PhaseSheriffElection, types.PhaseDayDiscussion, types.PhaseDayVoting,
			types.PhaseNight, types.PhaseDayDiscussion,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := state.DefaultConfig()
			cfg.EnableSheriff = tt.sheriff
			// Without agents or fallback nobody acts, so nobody dies.
			e := New(cfg, WithRNG(NewRNG(1)), WithoutFallback())
			kinds := []types.RoleKind{types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleVillager}
			if err := e.Setup(seats(4), kinds); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []types.Phase
			for range tt.want {
				res, err := e.Step(context.Background())
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = append(got, res.Phase)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("phases mismatch (-want +got):\n%s", diff)
			}
			if r := e.Game().Round; r != 2 {
				t.Errorf("expected round 2, got %d", r)
			}
		})
	}
}

func TestStep_ResultCarriesPhaseEvents(t *testing.T) {
	e := newEngine(t, 9, seats(8), classic(), WithoutFallback())
	before := len(e.Events())
	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Events) != len(e.Events())-before {
		t.Errorf("expected %d events, got %d", len(e.Events())-before, len(res.Events))
	}
	if res.Events[0].Type != types.EventRoundStarted || res.Events[1].Type != types.EventPhaseChanged {
		t.Errorf("expected round_started then phase_changed, got %s, %s", res.Events[0].Type, res.Events[1].Type)
	}
}

func TestStep_CancelledContext(t *testing.T) {
	e := newEngine(t, 1, seats(8), classic())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Step(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if e.Game().Phase != types.PhaseSetup {
		t.Errorf("expected no transition, got %s", e.Game().Phase)
	}
}

func TestWerewolvesWinByParity(t *testing.T) {
	specs := make([]PlayerSpec, 3)
	for i := range specs {
		specs[i] = PlayerSpec{Name: names[i], Agent: agent.NewScripted(names[i], "1", "1", "1")}
	}
	e := newEngine(t, 11, specs, []types.RoleKind{types.RoleWerewolf, types.RoleVillager, types.RoleVillager})

	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Phase != types.PhaseEnded {
		t.Fatalf("expected game over after the first night, got %s", res.Phase)
	}
	v := e.Victory()
	if !v.HasWinner || v.WinnerCamp != types.CampWerewolf {
		t.Errorf("expected werewolf win, got %+v", v)
	}
	last := e.Events()[len(e.Events())-1]
	if last.Type != types.EventGameEnded {
		t.Errorf("expected game_ended last, got %s", last.Type)
	}
	if _, err := e.Step(context.Background()); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver, got %v", err)
	}
}

func TestStep_WinningSeatingEndsBeforeNight(t *testing.T) {
	e := newEngine(t, 5, seats(4), []types.RoleKind{
		types.RoleWerewolf, types.RoleWerewolf, types.RoleVillager, types.RoleVillager,
	})

	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Phase != types.PhaseEnded {
		t.Fatalf("expected the game to end at once, got %s", res.Phase)
	}
	if res.Round != 0 {
		t.Errorf("expected no night to be played, got round %d", res.Round)
	}
	if v := e.Victory(); v.WinnerCamp != types.CampWerewolf {
		t.Errorf("expected werewolf win, got %+v", v)
	}
	for _, ev := range res.Events {
		if ev.Type == types.EventPhaseChanged || ev.Type == types.EventPlayerDied {
			t.Errorf("unexpected %s before the first night", ev.Type)
		}
	}
	if len(res.Events) == 0 || res.Events[len(res.Events)-1].Type != types.EventGameEnded {
		t.Errorf("expected game_ended, got %v", trace(res.Events))
	}
}

func TestVillageVotesOutTheWolf(t *testing.T) {
	kinds := []types.RoleKind{types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleVillager}
	specs := seats(4)
	e := newEngine(t, 21, specs, kinds)
	wolf := wolfID(t, e)
	for _, p := range e.Game().Players {
		e.BindAgent(p.ID, &agent.Func{
			AgentName:  p.Name,
			AgentModel: "test",
			Respond:    func(prompt string) (string, error) { return optionFor(prompt, wolf), nil },
		})
	}

	v, err := e.PlayToCompletion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.WinnerCamp != types.CampVillager {
		t.Errorf("expected village win, got %+v", v)
	}
	if cause := e.Game().DeathCauses[wolf]; cause != types.CauseVote {
		t.Errorf("expected the wolf voted out, got %q", cause)
	}
	if e.Game().Round != 1 {
		t.Errorf("expected the game to end on day 1, got round %d", e.Game().Round)
	}
}

func TestPlayToCompletion_RoundLimit(t *testing.T) {
	kinds := []types.RoleKind{types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleVillager}
	e := newEngine(t, 1, seats(4), kinds, WithoutFallback(), WithMaxRounds(2))
	_, err := e.PlayToCompletion(context.Background())
	if !errors.Is(err, ErrRoundLimit) {
		t.Fatalf("expected ErrRoundLimit, got %v", err)
	}
	if e.Game().Round != 2 {
		t.Errorf("expected to stop after round 2, got %d", e.Game().Round)
	}
}

func TestPlayToCompletion_Deterministic(t *testing.T) {
	a := newEngine(t, 1234, seats(8), classic())
	va, err := a.PlayToCompletion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := newEngine(t, 1234, seats(8), classic())
	vb, err := b.PlayToCompletion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(va, vb); diff != "" {
		t.Errorf("victory mismatch (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(trace(a.Events()), trace(b.Events())); diff != "" {
		t.Errorf("event trace mismatch (-a +b):\n%s", diff)
	}
}

func TestSaveLoad_ContinuesIdentically(t *testing.T) {
	full := newEngine(t, 77, seats(8), classic())
	want, err := full.PlayToCompletion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	part := newEngine(t, 77, seats(8), classic())
	for i := 0; i < 3 && part.Game().Phase != types.PhaseEnded; i++ {
		if _, err := part.Step(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	snap, err := part.Save()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := save.Marshal(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := save.Unmarshal(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resumed := New(state.Config{})
	if err := resumed.Load(loaded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := resumed.PlayToCompletion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("victory mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(trace(full.Events()), trace(resumed.Events())); diff != "" {
		t.Errorf("event trace mismatch (-want +got):\n%s", diff)
	}
	if resumed.Config().NightTimeout != state.DefaultConfig().NightTimeout {
		t.Error("expected the saved config to replace the engine's")
	}
}

func TestLoad_RebindsAgents(t *testing.T) {
	specs := seats(4)
	bot := agent.NewScripted("Alice")
	specs[0].Agent = bot
	e := newEngine(t, 2, specs, []types.RoleKind{types.RoleWerewolf, types.RoleVillager, types.RoleVillager, types.RoleVillager})

	snap, err := e.Save()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Load(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Game().Player("player_1").Agent != bot {
		t.Error("expected player_1 bound to the same agent")
	}
	if e.Game().Player("player_2").Agent != nil {
		t.Error("expected player_2 without agent")
	}
}

func TestOnEvent_SurvivesLoad(t *testing.T) {
	e := newEngine(t, 4, seats(8), classic(), WithoutFallback())
	var seen []types.EventType
	e.OnEvent(func(ev types.Event) { seen = append(seen, ev.Type) })

	snap, err := e.Save()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Load(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 0 {
		t.Errorf("expected restored events not replayed, got %v", seen)
	}
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) == 0 || seen[0] != types.EventRoundStarted {
		t.Errorf("expected handler to see round_started first, got %v", seen)
	}
}

func TestTimeout(t *testing.T) {
	cfg := state.DefaultConfig()
	e := New(cfg)
	tests := []struct {
		phase types.Phase
		want  int
	}{
		{types.PhaseNight, cfg.NightTimeout},
		{types.PhaseDayDiscussion, cfg.DayTimeout},
		{types.PhaseSheriffElection, cfg.DayTimeout},
		{types.PhaseDayVoting, cfg.VoteTimeout},
		{types.PhaseEnded, 0},
	}
	for _, tt := range tests {
		if got := e.Timeout(tt.phase); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.phase, tt.want, got)
		}
	}
}
