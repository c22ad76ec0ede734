// Package engine provides the phase orchestrator that wires the night,
// death, sheriff, discussion and voting resolvers into a single game loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine/events"
	"github.com/nathoo/wolfcore/engine/resolve"
	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/save"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/engine/victory"
	"github.com/nathoo/wolfcore/types"
)

var (
	// ErrNotSetup is returned when the game is stepped before Setup or Load.
	ErrNotSetup = errors.New("game not set up")
	// ErrGameOver is returned when the game is stepped after it ended.
	ErrGameOver = errors.New("game is over")
	// ErrRoundLimit is returned by PlayToCompletion when MaxRounds pass
	// without a winner.
	ErrRoundLimit = errors.New("round limit reached")
)

// DefaultMaxRounds bounds PlayToCompletion.
const DefaultMaxRounds = 100

// PlayerSpec is one seat requested at setup.
type PlayerSpec struct {
	Name  string
	Agent agent.Agent
}

// Engine holds the configuration, the game and everything that acts on it.
type Engine struct {
	cfg        state.Config
	game       *state.Game
	log        *events.Log
	rng        *RNG
	ask        *agent.Selector
	logger     zerolog.Logger
	maxRounds  int
	noFallback bool
	agents     map[string]agent.Agent
	handlers   []events.Handler

	night      *resolve.Night
	sheriff    *resolve.Sheriff
	discussion *resolve.Discussion
	voting     *resolve.Voting
}

// Option configures an Engine.
type Option func(*Engine)

// WithRNG injects the random source. The default is seeded from NewSeed.
func WithRNG(r *RNG) Option {
	return func(e *Engine) { e.rng = r }
}

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxRounds bounds PlayToCompletion.
func WithMaxRounds(n int) Option {
	return func(e *Engine) { e.maxRounds = n }
}

// WithoutFallback stops the selector from replacing unusable answers with
// random choices.
func WithoutFallback() Option {
	return func(e *Engine) { e.noFallback = true }
}

// New creates an engine for cfg. Call Setup or Load before stepping.
func New(cfg state.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		logger:    zerolog.Nop(),
		maxRounds: DefaultMaxRounds,
		agents:    map[string]agent.Agent{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewRNG(NewSeed())
	}
	return e
}

// Setup seats the players, shuffles the roles between them and opens the
// event log. Player IDs are player_1..player_N in the given order.
func (e *Engine) Setup(players []PlayerSpec, kinds []types.RoleKind) error {
	if len(players) != len(kinds) {
		return fmt.Errorf("setup: %d players but %d roles", len(players), len(kinds))
	}
	seen := map[string]bool{}
	for i, p := range players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("setup: player %d has no name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("setup: duplicate player name %q", name)
		}
		seen[name] = true
	}
	wolves := 0
	for _, k := range kinds {
		if _, err := roles.New(k); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		if roles.CampOf(k) == types.CampWerewolf {
			wolves++
		}
	}
	if wolves == 0 {
		return errors.New("setup: at least one werewolf is required")
	}
	cards, err := e.thiefCards()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	dealt := append([]types.RoleKind(nil), kinds...)
	e.rng.Shuffle(len(dealt), func(i, j int) { dealt[i], dealt[j] = dealt[j], dealt[i] })

	seats := make([]*state.Player, len(players))
	e.agents = map[string]agent.Agent{}
	for i, spec := range players {
		var r state.Role
		if dealt[i] == types.RoleThief {
			r = roles.NewThief(cards)
		} else {
			r, _ = roles.New(dealt[i])
		}
		id := fmt.Sprintf("player_%d", i+1)
		seats[i] = state.NewPlayer(id, strings.TrimSpace(spec.Name), r, spec.Agent)
		if spec.Agent != nil {
			e.agents[id] = spec.Agent
		}
	}

	e.bind(state.NewGame(seats), nil)
	e.log.Emit(types.EventGameStarted,
		fmt.Sprintf("A game of %d players begins.", len(seats)),
		map[string]any{"players": len(seats), "seed": e.rng.Seed()})
	for _, p := range seats {
		e.log.Emit(types.EventRoleRevealed,
			fmt.Sprintf("%s, you are the %s.", p.Name, roles.Name(p)),
			map[string]any{"player_id": p.ID, "player": p.Name, "role": string(p.Role.Kind())},
			p.ID)
	}
	e.logger.Info().Str("game", e.game.ID).Int("players", len(seats)).Int64("seed", e.rng.Seed()).Msg("game set up")
	return nil
}

func (e *Engine) thiefCards() ([]types.RoleKind, error) {
	cards := make([]types.RoleKind, 0, len(e.cfg.ThiefCards))
	for _, name := range e.cfg.ThiefCards {
		k, err := roles.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("thief card: %w", err)
		}
		if k == types.RoleThief {
			return nil, errors.New("thief card: a Thief cannot steal a Thief")
		}
		cards = append(cards, k)
	}
	return cards, nil
}

// bind attaches g to the engine: a fresh log (restored from evs when
// loading), a selector and the resolvers.
func (e *Engine) bind(g *state.Game, evs []types.Event) {
	e.game = g
	e.log = events.NewLog(func() (int, types.Phase) { return g.Round, g.Phase })
	if evs != nil {
		e.log.Restore(evs)
	}
	for _, h := range e.handlers {
		e.log.Subscribe(h)
	}

	e.ask = agent.NewSelector(e.rng, e.logger)
	e.ask.Fallback = !e.noFallback

	t := &resolve.Table{
		Game:   g,
		Log:    e.log,
		Ask:    e.ask,
		Rand:   e.rng,
		Config: e.cfg,
		Logger: e.logger,
	}
	death := &resolve.Death{Table: t}
	e.night = &resolve.Night{Table: t, Death: death}
	e.sheriff = &resolve.Sheriff{Table: t}
	e.discussion = &resolve.Discussion{Table: t, Death: death}
	e.voting = &resolve.Voting{Table: t, Death: death}
}

// next returns the phase that follows the current one.
func (e *Engine) next() types.Phase {
	g := e.game
	switch g.Phase {
	case types.PhaseNight:
		if g.Round == 1 && e.cfg.EnableSheriff && !g.SheriffElectionDone {
			return types.PhaseSheriffElection
		}
		return types.PhaseDayDiscussion
	case types.PhaseSheriffElection:
		return types.PhaseDayDiscussion
	case types.PhaseDayDiscussion:
		return types.PhaseDayVoting
	}
	return types.PhaseNight
}

// Step enters the next phase, resolves it and checks for a winner.
func (e *Engine) Step(ctx context.Context) (types.Result, error) {
	if e.game == nil {
		return types.Result{}, ErrNotSetup
	}
	if e.game.Phase == types.PhaseEnded {
		return types.Result{}, ErrGameOver
	}
	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}

	g := e.game
	mark := e.log.Len()

	// A seating that already meets a win condition never reaches the night.
	if g.Phase == types.PhaseSetup {
		if v := victory.Evaluate(g); v.HasWinner {
			out := e.end(v)
			return types.Result{Phase: g.Phase, Round: g.Round, Events: e.log.Since(mark), Output: out}, nil
		}
	}

	phase := e.next()
	from := g.Phase
	g.SetPhase(phase)
	e.logger.Debug().Str("from", string(from)).Str("to", string(phase)).Int("round", g.Round).Msg("phase transition")

	if phase == types.PhaseNight {
		e.log.Emit(types.EventRoundStarted, fmt.Sprintf("Round %d begins.", g.Round), map[string]any{"round": g.Round})
	}
	e.log.Emit(types.EventPhaseChanged, phaseMessage(phase, g.Round), map[string]any{"phase": string(phase), "round": g.Round})

	var out []string
	switch phase {
	case types.PhaseNight:
		out = e.night.Run(ctx)
	case types.PhaseSheriffElection:
		out = e.sheriff.Run(ctx)
	case types.PhaseDayDiscussion:
		out = e.discussion.Run(ctx)
	case types.PhaseDayVoting:
		out = e.voting.Run(ctx)
	}

	if v := victory.Evaluate(g); v.HasWinner {
		out = append(out, e.end(v)...)
	}

	return types.Result{
		Phase:  g.Phase,
		Round:  g.Round,
		Events: e.log.Since(mark),
		Output: out,
	}, nil
}

// end records the winner and closes the game.
func (e *Engine) end(v types.Victory) []string {
	g := e.game
	g.Winner = v
	g.SetPhase(types.PhaseEnded)
	msg := fmt.Sprintf("The game is over: the %s camp wins. %s", v.WinnerCamp, v.Reason)
	e.log.Emit(types.EventGameEnded, msg, map[string]any{
		"camp":    string(v.WinnerCamp),
		"winners": v.WinnerIDs,
		"reason":  v.Reason,
	})
	e.logger.Info().Str("game", g.ID).Str("winner", string(v.WinnerCamp)).Int("round", g.Round).Msg("game ended")
	return []string{msg}
}

func phaseMessage(phase types.Phase, round int) string {
	switch phase {
	case types.PhaseNight:
		return fmt.Sprintf("Night %d falls. Everyone closes their eyes.", round)
	case types.PhaseSheriffElection:
		return "The village elects a sheriff."
	case types.PhaseDayDiscussion:
		return fmt.Sprintf("Day %d dawns.", round)
	case types.PhaseDayVoting:
		return "The village votes."
	}
	return string(phase)
}

// PlayToCompletion steps until a camp wins. It stops with ErrRoundLimit
// before a night past MaxRounds would start.
func (e *Engine) PlayToCompletion(ctx context.Context) (types.Victory, error) {
	if e.game == nil {
		return types.Victory{}, ErrNotSetup
	}
	for e.game.Phase != types.PhaseEnded {
		if e.next() == types.PhaseNight && e.game.Round >= e.maxRounds {
			return types.Victory{}, fmt.Errorf("%w: %d rounds", ErrRoundLimit, e.maxRounds)
		}
		if _, err := e.Step(ctx); err != nil {
			return types.Victory{}, err
		}
	}
	return e.game.Winner, nil
}

// Events returns the full event log.
func (e *Engine) Events() []types.Event {
	if e.log == nil {
		return nil
	}
	return e.log.All()
}

// VisibleEvents returns the events playerID is allowed to see.
func (e *Engine) VisibleEvents(playerID string) []types.Event {
	if e.log == nil {
		return nil
	}
	return e.log.VisibleTo(playerID)
}

// OnEvent registers fn for every event emitted from now on. Handlers
// survive Load.
func (e *Engine) OnEvent(fn events.Handler) {
	e.handlers = append(e.handlers, fn)
	if e.log != nil {
		e.log.Subscribe(fn)
	}
}

// Victory returns the outcome. HasWinner is false while the game runs.
func (e *Engine) Victory() types.Victory {
	if e.game == nil {
		return types.Victory{}
	}
	return e.game.Winner
}

// Game exposes the state for presentation. Callers must not mutate it.
func (e *Engine) Game() *state.Game { return e.game }

// Config returns the configuration the engine runs with.
func (e *Engine) Config() state.Config { return e.cfg }

// RNG returns the engine's random source.
func (e *Engine) RNG() *RNG { return e.rng }

// Timeout returns the advisory timeout for phase, in seconds.
func (e *Engine) Timeout(phase types.Phase) int { return e.cfg.Timeout(phase) }

// BindAgent attaches a to the player with id, now and after later loads.
func (e *Engine) BindAgent(id string, a agent.Agent) {
	e.agents[id] = a
	if e.game == nil {
		return
	}
	if p := e.game.Player(id); p != nil {
		p.Agent = a
	}
}

// Save captures the whole game, including the log and RNG position.
func (e *Engine) Save() (*save.Snapshot, error) {
	if e.game == nil {
		return nil, ErrNotSetup
	}
	return save.Capture(e.game, e.cfg, e.log.All(), e.rng.Seed(), e.rng.Position()), nil
}

// Load replaces the current game with s. Agents known to the engine are
// bound again by player ID.
func (e *Engine) Load(s *save.Snapshot) error {
	g, err := s.Restore()
	if err != nil {
		return fmt.Errorf("loading save: %w", err)
	}
	for _, p := range g.Players {
		p.Agent = e.agents[p.ID]
	}
	e.cfg = s.Config
	e.rng = RestoreRNG(s.RNGSeed, s.RNGPosition)
	e.bind(g, append([]types.Event{}, s.Events...))
	e.logger.Info().Str("game", g.ID).Int("round", g.Round).Str("phase", string(g.Phase)).Msg("game loaded")
	return nil
}
