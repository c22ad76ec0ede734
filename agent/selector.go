package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnparseable is returned by the parsers when a response carries no
// usable answer.
var ErrUnparseable = errors.New("unparseable response")

var numberPattern = regexp.MustCompile(`\d+`)

// Option is one selectable entry in a numbered prompt.
type Option struct {
	ID    string
	Label string
}

// Request describes a question put to an agent.
type Request struct {
	Role      string // role name shown to the agent
	Action    string // what the choice is for
	Context   string // free-form situation summary
	Round     int
	Phase     string
	Options   []Option
	AllowSkip bool
}

// Selector asks agents structured questions and parses their answers.
// Failures never propagate: an unusable answer becomes a random valid
// choice (when Fallback is set), a skip, or "no".
type Selector struct {
	Rand     Rand
	Fallback bool
	Log      zerolog.Logger
}

// NewSelector returns a selector with random fallback enabled.
func NewSelector(r Rand, log zerolog.Logger) *Selector {
	return &Selector{Rand: r, Fallback: true, Log: log}
}

// Target asks the agent to pick one option. It returns the chosen index, or
// ok=false when the agent skipped or no choice could be made.
func (s *Selector) Target(ctx context.Context, a Agent, req Request) (int, bool) {
	if len(req.Options) == 0 {
		return 0, false
	}
	if a == nil {
		return s.fallback(req, "no agent")
	}

	resp, err := a.GetResponse(ctx, BuildTargetPrompt(req))
	if err != nil {
		s.Log.Warn().Err(err).Str("agent", a.Name()).Str("action", req.Action).Msg("agent call failed")
		return s.fallback(req, "agent error")
	}

	idx, skip, err := ParseTarget(resp, len(req.Options), req.AllowSkip)
	switch {
	case err == nil && skip:
		return 0, false
	case err == nil:
		return idx, true
	case req.AllowSkip:
		return 0, false
	default:
		s.Log.Debug().Str("agent", a.Name()).Str("response", resp).Msg("unparseable target selection")
		return s.fallback(req, "unparseable")
	}
}

func (s *Selector) fallback(req Request, why string) (int, bool) {
	if !s.Fallback || s.Rand == nil {
		return 0, false
	}
	idx := s.Rand.Intn(len(req.Options))
	s.Log.Debug().Str("action", req.Action).Str("reason", why).Int("choice", idx+1).Msg("random fallback")
	return idx, true
}

// Targets asks the agent to pick n distinct options. A failed answer falls
// back to n random distinct options.
func (s *Selector) Targets(ctx context.Context, a Agent, req Request, n int) ([]int, bool) {
	if n <= 0 || len(req.Options) < n {
		return nil, false
	}
	if a != nil {
		resp, err := a.GetResponse(ctx, BuildMultiTargetPrompt(req, n))
		if err == nil {
			if picks, perr := ParseTargets(resp, len(req.Options), n); perr == nil {
				return picks, true
			}
		} else {
			s.Log.Warn().Err(err).Str("agent", a.Name()).Str("action", req.Action).Msg("agent call failed")
		}
	}
	if !s.Fallback || s.Rand == nil {
		return nil, false
	}

	pool := make([]int, len(req.Options))
	for i := range pool {
		pool[i] = i
	}
	picks := make([]int, 0, n)
	for len(picks) < n {
		j := s.Rand.Intn(len(pool))
		picks = append(picks, pool[j])
		pool = append(pool[:j], pool[j+1:]...)
	}
	return picks, true
}

// YesNo asks a yes/no question. Errors count as "no".
func (s *Selector) YesNo(ctx context.Context, a Agent, req Request) bool {
	if a == nil {
		return false
	}
	resp, err := a.GetResponse(ctx, BuildYesNoPrompt(req))
	if err != nil {
		s.Log.Warn().Err(err).Str("agent", a.Name()).Str("action", req.Action).Msg("agent call failed")
		return false
	}
	return ParseYesNo(resp)
}

// Speech asks for free text. Errors yield an empty speech.
func (s *Selector) Speech(ctx context.Context, a Agent, situation, prompt string) string {
	if a == nil {
		return ""
	}
	full := prompt
	if situation != "" {
		full = situation + "\n\n" + prompt
	}
	resp, err := a.GetResponse(ctx, full)
	if err != nil {
		s.Log.Warn().Err(err).Str("agent", a.Name()).Msg("agent speech failed")
		return ""
	}
	return strings.TrimSpace(resp)
}

func header(req Request) []string {
	role := req.Role
	if role == "" {
		role = "Player"
	}
	parts := []string{fmt.Sprintf("You are a %s.", role)}
	switch {
	case req.Round > 0 && req.Phase != "":
		parts = append(parts, fmt.Sprintf("Current: Round %d - %s", req.Round, req.Phase))
	case req.Round > 0:
		parts = append(parts, fmt.Sprintf("Current Round: %d", req.Round))
	}
	return parts
}

// BuildTargetPrompt renders a numbered single-choice prompt.
func BuildTargetPrompt(req Request) string {
	parts := header(req)
	parts = append(parts, "Action: "+req.Action, "")
	if req.Context != "" {
		parts = append(parts, req.Context, "")
	}
	parts = append(parts, "Available targets:")
	for i, o := range req.Options {
		parts = append(parts, fmt.Sprintf("%d. %s (Player ID: %s)", i+1, o.Label, o.ID))
	}
	if req.AllowSkip {
		parts = append(parts, fmt.Sprintf("%d. SKIP (do not perform this action)", len(req.Options)+1))
	}
	parts = append(parts, "",
		"Please select a target by responding with ONLY the number (1, 2, 3, etc.).",
		"Do not include any other text in your response.")
	return strings.Join(parts, "\n")
}

// ParseTarget extracts the first integer from resp. It returns the zero-based
// index, or skip=true when resp selected the extra SKIP entry.
func ParseTarget(resp string, n int, allowSkip bool) (idx int, skip bool, err error) {
	m := numberPattern.FindString(resp)
	if m == "" {
		return 0, false, ErrUnparseable
	}
	sel, err := strconv.Atoi(m)
	if err != nil {
		return 0, false, ErrUnparseable
	}
	switch {
	case sel >= 1 && sel <= n:
		return sel - 1, false, nil
	case allowSkip && sel == n+1:
		return 0, true, nil
	}
	return 0, false, ErrUnparseable
}

// BuildMultiTargetPrompt renders a prompt asking for n distinct numbers.
func BuildMultiTargetPrompt(req Request, n int) string {
	parts := header(req)
	parts = append(parts, "Action: "+req.Action,
		fmt.Sprintf("You need to select %d different targets.", n), "")
	if req.Context != "" {
		parts = append(parts, req.Context, "")
	}
	parts = append(parts, "Available targets:")
	for i, o := range req.Options {
		parts = append(parts, fmt.Sprintf("%d. %s (Player ID: %s)", i+1, o.Label, o.ID))
	}
	parts = append(parts, "",
		fmt.Sprintf("Please select %d targets by responding with the numbers separated by commas.", n),
		"Example: 1, 3 (to select the 1st and 3rd targets)",
		"Do not include any other text in your response.")
	return strings.Join(parts, "\n")
}

// ParseTargets extracts exactly n distinct in-range selections.
func ParseTargets(resp string, total, n int) ([]int, error) {
	nums := numberPattern.FindAllString(resp, -1)
	if len(nums) != n {
		return nil, ErrUnparseable
	}
	seen := make(map[int]bool, n)
	picks := make([]int, 0, n)
	for _, s := range nums {
		sel, err := strconv.Atoi(s)
		if err != nil || sel < 1 || sel > total || seen[sel] {
			return nil, ErrUnparseable
		}
		seen[sel] = true
		picks = append(picks, sel-1)
	}
	return picks, nil
}

// BuildYesNoPrompt renders a yes/no question.
func BuildYesNoPrompt(req Request) string {
	parts := header(req)
	parts = append(parts, "Question: "+req.Action)
	if req.Context != "" {
		parts = append(parts, "", req.Context)
	}
	parts = append(parts, "",
		"Please respond with ONLY 'YES' or 'NO'.",
		"Do not include any other text in your response.")
	return strings.Join(parts, "\n")
}

// ParseYesNo reports whether resp is an affirmative answer.
func ParseYesNo(resp string) bool {
	lower := strings.ToLower(strings.TrimSpace(resp))
	return strings.Contains(lower, "yes") || strings.Contains(lower, "是")
}
