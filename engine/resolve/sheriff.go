package resolve

import (
	"context"
	"fmt"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Sheriff runs the one-time sheriff election.
type Sheriff struct {
	*Table
}

// Run polls for candidates, collects speeches and votes, and elects the
// single leader. A tie elects nobody.
func (s *Sheriff) Run(ctx context.Context) []string {
	g := s.Game
	defer func() { g.SheriffElectionDone = true }()

	msg := "The sheriff election begins."
	s.emit(types.EventSheriffCampaignStarted, msg, nil)
	out := []string{msg}

	// Seats without an agent take no part in the election, as in day voting.
	var candidates, voters []*state.Player
	for _, p := range g.Alive() {
		if p.Agent == nil {
			continue
		}
		if s.Ask.YesNo(ctx, p.Agent, s.request(p, "Do you want to run for sheriff?", nil, false)) {
			candidates = append(candidates, p)
			line := fmt.Sprintf("%s runs for sheriff.", p.Name)
			s.emit(types.EventSheriffCandidate, line, playerData(p))
			out = append(out, line)
		} else {
			voters = append(voters, p)
		}
	}

	switch len(candidates) {
	case 0:
		line := "Nobody ran for sheriff."
		s.emit(types.EventSheriffNone, line, nil)
		return append(out, line)
	case 1:
		return append(out, s.elect(candidates[0], 0))
	}

	for _, c := range candidates {
		speech := s.Ask.Speech(ctx, c.Agent, roles.Situation(g, c),
			"Give a short campaign speech explaining why you should be sheriff.")
		if speech == "" {
			continue
		}
		line := fmt.Sprintf("%s (candidate): %s", c.Name, speech)
		data := playerData(c)
		data["speech"] = speech
		s.emit(types.EventSheriffSpeech, line, data)
		g.Discussion = append(g.Discussion, line)
		out = append(out, line)
	}

	counts := map[string]int{}
	for _, v := range voters {
		idx, ok := s.Ask.Target(ctx, v.Agent, s.request(v, "Vote for a sheriff", candidates, true))
		if !ok {
			line := fmt.Sprintf("%s abstains.", v.Name)
			s.emit(types.EventSheriffVoteAbstained, line, playerData(v))
			out = append(out, line)
			continue
		}
		c := candidates[idx]
		counts[c.ID]++
		line := fmt.Sprintf("%s votes for %s.", v.Name, c.Name)
		s.emit(types.EventSheriffVoteCast, line, targetData(v, c))
		out = append(out, line)
	}

	leaders, top := state.Leaders(counts)
	switch len(leaders) {
	case 0:
		line := "No votes were cast. There is no sheriff."
		s.emit(types.EventSheriffNone, line, nil)
		return append(out, line)
	case 1:
		return append(out, s.elect(g.Player(leaders[0]), top))
	}
	line := fmt.Sprintf("The sheriff vote is tied between %d candidates. There is no sheriff.", len(leaders))
	s.emit(types.EventSheriffTie, line, map[string]any{"candidates": leaders, "votes": top})
	return append(out, line)
}

func (s *Sheriff) elect(p *state.Player, votes int) string {
	s.Game.SetSheriff(p.ID)
	msg := fmt.Sprintf("%s is elected sheriff.", p.Name)
	data := playerData(p)
	data["votes"] = votes
	s.emit(types.EventSheriffElected, msg, data)
	return msg
}
