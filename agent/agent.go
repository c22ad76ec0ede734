// Package agent defines the contract between the engine and whatever makes
// player decisions, plus the prompt builders and response parsers the engine
// uses to talk to it.
package agent

import "context"

// Agent produces a free-text response for a prompt. Implementations may be a
// human at a terminal, a script, or a remote model.
type Agent interface {
	Name() string
	Model() string
	GetResponse(ctx context.Context, prompt string) (string, error)
}

// Rand is the randomness source used for fallback choices.
type Rand interface {
	Intn(n int) int
}

// Func adapts a plain function to the Agent interface.
type Func struct {
	AgentName  string
	AgentModel string
	Respond    func(prompt string) (string, error)
}

func (f *Func) Name() string  { return f.AgentName }
func (f *Func) Model() string { return f.AgentModel }

func (f *Func) GetResponse(_ context.Context, prompt string) (string, error) {
	return f.Respond(prompt)
}
