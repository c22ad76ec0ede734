package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrExhausted is returned by Scripted once every response has been used.
var ErrExhausted = errors.New("scripted responses exhausted")

// Scripted replays a fixed list of responses in order.
type Scripted struct {
	name      string
	responses []string
	next      int
	Prompts   []string // every prompt received, in order
}

// NewScripted returns an agent that answers with responses, one per call.
func NewScripted(name string, responses ...string) *Scripted {
	return &Scripted{name: name, responses: responses}
}

func (s *Scripted) Name() string  { return s.name }
func (s *Scripted) Model() string { return "scripted" }

func (s *Scripted) GetResponse(_ context.Context, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.next >= len(s.responses) {
		return "", ErrExhausted
	}
	r := s.responses[s.next]
	s.next++
	return r, nil
}

// Console asks a human at a terminal. In and Out are usually os.Stdin and
// os.Stdout; the reader may be shared with a command loop.
type Console struct {
	name string
	In   *bufio.Reader
	Out  io.Writer
}

// NewConsole returns a human agent reading answers from in.
func NewConsole(name string, in *bufio.Reader, out io.Writer) *Console {
	return &Console{name: name, In: in, Out: out}
}

func (c *Console) Name() string  { return c.name }
func (c *Console) Model() string { return "human" }

func (c *Console) GetResponse(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(c.Out, "\n--- %s ---\n%s\nYour response: ", c.name, prompt)
	line, err := c.In.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading response for %s: %w", c.name, err)
	}
	return strings.TrimSpace(line), nil
}
