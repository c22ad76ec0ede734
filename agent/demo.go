package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	optionLine  = regexp.MustCompile(`(?m)^(\d+)\. `)
	multiSelect = regexp.MustCompile(`select (\d+) targets`)
)

var demoSpeeches = []string{
	"I agree.",
	"I'm not sure about that.",
	"Let me think about it.",
	"That's interesting.",
	"I have my suspicions.",
}

// Demo answers every prompt shape with a random valid response. It is meant
// for demonstrations and smoke tests.
type Demo struct {
	name string
	rand Rand
}

// NewDemo returns a demo agent drawing from r.
func NewDemo(name string, r Rand) *Demo {
	return &Demo{name: name, rand: r}
}

func (d *Demo) Name() string  { return d.name }
func (d *Demo) Model() string { return "demo" }

func (d *Demo) GetResponse(_ context.Context, prompt string) (string, error) {
	if IsYesNo(prompt) {
		if d.rand.Intn(2) == 0 {
			return "YES", nil
		}
		return "NO", nil
	}

	n := OptionCount(prompt)
	if m := multiSelect.FindStringSubmatch(prompt); m != nil && n > 0 {
		want, _ := strconv.Atoi(m[1])
		if want > n {
			want = n
		}
		pool := make([]int, n)
		for i := range pool {
			pool[i] = i + 1
		}
		picks := make([]string, 0, want)
		for len(picks) < want {
			j := d.rand.Intn(len(pool))
			picks = append(picks, strconv.Itoa(pool[j]))
			pool = append(pool[:j], pool[j+1:]...)
		}
		return strings.Join(picks, ", "), nil
	}
	if n > 0 {
		return fmt.Sprint(d.rand.Intn(n) + 1), nil
	}

	return demoSpeeches[d.rand.Intn(len(demoSpeeches))], nil
}

// IsYesNo reports whether prompt was built by BuildYesNoPrompt.
func IsYesNo(prompt string) bool {
	return strings.Contains(prompt, "respond with ONLY 'YES' or 'NO'")
}

// OptionCount returns the number of selectable numbered options in prompt,
// not counting a trailing SKIP entry.
func OptionCount(prompt string) int {
	n := 0
	for _, line := range strings.Split(prompt, "\n") {
		if !optionLine.MatchString(line) || strings.Contains(line, "SKIP") {
			continue
		}
		n++
	}
	return n
}
