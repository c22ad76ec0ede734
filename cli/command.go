package cli

import "strings"

// Command is a parsed line of user input.
type Command struct {
	Verb string
	Arg  string
}

// Verbs understood by the front ends.
const (
	VerbStep    = "step"
	VerbAuto    = "auto"
	VerbQuit    = "quit"
	VerbSave    = "save"
	VerbLoad    = "load"
	VerbHelp    = "help"
	VerbState   = "state"
	VerbEvents  = "events"
	VerbReveal  = "reveal"
	VerbTrace   = "trace"
	VerbUnknown = "unknown"
)

// bareAliases are accepted without the leading slash.
var bareAliases = map[string]string{
	"n":    VerbStep,
	"next": VerbStep,
	"step": VerbStep,
	"a":    VerbAuto,
	"auto": VerbAuto,
}

// metaAliases map slash commands (without the slash) to verbs.
var metaAliases = map[string]string{
	"quit":    VerbQuit,
	"exit":    VerbQuit,
	"q":       VerbQuit,
	"save":    VerbSave,
	"s":       VerbSave,
	"load":    VerbLoad,
	"l":       VerbLoad,
	"restore": VerbLoad,
	"help":    VerbHelp,
	"h":       VerbHelp,
	"?":       VerbHelp,
	"state":   VerbState,
	"who":     VerbState,
	"roster":  VerbState,
	"events":  VerbEvents,
	"log":     VerbEvents,
	"auto":    VerbAuto,
	"next":    VerbStep,
	"reveal":  VerbReveal,
	"trace":   VerbTrace,
}

// fillers are dropped between a verb and its argument ("/save as slot").
var fillers = map[string]bool{
	"as": true, "to": true, "from": true,
}

// Parse converts a raw input line into a Command. An empty line steps. The
// verb is matched case-insensitively; the argument keeps its case.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{Verb: VerbStep}
	}

	words := strings.Fields(input)
	head := strings.ToLower(words[0])

	var verb string
	if name, ok := strings.CutPrefix(head, "/"); ok {
		verb = metaAliases[name]
	} else if len(words) == 1 {
		verb = bareAliases[head]
	}
	if verb == "" {
		return Command{Verb: VerbUnknown, Arg: input}
	}

	rest := make([]string, 0, len(words)-1)
	for _, w := range words[1:] {
		if !fillers[strings.ToLower(w)] {
			rest = append(rest, w)
		}
	}
	return Command{Verb: verb, Arg: strings.Join(rest, " ")}
}
