// Package locale renders engine events as localized text. Catalogs are YAML
// files embedded under locales/, one per language, and are loaded into a
// golang.org/x/text catalog with English as the fallback.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/wolfcore/types"
)

//go:embed locales/*.yaml
var files embed.FS

// Default is the language used when nothing else matches.
const Default = "en"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

type bundle struct {
	builder *catalog.Builder
	tags    []language.Tag
	names   []string
	keys    map[string]map[string]bool // locale -> keys
	matcher language.Matcher
}

var (
	loadOnce sync.Once
	loaded   *bundle
	loadErr  error
)

func load() (*bundle, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(files)
	})
	return loaded, loadErr
}

func parse(fsys fs.FS) (*bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	b := &bundle{
		builder: catalog.NewBuilder(catalog.Fallback(language.English)),
		keys:    map[string]map[string]bool{},
	}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		tag, err := language.Parse(f.Locale)
		if err != nil {
			return nil, fmt.Errorf("%s: locale %q: %w", path, f.Locale, err)
		}
		keys := map[string]bool{}
		for key, msg := range f.Messages {
			if err := b.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("%s: key %q: %w", path, key, err)
			}
			keys[key] = true
		}
		b.tags = append(b.tags, tag)
		b.names = append(b.names, f.Locale)
		b.keys[f.Locale] = keys
	}
	if _, ok := b.keys[Default]; !ok {
		return nil, fmt.Errorf("missing %s catalog", Default)
	}

	// The matcher prefers its first tag, so English goes first.
	ordered := []language.Tag{language.English}
	for _, t := range b.tags {
		if t != language.English {
			ordered = append(ordered, t)
		}
	}
	b.matcher = language.NewMatcher(ordered)
	return b, nil
}

// Supported returns the locale names with an embedded catalog.
func Supported() []string {
	b, err := load()
	if err != nil {
		return []string{Default}
	}
	return append([]string(nil), b.names...)
}

// Formatter renders events and UI strings in one language.
type Formatter struct {
	lang    string
	printer *message.Printer
	keys    map[string]bool
}

// New returns a formatter for lang, matched against the embedded catalogs.
// Unsupported languages fall back to English.
func New(lang string) (*Formatter, error) {
	b, err := load()
	if err != nil {
		return nil, err
	}
	name := Default
	if lang != "" {
		want, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", lang, err)
		}
		_, i, conf := b.matcher.Match(want)
		if conf != language.No {
			name = matched(b, i)
		}
	}
	tag := language.MustParse(name)
	return &Formatter{
		lang:    name,
		printer: message.NewPrinter(tag, message.Catalog(b.builder)),
		keys:    b.keys[Default],
	}, nil
}

// matched maps a matcher index back to the locale name.
func matched(b *bundle, i int) string {
	if i == 0 {
		return Default
	}
	n := 0
	for j, t := range b.tags {
		if t == language.English {
			continue
		}
		n++
		if n == i {
			return b.names[j]
		}
	}
	return Default
}

// Lang is the locale the formatter resolved to.
func (f *Formatter) Lang() string { return f.lang }

// Has reports whether key exists in the base catalog.
func (f *Formatter) Has(key string) bool { return f.keys[key] }

// Text renders a catalog entry. Unknown keys come back unchanged.
func (f *Formatter) Text(key string, args ...any) string {
	if !f.keys[key] {
		return key
	}
	return f.printer.Sprintf(key, args...)
}

// Role returns the display name of a role. Thief names of the form
// "Thief/Seer" render the card that was taken.
func (f *Formatter) Role(name string) string {
	if base, card, ok := strings.Cut(name, "/"); ok {
		return f.Role(base) + "/" + f.Role(card)
	}
	if key := "role." + name; f.keys[key] {
		return f.printer.Sprintf(key)
	}
	return name
}

// Camp returns the display name of a camp.
func (f *Formatter) Camp(camp string) string {
	if key := "camp." + camp; f.keys[key] {
		return f.printer.Sprintf(key)
	}
	return camp
}

// Phase returns the display name of a phase.
func (f *Formatter) Phase(p types.Phase) string {
	if key := "phase." + string(p); f.keys[key] {
		return f.printer.Sprintf(key)
	}
	return string(p)
}

// eventArgs lists the Data keys each template consumes, in order.
var eventArgs = map[string][]string{
	"game_started":                 {"players"},
	"game_ended":                   {"camp"},
	"round_started":                {"round"},
	"phase_changed.night":          {"round"},
	"phase_changed.day_discussion": {"round"},
	"player_died":                  {"player"},
	"player_died.role":             {"player", "role"},
	"role_revealed":                {"player", "role"},
	"role_acting":                  {"player"},
	"player_blocked":               {"player"},

	"werewolf_discussion":     {"player", "speech"},
	"werewolf_killed":         {"player"},
	"witch_saved":             {"player", "target"},
	"witch_poisoned":          {"player", "target"},
	"seer_checked":            {"target", "camp"},
	"guard_protected":         {"target"},
	"guardian_wolf_protected": {"player", "target"},
	"lovers_linked":           {"target", "second"},
	"lover_died":              {"target"},
	"thief_chose":             {"role"},
	"magician_swapped":        {"target", "second"},
	"raven_marked":            {"target"},
	"graveyard_checked":       {"target", "role"},
	"wolf_beauty_charmed":     {"player", "target"},
	"white_wolf_killed":       {"player", "target"},
	"nightmare_blocked":       {"player", "target"},
	"role_transformed":        {"player"},

	"player_saved":        {"player"},
	"elder_survived":      {"player", "lives"},
	"poisoned_no_ability": {"player"},
	"death_shot":          {"player", "target"},
	"knight_duel":         {"player", "target"},

	"vote_cast":         {"player", "target"},
	"player_eliminated": {"player"},
	"idiot_revealed":    {"player"},

	"sheriff_candidate":         {"player"},
	"sheriff_candidate_speech":  {"player", "speech"},
	"sheriff_vote_cast":         {"player", "target"},
	"sheriff_vote_abstained":    {"player"},
	"sheriff_elected":           {"player", "votes"},
	"sheriff_badge_transferred": {"player", "target"},
	"sheriff_badge_torn":        {"player"},

	"player_speech": {"player", "speech"},
	"message.day":   {"round"},
}

// key picks the template for e, including per-phase and per-shape variants.
func key(e types.Event) string {
	switch e.Type {
	case types.EventPhaseChanged:
		if p, ok := e.Data["phase"].(string); ok {
			return string(e.Type) + "." + p
		}
	case types.EventPlayerDied:
		if _, ok := e.Data["role"]; ok {
			return string(e.Type) + ".role"
		}
	case types.EventMessage:
		if e.Data["peaceful"] == true {
			return "message.peaceful"
		}
		if _, ok := e.Data["round"]; ok && len(e.Data) == 1 {
			return "message.day"
		}
		// Other messages carry free text only.
		return ""
	}
	return string(e.Type)
}

// Event renders e. Events without a template, or whose data lacks a value
// the template needs, fall back to the engine's English message.
func (f *Formatter) Event(e types.Event) string {
	k := key(e)
	if k == "" || !f.keys[k] {
		return e.Message
	}
	names := eventArgs[k]
	args := make([]any, 0, len(names))
	for _, name := range names {
		v, ok := e.Data[name]
		if !ok {
			return e.Message
		}
		switch name {
		case "role":
			v = f.Role(fmt.Sprint(v))
		case "camp":
			v = f.Camp(fmt.Sprint(v))
		}
		args = append(args, v)
	}
	return f.printer.Sprintf(k, args...)
}
