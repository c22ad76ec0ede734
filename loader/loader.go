// Package loader reads game files and presets into a validated Setup that
// the engine can start from.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File models a YAML game file.
//
//	language: zh-TW
//	seed: 42
//	game:
//	  enable_sheriff: true
//	  roles: [Werewolf, Werewolf, Seer, Witch, Guard, Villager]
//	players:
//	  - name: Alice
//	    model: human
//	  - name: Bob
//	    model: lua
//	    script: bots/cautious.lua
//	  - name: Carol
//	    model: llm
//	    provider: anthropic
//
// Without game.roles, the roles and timeouts come from Preset for the number
// of players; any other game key overrides the preset.
type File struct {
	Language string        `yaml:"language"`
	Seed     int64         `yaml:"seed"`
	Game     yaml.Node     `yaml:"game"`
	Players  []PlayerEntry `yaml:"players"`
}

// PlayerEntry declares one seat and the agent that plays it.
type PlayerEntry struct {
	Name      string   `yaml:"name"`
	Model     string   `yaml:"model"` // demo, human, scripted, lua or llm
	Script    string   `yaml:"script,omitempty"`
	Responses []string `yaml:"responses,omitempty"`
	Provider  string   `yaml:"provider,omitempty"`   // llm only; default openai
	ModelName string   `yaml:"model_name,omitempty"` // llm only; overrides the provider's model
}

// Load reads, compiles and validates the game file at path. Agents are
// built later by Setup.Agents, once the game's random source exists.
func Load(path string) (*Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s, err := compile(&f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

// Quick returns a preset game of n demo players named "Player 1".."Player n".
func Quick(n int) (*Setup, error) {
	f := &File{}
	for i := 1; i <= n; i++ {
		f.Players = append(f.Players, PlayerEntry{Name: fmt.Sprintf("Player %d", i), Model: ModelDemo})
	}
	return compile(f, ".")
}
