package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathoo/wolfcore/types"
)

type fixedRand struct{}

func (fixedRand) Intn(int) int { return 0 }

func testDeps() Deps {
	return Deps{Rand: fixedRand{}, In: bufio.NewReader(strings.NewReader("")), Out: io.Discard}
}

func TestLoad_PresetGame(t *testing.T) {
	s, err := Load("testdata/preset.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Language != "zh-TW" {
		t.Errorf("Language = %q, want zh-TW", s.Language)
	}
	if s.Seed != 42 {
		t.Errorf("Seed = %d, want 42", s.Seed)
	}
	if !s.Config.EnableSheriff {
		t.Error("expected enable_sheriff to override the preset")
	}
	preset, err := Preset(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(preset.RoleNames, s.Config.RoleNames); diff != "" {
		t.Errorf("roles mismatch (-preset +got):\n%s", diff)
	}
	if s.Config.NightTimeout != 45 || s.Config.DayTimeout != 180 {
		t.Errorf("expected preset timeouts, got %d/%d", s.Config.NightTimeout, s.Config.DayTimeout)
	}
	if len(s.Roles) != 8 || s.Config.NumPlayers != 8 {
		t.Errorf("expected 8 roles, got %d (num_players %d)", len(s.Roles), s.Config.NumPlayers)
	}
}

func TestLoad_ExplicitRoles(t *testing.T) {
	s, err := Load("testdata/custom.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []types.RoleKind{
		types.RoleWerewolf, types.RoleHiddenWolf, types.RoleSeer,
		types.RoleWitch, types.RoleThief, types.RoleVillager,
	}
	if diff := cmp.Diff(want, s.Roles); diff != "" {
		t.Errorf("roles mismatch (-want +got):\n%s", diff)
	}
	if s.Config.NightTimeout != 20 {
		t.Errorf("NightTimeout = %d, want 20", s.Config.NightTimeout)
	}
	if s.Config.DayTimeout != 300 {
		t.Errorf("DayTimeout = %d, want default 300", s.Config.DayTimeout)
	}
	if !s.Config.AllowRevote {
		t.Error("expected allow_revote")
	}
	if s.Language != "en" {
		t.Errorf("Language = %q, want default en", s.Language)
	}
}

func TestLoad_InvalidCollectsAllErrors(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, want := range []string{
		"5 roles for 6 players",
		`unknown role "Dragon"`,
		"at least one werewolf",
		`duplicate player name "Alice"`,
		"day_timeout 5 is below 30",
		`unknown model "oracle"`,
		`unknown llm provider "skynet"`,
	} {
		if !strings.Contains(ve.Error(), want) {
			t.Errorf("expected error containing %q in:\n%s", want, ve.Error())
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("testdata/nope.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("players: [name: {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_NoPlayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("language: en\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error without players")
	}
}

func TestSetup_Agents(t *testing.T) {
	s, err := Load("testdata/custom.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer s.Close()

	specs, err := s.Agents(testDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 6 {
		t.Fatalf("expected 6 specs, got %d", len(specs))
	}
	if m := specs[0].Agent.Model(); m != "lua:first.lua" {
		t.Errorf("Alice model = %q, want lua:first.lua", m)
	}
	if m := specs[1].Agent.Model(); m != "demo" {
		t.Errorf("Bob model = %q, want demo", m)
	}

	resp, err := specs[0].Agent.GetResponse(context.Background(), "Question: run?\n\nPlease respond with ONLY 'YES' or 'NO'.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "NO" {
		t.Errorf("lua response = %q, want NO", resp)
	}
}

func TestSetup_AgentsScriptedAndHuman(t *testing.T) {
	s, err := Load("testdata/preset.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.Players[1].Model = ModelHuman
	specs, err := s.Agents(testDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m := specs[1].Agent.Model(); m != "human" {
		t.Errorf("Bob model = %q, want human", m)
	}
	resp, err := specs[2].Agent.GetResponse(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "1" {
		t.Errorf("scripted response = %q, want 1", resp)
	}
}

func TestSetup_AgentsMissingScript(t *testing.T) {
	s, err := Load("testdata/custom.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.Players[0].Script = "bots/missing.lua"
	if _, err := s.Agents(testDeps()); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestSetup_AgentsLLM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body.Model != "mini" {
			t.Errorf("expected model override mini, got %q", body.Model)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": "YES"}}},
		})
	}))
	defer srv.Close()

	s, err := Load("testdata/preset.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.Players[3].Model = ModelLLM
	s.Players[3].Provider = "OpenAI"
	s.Players[3].ModelName = "mini"

	deps := testDeps()
	deps.LLM = LLMSettings{
		OpenAI:    ProviderSettings{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o"},
		MaxTokens: 500,
	}
	specs, err := s.Agents(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m := specs[3].Agent.Model(); m != "openai:mini" {
		t.Errorf("Dave model = %q, want openai:mini", m)
	}
	resp, err := specs[3].Agent.GetResponse(context.Background(), "Run for sheriff?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "YES" {
		t.Errorf("llm response = %q, want YES", resp)
	}
}

func TestSetup_AgentsLLMWithoutKey(t *testing.T) {
	s, err := Load("testdata/preset.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.Players[3].Model = ModelLLM
	_, err = s.Agents(testDeps())
	if err == nil || !strings.Contains(err.Error(), "api key is required") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestQuick(t *testing.T) {
	s, err := Quick(6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Players) != 6 || s.Players[5].Name != "Player 6" {
		t.Errorf("unexpected players: %+v", s.Players)
	}
	if _, err := Quick(3); err == nil {
		t.Error("expected error below the minimum table")
	}
}

func TestLoad_SampleGames(t *testing.T) {
	paths, err := filepath.Glob("../games/*.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no sample games found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			defer s.Close()
			specs, err := s.Agents(testDeps())
			if err != nil {
				t.Fatalf("Agents failed: %v", err)
			}
			if len(specs) != len(s.Roles) {
				t.Errorf("expected %d seats, got %d", len(s.Roles), len(specs))
			}
		})
	}
}
