package loader

import (
	"testing"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/types"
)

func TestPreset_AllSizes(t *testing.T) {
	prevWolves := 0
	for n := MinPlayers; n <= MaxPlayers; n++ {
		cfg, err := Preset(n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if len(cfg.RoleNames) != n {
			t.Errorf("n=%d: expected %d roles, got %d", n, n, len(cfg.RoleNames))
		}
		wolves := 0
		for _, name := range cfg.RoleNames {
			k, err := roles.Parse(name)
			if err != nil {
				t.Fatalf("n=%d: %v", n, err)
			}
			if roles.CampOf(k) == types.CampWerewolf {
				wolves++
			}
		}
		if wolves == 0 {
			t.Errorf("n=%d: no werewolf", n)
		}
		if wolves < prevWolves {
			t.Errorf("n=%d: werewolves dropped from %d to %d", n, prevWolves, wolves)
		}
		prevWolves = wolves

		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		if err := Validate(cfg, names); err != nil {
			t.Errorf("n=%d: preset fails validation: %v", n, err)
		}
	}
}

func TestPreset_Composition(t *testing.T) {
	tests := []struct {
		n                 int
		wolves            int
		has               types.RoleKind
		night, day, vote int
	}{
		{6, 2, types.RoleWitch, 45, 180, 45},
		{8, 2, types.RoleGuard, 45, 180, 45},
		{9, 3, types.RoleHunter, 60, 300, 60},
		{12, 4, types.RoleCupid, 60, 300, 60},
		{15, 5, types.RoleElder, 90, 400, 90},
		{20, 5, types.RoleRaven, 90, 400, 90},
	}
	for _, tt := range tests {
		cfg, err := Preset(tt.n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", tt.n, err)
		}
		wolves, found := 0, false
		for _, name := range cfg.RoleNames {
			k, _ := roles.Parse(name)
			if roles.CampOf(k) == types.CampWerewolf {
				wolves++
			}
			if k == tt.has {
				found = true
			}
		}
		if wolves != tt.wolves {
			t.Errorf("n=%d: expected %d werewolves, got %d", tt.n, tt.wolves, wolves)
		}
		if !found {
			t.Errorf("n=%d: expected %s", tt.n, tt.has)
		}
		if cfg.NightTimeout != tt.night || cfg.DayTimeout != tt.day || cfg.VoteTimeout != tt.vote {
			t.Errorf("n=%d: expected timeouts %d/%d/%d, got %d/%d/%d", tt.n,
				tt.night, tt.day, tt.vote, cfg.NightTimeout, cfg.DayTimeout, cfg.VoteTimeout)
		}
	}
}

func TestPreset_OutOfRange(t *testing.T) {
	for _, n := range []int{0, 5, 21} {
		if _, err := Preset(n); err == nil {
			t.Errorf("n=%d: expected error", n)
		}
	}
}
