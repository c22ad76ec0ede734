package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathoo/wolfcore/types"
)

func fixedClock(round int, phase types.Phase) Clock {
	return func() (int, types.Phase) { return round, phase }
}

func TestEmit_StampsSequenceAndClock(t *testing.T) {
	l := NewLog(fixedClock(2, types.PhaseNight))
	l.Emit(types.EventRoundStarted, "Round 2", nil)
	e := l.Emit(types.EventPlayerDied, "P1 died", map[string]any{"player_id": "player_1"})

	if e.Seq != 2 {
		t.Errorf("expected seq 2, got %d", e.Seq)
	}
	if e.Round != 2 || e.Phase != types.PhaseNight {
		t.Errorf("expected round 2 night, got %d %s", e.Round, e.Phase)
	}
	if e.VisibleTo != nil {
		t.Error("events without recipients are public")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 events, got %d", l.Len())
	}
}

func TestVisibleTo_FiltersPrivateEvents(t *testing.T) {
	l := NewLog(nil)
	l.Emit(types.EventGameStarted, "start", nil)
	l.Emit(types.EventSeerChecked, "P2 is a werewolf", nil, "player_1")
	l.Emit(types.EventWerewolfDiscussion, "wolves talk", nil, "player_2", "player_3")

	tests := []struct {
		player string
		want   []types.EventType
	}{
		{"player_1", []types.EventType{types.EventGameStarted, types.EventSeerChecked}},
		{"player_2", []types.EventType{types.EventGameStarted, types.EventWerewolfDiscussion}},
		{"player_4", []types.EventType{types.EventGameStarted}},
	}
	for _, tt := range tests {
		var got []types.EventType
		for _, e := range l.VisibleTo(tt.player) {
			got = append(got, e.Type)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s visible events mismatch (-want +got):\n%s", tt.player, diff)
		}
	}
}

func TestSubscribe_ReceivesEveryEvent(t *testing.T) {
	l := NewLog(nil)
	var seen []int
	l.Subscribe(func(e types.Event) { seen = append(seen, e.Seq) })
	l.Emit(types.EventMessage, "a", nil)
	l.Emit(types.EventMessage, "b", nil, "player_1")

	if diff := cmp.Diff([]int{1, 2}, seen); diff != "" {
		t.Errorf("subscriber mismatch (-want +got):\n%s", diff)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	l := NewLog(nil)
	l.Emit(types.EventMessage, "original", nil)
	all := l.All()
	all[0].Message = "changed"
	if l.All()[0].Message != "original" {
		t.Error("All must not expose the internal slice")
	}
}

func TestSince(t *testing.T) {
	l := NewLog(nil)
	for i := 0; i < 4; i++ {
		l.Emit(types.EventMessage, "m", nil)
	}
	if got := len(l.Since(1)); got != 3 {
		t.Errorf("expected 3 events after seq 1, got %d", got)
	}
	if got := l.Since(4); got != nil {
		t.Errorf("expected nothing after the last event, got %d", len(got))
	}
}

func TestRestore_ContinuesSequence(t *testing.T) {
	l := NewLog(nil)
	l.Restore([]types.Event{{Seq: 1, Type: types.EventGameStarted}, {Seq: 2, Type: types.EventRoundStarted}})
	e := l.Emit(types.EventMessage, "next", nil)
	if e.Seq != 3 {
		t.Errorf("expected seq 3 after restore, got %d", e.Seq)
	}
}
