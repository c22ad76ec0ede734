// Package types defines the shared data structures for the wolfcore engine.
// This package contains only type definitions and constants, no logic.
package types

// Camp is the victory alignment of a role.
type Camp string

const (
	CampWerewolf Camp = "werewolf"
	CampVillager Camp = "villager"
	CampNeutral  Camp = "neutral"
	CampLovers   Camp = "lovers" // winner camp only
)

// Phase is a step of the game state machine.
type Phase string

const (
	PhaseSetup           Phase = "setup"
	PhaseNight           Phase = "night"
	PhaseSheriffElection Phase = "sheriff_election"
	PhaseDayDiscussion   Phase = "day_discussion"
	PhaseDayVoting       Phase = "day_voting"
	PhaseEnded           Phase = "ended"
)

// Status is a marker attached to a player.
type Status string

const (
	StatusProtected Status = "protected"
	StatusPoisoned  Status = "poisoned"
	StatusSaved     Status = "saved"
	StatusCharmed   Status = "charmed"
	StatusBlocked   Status = "blocked"
	StatusMarked    Status = "marked"
	StatusRevealed  Status = "revealed"
	StatusNoVote    Status = "no_vote"
	StatusLover     Status = "lover"
	StatusSheriff   Status = "sheriff"
)

// RoleKind names a role. The set is closed; see roles.New.
type RoleKind string

const (
	RoleWerewolf         RoleKind = "Werewolf"
	RoleAlphaWolf        RoleKind = "AlphaWolf"
	RoleWhiteWolf        RoleKind = "WhiteWolf"
	RoleWolfBeauty       RoleKind = "WolfBeauty"
	RoleGuardianWolf     RoleKind = "GuardianWolf"
	RoleHiddenWolf       RoleKind = "HiddenWolf"
	RoleBloodMoonApostle RoleKind = "BloodMoonApostle"
	RoleNightmareWolf    RoleKind = "NightmareWolf"

	RoleVillager        RoleKind = "Villager"
	RoleSeer            RoleKind = "Seer"
	RoleWitch           RoleKind = "Witch"
	RoleHunter          RoleKind = "Hunter"
	RoleGuard           RoleKind = "Guard"
	RoleIdiot           RoleKind = "Idiot"
	RoleElder           RoleKind = "Elder"
	RoleKnight          RoleKind = "Knight"
	RoleMagician        RoleKind = "Magician"
	RoleCupid           RoleKind = "Cupid"
	RoleRaven           RoleKind = "Raven"
	RoleGraveyardKeeper RoleKind = "GraveyardKeeper"

	RoleThief RoleKind = "Thief"
)

// ActionKind identifies an action for priority ordering and event logging.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionCupidLink
	ActionNightmareBlock
	ActionThiefChoose
	ActionGuardProtect
	ActionGuardianWolfProtect
	ActionMagicianSwap
	ActionWerewolfVote
	ActionWolfBeautyCharm
	ActionWhiteWolfKill
	ActionWitchSave
	ActionWitchPoison
	ActionSeerCheck
	ActionGraveyardCheck
	ActionRavenMark
	ActionKnightDuel
	ActionVote
	ActionDeathShot
)

// DeathCause records why a player died.
type DeathCause string

const (
	CauseWerewolf    DeathCause = "werewolf_kill"
	CauseWitchPoison DeathCause = "witch_poison"
	CauseWhiteWolf   DeathCause = "white_wolf"
	CauseVote        DeathCause = "vote"
	CauseHeartbreak  DeathCause = "lover_heartbreak"
	CauseCharm       DeathCause = "wolf_beauty_charm"
	CauseDeathShot   DeathCause = "death_shot"
	CauseKnightDuel  DeathCause = "knight_duel"
)

// EventType is the stable identifier of an event. Presentation layers key
// their localized templates on it.
type EventType string

const (
	EventGameStarted   EventType = "game_started"
	EventGameEnded     EventType = "game_ended"
	EventPhaseChanged  EventType = "phase_changed"
	EventRoundStarted  EventType = "round_started"
	EventPlayerDied    EventType = "player_died"
	EventRoleRevealed  EventType = "role_revealed"
	EventRoleActing    EventType = "role_acting"
	EventPlayerBlocked EventType = "player_blocked"

	EventWerewolfDiscussion EventType = "werewolf_discussion"
	EventWerewolfKilled     EventType = "werewolf_killed"
	EventWitchSaved         EventType = "witch_saved"
	EventWitchPoisoned      EventType = "witch_poisoned"
	EventSeerChecked        EventType = "seer_checked"
	EventGuardProtected     EventType = "guard_protected"
	EventGuardianProtected  EventType = "guardian_wolf_protected"
	EventLoversLinked       EventType = "lovers_linked"
	EventLoverDied          EventType = "lover_died"
	EventThiefChose         EventType = "thief_chose"
	EventMagicianSwapped    EventType = "magician_swapped"
	EventRavenMarked        EventType = "raven_marked"
	EventGraveyardChecked   EventType = "graveyard_checked"
	EventWolfBeautyCharmed  EventType = "wolf_beauty_charmed"
	EventWhiteWolfKilled    EventType = "white_wolf_killed"
	EventNightmareBlocked   EventType = "nightmare_blocked"
	EventRoleTransformed    EventType = "role_transformed"

	EventPlayerSaved       EventType = "player_saved"
	EventElderSurvived     EventType = "elder_survived"
	EventPoisonedNoAbility EventType = "poisoned_no_ability"
	EventDeathShot         EventType = "death_shot"
	EventKnightDuel        EventType = "knight_duel"

	EventVoteCast         EventType = "vote_cast"
	EventVoteResult       EventType = "vote_result"
	EventPlayerEliminated EventType = "player_eliminated"
	EventIdiotRevealed    EventType = "idiot_revealed"
	EventElderPenalty     EventType = "elder_penalty"

	EventSheriffCampaignStarted EventType = "sheriff_campaign_started"
	EventSheriffCandidate       EventType = "sheriff_candidate"
	EventSheriffSpeech          EventType = "sheriff_candidate_speech"
	EventSheriffVoteCast        EventType = "sheriff_vote_cast"
	EventSheriffVoteAbstained   EventType = "sheriff_vote_abstained"
	EventSheriffElected         EventType = "sheriff_elected"
	EventSheriffTie             EventType = "sheriff_tie"
	EventSheriffNone            EventType = "sheriff_none"
	EventBadgeTransferred       EventType = "sheriff_badge_transferred"
	EventBadgeTorn              EventType = "sheriff_badge_torn"

	EventPlayerSpeech EventType = "player_speech"
	EventMessage      EventType = "message"
	EventError        EventType = "error"
)

// Event is an append-only record of something that happened. A nil
// VisibleTo means the event is public.
type Event struct {
	Seq       int            `json:"seq"`
	Type      EventType      `json:"type"`
	Round     int            `json:"round"`
	Phase     Phase          `json:"phase"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	VisibleTo []string       `json:"visible_to,omitempty"`
}

// Result is the output of a single engine step.
type Result struct {
	Phase  Phase
	Round  int
	Events []Event
	Output []string
}

// Victory is the outcome of a victory check.
type Victory struct {
	HasWinner  bool     `json:"has_winner"`
	WinnerCamp Camp     `json:"winner_camp,omitempty"`
	WinnerIDs  []string `json:"winner_ids,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}
