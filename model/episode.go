package model

import "time"

// EpisodeOutcome records how a low-battery episode resolved.
type EpisodeOutcome string

const (
	OutcomeAnsweredVoice    EpisodeOutcome = "answered_voice"
	OutcomeAnsweredVideo    EpisodeOutcome = "answered_video"
	OutcomePlacedVoice      EpisodeOutcome = "placed_voice"
	OutcomePlacedVideo      EpisodeOutcome = "placed_video"
	OutcomeDowngraded       EpisodeOutcome = "downgraded"
	OutcomeHungUp           EpisodeOutcome = "hung_up"
	OutcomeUpgradeDeclined  EpisodeOutcome = "upgrade_declined"
	OutcomeUpgradeAccepted  EpisodeOutcome = "upgrade_accepted"
	OutcomeUpgradeConverted EpisodeOutcome = "upgrade_converted"
	OutcomeUpgradeContinued EpisodeOutcome = "upgrade_continued"
	OutcomePreempted        EpisodeOutcome = "preempted"
	OutcomeCallEnded        EpisodeOutcome = "call_ended"
	OutcomeSuperseded       EpisodeOutcome = "superseded"
)

// EpisodeRecord is one journaled low-battery episode: the span from the first
// low-battery detection on a call to its resolution.
type EpisodeRecord struct {
	EpisodeID  string         `json:"episode_id"`
	CallID     CallID         `json:"call_id"`
	Variant    string         `json:"variant"`
	OpenedAt   time.Time      `json:"opened_at"`
	ResolvedAt time.Time      `json:"resolved_at,omitempty"`
	Outcome    EpisodeOutcome `json:"outcome,omitempty"`
}
