// Package engine implements the low-battery safeguard core: the episode
// registry that guarantees at-most-once alerting per call episode, the alert
// presenter gate that owns the single active dialog, and the coordinator that
// turns call-lifecycle events into alert decisions and outbound actions.
package engine

import (
	"fmt"

	"github.com/ftahirops/vtguard/model"
)

// Category is the closed classification of a call for variant selection.
// Classification happens once per evaluation; there is no scattered
// predicate chain whose ordering can drift.
type Category int

const (
	CategoryNone Category = iota
	CategoryUnansweredIncomingVideo
	CategoryOutgoingConnectingVideo
	CategoryActiveUnpausedVideo
	CategoryIncomingUpgradeRequest
	CategoryOutgoingUpgradeAttempt
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryUnansweredIncomingVideo:
		return "incoming_video"
	case CategoryOutgoingConnectingVideo:
		return "outgoing_video"
	case CategoryActiveUnpausedVideo:
		return "active_video"
	case CategoryIncomingUpgradeRequest:
		return "incoming_upgrade"
	case CategoryOutgoingUpgradeAttempt:
		return "outgoing_upgrade"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Classify maps a call snapshot to its alert category. First match wins, in
// the fixed order: unanswered incoming video, outgoing connecting video,
// active unpaused video, pending incoming upgrade, outgoing upgrade attempt.
func Classify(call *model.Call, isUpgradeAttempt bool) Category {
	if call == nil {
		return CategoryNone
	}
	switch {
	case call.IsIncomingVideoCall():
		return CategoryUnansweredIncomingVideo
	case call.IsOutgoingVideoCall():
		return CategoryOutgoingConnectingVideo
	case call.IsActiveUnpausedVideoCall():
		return CategoryActiveUnpausedVideo
	case call.SessionState == model.SessionReceivedUpgradeRequest:
		return CategoryIncomingUpgradeRequest
	case isUpgradeAttempt:
		return CategoryOutgoingUpgradeAttempt
	}
	return CategoryNone
}

// Variant identifies one of the five confirmation dialogs.
type Variant int

const (
	VariantNone Variant = iota
	// VariantAnswer asks whether to answer an incoming video call as voice or video.
	VariantAnswer
	// VariantPlace asks whether to continue placing an outgoing call as voice or video.
	VariantPlace
	// VariantDowngrade offers to switch an established video call to voice.
	VariantDowngrade
	// VariantHangup offers to end an established video call that cannot downgrade.
	VariantHangup
	// VariantDeclineUpgrade asks whether to decline or accept an incoming upgrade request.
	VariantDeclineUpgrade
	// VariantConvertUpgrade asks whether to abandon or continue an outgoing upgrade.
	VariantConvertUpgrade
)

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantAnswer:
		return "answer"
	case VariantPlace:
		return "place"
	case VariantDowngrade:
		return "downgrade"
	case VariantHangup:
		return "hangup"
	case VariantDeclineUpgrade:
		return "decline_upgrade"
	case VariantConvertUpgrade:
		return "convert_upgrade"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// VariantFor selects the dialog variant for a category. The active-video
// category splits on the call's voice-downgrade capability.
func VariantFor(cat Category, voiceDowngradeCapable bool) Variant {
	switch cat {
	case CategoryUnansweredIncomingVideo:
		return VariantAnswer
	case CategoryOutgoingConnectingVideo:
		return VariantPlace
	case CategoryActiveUnpausedVideo:
		if voiceDowngradeCapable {
			return VariantDowngrade
		}
		return VariantHangup
	case CategoryIncomingUpgradeRequest:
		return VariantDeclineUpgrade
	case CategoryOutgoingUpgradeAttempt:
		return VariantConvertUpgrade
	}
	return VariantNone
}

// VariantText carries the user-facing copy for a dialog variant. The gate and
// UI render this verbatim; button semantics live in the bound actions.
type VariantText struct {
	Message  string
	Positive string
	Negative string
}

var variantTexts = map[Variant]VariantText{
	VariantAnswer: {
		Message:  "Battery is low. Answer as a voice call instead?",
		Positive: "Answer as voice",
		Negative: "Answer as video",
	},
	VariantPlace: {
		Message:  "Battery is low. Place this call as a voice call instead?",
		Positive: "Place as voice",
		Negative: "Place as video",
	},
	VariantDowngrade: {
		Message:  "Battery is low. Switch this video call to voice?",
		Positive: "Switch to voice",
		Negative: "Stay on video",
	},
	VariantHangup: {
		Message:  "Battery is too low for video and this call cannot switch to voice. Hang up?",
		Positive: "Hang up",
		Negative: "Keep call",
	},
	VariantDeclineUpgrade: {
		Message:  "Battery is low. Decline the video upgrade request?",
		Positive: "Decline upgrade",
		Negative: "Accept as video",
	},
	VariantConvertUpgrade: {
		Message:  "Battery is low. Continue as a voice call instead of upgrading?",
		Positive: "Stay on voice",
		Negative: "Upgrade to video",
	},
}

// Text returns the user-facing copy for the variant.
func (v Variant) Text() VariantText {
	return variantTexts[v]
}
