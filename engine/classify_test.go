package engine

import (
	"testing"

	"github.com/ftahirops/vtguard/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		call      *model.Call
		isUpgrade bool
		want      Category
	}{
		{
			name: "incoming_ringing_video",
			call: &model.Call{Direction: model.DirectionIncoming, State: model.StateIncoming,
				VideoState: model.VideoStateBidirectional},
			want: CategoryUnansweredIncomingVideo,
		},
		{
			name: "outgoing_connecting_video",
			call: &model.Call{Direction: model.DirectionOutgoing, State: model.StateConnecting,
				VideoState: model.VideoStateBidirectional},
			want: CategoryOutgoingConnectingVideo,
		},
		{
			name: "outgoing_dialing_video",
			call: &model.Call{Direction: model.DirectionOutgoing, State: model.StateDialing,
				VideoState: model.VideoStateTxEnabled},
			want: CategoryOutgoingConnectingVideo,
		},
		{
			name: "active_unpaused_video",
			call: &model.Call{State: model.StateActive, VideoState: model.VideoStateBidirectional},
			want: CategoryActiveUnpausedVideo,
		},
		{
			name: "active_paused_video_is_not_active_category",
			call: &model.Call{State: model.StateActive,
				VideoState: model.VideoStateBidirectional | model.VideoStatePaused},
			want: CategoryNone,
		},
		{
			name: "incoming_upgrade_on_voice_call",
			call: &model.Call{State: model.StateActive, VideoState: model.VideoStateAudioOnly,
				SessionState: model.SessionReceivedUpgradeRequest},
			want: CategoryIncomingUpgradeRequest,
		},
		{
			name:      "outgoing_upgrade_attempt_on_voice_call",
			call:      &model.Call{State: model.StateActive, VideoState: model.VideoStateAudioOnly},
			isUpgrade: true,
			want:      CategoryOutgoingUpgradeAttempt,
		},
		{
			name: "plain_voice_call",
			call: &model.Call{State: model.StateActive, VideoState: model.VideoStateAudioOnly},
			want: CategoryNone,
		},
		{
			name: "nil_call",
			call: nil,
			want: CategoryNone,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.call, c.isUpgrade); got != c.want {
				t.Fatalf("Classify = %v, want %v", got, c.want)
			}
		})
	}
}

func TestVariantFor(t *testing.T) {
	cases := []struct {
		name      string
		cat       Category
		downgrade bool
		want      Variant
	}{
		{"incoming_video", CategoryUnansweredIncomingVideo, false, VariantAnswer},
		{"outgoing_video", CategoryOutgoingConnectingVideo, false, VariantPlace},
		{"active_downgrade_capable", CategoryActiveUnpausedVideo, true, VariantDowngrade},
		{"active_no_downgrade", CategoryActiveUnpausedVideo, false, VariantHangup},
		{"incoming_upgrade", CategoryIncomingUpgradeRequest, false, VariantDeclineUpgrade},
		{"outgoing_upgrade", CategoryOutgoingUpgradeAttempt, false, VariantConvertUpgrade},
		{"none", CategoryNone, true, VariantNone},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := VariantFor(c.cat, c.downgrade); got != c.want {
				t.Fatalf("VariantFor = %v, want %v", got, c.want)
			}
		})
	}
}

func TestVariantTextComplete(t *testing.T) {
	for _, v := range []Variant{VariantAnswer, VariantPlace, VariantDowngrade,
		VariantHangup, VariantDeclineUpgrade, VariantConvertUpgrade} {
		txt := v.Text()
		if txt.Message == "" || txt.Positive == "" || txt.Negative == "" {
			t.Errorf("variant %v has incomplete dialog copy: %+v", v, txt)
		}
	}
}
