package model

import "fmt"

// CallID is the opaque stable identifier the telecom layer assigns to a call.
type CallID string

// Direction tells which side originated a call.
type Direction int

const (
	DirectionNeither Direction = iota
	DirectionIncoming
	DirectionOutgoing
)

func (d Direction) String() string {
	switch d {
	case DirectionIncoming:
		return "INCOMING"
	case DirectionOutgoing:
		return "OUTGOING"
	case DirectionNeither:
		return "NEITHER"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// CallState is the lifecycle state of a call.
type CallState int

const (
	StateIdle CallState = iota
	StateIncoming
	StateCallWaiting
	StateConnecting
	StateDialing
	StateActive
	StateOnHold
	StateDisconnecting
	StateDisconnected
)

func (s CallState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateIncoming:
		return "INCOMING"
	case StateCallWaiting:
		return "CALL_WAITING"
	case StateConnecting:
		return "CONNECTING"
	case StateDialing:
		return "DIALING"
	case StateActive:
		return "ACTIVE"
	case StateOnHold:
		return "ON_HOLD"
	case StateDisconnecting:
		return "DISCONNECTING"
	case StateDisconnected:
		return "DISCONNECTED"
	}
	return fmt.Sprintf("CallState(%d)", int(s))
}

// IsConnectingOrConnected reports whether the call is in the live range where
// low-battery handling applies. Once a call leaves this range its episode is closed.
func (s CallState) IsConnectingOrConnected() bool {
	switch s {
	case StateIncoming, StateCallWaiting, StateConnecting, StateDialing, StateActive, StateOnHold:
		return true
	}
	return false
}

// IsIncoming reports whether the call is ringing and not yet answered.
func (s CallState) IsIncoming() bool {
	return s == StateIncoming || s == StateCallWaiting
}

// VideoState is a bitmask describing the media directions of a call.
type VideoState int

const (
	VideoStateAudioOnly     VideoState = 0x0
	VideoStateTxEnabled     VideoState = 0x1
	VideoStateRxEnabled     VideoState = 0x2
	VideoStateBidirectional VideoState = VideoStateTxEnabled | VideoStateRxEnabled
	VideoStatePaused        VideoState = 0x4
)

// IsAudioOnly reports whether no video channel is enabled.
func (v VideoState) IsAudioOnly() bool {
	return v&(VideoStateTxEnabled|VideoStateRxEnabled) == 0
}

// IsVideo reports whether any video channel (tx or rx) is enabled.
func (v VideoState) IsVideo() bool {
	return v&(VideoStateTxEnabled|VideoStateRxEnabled) != 0
}

// IsBidirectional reports whether both video channels are enabled.
func (v VideoState) IsBidirectional() bool {
	return v&VideoStateBidirectional == VideoStateBidirectional
}

// IsPaused reports whether the paused bit is set.
func (v VideoState) IsPaused() bool {
	return v&VideoStatePaused != 0
}

// Unpaused returns the video state with the paused bit cleared.
func (v VideoState) Unpaused() VideoState {
	return v &^ VideoStatePaused
}

func (v VideoState) String() string {
	if v.IsAudioOnly() {
		return "AUDIO_ONLY"
	}
	s := ""
	switch {
	case v.IsBidirectional():
		s = "BIDIRECTIONAL"
	case v&VideoStateTxEnabled != 0:
		s = "TX"
	case v&VideoStateRxEnabled != 0:
		s = "RX"
	}
	if v.IsPaused() {
		s += "_PAUSED"
	}
	return s
}

// SessionModificationState tracks an in-flight media renegotiation for a call.
type SessionModificationState int

const (
	SessionNoRequest SessionModificationState = iota
	SessionReceivedUpgradeRequest
	SessionWaitingForResponse
	SessionRequestFailed
	SessionUpgradeFailed
)

func (s SessionModificationState) String() string {
	switch s {
	case SessionNoRequest:
		return "NO_REQUEST"
	case SessionReceivedUpgradeRequest:
		return "RECEIVED_UPGRADE_TO_VIDEO_REQUEST"
	case SessionWaitingForResponse:
		return "WAITING_FOR_RESPONSE"
	case SessionRequestFailed:
		return "REQUEST_FAILED"
	case SessionUpgradeFailed:
		return "UPGRADE_FAILED"
	}
	return fmt.Sprintf("SessionModificationState(%d)", int(s))
}

// Details is the per-observation metadata snapshot attached to a call by the
// platform. The low-battery flag is computed elsewhere; this package only reads it.
type Details struct {
	LowBattery            bool
	VoiceDowngradeCapable bool
}

// Call is the coordinator's view of a call owned by the call directory.
// The coordinator observes and annotates calls; it never owns their lifecycle.
type Call struct {
	ID           CallID
	Direction    Direction
	State        CallState
	VideoState   VideoState
	SessionState SessionModificationState
	ParentID     CallID // non-empty means conference child
	Details      Details
}

// IsVideoCall reports whether the call currently carries video.
func (c *Call) IsVideoCall() bool {
	return c != nil && c.VideoState.IsVideo()
}

// IsIncomingVideoCall reports whether the call is an unanswered incoming video call.
func (c *Call) IsIncomingVideoCall() bool {
	return c.IsVideoCall() && c.State.IsIncoming()
}

// IsOutgoingVideoCall reports whether the call is a video call still being placed.
func (c *Call) IsOutgoingVideoCall() bool {
	return c.IsVideoCall() && (c.State == StateConnecting || c.State == StateDialing)
}

// IsActiveUnpausedVideoCall reports whether the call is established with live video.
func (c *Call) IsActiveUnpausedVideoCall() bool {
	return c.IsVideoCall() && c.State == StateActive && !c.VideoState.IsPaused()
}

// IsConferenceChild reports whether the call is a leg of a conference.
// Conference children are excluded from standalone low-battery handling.
func (c *Call) IsConferenceChild() bool {
	return c != nil && c.ParentID != ""
}

func (c *Call) String() string {
	if c == nil {
		return "<nil call>"
	}
	return fmt.Sprintf("call %s [%s %s video=%s session=%s]",
		c.ID, c.Direction, c.State, c.VideoState, c.SessionState)
}

// VideoProfile is the media profile carried on session-modify requests and responses.
type VideoProfile struct {
	VideoState VideoState
}
