package engine

import (
	"log"

	"github.com/ftahirops/vtguard/calls"
	"github.com/ftahirops/vtguard/model"
)

// CallDirectory is the slice of the call registry the engine consumes.
type CallDirectory interface {
	PendingOutgoingCall() *model.Call
	AddCallUpdateListener(id model.CallID, l calls.UpdateListener)
	RemoveCallUpdateListener(id model.CallID, l calls.UpdateListener)
	SetState(id model.CallID, state model.CallState)
	SetSessionState(id model.CallID, state model.SessionModificationState)
}

// PrimaryTracker reports which call currently has UI focus.
type PrimaryTracker interface {
	PrimaryCall() *model.Call
	IsPrimaryCall(call *model.Call) bool
}

// Dispatcher translates a dialog choice into telecom and audio-route actions.
// Every method is fire-and-forget: the platform is the source of truth and
// its answer comes back as a later directory event.
type Dispatcher struct {
	telecom   calls.TelecomAdapter
	audio     calls.AudioRouter
	directory CallDirectory
}

// NewDispatcher creates a dispatcher over the given adapters.
func NewDispatcher(telecom calls.TelecomAdapter, audio calls.AudioRouter, directory CallDirectory) *Dispatcher {
	return &Dispatcher{telecom: telecom, audio: audio, directory: directory}
}

// AnswerAsVoice answers an incoming video call audio-only.
func (d *Dispatcher) AnswerAsVoice(call *model.Call) {
	log.Printf("vtguard: answer %s as voice", call.ID)
	d.telecom.Answer(call.ID, model.VideoStateAudioOnly)
}

// AnswerAsVideo answers an incoming video call bidirectional.
func (d *Dispatcher) AnswerAsVideo(call *model.Call) {
	log.Printf("vtguard: answer %s as video", call.ID)
	d.telecom.Answer(call.ID, model.VideoStateBidirectional)
}

// PlaceAsVoice continues a connecting outgoing call audio-only, routing audio
// back to the earpiece first.
func (d *Dispatcher) PlaceAsVoice(call *model.Call) {
	log.Printf("vtguard: place %s as voice", call.ID)
	d.audio.OnModifyCallClicked(call, model.VideoStateAudioOnly)
	d.telecom.ContinueWithVideoState(call, model.VideoStateAudioOnly)
}

// PlaceAsVideo continues a connecting outgoing call as bidirectional video.
func (d *Dispatcher) PlaceAsVideo(call *model.Call) {
	log.Printf("vtguard: place %s as video", call.ID)
	d.telecom.ContinueWithVideoState(call, model.VideoStateBidirectional)
}

// DowngradeToVoice renegotiates an established video call down to voice.
func (d *Dispatcher) DowngradeToVoice(call *model.Call) {
	log.Printf("vtguard: downgrade %s to voice", call.ID)
	d.telecom.SendSessionModifyRequest(call, model.VideoProfile{VideoState: model.VideoStateAudioOnly})
}

// HangUp moves the call to a disconnecting state and disconnects it.
func (d *Dispatcher) HangUp(call *model.Call) {
	log.Printf("vtguard: hang up %s", call.ID)
	d.directory.SetState(call.ID, model.StateDisconnecting)
	d.telecom.Disconnect(call.ID)
}

// DeclineUpgrade rejects a pending incoming upgrade-to-video request by
// responding with the call's current (video-free) profile.
func (d *Dispatcher) DeclineUpgrade(call *model.Call) {
	log.Printf("vtguard: decline upgrade on %s", call.ID)
	d.telecom.SendSessionModifyResponse(call, model.VideoProfile{VideoState: call.VideoState.Unpaused()})
	d.directory.SetSessionState(call.ID, model.SessionNoRequest)
}

// AcceptUpgrade accepts a pending incoming upgrade request as bidirectional
// video, clears the session-modification state, and notifies the audio router.
func (d *Dispatcher) AcceptUpgrade(call *model.Call) {
	log.Printf("vtguard: accept upgrade on %s as video", call.ID)
	d.telecom.SendSessionModifyResponse(call, model.VideoProfile{VideoState: model.VideoStateBidirectional})
	d.directory.SetSessionState(call.ID, model.SessionNoRequest)
	d.audio.OnAcceptUpgradeRequest(call, model.VideoStateBidirectional)
}

// AbandonUpgrade stops an outgoing upgrade attempt, routing audio back to
// the voice path.
func (d *Dispatcher) AbandonUpgrade(call *model.Call) {
	log.Printf("vtguard: abandon upgrade on %s", call.ID)
	d.audio.OnModifyCallClicked(call, model.VideoStateAudioOnly)
}

// ContinueUpgrade proceeds with an outgoing upgrade: the modify request
// carries the call's current unpaused video state with the bidirectional
// bits set, and the call waits for the remote response.
func (d *Dispatcher) ContinueUpgrade(call *model.Call) {
	vs := call.VideoState.Unpaused() | model.VideoStateBidirectional
	log.Printf("vtguard: continue upgrade on %s -> %s", call.ID, vs)
	d.telecom.SendSessionModifyRequest(call, model.VideoProfile{VideoState: vs})
	d.directory.SetSessionState(call.ID, model.SessionWaitingForResponse)
}

// DisconnectPending drops a call without user interaction, used when a new
// incoming call preempts an unresolved outgoing dialog.
func (d *Dispatcher) DisconnectPending(call *model.Call) {
	log.Printf("vtguard: disconnect pending %s", call.ID)
	d.telecom.Disconnect(call.ID)
}

// RerouteAudioFor routes audio to match the call's current video state. Used
// when the host surface is torn down with an alert pending.
func (d *Dispatcher) RerouteAudioFor(call *model.Call) {
	d.audio.OnModifyCallClicked(call, call.VideoState)
}
