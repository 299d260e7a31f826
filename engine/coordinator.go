package engine

import (
	"log"

	"github.com/ftahirops/vtguard/calls"
	"github.com/ftahirops/vtguard/model"
)

// CoordinatorConfig carries the coordinator's collaborators. Directory,
// Tracker, Host, Telecom and Audio are required; the rest default or stay off.
type CoordinatorConfig struct {
	Directory CallDirectory
	Tracker   PrimaryTracker
	Host      calls.HostPresence
	Telecom   calls.TelecomAdapter
	Audio     calls.AudioRouter

	// Registry defaults to a fresh episode registry gated on Host.
	Registry *EpisodeRegistry
	// Gate defaults to a bare presenter.
	Gate AlertGate
	// Journal, Notifier and Tone are optional side channels.
	Journal  *Journal
	Notifier *Notifier
	Tone     calls.TonePlayer
}

// Coordinator is the decision engine: it receives every call-lifecycle event,
// decides whether a low-battery alert is warranted and which variant to show,
// and drives the episode registry and the alert gate.
//
// All entry points must be invoked from the host's single event-dispatch
// context; the coordinator performs no blocking work there. The registry and
// gate carry their own locks so background readers may inspect them.
type Coordinator struct {
	directory CallDirectory
	tracker   PrimaryTracker
	host      calls.HostPresence
	registry  *EpisodeRegistry
	gate      AlertGate
	dispatch  *Dispatcher
	journal   *Journal
	notifier  *Notifier
	tone      calls.TonePlayer

	// answeredAsVideo is set when the user answers a low-battery incoming
	// video call as video; handling for incoming calls is deferred until then.
	answeredAsVideo bool

	// episodes maps calls with an unresolved journal row to the row id.
	episodes map[model.CallID]string
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	registry := cfg.Registry
	if registry == nil {
		registry = NewEpisodeRegistry(cfg.Host)
	}
	gate := cfg.Gate
	if gate == nil {
		gate = NewPresenter(nil)
	}
	return &Coordinator{
		directory: cfg.Directory,
		tracker:   cfg.Tracker,
		host:      cfg.Host,
		registry:  registry,
		gate:      gate,
		dispatch:  NewDispatcher(cfg.Telecom, cfg.Audio, cfg.Directory),
		journal:   cfg.Journal,
		notifier:  cfg.Notifier,
		tone:      cfg.Tone,
		episodes:  make(map[model.CallID]string),
	}
}

// Attach subscribes the coordinator to the directory's event streams.
func (c *Coordinator) Attach(d *calls.Directory) {
	d.AddListener(c)
	d.AddDetailsListener(c)
}

// Detach unsubscribes the coordinator and resets the answered flag.
func (c *Coordinator) Detach(d *calls.Directory) {
	d.RemoveListener(c)
	d.RemoveDetailsListener(c)
	c.answeredAsVideo = false
}

// Registry exposes the episode registry, mainly for inspection surfaces.
func (c *Coordinator) Registry() *EpisodeRegistry {
	return c.registry
}

// OnIncomingCall handles a new ringing call: any previous answered-as-video
// decision is void, a showing alert is stale, and an outgoing low-battery
// video call still waiting on its dialog is preempted.
func (c *Coordinator) OnIncomingCall(call *model.Call) {
	c.answeredAsVideo = false
	c.dismissAlert()
	c.maybeDisconnectPendingOutgoing(c.directory.PendingOutgoingCall())
}

// OnCallListChange implements calls.Listener. No decision depends on it.
func (c *Coordinator) OnCallListChange() {}

// OnUpgradeToVideo handles a fresh incoming upgrade request: a dialog raised
// for an earlier condition no longer describes the call.
func (c *Coordinator) OnUpgradeToVideo(call *model.Call) {
	c.dismissAlert()
}

// OnDisconnect closes the call's episode. When no primary call remains the
// active alert is dismissed too; this covers the remote end dropping the
// other leg while a dialog waits for input.
func (c *Coordinator) OnDisconnect(call *model.Call) {
	if call == nil {
		return
	}
	log.Printf("vtguard: disconnect %s", call)
	c.registry.Close(call.ID)
	c.resolveEpisode(call.ID, model.OutcomeCallEnded)

	if c.tracker.PrimaryCall() == nil {
		c.dismissAlert()
	}
}

// OnSessionModificationStateChange implements calls.UpdateListener. The
// coordinator only observes a call while an incoming upgrade request is
// pending; once the state moves away (timeout, external decline), it stops
// observing and tears down the now-stale dialog.
func (c *Coordinator) OnSessionModificationStateChange(call *model.Call, state model.SessionModificationState) {
	if call == nil || !c.tracker.IsPrimaryCall(call) {
		return
	}
	if state != model.SessionReceivedUpgradeRequest {
		c.directory.RemoveCallUpdateListener(call.ID, c)
		c.dismissAlert()
	}
}

// OnDetailsChanged re-evaluates the primary call when its details snapshot
// changes. Unanswered incoming video calls are deferred until answered.
func (c *Coordinator) OnDetailsChanged(call *model.Call, details model.Details) {
	if call == nil || !c.tracker.IsPrimaryCall(call) {
		return
	}
	if call.IsIncomingVideoCall() {
		return
	}
	c.evaluate(call, details, false)
}

// OnUIShowing handles host visibility changes. A dialog request that was
// dropped for want of a surface is re-derived here once the UI is visible;
// hiding due to a configuration change re-arms the episode so the dialog
// re-offers on the recreated surface.
func (c *Coordinator) OnUIShowing(showing bool) {
	call := c.tracker.PrimaryCall()
	if call == nil {
		return
	}
	if !showing {
		if c.host.ChangingConfigurations() {
			c.handleConfigurationChange(call)
		}
		return
	}
	if call.IsIncomingVideoCall() && !c.answeredAsVideo {
		return
	}
	c.evaluate(call, call.Details, call.SessionState == model.SessionReceivedUpgradeRequest)
}

// OnHostDestroyed handles the hosting surface being torn down for good while
// a dialog is showing (for example the task being swiped away). The episode
// re-arms so the dialog re-offers when the call returns to the foreground,
// and audio is re-routed to match the call's current video state.
func (c *Coordinator) OnHostDestroyed() {
	if !c.dismissAlert() {
		return
	}
	log.Printf("vtguard: host destroyed with alert showing")
	call := c.tracker.PrimaryCall()
	if call == nil {
		return
	}
	if c.registry.Close(call.ID) {
		c.resolveEpisode(call.ID, model.OutcomeSuperseded)
		c.dispatch.RerouteAudioFor(call)
	}
}

// OnChangeToVideoCall intercepts a user action to modify the call to video
// (upgrade click, or accepting an incoming upgrade as video). It returns
// false when the device is not low on battery, in which case the caller
// proceeds with the normal path; true means the safeguard owns the flow.
func (c *Coordinator) OnChangeToVideoCall(call *model.Call) bool {
	if call == nil || !c.tracker.IsPrimaryCall(call) {
		return false
	}
	if !call.Details.LowBattery {
		return false
	}

	// A repeated attempt gets a fresh dialog even if one was shown before.
	if c.registry.Close(call.ID) {
		log.Printf("vtguard: re-arming episode for %s on new upgrade attempt", call.ID)
		c.resolveEpisode(call.ID, model.OutcomeSuperseded)
	}

	// Observe session state only while an incoming request is pending, so a
	// timed-out request can tear its dialog down.
	if call.SessionState == model.SessionReceivedUpgradeRequest {
		c.directory.AddCallUpdateListener(call.ID, c)
	}

	c.evaluate(call, call.Details, true)
	return true
}

// HandleAnswerIncomingCall intercepts the user answering an incoming call.
// It returns true only when the safeguard takes over: a low-battery incoming
// video call answered as bidirectional video. Answering audio-only with a
// dialog showing dismisses it and lets the normal answer path proceed.
func (c *Coordinator) HandleAnswerIncomingCall(call *model.Call, videoState model.VideoState) bool {
	if call == nil || !c.tracker.IsPrimaryCall(call) || !call.IsVideoCall() {
		return false
	}

	if c.gate.IsShowing() && videoState.IsAudioOnly() {
		c.dismissAlert()
		return false
	}

	if !(call.Details.LowBattery && videoState.IsBidirectional()) {
		return false
	}

	c.answeredAsVideo = true
	c.evaluate(call, call.Details, false)
	return true
}

// evaluate runs the shared low-battery check: only video calls (or upgrade
// attempts) under low battery that win a fresh episode produce a dialog.
func (c *Coordinator) evaluate(call *model.Call, details model.Details, isUpgradeAttempt bool) {
	if !isUpgradeAttempt && !call.IsVideoCall() {
		return
	}
	if !details.LowBattery {
		return
	}
	if !c.registry.TryOpen(call, isUpgradeAttempt) {
		return
	}
	c.present(call, isUpgradeAttempt)
}

// present selects the dialog variant and shows it, tearing down any prior
// alert first. An unmatched classification closes the just-opened episode
// instead of leaving the call marked handled with nothing shown.
func (c *Coordinator) present(call *model.Call, isUpgradeAttempt bool) {
	c.dismissAlert()

	cat := Classify(call, isUpgradeAttempt)
	variant := VariantFor(cat, call.Details.VoiceDowngradeCapable)
	if variant == VariantNone {
		log.Printf("vtguard: no dialog variant for %s, closing episode", call)
		c.registry.Close(call.ID)
		return
	}

	episodesOpened.Inc()
	alertsPresented.WithLabelValues(variant.String()).Inc()
	var episodeID string
	if c.journal != nil {
		id, err := c.journal.Open(call.ID, variant)
		if err != nil {
			log.Printf("vtguard: journal: %v", err)
		}
		episodeID = id
	}
	c.episodes[call.ID] = episodeID
	if cat == CategoryIncomingUpgradeRequest && c.tone != nil {
		c.tone.PlayUpgradeRequestTone()
	}

	log.Printf("vtguard: presenting %s alert for %s", variant, call)
	c.gate.Present(call, variant, c.actionsFor(call, variant))
}

// actionsFor binds a variant's buttons to outbound actions. The cancel hook
// runs the alert's own call through the preemption guard so a back gesture
// never leaves a pending outgoing call stuck waiting, and never touches a
// call the dialog was not about.
func (c *Coordinator) actionsFor(call *model.Call, variant Variant) AlertActions {
	a := AlertActions{
		Cancel: func() {
			c.maybeDisconnectPendingOutgoing(call)
		},
	}

	switch variant {
	case VariantAnswer:
		a.Positive = func() {
			c.dispatch.AnswerAsVoice(call)
			c.resolveEpisode(call.ID, model.OutcomeAnsweredVoice)
		}
		a.Negative = func() {
			c.dispatch.AnswerAsVideo(call)
			c.resolveEpisode(call.ID, model.OutcomeAnsweredVideo)
		}
	case VariantPlace:
		a.Positive = func() {
			c.dispatch.PlaceAsVoice(call)
			c.resolveEpisode(call.ID, model.OutcomePlacedVoice)
		}
		a.Negative = func() {
			c.dispatch.PlaceAsVideo(call)
			c.resolveEpisode(call.ID, model.OutcomePlacedVideo)
		}
	case VariantDowngrade:
		a.Positive = func() {
			c.dispatch.DowngradeToVoice(call)
			c.resolveEpisode(call.ID, model.OutcomeDowngraded)
			c.notifier.Notify("call_downgraded", map[string]interface{}{"call_id": call.ID})
		}
		// Negative keeps the video call as-is; the episode stays open so the
		// user is not asked again on the next details event.
	case VariantHangup:
		a.Positive = func() {
			c.dispatch.HangUp(call)
			c.resolveEpisode(call.ID, model.OutcomeHungUp)
			c.notifier.Notify("call_hung_up", map[string]interface{}{"call_id": call.ID})
		}
	case VariantDeclineUpgrade:
		a.Positive = func() {
			c.directory.RemoveCallUpdateListener(call.ID, c)
			c.dispatch.DeclineUpgrade(call)
			c.resolveEpisode(call.ID, model.OutcomeUpgradeDeclined)
		}
		a.Negative = func() {
			c.dispatch.AcceptUpgrade(call)
			c.resolveEpisode(call.ID, model.OutcomeUpgradeAccepted)
		}
	case VariantConvertUpgrade:
		a.Positive = func() {
			c.dispatch.AbandonUpgrade(call)
			c.resolveEpisode(call.ID, model.OutcomeUpgradeConverted)
		}
		a.Negative = func() {
			c.dispatch.ContinueUpgrade(call)
			c.resolveEpisode(call.ID, model.OutcomeUpgradeContinued)
		}
	}
	return a
}

// maybeDisconnectPendingOutgoing disconnects an outgoing low-battery video
// call still in CONNECTING: a new incoming call preempts its unresolved dialog.
func (c *Coordinator) maybeDisconnectPendingOutgoing(call *model.Call) {
	if call == nil {
		return
	}
	if call.State != model.StateConnecting || !call.IsVideoCall() || !call.Details.LowBattery {
		return
	}

	c.dismissAlert()
	log.Printf("vtguard: preempting pending outgoing call %s", call.ID)
	outgoingPreempted.Inc()
	c.resolveEpisode(call.ID, model.OutcomePreempted)
	c.notifier.Notify("outgoing_preempted", map[string]interface{}{"call_id": call.ID})
	c.dispatch.DisconnectPending(call)
}

// handleConfigurationChange re-arms the call's episode when the UI hides for
// a configuration change, so the dialog re-offers on the recreated surface.
// Nothing happens unless a dialog was actually showing.
func (c *Coordinator) handleConfigurationChange(call *model.Call) {
	if !c.dismissAlert() {
		return
	}
	log.Printf("vtguard: configuration change with alert showing for %s", call.ID)
	if c.registry.Close(call.ID) {
		c.resolveEpisode(call.ID, model.OutcomeSuperseded)
	}
}

// dismissAlert tears down the active alert, if any, counting external
// dismissals.
func (c *Coordinator) dismissAlert() bool {
	if c.gate.Dismiss() {
		alertsDismissed.Inc()
		return true
	}
	return false
}

// resolveEpisode completes the journal row for a call's open episode.
func (c *Coordinator) resolveEpisode(id model.CallID, outcome model.EpisodeOutcome) {
	epID, ok := c.episodes[id]
	if !ok {
		return
	}
	delete(c.episodes, id)
	episodesResolved.WithLabelValues(string(outcome)).Inc()
	if c.journal != nil && epID != "" {
		if err := c.journal.Resolve(epID, outcome); err != nil {
			log.Printf("vtguard: journal: %v", err)
		}
	}
}
