package calls

import "github.com/ftahirops/vtguard/model"

// TelecomAdapter is the outbound signaling surface. Every action is
// fire-and-forget: the platform owns retries, and the authoritative result
// comes back as a later directory event.
type TelecomAdapter interface {
	Answer(id model.CallID, videoState model.VideoState)
	Disconnect(id model.CallID)
	ContinueWithVideoState(call *model.Call, videoState model.VideoState)
	SendSessionModifyRequest(call *model.Call, profile model.VideoProfile)
	SendSessionModifyResponse(call *model.Call, profile model.VideoProfile)
}

// AudioRouter switches the audio route when a call's media type changes.
type AudioRouter interface {
	OnModifyCallClicked(call *model.Call, videoState model.VideoState)
	OnAcceptUpgradeRequest(call *model.Call, videoState model.VideoState)
}

// Surface is an opaque handle to a live UI host.
type Surface interface {
	Name() string
}

// HostPresence reports whether a UI host currently exists to carry a dialog.
type HostPresence interface {
	// HostSurface returns the active surface, or nil when none exists.
	HostSurface() Surface
	// ChangingConfigurations is true while the host is being torn down only
	// to be recreated (orientation or other configuration change).
	ChangingConfigurations() bool
}

// TonePlayer plays in-call attention tones. Implementations must not block;
// the coordinator invokes them from its event context.
type TonePlayer interface {
	PlayUpgradeRequestTone()
}
