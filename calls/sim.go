package calls

import (
	"log"
	"sync"

	"github.com/ftahirops/vtguard/model"
)

// SimTelecom is a loopback telecom adapter used by the simulator and scenario
// replay. It applies each action straight back onto the directory, standing in
// for the platform's telephony stack.
type SimTelecom struct {
	directory *Directory
}

// NewSimTelecom creates a loopback adapter over the directory.
func NewSimTelecom(d *Directory) *SimTelecom {
	return &SimTelecom{directory: d}
}

func (s *SimTelecom) Answer(id model.CallID, videoState model.VideoState) {
	log.Printf("vtguard: telecom answer %s as %s", id, videoState)
	s.directory.SetVideoState(id, videoState)
	s.directory.SetState(id, model.StateActive)
}

func (s *SimTelecom) Disconnect(id model.CallID) {
	log.Printf("vtguard: telecom disconnect %s", id)
	s.directory.SetState(id, model.StateDisconnected)
}

func (s *SimTelecom) ContinueWithVideoState(call *model.Call, videoState model.VideoState) {
	log.Printf("vtguard: telecom continue %s as %s", call.ID, videoState)
	s.directory.SetVideoState(call.ID, videoState)
}

func (s *SimTelecom) SendSessionModifyRequest(call *model.Call, profile model.VideoProfile) {
	log.Printf("vtguard: telecom session-modify request %s -> %s", call.ID, profile.VideoState)
}

func (s *SimTelecom) SendSessionModifyResponse(call *model.Call, profile model.VideoProfile) {
	log.Printf("vtguard: telecom session-modify response %s -> %s", call.ID, profile.VideoState)
	if profile.VideoState.IsVideo() {
		s.directory.SetVideoState(call.ID, profile.VideoState)
	}
}

// SimAudioRouter logs route changes in place of a platform audio manager.
type SimAudioRouter struct{}

func (SimAudioRouter) OnModifyCallClicked(call *model.Call, videoState model.VideoState) {
	log.Printf("vtguard: audio route for %s follows %s", call.ID, videoState)
}

func (SimAudioRouter) OnAcceptUpgradeRequest(call *model.Call, videoState model.VideoState) {
	log.Printf("vtguard: audio route for accepted upgrade on %s (%s)", call.ID, videoState)
}

type simSurface struct{ name string }

func (s simSurface) Name() string { return s.name }

// SimHost is a togglable host presence: the simulator flips it as the UI is
// shown, hidden, or torn down for a configuration change.
type SimHost struct {
	mu        sync.Mutex
	visible   bool
	reconfig  bool
	surfaceID int
}

// NewSimHost creates a host presence that starts visible.
func NewSimHost() *SimHost {
	return &SimHost{visible: true, surfaceID: 1}
}

// SetVisible toggles surface availability. Hiding with reconfiguring=true
// models an orientation change: the surface goes away and comes back.
func (h *SimHost) SetVisible(visible, reconfiguring bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = visible
	h.reconfig = reconfiguring
	if visible {
		h.surfaceID++
		h.reconfig = false
	}
}

func (h *SimHost) HostSurface() Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.visible {
		return nil
	}
	return simSurface{name: "sim"}
}

func (h *SimHost) ChangingConfigurations() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reconfig
}
