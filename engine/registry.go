package engine

import (
	"sync"

	"github.com/ftahirops/vtguard/calls"
	"github.com/ftahirops/vtguard/model"
)

// EpisodeRegistry is the dedup set of calls with an open low-battery episode.
// A call is a member iff an alert has been (or is about to be) shown for it
// and the episode has not yet resolved. Membership is what prevents the same
// call from alerting twice within one episode.
//
// The set is guarded by its own mutex and iterated via snapshots, so a
// background reader can observe it while the owning event context mutates it.
type EpisodeRegistry struct {
	mu   sync.RWMutex
	open map[model.CallID]struct{}
	host calls.HostPresence
}

// NewEpisodeRegistry creates an empty registry gated on the given host presence.
func NewEpisodeRegistry(host calls.HostPresence) *EpisodeRegistry {
	return &EpisodeRegistry{
		open: make(map[model.CallID]struct{}),
		host: host,
	}
}

// TryOpen attempts to open an episode for the call and reports whether a new
// episode was opened. This boolean is the sole signal that a dialog should be
// rendered now.
//
// No episode opens when:
//   - the call has left the connecting-or-connected range (an already-open
//     episode is closed as a side effect);
//   - no host surface exists to carry a dialog (fails closed, never queues);
//   - an episode is already open for the call;
//   - the call is a conference child;
//   - the call carries no video and this is not an upgrade attempt.
func (r *EpisodeRegistry) TryOpen(call *model.Call, isUpgradeAttempt bool) bool {
	if call == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, present := r.open[call.ID]
	if !call.State.IsConnectingOrConnected() {
		if present {
			delete(r.open, call.ID)
		}
		return false
	}
	if r.host.HostSurface() == nil {
		return false
	}
	if (call.IsVideoCall() || isUpgradeAttempt) && !present && !call.IsConferenceChild() {
		r.open[call.ID] = struct{}{}
		return true
	}
	return false
}

// Close ends the episode for the call, if one is open, and reports whether
// membership was removed.
func (r *EpisodeRegistry) Close(id model.CallID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.open[id]; !ok {
		return false
	}
	delete(r.open, id)
	return true
}

// Contains reports whether the call has an open episode.
func (r *EpisodeRegistry) Contains(id model.CallID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.open[id]
	return ok
}

// OpenCalls returns a point-in-time snapshot of the member call ids.
func (r *EpisodeRegistry) OpenCalls() []model.CallID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.CallID, 0, len(r.open))
	for id := range r.open {
		out = append(out, id)
	}
	return out
}
