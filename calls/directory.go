// Package calls hosts the call directory the safeguard coordinator observes,
// the primary-call tracker, and the outbound adapter interfaces it drives.
package calls

import (
	"sync"

	"github.com/ftahirops/vtguard/model"
)

// Listener receives call-list lifecycle notifications.
type Listener interface {
	OnIncomingCall(call *model.Call)
	OnCallListChange()
	OnUpgradeToVideo(call *model.Call)
	OnDisconnect(call *model.Call)
}

// UpdateListener receives per-call change notifications. Registration is keyed
// by call id, so a listener only hears about calls it asked for.
type UpdateListener interface {
	OnSessionModificationStateChange(call *model.Call, state model.SessionModificationState)
}

// DetailsListener receives details-snapshot changes for any call.
type DetailsListener interface {
	OnDetailsChanged(call *model.Call, details model.Details)
}

// Directory owns the set of live calls and fans out lifecycle events.
// Mutations and notifications are serialized under one mutex; listener
// slices are snapshotted before invocation so a callback may re-enter
// registration methods without deadlocking iteration.
type Directory struct {
	mu              sync.Mutex
	calls           map[model.CallID]*model.Call
	order           []model.CallID
	listeners       []Listener
	detailsLis      []DetailsListener
	updateListeners map[model.CallID][]UpdateListener
}

// NewDirectory creates an empty call directory.
func NewDirectory() *Directory {
	return &Directory{
		calls:           make(map[model.CallID]*model.Call),
		updateListeners: make(map[model.CallID][]UpdateListener),
	}
}

// AddListener registers a call-list listener.
func (d *Directory) AddListener(l Listener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

// RemoveListener unregisters a call-list listener.
func (d *Directory) RemoveListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, x := range d.listeners {
		if x == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// AddDetailsListener registers a details listener.
func (d *Directory) AddDetailsListener(l DetailsListener) {
	d.mu.Lock()
	d.detailsLis = append(d.detailsLis, l)
	d.mu.Unlock()
}

// RemoveDetailsListener unregisters a details listener.
func (d *Directory) RemoveDetailsListener(l DetailsListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, x := range d.detailsLis {
		if x == l {
			d.detailsLis = append(d.detailsLis[:i], d.detailsLis[i+1:]...)
			return
		}
	}
}

// AddCallUpdateListener registers a per-call update listener for the given id.
func (d *Directory) AddCallUpdateListener(id model.CallID, l UpdateListener) {
	d.mu.Lock()
	d.updateListeners[id] = append(d.updateListeners[id], l)
	d.mu.Unlock()
}

// RemoveCallUpdateListener unregisters a per-call update listener. Removing a
// listener that was never registered is a no-op.
func (d *Directory) RemoveCallUpdateListener(id model.CallID, l UpdateListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lis := d.updateListeners[id]
	for i, x := range lis {
		if x == l {
			d.updateListeners[id] = append(lis[:i], lis[i+1:]...)
			return
		}
	}
}

// Add inserts a call into the directory. Incoming calls fire OnIncomingCall.
func (d *Directory) Add(call *model.Call) {
	if call == nil {
		return
	}
	d.mu.Lock()
	if _, ok := d.calls[call.ID]; !ok {
		d.order = append(d.order, call.ID)
	}
	d.calls[call.ID] = call
	listeners := d.snapshotListeners()
	d.mu.Unlock()

	if call.Direction == model.DirectionIncoming && call.State.IsIncoming() {
		for _, l := range listeners {
			l.OnIncomingCall(call)
		}
	}
	for _, l := range listeners {
		l.OnCallListChange()
	}
}

// Get returns the call with the given id, or nil.
func (d *Directory) Get(id model.CallID) *model.Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[id]
}

// Calls returns the live calls in insertion order.
func (d *Directory) Calls() []*model.Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*model.Call, 0, len(d.order))
	for _, id := range d.order {
		if c, ok := d.calls[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// PendingOutgoingCall returns the outgoing call still waiting to connect, or nil.
func (d *Directory) PendingOutgoingCall() *model.Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.order {
		c := d.calls[id]
		if c != nil && c.Direction == model.DirectionOutgoing &&
			(c.State == model.StateConnecting || c.State == model.StateDialing) {
			return c
		}
	}
	return nil
}

// SetState transitions a call's lifecycle state. A transition to DISCONNECTED
// removes the call and fires OnDisconnect.
func (d *Directory) SetState(id model.CallID, state model.CallState) {
	d.mu.Lock()
	call, ok := d.calls[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	call.State = state
	var listeners []Listener
	disconnected := state == model.StateDisconnected
	if disconnected {
		delete(d.calls, id)
		delete(d.updateListeners, id)
		for i, x := range d.order {
			if x == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
	listeners = d.snapshotListeners()
	d.mu.Unlock()

	if disconnected {
		for _, l := range listeners {
			l.OnDisconnect(call)
		}
	}
	for _, l := range listeners {
		l.OnCallListChange()
	}
}

// SetDetails replaces a call's details snapshot and notifies details listeners.
func (d *Directory) SetDetails(id model.CallID, details model.Details) {
	d.mu.Lock()
	call, ok := d.calls[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	call.Details = details
	lis := make([]DetailsListener, len(d.detailsLis))
	copy(lis, d.detailsLis)
	d.mu.Unlock()

	for _, l := range lis {
		l.OnDetailsChanged(call, details)
	}
}

// SetSessionState changes a call's session-modification state. Entering
// RECEIVED_UPGRADE_TO_VIDEO_REQUEST fires OnUpgradeToVideo; every change is
// delivered to that call's registered update listeners.
func (d *Directory) SetSessionState(id model.CallID, state model.SessionModificationState) {
	d.mu.Lock()
	call, ok := d.calls[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	prev := call.SessionState
	call.SessionState = state
	listeners := d.snapshotListeners()
	updates := make([]UpdateListener, len(d.updateListeners[id]))
	copy(updates, d.updateListeners[id])
	d.mu.Unlock()

	if state == model.SessionReceivedUpgradeRequest && prev != state {
		for _, l := range listeners {
			l.OnUpgradeToVideo(call)
		}
	}
	for _, l := range updates {
		l.OnSessionModificationStateChange(call, state)
	}
}

// SetVideoState replaces a call's media bitmask.
func (d *Directory) SetVideoState(id model.CallID, vs model.VideoState) {
	d.mu.Lock()
	if call, ok := d.calls[id]; ok {
		call.VideoState = vs
	}
	d.mu.Unlock()
}

// snapshotListeners copies the listener slice; callers must hold mu.
func (d *Directory) snapshotListeners() []Listener {
	out := make([]Listener, len(d.listeners))
	copy(out, d.listeners)
	return out
}
