package calls

import "github.com/ftahirops/vtguard/model"

// PrimaryCallTracker answers "which call is the one the user is looking at".
// The in-focus call is derived from the directory with ringing calls first,
// then calls being placed, then established ones.
type PrimaryCallTracker struct {
	directory *Directory
}

// NewPrimaryCallTracker creates a tracker over the given directory.
func NewPrimaryCallTracker(d *Directory) *PrimaryCallTracker {
	return &PrimaryCallTracker{directory: d}
}

// PrimaryCall returns the currently focused call, or nil when no call is live.
func (t *PrimaryCallTracker) PrimaryCall() *model.Call {
	var pending, active, held *model.Call
	for _, c := range t.directory.Calls() {
		switch {
		case c.State.IsIncoming():
			// A ringing call always takes focus.
			return c
		case c.State == model.StateConnecting || c.State == model.StateDialing:
			if pending == nil {
				pending = c
			}
		case c.State == model.StateActive:
			if active == nil {
				active = c
			}
		case c.State == model.StateOnHold:
			if held == nil {
				held = c
			}
		}
	}
	if pending != nil {
		return pending
	}
	if active != nil {
		return active
	}
	return held
}

// IsPrimaryCall reports whether the given call is the focused one.
func (t *PrimaryCallTracker) IsPrimaryCall(call *model.Call) bool {
	if call == nil {
		return false
	}
	p := t.PrimaryCall()
	return p != nil && p.ID == call.ID
}
