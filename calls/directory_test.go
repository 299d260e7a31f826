package calls

import (
	"testing"

	"github.com/ftahirops/vtguard/model"
)

type recordingListener struct {
	incoming   []model.CallID
	disconnect []model.CallID
	upgrades   []model.CallID
	changes    int
}

func (r *recordingListener) OnIncomingCall(c *model.Call)   { r.incoming = append(r.incoming, c.ID) }
func (r *recordingListener) OnCallListChange()              { r.changes++ }
func (r *recordingListener) OnUpgradeToVideo(c *model.Call) { r.upgrades = append(r.upgrades, c.ID) }
func (r *recordingListener) OnDisconnect(c *model.Call)     { r.disconnect = append(r.disconnect, c.ID) }

type recordingUpdateListener struct {
	states []model.SessionModificationState
}

func (r *recordingUpdateListener) OnSessionModificationStateChange(c *model.Call, s model.SessionModificationState) {
	r.states = append(r.states, s)
}

func TestDirectoryIncomingAndDisconnect(t *testing.T) {
	d := NewDirectory()
	l := &recordingListener{}
	d.AddListener(l)

	d.Add(&model.Call{ID: "c1", Direction: model.DirectionIncoming, State: model.StateIncoming})
	if len(l.incoming) != 1 || l.incoming[0] != "c1" {
		t.Fatalf("incoming events = %v, want [c1]", l.incoming)
	}

	d.SetState("c1", model.StateDisconnected)
	if len(l.disconnect) != 1 || l.disconnect[0] != "c1" {
		t.Fatalf("disconnect events = %v, want [c1]", l.disconnect)
	}
	if d.Get("c1") != nil {
		t.Error("disconnected call should be removed from directory")
	}
}

func TestDirectoryUpgradeToVideoFiresOnce(t *testing.T) {
	d := NewDirectory()
	l := &recordingListener{}
	d.AddListener(l)
	d.Add(&model.Call{ID: "c1", Direction: model.DirectionOutgoing, State: model.StateActive})

	d.SetSessionState("c1", model.SessionReceivedUpgradeRequest)
	d.SetSessionState("c1", model.SessionReceivedUpgradeRequest) // no re-entry
	if len(l.upgrades) != 1 {
		t.Fatalf("upgrade events = %d, want 1", len(l.upgrades))
	}
}

func TestDirectoryPerCallUpdateListener(t *testing.T) {
	d := NewDirectory()
	d.Add(&model.Call{ID: "c1", State: model.StateActive})
	d.Add(&model.Call{ID: "c2", State: model.StateActive})

	u := &recordingUpdateListener{}
	d.AddCallUpdateListener("c1", u)

	d.SetSessionState("c1", model.SessionReceivedUpgradeRequest)
	d.SetSessionState("c2", model.SessionReceivedUpgradeRequest) // not subscribed
	if len(u.states) != 1 {
		t.Fatalf("update events = %d, want 1 (c1 only)", len(u.states))
	}

	d.RemoveCallUpdateListener("c1", u)
	d.SetSessionState("c1", model.SessionNoRequest)
	if len(u.states) != 1 {
		t.Fatal("removed listener still received events")
	}
}

func TestDirectoryPendingOutgoingCall(t *testing.T) {
	d := NewDirectory()
	if d.PendingOutgoingCall() != nil {
		t.Fatal("empty directory should have no pending outgoing call")
	}
	d.Add(&model.Call{ID: "mo", Direction: model.DirectionOutgoing, State: model.StateConnecting})
	d.Add(&model.Call{ID: "act", Direction: model.DirectionOutgoing, State: model.StateActive})

	got := d.PendingOutgoingCall()
	if got == nil || got.ID != "mo" {
		t.Fatalf("PendingOutgoingCall = %v, want mo", got)
	}
	d.SetState("mo", model.StateActive)
	if d.PendingOutgoingCall() != nil {
		t.Error("connected call should no longer be pending")
	}
}

func TestPrimaryCallTrackerPriority(t *testing.T) {
	d := NewDirectory()
	tr := NewPrimaryCallTracker(d)
	if tr.PrimaryCall() != nil {
		t.Fatal("no calls, primary should be nil")
	}

	d.Add(&model.Call{ID: "held", State: model.StateOnHold})
	d.Add(&model.Call{ID: "active", State: model.StateActive})
	if got := tr.PrimaryCall(); got == nil || got.ID != "active" {
		t.Fatalf("primary = %v, want active", got)
	}

	d.Add(&model.Call{ID: "ring", Direction: model.DirectionIncoming, State: model.StateIncoming})
	if got := tr.PrimaryCall(); got == nil || got.ID != "ring" {
		t.Fatalf("primary = %v, want ringing call", got)
	}

	if !tr.IsPrimaryCall(d.Get("ring")) {
		t.Error("IsPrimaryCall should be true for the ringing call")
	}
	if tr.IsPrimaryCall(d.Get("active")) {
		t.Error("IsPrimaryCall should be false for a backgrounded call")
	}
	if tr.IsPrimaryCall(nil) {
		t.Error("IsPrimaryCall(nil) must be false")
	}
}
