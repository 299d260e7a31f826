package engine

import (
	"testing"

	"github.com/ftahirops/vtguard/calls"
	"github.com/ftahirops/vtguard/model"
)

type fakeHost struct {
	visible  bool
	reconfig bool
}

type fakeSurface struct{}

func (fakeSurface) Name() string { return "test" }

func (h *fakeHost) HostSurface() calls.Surface {
	if !h.visible {
		return nil
	}
	return fakeSurface{}
}

func (h *fakeHost) ChangingConfigurations() bool { return h.reconfig }

func videoCall(id model.CallID, state model.CallState) *model.Call {
	return &model.Call{
		ID:         id,
		State:      state,
		VideoState: model.VideoStateBidirectional,
		Details:    model.Details{LowBattery: true},
	}
}

func TestTryOpenBasics(t *testing.T) {
	host := &fakeHost{visible: true}
	r := NewEpisodeRegistry(host)

	call := videoCall("c1", model.StateActive)
	if !r.TryOpen(call, false) {
		t.Fatal("first TryOpen on an active video call should succeed")
	}
	if !r.Contains("c1") {
		t.Fatal("registry should contain the call after TryOpen")
	}
	if r.TryOpen(call, false) {
		t.Fatal("second TryOpen must be idempotent and return false")
	}
}

func TestTryOpenNilCall(t *testing.T) {
	r := NewEpisodeRegistry(&fakeHost{visible: true})
	if r.TryOpen(nil, true) {
		t.Fatal("nil call must never open an episode")
	}
}

func TestTryOpenVoiceCallNeedsUpgradeAttempt(t *testing.T) {
	r := NewEpisodeRegistry(&fakeHost{visible: true})
	voice := &model.Call{ID: "v1", State: model.StateActive, Details: model.Details{LowBattery: true}}

	if r.TryOpen(voice, false) {
		t.Fatal("voice call without upgrade attempt must not open an episode")
	}
	if !r.TryOpen(voice, true) {
		t.Fatal("voice call undergoing an upgrade attempt should open an episode")
	}
}

func TestTryOpenStateRangeAutoClose(t *testing.T) {
	r := NewEpisodeRegistry(&fakeHost{visible: true})
	call := videoCall("c1", model.StateActive)
	if !r.TryOpen(call, false) {
		t.Fatal("setup: open failed")
	}

	call.State = model.StateDisconnecting
	if r.TryOpen(call, false) {
		t.Fatal("call outside the live range must not open an episode")
	}
	if r.Contains("c1") {
		t.Fatal("leaving the live range must auto-close the open episode")
	}
}

func TestTryOpenRequiresHostSurface(t *testing.T) {
	host := &fakeHost{visible: false}
	r := NewEpisodeRegistry(host)
	call := videoCall("c1", model.StateActive)

	if r.TryOpen(call, false) {
		t.Fatal("no host surface: must fail closed, not open an episode")
	}
	if r.Contains("c1") {
		t.Fatal("failed open must leave no membership behind")
	}

	host.visible = true
	if !r.TryOpen(call, false) {
		t.Fatal("open should succeed once a surface exists")
	}
}

func TestTryOpenExcludesConferenceChildren(t *testing.T) {
	r := NewEpisodeRegistry(&fakeHost{visible: true})
	child := videoCall("c1", model.StateActive)
	child.ParentID = "conf"

	if r.TryOpen(child, false) {
		t.Fatal("conference child must never open an episode")
	}
	if r.TryOpen(child, true) {
		t.Fatal("conference child must never open an episode, even as upgrade attempt")
	}
}

func TestCloseAndOpenCalls(t *testing.T) {
	r := NewEpisodeRegistry(&fakeHost{visible: true})
	r.TryOpen(videoCall("a", model.StateActive), false)
	r.TryOpen(videoCall("b", model.StateActive), false)

	ids := r.OpenCalls()
	if len(ids) != 2 {
		t.Fatalf("OpenCalls = %v, want 2 entries", ids)
	}

	if !r.Close("a") {
		t.Fatal("Close on a member should report removal")
	}
	if r.Close("a") {
		t.Fatal("Close on a non-member should report false")
	}
	if r.Contains("a") || !r.Contains("b") {
		t.Fatal("Close removed the wrong membership")
	}
}
