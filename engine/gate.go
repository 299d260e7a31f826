package engine

import (
	"log"
	"sync"
	"time"

	"github.com/ftahirops/vtguard/model"
)

// AlertActions binds the three ways an alert can resolve to their effects.
// Cancel corresponds to a back/cancel gesture; for alerts over a pending
// outgoing call it must disconnect that call rather than silently close.
type AlertActions struct {
	Positive func()
	Negative func()
	Cancel   func()
}

// ActiveAlert describes the single dialog currently offered to the user.
type ActiveAlert struct {
	Call      *model.Call
	Variant   Variant
	CreatedAt time.Time
	actions   AlertActions
}

// AlertGate owns at most one active alert at a time.
type AlertGate interface {
	IsShowing() bool
	// Dismiss tears down the active alert and reports whether one existed.
	Dismiss() bool
	// Present shows an alert for the call, first dismissing any prior one.
	Present(call *model.Call, variant Variant, actions AlertActions)
}

// Choice is a user response to an alert.
type Choice int

const (
	ChoicePositive Choice = iota
	ChoiceNegative
	ChoiceCancel
)

// Presenter is the concrete alert gate. It is variant-agnostic: it manages
// show/dismiss lifecycle and routes the user's choice to the bound actions.
// The single-active-alert invariant is enforced in Present, not by callers.
type Presenter struct {
	mu       sync.Mutex
	active   *ActiveAlert
	onChange func()
}

// NewPresenter creates an empty presenter. onChange, if non-nil, is invoked
// after every show or dismiss so a rendering surface can refresh.
func NewPresenter(onChange func()) *Presenter {
	return &Presenter{onChange: onChange}
}

// IsShowing reports whether an alert is active.
func (p *Presenter) IsShowing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

// Active returns the current alert, or nil.
func (p *Presenter) Active() *ActiveAlert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Dismiss tears down the active alert without running any action.
func (p *Presenter) Dismiss() bool {
	p.mu.Lock()
	had := p.active != nil
	p.active = nil
	notify := p.onChange
	p.mu.Unlock()

	if had && notify != nil {
		notify()
	}
	return had
}

// Present replaces any showing alert with a new one for the given call.
func (p *Presenter) Present(call *model.Call, variant Variant, actions AlertActions) {
	p.mu.Lock()
	if p.active != nil {
		log.Printf("vtguard: replacing %s alert for %s", p.active.Variant, p.active.Call.ID)
	}
	p.active = &ActiveAlert{
		Call:      call,
		Variant:   variant,
		CreatedAt: time.Now(),
		actions:   actions,
	}
	notify := p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Choose resolves the active alert with the user's choice: the alert is torn
// down first, then the bound action runs. Choosing with no active alert is a
// no-op, which absorbs races with external dismissal.
func (p *Presenter) Choose(choice Choice) {
	p.mu.Lock()
	alert := p.active
	p.active = nil
	notify := p.onChange
	p.mu.Unlock()

	if alert == nil {
		return
	}
	if notify != nil {
		notify()
	}

	var action func()
	switch choice {
	case ChoicePositive:
		action = alert.actions.Positive
	case ChoiceNegative:
		action = alert.actions.Negative
	case ChoiceCancel:
		action = alert.actions.Cancel
	}
	if action != nil {
		action()
	}
}
