package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/vtguard/calls"
	"github.com/ftahirops/vtguard/engine"
	"github.com/ftahirops/vtguard/model"
)

const eventLogSize = 10

// Deps carries the wired safeguard stack into the simulator.
type Deps struct {
	Directory   *calls.Directory
	Tracker     *calls.PrimaryCallTracker
	Host        *calls.SimHost
	Telecom     *calls.SimTelecom
	Gate        *engine.Presenter
	Coordinator *engine.Coordinator
	Journal     *engine.Journal
}

// Model is the bubbletea model for the interactive call simulator. Every key
// press feeds a call-lifecycle event through the coordinator, and the view
// renders whatever dialog the safeguard decided to raise.
type Model struct {
	deps Deps

	width  int
	height int

	// lowBattery applies to calls created from here on.
	lowBattery bool
	uiVisible  bool
	nextSeq    int

	events   []string
	showHelp bool
}

// NewModel creates the simulator over an already-wired stack.
func NewModel(deps Deps) Model {
	return Model{
		deps:       deps,
		lowBattery: true,
		uiVisible:  true,
		nextSeq:    1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) logf(format string, args ...interface{}) {
	line := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	m.events = append(m.events, line)
	if len(m.events) > eventLogSize {
		m.events = m.events[len(m.events)-eventLogSize:]
	}
}

func (m *Model) newCallID() model.CallID {
	id := model.CallID(fmt.Sprintf("call-%d", m.nextSeq))
	m.nextSeq++
	return id
}

func (m Model) primary() *model.Call {
	return m.deps.Tracker.PrimaryCall()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "q" || key == "ctrl+c" {
		return m, tea.Quit
	}
	if key == "?" {
		m.showHelp = !m.showHelp
		return m, nil
	}

	// Dialog buttons take priority while a dialog is showing.
	if active := m.deps.Gate.Active(); active != nil {
		switch key {
		case "y":
			m.logf("dialog %s: %s", active.Variant, active.Variant.Text().Positive)
			m.deps.Gate.Choose(engine.ChoicePositive)
			return m, nil
		case "n":
			m.logf("dialog %s: %s", active.Variant, active.Variant.Text().Negative)
			m.deps.Gate.Choose(engine.ChoiceNegative)
			return m, nil
		case "esc":
			m.logf("dialog %s: back", active.Variant)
			m.deps.Gate.Choose(engine.ChoiceCancel)
			return m, nil
		}
	}

	switch key {
	case "i":
		id := m.newCallID()
		m.deps.Directory.Add(&model.Call{
			ID:         id,
			Direction:  model.DirectionIncoming,
			State:      model.StateIncoming,
			VideoState: model.VideoStateBidirectional,
			Details:    model.Details{LowBattery: m.lowBattery},
		})
		m.logf("incoming video call %s", id)
	case "I":
		id := m.newCallID()
		m.deps.Directory.Add(&model.Call{
			ID:        id,
			Direction: model.DirectionIncoming,
			State:     model.StateIncoming,
			Details:   model.Details{LowBattery: m.lowBattery},
		})
		m.logf("incoming voice call %s", id)
	case "o":
		id := m.newCallID()
		m.deps.Directory.Add(&model.Call{
			ID:         id,
			Direction:  model.DirectionOutgoing,
			State:      model.StateConnecting,
			VideoState: model.VideoStateBidirectional,
			Details:    model.Details{LowBattery: m.lowBattery},
		})
		m.logf("placing outgoing video call %s", id)
		if m.uiVisible {
			m.deps.Coordinator.OnUIShowing(true)
		}
	case "a", "A":
		call := m.primary()
		if call == nil || !call.State.IsIncoming() {
			m.logf("no ringing call to answer")
			break
		}
		vs := model.VideoStateBidirectional
		if key == "A" || !call.IsVideoCall() {
			vs = model.VideoStateAudioOnly
		}
		if m.deps.Coordinator.HandleAnswerIncomingCall(call, vs) {
			m.logf("answer of %s intercepted for confirmation", call.ID)
			break
		}
		m.deps.Telecom.Answer(call.ID, vs)
		m.logf("answered %s as %s", call.ID, vs)
	case "b":
		m.lowBattery = !m.lowBattery
		m.logf("new calls start with low battery: %v", m.lowBattery)
	case "B":
		call := m.primary()
		if call == nil {
			break
		}
		d := call.Details
		d.LowBattery = !d.LowBattery
		m.deps.Directory.SetDetails(call.ID, d)
		m.logf("battery on %s now low=%v", call.ID, d.LowBattery)
	case "g":
		call := m.primary()
		if call == nil {
			break
		}
		d := call.Details
		d.VoiceDowngradeCapable = !d.VoiceDowngradeCapable
		m.deps.Directory.SetDetails(call.ID, d)
		m.logf("voice downgrade on %s now %v", call.ID, d.VoiceDowngradeCapable)
	case "u":
		call := m.primary()
		if call == nil || call.IsVideoCall() {
			m.logf("remote upgrade needs an established voice call")
			break
		}
		m.deps.Directory.SetSessionState(call.ID, model.SessionReceivedUpgradeRequest)
		m.logf("remote requested video upgrade on %s", call.ID)
	case "v":
		call := m.primary()
		if call == nil {
			break
		}
		if m.deps.Coordinator.OnChangeToVideoCall(call) {
			m.logf("upgrade of %s intercepted for confirmation", call.ID)
			break
		}
		m.deps.Directory.SetVideoState(call.ID, model.VideoStateBidirectional)
		m.deps.Directory.SetSessionState(call.ID, model.SessionNoRequest)
		m.logf("%s upgraded to video", call.ID)
	case "d":
		call := m.primary()
		if call == nil {
			break
		}
		m.deps.Directory.SetState(call.ID, model.StateDisconnected)
		m.logf("%s disconnected", call.ID)
	case "h":
		m.uiVisible = !m.uiVisible
		m.deps.Host.SetVisible(m.uiVisible, false)
		m.deps.Coordinator.OnUIShowing(m.uiVisible)
		m.logf("in-call UI visible: %v", m.uiVisible)
	case "c":
		m.deps.Host.SetVisible(false, true)
		m.deps.Coordinator.OnUIShowing(false)
		m.deps.Host.SetVisible(true, false)
		m.deps.Coordinator.OnUIShowing(true)
		m.uiVisible = true
		m.logf("configuration change: surface recreated")
	case "x":
		m.deps.Coordinator.OnHostDestroyed()
		m.deps.Host.SetVisible(false, false)
		m.uiVisible = false
		m.logf("host surface destroyed")
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("vtguard") + "  " +
		dimStyle.Render("video call battery safeguard simulator"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("battery: ") + batteryStyle(m.lowBattery).Render(batteryLabel(m.lowBattery)) +
		labelStyle.Render("   surface: ") + stateStyle(m.uiVisible).Render(surfaceLabel(m.uiVisible)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.callsPanel()),
		" ",
		panelStyle.Render(m.episodePanel()),
	))
	b.WriteString("\n")

	if active := m.deps.Gate.Active(); active != nil {
		b.WriteString(m.dialogView(active))
		b.WriteString("\n")
	}

	b.WriteString(panelStyle.Render(m.eventsPanel()))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(helpStyle.Render(helpText))
	} else {
		b.WriteString(helpStyle.Render("i/I call in  o call out  a/A answer  u/v upgrade  d hang up  B battery  ? help  q quit"))
	}
	return b.String()
}

func (m Model) callsPanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Calls"))
	b.WriteString("\n")
	list := m.deps.Directory.Calls()
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
		return b.String()
	}
	primary := m.primary()
	for _, c := range list {
		marker := "  "
		if primary != nil && c.ID == primary.ID {
			marker = valueStyle.Render("> ")
		}
		battery := " "
		if c.Details.LowBattery {
			battery = critStyle.Render("!")
		}
		b.WriteString(fmt.Sprintf("%s%-10s %-13s %-12s %s\n",
			marker, c.ID, c.State, c.VideoState, battery))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) episodePanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Handled episodes"))
	b.WriteString("\n")
	open := m.deps.Coordinator.Registry().OpenCalls()
	if len(open) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
	}
	for _, id := range open {
		b.WriteString(valueStyle.Render(string(id)) + "\n")
	}

	if m.deps.Journal != nil {
		if recs, err := m.deps.Journal.Recent(3); err == nil && len(recs) > 0 {
			b.WriteString("\n" + labelStyle.Render("Journal") + "\n")
			for _, r := range recs {
				outcome := string(r.Outcome)
				if outcome == "" {
					outcome = "open"
				}
				b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s %s", r.CallID, r.Variant, outcome)) + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) eventsPanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(dimStyle.Render("(quiet)"))
		return b.String()
	}
	for _, e := range m.events {
		b.WriteString(e + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) dialogView(active *engine.ActiveAlert) string {
	text := active.Variant.Text()
	var b strings.Builder
	b.WriteString(warnStyle.Render("Battery check") + "\n\n")
	b.WriteString(valueStyle.Render(text.Message) + "\n\n")
	b.WriteString(okStyle.Render("[y] "+text.Positive) + "   ")
	if text.Negative != "" {
		b.WriteString(warnStyle.Render("[n] "+text.Negative) + "   ")
	}
	b.WriteString(dimStyle.Render("[esc] back"))
	return dialogStyle.Render(b.String())
}

func batteryLabel(low bool) string {
	if low {
		return "LOW"
	}
	return "ok"
}

func surfaceLabel(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}

const helpText = `  i  incoming video call         I  incoming voice call
  o  place outgoing video call   a  answer as video (A: voice)
  u  remote video upgrade req    v  upgrade / accept upgrade
  d  hang up primary call        B  toggle battery on primary
  g  toggle voice downgrade      b  toggle battery for new calls
  h  hide/show in-call UI        c  configuration change
  x  destroy host surface        q  quit`
