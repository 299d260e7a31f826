package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ftahirops/vtguard/engine"
	"github.com/ftahirops/vtguard/model"
)

// scenarioEvent is one line of a JSONL scenario file.
type scenarioEvent struct {
	Op             string `json:"op"`
	Call           string `json:"call,omitempty"`
	Direction      string `json:"direction,omitempty"`
	State          string `json:"state,omitempty"`
	Video          string `json:"video,omitempty"`
	Session        string `json:"session,omitempty"`
	LowBattery     *bool  `json:"low_battery,omitempty"`
	VoiceDowngrade *bool  `json:"voice_downgrade,omitempty"`
	Showing        bool   `json:"showing,omitempty"`
	Reconfig       bool   `json:"reconfig,omitempty"`
	Choice         string `json:"choice,omitempty"`
}

// runScenario replays a JSONL scenario through the safeguard and prints every
// dialog decision to stdout.
func runScenario(stack *Stack, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open scenario file: %w", err)
	}
	defer f.Close()

	var lastVariant engine.Variant
	report := func() {
		active := stack.Gate.Active()
		if active == nil {
			if lastVariant != engine.VariantNone {
				fmt.Printf("  dialog cleared\n")
			}
			lastVariant = engine.VariantNone
			return
		}
		if active.Variant != lastVariant {
			fmt.Printf("  dialog %s for %s: %s\n",
				active.Variant, active.Call.ID, active.Variant.Text().Message)
		}
		lastVariant = active.Variant
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ev scenarioEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return fmt.Errorf("scenario line %d: %w", lineNo, err)
		}
		if err := applyScenarioEvent(stack, ev); err != nil {
			return fmt.Errorf("scenario line %d: %w", lineNo, err)
		}
		fmt.Printf("%s\n", describeEvent(ev))
		report()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scenario read: %w", err)
	}

	if open := stack.Coordinator.Registry().OpenCalls(); len(open) > 0 {
		ids := make([]string, len(open))
		for i, id := range open {
			ids[i] = string(id)
		}
		fmt.Printf("handled episodes still open: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

func applyScenarioEvent(stack *Stack, ev scenarioEvent) error {
	id := model.CallID(ev.Call)
	switch ev.Op {
	case "add":
		dir, err := parseDirection(ev.Direction)
		if err != nil {
			return err
		}
		state, err := parseState(ev.State)
		if err != nil {
			return err
		}
		vs, err := parseVideoState(ev.Video)
		if err != nil {
			return err
		}
		call := &model.Call{ID: id, Direction: dir, State: state, VideoState: vs}
		if ev.LowBattery != nil {
			call.Details.LowBattery = *ev.LowBattery
		}
		if ev.VoiceDowngrade != nil {
			call.Details.VoiceDowngradeCapable = *ev.VoiceDowngrade
		}
		stack.Directory.Add(call)
	case "answer":
		call := stack.Directory.Get(id)
		if call == nil {
			return fmt.Errorf("answer: unknown call %q", ev.Call)
		}
		vs, err := parseVideoState(ev.Video)
		if err != nil {
			return err
		}
		if !stack.Coordinator.HandleAnswerIncomingCall(call, vs) {
			stack.Telecom.Answer(id, vs)
		}
	case "upgrade":
		call := stack.Directory.Get(id)
		if call == nil {
			return fmt.Errorf("upgrade: unknown call %q", ev.Call)
		}
		if !stack.Coordinator.OnChangeToVideoCall(call) {
			stack.Directory.SetVideoState(id, model.VideoStateBidirectional)
			stack.Directory.SetSessionState(id, model.SessionNoRequest)
		}
	case "session":
		state, err := parseSessionState(ev.Session)
		if err != nil {
			return err
		}
		stack.Directory.SetSessionState(id, state)
	case "details":
		call := stack.Directory.Get(id)
		if call == nil {
			return fmt.Errorf("details: unknown call %q", ev.Call)
		}
		d := call.Details
		if ev.LowBattery != nil {
			d.LowBattery = *ev.LowBattery
		}
		if ev.VoiceDowngrade != nil {
			d.VoiceDowngradeCapable = *ev.VoiceDowngrade
		}
		stack.Directory.SetDetails(id, d)
	case "state":
		state, err := parseState(ev.State)
		if err != nil {
			return err
		}
		stack.Directory.SetState(id, state)
	case "ui":
		stack.Host.SetVisible(ev.Showing, ev.Reconfig)
		stack.Coordinator.OnUIShowing(ev.Showing)
	case "host_destroyed":
		stack.Coordinator.OnHostDestroyed()
		stack.Host.SetVisible(false, false)
	case "choose":
		choice, err := parseChoice(ev.Choice)
		if err != nil {
			return err
		}
		stack.Gate.Choose(choice)
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
	return nil
}

func describeEvent(ev scenarioEvent) string {
	switch ev.Op {
	case "add":
		return fmt.Sprintf("event add %s (%s %s %s)", ev.Call, ev.Direction, ev.State, ev.Video)
	case "choose":
		return fmt.Sprintf("event choose %s", ev.Choice)
	case "ui":
		return fmt.Sprintf("event ui showing=%v reconfig=%v", ev.Showing, ev.Reconfig)
	case "host_destroyed":
		return "event host_destroyed"
	}
	return fmt.Sprintf("event %s %s", ev.Op, ev.Call)
}

func parseDirection(s string) (model.Direction, error) {
	switch s {
	case "incoming":
		return model.DirectionIncoming, nil
	case "outgoing":
		return model.DirectionOutgoing, nil
	case "", "neither":
		return model.DirectionNeither, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func parseState(s string) (model.CallState, error) {
	switch s {
	case "incoming":
		return model.StateIncoming, nil
	case "call_waiting":
		return model.StateCallWaiting, nil
	case "connecting":
		return model.StateConnecting, nil
	case "dialing":
		return model.StateDialing, nil
	case "active":
		return model.StateActive, nil
	case "on_hold":
		return model.StateOnHold, nil
	case "disconnecting":
		return model.StateDisconnecting, nil
	case "disconnected":
		return model.StateDisconnected, nil
	}
	return 0, fmt.Errorf("unknown call state %q", s)
}

func parseVideoState(s string) (model.VideoState, error) {
	switch s {
	case "", "audio":
		return model.VideoStateAudioOnly, nil
	case "tx":
		return model.VideoStateTxEnabled, nil
	case "rx":
		return model.VideoStateRxEnabled, nil
	case "bidirectional":
		return model.VideoStateBidirectional, nil
	case "paused":
		return model.VideoStateBidirectional | model.VideoStatePaused, nil
	}
	return 0, fmt.Errorf("unknown video state %q", s)
}

func parseSessionState(s string) (model.SessionModificationState, error) {
	switch s {
	case "none":
		return model.SessionNoRequest, nil
	case "received_upgrade":
		return model.SessionReceivedUpgradeRequest, nil
	case "waiting":
		return model.SessionWaitingForResponse, nil
	case "request_failed":
		return model.SessionRequestFailed, nil
	case "upgrade_failed":
		return model.SessionUpgradeFailed, nil
	}
	return 0, fmt.Errorf("unknown session state %q", s)
}

func parseChoice(s string) (engine.Choice, error) {
	switch s {
	case "positive":
		return engine.ChoicePositive, nil
	case "negative":
		return engine.ChoiceNegative, nil
	case "cancel":
		return engine.ChoiceCancel, nil
	}
	return 0, fmt.Errorf("unknown choice %q", s)
}
