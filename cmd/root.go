package cmd

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/vtguard/calls"
	"github.com/ftahirops/vtguard/config"
	"github.com/ftahirops/vtguard/engine"
	"github.com/ftahirops/vtguard/ui"
)

// Version is set at build time via ldflags.
var Version = "0.3.0"

func printUsage() {
	fmt.Fprintf(os.Stderr, `vtguard v%s — battery-aware video call safeguard

Usage:
  vtguard [OPTIONS]

Modes:
  (default)         Interactive call simulator (bubbletea, fullscreen)
  -scenario FILE    Replay a JSONL call scenario headlessly, printing decisions
  -version          Print version and exit

Options:
  -journal PATH     Record episodes to a sqlite journal at PATH
  -metrics ADDR     Serve Prometheus metrics on ADDR (e.g. 127.0.0.1:9121)
  -webhook URL      POST enforced safeguard outcomes to URL
  -no-tone          Disable the upgrade request tone
  -init-config      Write the effective settings to the config file and exit

Defaults come from ~/.config/vtguard/config.json when present; flags win.

Examples:
  vtguard                                  Interactive simulator
  vtguard -journal ~/.vtguard/episodes.db  Simulator with a persistent journal
  vtguard -metrics 127.0.0.1:9121          Expose episode counters
  vtguard -scenario testdata/upgrade.jsonl Replay a scenario, print decisions
  vtguard -version
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	cfg := config.Load()

	var (
		scenarioPath string
		journalPath  string
		metricsAddr  string
		webhook      string
		noTone       bool
		initConfig   bool
		showVersion  bool
	)

	flag.StringVar(&scenarioPath, "scenario", "", "Replay a JSONL call scenario headlessly")
	flag.StringVar(&journalPath, "journal", cfg.JournalPath, "Path to the sqlite episode journal")
	flag.StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&webhook, "webhook", cfg.Notify.Webhook, "Webhook URL for enforced outcomes")
	flag.BoolVar(&noTone, "no-tone", !cfg.ToneEnabled, "Disable the upgrade request tone")
	flag.BoolVar(&initConfig, "init-config", false, "Write the effective settings to the config file and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Printf("vtguard v%s\n", Version)
		return nil
	}

	if initConfig {
		cfg.JournalPath = journalPath
		cfg.Notify.Webhook = webhook
		cfg.ToneEnabled = !noTone
		if metricsAddr != "" {
			cfg.Prometheus.Enabled = true
			cfg.Prometheus.Addr = metricsAddr
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("wrote %s\n", config.Path())
		return nil
	}

	if metricsAddr == "" && cfg.Prometheus.Enabled {
		metricsAddr = cfg.Prometheus.Addr
	}
	if metricsAddr != "" {
		go engine.ServeMetrics(metricsAddr)
	}

	stack, err := buildStack(stackOptions{
		JournalPath: journalPath,
		Webhook:     webhook,
		Command:     cfg.Notify.Command,
		Tone:        !noTone,
	})
	if err != nil {
		return err
	}
	defer stack.Close()

	if scenarioPath != "" {
		return runScenario(stack, scenarioPath)
	}

	model := ui.NewModel(ui.Deps{
		Directory:   stack.Directory,
		Tracker:     stack.Tracker,
		Host:        stack.Host,
		Telecom:     stack.Telecom,
		Gate:        stack.Gate,
		Coordinator: stack.Coordinator,
		Journal:     stack.Journal,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type stackOptions struct {
	JournalPath string
	Webhook     string
	Command     string
	Tone        bool
}

// Stack is the fully wired safeguard: directory, coordinator and the
// simulator adapters around them.
type Stack struct {
	Directory   *calls.Directory
	Tracker     *calls.PrimaryCallTracker
	Host        *calls.SimHost
	Telecom     *calls.SimTelecom
	Gate        *engine.Presenter
	Coordinator *engine.Coordinator
	Journal     *engine.Journal
}

func buildStack(opts stackOptions) (*Stack, error) {
	directory := calls.NewDirectory()
	tracker := calls.NewPrimaryCallTracker(directory)
	host := calls.NewSimHost()
	telecom := calls.NewSimTelecom(directory)
	gate := engine.NewPresenter(nil)

	var journal *engine.Journal
	if opts.JournalPath != "" {
		j, err := engine.OpenJournal(opts.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		journal = j
	}

	var notifier *engine.Notifier
	if opts.Webhook != "" || opts.Command != "" {
		notifier = engine.NewNotifier(engine.NotifyConfig{
			Webhook: opts.Webhook,
			Command: opts.Command,
		})
	}

	var tone calls.TonePlayer
	if opts.Tone {
		tone = engine.NewAsyncTonePlayer(nil)
	}

	coord := engine.NewCoordinator(engine.CoordinatorConfig{
		Directory: directory,
		Tracker:   tracker,
		Host:      host,
		Telecom:   telecom,
		Audio:     calls.SimAudioRouter{},
		Gate:      gate,
		Journal:   journal,
		Notifier:  notifier,
		Tone:      tone,
	})
	coord.Attach(directory)

	return &Stack{
		Directory:   directory,
		Tracker:     tracker,
		Host:        host,
		Telecom:     telecom,
		Gate:        gate,
		Coordinator: coord,
		Journal:     journal,
	}, nil
}

// Close releases stack resources.
func (s *Stack) Close() {
	s.Coordinator.Detach(s.Directory)
	if s.Journal != nil {
		s.Journal.Close()
	}
}
