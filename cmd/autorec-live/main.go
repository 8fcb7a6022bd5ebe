package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/cmd"
	"github.com/vsariola/autorec/midiin"
	"github.com/vsariola/autorec/oscin"
	"github.com/vsariola/autorec/oto"
	"github.com/vsariola/autorec/recorder"
	"github.com/vsariola/autorec/version"
	"gopkg.in/yaml.v3"
)

// session is the layout of the file given to autorec-live.
type session struct {
	Loop       *autorec.Range            `yaml:"loop,omitempty"`
	Parameters []autorec.ParameterConfig `yaml:"parameters"`
	MIDI       []midiin.Mapping          `yaml:"midi,omitempty"`
	Monitor    string                    `yaml:"monitor,omitempty"`
}

var config struct {
	settings  string
	oscAddr   string
	midiPort  string
	noAudio   bool
	format    string
	logLevel  string
	listPorts bool
}

var rootCmd = &cobra.Command{
	Use:   "autorec-live [session.yml]",
	Short: "Record automation live from MIDI and OSC controllers",
	Long: `autorec-live records parameter automation from MIDI control changes
and OSC messages while an audio-clocked transport plays. Transport is
controlled over OSC (/transport/play, /transport/loop, /transport/locate).
Press Ctrl-C to stop; the recorded curves are printed on exit.`,
	Version: version.VersionOrHash,
	Args:    cobra.MaximumNArgs(1),
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVarP(&config.settings, "settings", "s", "",
		"YAML file with engine settings (default: built-in defaults)")
	rootCmd.Flags().StringVar(&config.oscAddr, "osc", ":9000",
		"UDP address to receive OSC on (empty disables)")
	rootCmd.Flags().StringVar(&config.midiPort, "midi", "",
		"Open the first MIDI input whose name starts with this prefix")
	rootCmd.Flags().BoolVar(&config.listPorts, "list-midi", false,
		"List the MIDI inputs and exit")
	rootCmd.Flags().BoolVar(&config.noAudio, "no-audio", false,
		"Advance the transport with the system clock instead of an audio device")
	rootCmd.Flags().StringVarP(&config.format, "format", "f", "text",
		"Output format: text, json or yaml")
	rootCmd.Flags().StringVarP(&config.logLevel, "log-level", "l", "info",
		"Log level: debug, info, warning or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(c *cobra.Command, args []string) error {
	if config.listPorts {
		ports, err := midiin.Ports()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(c.OutOrStdout(), p)
		}
		return nil
	}
	log, err := cmd.NewLogger(c.ErrOrStderr(), config.logLevel)
	if err != nil {
		return err
	}
	settings, err := cmd.LoadSettingsFile(config.settings)
	if err != nil {
		return err
	}
	var sess session
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open session: %w", err)
		}
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		err = dec.Decode(&sess)
		f.Close()
		if err != nil {
			return fmt.Errorf("could not decode session: %w", err)
		}
	}

	broker := recorder.NewBroker()
	clock := oto.NewClock(broker)
	if sess.Loop != nil {
		clock.SetLoop(*sess.Loop)
	}
	manager := recorder.NewManager(clock, recorder.WithSettings(settings), recorder.WithLogger(log))
	manager.AddListener(broker.Monitor(clock))

	params := make([]*autorec.Parameter, 0, len(sess.Parameters))
	byName := make(map[string]*autorec.Parameter)
	for _, cfg := range sess.Parameters {
		p, err := autorec.NewParameter(cfg)
		if err != nil {
			return err
		}
		params = append(params, p)
		byName[p.Name()] = p
		manager.Register(p)
	}
	lookup := func(name string) (*autorec.Parameter, bool) {
		p, ok := byName[name]
		return p, ok
	}
	if sess.Monitor != "" {
		p, ok := lookup(sess.Monitor)
		if !ok {
			return fmt.Errorf("monitor: unknown parameter %q", sess.Monitor)
		}
		clock.SetMonitor(p)
	}

	if config.noAudio {
		stop := runSystemClock(clock)
		defer stop()
	} else {
		audio, err := oto.NewContext(clock)
		if err != nil {
			return err
		}
		defer audio.Close()
	}

	if config.oscAddr != "" {
		server := oscin.NewServer(broker, log)
		for _, p := range params {
			if err := server.AddParameter(p); err != nil {
				return err
			}
		}
		go func() {
			if err := server.ListenAndServe(config.oscAddr); err != nil {
				log.WithError(err).Error("osc server stopped")
			}
		}()
		defer server.Close()
	}

	if config.midiPort != "" || len(sess.MIDI) > 0 {
		router := midiin.NewRouter(broker, log)
		if err := router.Bind(sess.MIDI, lookup); err != nil {
			log.WithError(err).Warn("some MIDI mappings were ignored")
		}
		in, err := midiin.Open(config.midiPort, router)
		switch {
		case errors.Is(err, midiin.ErrNoDriver):
			log.WithError(err).Warn("MIDI input disabled")
		case err != nil:
			return err
		default:
			defer in.Close()
		}
	}

	go RunStatusLog(broker, log)
	go recorder.RunControlLoop(broker, manager, clock)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	log.Info("stopping")
	recorder.TrySend(broker.ToRecorder, any(recorder.PlayMsg{Playing: false}))
	recorder.TrySend(broker.CloseRecorder, struct{}{})
	select {
	case <-broker.FinishedRecorder:
	case <-time.After(5 * time.Second):
		log.Warn("control loop did not finish in time")
	}
	return cmd.WriteCurves(c.OutOrStdout(), config.format, params)
}

// runSystemClock advances the clock by the elapsed wall time until the
// returned function is called.
func runSystemClock(clock *oto.Clock) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				if clock.IsPlaying() {
					clock.Advance(now.Sub(last).Seconds())
				}
				last = now
			}
		}
	}()
	return func() { close(done) }
}
