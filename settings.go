package autorec

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Settings are the engine-wide options of the recording engine.
	Settings struct {
		// GlideLength is the length, in seconds, of the blend from the last
		// recorded value back to the pre-existing automation at punch-out.
		GlideLength float64 `yaml:"glide"`

		// SimplifyAfterRecording enables thinning of the recorded ranges at
		// punch-out.
		SimplifyAfterRecording bool `yaml:"simplify"`

		// SimplifyTimeTolerance: points closer than this (seconds) to a
		// neighbour are treated as jumps and never removed by simplify.
		SimplifyTimeTolerance float64 `yaml:"simplify-time-tolerance"`

		// SimplifyValueTolerance is the maximum allowed change of the curve
		// at any original keyframe, as a fraction of the parameter value
		// range.
		SimplifyValueTolerance float64 `yaml:"simplify-value-tolerance"`

		// FlushInterval is the period of the flush scheduler. Zero disables
		// the scheduler; FlushAutomation must then be called explicitly.
		FlushInterval time.Duration `yaml:"flush-interval"`

		// GestureTimeout is the inactivity time after which a value-driven
		// session gets a synthesized gesture end. Zero disables it.
		GestureTimeout time.Duration `yaml:"gesture-timeout"`

		// LoopWrapTolerance: the transport is considered to have wrapped
		// around the loop only when the position moved backwards by more
		// than this many seconds since the previous flush.
		LoopWrapTolerance float64 `yaml:"loop-wrap-tolerance"`

		// Strategy selects how buffered changes reach the curve.
		Strategy Strategy `yaml:"strategy"`
	}

	// Strategy selects the recording engine generation.
	Strategy string
)

const (
	// Incremental flushes the buffers periodically, splitting them at loop
	// seams.
	Incremental Strategy = "incremental"
	// WholeSession keeps everything buffered and writes it to the curve at
	// punch-out.
	WholeSession Strategy = "whole-session"
)

// DefaultSettings returns the settings used when nothing else is
// configured.
func DefaultSettings() Settings {
	return Settings{
		GlideLength:            0.05,
		SimplifyAfterRecording: true,
		SimplifyTimeTolerance:  0.002,
		SimplifyValueTolerance: 0.002,
		FlushInterval:          100 * time.Millisecond,
		GestureTimeout:         2 * time.Second,
		LoopWrapTolerance:      0,
		Strategy:               Incremental,
	}
}

// Validate checks the settings and returns all problems found.
func (s Settings) Validate() error {
	var errs []error
	if s.GlideLength < 0 {
		errs = append(errs, fmt.Errorf("%w: glide must not be negative, got %v", ErrInvalidSetting, s.GlideLength))
	}
	if s.SimplifyTimeTolerance < 0 || s.SimplifyValueTolerance < 0 {
		errs = append(errs, fmt.Errorf("%w: simplify tolerances must not be negative", ErrInvalidSetting))
	}
	if s.FlushInterval < 0 || s.GestureTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: durations must not be negative", ErrInvalidSetting))
	}
	if s.LoopWrapTolerance < 0 {
		errs = append(errs, fmt.Errorf("%w: loop-wrap-tolerance must not be negative", ErrInvalidSetting))
	}
	switch s.Strategy {
	case Incremental, WholeSession:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown strategy %q", ErrInvalidSetting, s.Strategy))
	}
	return errors.Join(errs...)
}

// settingKeys are the YAML keys of Settings.
var settingKeys = func() map[string]bool {
	ret := make(map[string]bool)
	t := reflect.TypeOf(Settings{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		ret[name] = true
	}
	return ret
}()

// UnmarshalYAML fills the fields missing from the input with the defaults.
// Unknown keys are rejected.
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if k := value.Content[i]; !settingKeys[k.Value] {
				return fmt.Errorf("%w: line %d: unknown key %q", ErrInvalidSetting, k.Line, k.Value)
			}
		}
	}
	type plain Settings
	p := plain(DefaultSettings())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Settings(p)
	return nil
}

// LoadSettings reads settings in YAML from r. Fields missing from the input
// keep their default values.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("could not decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
