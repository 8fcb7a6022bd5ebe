// Package cmd contains the helpers shared by the autorec commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/report"
	"gopkg.in/yaml.v3"
)

// NewLogger creates a logger writing text to w at the named level.
func NewLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log, nil
}

// LoadSettingsFile reads settings from a YAML file; an empty path gives the
// defaults.
func LoadSettingsFile(path string) (autorec.Settings, error) {
	if path == "" {
		return autorec.DefaultSettings(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return autorec.Settings{}, fmt.Errorf("could not open settings: %w", err)
	}
	defer f.Close()
	return autorec.LoadSettings(f)
}

// WriteCurves writes the automation of params to w as text, json or yaml.
func WriteCurves(w io.Writer, format string, params []*autorec.Parameter) error {
	r, err := report.New()
	if err != nil {
		return err
	}
	switch format {
	case "text", "":
		return r.Write(w, params)
	case "json":
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r.Entries(params), "", "  ")
		if err != nil {
			return fmt.Errorf("could not marshal curves: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.Entries(params)); err != nil {
			return fmt.Errorf("could not marshal curves: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
