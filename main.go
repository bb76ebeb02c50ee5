package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-pianoroll/config"
	"go-pianoroll/debug"
)

var (
	configPath string
	debugLog   bool
	tempo      int
	format     string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "go-pianoroll",
		Short: "Piano-roll step sequencer for MIDI keyboards and synths",
		Long: `go-pianoroll plays 64 patterns of monophonic notes out of a MIDI port.
Notes are painted in a terminal piano roll or recorded from a keyboard.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runEdit,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.config/go-pianoroll/config.json)")
	flags.BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/go-pianoroll/debug.log")
	flags.IntVar(&tempo, "tempo", 0, "tempo in BPM (overrides config)")
	flags.StringVar(&format, "format", "", "project save format: json or yaml (overrides config)")

	rootCmd.AddCommand(editCmd, playCmd, exportCmd, portsCmd, projectsCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if tempo != 0 {
		cfg.Tempo = tempo
	}
	if format != "" {
		cfg.Projects.Format = format
	}
	cfg.Normalize()

	if debugLog {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		cobra.OnFinalize(debug.Disable)
	}
	debug.Log("main", "config: rate=%d tempo=%d channel=%d", cfg.SampleRate, cfg.Tempo, cfg.MIDI.Channel)
	return nil
}
