package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

var (
	record     bool
	outPath    string
	pattern    int
	saveFile   string
	watchPorts bool

	editCmd = &cobra.Command{
		Use:   "edit [project]",
		Short: "Open a project in the piano roll (default command)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEdit,
	}

	playCmd = &cobra.Command{
		Use:   "play [project]",
		Short: "Play a project headless, recording from the keyboard if armed",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}

	exportCmd = &cobra.Command{
		Use:   "export [project]",
		Short: "Write one pattern of a project as a Standard MIDI File",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}

	portsCmd = &cobra.Command{
		Use:   "ports",
		Short: "List MIDI ports",
		RunE:  runPorts,
	}
)

func init() {
	playCmd.Flags().BoolVar(&record, "record", false, "arm recording at the next pattern start")

	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "output .mid file (default <project>-<pattern>.mid)")
	exportCmd.Flags().IntVarP(&pattern, "pattern", "p", 1, "pattern to export, 1-64")
	exportCmd.Flags().StringVar(&saveFile, "save", "", "save file to load (default latest)")

	portsCmd.Flags().BoolVarP(&watchPorts, "watch", "w", false, "keep polling and report port changes")
}

// projectName picks the project from args, falling back to the last one
// edited.
func projectName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg.UI.LastProject != "" {
		return cfg.UI.LastProject
	}
	return "untitled"
}

func projectStore() (*sequencer.ProjectStore, error) {
	dir := cfg.Projects.Dir
	if dir == "" {
		var err error
		if dir, err = sequencer.DefaultProjectsDir(); err != nil {
			return nil, err
		}
	}
	return sequencer.NewProjectStore(dir), nil
}

// openManager creates a manager and restores the project's latest save, if
// it has one.
func openManager(store *sequencer.ProjectStore, project string) (*sequencer.Manager, error) {
	manager := sequencer.NewManager(cfg.SampleRate, cfg.Tempo)
	manager.SetClockDelay(cfg.ClockDelay)

	saves, err := store.ListSaves(project)
	if err != nil {
		return nil, err
	}
	if len(saves) == 0 {
		debug.Log("main", "new project %s", project)
		return manager, nil
	}
	state, err := store.Load(project, saves[0].Filename)
	if err != nil {
		return nil, err
	}
	manager.Restore(state)
	debug.Log("main", "loaded %s/%s", project, saves[0].Filename)
	return manager, nil
}

// connectOutput routes the manager's notes to the configured port
func connectOutput(manager *sequencer.Manager) string {
	if cfg.MIDI.OutputPort == "" {
		return "no output port configured"
	}
	send, err := midi.OpenOutput(cfg.MIDI.OutputPort)
	if err != nil {
		debug.Log("main", "output: %v", err)
		return err.Error()
	}
	manager.SetOutput(send)
	return "output: " + cfg.MIDI.OutputPort
}

func runEdit(cmd *cobra.Command, args []string) error {
	project := projectName(args)
	store, err := projectStore()
	if err != nil {
		return err
	}
	manager, err := openManager(store, project)
	if err != nil {
		return fmt.Errorf("open project %s: %w", project, err)
	}
	saveFormat, err := sequencer.ParseFormat(cfg.Projects.Format)
	if err != nil {
		return err
	}
	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	defer midi.CloseDriver()

	status := connectOutput(manager)
	manager.SetCapture(midi.NewCaptureState())
	deviceMgr := midi.NewDeviceManager(cfg.MIDI.InputFilter)
	go deviceMgr.Run(ctx)

	done := make(chan struct{})
	go func() {
		manager.Run(ctx, cfg.ChannelIndex())
		close(done)
	}()

	m := tui.NewModel(ctx, manager, theme.New(palette))
	m.DeviceMgr = deviceMgr
	m.Store = store
	m.Project = project
	m.Format = saveFormat
	debug.Log("main", "edit %s, %s", project, status)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()

	cancel()
	<-done

	cfg.UI.LastProject = project
	if err := saveConfig(); err != nil {
		debug.Log("main", "save config: %v", err)
	}
	return runErr
}

func saveConfig() error {
	if configPath != "" {
		return cfg.SaveTo(configPath)
	}
	return cfg.Save()
}

func runPlay(cmd *cobra.Command, args []string) error {
	project := projectName(args)
	store, err := projectStore()
	if err != nil {
		return err
	}
	manager, err := openManager(store, project)
	if err != nil {
		return fmt.Errorf("open project %s: %w", project, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	defer midi.CloseDriver()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, connectOutput(manager))

	manager.SetCapture(midi.NewCaptureState())
	if record {
		manager.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			t.ToggleRecording()
		})
	}

	deviceMgr := midi.NewDeviceManager(cfg.MIDI.InputFilter)
	go deviceMgr.Run(ctx)
	go func() {
		for event := range deviceMgr.Events() {
			switch event.Type {
			case midi.DeviceConnected:
				fmt.Fprintf(out, "keyboard connected: %s\n", event.ID)
				manager.SetMIDIInput(ctx, event.Controller)
			case midi.DeviceDisconnected:
				fmt.Fprintf(out, "keyboard disconnected: %s\n", event.ID)
				manager.ReleaseInput()
			}
		}
	}()

	fmt.Fprintf(out, "playing %s at %d BPM, ctrl+c to stop\n", project, manager.Tempo())
	manager.Run(ctx, cfg.ChannelIndex())

	if record {
		saveFormat, err := sequencer.ParseFormat(cfg.Projects.Format)
		if err != nil {
			return err
		}
		filename, err := store.Save(project, manager.State(), saveFormat)
		if err != nil {
			return fmt.Errorf("save recording: %w", err)
		}
		fmt.Fprintf(out, "saved %s/%s\n", project, filename)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	project := projectName(args)
	store, err := projectStore()
	if err != nil {
		return err
	}
	state, err := store.Load(project, saveFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", project, err)
	}

	engine := sequencer.NewEngine()
	sequencer.FromPersisted(engine, state)

	index := min(max(pattern, 1), sequencer.NumPatterns) - 1
	if outPath == "" {
		outPath = fmt.Sprintf("%s-%02d.mid", project, index+1)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := sequencer.ExportPattern(engine.Data, index, float64(cfg.Tempo), cfg.ChannelIndex(), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote pattern %d of %s to %s\n", index+1, project, outPath)
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	defer midi.CloseDriver()
	out := cmd.OutOrStdout()

	ins, outs, err := midi.PortNames()
	if err != nil {
		return fmt.Errorf("%w (on macOS: sudo killall coreaudiod midiserver)", err)
	}
	printPorts(out, ins, outs)
	if !watchPorts {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	last := strings.Join(ins, ",") + "|" + strings.Join(outs, ",")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ins, outs, err := midi.PortNames()
			if err != nil {
				debug.Log("ports", "poll: %v", err)
				continue
			}
			current := strings.Join(ins, ",") + "|" + strings.Join(outs, ",")
			if current == last {
				continue
			}
			last = current
			fmt.Fprintf(out, "\n[%s] ports changed\n", time.Now().Format("15:04:05"))
			printPorts(out, ins, outs)
		}
	}
}

func printPorts(out io.Writer, ins, outs []string) {
	fmt.Fprintln(out, "=== MIDI Input Ports ===")
	for i, name := range ins {
		fmt.Fprintf(out, "  %d: %s\n", i, name)
	}
	fmt.Fprintln(out, "\n=== MIDI Output Ports ===")
	for i, name := range outs {
		fmt.Fprintf(out, "  %d: %s\n", i, name)
	}
}
