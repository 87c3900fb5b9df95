package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/activitystream/pkg/debug"
	"github.com/vanderheijden86/activitystream/pkg/ui"
	"github.com/vanderheijden86/activitystream/pkg/version"
	"github.com/vanderheijden86/activitystream/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	dbPath := flag.String("db", "", "History database path (overrides AS_HISTORY_DB and config)")
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")
	width := flag.Int("width", 0, "Panel width in columns for --robot-panel (default: terminal width or 80)")
	robotPanel := flag.Bool("robot-panel", false, "Print the home panel as JSON and exit")
	importPath := flag.String("import", "", "Import a JSON history export into the database")
	yesFlag := flag.Bool("yes", false, "Skip confirmation prompts (use with --import)")
	recordURL := flag.String("record", "", "Record a typed visit to URL and exit")
	recordTitle := flag.String("title", "", "Page title for --record")
	noWatch := flag.Bool("no-watch", false, "Disable live reload when the database changes")
	flag.Parse()

	if *help {
		fmt.Println("Usage: as [options]")
		fmt.Println("\nA terminal home screen for your browsing history.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("as %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	store, source, err := openStore(cfg, *dbPath, *robotPanel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	debug.Log("using %s", source)

	switch {
	case *importPath != "":
		if err := runImport(store, *importPath, *yesFlag, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		return

	case *recordURL != "":
		if err := runRecord(store, *recordURL, *recordTitle); err != nil {
			fmt.Fprintf(os.Stderr, "Record failed: %v\n", err)
			os.Exit(1)
		}
		return

	case *robotPanel:
		if err := runRobotPanel(store, cfg, robotWidth(*width), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	panel := ui.NewPanel(store, ui.WithConfig(cfg))
	opts := browserOptions(cfg, store, source.Path)

	if cfg.WatchEnabled() && !*noWatch {
		w, err := watcher.NewWatcher(store.Path())
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	if err := runTUIProgram(ui.NewBrowser(panel, opts...)); err != nil {
		fmt.Printf("Error running as: %v\n", err)
		os.Exit(1)
	}
}

func runTUIProgram(m ui.Browser) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set AS_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("AS_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
