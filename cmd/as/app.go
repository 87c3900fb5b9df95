package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/activitystream/internal/datasource"
	"github.com/vanderheijden86/activitystream/pkg/config"
	"github.com/vanderheijden86/activitystream/pkg/debug"
	"github.com/vanderheijden86/activitystream/pkg/export"
	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/ui"
)

// envDBPath names the environment variable that points at a history database.
const envDBPath = "AS_HISTORY_DB"

// defaultRobotWidth is used when stdout is not a terminal.
const defaultRobotWidth = 80

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// openStore picks the database from the flag, the environment, the config
// and the XDG default, in that order. Robot mode never creates a database.
func openStore(cfg config.Config, flagPath string, readOnly bool) (*datasource.Store, datasource.DataSource, error) {
	discovery := datasource.DiscoveryOptions{
		FlagPath:    flagPath,
		EnvPath:     os.Getenv(envDBPath),
		ConfigPath:  cfg.Storage.DBPath,
		DefaultPath: config.DefaultDBPath(),
		Logger:      func(msg string) { debug.Log("%s", msg) },
	}
	opts := datasource.DefaultOptions()
	opts.ReadOnly = readOnly
	return datasource.OpenDiscovered(discovery, opts)
}

func browserOptions(cfg config.Config, store *datasource.Store, dbPath string) []ui.BrowserOption {
	opts := []ui.BrowserOption{
		ui.WithRecorder(store),
		ui.WithDatabaseLabel(dbPath),
	}
	if !cfg.UI.OpenInBrowser {
		opts = append(opts, ui.WithOpener(nil))
	}
	return opts
}

// robotWidth returns the flag value, else the terminal width, else 80.
func robotWidth(flagWidth int) int {
	if flagWidth > 0 {
		return flagWidth
	}
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return defaultRobotWidth
}

func runRobotPanel(store *datasource.Store, cfg config.Config, width int, w io.Writer) error {
	panel := ui.NewPanel(store, ui.WithConfig(cfg))
	panel.SetSize(width, 24)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := export.Load(ctx, panel); err != nil {
		return err
	}

	snap := export.Snapshot(panel, export.Options{
		Database:       store.Path(),
		IncludeMetrics: true,
	})
	return export.Write(w, snap)
}

func runRecord(store *datasource.Store, rawURL, title string) error {
	target := ui.NormalizeLocation(rawURL)
	if target == "" {
		return errors.New("empty url")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ui.DefaultQueryTimeout)
	defer cancel()
	if err := store.RecordVisit(ctx, target, title, model.VisitTyped); err != nil {
		return err
	}
	fmt.Printf("Recorded %s\n", target)
	return nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirmImport asks before writing n entries into path.
func confirmImport(n int, path string) (bool, error) {
	proceed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Import %d sites into %s?", n, path)).
				Value(&proceed).
				Affirmative("Import").
				Negative("Cancel"),
		),
	).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return false, err
	}
	return proceed, nil
}

func runImport(store *datasource.Store, path string, skipConfirm bool, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := datasource.DecodeImport(f)
	if err != nil {
		return err
	}

	if !skipConfirm {
		ok, err := confirmImport(len(entries), store.Path())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Import cancelled")
			return nil
		}
	}

	res, err := store.Import(context.Background(), entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d sites (%d visits, %d skipped)\n", res.Sites, res.Visits, res.Skipped)
	return nil
}
