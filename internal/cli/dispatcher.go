package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/treykane/sshh/internal/appconfig"
	"github.com/treykane/sshh/internal/history"
	"github.com/treykane/sshh/internal/model"
	"github.com/treykane/sshh/internal/picker"
	"github.com/treykane/sshh/internal/security"
	"github.com/treykane/sshh/internal/sshclient"
	"github.com/treykane/sshh/internal/store"
	"github.com/treykane/sshh/internal/ui"
	"github.com/treykane/sshh/internal/util"
)

// Op is one of the mutually exclusive operations.
type Op int

const (
	OpDefault Op = iota
	OpAdd
	OpName
	OpRemove
	OpDescribe
	OpSearch
)

// Request is a resolved invocation: the operation and its argument.
type Request struct {
	Op  Op
	Arg string
}

// Terminal is the interactive side the dispatcher needs.
type Terminal interface {
	ui.Chooser
	ui.Prompter
}

// Launcher starts an interactive session for a connection.
type Launcher interface {
	Launch(ctx context.Context, conn model.Connection) error
}

// Deps are the collaborators of a Dispatcher.
type Deps struct {
	Store    store.Repository
	Terminal Terminal
	Launcher Launcher
	Settings appconfig.Config
	Out      io.Writer
	// Home is where the directory picker starts.
	Home string
	// Recent orders the default menu by last launch instead of by name.
	Recent bool
}

// Dispatcher runs the operations against the hosts record.
type Dispatcher struct {
	store    store.Repository
	term     Terminal
	launcher Launcher
	picker   *picker.Picker
	settings appconfig.Config
	out      ui.Printer
	home     string
	recent   bool
}

func NewDispatcher(d Deps) *Dispatcher {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	return &Dispatcher{
		store:    d.Store,
		term:     d.Terminal,
		launcher: d.Launcher,
		picker:   picker.New(d.Terminal),
		settings: d.Settings,
		out:      ui.NewPrinter(out),
		home:     d.Home,
		recent:   d.Recent,
	}
}

// Run executes req.
func (d *Dispatcher) Run(ctx context.Context, req Request) error {
	switch req.Op {
	case OpAdd:
		return d.Add(ctx, req.Arg)
	case OpName:
		return d.RunByName(ctx, req.Arg)
	case OpRemove:
		_, err := d.Remove(req.Arg)
		return err
	case OpDescribe:
		_, err := d.Describe(req.Arg)
		return err
	case OpSearch:
		_, err := d.Search(req.Arg)
		return err
	default:
		return d.Default(ctx)
	}
}

// Add registers name, asking for the host, user and key file. The record is
// saved before the optional launch.
func (d *Dispatcher) Add(ctx context.Context, name string) error {
	rec, err := d.store.Load()
	if err != nil {
		return err
	}
	if err := d.ensurePemDirectory(&rec); err != nil {
		return err
	}

	files, err := pemFiles(rec.PemDirectory, d.settings.PemExtensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &UserError{
			Kind:    ErrPemDirEmpty,
			Message: fmt.Sprintf("No pem files found in %s", rec.PemDirectory),
		}
	}

	ip, err := d.term.Input("Enter the IP:", "")
	if err != nil {
		return err
	}
	user, err := d.term.Input("Enter the user:", d.settings.DefaultUser)
	if err != nil {
		return err
	}
	i, err := d.term.Choose(fmt.Sprintf("Choose the pem file for %s", name), files)
	if err != nil {
		return err
	}
	conn := model.Connection{
		PemPath: filepath.Join(rec.PemDirectory, files[i]),
		User:    util.DefaultString(user, d.settings.DefaultUser),
		Host:    ip,
	}

	write := true
	if _, exists := rec.Names[name]; exists {
		write, err = ui.Confirm(d.term, "The friendly name you entered already exists, do you want to overwrite it?")
		if err != nil {
			return err
		}
	}
	if write {
		rec.Names[name] = conn
		if err := d.store.Save(rec); err != nil {
			return fmt.Errorf("save hosts: %w", err)
		}
		slog.Info("saved host", "name", name, "destination", conn.Destination())
		d.out.Success("Saved %s: %s", name, conn.Command())
		d.reportKey(conn)
	}

	yes, err := ui.Confirm(d.term, fmt.Sprintf("Do you want to ssh into %s?", name))
	if err != nil {
		return err
	}
	if yes {
		return d.launch(ctx, name, rec.Names[name])
	}
	return nil
}

// ensurePemDirectory runs the directory picker once, the first time a key
// file is needed, and persists the result.
func (d *Dispatcher) ensurePemDirectory(rec *model.Record) error {
	if rec.HasPemDirectory() {
		return nil
	}
	dir, err := d.picker.Pick("Navigate to the folder where you are storing your pem files", d.home)
	if err != nil {
		return err
	}
	rec.PemDirectory = dir
	if err := d.store.Save(*rec); err != nil {
		return fmt.Errorf("save pem directory: %w", err)
	}
	slog.Info("pem directory set", "path", dir)
	return nil
}

// RunByName launches a saved connection.
func (d *Dispatcher) RunByName(ctx context.Context, name string) error {
	rec, err := d.store.Load()
	if err != nil {
		return err
	}
	conn, ok := rec.Names[name]
	if !ok {
		return nameNotFound(name)
	}
	return d.launch(ctx, name, conn)
}

// Remove deletes name and returns the connection it held.
func (d *Dispatcher) Remove(name string) (model.Connection, error) {
	rec, err := d.store.Load()
	if err != nil {
		return model.Connection{}, err
	}
	conn, ok := rec.Names[name]
	if !ok {
		return model.Connection{}, nameNotFound(name)
	}
	delete(rec.Names, name)
	if err := d.store.Save(rec); err != nil {
		return model.Connection{}, fmt.Errorf("save hosts: %w", err)
	}
	if err := history.Forget(name); err != nil {
		slog.Warn("failed to update history", "name", name, "error", err)
	}
	d.out.Success("Removed %s", name)
	d.out.Plain("%s", conn.Command())
	return conn, nil
}

// Describe prints the user, host and key file saved under name.
func (d *Dispatcher) Describe(name string) (model.Connection, error) {
	rec, err := d.store.Load()
	if err != nil {
		return model.Connection{}, err
	}
	conn, ok := rec.Names[name]
	if !ok {
		return model.Connection{}, nameNotFound(name)
	}
	if !conn.Structured() {
		return model.Connection{}, &UserError{
			Kind:    sshclient.ErrMalformedCommand,
			Message: fmt.Sprintf("Cannot describe %s, the saved command is not in the form ssh -i <pem file> <user>@<ip>: %s", name, conn.Command()),
		}
	}
	d.out.Field("User:", util.EmptyDash(conn.User))
	d.out.Field("IP:", util.EmptyDash(conn.Host))
	d.out.Field("Pem file:", util.EmptyDash(conn.PemFile()))
	d.out.Field("Command:", conn.Command())
	d.reportKey(conn)
	return conn, nil
}

// Search prints the saved names matching pattern. "." matches everything;
// any other pattern is a regular expression that must match at the start of
// the name.
func (d *Dispatcher) Search(pattern string) ([]string, error) {
	rec, err := d.store.Load()
	if err != nil {
		return nil, err
	}
	matches, err := matchNames(rec.SortedNames(), pattern)
	if err != nil {
		return nil, err
	}
	for _, n := range matches {
		d.out.Plain("%s", n)
	}
	return matches, nil
}

func matchNames(names []string, pattern string) ([]string, error) {
	if pattern == "." {
		return names, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	var out []string
	for _, n := range names {
		if loc := re.FindStringIndex(n); loc != nil && loc[0] == 0 {
			out = append(out, n)
		}
	}
	return out, nil
}

// Default lets the user pick a saved name from a menu and launches it.
func (d *Dispatcher) Default(ctx context.Context) error {
	rec, err := d.store.Load()
	if err != nil {
		return err
	}
	if len(rec.Names) == 0 {
		d.out.Success("No ssh instances configured, exiting...")
		return nil
	}
	names := rec.SortedNames()
	if d.recent {
		lastUsed, err := history.LastUsed()
		if err != nil {
			slog.Warn("failed to read history", "error", err)
		} else {
			names = history.SortRecent(names, lastUsed)
		}
	}
	i, err := d.term.Choose("Choose the ssh instance name", names)
	if err != nil {
		return err
	}
	return d.launch(ctx, names[i], rec.Names[names[i]])
}

func (d *Dispatcher) launch(ctx context.Context, name string, conn model.Connection) error {
	if err := history.Touch(name); err != nil {
		slog.Warn("failed to update history", "name", name, "error", err)
	}
	d.out.Info("Connecting to %s (%s)", name, conn.Label())
	if err := d.launcher.Launch(ctx, conn); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}
	return nil
}

func (d *Dispatcher) reportKey(conn model.Connection) {
	if conn.PemPath == "" {
		return
	}
	report := security.AuditKeyFile(conn.PemPath)
	for _, f := range report.Findings {
		d.out.Warn("%s: %s (%s)", f.Target, f.Message, f.Recommendation)
	}
	if report.HasHigh() {
		d.out.Error("ssh will not be able to use %s until this is fixed", conn.PemFile())
	}
}

// pemFiles lists the regular files in dir with one of the given extensions,
// sorted by name.
func pemFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = []string{util.DefaultPemExtension}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", picker.ErrDirectoryUnreadable, dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !util.HasAnySuffix(e.Name(), exts) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}
