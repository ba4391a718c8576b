// Package cli provides the command-line interface for sshh.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/treykane/sshh/internal/appconfig"
	"github.com/treykane/sshh/internal/security"
	"github.com/treykane/sshh/internal/sshclient"
	"github.com/treykane/sshh/internal/store"
	"github.com/treykane/sshh/internal/ui"
	"github.com/treykane/sshh/internal/util"
)

// interactiveFunc builds the terminal and launcher for a run. Tests swap it
// for fakes.
type interactiveFunc func(cfg appconfig.Config) (Terminal, Launcher)

func defaultInteractive(cfg appconfig.Config) (Terminal, Launcher) {
	return ui.NewTerminal(), sshclient.New(cfg.SSHBinary, cfg.LaunchMode)
}

type flags struct {
	add       string
	name      string
	remove    string
	describe  string
	search    string
	recent    bool
	verbose   bool
	hostsFile string
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultInteractive)
}

func newRootCommand(interactive interactiveFunc) *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           util.AppName,
		Short:         "An ssh helper when you have too many ssh hosts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			setupLogging(cfg, f.verbose)

			path := f.hostsFile
			if path == "" {
				if path, err = cfg.HostsFilePath(); err != nil {
					return err
				}
			}
			st := store.New(path)
			if err := st.Init(); err != nil {
				return fmt.Errorf("init hosts file: %w", err)
			}
			slog.Debug("using hosts file", "path", st.Path())
			for _, finding := range security.AuditHostsFile(st.Path(), filepath.Dir(st.Path())).Findings {
				slog.Warn("hosts file permissions", "severity", finding.Severity, "target", finding.Target, "message", finding.Message)
			}

			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home dir: %w", err)
			}
			term, launcher := interactive(cfg)
			d := NewDispatcher(Deps{
				Store:    st,
				Terminal: term,
				Launcher: launcher,
				Settings: cfg,
				Out:      cmd.OutOrStdout(),
				Home:     home,
				Recent:   f.recent,
			})

			err = d.Run(cmd.Context(), resolveRequest(cmd, f))
			var ue *UserError
			if errors.As(err, &ue) {
				ui.NewPrinter(cmd.OutOrStdout()).Error("%s", ue.Error())
				return nil
			}
			return err
		},
	}

	fl := root.Flags()
	fl.StringVarP(&f.add, "add", "a", "", "add a new ssh host under a friendly name")
	fl.StringVarP(&f.name, "name", "n", "", "connect to the host saved under a friendly name")
	fl.StringVarP(&f.remove, "remove", "r", "", "remove a friendly name")
	fl.StringVarP(&f.describe, "describe", "d", "", "show user, IP and pem file of a friendly name")
	fl.StringVarP(&f.search, "search", "s", "", "list friendly names matching a pattern (\".\" lists all)")
	fl.BoolVar(&f.recent, "recent", false, "order the host menu by most recent use")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fl.StringVar(&f.hostsFile, "hosts-file", "", "path to the hosts file (default: <config dir>/hosts.json)")
	return root
}

// resolveRequest picks the operation from the flags that were given, in the
// order add, name, remove, describe, search.
func resolveRequest(cmd *cobra.Command, f flags) Request {
	changed := cmd.Flags().Changed
	switch {
	case changed("add"):
		return Request{Op: OpAdd, Arg: f.add}
	case changed("name"):
		return Request{Op: OpName, Arg: f.name}
	case changed("remove"):
		return Request{Op: OpRemove, Arg: f.remove}
	case changed("describe"):
		return Request{Op: OpDescribe, Arg: f.describe}
	case changed("search"):
		return Request{Op: OpSearch, Arg: f.search}
	default:
		return Request{Op: OpDefault}
	}
}

func setupLogging(cfg appconfig.Config, verbose bool) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
