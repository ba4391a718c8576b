// Package main is the entry point for the sshh binary.
//
// sshh stores ssh connections under short friendly names and launches them.
//
// Usage:
//
//	sshh                   # pick a saved host from a menu and connect
//	sshh -a prod           # save a new host as "prod"
//	sshh -n prod           # connect to "prod"
//	sshh -r prod           # forget "prod"
//	sshh -d prod           # show user, IP and pem file of "prod"
//	sshh -s '^web'         # list names starting with "web"
//
// The command tree lives in internal/cli.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/treykane/sshh/internal/cli"
	"github.com/treykane/sshh/internal/ui"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, ui.ErrAborted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
