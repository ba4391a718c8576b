package model

import (
	"path/filepath"
	"sort"
	"strings"
)

// Connection is one saved ssh target. The launch command is derived from it on
// demand instead of being stored as an opaque string.
//
// Raw holds a hand-written command kept from an older hosts file when it is
// not in the plain "ssh -i <key> <user>@<host>" form. It is launched and
// printed verbatim; the structured fields are filled only when they could be
// recovered from it.
type Connection struct {
	PemPath string `json:"pem_path"`
	User    string `json:"user"`
	Host    string `json:"host"`
	Raw     string `json:"command,omitempty"`
}

// Structured reports whether the key path and destination are known.
func (c Connection) Structured() bool {
	return c.Host != ""
}

// PemFile returns the key file name without its directory.
func (c Connection) PemFile() string {
	if c.PemPath == "" {
		return ""
	}
	return filepath.Base(c.PemPath)
}

// Destination renders user@host.
func (c Connection) Destination() string {
	if c.User == "" {
		return c.Host
	}
	return c.User + "@" + c.Host
}

// Command renders the classic connection command string, or the raw
// command when there is one.
func (c Connection) Command() string {
	if raw := strings.TrimSpace(c.Raw); raw != "" {
		return raw
	}
	return "ssh -i " + c.PemPath + " " + c.Destination()
}

// Label is the destination when known, otherwise the command.
func (c Connection) Label() string {
	if c.Structured() {
		return c.Destination()
	}
	return c.Command()
}

// Record is the whole persisted state: the pem directory and the saved names.
type Record struct {
	PemDirectory string                `json:"pem"`
	Names        map[string]Connection `json:"names"`
}

// NewRecord returns an empty record with an initialized name map.
func NewRecord() Record {
	return Record{Names: map[string]Connection{}}
}

func (r Record) HasPemDirectory() bool {
	return r.PemDirectory != ""
}

// SortedNames returns the friendly names in ascending order.
func (r Record) SortedNames() []string {
	names := make([]string, 0, len(r.Names))
	for n := range r.Names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
