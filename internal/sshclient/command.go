package sshclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/treykane/sshh/internal/model"
)

// ErrMalformedCommand is returned when a stored command string does not follow
// the "ssh -i <dir>/<file> <user>@<host>" layout.
var ErrMalformedCommand = errors.New("malformed connection command")

// Build formats the classic connection command for a key file inside pemDir.
//
// The layout is fixed so Describe can take it apart again: the last
// whitespace-separated token is user@ip and the one before it is the key path.
// None of the parts may contain whitespace, and user may not contain "@";
// Build does not validate this.
func Build(pemDir, pemFile, user, ip string) string {
	return fmt.Sprintf("ssh -i %s/%s %s@%s", strings.TrimSuffix(pemDir, "/"), pemFile, user, ip)
}

// Describe recovers user, ip and pem file name from a command made by Build.
func Describe(command string) (user, ip, pemFile string, err error) {
	conn, err := ParseCommand(command)
	if err != nil {
		return "", "", "", err
	}
	return conn.User, conn.Host, conn.PemFile(), nil
}

// ParseCommand turns a legacy command string into a structured connection.
// The destination is the last word. The key path follows "-i" when present,
// otherwise it is the word before the destination. Other options are not
// represented in the result.
func ParseCommand(command string) (model.Connection, error) {
	fields := strings.Fields(command)
	if len(fields) < 2 {
		return model.Connection{}, fmt.Errorf("%w: %q", ErrMalformedCommand, command)
	}
	dest := fields[len(fields)-1]
	at := strings.LastIndex(dest, "@")
	if at <= 0 || at == len(dest)-1 {
		return model.Connection{}, fmt.Errorf("%w: missing user@host in %q", ErrMalformedCommand, command)
	}
	pemPath := fields[len(fields)-2]
	for i := 1; i < len(fields)-2; i++ {
		if fields[i] == "-i" {
			pemPath = fields[i+1]
			break
		}
	}
	if !strings.Contains(pemPath, "/") {
		return model.Connection{}, fmt.Errorf("%w: missing key path in %q", ErrMalformedCommand, command)
	}
	return model.Connection{
		PemPath: pemPath,
		User:    dest[:at],
		Host:    dest[at+1:],
	}, nil
}

// Args returns the argv passed to the ssh binary for conn. The arguments go
// straight to exec, never through a shell. A raw command is split on
// whitespace and its first word dropped; see Binary.
func Args(conn model.Connection) []string {
	if fields := strings.Fields(conn.Raw); len(fields) > 0 {
		return fields[1:]
	}
	var args []string
	if conn.PemPath != "" {
		args = append(args, "-i", conn.PemPath)
	}
	return append(args, conn.Destination())
}

// Binary returns the program to run for conn: the first word of a raw
// command, otherwise fallback.
func Binary(conn model.Connection, fallback string) string {
	if fields := strings.Fields(conn.Raw); len(fields) > 0 {
		return fields[0]
	}
	return fallback
}
