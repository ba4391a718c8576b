// Package store persists the hosts record: the pem directory and the saved
// friendly names.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/treykane/sshh/internal/model"
	"github.com/treykane/sshh/internal/sshclient"
)

// ErrConfigUnreadable is returned when the hosts file is missing, is not
// valid JSON, or lacks one of the required keys.
var ErrConfigUnreadable = errors.New("config unreadable")

// Repository loads and saves the whole record.
type Repository interface {
	Load() (model.Record, error)
	Save(model.Record) error
}

// FileStore is a Repository backed by one JSON file.
type FileStore struct {
	path string
}

// New returns a store for the file at path. Nothing is read until Load.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// fileModel mirrors the on-disk layout. Names are decoded lazily because
// older files store each connection as a plain command string.
type fileModel struct {
	Pem   *string                    `json:"pem"`
	Names map[string]json.RawMessage `json:"names"`
}

// Init writes an empty record if the file does not exist yet. An existing
// file is left alone, whatever its content.
func (s *FileStore) Init() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	slog.Info("creating hosts file", "path", s.path)
	return s.Save(model.NewRecord())
}

// Load reads the record from disk.
func (s *FileStore) Load() (model.Record, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: %v", ErrConfigUnreadable, err)
	}
	var fm fileModel
	if err := json.Unmarshal(b, &fm); err != nil {
		return model.Record{}, fmt.Errorf("%w: parse %s: %v", ErrConfigUnreadable, s.path, err)
	}
	if fm.Pem == nil {
		return model.Record{}, fmt.Errorf("%w: %s: missing \"pem\"", ErrConfigUnreadable, s.path)
	}
	if fm.Names == nil {
		return model.Record{}, fmt.Errorf("%w: %s: missing \"names\"", ErrConfigUnreadable, s.path)
	}

	rec := model.NewRecord()
	rec.PemDirectory = *fm.Pem
	for name, raw := range fm.Names {
		conn, err := decodeConnection(raw)
		if err != nil {
			return model.Record{}, fmt.Errorf("%w: %s: name %q: %v", ErrConfigUnreadable, s.path, name, err)
		}
		rec.Names[name] = conn
	}
	return rec, nil
}

// decodeConnection accepts both the structured form and a legacy command
// string such as "ssh -i /keys/a.pem ubuntu@1.2.3.4". A legacy string in
// exactly that form becomes a structured connection. Anything else is kept
// verbatim in Raw, with the structured fields filled when they can be
// recovered, so it launches and prints as written.
func decodeConnection(raw json.RawMessage) (model.Connection, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var command string
		if err := json.Unmarshal(raw, &command); err != nil {
			return model.Connection{}, err
		}
		return legacyConnection(command), nil
	}
	var conn model.Connection
	if err := json.Unmarshal(raw, &conn); err != nil {
		return model.Connection{}, err
	}
	return conn, nil
}

func legacyConnection(command string) model.Connection {
	command = strings.TrimSpace(command)
	conn, err := sshclient.ParseCommand(command)
	if err != nil {
		slog.Debug("keeping unparsed host command", "command", command, "error", err)
		return model.Connection{Raw: command}
	}
	if conn.Command() != command {
		conn.Raw = command
	}
	return conn
}

// Save replaces the file content with rec. The record is written to a
// temporary file in the same directory and renamed over the old one, so a
// reader never sees a half-written file. There is no locking between
// processes: the last writer wins.
func (s *FileStore) Save(rec model.Record) error {
	if rec.Names == nil {
		rec.Names = map[string]model.Connection{}
	}
	b, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".hosts-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
