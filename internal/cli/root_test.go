package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/treykane/sshh/internal/appconfig"
	"github.com/treykane/sshh/internal/model"
	"github.com/treykane/sshh/internal/store"
	"github.com/treykane/sshh/internal/ui"
)

// fakeTerminal answers prompts from scripts. Choices are given by value;
// "<last>" picks the final option (the picker's select sentinel).
type fakeTerminal struct {
	inputs  []string
	choices []string
	prompts []string
	options [][]string
}

func (f *fakeTerminal) Choose(prompt string, options []string) (int, error) {
	f.prompts = append(f.prompts, prompt)
	f.options = append(f.options, append([]string(nil), options...))
	if len(f.choices) == 0 {
		return -1, ui.ErrAborted
	}
	want := f.choices[0]
	f.choices = f.choices[1:]
	if want == "<last>" {
		return len(options) - 1, nil
	}
	for i, o := range options {
		if o == want {
			return i, nil
		}
	}
	return -1, errors.New("choice not offered: " + want)
}

func (f *fakeTerminal) Input(prompt, def string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.inputs) == 0 {
		return "", ui.ErrAborted
	}
	v := f.inputs[0]
	f.inputs = f.inputs[1:]
	if v == "" {
		return def, nil
	}
	return v, nil
}

type fakeLauncher struct {
	launched []model.Connection
}

func (f *fakeLauncher) Launch(_ context.Context, conn model.Connection) error {
	f.launched = append(f.launched, conn)
	return nil
}

type env struct {
	home      string
	hostsPath string
}

func setupEnv(t *testing.T) env {
	t.Helper()
	home := t.TempDir()
	xdg := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	return env{home: home, hostsPath: filepath.Join(xdg, "sshh", "hosts.json")}
}

func (e env) writeHosts(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(e.hostsPath), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.hostsPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func (e env) readHosts(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(e.hostsPath)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func (e env) keyDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := filepath.Join(e.home, "keys")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("key"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, term *fakeTerminal, launcher *fakeLauncher, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(func(appconfig.Config) (Terminal, Launcher) { return term, launcher })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const legacyProd = `{"pem": "/keys", "names": {"prod": "ssh -i /keys/a.pem ubuntu@1.2.3.4"}}`

func TestAddFirstRunPicksPemDirectory(t *testing.T) {
	e := setupEnv(t)
	keys := e.keyDir(t, "b.pem", "a.pem", "notes.txt")

	term := &fakeTerminal{
		choices: []string{"keys", "<last>", "b.pem", "no"},
		inputs:  []string{"10.0.0.5", ""},
	}
	launcher := &fakeLauncher{}
	out, err := execute(t, term, launcher, "--add", "prod")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Saved prod") {
		t.Fatalf("expected saved message, got: %s", out)
	}
	if len(launcher.launched) != 0 {
		t.Fatal("did not expect a launch")
	}
	pemOpts := term.options[2]
	if len(pemOpts) != 2 || pemOpts[0] != "a.pem" || pemOpts[1] != "b.pem" {
		t.Fatalf("expected sorted pem files only, got %v", pemOpts)
	}

	rec, err := store.New(e.hostsPath).Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec.PemDirectory != keys {
		t.Fatalf("expected pem dir %s, got %s", keys, rec.PemDirectory)
	}
	want := model.Connection{PemPath: filepath.Join(keys, "b.pem"), User: "ubuntu", Host: "10.0.0.5"}
	if rec.Names["prod"] != want {
		t.Fatalf("want %+v, got %+v", want, rec.Names["prod"])
	}

	out, err = execute(t, &fakeTerminal{}, launcher, "--describe", "prod")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	for _, s := range []string{"ubuntu", "10.0.0.5", "b.pem"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in describe output: %s", s, out)
		}
	}

	if _, err := execute(t, &fakeTerminal{}, launcher, "-n", "prod"); err != nil {
		t.Fatalf("run by name: %v", err)
	}
	if len(launcher.launched) != 1 || launcher.launched[0] != want {
		t.Fatalf("expected launch of %+v, got %+v", want, launcher.launched)
	}
}

func TestAddSecondRunReusesPemDirectory(t *testing.T) {
	e := setupEnv(t)
	keys := e.keyDir(t, "a.pem")
	e.writeHosts(t, `{"pem": "`+keys+`", "names": {}}`)

	term := &fakeTerminal{choices: []string{"a.pem", "yes"}, inputs: []string{"10.0.0.9", "admin"}}
	launcher := &fakeLauncher{}
	if _, err := execute(t, term, launcher, "-a", "web"); err != nil {
		t.Fatal(err)
	}
	for _, p := range term.prompts {
		if strings.Contains(p, "Navigate") {
			t.Fatal("picker must not run once the pem directory is set")
		}
	}
	if len(launcher.launched) != 1 || launcher.launched[0].Destination() != "admin@10.0.0.9" {
		t.Fatalf("expected launch after confirmation, got %+v", launcher.launched)
	}
}

func TestAddExistingNameDeclineOverwrite(t *testing.T) {
	e := setupEnv(t)
	keys := e.keyDir(t, "a.pem")
	original := `{"pem": "` + keys + `", "names": {"prod": "ssh -i /keys/a.pem ubuntu@1.2.3.4"}}`
	e.writeHosts(t, original)

	term := &fakeTerminal{choices: []string{"a.pem", "no", "no"}, inputs: []string{"9.9.9.9", ""}}
	if _, err := execute(t, term, &fakeLauncher{}, "--add", "prod"); err != nil {
		t.Fatal(err)
	}
	if got := string(e.readHosts(t)); got != original {
		t.Fatalf("record must be unchanged\nwant=%s\n got=%s", original, got)
	}
}

func TestAddExistingNameOverwrite(t *testing.T) {
	e := setupEnv(t)
	keys := e.keyDir(t, "a.pem")
	e.writeHosts(t, `{"pem": "`+keys+`", "names": {"prod": "ssh -i /keys/a.pem ubuntu@1.2.3.4"}}`)

	term := &fakeTerminal{choices: []string{"a.pem", "yes", "no"}, inputs: []string{"9.9.9.9", ""}}
	if _, err := execute(t, term, &fakeLauncher{}, "--add", "prod"); err != nil {
		t.Fatal(err)
	}
	rec, err := store.New(e.hostsPath).Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Names["prod"].Host != "9.9.9.9" {
		t.Fatalf("expected overwrite, got %+v", rec.Names["prod"])
	}
}

func TestAddPemDirEmpty(t *testing.T) {
	e := setupEnv(t)
	keys := e.keyDir(t, "notes.txt")
	e.writeHosts(t, `{"pem": "`+keys+`", "names": {}}`)

	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "--add", "prod")
	if err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !strings.Contains(out, "No pem files found") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRunByNameMissing(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, legacyProd)
	launcher := &fakeLauncher{}
	out, err := execute(t, &fakeTerminal{}, launcher, "--name", "staging")
	if err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !strings.Contains(out, "-a/--add") {
		t.Fatalf("expected add guidance, got: %s", out)
	}
	if len(launcher.launched) != 0 {
		t.Fatal("did not expect a launch")
	}
}

func TestRemove(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, legacyProd)
	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "--remove", "prod")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ssh -i /keys/a.pem ubuntu@1.2.3.4") {
		t.Fatalf("expected removed command in output, got: %s", out)
	}
	rec, err := store.New(e.hostsPath).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Names) != 0 {
		t.Fatalf("expected empty mapping, got %+v", rec.Names)
	}
}

func TestRemoveMissingDoesNotMutate(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, legacyProd)
	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "--remove", "staging")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not present") {
		t.Fatalf("unexpected output: %s", out)
	}
	if got := string(e.readHosts(t)); got != legacyProd {
		t.Fatalf("record must be unchanged, got %s", got)
	}
}

func TestSearch(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, `{"pem": "/keys", "names": {
		"web-1": "ssh -i /keys/a.pem ubuntu@1.1.1.1",
		"db": "ssh -i /keys/a.pem ubuntu@1.1.1.2",
		"web-2": "ssh -i /keys/a.pem ubuntu@1.1.1.3",
		"old-web": "ssh -i /keys/a.pem ubuntu@1.1.1.4"
	}}`)

	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "--search", ".")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "db,old-web,web-1,web-2" {
		t.Fatalf("expected all names, got %v", got)
	}

	out, err = execute(t, &fakeTerminal{}, &fakeLauncher{}, "-s", "^web")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "web-1,web-2" {
		t.Fatalf("expected web names only, got %v", got)
	}

	out, err = execute(t, &fakeTerminal{}, &fakeLauncher{}, "-s", "web")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "web-1,web-2" {
		t.Fatalf("expected match anchored at start, got %v", got)
	}

	out, err = execute(t, &fakeTerminal{}, &fakeLauncher{}, "-s", "zzz")
	if err != nil || strings.TrimSpace(out) != "" {
		t.Fatalf("expected empty output without error, got %q, %v", out, err)
	}
}

func TestSearchInvalidPattern(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, legacyProd)
	if _, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "-s", "("); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestDefaultEmpty(t *testing.T) {
	setupEnv(t)
	launcher := &fakeLauncher{}
	out, err := execute(t, &fakeTerminal{}, launcher)
	if err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !strings.Contains(out, "No ssh instances configured") {
		t.Fatalf("unexpected output: %s", out)
	}
	if len(launcher.launched) != 0 {
		t.Fatal("did not expect a launch")
	}
}

func TestDefaultChoosesAndLaunches(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, `{"pem": "/keys", "names": {
		"b": "ssh -i /keys/a.pem ubuntu@2.2.2.2",
		"a": "ssh -i /keys/a.pem ubuntu@1.1.1.1"
	}}`)
	term := &fakeTerminal{choices: []string{"b"}}
	launcher := &fakeLauncher{}
	if _, err := execute(t, term, launcher); err != nil {
		t.Fatal(err)
	}
	if strings.Join(term.options[0], ",") != "a,b" {
		t.Fatalf("expected sorted names, got %v", term.options[0])
	}
	if len(launcher.launched) != 1 || launcher.launched[0].Host != "2.2.2.2" {
		t.Fatalf("unexpected launches: %+v", launcher.launched)
	}
}

func TestDefaultRecentOrdering(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, `{"pem": "/keys", "names": {
		"a": "ssh -i /keys/a.pem ubuntu@1.1.1.1",
		"b": "ssh -i /keys/a.pem ubuntu@2.2.2.2"
	}}`)
	if _, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "-n", "b"); err != nil {
		t.Fatal(err)
	}
	term := &fakeTerminal{choices: []string{"a"}}
	if _, err := execute(t, term, &fakeLauncher{}, "--recent"); err != nil {
		t.Fatal(err)
	}
	if strings.Join(term.options[0], ",") != "b,a" {
		t.Fatalf("expected most recent first, got %v", term.options[0])
	}
}

func TestDefaultAbortIsFatal(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, legacyProd)
	_, err := execute(t, &fakeTerminal{}, &fakeLauncher{})
	if !errors.Is(err, ui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFlagPrecedence(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, legacyProd)
	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "--search", ".", "--remove", "prod")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Removed prod") {
		t.Fatalf("expected remove to win over search, got: %s", out)
	}
}

func TestMalformedHostsFileIsFatal(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, `{"names": {}}`)
	_, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "-s", ".")
	if !errors.Is(err, store.ErrConfigUnreadable) {
		t.Fatalf("expected ErrConfigUnreadable, got %v", err)
	}
}

func TestHostsFileFlag(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(legacyProd), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "--hosts-file", path, "-s", ".")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "prod" {
		t.Fatalf("expected names from custom file, got %q", out)
	}
}

const mixedHosts = `{"pem": "/keys", "names": {
	"prod": "ssh -i /keys/a.pem ubuntu@1.2.3.4",
	"port": "ssh -i /keys/b.pem -p 2222 ubuntu@5.6.7.8",
	"alias": "ssh bastion"
}}`

func TestMixedHostsFileRemoveKeepsCommandVerbatim(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, mixedHosts)

	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "-r", "port")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "ssh -i /keys/b.pem -p 2222 ubuntu@5.6.7.8") {
		t.Fatalf("expected the stored command verbatim, got: %s", out)
	}

	out, err = execute(t, &fakeTerminal{}, &fakeLauncher{}, "--remove", "alias")
	if err != nil {
		t.Fatalf("remove of an unparsable entry: %v", err)
	}
	if !strings.Contains(out, "ssh bastion") {
		t.Fatalf("expected the stored command verbatim, got: %s", out)
	}

	rec, err := store.New(e.hostsPath).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Names) != 1 || rec.Names["prod"].Host != "1.2.3.4" {
		t.Fatalf("expected only prod to remain, got %+v", rec.Names)
	}
}

func TestMixedHostsFileLaunchesRawCommand(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, mixedHosts)
	launcher := &fakeLauncher{}
	if _, err := execute(t, &fakeTerminal{}, launcher, "-n", "port"); err != nil {
		t.Fatal(err)
	}
	if len(launcher.launched) != 1 || launcher.launched[0].Command() != "ssh -i /keys/b.pem -p 2222 ubuntu@5.6.7.8" {
		t.Fatalf("expected the raw command to be launched, got %+v", launcher.launched)
	}

	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "-s", ".")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "alias,port,prod" {
		t.Fatalf("expected every name, got %v", got)
	}
}

func TestMixedHostsFileDescribe(t *testing.T) {
	e := setupEnv(t)
	e.writeHosts(t, mixedHosts)

	out, err := execute(t, &fakeTerminal{}, &fakeLauncher{}, "-d", "port")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"ubuntu", "5.6.7.8", "b.pem", "-p 2222"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in describe output: %s", s, out)
		}
	}

	before := string(e.readHosts(t))
	out, err = execute(t, &fakeTerminal{}, &fakeLauncher{}, "-d", "alias")
	if err != nil {
		t.Fatalf("expected clean exit for an unparsable entry, got %v", err)
	}
	if !strings.Contains(out, "Cannot describe alias") || !strings.Contains(out, "ssh bastion") {
		t.Fatalf("unexpected output: %s", out)
	}
	if got := string(e.readHosts(t)); got != before {
		t.Fatalf("describe must not rewrite the file, got %s", got)
	}
}
