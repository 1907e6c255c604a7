package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofhir/suitegen/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "suitegen.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const baseConfig = `test_kit_module_name: IPSTestKit
test_module_name: IPS
test_id_prefix: ips
test_suite_class_name: IPS
`

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if want := "suitegen " + versionString() + "\n"; stdout != want {
		t.Errorf("version output = %q; want %q", stdout, want)
	}
}

func TestVersionString(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	Version, Commit = "dev", "unknown"
	if got := versionString(); got != "dev (built from source)" {
		t.Errorf("versionString() = %q", got)
	}

	Version, Commit = "1.2.0", "abc123"
	if got := versionString(); got != "1.2.0 (commit: abc123)" {
		t.Errorf("versionString() = %q", got)
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	igs := filepath.Join(dir, "igs")
	out := filepath.Join(dir, "out")
	testutil.WriteTgz(t, igs, "guide.tgz", testutil.SummaryGuide("example.ips", "1.1.0"))
	cfg := writeConfig(t, dir, baseConfig)

	_, stderr, err := execute(t, "generate", "--config", cfg, "--igs", igs, "--output", out, "--version", "1.1.0")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}

	root := filepath.Join(out, "generated", "v1.1.0")
	for _, rel := range []string{
		"metadata.yaml",
		filepath.Join("entries_group", "example_observation_entry_test.rb"),
		filepath.Join("entries_group", "metadata.yaml"),
		filepath.Join("summary_operation_group", "metadata.yaml"),
		filepath.Join("groups", "entries_group.rb"),
		"ips_test_suite.rb",
	} {
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if !strings.Contains(stderr, "generated 1 package(s)") {
		t.Errorf("summary not logged:\n%s", stderr)
	}
}

func TestGenerateQuiet(t *testing.T) {
	dir := t.TempDir()
	igs := filepath.Join(dir, "igs")
	testutil.WriteTgz(t, igs, "guide.tgz", testutil.SummaryGuide("example.ips", "1.1.0"))
	cfg := writeConfig(t, dir, baseConfig)

	_, stderr, err := execute(t, "generate", "--quiet", "--config", cfg, "--igs", igs, "--output", filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("quiet run logged:\n%s", stderr)
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "test_module_name: IPS\n")

	_, _, err := execute(t, "generate", "--quiet", "--config", cfg, "--igs", dir)
	if err == nil || !strings.Contains(err.Error(), "test_id_prefix is required") {
		t.Fatalf("generate error = %v; want missing test_id_prefix", err)
	}
}

func TestGenerateMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "generate", "--quiet", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteTgz(t, dir, "guide.tgz", testutil.SummaryGuide("example.ips", "1.1.0"))
	cfg := writeConfig(t, dir, baseConfig)

	stdout, _, err := execute(t, "inspect", "--quiet", "--config", cfg, path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{testutil.CompositionURL, testutil.ObservationURL, "Medication Summary section"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "generated")); !os.IsNotExist(err) {
		t.Errorf("inspect wrote output: %v", err)
	}
}

func TestInspectRequiresPackage(t *testing.T) {
	if _, _, err := execute(t, "inspect", "--quiet"); err == nil {
		t.Fatal("expected an argument error")
	}
}
