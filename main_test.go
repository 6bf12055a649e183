package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `
transport:
  float_budget: 20
  iteration_budget: 5
sweep:
  min_persistence: 10
  max_persistence: 100
  points: 3
ensemble:
  trials: 2
export:
  mesh_steps: 3
`

// execute runs the root command with args in a fresh output directory and
// returns stdout and the directory.
func execute(t *testing.T, args ...string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(append(args,
		"--config", cfgPath,
		"--seed", "7",
		"--output-dir", dir,
		"--log-level", "error",
	))
	if err := root.Execute(); err != nil {
		t.Fatalf("%v failed: %v\nlogs: %s", args, err, logs.String())
	}
	return out.String(), dir
}

func assertFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		args  []string
		want  string
		files []string
	}{
		{[]string{"generate", "--estimate"}, "persistence_length configured=50", []string{"tubes.m", "tube_points.m"}},
		{[]string{"overlaps"}, "overlaps=", []string{"overlaps.m"}},
		{[]string{"overlaps", "--between-tubes"}, "overlaps=", []string{"overlaps.m"}},
		{[]string{"field"}, "mesh=27", []string{"field.m", "mesh.dat"}},
		{[]string{"transport"}, "state=", []string{"trajectory.m"}},
		{[]string{"transport", "--free-diffusion", "10"}, "steps=10", []string{"trajectory.m"}},
		{[]string{"ensemble"}, "trials=2", []string{"delays.m"}},
		{[]string{"sweep"}, "persistence_length=55", []string{"entropy.m"}},
		{[]string{"junctions"}, "vertices=", nil},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, dir := execute(t, tt.args...)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
			assertFiles(t, dir, append(tt.files, "config.yaml", "trials.csv", "sweep.csv", "perf.csv")...)
		})
	}
}

func TestSameSeedSameNetwork(t *testing.T) {
	a, _ := execute(t, "generate")
	b, _ := execute(t, "generate")
	firstLine := func(s string) string { return strings.SplitN(s, "\n", 2)[0] }
	if firstLine(a) != firstLine(b) {
		t.Errorf("same seed produced different networks:\n%s\n%s", firstLine(a), firstLine(b))
	}
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "motorsim version ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestInvalidLogFormat(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "--log-format", "xml", "--output-dir", t.TempDir()})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unknown log format")
	}
}

func TestSnapshotReuse(t *testing.T) {
	out, dir := execute(t, "generate", "--snapshot", "--estimate")
	matches, err := filepath.Glob(filepath.Join(dir, "network_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("snapshot files = %v (%v)", matches, err)
	}

	// A different seed and different characteristics would generate a
	// different network, so matching output means the saved one was loaded
	// along with the characteristics it was made from.
	otherCfg := filepath.Join(t.TempDir(), "other.yaml")
	if err := os.WriteFile(otherCfg, []byte("network:\n  persistence_length: 300\n  mean_tube_length: 200\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	var reloaded bytes.Buffer
	root := newRootCmd()
	root.SetOut(&reloaded)
	root.SetErr(&logs)
	root.SetArgs([]string{"generate", "--estimate", "--network", matches[0], "--config", otherCfg, "--seed", "99", "--output-dir", t.TempDir(), "--log-level", "error"})
	if err := root.Execute(); err != nil {
		t.Fatalf("generate --network: %v\nlogs: %s", err, logs.String())
	}

	firstLine := func(s string) string { return strings.SplitN(s, "\n", 2)[0] }
	if firstLine(out) != firstLine(reloaded.String()) {
		t.Errorf("reloaded network differs:\n%s\n%s", firstLine(out), firstLine(reloaded.String()))
	}
	if !strings.Contains(reloaded.String(), "persistence_length configured=50 ") {
		t.Errorf("reloaded output %q does not report the saved persistence length", reloaded.String())
	}
}
