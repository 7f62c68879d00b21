package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kingrea/swp-planner/internal/server"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"swp-planner"}, args...))
	return out.String(), err
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestEstimateCommandPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "acme.yaml", "inputs:\n  client_name: Acme\n")
	out, err := runCLI(t, "--project-dir", dir, "estimate", "--scenario", path)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	for _, want := range []string{"SWP Estimate for Acme", "Total Cost: $49,834", "Timeline: 5 weeks"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEstimateCommandJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "big.toml", "[inputs]\nroles_to_map = 600\n")
	out, err := runCLI(t, "--project-dir", dir, "estimate", "-s", path, "--format", "json")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	var resp server.EstimateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if resp.Results.ConfidenceLevel != "low" {
		t.Fatalf("confidence = %s, want low", resp.Results.ConfidenceLevel)
	}
	if resp.Summary == "" {
		t.Fatalf("json output should carry the text summary")
	}
}

func TestEstimateCommandRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "acme.yaml", "inputs: {}\n")
	if _, err := runCLI(t, "--project-dir", dir, "estimate", "-s", path, "-f", "xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestEstimateCommandRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "acme.yaml", "inputs: {}\n")
	if _, err := runCLI(t, "--log-level", "loud", "--project-dir", dir, "estimate", "-s", path); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestInitCommandWritesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "--project-dir", dir, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".swp", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.HasPrefix(out, "Wrote ") {
		t.Fatalf("output = %q", out)
	}
}
