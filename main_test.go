package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCLIEvalSummary(t *testing.T) {
	script := writeFile(t, "s.facet", `(emit "cube" (frustum-box :max (vec3 2 2 2)))
(emit "vol" (frustum-volume (frustum-box :max (vec3 2 2 2))))`)

	out, _, err := runCLI(t, "eval", script)
	if err != nil {
		t.Fatalf("eval error = %v", err)
	}
	for _, want := range []string{"mesh cube: 8 points, 6 faces, 12 triangles", "vol = 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIEvalJSON(t *testing.T) {
	script := writeFile(t, "s.facet", `(emit "o" (overlap (frustum-box :max (vec3 2 2 2)) (frustum-box :min (vec3 1 1 1) :max (vec3 3 3 3))))`)

	out, _, err := runCLI(t, "eval", "--json", script)
	if err != nil {
		t.Fatalf("eval error = %v", err)
	}
	var result EvalResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(result.Values) != 1 {
		t.Fatalf("values = %+v, want one", result.Values)
	}
	if v, ok := result.Values[0].Value.(float64); !ok || v < 0.1249 || v > 0.1251 {
		t.Errorf("overlap = %v, want 0.125", result.Values[0].Value)
	}
}

func TestCLIEvalConfigAndVerbose(t *testing.T) {
	cfg := writeFile(t, "facet.yaml", "cells: 24\ntriangulate: true\n")
	script := writeFile(t, "s.facet", `(emit "cut" (clip-frustum (frustum-mesh (frustum-box :max (vec3 2 2 2))) (frustum-box :max (vec3 1 3 3))))`)

	out, stderr, err := runCLI(t, "eval", "-v", "--config", cfg, script)
	if err != nil {
		t.Fatalf("eval error = %v", err)
	}
	// Triangulated clip output has only triangles: the four cut side
	// faces and the whole left face, two triangles each.
	if !strings.Contains(out, "mesh cut:") || !strings.Contains(out, "10 faces") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(stderr, "level=DEBUG") {
		t.Errorf("verbose run logged no debug records:\n%s", stderr)
	}
}

func TestCLIEvalErrors(t *testing.T) {
	bad := writeFile(t, "bad.facet", `(emit "x"`)
	badCfg := writeFile(t, "facet.toml", `cells = 0`)
	good := writeFile(t, "good.facet", `(+ 1 2)`)

	tests := []struct {
		name string
		args []string
	}{
		{"no script", []string{"eval"}},
		{"missing script", []string{"eval", filepath.Join(t.TempDir(), "none.facet")}},
		{"syntax error", []string{"eval", bad}},
		{"bad config", []string{"eval", "--config", badCfg, good}},
		{"stl without solids", []string{"eval", "--stl", filepath.Join(t.TempDir(), "o.stl"), good}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tt.args...); err == nil {
				t.Errorf("facet %v: error = nil", tt.args)
			}
		})
	}
}
