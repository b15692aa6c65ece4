package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	cliBinary     string
	cliBinaryOnce sync.Once
	cliBinaryErr  error
)

// getBinary builds the infostats binary once and returns its path.
func getBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI test in short mode")
	}
	cliBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			cliBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "infostats-test-*")
		if err != nil {
			cliBinaryErr = err
			return
		}
		cliBinary = filepath.Join(tmpDir, "infostats")

		cmd := exec.Command("go", "build", "-o", cliBinary, "./cmd/infostats")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			cliBinaryErr = &buildError{output: string(output), err: err}
		}
	})
	if cliBinaryErr != nil {
		t.Fatalf("failed to build infostats: %v", cliBinaryErr)
	}
	return cliBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

const testBib = `@ARTICLE{1,
author={A. Smith},
journal={IEEE Software},
title={First},
year={2014},
keywords={testing;Go},}

@ARTICLE{2,
author={B. Jones},
journal={IEEE Software},
title={Second},
year={2015},
pages={10-20},
keywords={go}}

@INPROCEEDINGS{3,
booktitle={Proc. ICSE},
title={Third},
year={2015},}

@INPROCEEDINGS{4,
booktitle={Proc. ICSE},
title={Fourth},
year={2016}}
`

// setupWorkdir creates a directory with a BibTeX file and an infostats.yml
// pointing all paths inside it.
func setupWorkdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "references.bib"), []byte(testBib), 0644); err != nil {
		t.Fatal(err)
	}
	cfgContent := "bibtex_path: references.bib\n" +
		"records_path: records.jsonl\n" +
		"db_path: records.db\n" +
		"report_path: statistics.csv\n" +
		"block_size: 2\n" +
		"delete_previous: true\n"
	if err := os.WriteFile(filepath.Join(dir, "infostats.yml"), []byte(cfgContent), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// runCLI executes infostats in dir and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(t), args...)
	cmd.Dir = dir

	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "INFOSTATS_") {
			env = append(env, kv)
		}
	}
	cmd.Env = append(env, "XDG_CONFIG_HOME="+filepath.Join(dir, "config"))

	out, err := cmd.Output()
	return string(out), err
}

func TestCLI_Workflow(t *testing.T) {
	dir := setupWorkdir(t)

	out, err := runCLI(t, dir, "parse")
	if err != nil {
		t.Fatalf("parse failed: %v\nOutput: %s", err, out)
	}
	var parsed ParseResult
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, out)
	}
	if parsed.Records != 4 || parsed.Blocks != 2 {
		t.Errorf("parse = %+v, want 4 records in 2 blocks", parsed)
	}

	// delete_previous keeps a second parse from doubling the records.
	if out, err := runCLI(t, dir, "parse"); err != nil {
		t.Fatalf("second parse failed: %v\nOutput: %s", err, out)
	}

	out, err = runCLI(t, dir, "db", "load")
	if err != nil {
		t.Fatalf("db load failed: %v\nOutput: %s", err, out)
	}
	var loaded StatusResponse
	if err := json.Unmarshal([]byte(out), &loaded); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, out)
	}
	if loaded.Records != 4 {
		t.Errorf("db load records = %d, want 4", loaded.Records)
	}

	out, err = runCLI(t, dir, "stats", "by-year", "--from", "db")
	if err != nil {
		t.Fatalf("stats failed: %v\nOutput: %s", err, out)
	}
	var byYear []struct {
		Grouping string `json:"grouping"`
		Count    int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &byYear); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, out)
	}
	if len(byYear) != 3 || byYear[1].Grouping != "2015" || byYear[1].Count != 2 {
		t.Errorf("stats by-year = %+v", byYear)
	}

	if out, err := runCLI(t, dir, "report"); err != nil {
		t.Fatalf("report failed: %v\nOutput: %s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "statistics.csv"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.HasPrefix(string(data), "2014;1\n2015;2\n2016;1\n\n") {
		t.Errorf("report starts with:\n%s", data)
	}

	out, err = runCLI(t, dir, "export", "--keys", "2")
	if err != nil {
		t.Fatalf("export failed: %v\nOutput: %s", err, out)
	}
	if !strings.HasPrefix(out, "@article{2,\n") || !strings.Contains(out, "pages = {10-20}") {
		t.Errorf("export output:\n%s", out)
	}
}

func TestCLI_MalformedBibTeX(t *testing.T) {
	dir := setupWorkdir(t)
	bad := "@ARTICLE{1,\nthis line has no equals sign\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.bib"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, dir, "parse", "bad.bib")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != ExitDataError {
		t.Fatalf("parse bad.bib: err = %v, want exit code %d\nOutput: %s", err, ExitDataError, out)
	}
	if !strings.Contains(out, "malformed") {
		t.Errorf("error output should mention the malformed line: %s", out)
	}
}

func TestCLI_InvalidConfig(t *testing.T) {
	dir := setupWorkdir(t)
	if err := os.WriteFile(filepath.Join(dir, "infostats.yml"), []byte("year_window: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, dir, "stats", "by-year")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != ExitConfigError {
		t.Fatalf("err = %v, want exit code %d", err, ExitConfigError)
	}
}

func TestCLI_TrailingBlankLinesAddNoBlock(t *testing.T) {
	dir := setupWorkdir(t)
	if err := os.WriteFile(filepath.Join(dir, "references.bib"), []byte(testBib+"\n\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, dir, "parse")
	if err != nil {
		t.Fatalf("parse failed: %v\nOutput: %s", err, out)
	}
	var parsed ParseResult
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, out)
	}
	if parsed.Records != 4 || parsed.Blocks != 2 {
		t.Errorf("parse = %+v, want 4 records in 2 blocks", parsed)
	}
}

func TestCLI_ConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\nOutput: %s", err, out)
	}
	var created StatusResponse
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, out)
	}
	if created.Status != "created" || created.Path != "infostats.yml" {
		t.Errorf("config init = %+v", created)
	}

	data, err := os.ReadFile(filepath.Join(dir, "infostats.yml"))
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if !strings.Contains(string(data), "bibtex_path: references.bib") ||
		!strings.Contains(string(data), "user_agent: infostats") {
		t.Errorf("config file:\n%s", data)
	}

	// The written file is picked up as the project config.
	if _, err := runCLI(t, dir, "stats", "by-year"); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == ExitConfigError {
			t.Errorf("written config rejected: %v", err)
		}
	}

	_, err = runCLI(t, dir, "config", "init")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != ExitError {
		t.Errorf("second config init: err = %v, want exit code %d", err, ExitError)
	}
	if out, err := runCLI(t, dir, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v\nOutput: %s", err, out)
	}
}
