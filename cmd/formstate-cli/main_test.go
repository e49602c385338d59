package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/formdoc"
	"github.com/goliatone/go-formstate/pkg/prompt"
	"github.com/goliatone/go-formstate/pkg/testsupport"
)

type scriptedDriver struct {
	inputs  []string
	confirm []bool
}

func (s *scriptedDriver) Input(_ context.Context, _ prompt.InputConfig) (string, error) {
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *scriptedDriver) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	if len(s.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *scriptedDriver) Info(context.Context, string) error { return nil }

func defaults(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Parse(map[string]string{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func decodeReport(t *testing.T, data string) formdoc.Report {
	t.Helper()
	var report formdoc.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, data)
	}
	return report
}

func TestRun_FormWithApply(t *testing.T) {
	var stderr bytes.Buffer
	out := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return run(testsupport.Context(), defaults(t), []string{
			"-form", "testdata/contact.yaml",
			"-apply", "testdata/apply.yaml",
		}, w, &stderr, nil)
	})

	report := decodeReport(t, out)
	if !report.Valid {
		t.Fatalf("expected valid report, got %s", out)
	}
	if report.Values["name"] != "Ana" || report.Values["terms"] != true {
		t.Fatalf("unexpected values %#v", report.Values)
	}
	members, _ := report.Values["members"].([]any)
	if len(members) != 1 {
		t.Fatalf("unexpected members %#v", report.Values["members"])
	}
}

func TestRun_InvalidFormStillWritesReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(testsupport.Context(), defaults(t), []string{
		"-form", "testdata/contact.yaml",
		"-hydrate", "testdata/hydrate.yaml",
	}, &stdout, &stderr, nil)
	if !errors.Is(err, errInvalidForm) {
		t.Fatalf("expected errInvalidForm, got %v", err)
	}

	report := decodeReport(t, stdout.String())
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	name, _ := report.Fields["name"].(map[string]any)
	if name["value"] != "Ana" || name["pristine"] != true {
		t.Fatalf("expected hydrated pristine name, got %#v", name)
	}
}

func TestRun_OpenAPIToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.json")
	var stdout, stderr bytes.Buffer

	err := run(testsupport.Context(), defaults(t), []string{
		"-openapi", "../../testdata/users.openapi.yaml",
		"-operation", "createSignup",
		"-group-seed", "2",
		"-output", output,
		"-log-level", "info",
		"-log-format", "json",
	}, &stdout, &stderr, nil)
	if !errors.Is(err, errInvalidForm) {
		t.Fatalf("expected errInvalidForm, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}

	data, readErr := os.ReadFile(output)
	if readErr != nil {
		t.Fatalf("read report: %v", readErr)
	}
	report := decodeReport(t, string(data))
	users, _ := report.Values["users"].([]any)
	if len(users) != 2 || report.Values["plan"] != "free" {
		t.Fatalf("unexpected values %#v", report.Values)
	}
	if !bytes.Contains(stderr.Bytes(), []byte(`"msg":"form evaluated"`)) {
		t.Fatalf("expected json log record, got %q", stderr.String())
	}
}

func TestRun_Interactive(t *testing.T) {
	driver := &scriptedDriver{
		// email, members[0].name, name
		inputs: []string{"ana@example.com", "Rui", "Ana"},
		// add member?, terms
		confirm: []bool{false, true},
	}
	var stdout, stderr bytes.Buffer

	err := run(testsupport.Context(), defaults(t), []string{"-form", "testdata/contact.yaml", "-interactive"}, &stdout, &stderr, driver)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if report := decodeReport(t, stdout.String()); !report.Valid {
		t.Fatalf("expected valid report, got %s", stdout.String())
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ctx := testsupport.Context()

	if err := run(ctx, defaults(t), nil, &stdout, &stderr, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if err := run(ctx, defaults(t), []string{"-help"}, &stdout, &stderr, nil); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if err := run(ctx, defaults(t), []string{"-form", "testdata/contact.yaml", "-log-level", "loud"}, &stdout, &stderr, nil); err == nil {
		t.Fatalf("expected invalid log level error")
	}
	if err := run(ctx, defaults(t), []string{"-form", "testdata/missing.yaml"}, &stdout, &stderr, nil); err == nil {
		t.Fatalf("expected missing form error")
	}
}
