package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriterEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("component", "sync"))
	log.Warn("remote update failed", String("local_id", "abc"), Int("attempt", 1), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if rec["component"] != "sync" || rec["local_id"] != "abc" || rec["err"] != "boom" {
		t.Fatalf("missing fields: %v", rec)
	}
	if rec["level"] != "warn" || rec["message"] != "remote update failed" {
		t.Fatalf("unexpected level/message: %v", rec)
	}
	if c, _ := rec["caller"].(string); !strings.HasPrefix(c, "logx_test.go:") {
		t.Fatalf("caller should point at the call site, got %q", c)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "error")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at error level: %q", buf.String())
	}
	log.Error("shown")
	if buf.Len() == 0 {
		t.Fatal("error should be written")
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "chatty")
	log.Debug("hidden")
	log.Info("shown")
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", buf.String())
	}
}

func TestZeroAndNopAreSilent(t *testing.T) {
	var zero Logger
	if !zero.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	zero.Error("nothing")
	Nop().Error("nothing")
	if Nop().IsZero() {
		t.Fatal("Nop is configured, not zero")
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWriter(&buf, "info")
	_ = parent.With(String("child", "yes"))
	parent.Info("parent")
	if strings.Contains(buf.String(), "child") {
		t.Fatalf("parent picked up child field: %q", buf.String())
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "weekly.log")
	log, closer, err := New(Config{Level: "info", File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello", Bool("ok", true))
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"hello"`) {
		t.Fatalf("log file missing message: %q", data)
	}
}
