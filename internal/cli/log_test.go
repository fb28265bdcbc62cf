package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", LogInfo, func(l *log.Logger) { l.Info("drew map") }, true},
		{"debug at info level", LogInfo, func(l *log.Logger) { l.Debug("drew layer") }, false},
		{"debug at debug level", LogDebug, func(l *log.Logger) { l.Debug("drew layer") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("Drew usa map")

	out := buf.String()
	if !strings.Contains(out, "Drew usa map (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}
	custom := newLogger(&bytes.Buffer{}, LogInfo)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext() should return the attached logger")
	}
}

func TestRunRenderLogs(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "votes.json")
	if err := os.WriteFile(data, []byte(`{"USA": {"fillKey": "HIGH"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, LogDebug))
	c := New(io.Discard, LogDebug)
	opts := &renderOpts{
		output:  filepath.Join(dir, "votes.svg"),
		formats: []string{"svg"},
		fills:   map[string]string{"HIGH": "#D73027"},
		data:    data,
		noCache: true,
	}
	if err := c.runRender(ctx, "", opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"drew map",
		"scope=world",
		"applied remote data",
		"Drew world map (",
		"Generated svg:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render log missing %q\n%s", want, out)
		}
	}
}
