package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestSimpleFormatter(t *testing.T) {
	f := &SimpleFormatter{TimestampFormat: "2006/01/02 15:04:05"}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 4, 6, 17, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "pan out of range",
		Data:    logrus.Fields{"fixture": "head-1", "channel": "pan"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	want := "2025/04/06 17:30:00 [WAR] pan out of range channel=pan fixture=head-1\n"
	if string(out) != want {
		t.Errorf("Expected %q, got %q", want, string(out))
	}
}

func TestLoggerLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusLoggerWithOutput("info", &buf)

	logger.Debugf("hidden %d", 1)
	logger.WithField("fixture", "head-2").Infof("visible %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug message should be filtered at info level, got %q", out)
	}
	if !strings.Contains(out, "[INF] visible 2 fixture=head-2") {
		t.Errorf("Expected info line with field, got %q", out)
	}
}

func TestLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusLoggerWithOutput("loud", &buf)

	logger.Debugf("debug")
	logger.Infof("info")

	if strings.Contains(buf.String(), "debug") {
		t.Errorf("Expected debug to be filtered, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "info") {
		t.Errorf("Expected info to be written, got %q", buf.String())
	}
}

func TestNewLogrusLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")

	logger, err := NewLogrusLogger("info", logDir)
	if err != nil {
		t.Fatalf("NewLogrusLogger failed: %v", err)
	}
	logger.WithFields(map[string]interface{}{"seq": 7}).Infof("tick")

	data, err := os.ReadFile(filepath.Join(logDir, LogFileName))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[INF] tick seq=7") {
		t.Errorf("Unexpected log file content: %q", string(data))
	}
}
