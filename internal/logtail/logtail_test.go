package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func writeLines(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foamsync.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}
	logPath := writeLines(t, all)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: all},
		{name: "read all (negative)", maxLines: -1, expected: all},
		{name: "read partial (5)", maxLines: 5, expected: all[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: all},
		{name: "read more than exists (20)", maxLines: 20, expected: all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_TextFormatterLine(t *testing.T) {
	line := `time="2024-03-14T15:09:26Z" level=warning msg="push failed: \"offline\"" component=sync attempt=2 estimate_id=e1`
	e := Parse(line)

	if !e.Time.Equal(time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)) {
		t.Fatalf("Time = %v", e.Time)
	}
	if e.Level != logrus.WarnLevel {
		t.Fatalf("Level = %v, want warning", e.Level)
	}
	if e.Message != `push failed: "offline"` {
		t.Fatalf("Message = %q", e.Message)
	}
	if e.Component != "sync" {
		t.Fatalf("Component = %q, want sync", e.Component)
	}
	if e.Field("attempt") != "2" || e.Field("estimate_id") != "e1" {
		t.Fatalf("Fields = %v", e.Fields)
	}
	if got := e.FieldKeys(); !reflect.DeepEqual(got, []string{"attempt", "estimate_id"}) {
		t.Fatalf("FieldKeys = %v", got)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("badger 2024/03/14 opening value log")
	if e.Level != logrus.InfoLevel {
		t.Fatalf("Level = %v, want info", e.Level)
	}
	if e.Message != "badger 2024/03/14 opening value log" {
		t.Fatalf("Message = %q", e.Message)
	}
}

func TestParse_RoundTripsLogrusOutput(t *testing.T) {
	var buf strings.Builder
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339})
	log.WithField("component", "jobs").WithField("estimate_id", "e 1").Error("mark paid failed")

	e := Parse(strings.TrimSpace(buf.String()))
	if e.Level != logrus.ErrorLevel || e.Component != "jobs" || e.Message != "mark paid failed" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Field("estimate_id") != "e 1" {
		t.Fatalf("estimate_id = %q", e.Field("estimate_id"))
	}
}

func TestTail_FiltersByLevel(t *testing.T) {
	path := writeLines(t, []string{
		`time="2024-03-14T15:00:00Z" level=debug msg="scheduled push" component=sync`,
		`time="2024-03-14T15:00:01Z" level=info msg="push ok" component=sync`,
		``,
		`time="2024-03-14T15:00:02Z" level=error msg="push failed" component=sync`,
	})

	got, err := Tail(path, 10, logrus.InfoLevel)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "push ok" || got[1].Message != "push failed" {
		t.Fatalf("messages = %q, %q", got[0].Message, got[1].Message)
	}

	got, _ = Tail(path, 10, logrus.ErrorLevel)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}
