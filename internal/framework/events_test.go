package framework

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestEventLogDefaults(t *testing.T) {
	l := NewEventLog()
	evt := l.Emit("note", nil, "")
	if evt.Level != "info" {
		t.Errorf("level = %q, want info", evt.Level)
	}
	if evt.Payload == nil {
		t.Error("payload should be an empty map, not nil")
	}
	if _, err := time.Parse(time.RFC3339Nano, evt.Ts); err != nil {
		t.Errorf("ts %q not RFC3339Nano: %v", evt.Ts, err)
	}
}

func flushedTypes(t *testing.T, afs afero.Fs, path string) []string {
	t.Helper()
	b, err := afero.ReadFile(afs, path)
	if err != nil {
		t.Fatal(err)
	}
	var types []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("bad NDJSON line %q: %v", sc.Text(), err)
		}
		types = append(types, evt.Type)
	}
	return types
}

func TestEventLogFlushTo(t *testing.T) {
	afs := afero.NewMemMapFs()
	l := NewEventLog()
	l.Emit("one", map[string]any{"k": "v"}, "")
	l.Emit("two", nil, "error")

	if err := l.FlushTo(afs, "/runs/r1/transcript.ndjson"); err != nil {
		t.Fatalf("FlushTo: %v", err)
	}

	types := flushedTypes(t, afs, "/runs/r1/transcript.ndjson")
	if len(types) != 2 || types[0] != "one" || types[1] != "two" {
		t.Errorf("types = %v, want [one two]", types)
	}
}

func TestFlushToDoesNotDuplicateAcrossFlushes(t *testing.T) {
	afs := afero.NewMemMapFs()
	l := NewEventLog()
	l.Emit("one", nil, "")
	if err := l.FlushTo(afs, "/t.ndjson"); err != nil {
		t.Fatal(err)
	}
	l.Emit("two", nil, "")
	if err := l.FlushTo(afs, "/t.ndjson"); err != nil {
		t.Fatal(err)
	}

	types := flushedTypes(t, afs, "/t.ndjson")
	if len(types) != 2 || types[0] != "one" || types[1] != "two" {
		t.Errorf("types = %v, want [one two]", types)
	}
}

func TestFlushToPreservesEarlierSessionEvents(t *testing.T) {
	afs := afero.NewMemMapFs()
	const path = "/runs/r1/transcript.ndjson"

	first := NewEventLog()
	first.Emit("stage.enter", nil, "")
	first.Emit("stage.exit", nil, "")
	if err := first.FlushTo(afs, path); err != nil {
		t.Fatal(err)
	}

	// A resumed session starts with a fresh in-memory log; flushing it
	// must extend the transcript, never rewrite it.
	resumed := NewEventLog()
	resumed.Emit("resume.note", nil, "")
	if err := resumed.FlushTo(afs, path); err != nil {
		t.Fatal(err)
	}

	types := flushedTypes(t, afs, path)
	want := []string{"stage.enter", "stage.exit", "resume.note"}
	if len(types) != len(want) {
		t.Fatalf("types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	l := NewEventLog()
	l.Emit("a", nil, "")
	evts := l.Events()
	evts[0].Type = "mutated"
	if l.Events()[0].Type != "a" {
		t.Error("Events() must not expose internal storage")
	}
}
