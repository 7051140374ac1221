package framework

import (
	"time"

	"github.com/spf13/afero"

	"github.com/kayky233/AgentCli/internal/infra/fs"
)

// Event is one timestamped, typed, leveled record in the session transcript.
// Emission order is the only ordering guarantee.
type Event struct {
	Ts      string         `json:"ts"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	Level   string         `json:"level"`
}

// EventLog is the append-only in-memory transcript for one session.
type EventLog struct {
	events  []Event
	flushed int
	now     func() time.Time
}

// NewEventLog returns an empty log stamping events with UTC wall time.
func NewEventLog() *EventLog {
	return &EventLog{now: time.Now}
}

// Emit appends one event and returns it.
func (l *EventLog) Emit(eventType string, payload map[string]any, level string) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	if level == "" {
		level = "info"
	}
	evt := Event{
		Ts:      l.now().UTC().Format(time.RFC3339Nano),
		Type:    eventType,
		Payload: payload,
		Level:   level,
	}
	l.events = append(l.events, evt)
	return evt
}

func (l *EventLog) StageEnter(stage Stage) {
	l.Emit("stage.enter", map[string]any{"stage": string(stage)}, "")
}

func (l *EventLog) StageExit(stage Stage, status Status) {
	l.Emit("stage.exit", map[string]any{"stage": string(stage), "status": string(status)}, "")
}

func (l *EventLog) AgentStart(agentID string, stage Stage) {
	l.Emit("agent.start", map[string]any{"stage": string(stage), "agent": agentID}, "")
}

func (l *EventLog) AgentEnd(agentID string, stage Stage, status Status) {
	l.Emit("agent.end", map[string]any{"stage": string(stage), "agent": agentID, "status": string(status)}, "")
}

// Events returns a copy of the recorded events in emission order.
func (l *EventLog) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// FlushTo appends every not-yet-persisted event to the transcript
// file, one JSON record per line. Appending is what keeps events from
// an earlier process of the same session intact across resumes.
func (l *EventLog) FlushTo(afs afero.Fs, path string) error {
	for _, evt := range l.events[l.flushed:] {
		if err := fs.AppendNDJSONLine(afs, path, evt); err != nil {
			return err
		}
		l.flushed++
	}
	return nil
}
