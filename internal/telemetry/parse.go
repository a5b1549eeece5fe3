// Package telemetry reads the server's append-only JSONL log. It is the
// only place malformed input exists: bad lines are dropped here so the
// analysis layers always see well-formed, time-ordered entries.
package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/wowsimlabs/simops/internal/models"
)

// maxLineBytes bounds a single log line. The server writes compact
// records well under 1 KiB; anything past this is corruption.
const maxLineBytes = 1 << 20

// ParseLine decodes one JSONL record. A line is rejected when it is not
// a JSON object, lacks a schema version, carries an unknown type, or is
// missing timestamp, component, or message.
func ParseLine(line []byte) (models.TelemetryEntry, error) {
	var e models.TelemetryEntry
	if err := json.Unmarshal(line, &e); err != nil {
		return models.TelemetryEntry{}, fmt.Errorf("decode entry: %w", err)
	}
	if e.SchemaVersion < 1 {
		return models.TelemetryEntry{}, fmt.Errorf("missing schema version")
	}
	if e.Timestamp.IsZero() {
		return models.TelemetryEntry{}, fmt.Errorf("missing timestamp")
	}
	if !e.Type.Valid() {
		return models.TelemetryEntry{}, fmt.Errorf("unknown entry type %q", e.Type)
	}
	if e.Component == "" {
		return models.TelemetryEntry{}, fmt.Errorf("missing component")
	}
	if e.Message == "" {
		return models.TelemetryEntry{}, fmt.Errorf("missing message")
	}
	return e, nil
}

// ParseReader decodes every line from r in order, dropping blank and
// malformed lines. The error reports read failures only, never parse
// failures.
func ParseReader(r io.Reader) ([]models.TelemetryEntry, error) {
	entries := make([]models.TelemetryEntry, 0, 256)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}
	return entries, nil
}
