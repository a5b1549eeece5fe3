package telemetry

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/utils"
)

// DefaultMaxLines is the tail window when a FileSource is built with a
// non-positive limit.
const DefaultMaxLines = 2000

// FileSource tails the server's JSONL log file. Each ReadRecent call
// re-reads the file and keeps the last MaxLines raw lines, so the window
// always reflects the file at call time with no open handle held between
// calls.
type FileSource struct {
	Path     string
	MaxLines int
}

// NewFileSource builds a FileSource, applying DefaultMaxLines when
// maxLines is not positive.
func NewFileSource(path string, maxLines int) *FileSource {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &FileSource{Path: path, MaxLines: maxLines}
}

// ReadRecent returns the parsed tail of the log in file order. Malformed
// lines inside the window are dropped without error; only open and read
// failures surface, and cancellation is honoured between chunks of a
// large file.
func (s *FileSource) ReadRecent(ctx context.Context) ([]models.TelemetryEntry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, utils.NewAppError("telemetry.ReadRecent", "open log file", err)
	}
	defer f.Close()

	max := s.MaxLines
	if max <= 0 {
		max = DefaultMaxLines
	}

	// Ring of the last max lines; next indexes the oldest slot once full.
	ring := make([]string, 0, max)
	next := 0
	lineNo := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, utils.NewAppError("telemetry.ReadRecent", "read cancelled", err)
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(ring) < max {
			ring = append(ring, line)
			continue
		}
		ring[next] = line
		next = (next + 1) % max
	}
	if err := scanner.Err(); err != nil {
		return nil, utils.NewAppError("telemetry.ReadRecent", "read log file", err)
	}

	entries := make([]models.TelemetryEntry, 0, len(ring))
	appendParsed := func(lines []string) {
		for _, line := range lines {
			e, err := ParseLine([]byte(line))
			if err != nil {
				continue
			}
			entries = append(entries, e)
		}
	}
	appendParsed(ring[next:])
	appendParsed(ring[:next])
	return entries, nil
}
