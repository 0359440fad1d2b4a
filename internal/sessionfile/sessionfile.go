// Package sessionfile reads coding and break session exports from JSON and
// TOML files so they can be imported into the session store.
//
// Two record spellings are accepted: the editor extension writes
// sessionType and createdAt, the dashboard reads type and startTime. When a
// record carries both, type and startTime win.
package sessionfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

// ErrUnsupportedFormat is returned for files that are neither .json nor .toml.
var ErrUnsupportedFormat = errors.New("unsupported session file format")

// maxParallel caps the number of files parsed at once by ParseDir.
const maxParallel = 8

// record holds one session as decoded. Values stay untyped because JSON and
// TOML produce different Go types for the same field.
type record struct {
	ID              any `json:"id" toml:"id"`
	Type            any `json:"type" toml:"type"`
	SessionType     any `json:"sessionType" toml:"sessionType"`
	StartTime       any `json:"startTime" toml:"startTime"`
	CreatedAt       any `json:"createdAt" toml:"createdAt"`
	DurationMinutes any `json:"durationMinutes" toml:"durationMinutes"`
}

type document struct {
	Sessions []record `json:"sessions" toml:"sessions"`
}

// File is the parsed content of one session file.
type File struct {
	Path     string
	Sessions []analyzer.Session
}

// ParseFile reads the file at path and returns its sessions in file order.
func ParseFile(path string) ([]analyzer.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records, err = decodeJSON(data)
	case ".toml":
		records, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	sessions := make([]analyzer.Session, 0, len(records))
	for i, r := range records {
		s, err := r.session(i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// ParseDir parses every .json and .toml file directly inside dir. Files are
// parsed concurrently; results are ordered by file name. The first error
// cancels the remaining work.
func ParseDir(ctx context.Context, dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	files := make([]File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sessions, err := ParseFile(p)
			if err != nil {
				return err
			}
			files[i] = File{Path: p, Sessions: sessions}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Supported reports whether name has an extension ParseFile understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".toml":
		return true
	}
	return false
}

func decodeJSON(data []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []record
		if err := unmarshalNumbers(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var doc document
	if err := unmarshalNumbers(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

// unmarshalNumbers decodes a single JSON value, keeping numbers as
// json.Number so that large integer ids survive intact.
func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

func decodeTOML(data []byte) ([]record, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

func (r record) session(index int) (analyzer.Session, error) {
	id := stringValue(r.ID)

	raw := r.StartTime
	if isEmpty(raw) {
		raw = r.CreatedAt
	}
	start, err := timeValue(raw)
	if err != nil {
		return analyzer.Session{}, &analyzer.InvalidSessionError{Index: index, ID: id, Reason: err.Error()}
	}

	duration, err := floatValue(r.DurationMinutes)
	if err != nil {
		return analyzer.Session{}, &analyzer.InvalidSessionError{Index: index, ID: id, Reason: "durationMinutes: " + err.Error()}
	}

	kind := stringValue(r.Type)
	if kind == "" {
		kind = stringValue(r.SessionType)
	}

	return analyzer.Session{
		ID:              id,
		StartTime:       start,
		DurationMinutes: duration,
		Type:            analyzer.ParseSessionType(kind),
	}, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func floatValue(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %s", x)
		}
		return floatValue(f)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("expected a finite number, got %v", x)
		}
		return x, nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// timeValue accepts a timestamp string, epoch milliseconds, or a TOML
// date-time value. TOML local date-times are read in UTC.
func timeValue(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, errors.New("missing start time")
	case time.Time:
		return x, nil
	case toml.LocalDateTime:
		return x.AsTime(time.UTC), nil
	case toml.LocalDate:
		return x.AsTime(time.UTC), nil
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch milliseconds %s", x)
		}
		return time.UnixMilli(int64(f)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(x)).UTC(), nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case string:
		if strings.TrimSpace(x) == "" {
			return time.Time{}, errors.New("missing start time")
		}
		t := ParseTimestamp(x)
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("unparseable start time %q", x)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported start time type %T", v)
	}
}

// ParseTimestamp parses an ISO 8601 timestamp string. It tries RFC3339Nano,
// RFC3339, a datetime without a timezone suffix, and a bare date, the last two
// in UTC. It returns the zero time if nothing matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
