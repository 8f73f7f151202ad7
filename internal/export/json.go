package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
)

// FormatVersion is written to every JSON export.
const FormatVersion = 1

var ErrInvalidFormat = errors.New("invalid schedule file format")

// Document is the portable JSON form of one schedule.
type Document struct {
	Name       string          `json:"name"`
	Tasks      []schedule.Task `json:"tasks"`
	Settings   json.RawMessage `json:"settings,omitempty"`
	ExportedAt string          `json:"exportedAt"`
	Version    int             `json:"version"`
}

// NewDocument captures sc for export.
func NewDocument(sc schedule.Schedule, now time.Time) (Document, error) {
	settings, err := json.Marshal(sc.Settings)
	if err != nil {
		return Document{}, fmt.Errorf("marshal settings: %w", err)
	}
	tasks := make([]schedule.Task, len(sc.Tasks))
	for i, t := range sc.Tasks {
		tasks[i] = t.Clone()
	}
	return Document{
		Name:       sc.Name,
		Tasks:      tasks,
		Settings:   settings,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Version:    FormatVersion,
	}, nil
}

// WriteJSON writes sc as an indented JSON document.
func WriteJSON(w io.Writer, sc schedule.Schedule, now time.Time) error {
	doc, err := NewDocument(sc, now)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func ToJSON(sc schedule.Schedule, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	if err := WriteJSON(f, sc, time.Now()); err != nil {
		return err
	}
	return f.Close()
}

// ReadJSON decodes and checks a document. A name and a task array are
// required; settings are optional.
func ReadJSON(r io.Reader) (Document, error) {
	var raw struct {
		Name     *string         `json:"name"`
		Tasks    json.RawMessage `json:"tasks"`
		Settings json.RawMessage `json:"settings"`
		Version  int             `json:"version"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		return Document{}, fmt.Errorf("%w: missing name", ErrInvalidFormat)
	}
	trimmed := strings.TrimSpace(string(raw.Tasks))
	if !strings.HasPrefix(trimmed, "[") {
		return Document{}, fmt.Errorf("%w: tasks must be an array", ErrInvalidFormat)
	}
	var tasks []schedule.Task
	if err := json.Unmarshal(raw.Tasks, &tasks); err != nil {
		return Document{}, fmt.Errorf("%w: tasks: %v", ErrInvalidFormat, err)
	}
	if raw.Version > FormatVersion {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, raw.Version)
	}
	settings := raw.Settings
	if strings.TrimSpace(string(settings)) == "null" {
		settings = nil
	}
	return Document{Name: *raw.Name, Tasks: tasks, Settings: settings, Version: raw.Version}, nil
}

// ResolvedSettings merges the document's settings over the defaults.
func (d Document) ResolvedSettings() (schedule.Settings, error) {
	base := schedule.DefaultSettings()
	if len(d.Settings) == 0 {
		return base, nil
	}
	var patch schedule.SettingsPatch
	if err := json.Unmarshal(d.Settings, &patch); err != nil {
		return base, fmt.Errorf("%w: settings: %v", ErrInvalidFormat, err)
	}
	return patch.Apply(base), nil
}

// Import adds the document to st as a new, active, unsynced schedule.
func Import(st *store.Store, doc Document) (string, error) {
	settings, err := doc.ResolvedSettings()
	if err != nil {
		return "", err
	}
	return st.ImportSchedule(doc.Name, doc.Tasks, settings)
}

// FromJSON imports the JSON file at path into st.
func FromJSON(st *store.Store, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open json file: %w", err)
	}
	defer f.Close()
	doc, err := ReadJSON(f)
	if err != nil {
		return "", err
	}
	return Import(st, doc)
}

// Slug turns a schedule name into a file-name-safe fragment: lower case,
// runs of anything but letters and digits collapsed to one dash.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "schedule"
	}
	return s
}
