package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const indexFile = "exported_reports.json"

// ReportWriter saves exported reports into a directory and keeps a JSON index
// of what was written, keyed by context ID.
type ReportWriter struct {
	dir     string
	records map[string]ExportRecord
	mu      sync.RWMutex
	now     func() time.Time
}

// ExportRecord is one saved report.
type ExportRecord struct {
	ContextID  string    `json:"context_id"`
	VideoID    string    `json:"video_id"`
	Filename   string    `json:"filename"`
	ExportedAt time.Time `json:"exported_at"`
}

// NewReportWriter creates dir if needed and loads any existing index.
func NewReportWriter(dir string) (*ReportWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	w := &ReportWriter{
		dir:     dir,
		records: make(map[string]ExportRecord),
		now:     time.Now,
	}
	if err := w.load(); err != nil {
		return nil, fmt.Errorf("failed to load report index: %w", err)
	}
	return w, nil
}

// Save writes content to filename inside the output directory and returns
// the full path. Filenames are reduced to their base name. When the name
// already belongs to another export, the context ID is appended to it.
func (w *ReportWriter) Save(contextID, videoID, filename, content string) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid report filename %q", filename)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	name = w.uniqueName(contextID, name)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	w.records[contextID] = ExportRecord{
		ContextID:  contextID,
		VideoID:    videoID,
		Filename:   name,
		ExportedAt: w.now().UTC(),
	}
	if err := w.save(); err != nil {
		return path, err
	}
	return path, nil
}

// uniqueName keeps name unless another export or an untracked file already
// holds it. Callers hold mu.
func (w *ReportWriter) uniqueName(contextID, name string) string {
	ext := filepath.Ext(name)
	alt := strings.TrimSuffix(name, ext) + "_" + contextID + ext

	if rec, ok := w.records[contextID]; ok && (rec.Filename == name || rec.Filename == alt) {
		return rec.Filename
	}
	for _, rec := range w.records {
		if rec.Filename == name {
			return alt
		}
	}
	if _, err := os.Stat(filepath.Join(w.dir, name)); err == nil {
		return alt
	}
	return name
}

// Lookup returns the record of the last report saved for contextID.
func (w *ReportWriter) Lookup(contextID string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rec, ok := w.records[contextID]
	return rec, ok
}

func (w *ReportWriter) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.records)
}

func (w *ReportWriter) Dir() string {
	return w.dir
}

func (w *ReportWriter) load() error {
	file, err := os.Open(filepath.Join(w.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer file.Close()

	var records []ExportRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}
	for _, rec := range records {
		w.records[rec.ContextID] = rec
	}
	return nil
}

// save rewrites the index, oldest export first. Callers hold mu.
func (w *ReportWriter) save() error {
	records := make([]ExportRecord, 0, len(w.records))
	for _, rec := range w.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ExportedAt.Equal(records[j].ExportedAt) {
			return records[i].ContextID < records[j].ContextID
		}
		return records[i].ExportedAt.Before(records[j].ExportedAt)
	})

	file, err := os.Create(filepath.Join(w.dir, indexFile))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
