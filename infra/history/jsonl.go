package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/natefinch/lumberjack.v2"

	core "github.com/kilianp07/opsreport/core/history"
)

// RotatingJSONLStore appends records to a JSONL file with automatic rotation.
// A later line for the same location and day replaces earlier ones.
type RotatingJSONLStore struct {
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

// Add writes the record and triggers rotation if needed.
func (s *RotatingJSONLStore) Add(_ context.Context, r core.Record) error {
	return json.NewEncoder(s.logger).Encode(r)
}

// Query reads the active and rotated files. When several lines share a
// location and day the most recently recorded one wins.
func (s *RotatingJSONLStore) Query(ctx context.Context, q core.Query) ([]core.Record, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	latest := map[string]core.Record{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var r core.Record
			if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
				continue
			}
			if !q.Match(r) {
				continue
			}
			k := r.Location + "|" + r.Date
			if prev, ok := latest[k]; ok && prev.RecordedAt.After(r.RecordedAt) {
				continue
			}
			latest[k] = r
		}
		_ = file.Close()
	}
	res := make([]core.Record, 0, len(latest))
	for _, r := range latest {
		res = append(res, r)
	}
	core.Sort(res)
	return res, nil
}

// files returns rotated backups oldest first followed by the active file.
func (s *RotatingJSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := s.path[:len(s.path)-len(ext)]
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	if _, err := os.Stat(s.path); err == nil {
		backups = append(backups, s.path)
	}
	return backups, nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.logger.Close()
}
