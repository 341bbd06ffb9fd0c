// Package runlog keeps a JSON-lines history of scrape runs, one file per
// day, with gzip retention for old files.
package runlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bikky983/floorsheet/internal/types"
)

var mu sync.Mutex

// Entry is one run-log line.
type Entry struct {
	Time    string           `json:"time"`
	Summary types.RunSummary `json:"summary"`
	Error   string           `json:"error,omitempty"`
}

func logDir() string {
	if v := os.Getenv("FLOORSHEET_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// nptNow returns the current time in Nepal Time (UTC+5:45), the floorsheet's
// local market timezone.
func nptNow() time.Time { return time.Now().In(time.FixedZone("NPT", 20700)) }

func dailyFilepath(t time.Time) string {
	d := t.Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

// Append writes one run-log line to today's file.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := nptNow()
	e.Time = now.Format("2006-01-02 15:04:05")
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips run-log files older than retentionDays and removes the
// originals. A non-positive retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			// if already gz exists, remove original .txt
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
