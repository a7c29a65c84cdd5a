package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogCache keeps downloaded job logs on disk so repeated sessions over the
// same run do not hit the API again.
type LogCache struct {
	dir     string
	maxSize int64         // max total cache size in bytes
	ttl     time.Duration // cache entry TTL
}

// CacheMeta stores metadata about a cached job log.
type CacheMeta struct {
	Repo     string    `json:"repo"`
	JobID    int64     `json:"job_id"`
	Size     int64     `json:"size"`
	StoredAt time.Time `json:"stored_at"`
}

func NewLogCache(dir string, maxSizeMB int, ttl time.Duration) (*LogCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log cache dir: %w", err)
	}
	return &LogCache{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
	}, nil
}

func (lc *LogCache) repoDir(repo string) string {
	return filepath.Join(lc.dir, strings.ReplaceAll(repo, "/", "__"))
}

func (lc *LogCache) logPath(repo string, jobID int64) string {
	return filepath.Join(lc.repoDir(repo), fmt.Sprintf("job-%d.log", jobID))
}

func (lc *LogCache) metaPath(repo string, jobID int64) string {
	return filepath.Join(lc.repoDir(repo), fmt.Sprintf("job-%d.json", jobID))
}

func (lc *LogCache) HasJobLog(repo string, jobID int64) bool {
	info, err := os.Stat(lc.logPath(repo, jobID))
	if err != nil {
		return false
	}
	return !info.IsDir() && time.Since(info.ModTime()) < lc.ttl
}

// StoreJobLog writes the log through a temporary file so a partial download
// never looks like a cache hit.
func (lc *LogCache) StoreJobLog(repo string, jobID int64, r io.Reader) error {
	dir := lc.repoDir(repo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create repo cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "download-*")
	if err != nil {
		return err
	}
	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write job log %d: %w", jobID, err)
	}
	if err := os.Rename(tmp.Name(), lc.logPath(repo, jobID)); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return lc.writeMeta(CacheMeta{Repo: repo, JobID: jobID, Size: size, StoredAt: time.Now()})
}

func (lc *LogCache) GetJobLog(repo string, jobID int64) (string, error) {
	data, err := os.ReadFile(lc.logPath(repo, jobID))
	if err != nil {
		return "", fmt.Errorf("read cached job log: %w", err)
	}
	return string(data), nil
}

func (lc *LogCache) writeMeta(meta CacheMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(lc.metaPath(meta.Repo, meta.JobID), data, 0o644)
}

// ReadMeta reads the metadata written next to a cached log.
func (lc *LogCache) ReadMeta(repo string, jobID int64) (*CacheMeta, error) {
	data, err := os.ReadFile(lc.metaPath(repo, jobID))
	if err != nil {
		return nil, err
	}
	var meta CacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Evict removes expired and oversized cache entries.
func (lc *LogCache) Evict() error {
	type cacheEntry struct {
		path    string
		modTime time.Time
		size    int64
	}

	var entries []cacheEntry
	var totalSize int64

	err := filepath.Walk(lc.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		entries = append(entries, cacheEntry{path: path, modTime: info.ModTime(), size: info.Size()})
		totalSize += info.Size()
		return nil
	})
	if err != nil {
		return err
	}

	// Evict expired entries
	now := time.Now()
	remaining := entries[:0]
	for _, e := range entries {
		if now.Sub(e.modTime) > lc.ttl {
			os.Remove(e.path)
			totalSize -= e.size
		} else {
			remaining = append(remaining, e)
		}
	}
	entries = remaining

	// Evict oldest entries if over size cap
	if totalSize > lc.maxSize {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].modTime.Before(entries[j].modTime)
		})
		for _, e := range entries {
			if totalSize <= lc.maxSize {
				break
			}
			os.Remove(e.path)
			totalSize -= e.size
		}
	}
	return nil
}

// DeleteAll removes all cache entries.
func (lc *LogCache) DeleteAll() error {
	entries, err := os.ReadDir(lc.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(lc.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// TotalSize is the number of bytes held by cached logs and their metadata.
// A cache directory that does not exist yet is empty.
func (lc *LogCache) TotalSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(lc.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("size log cache: %w", err)
	}
	return total, nil
}
