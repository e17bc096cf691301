// Package resume persists hashing checkpoints so an interrupted run over a
// large file can continue where it stopped.
package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// MetaVersion is the checkpoint schema version.
const MetaVersion uint16 = 1

// Meta stores the engine state after Offset bytes of Input.
type Meta struct {
	Version uint16    `json:"version"`
	Input   string    `json:"input"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Offset  int64     `json:"offset"`
	State   []byte    `json:"state"`
}

// Matches reports whether the checkpoint was taken from the file described
// by info at path.
func (m Meta) Matches(path string, info os.FileInfo) bool {
	return m.Input == path && m.Size == info.Size() && m.ModTime.Equal(info.ModTime()) && m.Offset <= m.Size
}

// LoadMeta loads a checkpoint file.
func LoadMeta(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("read checkpoint: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("decode checkpoint: %w", err)
	}
	if meta.Version != MetaVersion {
		return Meta{}, fmt.Errorf("unsupported checkpoint version %d", meta.Version)
	}
	return meta, nil
}

// SaveMetaAtomic writes a checkpoint atomically to path.
func SaveMetaAtomic(path string, meta Meta) error {
	meta.Version = MetaVersion
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".shacheck-ckpt-*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write checkpoint temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync checkpoint temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename checkpoint temp file: %w", err)
	}
	return nil
}
