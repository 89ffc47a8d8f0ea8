package sink

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// FileBackend appends rendered records to a file, one record per line.
// Grounded on pkg/stream/sink.go's FileSink (os.OpenFile append mode,
// mutex-guarded Write).
type FileBackend struct {
	cfg Config

	mu   sync.Mutex
	f    *os.File
	path string
}

// NewFileBackend opens (or creates) cfg.Params["path"] for appending.
func NewFileBackend(cfg Config) (*FileBackend, error) {
	path := stringParam(cfg.Params, "path", "")
	if path == "" {
		return nil, fmt.Errorf("sink %s: file backend requires params.path", cfg.Name)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink %s: open %s: %w", cfg.Name, path, err)
	}
	return &FileBackend{cfg: cfg, f: f, path: path}, nil
}

func (b *FileBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	line, err := RenderRecord(rec, b.cfg.Format)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err = b.f.Write(append(line, '\n'))
	return err
}

func (b *FileBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	for _, r := range recs {
		if err := b.SinkRecord(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *FileBackend) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.f.Close()
}

// Reconnect reopens the file; used after a transient filesystem error.
func (b *FileBackend) Reconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.f.Close()
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	b.f = f
	return nil
}
