package source

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
)

// FileSvc reads one file, emitting complete lines as SourceEvents in
// bounded batches. Grounded on the teacher's FileSource (glob-expanded
// path list, format param), generalized to §4.2's chunked line reader
// and batch_lines/batch_bytes/chunk_bytes contract.
type FileSvc struct {
	h *fileHandle
}

type fileHandle struct {
	path       string
	encode     string
	batchLines int
	batchBytes int
	chunkBytes int

	f      *os.File
	reader *bufio.Reader
}

func NewFileSvc(spec data.SourceSpec) (*FileSvc, error) {
	path := stringParam(spec.Params, "path", "")
	if path == "" {
		if file := stringParam(spec.Params, "file", ""); file != "" {
			path = filepath.Join(stringParam(spec.Params, "base", ""), file)
		}
	}
	if path == "" {
		return nil, errs.NewConfigError(spec.Name, "file source requires params.path (or base+file)")
	}
	encode := stringParam(spec.Params, "encode", "text")
	switch encode {
	case "text", "base64", "hex":
	default:
		return nil, errs.NewConfigError(spec.Name, fmt.Sprintf("file source: invalid encode %q", encode))
	}
	chunk := intParam(spec.Params, "chunk_bytes", 64*1024)
	if chunk < 4*1024 {
		chunk = 4 * 1024
	}
	if chunk > 128*1024 {
		chunk = 128 * 1024
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewConfigError(spec.Name, fmt.Sprintf("file source: open %s: %v", path, err))
	}
	h := &fileHandle{
		path:       path,
		encode:     encode,
		batchLines: intParam(spec.Params, "batch_lines", 128),
		batchBytes: intParam(spec.Params, "batch_bytes", 400*1024),
		chunkBytes: chunk,
		f:          f,
		reader:     bufio.NewReaderSize(f, chunk),
	}
	return &FileSvc{h: h}, nil
}

func (s *FileSvc) Handles() []Handle { return []Handle{s.h} }
func (s *FileSvc) Stop() error       { return s.h.Stop() }

func (h *fileHandle) Identifier() string { return h.path }

func (h *fileHandle) Read(ctx context.Context) (<-chan data.SourceBatch, <-chan error) {
	out := make(chan data.SourceBatch)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		var batch []data.SourceEvent
		batchSize := 0
		flush := func() {
			if len(batch) == 0 {
				return
			}
			select {
			case out <- data.SourceBatch{SourceKey: h.path, Events: batch}:
			case <-ctx.Done():
			}
			batch = nil
			batchSize = 0
		}
		for {
			line, err := h.reader.ReadString('\n')
			trimmed := trimNewline(line)
			if len(trimmed) > 0 || (err != nil && len(line) > 0) {
				decoded, derr := h.decode(trimmed)
				if derr != nil {
					errc <- derr
					return
				}
				batch = append(batch, data.SourceEvent{
					EventID:   data.NextID(),
					SourceKey: h.path,
					Raw:       data.RawDataString(decoded),
				})
				batchSize += len(decoded)
			}
			if len(batch) >= h.batchLines || batchSize >= h.batchBytes {
				flush()
			}
			if err != nil {
				flush()
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return out, errc
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n2 := len(s); n2 > 0 && s[n2-1] == '\r' {
			s = s[:n2-1]
		}
	}
	return s
}

func (h *fileHandle) decode(s string) (string, error) {
	switch h.encode {
	case "text":
		return s, nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", errs.NewDataError("pick", 0, fmt.Errorf("file source: base64 decode: %w", err))
		}
		return string(b), nil
	case "hex":
		b, err := hex.DecodeString(s)
		if err != nil {
			return "", errs.NewDataError("pick", 0, fmt.Errorf("file source: hex decode: %w", err))
		}
		return string(b), nil
	default:
		return s, nil
	}
}

func (h *fileHandle) Stop() error { return h.f.Close() }
