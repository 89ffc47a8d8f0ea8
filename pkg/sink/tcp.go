package sink

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// TCPBackend writes rendered records as newline-delimited lines over a
// persistent outbound TCP connection, reconnecting with exponential
// backoff on write failure (§5's 200ms->5s doubling policy).
//
// Grounded on pkg/stream/sink.go's NetworkSink dial/write pattern; the
// backoff policy itself is github.com/cenkalti/backoff/v4 rather than a
// hand-rolled doubling loop, since the teacher's own provisioner package
// already depends on it for reconnect logic.
type TCPBackend struct {
	cfg  Config
	addr string

	mu   sync.Mutex
	conn net.Conn
}

func NewTCPBackend(cfg Config) (*TCPBackend, error) {
	addr := stringParam(cfg.Params, "addr", "")
	if addr == "" {
		return nil, fmt.Errorf("sink %s: tcp backend requires params.addr", cfg.Name)
	}
	b := &TCPBackend{cfg: cfg, addr: addr}
	if err := b.dial(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *TCPBackend) dial() error {
	conn, err := net.DialTimeout("tcp", b.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("sink %s: dial %s: %w", b.cfg.Name, b.addr, err)
	}
	b.conn = conn
	return nil
}

func (b *TCPBackend) backoffPolicy() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	return bo
}

func (b *TCPBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	line, err := RenderRecord(rec, b.cfg.Format)
	if err != nil {
		return err
	}
	return b.writeWithRetry(ctx, append(line, '\n'))
}

func (b *TCPBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	for _, r := range recs {
		if err := b.SinkRecord(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *TCPBackend) writeWithRetry(ctx context.Context, buf []byte) error {
	op := func() error {
		b.mu.Lock()
		conn := b.conn
		b.mu.Unlock()
		if conn == nil {
			if err := b.Reconnect(ctx); err != nil {
				return err
			}
			b.mu.Lock()
			conn = b.conn
			b.mu.Unlock()
		}
		_, err := conn.Write(buf)
		if err != nil {
			_ = b.Reconnect(ctx)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(b.backoffPolicy(), ctx))
}

func (b *TCPBackend) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *TCPBackend) Reconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
	conn, err := net.DialTimeout("tcp", b.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("sink %s: reconnect %s: %w", b.cfg.Name, b.addr, err)
	}
	b.conn = conn
	return nil
}
