// Package errs defines the three error layers described by the error
// handling design: configuration errors (never recovered internally),
// connector/IO errors (retried locally for stream endpoints), and data
// errors (routed to the error infra sink, never propagated).
//
// The shape follows schema.ValidationErrors in the teacher repo: a
// small aggregate type implementing error, built with fmt.Errorf
// wrapping at the leaves.
package errs

import "fmt"

// ConfigError reports a problem loading or validating configuration:
// parse failures, unresolved env placeholders, unknown connector kinds,
// parameter whitelist violations. Always surfaced to the caller.
type ConfigError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config error in %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError with no wrapped cause.
func NewConfigError(path, msg string) *ConfigError {
	return &ConfigError{Path: path, Msg: msg}
}

// ConnectorError covers I/O failures at a specific source or sink
// endpoint (IOError/SourceError/SinkError in the spec's layering).
// Stream endpoints retry locally with the reconnect backoff; each
// failed attempt is reported through this type and counted.
type ConnectorError struct {
	Op       string // e.g. "read", "write", "dial"
	Endpoint string
	Err      error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *ConnectorError) Unwrap() error { return e.Err }

// Diagnostic is one entry in a DataError's diagnostics buffer — the
// per-record issue list surfaced to external collaborators, e.g.
// FmtVarMissing or UnresolvedVariable.
type Diagnostic struct {
	Kind string
	Detail string
}

// DataError marks a single record that failed parse/transform/sink.
// It is never propagated to the caller; the stage that produced it
// routes the originating raw event to the error infra sink (if
// configured) or drops it with a counter increment.
type DataError struct {
	Stage      string
	RecordID   uint64
	Diagnostic []Diagnostic
	Err        error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error in %s stage (record %d): %v", e.Stage, e.RecordID, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// NewDataError wraps cause as a DataError for the named stage/record.
func NewDataError(stage string, recordID uint64, cause error) *DataError {
	return &DataError{Stage: stage, RecordID: recordID, Err: cause}
}

// AddDiagnostic appends a diagnostic entry and returns the receiver for
// chaining at the call site.
func (e *DataError) AddDiagnostic(kind, detail string) *DataError {
	e.Diagnostic = append(e.Diagnostic, Diagnostic{Kind: kind, Detail: detail})
	return e
}
