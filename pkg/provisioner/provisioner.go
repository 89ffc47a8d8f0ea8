// Package provisioner ensures a sink's backing store is ready before
// the engine starts writing to it: creating an Elasticsearch index or
// a Kafka topic if it doesn't already exist, idempotently.
//
// Adapted from the teacher's pkg/provisioner, which provisioned
// storage ahead of a control-plane-driven pipeline (external
// provisioning requests, pending/callback state for a GUI to poll).
// That workflow has no counterpart in this engine (§6 is a CLI tool,
// not a service with a provisioning API), so the Registry/Manager/
// ExternalProvisioner/NoopProvisioner machinery and the
// mongodb/sql/restapi provisioners (no sink kind here writes to any of
// those backends) were dropped; what's kept is the two provisioners
// whose sink kind pkg/sink actually registers, narrowed to a direct
// "make sure this exists" call driven straight off a data.SinkSpec's
// params instead of a ProvisioningRequest/Result exchange.
package provisioner

import (
	"context"
	"fmt"
)

// Provisioner ensures the resource a sink spec names already exists,
// creating it if not. A nil error means the resource is ready to
// receive writes, whether it already existed or was just created.
type Provisioner interface {
	Provision(ctx context.Context, params map[string]any) error
}

// registry maps a sink kind to the provisioner that prepares it.
var registry = map[string]Provisioner{
	"elasticsearch": NewElasticsearchProvisioner(),
	"kafka":         NewKafkaProvisioner(),
}

// ForKind returns the provisioner registered for a sink kind, if any.
// Sink kinds with no provisioner (file, syslog, tcp, blackhole,
// test_rescue) need no pre-flight step.
func ForKind(kind string) (Provisioner, bool) {
	p, ok := registry[kind]
	return p, ok
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func stringParamDefault(params map[string]any, key, def string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return def
}

func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func requireNonEmpty(params map[string]any, key string) (string, error) {
	v := stringParam(params, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
