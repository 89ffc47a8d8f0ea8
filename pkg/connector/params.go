package connector

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
)

// MergeParams merges default params with per-binding overrides under an
// allow-list. Any override key absent from allow fails with a message
// naming the rejected key and the full whitelist (S4). Nested "params"
// / "params_override" values are forbidden — call sites must flatten
// before merging.
//
// P3: total on the subset where every override key is in allow.
// L1: merging the empty override set back in is idempotent.
func MergeParams(defaults, overrides map[string]any, allow []string) (map[string]any, error) {
	allowed := make(map[string]bool, len(allow))
	for _, k := range allow {
		allowed[k] = true
	}

	for k, v := range overrides {
		if k == "params" || k == "params_override" {
			return nil, errs.NewConfigError("", fmt.Sprintf("nested %q override is not allowed; flatten keys instead", k))
		}
		if _, ok := v.(map[string]any); ok {
			return nil, errs.NewConfigError("", fmt.Sprintf("override %q must be a scalar or list, not a nested table", k))
		}
	}

	for k := range overrides {
		if !allowed[k] {
			sorted := append([]string(nil), allow...)
			sort.Strings(sorted)
			return nil, errs.NewConfigError("", fmt.Sprintf(
				"Parameter override '%s' not allowed. Permitted overrides: [%s]", k, strings.Join(sorted, ", ")))
		}
	}

	merged := make(map[string]any, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// SubstituteEnv replaces every ${VAR} occurrence in every string value
// reachable from v (walking maps/slices recursively, matching the
// getNestedField-style walker used elsewhere in the corpus) using dict,
// falling back to os.Getenv when a key is absent from dict. It returns
// the rewritten value and the name of the first unresolved placeholder,
// if any survive the substitution pass.
func SubstituteEnv(v any, dict map[string]string) (any, string) {
	switch t := v.(type) {
	case string:
		unresolved := ""
		out := envVarPattern.ReplaceAllStringFunc(t, func(m string) string {
			name := envVarPattern.FindStringSubmatch(m)[1]
			if val, ok := dict[name]; ok {
				return val
			}
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			if unresolved == "" {
				unresolved = name
			}
			return m
		})
		return out, unresolved
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			rv, unresolved := SubstituteEnv(val, dict)
			out[k] = rv
			if unresolved != "" {
				return out, unresolved
			}
		}
		return out, ""
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			rv, unresolved := SubstituteEnv(val, dict)
			out[i] = rv
			if unresolved != "" {
				return out, unresolved
			}
		}
		return out, ""
	default:
		return v, ""
	}
}

// FindUnresolved performs a read-only recursive walk and reports the
// first "${...}" placeholder still present after substitution, for the
// post-parse detection pass described in the connector plane design.
func FindUnresolved(v any) string {
	switch t := v.(type) {
	case string:
		if m := envVarPattern.FindStringSubmatch(t); m != nil {
			return m[1]
		}
		return ""
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if u := FindUnresolved(t[k]); u != "" {
				return u
			}
		}
	case []any:
		for _, it := range t {
			if u := FindUnresolved(it); u != "" {
				return u
			}
		}
	}
	return ""
}
