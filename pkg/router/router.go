// Package router implements the rule-based sink router: glob matching
// of a rule_key or model name against sink groups, longest-matcher-wins
// resolution with configuration-order tie-breaking (§4.9, S3, and
// Open Question #3 resolved in DESIGN.md).
//
// No corpus library generalizes "/"-segment glob matching against a
// route table at transform time (gorilla/mux, pulled in transitively
// through bento, is HTTP-request-path specific); this is derived
// directly from the design prose, the way a teacher author would
// translate a design note into code without an off-the-shelf helper.
package router

import (
	"fmt"
	"strings"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/errs"
)

// Group is a sink group: it is keyed by either Rule patterns (matched
// against a record's rule_key) or Oml patterns (matched against the
// model name that produced the record) — never both.
type Group struct {
	Name  string
	Rule  []string
	Oml   []string
	Sinks []data.SinkSpec
}

// Validate enforces the mutual-exclusion and non-empty-pattern
// invariants from §4.9.
func (g Group) Validate() error {
	if len(g.Rule) > 0 && len(g.Oml) > 0 {
		return errs.NewConfigError("", fmt.Sprintf("sink group %q: rule and oml are mutually exclusive", g.Name))
	}
	for _, p := range g.Rule {
		if p == "" {
			return errs.NewConfigError("", fmt.Sprintf("sink group %q: empty rule pattern", g.Name))
		}
		if !strings.HasPrefix(p, "/") {
			return errs.NewConfigError("", fmt.Sprintf("sink group %q: rule pattern %q must start with '/'", g.Name, p))
		}
	}
	for _, p := range g.Oml {
		if p == "" {
			return errs.NewConfigError("", fmt.Sprintf("sink group %q: empty oml pattern", g.Name))
		}
	}
	return nil
}

// Router holds the ordered set of sink groups (configuration order
// matters for tie-breaking). Infra sinks are not part of it.
type Router struct {
	groups []Group
}

// NewRouter builds a Router from groups in their configuration-file
// declaration order.
func NewRouter(groups []Group) (*Router, error) {
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}
	return &Router{groups: groups}, nil
}

// candidateMatch pairs a matched group with the matcher string that
// matched, for longest-matcher-wins comparison.
type candidateMatch struct {
	idx     int
	group   Group
	matcher string
}

// Route resolves the sink groups for one record: OML-pattern groups are
// tried first against modelName, falling back to rule-pattern groups
// against ruleKey; within each pass, the longest-literal-prefix matcher
// wins, and configuration order breaks exact-length ties (§4.9, S3).
// An empty result means the record is infra-routed to "miss".
func (r *Router) Route(ruleKey, modelName string) []Group {
	if g, ok := r.bestMatch(modelName, true); ok {
		return []Group{g}
	}
	if g, ok := r.bestMatch(ruleKey, false); ok {
		return []Group{g}
	}
	return nil
}

func (r *Router) bestMatch(key string, omlPass bool) (Group, bool) {
	var best *candidateMatch
	for i, g := range r.groups {
		patterns := g.Rule
		if omlPass {
			patterns = g.Oml
		}
		for _, p := range patterns {
			if !matchGlob(p, key) {
				continue
			}
			cand := candidateMatch{idx: i, group: g, matcher: p}
			if best == nil || better(cand, *best) {
				c := cand
				best = &c
			}
		}
	}
	if best == nil {
		return Group{}, false
	}
	return best.group, true
}

// better reports whether a should replace b as the current best match:
// longer literal-prefix length wins; on an exact tie, the earlier
// configuration-order candidate (lower idx) wins.
func better(a, b candidateMatch) bool {
	la, lb := literalPrefixLen(a.matcher), literalPrefixLen(b.matcher)
	if la != lb {
		return la > lb
	}
	return a.idx < b.idx
}

func literalPrefixLen(pattern string) int {
	segs := strings.Split(strings.Trim(pattern, "/"), "/")
	n := 0
	for _, s := range segs {
		if s == "*" || s == "**" {
			break
		}
		n++
	}
	return n
}

// matchGlob matches key against a "/"-segment glob pattern: "*" matches
// exactly one segment, "**" matches zero or more segments.
func matchGlob(pattern, key string) bool {
	return MatchGlob(pattern, key)
}

// MatchGlob is the exported form of the "/"-segment glob matcher, reused
// by the engine's model index to resolve a rule_key against each
// model's own rules array (§4.6 step 1).
func MatchGlob(pattern, key string) bool {
	pSegs := splitSegments(pattern)
	kSegs := splitSegments(key)
	return matchSegs(pSegs, kSegs)
}

// LiteralPrefixLen is the exported form of literalPrefixLen, used by
// callers outside this package that need the same longest-matcher-wins
// comparison the router applies to sink groups (§4.6 step 1's "longest
// matcher wins per rule key" for model selection).
func LiteralPrefixLen(pattern string) int {
	return literalPrefixLen(pattern)
}

func splitSegments(s string) []string {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func matchSegs(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	head := pattern[0]
	if head == "**" {
		if matchSegs(pattern[1:], key) {
			return true
		}
		if len(key) == 0 {
			return false
		}
		return matchSegs(pattern, key[1:])
	}
	if len(key) == 0 {
		return false
	}
	if head == "*" || head == key[0] {
		return matchSegs(pattern[1:], key[1:])
	}
	return false
}
