package engine

import (
	"sort"

	"github.com/wp-labs/wp-motor-sub001/pkg/oml"
	"github.com/wp-labs/wp-motor-sub001/pkg/router"
)

// ModelIndex resolves a rule_key to the models that should run against
// it, per §4.6 step 1: "Iterate models whose rules array matches
// rule_key (glob on / segments; the longest matcher wins per rule
// key)." Every model whose rules array has at least one matching
// pattern is selected; the longest-literal-prefix match among a
// model's own patterns is what "wins" for that model (used only to
// order results deterministically, not to exclude other models).
//
// Built once at startup from the loaded OML model set and treated as
// immutable thereafter, per §5's shared-resource policy.
type ModelIndex struct {
	models []*oml.ObjModel
}

// NewModelIndex builds an index over models in their configuration
// declaration order.
func NewModelIndex(models []*oml.ObjModel) *ModelIndex {
	return &ModelIndex{models: models}
}

// modelMatch pairs a selected model with its best-matching rule
// pattern's literal-prefix length, for ordering.
type modelMatch struct {
	model    *oml.ObjModel
	bestLen  int
}

// Select returns every model whose rules array matches ruleKey, ordered
// by longest-matcher-wins (ties keep configuration order).
func (idx *ModelIndex) Select(ruleKey string) []*oml.ObjModel {
	var matches []modelMatch
	for _, m := range idx.models {
		best := -1
		for _, pattern := range m.Rules {
			if !router.MatchGlob(pattern, ruleKey) {
				continue
			}
			if l := router.LiteralPrefixLen(pattern); l > best {
				best = l
			}
		}
		if best >= 0 {
			matches = append(matches, modelMatch{model: m, bestLen: best})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].bestLen > matches[j].bestLen })
	out := make([]*oml.ObjModel, len(matches))
	for i, mm := range matches {
		out[i] = mm.model
	}
	return out
}
