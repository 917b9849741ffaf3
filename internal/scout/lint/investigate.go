package lint

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// writeKeywords are the clauses a read-only investigation query may never
// contain, checked lexically before the query is ever handed to the
// store. This is a coarse first line of defense; AllowedLabels,
// AllowedRelationships, and MaxDepth below are the actual permission
// surface the parsed query is checked against.
var writeKeywords = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|CALL\s+apoc\.)\b`)

// matchClause extracts one MATCH pattern's node labels, relationship
// types, and hop count from a Cypher-shaped query. It is intentionally a
// narrow pattern match, not a full Cypher grammar — the sandbox only
// needs to bound what an admin investigation can touch, not execute
// arbitrary graph queries.
var matchClause = regexp.MustCompile(`\(\s*\w*\s*:\s*(\w+)\s*\)|\[\s*:\s*(\w+)\s*\]`)

// Permissions bounds what an admin investigation query may read: the
// node labels and relationship types it may traverse, and the maximum
// hop depth, per section 4.10's "permission set restricts labels,
// relationships, blocks writes, bounds depth".
type Permissions struct {
	AllowedLabels        map[string]bool
	AllowedRelationships map[string]bool
	MaxDepth             int
}

// DefaultPermissions grants read access to every documented node label
// and edge relationship at a conservative depth, the same bound the
// dedup and synthesis read paths operate under (section 6.4's ~40
// read methods never themselves exceed a few hops).
func DefaultPermissions() Permissions {
	labels := map[string]bool{}
	for _, l := range []string{"Tension", "Aid", "Need", "Notice", "Gathering", "Actor", "Source", "Place", "Resource", "Situation", "Citation"} {
		labels[l] = true
	}
	relationships := map[string]bool{}
	for _, r := range []string{"RESPONDS_TO", "EVIDENCES", "GATHERS_AT", "MENTIONS", "CITES", "PART_OF"} {
		relationships[r] = true
	}
	return Permissions{AllowedLabels: labels, AllowedRelationships: relationships, MaxDepth: 3}
}

// Investigator runs admin investigation queries against a bounded,
// read-only AdminQuery, producing audit notes but never mutating the
// graph (section 4.10). It is used to improve the lint gates over time,
// not to serve live traffic.
type Investigator struct {
	store graph.AdminQuery
	perms Permissions
}

// NewInvestigator constructs an Investigator with the given permission
// set, scoped to one AdminQuery-backed store.
func NewInvestigator(store graph.AdminQuery, perms Permissions) *Investigator {
	return &Investigator{store: store, perms: perms}
}

// Investigate validates query against the permission set before
// executing it: rejects write keywords outright, rejects any label or
// relationship type not in AllowedLabels/AllowedRelationships, and
// rejects a pattern with more hops than MaxDepth. A validated query is
// then passed through verbatim to the store, which trusts this
// validation has already happened.
func (inv *Investigator) Investigate(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if writeKeywords.MatchString(query) {
		return nil, fmt.Errorf("lint: investigation query contains a write clause")
	}

	labels, relationships, hops := parsePattern(query)
	for _, label := range labels {
		if !inv.perms.AllowedLabels[label] {
			return nil, fmt.Errorf("lint: investigation query references disallowed label %q", label)
		}
	}
	for _, rel := range relationships {
		if !inv.perms.AllowedRelationships[rel] {
			return nil, fmt.Errorf("lint: investigation query references disallowed relationship %q", rel)
		}
	}
	if inv.perms.MaxDepth > 0 && hops > inv.perms.MaxDepth {
		return nil, fmt.Errorf("lint: investigation query depth %d exceeds permitted depth %d", hops, inv.perms.MaxDepth)
	}

	if params == nil {
		params = map[string]any{}
	}
	params["labels"] = labels

	rows, err := inv.store.Execute(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("lint: investigation query: %w", err)
	}
	return rows, nil
}

// parsePattern extracts the node labels and relationship types
// referenced by a Cypher-shaped MATCH pattern, and counts hops as the
// number of relationship segments in the longest `->`/`<-` chain.
func parsePattern(query string) (labels, relationships []string, hops int) {
	for _, m := range matchClause.FindAllStringSubmatch(query, -1) {
		switch {
		case m[1] != "":
			labels = append(labels, m[1])
		case m[2] != "":
			relationships = append(relationships, m[2])
		}
	}
	hops = strings.Count(query, "-[") + strings.Count(query, "]-")
	if hops > 0 {
		hops = (hops + 1) / 2
	}
	return labels, relationships, hops
}
