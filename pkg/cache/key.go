package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"augur-hq/augur/pkg/analyzer"
)

// keyFields is the canonical subset of request fields that affect
// analysis output. Anything outside this set (request ID, timestamp,
// priority, fallback strategy) must not influence the key: two
// requests asking the same question share a cache entry.
type keyFields struct {
	Type       analyzer.AnalysisType `json:"type"`
	Input      map[string]any        `json:"input,omitempty"`
	Blockchain string                `json:"blockchain,omitempty"`
	Protocol   string                `json:"protocol,omitempty"`
	Timeframe  string                `json:"timeframe,omitempty"`
	Providers  []string              `json:"providers,omitempty"`
}

// Key derives the deterministic cache key for a request.
//
// The canonical object is JSON-serialized (Go serializes map keys in
// sorted order, so field ordering in Input cannot perturb the key) and
// folded through SHA-256. The key is prefixed with the analysis type so
// collisions across types are impossible even with a truncated hash.
func Key(req *analyzer.AnalysisRequest) string {
	fields := keyFields{
		Type:  req.Type,
		Input: req.Input,
	}
	if req.Context != nil {
		fields.Blockchain = req.Context.Blockchain
		fields.Protocol = req.Context.Protocol
		fields.Timeframe = req.Context.Timeframe
	}
	if req.Options != nil && len(req.Options.Providers) > 0 {
		fields.Providers = append([]string(nil), req.Options.Providers...)
		sort.Strings(fields.Providers)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		// Input maps holding non-serializable values cannot be keyed
		// canonically; fall back to a best-effort textual form.
		data = []byte(fmt.Sprintf("%v|%v|%v", fields.Type, fields.Input, fields.Providers))
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", req.Type, hex.EncodeToString(sum[:8]))
}
