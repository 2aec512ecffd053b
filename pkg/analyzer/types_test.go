package analyzer

import (
	"testing"
	"time"
)

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{180, 100},
	}
	for _, tt := range tests {
		if got := ClampConfidence(tt.in); got != tt.want {
			t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCapabilitiesSupports(t *testing.T) {
	caps := Capabilities{
		Types:       []AnalysisType{TypeSentiment, TypeMarket},
		Blockchains: []string{"ethereum"},
	}

	tests := []struct {
		name       string
		typ        AnalysisType
		blockchain string
		want       bool
	}{
		{"type and chain match", TypeSentiment, "ethereum", true},
		{"no chain constraint on request", TypeMarket, "", true},
		{"wrong type", TypeRisk, "ethereum", false},
		{"wrong chain", TypeSentiment, "solana", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := caps.Supports(tt.typ, tt.blockchain); got != tt.want {
				t.Errorf("Supports(%q, %q) = %v, want %v", tt.typ, tt.blockchain, got, tt.want)
			}
		})
	}

	unchained := Capabilities{Types: []AnalysisType{TypeRisk}}
	if !unchained.Supports(TypeRisk, "solana") {
		t.Error("plugin with no declared blockchains should accept any chain")
	}
}

func TestRequestHelpers(t *testing.T) {
	req := &AnalysisRequest{
		Input:   map[string]any{"text": "hello", "amount": 7},
		Context: &RequestContext{Blockchain: "ethereum"},
	}
	if req.Text() != "hello" {
		t.Errorf("Text() = %q", req.Text())
	}
	if req.Blockchain() != "ethereum" {
		t.Errorf("Blockchain() = %q", req.Blockchain())
	}

	bare := &AnalysisRequest{}
	if bare.Text() != "" || bare.Blockchain() != "" {
		t.Error("helpers on a bare request should return empty strings")
	}
}

func TestCachingEnabled(t *testing.T) {
	off := false
	on := true
	tests := []struct {
		name string
		opts *RequestOptions
		want bool
	}{
		{"nil options", nil, true},
		{"nil caching", &RequestOptions{}, true},
		{"explicit off", &RequestOptions{Caching: &off}, false},
		{"explicit on", &RequestOptions{Caching: &on}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.CachingEnabled(); got != tt.want {
				t.Errorf("CachingEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultCloneIsDeep(t *testing.T) {
	now := time.Now()
	orig := &AnalysisResult{
		Success: true,
		Decision: &AIDecision{
			Action:     ActionExecute,
			Confidence: 90,
			Reasoning:  []string{"looks fine"},
			RiskAssessment: &RiskAssessment{
				Level:   RiskLow,
				Factors: []string{"audited"},
			},
			Metadata: map[string]any{"k": "v"},
		},
		Provider: "stub",
		Metadata: map[string]any{"elapsed": "1ms"},
		CachedAt: &now,
	}

	clone := orig.Clone()
	clone.Decision.Reasoning[0] = "mutated"
	clone.Decision.RiskAssessment.Factors[0] = "mutated"
	clone.Decision.Metadata["k"] = "mutated"
	clone.Metadata["elapsed"] = "mutated"

	if orig.Decision.Reasoning[0] != "looks fine" ||
		orig.Decision.RiskAssessment.Factors[0] != "audited" ||
		orig.Decision.Metadata["k"] != "v" ||
		orig.Metadata["elapsed"] != "1ms" {
		t.Error("mutating the clone changed the original")
	}
}
