package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/security"
)

type stubPlugin struct {
	analyzer.Capabilities
	name    string
	version string
	calls   int
	analyze func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error)
}

func (p *stubPlugin) Name() string    { return p.name }
func (p *stubPlugin) Version() string { return p.version }
func (p *stubPlugin) Metadata() analyzer.PluginMetadata {
	return analyzer.PluginMetadata{Author: "augur", Description: "test stub"}
}

func (p *stubPlugin) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	p.calls++
	if p.analyze != nil {
		return p.analyze(ctx, req)
	}
	return &analyzer.AnalysisResult{
		Success:  true,
		Provider: p.name,
		Decision: &analyzer.AIDecision{Action: analyzer.ActionWait, Confidence: 70},
	}, nil
}

func newStub(name string, types ...analyzer.AnalysisType) *stubPlugin {
	return &stubPlugin{
		name:         name,
		version:      "1.0.0",
		Capabilities: analyzer.Capabilities{Types: types},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryLoadAndUnload(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})

	if err := reg.Load(newStub("sentiment-basic", analyzer.TypeSentiment), nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := reg.Load(newStub("sentiment-basic", analyzer.TypeSentiment), nil); !errors.Is(err, ErrPluginExists) {
		t.Errorf("duplicate Load() error = %v, want ErrPluginExists", err)
	}
	if got := reg.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}

	if err := reg.Unload("sentiment-basic"); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if err := reg.Unload("sentiment-basic"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("second Unload() error = %v, want ErrPluginNotFound", err)
	}
	if got := reg.Count(); got != 0 {
		t.Errorf("Count() after unload = %d, want 0", got)
	}
}

func TestRegistryRejectsNilAndUnnamed(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})

	if err := reg.Load(nil, nil); !errors.Is(err, analyzer.ErrPluginLoadFailed) {
		t.Errorf("Load(nil) error = %v, want ErrPluginLoadFailed", err)
	}
	if err := reg.Load(newStub("", analyzer.TypeSentiment), nil); !errors.Is(err, analyzer.ErrPluginLoadFailed) {
		t.Errorf("Load(unnamed) error = %v, want ErrPluginLoadFailed", err)
	}
}

func TestRegistryEnforcesValidation(t *testing.T) {
	validator := security.NewValidator(security.DefaultPolicy(), quietLogger())
	reg := New(Options{Validator: validator, Enforce: true, Logger: quietLogger()})

	// No manifest, not trusted: fatal in enforcing mode.
	p := newStub("shady-analyzer", analyzer.TypeRisk)
	if err := reg.Load(p, nil); !errors.Is(err, analyzer.ErrPluginValidationFailed) {
		t.Fatalf("Load(untrusted) error = %v, want ErrPluginValidationFailed", err)
	}

	// Trusting the plugin lifts the manifest requirement.
	validator.Trust("shady-analyzer")
	if err := reg.Load(p, nil); err != nil {
		t.Fatalf("Load(trusted) error = %v", err)
	}
}

type bareStub struct{ *stubPlugin }

func (p *bareStub) Metadata() analyzer.PluginMetadata { return analyzer.PluginMetadata{} }

func TestRegistryLoadsTrustedPluginWithWarnings(t *testing.T) {
	validator := security.NewValidator(security.DefaultPolicy(), quietLogger())
	validator.Trust("terse-analyzer")
	reg := New(Options{Validator: validator, Enforce: true, Logger: quietLogger()})

	// Empty metadata produces validation warnings, not violations; the
	// plugin still loads and the warnings are logged on the way in.
	p := &bareStub{stubPlugin: newStub("terse-analyzer", analyzer.TypeSentiment)}
	result := validator.ValidatePlugin(p, nil)
	if len(result.Warnings) == 0 {
		t.Fatal("expected validation warnings for empty metadata")
	}
	if err := reg.Load(p, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := reg.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestRegistryNamesPreserveLoadOrder(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		if err := reg.Load(newStub(name, analyzer.TypeMarket), nil); err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
	}
	want := []string{"alpha", "bravo", "charlie"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryCandidatesFilterByCapability(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})

	eth := newStub("eth-only", analyzer.TypeTransaction)
	eth.Capabilities.Blockchains = []string{"ethereum"}
	any := newStub("any-chain", analyzer.TypeTransaction)
	other := newStub("sentiment", analyzer.TypeSentiment)

	for _, p := range []*stubPlugin{eth, any, other} {
		if err := reg.Load(p, nil); err != nil {
			t.Fatalf("Load(%s) error = %v", p.name, err)
		}
	}

	req := &analyzer.AnalysisRequest{
		Type:    analyzer.TypeTransaction,
		Context: &analyzer.RequestContext{Blockchain: "solana"},
	}
	got := reg.Candidates(req)
	if len(got) != 1 || got[0].Name() != "any-chain" {
		t.Fatalf("Candidates(solana tx) = %v, want [any-chain]", names(got))
	}

	req.Context.Blockchain = "ethereum"
	got = reg.Candidates(req)
	if len(got) != 2 || got[0].Name() != "eth-only" || got[1].Name() != "any-chain" {
		t.Fatalf("Candidates(ethereum tx) = %v, want [eth-only any-chain]", names(got))
	}
}

type pickyPlugin struct {
	*stubPlugin
	accept func(req *analyzer.AnalysisRequest) bool
}

func (p *pickyPlugin) ValidateRequest(req *analyzer.AnalysisRequest) bool {
	return p.accept(req)
}

func TestRegistryCandidatesHonorRequestValidator(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})

	picky := &pickyPlugin{
		stubPlugin: newStub("english-only", analyzer.TypeSentiment),
		accept: func(req *analyzer.AnalysisRequest) bool {
			return req.Text() != ""
		},
	}
	plain := newStub("any-input", analyzer.TypeSentiment)
	if err := reg.Load(picky, nil); err != nil {
		t.Fatalf("Load(picky) error = %v", err)
	}
	if err := reg.Load(plain, nil); err != nil {
		t.Fatalf("Load(plain) error = %v", err)
	}

	textless := &analyzer.AnalysisRequest{
		Type:  analyzer.TypeSentiment,
		Input: map[string]any{"amount": 12.5},
	}
	got := reg.Candidates(textless)
	if len(got) != 1 || got[0].Name() != "any-input" {
		t.Fatalf("Candidates(textless) = %v, want [any-input]", names(got))
	}

	withText := &analyzer.AnalysisRequest{
		Type:  analyzer.TypeSentiment,
		Input: map[string]any{"text": "gm"},
	}
	got = reg.Candidates(withText)
	if len(got) != 2 || got[0].Name() != "english-only" {
		t.Fatalf("Candidates(text) = %v, want [english-only any-input]", names(got))
	}
}

func names(plugins []analyzer.Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.Name()
	}
	return out
}

func TestRouterInvokesFirstCandidate(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})
	first := newStub("first", analyzer.TypeSentiment)
	second := newStub("second", analyzer.TypeSentiment)
	for _, p := range []*stubPlugin{first, second} {
		if err := reg.Load(p, nil); err != nil {
			t.Fatalf("Load(%s) error = %v", p.name, err)
		}
	}

	router := NewRouter(reg, nil, quietLogger())
	req := &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment, Input: map[string]any{"text": "gm"}}

	result, used, err := router.Route(context.Background(), req)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if used.Name() != "first" {
		t.Errorf("Route() used %q, want first", used.Name())
	}
	if result.Provider != "first" {
		t.Errorf("result.Provider = %q, want first", result.Provider)
	}
	if first.calls != 1 || second.calls != 0 {
		t.Errorf("calls = (%d, %d), want (1, 0)", first.calls, second.calls)
	}
}

func TestRouterFallsBackExactlyOnce(t *testing.T) {
	tests := []struct {
		name          string
		secondFails   bool
		wantErr       bool
		wantProvider  string
		wantFirstTwo  [2]int
		wantThirdCall int
	}{
		{
			name:         "second succeeds",
			wantProvider: "second",
			wantFirstTwo: [2]int{1, 1},
		},
		{
			name:         "second also fails, third never tried",
			secondFails:  true,
			wantErr:      true,
			wantFirstTwo: [2]int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(Options{Logger: quietLogger()})
			boom := func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
				return nil, fmt.Errorf("model unavailable")
			}

			first := newStub("first", analyzer.TypeSentiment)
			first.analyze = boom
			second := newStub("second", analyzer.TypeSentiment)
			if tt.secondFails {
				second.analyze = boom
			}
			third := newStub("third", analyzer.TypeSentiment)
			for _, p := range []*stubPlugin{first, second, third} {
				if err := reg.Load(p, nil); err != nil {
					t.Fatalf("Load(%s) error = %v", p.name, err)
				}
			}

			router := NewRouter(reg, nil, quietLogger())
			req := &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment}
			result, _, err := router.Route(context.Background(), req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Route() error = nil, want failure from primary")
				}
			} else {
				if err != nil {
					t.Fatalf("Route() error = %v", err)
				}
				if result.Provider != tt.wantProvider {
					t.Errorf("result.Provider = %q, want %q", result.Provider, tt.wantProvider)
				}
			}
			if first.calls != tt.wantFirstTwo[0] || second.calls != tt.wantFirstTwo[1] {
				t.Errorf("calls = (%d, %d), want (%d, %d)",
					first.calls, second.calls, tt.wantFirstTwo[0], tt.wantFirstTwo[1])
			}
			if third.calls != tt.wantThirdCall {
				t.Errorf("third.calls = %d, want %d", third.calls, tt.wantThirdCall)
			}
		})
	}
}

func TestRouterNoSuitableAnalyzer(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})
	if err := reg.Load(newStub("sentiment", analyzer.TypeSentiment), nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	router := NewRouter(reg, nil, quietLogger())
	req := &analyzer.AnalysisRequest{
		Type:    analyzer.TypeMarket,
		Context: &analyzer.RequestContext{Blockchain: "ethereum"},
	}
	_, _, err := router.Route(context.Background(), req)

	if !errors.Is(err, analyzer.ErrNoSuitableAnalyzer) {
		t.Fatalf("Route() error = %v, want ErrNoSuitableAnalyzer", err)
	}
	var nsErr *NoSuitableAnalyzerError
	if !errors.As(err, &nsErr) {
		t.Fatal("error chain does not contain *NoSuitableAnalyzerError")
	}
	if nsErr.AnalysisType != "market" || nsErr.Blockchain != "ethereum" || nsErr.Loaded != 1 {
		t.Errorf("NoSuitableAnalyzerError = %+v", nsErr)
	}
}

func TestRouterCustomInvoker(t *testing.T) {
	reg := New(Options{Logger: quietLogger()})
	p := newStub("wrapped", analyzer.TypeRisk)
	if err := reg.Load(p, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var invoked []string
	invoke := func(ctx context.Context, plugin analyzer.Plugin, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
		invoked = append(invoked, plugin.Name())
		return plugin.Analyze(ctx, req)
	}

	router := NewRouter(reg, invoke, quietLogger())
	if _, _, err := router.Route(context.Background(), &analyzer.AnalysisRequest{Type: analyzer.TypeRisk}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if len(invoked) != 1 || invoked[0] != "wrapped" {
		t.Errorf("invoker saw %v, want [wrapped]", invoked)
	}
}
