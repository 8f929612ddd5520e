package llm

import "testing"

func TestNewRegistryFamilies(t *testing.T) {
	reg := NewRegistry("openai", "gpt-4o-mini", "gpt-4o", "o3-mini")

	tests := []struct {
		tier       string
		wantModel  string
		wantFamily ParamFamily
	}{
		{TierEconomy, "gpt-4o-mini", FamilySampling},
		{TierStandard, "gpt-4o", FamilySampling},
		{TierPremium, "o3-mini", FamilyReasoning},
	}
	for _, tt := range tests {
		spec, err := reg.Resolve(tt.tier)
		if err != nil {
			t.Fatalf("resolve %s: %v", tt.tier, err)
		}
		if spec.ModelID != tt.wantModel {
			t.Fatalf("tier %s: expected model %s, got %s", tt.tier, tt.wantModel, spec.ModelID)
		}
		if spec.Family != tt.wantFamily {
			t.Fatalf("tier %s: expected family %s, got %s", tt.tier, tt.wantFamily, spec.Family)
		}
		if spec.Provider != "openai" {
			t.Fatalf("tier %s: expected openai provider, got %s", tt.tier, spec.Provider)
		}
	}
}

func TestResolveUnknownTier(t *testing.T) {
	reg := NewRegistry("openai", "gpt-4o-mini", "gpt-4o", "")
	if _, err := reg.Resolve("premium"); err == nil {
		t.Fatalf("expected error for unconfigured tier")
	}
	if _, err := reg.Resolve("turbo"); err == nil {
		t.Fatalf("expected error for unknown tier")
	}
}

func TestResolveNormalizesName(t *testing.T) {
	reg := NewRegistry("openai", "gpt-4o-mini", "gpt-4o", "o3-mini")
	spec, err := reg.Resolve("  Standard ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Tier != TierStandard {
		t.Fatalf("expected standard tier, got %s", spec.Tier)
	}
}

func TestFamilyForModel(t *testing.T) {
	tests := []struct {
		model string
		want  ParamFamily
	}{
		{"gpt-4o", FamilySampling},
		{"gpt-4o-mini", FamilySampling},
		{"o1-preview", FamilyReasoning},
		{"o3-mini", FamilyReasoning},
		{"o4-mini", FamilyReasoning},
		{"gpt-5", FamilyReasoning},
		{"anthropic.claude-3-5-sonnet-20241022-v2:0", FamilySampling},
	}
	for _, tt := range tests {
		if got := familyForModel(tt.model); got != tt.want {
			t.Fatalf("model %s: expected %s, got %s", tt.model, tt.want, got)
		}
	}
}
