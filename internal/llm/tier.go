package llm

import (
	"fmt"
	"strings"
)

// ParamFamily names which knobs a model accepts.
type ParamFamily string

const (
	// FamilySampling models accept temperature/top_p.
	FamilySampling ParamFamily = "sampling"
	// FamilyReasoning models reject temperature and take reasoning effort
	// and verbosity knobs instead.
	FamilyReasoning ParamFamily = "reasoning"
)

// Standard tier names. A tier abstracts a class of capability/cost away from
// any concrete provider model name.
const (
	TierEconomy  = "economy"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// Spec binds a tier name to a concrete provider model.
type Spec struct {
	Tier     string
	ModelID  string
	Family   ParamFamily
	Provider string // "openai" or "bedrock"
}

// Registry resolves tier names to specs.
type Registry map[string]Spec

// Resolve returns the spec for a tier name.
func (r Registry) Resolve(tier string) (Spec, error) {
	spec, ok := r[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		return Spec{}, fmt.Errorf("llm: unknown model tier %q", tier)
	}
	return spec, nil
}

// familyForModel infers the parameter family from a model ID. OpenAI's o-series
// and gpt-5 models are reasoning models; everything else samples.
func familyForModel(modelID string) ParamFamily {
	id := strings.ToLower(modelID)
	if strings.HasPrefix(id, "o1") || strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4") || strings.HasPrefix(id, "gpt-5") {
		return FamilyReasoning
	}
	return FamilySampling
}

// NewRegistry builds the standard three-tier registry from model IDs.
func NewRegistry(provider, economyModel, standardModel, premiumModel string) Registry {
	reg := Registry{}
	for tier, model := range map[string]string{
		TierEconomy:  economyModel,
		TierStandard: standardModel,
		TierPremium:  premiumModel,
	} {
		if model == "" {
			continue
		}
		reg[tier] = Spec{
			Tier:     tier,
			ModelID:  model,
			Family:   familyForModel(model),
			Provider: provider,
		}
	}
	return reg
}
