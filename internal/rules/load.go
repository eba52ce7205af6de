package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML overlay and applies it on top of Defaults. Absent
// sections keep their defaults; present list sections replace the default
// wholesale; map sections (feature members, weights) merge key by key.
// The merged ruleset is validated before being returned.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	rs := Defaults()
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rs, nil
}

// Validate checks the ruleset for caller mistakes. A broken rule table is
// a startup error for the whole run, unlike per-artifact gaps which the
// engine degrades to diagnostics.
func (rs *Ruleset) Validate() error {
	c := rs.Classifier
	if len(c.Annotations) == 0 && len(c.Superclasses) == 0 && len(c.Interfaces) == 0 {
		return fmt.Errorf("classifier has no predicates")
	}
	if len(rs.Locator) == 0 {
		return fmt.Errorf("locator has no method signatures")
	}
	for i, sig := range rs.Locator {
		if sig.Name == "" || sig.Param == "" {
			return fmt.Errorf("locator signature %d: name and param are both required", i)
		}
	}
	if rs.Features.ReceiverFragment == "" {
		return fmt.Errorf("features: receiver_fragment is required")
	}
	if len(rs.Features.Members) == 0 {
		return fmt.Errorf("features: member table is empty")
	}
	for member, f := range rs.Features.Members {
		if !knownFeature(f) {
			return fmt.Errorf("features: member %s maps to unknown feature %q", member, f)
		}
	}
	if len(rs.Authorization.ReceiverFragments) == 0 {
		return fmt.Errorf("authorization: receiver_fragments is empty")
	}
	if len(rs.Authorization.Members) == 0 {
		return fmt.Errorf("authorization: member table is empty")
	}
	for _, h := range rs.WeakPassword {
		if h.Member == "" && h.ReceiverFragment == "" {
			return fmt.Errorf("weak_password: hazard needs a member or a receiver fragment")
		}
	}
	for _, cat := range Categories {
		w, ok := rs.Weights[cat]
		if !ok {
			return fmt.Errorf("weights: missing category %s", cat)
		}
		if w.Points <= 0 {
			return fmt.Errorf("weights: category %s has non-positive points %d", cat, w.Points)
		}
		if w.Description == "" {
			return fmt.Errorf("weights: category %s has no description", cat)
		}
	}
	for cat := range rs.Weights {
		if !knownCategory(cat) {
			return fmt.Errorf("weights: unknown category %s", cat)
		}
	}
	return nil
}

func knownFeature(f Feature) bool {
	switch f {
	case FeatureAuthorizationRules, FeatureFormLogin, FeatureBasicAuth,
		FeatureOAuth2Login, FeatureJWT, FeatureSessionManagement,
		FeatureCORS, FeatureCSRF, FeatureHeaders:
		return true
	}
	return false
}

func knownCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
