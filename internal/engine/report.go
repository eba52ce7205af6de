package engine

import "github.com/classlens/classlens/internal/rules"

// Report is the flattened scoring input: one integer count per finding
// category. It is deliberately a separate, flatter shape than Analysis so
// the scorer can be exercised with synthetic counts and never needs to
// see raw call-site data.
type Report map[rules.Category]int

// deriveReport flattens an Analysis into category counts. Only inspected
// types contribute negative counts; a type whose configuration could not
// be inspected stays "unknown" and is surfaced through diagnostics
// instead of being scored as a missing feature.
func deriveReport(a *Analysis) Report {
	r := make(Report, len(rules.Categories))

	for i := range a.Configs {
		ci := &a.Configs[i]
		if !ci.Inspected {
			continue
		}
		if !ci.HasAuthorizationRules {
			r[rules.CatUnauthenticatedEndpoints]++
		}
		if !ci.CSRFConfigured {
			r[rules.CatMissingCSRF]++
		}
		if !ci.HasSessionManagement {
			r[rules.CatInsecureSession]++
		}
		if !ci.HeaderSecurityConfigured {
			r[rules.CatMissingHeaders]++
		} else {
			r[rules.CatHeadersPresent]++
		}
		if (ci.FormLoginEnabled || ci.BasicAuthEnabled) && !inList(ci.ClassName, a.SecureChannelClasses) {
			r[rules.CatUnencryptedComms]++
		}
	}

	// A type that configured CSRF but then explicitly disabled it is as
	// exposed as one that never configured it.
	for _, name := range a.CSRFDisabledClasses {
		if configInspected(a, name) && configHas(a, name, func(ci *ConfigInfo) bool { return ci.CSRFConfigured }) {
			r[rules.CatMissingCSRF]++
		}
	}

	r[rules.CatImproperAuthorization] += len(a.BlanketAccessClasses)
	r[rules.CatWeakPasswordPolicy] += len(a.WeakPasswordClasses)
	r[rules.CatVerboseErrors] += len(a.DebugClasses)

	r[rules.CatMFAPresent] += len(a.MFAClasses)
	r[rules.CatProperRBAC] += len(a.RBACClasses)
	r[rules.CatSecureSession] += len(a.SecureSessionClasses)

	for cat, n := range r {
		if n == 0 {
			delete(r, cat)
		}
	}
	return r
}

func inList(name string, list []string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}

func configInspected(a *Analysis, name string) bool {
	return configHas(a, name, func(ci *ConfigInfo) bool { return ci.Inspected })
}

func configHas(a *Analysis, name string, pred func(*ConfigInfo) bool) bool {
	for i := range a.Configs {
		if a.Configs[i].ClassName == name {
			return pred(&a.Configs[i])
		}
	}
	return false
}
