package engine

import (
	"testing"

	"github.com/classlens/classlens/internal/rules"
)

func inspected(name string, mutate func(*ConfigInfo)) ConfigInfo {
	ci := ConfigInfo{ClassName: name, Inspected: true}
	if mutate != nil {
		mutate(&ci)
	}
	return ci
}

func TestDeriveReport_UninspectedTypeContributesNothing(t *testing.T) {
	a := &Analysis{Configs: []ConfigInfo{{ClassName: "com.example.Opaque"}}}

	r := deriveReport(a)
	if len(r) != 0 {
		t.Errorf("report = %v, want empty: unknown is not confirmed absent", r)
	}
}

func TestDeriveReport_BareInspectedType(t *testing.T) {
	a := &Analysis{Configs: []ConfigInfo{inspected("com.example.Bare", nil)}}

	r := deriveReport(a)
	want := Report{
		rules.CatUnauthenticatedEndpoints: 1,
		rules.CatMissingCSRF:              1,
		rules.CatInsecureSession:          1,
		rules.CatMissingHeaders:           1,
	}
	if len(r) != len(want) {
		t.Fatalf("report = %v, want %v", r, want)
	}
	for cat, n := range want {
		if r[cat] != n {
			t.Errorf("%s = %d, want %d", cat, r[cat], n)
		}
	}
}

func TestDeriveReport_HeadersPresentVsMissing(t *testing.T) {
	a := &Analysis{Configs: []ConfigInfo{
		inspected("com.example.WithHeaders", func(ci *ConfigInfo) { ci.HeaderSecurityConfigured = true }),
		inspected("com.example.NoHeaders", nil),
	}}

	r := deriveReport(a)
	if r[rules.CatHeadersPresent] != 1 {
		t.Errorf("headers present = %d, want 1", r[rules.CatHeadersPresent])
	}
	if r[rules.CatMissingHeaders] != 1 {
		t.Errorf("missing headers = %d, want 1", r[rules.CatMissingHeaders])
	}
}

func TestDeriveReport_CSRFDisabledCountsTwice(t *testing.T) {
	// csrf() configured then .disable() called: one count because the
	// feature flag is set, plus one for the explicit disable.
	a := &Analysis{
		Configs: []ConfigInfo{
			inspected("com.example.Disabler", func(ci *ConfigInfo) { ci.CSRFConfigured = true }),
		},
		CSRFDisabledClasses: []string{"com.example.Disabler"},
	}

	r := deriveReport(a)
	if r[rules.CatMissingCSRF] != 1 {
		t.Errorf("missing CSRF = %d, want 1", r[rules.CatMissingCSRF])
	}

	// An uninspected class in the disabled list must not count.
	a.Configs[0].Inspected = false
	r = deriveReport(a)
	if r[rules.CatMissingCSRF] != 0 {
		t.Errorf("missing CSRF = %d, want 0 for an uninspected class", r[rules.CatMissingCSRF])
	}
}

func TestDeriveReport_UnencryptedComms(t *testing.T) {
	login := func(ci *ConfigInfo) { ci.FormLoginEnabled = true }

	a := &Analysis{Configs: []ConfigInfo{inspected("com.example.Login", login)}}
	if r := deriveReport(a); r[rules.CatUnencryptedComms] != 1 {
		t.Errorf("unencrypted = %d, want 1", r[rules.CatUnencryptedComms])
	}

	a.SecureChannelClasses = []string{"com.example.Login"}
	if r := deriveReport(a); r[rules.CatUnencryptedComms] != 0 {
		t.Errorf("unencrypted = %d, want 0 with a channel requirement", r[rules.CatUnencryptedComms])
	}

	// No interactive login configured at all: nothing to transmit.
	a = &Analysis{Configs: []ConfigInfo{inspected("com.example.TokenOnly", func(ci *ConfigInfo) {
		ci.JWTEnabled = true
	})}}
	if r := deriveReport(a); r[rules.CatUnencryptedComms] != 0 {
		t.Errorf("unencrypted = %d, want 0 without form or basic login", r[rules.CatUnencryptedComms])
	}
}

func TestDeriveReport_ClassListCategories(t *testing.T) {
	a := &Analysis{
		BlanketAccessClasses: []string{"a", "b"},
		WeakPasswordClasses:  []string{"c"},
		DebugClasses:         []string{"d"},
		MFAClasses:           []string{"e"},
		RBACClasses:          []string{"f", "g", "h"},
		SecureSessionClasses: []string{"i"},
	}

	r := deriveReport(a)
	for cat, want := range map[rules.Category]int{
		rules.CatImproperAuthorization: 2,
		rules.CatWeakPasswordPolicy:    1,
		rules.CatVerboseErrors:         1,
		rules.CatMFAPresent:            1,
		rules.CatProperRBAC:            3,
		rules.CatSecureSession:         1,
	} {
		if r[cat] != want {
			t.Errorf("%s = %d, want %d", cat, r[cat], want)
		}
	}
}

func TestDeriveReport_OmitsZeroCounts(t *testing.T) {
	a := &Analysis{Configs: []ConfigInfo{
		inspected("com.example.Full", func(ci *ConfigInfo) {
			ci.HasAuthorizationRules = true
			ci.CSRFConfigured = true
			ci.HasSessionManagement = true
			ci.HeaderSecurityConfigured = true
		}),
	}}

	r := deriveReport(a)
	if len(r) != 1 {
		t.Fatalf("report = %v, want only the headers-present count", r)
	}
	if r[rules.CatHeadersPresent] != 1 {
		t.Errorf("headers present = %d, want 1", r[rules.CatHeadersPresent])
	}
}
