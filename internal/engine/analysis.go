package engine

import "github.com/classlens/classlens/internal/rules"

// Location points at one invocation instruction for diagnostics output.
type Location struct {
	Class  string `json:"class"`
	Method string `json:"method"`
	Offset int    `json:"offset"`
}

// Event is one call-site event extracted from a method's instruction
// stream: the receiver type, the invoked member, and where it was seen.
// Event order follows bytecode order, which is a hint only; branches are
// not evaluated.
type Event struct {
	Receiver string
	Member   string
	Loc      Location
}

// ConfigInfo is the per-type detection result for one classified
// security-configuration type. The nine feature booleans are monotonic
// within a run and only meaningful when Inspected is true: a type whose
// configuration method could not be located or traced is recorded with
// Inspected=false, meaning "unknown", not "confirmed absent".
type ConfigInfo struct {
	ClassName string `json:"class"`
	Inspected bool   `json:"inspected"`

	HasAuthorizationRules    bool `json:"has_authorization_rules"`
	FormLoginEnabled         bool `json:"form_login_enabled"`
	BasicAuthEnabled         bool `json:"basic_auth_enabled"`
	OAuth2LoginEnabled       bool `json:"oauth2_login_enabled"`
	JWTEnabled               bool `json:"jwt_enabled"`
	HasSessionManagement     bool `json:"has_session_management"`
	CORSEnabled              bool `json:"cors_enabled"`
	CSRFConfigured           bool `json:"csrf_configured"`
	HeaderSecurityConfigured bool `json:"header_security_configured"`
}

// apply sets the feature flag for f. Setting is idempotent; flags never
// revert within a run.
func (ci *ConfigInfo) apply(f rules.Feature) {
	switch f {
	case rules.FeatureAuthorizationRules:
		ci.HasAuthorizationRules = true
	case rules.FeatureFormLogin:
		ci.FormLoginEnabled = true
	case rules.FeatureBasicAuth:
		ci.BasicAuthEnabled = true
	case rules.FeatureOAuth2Login:
		ci.OAuth2LoginEnabled = true
	case rules.FeatureJWT:
		ci.JWTEnabled = true
	case rules.FeatureSessionManagement:
		ci.HasSessionManagement = true
	case rules.FeatureCORS:
		ci.CORSEnabled = true
	case rules.FeatureCSRF:
		ci.CSRFConfigured = true
	case rules.FeatureHeaders:
		ci.HeaderSecurityConfigured = true
	}
}

// AuthRule is the roll-up for one authorization-rule member across the
// whole application: how often it was invoked and where.
type AuthRule struct {
	Member    string           `json:"member"`
	Kind      rules.AccessKind `json:"kind"`
	Count     int              `json:"count"`
	Locations []Location       `json:"locations"`
}

// AuthProvider describes one detected authentication-provider type and
// which classification predicate matched it.
type AuthProvider struct {
	ClassName string `json:"class"`
	Via       string `json:"via"`
}

// SessionInfo is the cross-cutting session-management view.
type SessionInfo struct {
	Configured bool     `json:"configured"`
	Hardened   bool     `json:"hardened"`
	Members    []string `json:"members,omitempty"`
}

// ConcernInfo is the cross-cutting view for a single toggleable concern
// (CORS, CSRF): whether it was configured anywhere and whether any call
// site explicitly disabled it.
type ConcernInfo struct {
	Configured bool `json:"configured"`
	Disabled   bool `json:"disabled"`
}

// Analysis is the full aggregated result of one run. It is immutable once
// produced. Configs preserves classifier order. The class lists are
// cross-cutting views derived during aggregation; they only ever name
// inspected types, so "unknown" never leaks into a count. Incomplete is
// set when the run was canceled before every classified type was
// dispatched; an incomplete analysis is never scored.
type Analysis struct {
	Configs       []ConfigInfo        `json:"configs"`
	AuthRules     map[string]AuthRule `json:"auth_rules,omitempty"`
	AuthProviders []AuthProvider      `json:"auth_providers,omitempty"`
	Session       SessionInfo         `json:"session"`
	CORS          ConcernInfo         `json:"cors"`
	CSRF          ConcernInfo         `json:"csrf"`

	MFAClasses           []string `json:"mfa_classes,omitempty"`
	RBACClasses          []string `json:"rbac_classes,omitempty"`
	BlanketAccessClasses []string `json:"blanket_access_classes,omitempty"`
	SecureChannelClasses []string `json:"secure_channel_classes,omitempty"`
	SecureSessionClasses []string `json:"secure_session_classes,omitempty"`
	CSRFDisabledClasses  []string `json:"csrf_disabled_classes,omitempty"`
	WeakPasswordClasses  []string `json:"weak_password_classes,omitempty"`
	DebugClasses         []string `json:"debug_classes,omitempty"`

	Incomplete bool `json:"incomplete"`
}
