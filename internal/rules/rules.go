// Package rules holds the data tables that drive the ClassLens engine:
// classification predicates, the configuration-method locator signatures,
// the call-site interpretation tables, and the scoring weight table.
// Defaults mirror Spring Security's fully qualified names; a YAML overlay
// can replace or extend any table without touching engine code.
package rules

// Feature identifies one detected configuration behavior on a classified
// type. Flags are monotonic within a run: once set they stay set.
type Feature string

// Feature flags recognized by the call-site interpreter.
const (
	FeatureAuthorizationRules Feature = "authorization_rules"
	FeatureFormLogin          Feature = "form_login"
	FeatureBasicAuth          Feature = "basic_auth"
	FeatureOAuth2Login        Feature = "oauth2_login"
	FeatureJWT                Feature = "jwt"
	FeatureSessionManagement  Feature = "session_management"
	FeatureCORS               Feature = "cors"
	FeatureCSRF               Feature = "csrf"
	FeatureHeaders            Feature = "headers"
)

// Category identifies one scoring category in the weight table.
type Category string

// Negative finding categories.
const (
	CatUnauthenticatedEndpoints Category = "unauthenticated_endpoints"
	CatWeakPasswordPolicy       Category = "weak_password_policy"
	CatMissingCSRF              Category = "missing_csrf"
	CatInsecureSession          Category = "insecure_session_management"
	CatMissingHeaders           Category = "missing_security_headers"
	CatImproperAuthorization    Category = "improper_authorization"
	CatUnencryptedComms         Category = "unencrypted_communication"
	CatVerboseErrors            Category = "verbose_error_messages"
)

// Positive practice categories.
const (
	CatMFAPresent     Category = "mfa_present"
	CatProperRBAC     Category = "proper_rbac"
	CatSecureSession  Category = "secure_session_config"
	CatHeadersPresent Category = "security_headers_present"
)

// Categories lists every scoring category. Validate requires the weight
// table to cover each one exactly.
var Categories = []Category{
	CatUnauthenticatedEndpoints,
	CatWeakPasswordPolicy,
	CatMissingCSRF,
	CatInsecureSession,
	CatMissingHeaders,
	CatImproperAuthorization,
	CatUnencryptedComms,
	CatVerboseErrors,
	CatMFAPresent,
	CatProperRBAC,
	CatSecureSession,
	CatHeadersPresent,
}

// Weight is one row of the scoring table. Positive rows add to the score,
// negative rows subtract. Description and Remediation are the static texts
// attached to findings in this category.
type Weight struct {
	Points      int    `yaml:"points"`
	Positive    bool   `yaml:"positive"`
	Description string `yaml:"description"`
	Remediation string `yaml:"remediation"`
}

// Classifier selects which types count as security configuration. A type
// matches when it carries one of the annotations, extends one of the
// superclasses, or implements one of the interfaces. All matching is exact
// fully-qualified-name equality.
type Classifier struct {
	Annotations  []string `yaml:"annotations"`
	Superclasses []string `yaml:"superclasses"`
	Interfaces   []string `yaml:"interfaces"`
}

// Signature designates a configuration method: its name and the declared
// type of its single parameter.
type Signature struct {
	Name  string `yaml:"name"`
	Param string `yaml:"param"`
}

// Interpreter maps call-site member names to feature flags. Only events
// whose receiver type name contains ReceiverFragment are considered; the
// table is intentionally non-exhaustive and unmatched members are ignored.
type Interpreter struct {
	ReceiverFragment string             `yaml:"receiver_fragment"`
	Members          map[string]Feature `yaml:"members"`
}

// AccessKind classifies an authorization-rule member.
type AccessKind string

// Access kinds for authorization-rule members.
const (
	AccessMatcher   AccessKind = "matcher"   // selects request patterns
	AccessPublic    AccessKind = "public"    // permitAll / denyAll / anonymous
	AccessPrincipal AccessKind = "principal" // requires authentication only
	AccessRole      AccessKind = "role"      // role or authority based
)

// Authorization configures the cross-cutting authorization-rule pass:
// which receiver fragments identify the rule registry and how each member
// name is classified.
type Authorization struct {
	ReceiverFragments []string              `yaml:"receiver_fragments"`
	Members           map[string]AccessKind `yaml:"members"`
}

// Hazard is a standalone risky call-site pattern. Either field may be
// empty; an empty Member matches any member on a matching receiver and an
// empty ReceiverFragment matches any receiver of the named member.
type Hazard struct {
	Member           string `yaml:"member"`
	ReceiverFragment string `yaml:"receiver_fragment"`
}

// Ruleset is the complete rule configuration for one engine instance.
type Ruleset struct {
	Classifier Classifier  `yaml:"classifier"`
	Locator    []Signature `yaml:"locator"`
	Features   Interpreter `yaml:"features"`

	Authorization Authorization `yaml:"authorization"`
	AuthProviders Classifier    `yaml:"auth_providers"`

	// SessionFragment gates session-hardening members; SessionHardening
	// lists members that indicate deliberate session configuration.
	SessionFragment  string   `yaml:"session_fragment"`
	SessionHardening []string `yaml:"session_hardening"`

	// Disable detection for per-concern configurers (csrf().disable()).
	CSRFConfigurerFragment string `yaml:"csrf_configurer_fragment"`
	CORSConfigurerFragment string `yaml:"cors_configurer_fragment"`

	WeakPassword   []Hazard `yaml:"weak_password"`
	MFAMembers     []string `yaml:"mfa_members"`
	ChannelMembers []string `yaml:"channel_members"`

	// DebugAnnotation and DebugAttr identify the verbose-diagnostics
	// marker (an enabling annotation with debug=true).
	DebugAnnotation string `yaml:"debug_annotation"`
	DebugAttr       string `yaml:"debug_attr"`

	Weights map[Category]Weight `yaml:"weights"`
}

// Defaults returns the built-in ruleset targeting Spring Security.
func Defaults() *Ruleset {
	return &Ruleset{
		Classifier: Classifier{
			Annotations: []string{
				"org.springframework.security.config.annotation.web.configuration.EnableWebSecurity",
				"org.springframework.security.config.annotation.web.reactive.EnableWebFluxSecurity",
			},
			Superclasses: []string{
				"org.springframework.security.config.annotation.web.configuration.WebSecurityConfigurerAdapter",
			},
			Interfaces: []string{
				"org.springframework.security.config.annotation.web.WebSecurityConfigurer",
			},
		},
		Locator: []Signature{
			{Name: "configure", Param: "org.springframework.security.config.annotation.web.builders.HttpSecurity"},
			{Name: "securityFilterChain", Param: "org.springframework.security.config.annotation.web.builders.HttpSecurity"},
			{Name: "filterChain", Param: "org.springframework.security.config.annotation.web.builders.HttpSecurity"},
		},
		Features: Interpreter{
			ReceiverFragment: "HttpSecurity",
			Members: map[string]Feature{
				"authorizeRequests":     FeatureAuthorizationRules,
				"authorizeHttpRequests": FeatureAuthorizationRules,
				"formLogin":             FeatureFormLogin,
				"httpBasic":             FeatureBasicAuth,
				"oauth2Login":           FeatureOAuth2Login,
				"jwt":                   FeatureJWT,
				"sessionManagement":     FeatureSessionManagement,
				"cors":                  FeatureCORS,
				"csrf":                  FeatureCSRF,
				"headers":               FeatureHeaders,
			},
		},
		Authorization: Authorization{
			ReceiverFragments: []string{
				"InterceptUrlRegistry",
				"RequestMatcherRegistry",
				"AuthorizedUrl",
			},
			Members: map[string]AccessKind{
				"antMatchers":        AccessMatcher,
				"mvcMatchers":        AccessMatcher,
				"requestMatchers":    AccessMatcher,
				"permitAll":          AccessPublic,
				"denyAll":            AccessPublic,
				"anonymous":          AccessPublic,
				"authenticated":      AccessPrincipal,
				"fullyAuthenticated": AccessPrincipal,
				"rememberMe":         AccessPrincipal,
				"hasRole":            AccessRole,
				"hasAnyRole":         AccessRole,
				"hasAuthority":       AccessRole,
				"hasAnyAuthority":    AccessRole,
				"hasIpAddress":       AccessPrincipal,
				"access":             AccessRole,
			},
		},
		AuthProviders: Classifier{
			Interfaces: []string{
				"org.springframework.security.authentication.AuthenticationProvider",
				"org.springframework.security.core.userdetails.UserDetailsService",
			},
			Superclasses: []string{
				"org.springframework.security.authentication.dao.AbstractUserDetailsAuthenticationProvider",
				"org.springframework.security.authentication.dao.DaoAuthenticationProvider",
			},
		},
		SessionFragment: "SessionManagement",
		SessionHardening: []string{
			"sessionCreationPolicy",
			"maximumSessions",
			"sessionFixation",
			"invalidSessionUrl",
		},
		CSRFConfigurerFragment: "CsrfConfigurer",
		CORSConfigurerFragment: "CorsConfigurer",
		WeakPassword: []Hazard{
			{Member: "withDefaultPasswordEncoder"},
			{ReceiverFragment: "NoOpPasswordEncoder"},
		},
		MFAMembers:      []string{"webAuthn", "oneTimeTokenLogin"},
		ChannelMembers:  []string{"requiresChannel", "redirectToHttps"},
		DebugAnnotation: "org.springframework.security.config.annotation.web.configuration.EnableWebSecurity",
		DebugAttr:       "debug",
		Weights:         defaultWeights(),
	}
}

func defaultWeights() map[Category]Weight {
	return map[Category]Weight{
		CatUnauthenticatedEndpoints: {
			Points:      25,
			Description: "Security configuration exposes endpoints without authentication requirements",
			Remediation: "Add authorization rules so every request pattern requires an authenticated principal",
		},
		CatWeakPasswordPolicy: {
			Points:      20,
			Description: "Password handling relies on a weak or no-op encoder",
			Remediation: "Use a strong adaptive password encoder (bcrypt, scrypt, argon2) for stored credentials",
		},
		CatMissingCSRF: {
			Points:      18,
			Description: "CSRF protection is absent or explicitly disabled",
			Remediation: "Enable CSRF protection for all state-changing endpoints served to browsers",
		},
		CatInsecureSession: {
			Points:      15,
			Description: "No session management policy is configured",
			Remediation: "Configure session creation policy, concurrency limits, and fixation protection",
		},
		CatMissingHeaders: {
			Points:      12,
			Description: "Security response headers are not configured",
			Remediation: "Enable the headers configurer (HSTS, content-type options, frame options)",
		},
		CatImproperAuthorization: {
			Points:      10,
			Description: "Authorization rules grant blanket access without principal or role checks",
			Remediation: "Replace permitAll-only rule sets with role or authority based access rules",
		},
		CatUnencryptedComms: {
			Points:      8,
			Description: "Credential-bearing logins are configured without a secure-channel requirement",
			Remediation: "Require HTTPS for login endpoints via requiresChannel or an HTTPS redirect",
		},
		CatVerboseErrors: {
			Points:      5,
			Description: "Security debug mode is enabled, leaking filter-chain detail in responses",
			Remediation: "Disable the debug attribute on the enabling annotation in production builds",
		},
		CatMFAPresent: {
			Points:      5,
			Positive:    true,
			Description: "A second authentication factor is configured",
			Remediation: "",
		},
		CatProperRBAC: {
			Points:      3,
			Positive:    true,
			Description: "Authorization rules use role or authority based access control",
			Remediation: "",
		},
		CatSecureSession: {
			Points:      2,
			Positive:    true,
			Description: "Session management is configured with hardening options",
			Remediation: "",
		},
		CatHeadersPresent: {
			Points:      1,
			Positive:    true,
			Description: "Security response headers are configured",
			Remediation: "",
		},
	}
}
