package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("default ruleset invalid: %v", err)
	}
}

func TestLoad_EmptyOverlayKeepsDefaults(t *testing.T) {
	rs, err := Load(writeRules(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := Defaults()
	if len(rs.Classifier.Annotations) != len(def.Classifier.Annotations) {
		t.Errorf("annotations = %v", rs.Classifier.Annotations)
	}
	if len(rs.Weights) != len(def.Weights) {
		t.Errorf("weights = %d entries, want %d", len(rs.Weights), len(def.Weights))
	}
}

func TestLoad_ListSectionsReplace(t *testing.T) {
	rs, err := Load(writeRules(t, `
classifier:
  annotations:
    - com.example.security.EnableCustomSecurity
locator:
  - name: secure
    param: com.example.security.HttpConfig
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(rs.Classifier.Annotations) != 1 || rs.Classifier.Annotations[0] != "com.example.security.EnableCustomSecurity" {
		t.Errorf("annotations = %v", rs.Classifier.Annotations)
	}
	// Untouched predicate lists keep their defaults.
	if len(rs.Classifier.Superclasses) == 0 {
		t.Error("superclasses lost their defaults")
	}
	if len(rs.Locator) != 1 || rs.Locator[0].Name != "secure" {
		t.Errorf("locator = %+v", rs.Locator)
	}
}

func TestLoad_MapSectionsMerge(t *testing.T) {
	rs, err := Load(writeRules(t, `
features:
  members:
    saml2Login: oauth2_login
weights:
  missing_csrf:
    points: 30
    description: CSRF protection disabled or missing
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if rs.Features.Members["saml2Login"] != FeatureOAuth2Login {
		t.Errorf("saml2Login = %q", rs.Features.Members["saml2Login"])
	}
	if rs.Features.Members["formLogin"] != FeatureFormLogin {
		t.Error("default member table lost on merge")
	}
	if rs.Weights[CatMissingCSRF].Points != 30 {
		t.Errorf("missing_csrf points = %d, want 30", rs.Weights[CatMissingCSRF].Points)
	}
	if rs.Weights[CatUnauthenticatedEndpoints].Points != 25 {
		t.Error("untouched weight rows lost on merge")
	}
}

func TestLoad_Failures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unparseable",
			content: "classifier: [\n",
			wantErr: "parsing rules file",
		},
		{
			name:    "unknown feature",
			content: "features:\n  members:\n    saml2Login: saml\n",
			wantErr: "unknown feature",
		},
		{
			name:    "unknown weight category",
			content: "weights:\n  made_up:\n    points: 10\n    description: x\n",
			wantErr: "unknown category",
		},
		{
			name:    "non-positive points",
			content: "weights:\n  missing_csrf:\n    points: 0\n    description: x\n",
			wantErr: "non-positive points",
		},
		{
			name:    "weight without description",
			content: "weights:\n  missing_csrf:\n    points: 12\n",
			wantErr: "no description",
		},
		{
			name:    "empty classifier",
			content: "classifier:\n  annotations: []\n  superclasses: []\n  interfaces: []\n",
			wantErr: "no predicates",
		},
		{
			name:    "incomplete locator signature",
			content: "locator:\n  - name: configure\n",
			wantErr: "name and param",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeRules(t, tc.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
