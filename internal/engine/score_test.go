package engine

import (
	"reflect"
	"testing"

	"github.com/classlens/classlens/internal/rules"
)

func scoreDefaults(t *testing.T, r Report) (int, []Finding) {
	t.Helper()
	return ScoreReport(r, rules.Defaults().Weights)
}

func TestScoreReport_AllZero(t *testing.T) {
	score, findings := scoreDefaults(t, Report{})
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %d, want none", len(findings))
	}
}

func TestScoreReport_KnownScenario(t *testing.T) {
	// 100 - 25 (unauthenticated) - 18 (missing CSRF) = 57
	score, findings := scoreDefaults(t, Report{
		rules.CatUnauthenticatedEndpoints: 1,
		rules.CatMissingCSRF:              1,
	})
	if score != 57 {
		t.Errorf("score = %d, want 57", score)
	}
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	if findings[0].Category != rules.CatUnauthenticatedEndpoints ||
		findings[0].Severity != SeverityCritical || findings[0].Impact != -25 {
		t.Errorf("finding[0] = %+v, want CRITICAL unauthenticated impact -25", findings[0])
	}
	if findings[1].Category != rules.CatMissingCSRF ||
		findings[1].Severity != SeverityCritical || findings[1].Impact != -18 {
		t.Errorf("finding[1] = %+v, want CRITICAL missing CSRF impact -18", findings[1])
	}
}

func TestScoreReport_ClampsToZero(t *testing.T) {
	// 5 x 25 = 125 raw deduction.
	score, _ := scoreDefaults(t, Report{rules.CatUnauthenticatedEndpoints: 5})
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

func TestScoreReport_ClampsToHundred(t *testing.T) {
	// All positive practices at 1: 100 + 5 + 3 + 2 + 1 = 111, clamped.
	score, findings := scoreDefaults(t, Report{
		rules.CatMFAPresent:     1,
		rules.CatProperRBAC:     1,
		rules.CatSecureSession:  1,
		rules.CatHeadersPresent: 1,
	})
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if len(findings) != 4 {
		t.Errorf("findings = %d, want 4", len(findings))
	}
}

func TestScoreReport_BoundsHoldForLargeCounts(t *testing.T) {
	for _, cat := range rules.Categories {
		score, _ := scoreDefaults(t, Report{cat: 1000})
		if score < 0 || score > 100 {
			t.Errorf("category %s: score %d out of [0,100]", cat, score)
		}
	}
}

func TestScoreReport_Deterministic(t *testing.T) {
	r := Report{
		rules.CatUnauthenticatedEndpoints: 2,
		rules.CatWeakPasswordPolicy:       1,
		rules.CatProperRBAC:               3,
	}
	score1, findings1 := scoreDefaults(t, r)
	score2, findings2 := scoreDefaults(t, r)
	if score1 != score2 {
		t.Errorf("scores differ: %d vs %d", score1, score2)
	}
	if !reflect.DeepEqual(findings1, findings2) {
		t.Errorf("findings differ across invocations")
	}
}

func TestScoreReport_ZeroCountNeverAppears(t *testing.T) {
	r := Report{
		rules.CatMissingCSRF:     0,
		rules.CatInsecureSession: 2,
	}
	_, findings := scoreDefaults(t, r)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Category != rules.CatInsecureSession {
		t.Errorf("finding category = %s, want %s", findings[0].Category, rules.CatInsecureSession)
	}
}

func TestScoreReport_PositiveImpactSign(t *testing.T) {
	_, findings := scoreDefaults(t, Report{rules.CatMFAPresent: 2})
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Impact != 10 {
		t.Errorf("impact = %d, want +10", findings[0].Impact)
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		points   int
		expected Severity
	}{
		{25, SeverityCritical},
		{20, SeverityCritical},
		{18, SeverityCritical},
		{15, SeverityHigh},
		{12, SeverityHigh},
		{10, SeverityHigh},
		{8, SeverityMedium},
		{5, SeverityMedium},
		{3, SeverityLow},
		{2, SeverityLow},
		{1, SeverityLow},
	}
	for _, tt := range tests {
		if got := severityFor(tt.points); got != tt.expected {
			t.Errorf("severityFor(%d) = %s, want %s", tt.points, got, tt.expected)
		}
	}
}

func TestScoreReport_SingleMediumFinding(t *testing.T) {
	score, findings := scoreDefaults(t, Report{rules.CatVerboseErrors: 1})
	if score != 95 {
		t.Errorf("score = %d, want 95", score)
	}
	if len(findings) != 1 || findings[0].Severity != SeverityMedium {
		t.Errorf("findings = %+v, want one MEDIUM", findings)
	}
}
