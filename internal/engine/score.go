package engine

import "github.com/classlens/classlens/internal/rules"

// Severity labels a finding by how hard its category weighs on the score.
type Severity string

// Severity levels, highest first.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Finding is one scored category with a non-zero count. Impact is the
// signed score contribution (count × weight, negative for findings that
// subtract). Description and Remediation are the static per-category
// texts from the weight table.
type Finding struct {
	Category    rules.Category `json:"category"`
	Severity    Severity       `json:"severity"`
	Count       int            `json:"count"`
	Impact      int            `json:"impact"`
	Description string         `json:"description"`
	Remediation string         `json:"remediation,omitempty"`
}

// ScoreReport converts category counts into a score in [0,100] and the
// findings list. The score starts at 100, each negative category
// subtracts count × weight, each positive practice adds count × weight,
// and the result is clamped then truncated to an integer. Categories with
// a zero count never produce a finding. Findings follow the fixed table
// order in rules.Categories, so identical reports always yield identical
// output.
func ScoreReport(r Report, weights map[rules.Category]rules.Weight) (int, []Finding) {
	score := 100.0
	var findings []Finding

	for _, cat := range rules.Categories {
		count := r[cat]
		if count == 0 {
			continue
		}
		w := weights[cat]
		impact := count * w.Points
		if w.Positive {
			score += float64(impact)
		} else {
			score -= float64(impact)
			impact = -impact
		}
		findings = append(findings, Finding{
			Category:    cat,
			Severity:    severityFor(w.Points),
			Count:       count,
			Impact:      impact,
			Description: w.Description,
			Remediation: w.Remediation,
		})
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score), findings
}

// severityFor maps a weight magnitude to a severity level: 18 and above
// is CRITICAL, 10 to 17 HIGH, 5 to 9 MEDIUM, anything below LOW.
func severityFor(points int) Severity {
	switch {
	case points >= 18:
		return SeverityCritical
	case points >= 10:
		return SeverityHigh
	case points >= 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
