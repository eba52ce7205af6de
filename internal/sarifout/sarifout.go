// Package sarifout converts ClassLens findings to SARIF 2.1.0 so scores
// and findings can flow into code-scanning dashboards.
package sarifout

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/classlens/classlens/internal/engine"
)

const informationURI = "https://github.com/classlens/classlens"

// Write renders the result's findings as a SARIF report. indexPath is
// used as the artifact location, since findings describe the analyzed
// index as a whole rather than individual source lines.
func Write(w io.Writer, res *engine.Result, indexPath string) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("ClassLens", informationURI)
	for _, f := range res.Findings {
		ruleID := string(f.Category)
		rule := run.AddRule(ruleID).
			WithDescription(f.Description).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(f.Severity),
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(indexPath)),
		)

		message := fmt.Sprintf("%s (count %d, score impact %+d)", f.Description, f.Count, f.Impact)
		if f.Remediation != "" {
			message += ". " + f.Remediation
		}
		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	return report.PrettyWrite(w)
}

// toSarifLevel maps a finding severity to a SARIF result level.
func toSarifLevel(sev engine.Severity) string {
	switch sev {
	case engine.SeverityCritical, engine.SeverityHigh:
		return "error"
	case engine.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
