package services

import "fieldkpi/models"

// EvaluateTriggers applies the automation rule table to the raw percentages
// and the overall score, returning the deduplicated union of every matching
// rule's action tags in first-seen order.
//
// The rule list is intentionally overlapping: the score<55 rule repeats the
// consequences of the 40-49 and <40 bands. Deduplication by tag identity is
// what keeps the overlap from double-provisioning downstream records, so the
// rules must stay as written and only the dedup step absorbs the redundancy.
func EvaluateTriggers(p Percentages, overallScore int) []models.ActionTag {
	var rules [][]models.ActionTag

	switch {
	case overallScore >= 85:
		rules = append(rules, []models.ActionTag{models.TagPerformanceReward})
	case overallScore >= 70:
		rules = append(rules, []models.ActionTag{models.TagAuditCall})
	case overallScore >= 50:
		rules = append(rules, []models.ActionTag{models.TagAuditCall, models.TagCrossCheck3Months})
	case overallScore >= 40:
		rules = append(rules, []models.ActionTag{
			models.TagBasicTraining, models.TagAuditCall, models.TagCrossCheck3Months, models.TagDummyAudit,
		})
	default:
		rules = append(rules, []models.ActionTag{
			models.TagBasicTraining, models.TagAuditCall, models.TagCrossCheck3Months,
			models.TagDummyAudit, models.TagWarningLetter,
		})
	}

	// Overlaps the band rules above on purpose.
	if overallScore < 55 {
		rules = append(rules, []models.ActionTag{
			models.TagBasicTraining, models.TagAuditCall, models.TagCrossCheck3Months, models.TagDummyAudit,
		})
	}

	if p.MajorNegativity > 0 && p.GeneralNegativity < 25 {
		rules = append(rules, []models.ActionTag{
			models.TagNegativityTraining, models.TagAuditCall, models.TagCrossCheck3Months,
		})
	}

	if p.Quality > 1 {
		rules = append(rules, []models.ActionTag{
			models.TagDosDontsTraining, models.TagAuditCall, models.TagCrossCheck3Months, models.TagRCAComplaints,
		})
	}

	if p.AppUsage < 80 {
		rules = append(rules, []models.ActionTag{models.TagAppUsageTraining})
	}

	if p.Insufficiency > 2 {
		rules = append(rules, []models.ActionTag{models.TagCrossVerifyInsuff})
	}

	seen := make(map[models.ActionTag]bool)
	var out []models.ActionTag
	for _, tags := range rules {
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}
