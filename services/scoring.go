package services

import (
	"math"

	"fieldkpi/models"
)

// Percentages are the seven raw sub-metric inputs of one KPI submission.
// TAT, Quality, NeighborCheck, GeneralNegativity and AppUsage are percentages
// in [0,100]; MajorNegativity and Insufficiency are rate counts in [0,10].
type Percentages struct {
	TAT               float64 `json:"tat" validate:"min=0,max=100"`
	MajorNegativity   float64 `json:"major_negativity" validate:"min=0,max=10"`
	Quality           float64 `json:"quality" validate:"min=0,max=100"`
	NeighborCheck     float64 `json:"neighbor_check" validate:"min=0,max=100"`
	GeneralNegativity float64 `json:"general_negativity" validate:"min=0,max=100"`
	AppUsage          float64 `json:"app_usage" validate:"min=0,max=100"`
	Insufficiency     float64 `json:"insufficiency" validate:"min=0,max=10"`
}

// Each metric maps its raw value onto a fixed threshold band, not a linear
// weight. The bands below are the business contract; identical inputs always
// yield identical scores, which is what makes reprocessing safe.

func scoreTAT(p float64) int {
	switch {
	case p >= 95:
		return 20
	case p >= 90:
		return 10
	case p >= 85:
		return 5
	}
	return 0
}

func scoreMajorNegativity(p float64) int {
	switch {
	case p >= 2.5:
		return 0
	case p >= 2.0:
		return 5
	case p >= 1.5:
		return 15
	}
	return 20
}

func scoreQuality(p float64) int {
	switch {
	case p == 0:
		return 20
	case p <= 0.25:
		return 15
	case p <= 0.5:
		return 10
	}
	return 0
}

func scoreNeighborCheck(p float64) int {
	switch {
	case p >= 90:
		return 10
	case p >= 85:
		return 5
	case p >= 80:
		return 2
	}
	return 0
}

func scoreGeneralNegativity(p float64) int {
	switch {
	case p >= 25:
		return 0
	case p >= 20:
		return 2
	case p >= 15:
		return 5
	}
	return 10
}

func scoreAppUsage(p float64) int {
	switch {
	case p >= 90:
		return 10
	case p >= 85:
		return 5
	case p >= 80:
		return 2
	}
	return 0
}

func scoreInsufficiency(p float64) int {
	switch {
	case p < 1:
		return 10
	case p <= 1.5:
		return 5
	case p <= 2:
		return 2
	}
	return 0
}

// CalculateScores derives the seven banded sub-scores and the overall score
// from the raw percentages. Pure: no clock, no state. The overall score is the
// rounded sum of the sub-scores and lies in [0,100] by construction (band caps
// sum to 100).
func CalculateScores(p Percentages) (models.MetricSet, int) {
	set := models.MetricSet{
		TAT:               models.MetricScore{Percentage: p.TAT, DerivedScore: scoreTAT(p.TAT)},
		MajorNegativity:   models.MetricScore{Percentage: p.MajorNegativity, DerivedScore: scoreMajorNegativity(p.MajorNegativity)},
		Quality:           models.MetricScore{Percentage: p.Quality, DerivedScore: scoreQuality(p.Quality)},
		NeighborCheck:     models.MetricScore{Percentage: p.NeighborCheck, DerivedScore: scoreNeighborCheck(p.NeighborCheck)},
		GeneralNegativity: models.MetricScore{Percentage: p.GeneralNegativity, DerivedScore: scoreGeneralNegativity(p.GeneralNegativity)},
		AppUsage:          models.MetricScore{Percentage: p.AppUsage, DerivedScore: scoreAppUsage(p.AppUsage)},
		Insufficiency:     models.MetricScore{Percentage: p.Insufficiency, DerivedScore: scoreInsufficiency(p.Insufficiency)},
	}

	sum := set.TAT.DerivedScore +
		set.MajorNegativity.DerivedScore +
		set.Quality.DerivedScore +
		set.NeighborCheck.DerivedScore +
		set.GeneralNegativity.DerivedScore +
		set.AppUsage.DerivedScore +
		set.Insufficiency.DerivedScore

	return set, int(math.Round(float64(sum)))
}

// ClassifyRating maps an overall score onto the five rating tiers. Band edges
// are inclusive on the lower bound: exactly 85 is outstanding.
func ClassifyRating(overallScore int) models.Rating {
	switch {
	case overallScore >= 85:
		return models.RatingOutstanding
	case overallScore >= 70:
		return models.RatingExcellent
	case overallScore >= 50:
		return models.RatingSatisfactory
	case overallScore >= 40:
		return models.RatingNeedImprovement
	}
	return models.RatingUnsatisfactory
}
