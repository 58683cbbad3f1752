package services

import (
	"testing"

	"fieldkpi/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateScoresBands(t *testing.T) {
	tests := []struct {
		name     string
		metrics  Percentages
		expected [7]int // tat, majorNeg, quality, neighbor, generalNeg, appUsage, insuff
	}{
		{
			name:     "all bands at top",
			metrics:  Percentages{TAT: 96, MajorNegativity: 0, Quality: 0, NeighborCheck: 95, GeneralNegativity: 5, AppUsage: 95, Insufficiency: 0},
			expected: [7]int{20, 20, 20, 10, 10, 10, 10},
		},
		{
			name:     "all bands at bottom",
			metrics:  Percentages{TAT: 50, MajorNegativity: 3, Quality: 5, NeighborCheck: 50, GeneralNegativity: 40, AppUsage: 50, Insufficiency: 4},
			expected: [7]int{0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "middle bands",
			metrics:  Percentages{TAT: 90, MajorNegativity: 1.7, Quality: 0.3, NeighborCheck: 85, GeneralNegativity: 17, AppUsage: 85, Insufficiency: 1.2},
			expected: [7]int{10, 15, 10, 5, 5, 5, 5},
		},
		{
			name:     "lowest non-zero bands",
			metrics:  Percentages{TAT: 85, MajorNegativity: 2.2, Quality: 0.2, NeighborCheck: 80, GeneralNegativity: 22, AppUsage: 80, Insufficiency: 1.8},
			expected: [7]int{5, 5, 15, 2, 2, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, overall := CalculateScores(tt.metrics)

			got := [7]int{
				set.TAT.DerivedScore,
				set.MajorNegativity.DerivedScore,
				set.Quality.DerivedScore,
				set.NeighborCheck.DerivedScore,
				set.GeneralNegativity.DerivedScore,
				set.AppUsage.DerivedScore,
				set.Insufficiency.DerivedScore,
			}
			assert.Equal(t, tt.expected, got)

			sum := 0
			for _, s := range tt.expected {
				sum += s
			}
			assert.Equal(t, sum, overall)
			assert.GreaterOrEqual(t, overall, 0)
			assert.LessOrEqual(t, overall, 100)
		})
	}
}

func TestCalculateScoresBandEdges(t *testing.T) {
	tests := []struct {
		name  string
		score func(Percentages) int
		input Percentages
		want  int
	}{
		{"tat exactly 95", func(p Percentages) int { s, _ := CalculateScores(p); return s.TAT.DerivedScore }, Percentages{TAT: 95}, 20},
		{"tat just under 95", func(p Percentages) int { s, _ := CalculateScores(p); return s.TAT.DerivedScore }, Percentages{TAT: 94.9}, 10},
		{"quality exactly zero", func(p Percentages) int { s, _ := CalculateScores(p); return s.Quality.DerivedScore }, Percentages{Quality: 0}, 20},
		{"quality at 0.25", func(p Percentages) int { s, _ := CalculateScores(p); return s.Quality.DerivedScore }, Percentages{Quality: 0.25}, 15},
		{"quality at 0.5", func(p Percentages) int { s, _ := CalculateScores(p); return s.Quality.DerivedScore }, Percentages{Quality: 0.5}, 10},
		{"quality above 0.5", func(p Percentages) int { s, _ := CalculateScores(p); return s.Quality.DerivedScore }, Percentages{Quality: 0.51}, 0},
		{"major negativity at 2.5", func(p Percentages) int { s, _ := CalculateScores(p); return s.MajorNegativity.DerivedScore }, Percentages{MajorNegativity: 2.5}, 0},
		{"major negativity at 2.0", func(p Percentages) int { s, _ := CalculateScores(p); return s.MajorNegativity.DerivedScore }, Percentages{MajorNegativity: 2.0}, 5},
		{"major negativity at 1.5", func(p Percentages) int { s, _ := CalculateScores(p); return s.MajorNegativity.DerivedScore }, Percentages{MajorNegativity: 1.5}, 15},
		{"insufficiency just under 1", func(p Percentages) int { s, _ := CalculateScores(p); return s.Insufficiency.DerivedScore }, Percentages{Insufficiency: 0.99}, 10},
		{"insufficiency at 1", func(p Percentages) int { s, _ := CalculateScores(p); return s.Insufficiency.DerivedScore }, Percentages{Insufficiency: 1}, 5},
		{"insufficiency at 2", func(p Percentages) int { s, _ := CalculateScores(p); return s.Insufficiency.DerivedScore }, Percentages{Insufficiency: 2}, 2},
		{"insufficiency above 2", func(p Percentages) int { s, _ := CalculateScores(p); return s.Insufficiency.DerivedScore }, Percentages{Insufficiency: 2.1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.score(tt.input))
		})
	}
}

func TestCalculateScoresIsDeterministic(t *testing.T) {
	p := Percentages{TAT: 91.3, MajorNegativity: 1.6, Quality: 0.4, NeighborCheck: 86.1, GeneralNegativity: 18.2, AppUsage: 88, Insufficiency: 1.1}

	firstSet, firstOverall := CalculateScores(p)
	for i := 0; i < 5; i++ {
		set, overall := CalculateScores(p)
		assert.Equal(t, firstSet, set)
		assert.Equal(t, firstOverall, overall)
	}
}

func TestClassifyRatingBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.Rating
	}{
		{100, models.RatingOutstanding},
		{85, models.RatingOutstanding},
		{84, models.RatingExcellent},
		{70, models.RatingExcellent},
		{69, models.RatingSatisfactory},
		{50, models.RatingSatisfactory},
		{49, models.RatingNeedImprovement},
		{40, models.RatingNeedImprovement},
		{39, models.RatingUnsatisfactory},
		{0, models.RatingUnsatisfactory},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRating(tt.score), "score %d", tt.score)
	}
}

func TestPerfectSubmissionScenario(t *testing.T) {
	p := Percentages{TAT: 96, MajorNegativity: 0, Quality: 0, NeighborCheck: 95, GeneralNegativity: 5, AppUsage: 95, Insufficiency: 0}

	set, overall := CalculateScores(p)
	assert.Equal(t, 100, overall)
	assert.Equal(t, 20, set.TAT.DerivedScore)
	assert.Equal(t, 20, set.MajorNegativity.DerivedScore)
	assert.Equal(t, 20, set.Quality.DerivedScore)
	assert.Equal(t, 10, set.NeighborCheck.DerivedScore)
	assert.Equal(t, 10, set.GeneralNegativity.DerivedScore)
	assert.Equal(t, 10, set.AppUsage.DerivedScore)
	assert.Equal(t, 10, set.Insufficiency.DerivedScore)

	assert.Equal(t, models.RatingOutstanding, ClassifyRating(overall))

	tags := EvaluateTriggers(p, overall)
	assert.Equal(t, []models.ActionTag{models.TagPerformanceReward}, tags)
}

func TestNeedImprovementScenario(t *testing.T) {
	// 20 + 15 + 10 + 0 + 0 + 0 + 0 = 45
	p := Percentages{TAT: 96, MajorNegativity: 1.7, Quality: 0.3, NeighborCheck: 70, GeneralNegativity: 30, AppUsage: 70, Insufficiency: 2.5}

	_, overall := CalculateScores(p)
	assert.Equal(t, 45, overall)
	assert.Equal(t, models.RatingNeedImprovement, ClassifyRating(overall))

	tags := EvaluateTriggers(p, overall)
	for _, want := range []models.ActionTag{
		models.TagBasicTraining,
		models.TagAuditCall,
		models.TagCrossCheck3Months,
		models.TagDummyAudit,
	} {
		assert.Contains(t, tags, want)
	}
}
