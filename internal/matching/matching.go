// Package matching implements the local, deterministic scoring used when the
// ML service cannot be reached. Everything here is a pure function.
package matching

import (
	"math"
	"strings"

	"github.com/hirelens/hirelens/internal/models"
)

type Recommendation string

const (
	HighlyRecommended Recommendation = "Highly Recommended"
	Recommended       Recommendation = "Recommended"
	ReviewRequired    Recommendation = "Review Required"
)

const (
	highlyRecommendedMin = 70
	recommendedMin       = 50
)

// Normalize canonicalizes a skill name for comparison. Two skills are equal
// iff their normalized forms are equal.
func Normalize(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// ComputeScore returns the weighted overlap between a candidate's skills and a
// job's weighted requirements as an integer 0..100, rounded half-up.
// Empty candidate skills or an empty requirement list score 0.
func ComputeScore(candidateSkills []string, required []models.SkillRequirement) int {
	if len(candidateSkills) == 0 || len(required) == 0 {
		return 0
	}

	have := make(map[string]struct{}, len(candidateSkills))
	for _, s := range candidateSkills {
		have[Normalize(s)] = struct{}{}
	}

	totalWeight := 0
	matchedWeight := 0
	for _, r := range required {
		w := r.EffectiveWeight()
		totalWeight += w
		if _, ok := have[Normalize(r.Skill)]; ok {
			matchedWeight += w
		}
	}

	// totalWeight > 0 is guaranteed: every requirement weighs at least 1.
	return int(math.Round(float64(matchedWeight) / float64(totalWeight) * 100))
}

// Recommend maps a match score onto the fixed recruiter-facing classification.
func Recommend(score int) Recommendation {
	switch {
	case score >= highlyRecommendedMin:
		return HighlyRecommended
	case score >= recommendedMin:
		return Recommended
	default:
		return ReviewRequired
	}
}
