package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hirelens/hirelens/internal/models"
)

func req(skill string, weight int) models.SkillRequirement {
	return models.SkillRequirement{Skill: skill, Weight: weight}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "python", Normalize("  Python "))
	assert.Equal(t, "node.js", Normalize("Node.js"))
	assert.Equal(t, "", Normalize("   "))
}

func TestComputeScoreEmptyInputs(t *testing.T) {
	assert.Equal(t, 0, ComputeScore(nil, []models.SkillRequirement{req("go", 5)}))
	assert.Equal(t, 0, ComputeScore([]string{}, []models.SkillRequirement{req("go", 5)}))
	assert.Equal(t, 0, ComputeScore([]string{"go"}, nil))
	assert.Equal(t, 0, ComputeScore([]string{"go"}, []models.SkillRequirement{}))
}

func TestComputeScoreFullAndZeroMatch(t *testing.T) {
	reqs := []models.SkillRequirement{req("go", 8), req("docker", 3), req("sql", 1)}

	assert.Equal(t, 100, ComputeScore([]string{"Go", "Docker", "SQL"}, reqs))
	assert.Equal(t, 0, ComputeScore([]string{"cobol", "fortran"}, reqs))
}

func TestComputeScoreCaseInsensitive(t *testing.T) {
	score := ComputeScore([]string{"Python"}, []models.SkillRequirement{req("python", 5)})
	assert.Equal(t, 100, score)
}

func TestComputeScoreWeighted(t *testing.T) {
	// round(100 * 8 / 12) = 67
	reqs := []models.SkillRequirement{
		{Skill: "java", Importance: models.ImportanceRequired, Weight: 8},
		{Skill: "go", Importance: models.ImportancePreferred, Weight: 4},
	}
	score := ComputeScore([]string{"Java", "Python"}, reqs)
	assert.Equal(t, 67, score)
	assert.Equal(t, Recommended, Recommend(score))
}

func TestComputeScoreDefaultWeight(t *testing.T) {
	// Unset weight counts as 5: matched 5 of 15 -> round(33.33) = 33.
	reqs := []models.SkillRequirement{req("go", 0), req("java", 10)}
	assert.Equal(t, 33, ComputeScore([]string{"go"}, reqs))
}

func TestComputeScoreRoundsHalfUp(t *testing.T) {
	// matched 1 of 8 -> 12.5 -> 13
	reqs := []models.SkillRequirement{req("go", 1), req("java", 7)}
	assert.Equal(t, 13, ComputeScore([]string{"go"}, reqs))
}

func TestComputeScoreDeterministic(t *testing.T) {
	skills := []string{"Go", "Kubernetes", "PostgreSQL"}
	reqs := []models.SkillRequirement{req("go", 7), req("kubernetes", 2), req("rust", 9)}

	first := ComputeScore(skills, reqs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeScore(skills, reqs))
	}
}

func TestRecommendThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  Recommendation
	}{
		{100, HighlyRecommended},
		{70, HighlyRecommended},
		{69, Recommended},
		{50, Recommended},
		{49, ReviewRequired},
		{0, ReviewRequired},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Recommend(tc.score), "score %d", tc.score)
	}
}
