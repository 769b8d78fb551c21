package matching

import (
	"regexp"
	"sort"
	"strings"
)

// commonSkills is the keyword bank for local skill extraction, used when the
// ML parse endpoint is unavailable. Entries are matched case-insensitively on
// word boundaries.
var commonSkills = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "Go", "Rust",
	"Ruby", "PHP", "Swift", "Kotlin", "Scala",
	"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask",
	"Spring", "Next.js", "HTML", "CSS",
	"MongoDB", "SQL", "PostgreSQL", "MySQL", "Redis", "Elasticsearch",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "CI/CD",
	"Git", "REST API", "GraphQL", "Microservices", "Linux",
	"Machine Learning", "Deep Learning", "NLP", "TensorFlow", "PyTorch",
	"Pandas", "NumPy", "Data Analysis",
}

var skillPatterns = buildSkillPatterns()

func buildSkillPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(commonSkills))
	for _, skill := range commonSkills {
		escaped := regexp.QuoteMeta(strings.ToLower(skill))
		// \b misbehaves after '+' or '#', so anchor those on the left only.
		expr := `\b` + escaped
		if last := skill[len(skill)-1]; last != '+' && last != '#' {
			expr += `\b`
		}
		patterns[skill] = regexp.MustCompile(expr)
	}
	return patterns
}

// ExtractSkills scans free text for known skill keywords. It is the local
// fallback for the ML parse endpoint; order of the result is deterministic.
func ExtractSkills(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var found []string
	for _, skill := range commonSkills {
		if skillPatterns[skill].MatchString(lower) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}
