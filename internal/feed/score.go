// Package feed ranks and orders notes for the home and profile listings.
//
// Everything in this package is pure: it reads the candidates it is given and
// returns a new slice, so concurrent calls need no coordination.
package feed

import "strings"

// Field weights. A term found in several fields scores the sum of their weights.
const (
	WeightTitle       = 10
	WeightTags        = 8
	WeightCourse      = 6
	WeightOwner       = 4
	WeightDescription = 2
)

// Fields are the searchable parts of a note.
type Fields struct {
	Title         string
	Tags          string
	Course        string
	OwnerUsername string
	Description   string
}

// Score returns the relevance of f for term: the sum of the weights of every
// field that contains term as a case-insensitive substring. Zero means no match.
//
// Callers must not pass a blank term; Compose never does.
func Score(term string, f Fields) int {
	needle := strings.ToLower(term)

	score := 0
	if contains(f.Title, needle) {
		score += WeightTitle
	}
	if contains(f.Tags, needle) {
		score += WeightTags
	}
	if contains(f.Course, needle) {
		score += WeightCourse
	}
	if contains(f.OwnerUsername, needle) {
		score += WeightOwner
	}
	if contains(f.Description, needle) {
		score += WeightDescription
	}
	return score
}

func contains(field, lowerNeedle string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), lowerNeedle)
}
