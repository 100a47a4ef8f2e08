package services

import (
	"testing"

	"skill-exchange-system/models"

	"github.com/stretchr/testify/assert"
)

func TestRankSkillsOrdersByRatingThenStudents(t *testing.T) {
	skills := []SkillResponse{
		{Title: "A", Rating: 3.0, Students: 10},
		{Title: "B", Rating: 4.5, Students: 5},
		{Title: "C", Rating: 4.5, Students: 8},
	}

	RankSkills(skills)

	assert.Equal(t, "C", skills[0].Title) // 4.5 / 8
	assert.Equal(t, "B", skills[1].Title) // 4.5 / 5
	assert.Equal(t, "A", skills[2].Title) // 3.0 / 10
}

func TestTeacherSummaryPlaceholders(t *testing.T) {
	got := teacherSummary(nil)

	assert.Equal(t, "Unknown", got.Name)
	assert.Equal(t, "/diverse-avatars.png", got.Avatar)
	assert.Equal(t, "—", got.Location)
	assert.Empty(t, got.ID)
}

func TestTeacherSummaryPartialProfile(t *testing.T) {
	// A profile row with no display name still gets the name fallback but
	// keeps its real id and location.
	p := models.Profile{ID: "user-1", Location: "Berlin"}
	got := teacherSummary(&p)

	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "Unknown", got.Name)
	assert.Equal(t, "Berlin", got.Location)
	assert.Equal(t, "/diverse-avatars.png", got.Avatar)
}

func TestUniqueIDsDropsEmptyAndDuplicates(t *testing.T) {
	got := uniqueIDs([]string{"a", "", "b", "a", "b", ""})
	assert.Equal(t, []string{"a", "b"}, got)
}
