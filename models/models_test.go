package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillType(t *testing.T) {
	assert.Equal(t, SkillTypeTeach, NormalizeSkillType("teach"))
	assert.Equal(t, SkillTypeTeach, NormalizeSkillType("teacher"))
	assert.Equal(t, SkillTypeLearn, NormalizeSkillType("learn"))
	assert.Equal(t, SkillTypeLearn, NormalizeSkillType("learner"))
	assert.Equal(t, SkillTypeLearn, NormalizeSkillType("learning"))
	// Unknown values stay visible instead of being guessed at.
	assert.Equal(t, "mentor", NormalizeSkillType("mentor"))
}

func TestSkillTypeVariants(t *testing.T) {
	assert.ElementsMatch(t, []string{"teach", "teacher"}, SkillTypeVariants(SkillTypeTeach))
	assert.ElementsMatch(t, []string{"learn", "learner", "learning"}, SkillTypeVariants(SkillTypeLearn))
}

func TestSkillStatsAverageRating(t *testing.T) {
	var nilStats *SkillStats
	assert.Equal(t, 0.0, nilStats.AverageRating())
	assert.Equal(t, 0.0, (&SkillStats{RatingSum: 10}).AverageRating())
	assert.Equal(t, 4.5, (&SkillStats{RatingSum: 9, RatingCount: 2}).AverageRating())
}

func TestProfileFallbacks(t *testing.T) {
	var missing *Profile
	assert.Equal(t, FallbackName, missing.Name())
	assert.Equal(t, FallbackAvatar, missing.Avatar())
	assert.Equal(t, FallbackLocation, missing.Place())

	empty := &Profile{}
	assert.Equal(t, "Unknown", empty.Name())
	assert.Equal(t, "/diverse-avatars.png", empty.Avatar())
	assert.Equal(t, "—", empty.Place())

	name := "Ada"
	full := &Profile{DisplayName: &name, AvatarURL: "/a.png", Location: "Lagos"}
	assert.Equal(t, "Ada", full.Name())
	assert.Equal(t, "/a.png", full.Avatar())
	assert.Equal(t, "Lagos", full.Place())
}

func TestMatchCounterpart(t *testing.T) {
	m := Match{TeacherID: "t", LearnerID: "l"}

	assert.Equal(t, "l", m.CounterpartID("t"))
	assert.Equal(t, "t", m.CounterpartID("l"))
	assert.Equal(t, "", m.CounterpartID("someone-else"))

	assert.True(t, m.Involves("t"))
	assert.True(t, m.Involves("l"))
	assert.False(t, m.Involves(""))
	assert.False(t, m.Involves("someone-else"))
}
