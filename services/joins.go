package services

import (
	"skill-exchange-system/models"

	"gorm.io/gorm"
)

// Fan-out joiner: every lookup here takes the distinct foreign keys of a
// primary row set and issues at most one IN query, returning an id-keyed
// map. An empty key set never touches the store.

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// loadProfiles returns id → Profile for the given user ids.
func loadProfiles(db *gorm.DB, ids []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Profile
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// loadSkills returns id → Skill for the given skill ids.
func loadSkills(db *gorm.DB, ids []string) (map[string]models.Skill, error) {
	out := make(map[string]models.Skill)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Skill
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

// loadSkillStats returns skill_id → SkillStats. Skills that were never
// aggregated are simply absent; callers treat that as zeroes.
func loadSkillStats(db *gorm.DB, skillIDs []string) (map[string]models.SkillStats, error) {
	out := make(map[string]models.SkillStats)
	skillIDs = uniqueIDs(skillIDs)
	if len(skillIDs) == 0 {
		return out, nil
	}

	var rows []models.SkillStats
	if err := db.Where("skill_id IN ?", skillIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, st := range rows {
		out[st.SkillID] = st
	}
	return out, nil
}

// loadTeachLinks returns skill_id → the teaching UserSkill link for each
// skill. When several users teach the same skill the oldest link wins, so
// the listed teacher is stable across requests.
func loadTeachLinks(db *gorm.DB, skillIDs []string) (map[string]models.UserSkill, error) {
	out := make(map[string]models.UserSkill)
	skillIDs = uniqueIDs(skillIDs)
	if len(skillIDs) == 0 {
		return out, nil
	}

	var rows []models.UserSkill
	if err := db.
		Where("skill_id IN ? AND skill_type IN ?", skillIDs, models.SkillTypeVariants(models.SkillTypeTeach)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, link := range rows {
		if _, ok := out[link.SkillID]; !ok {
			out[link.SkillID] = link
		}
	}
	return out, nil
}
