package workers

import (
	"context"
	"log"
	"time"

	"skill-exchange-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsWorker recomputes the skill_stats aggregate from completed sessions.
// Ranking and profile pages read skill_stats only, so the request path never
// runs this aggregation itself.
type StatsWorker struct {
	DB *gorm.DB
}

func NewStatsWorker(db *gorm.DB) *StatsWorker {
	return &StatsWorker{DB: db}
}

// PollSkillStats runs the recompute loop until ctx is cancelled. One full
// recompute per tick: cheap at this scale, and self-healing after any missed
// or double-counted update.
func PollSkillStats(ctx context.Context, w *StatsWorker, pollInterval time.Duration) {
	log.Println("Starting skill stats polling (DB-backed)...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// First pass immediately so a fresh boot serves real numbers.
	if err := w.RecomputeAll(ctx); err != nil {
		log.Printf("❌ Initial stats recompute failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Skill stats polling stopped.")
			return
		case <-ticker.C:
			if err := w.RecomputeAll(ctx); err != nil {
				log.Printf("❌ Stats recompute failed: %v", err)
			}
		}
	}
}

// RecomputeAll aggregates completed sessions per skill and bulk-upserts the
// result in one statement.
func (w *StatsWorker) RecomputeAll(ctx context.Context) error {
	db := w.DB.WithContext(ctx)

	var stats []models.SkillStats
	if err := db.Raw(`
		SELECT m.skill_id,
		       COUNT(s.id) AS sessions_count,
		       COUNT(DISTINCT m.learner_id) AS students_count,
		       COALESCE(SUM(s.rating), 0) AS rating_sum,
		       COUNT(s.rating) AS rating_count
		FROM sessions s
		INNER JOIN matches m ON m.id = s.match_id
		WHERE s.status = ? AND s.deleted_at IS NULL
		GROUP BY m.skill_id
	`, models.SessionStatusCompleted).Scan(&stats).Error; err != nil {
		return err
	}

	if len(stats) == 0 {
		log.Println("➡️ No completed sessions, skill stats unchanged.")
		return nil
	}

	if err := db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "skill_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sessions_count",
				"students_count",
				"rating_sum",
				"rating_count",
				"updated_at",
			}),
		},
	).Create(&stats).Error; err != nil {
		return err
	}

	log.Printf("📊 Upserted stats for %d skill(s)", len(stats))
	return nil
}
