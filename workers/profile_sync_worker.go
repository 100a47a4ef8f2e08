// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"skill-exchange-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredProfile matches the JSON rows served by the auth platform's
// public directory endpoint.
type MirroredProfile struct {
	ID          string    `json:"id"`
	DisplayName *string   `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Location    string    `json:"location,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type profileChangesResponse struct {
	Profiles []MirroredProfile `json:"profiles"`
}

// ProfileSyncWorker mirrors the auth platform's user directory into the
// local profiles table. The request path never calls the directory — it
// only reads this mirror.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, authBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      authBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (auth platform → profiles)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent updated_at in the local mirror.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM profiles WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches directory changes since the given time and upserts them.
func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid auth platform URL '%s': %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)

	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call auth platform: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("auth platform returned status %d: %s", resp.StatusCode, string(body))
	}

	var changes profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return fmt.Errorf("failed to decode directory response: %w", err)
	}

	if len(changes.Profiles) == 0 {
		return nil
	}

	rows := make([]models.Profile, 0, len(changes.Profiles))
	for _, p := range changes.Profiles {
		rows = append(rows, models.Profile{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Location:    p.Location,
			Bio:         p.Bio,
			Timestamps: models.Timestamps{
				CreatedAt: p.CreatedAt,
				UpdatedAt: p.UpdatedAt,
			},
		})
	}

	if err := w.db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name",
				"avatar_url",
				"location",
				"bio",
				"updated_at",
			}),
		},
	).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to upsert %d profile(s): %w", len(rows), err)
	}

	log.Printf("[SYNC] 📥 Upserted %d profile change(s) since %s", len(rows), since.UTC().Format(time.RFC3339))
	return nil
}
