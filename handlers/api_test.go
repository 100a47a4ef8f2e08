package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skill-exchange-system/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full route surface over a sqlmock-backed GORM
// connection. The identity stub plays the role of SessionAuth: userID ""
// means anonymous.
func newTestApp(t *testing.T, userID string) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})

	skillService := services.NewSkillService(db)
	searchService := services.NewSearchService(db)
	matchService := services.NewMatchService(db)
	messageService := services.NewMessageService(db)
	sessionService := services.NewSessionService(db)
	progressService := services.NewProgressService(db)
	profileService := services.NewProfileService(db)

	SetupSkillRoutes(app, skillService, searchService)
	SetupConversationRoutes(app, matchService, messageService)
	SetupProgressRoutes(app, sessionService, progressService)
	SetupProfileRoutes(app, profileService)

	return app, mock
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestListSkillsEmptyTable(t *testing.T) {
	app, mock := newTestApp(t, "")

	mock.ExpectQuery(`SELECT \* FROM "skills"`).
		WithArgs("%git%", "%git%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/skills?q=git&page=1&limit=5", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Skills []json.RawMessage `json:"skills"`
		Page   int               `json:"page"`
		Limit  int               `json:"limit"`
		Total  int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotNil(t, out.Skills)
	assert.Empty(t, out.Skills)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 5, out.Limit)
	assert.Equal(t, 0, out.Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSkillsEscapesWildcards(t *testing.T) {
	app, mock := newTestApp(t, "")

	// "%" and "_" from the query string must reach the store escaped so
	// they match literally.
	mock.ExpectQuery(`SELECT \* FROM "skills"`).
		WithArgs(`%100\% sql\_tuning%`, `%100\% sql\_tuning%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, _ := doRequest(t, app, httptest.NewRequest("GET", "/api/skills?q=100%25+SQL_tuning", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSkillsClampsPagination(t *testing.T) {
	app, mock := newTestApp(t, "")

	mock.ExpectQuery(`SELECT \* FROM "skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/skills?page=-2&limit=9999", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 50, out.Limit)
}

func TestListSkillsRanksBeforePagination(t *testing.T) {
	app, mock := newTestApp(t, "")

	// Two skills, the newer one rated worse. Page 1 with limit 1 must hold
	// the top-rated skill, so ranking has to run before the page is cut.
	created := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "category", "description", "created_at"}).
			AddRow("sk-new", "Whittling", "whittling", "crafts", "", created).
			AddRow("sk-top", "Baking", "baking", "food", "", created.Add(-time.Hour)))
	mock.ExpectQuery(`SELECT \* FROM "user_skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "skill_stats"`).
		WillReturnRows(sqlmock.NewRows([]string{"skill_id", "sessions_count", "students_count", "rating_sum", "rating_count"}).
			AddRow("sk-new", 4, 2, 8.0, 4).    // 2.0 average
			AddRow("sk-top", 10, 6, 45.0, 10)) // 4.5 average

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/skills?page=1&limit=1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Skills []struct {
			ID     string  `json:"id"`
			Rating float64 `json:"rating"`
		} `json:"skills"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Skills, 1)
	assert.Equal(t, "sk-top", out.Skills[0].ID)
	assert.Equal(t, 4.5, out.Skills[0].Rating)
	assert.Equal(t, 2, out.Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSkillNotFound(t *testing.T) {
	app, mock := newTestApp(t, "")

	mock.ExpectQuery(`SELECT \* FROM "skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/skills/missing-id", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"skill not found"}`, string(body))
}

func TestPostMessageRequiresAuth(t *testing.T) {
	app, mock := newTestApp(t, "")

	payload := bytes.NewBufferString(`{"match_id":"m1","content":"hi"}`)
	req := httptest.NewRequest("POST", "/api/messages", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))

	// Unauthenticated writes must never reach the store.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	app, mock := newTestApp(t, "")

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/search?q=", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"skills":[],"profiles":[]}`, string(body))

	// No store query may be issued for an empty q.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardPoints(t *testing.T) {
	app, mock := newTestApp(t, "")

	mock.ExpectQuery(`SELECT user_id, COUNT\(\*\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total"}).AddRow("user-1", 3))
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_url", "location", "bio"}).
			AddRow("user-1", "Alice", "/alice.png", "Nairobi", ""))

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/leaderboard", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []struct {
		Rank         int   `json:"rank"`
		Points       int64 `json:"points"`
		Achievements int64 `json:"achievements"`
		User         struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(300), entries[0].Points) // 3 achievements × 100
	assert.Equal(t, int64(3), entries[0].Achievements)
	assert.Equal(t, "Alice", entries[0].User.Name)
}

func TestLeaderboardMissingProfilePlaceholders(t *testing.T) {
	app, mock := newTestApp(t, "")

	mock.ExpectQuery(`SELECT user_id, COUNT\(\*\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total"}).AddRow("ghost", 1))
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, body := doRequest(t, app, httptest.NewRequest("GET", "/api/leaderboard", nil))

	var entries []struct {
		User struct {
			Name     string `json:"name"`
			Avatar   string `json:"avatar"`
			Location string `json:"location"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown", entries[0].User.Name)
	assert.Equal(t, "/diverse-avatars.png", entries[0].User.Avatar)
	assert.Equal(t, "—", entries[0].User.Location)
}

func TestLeaderboardDenseRanksTies(t *testing.T) {
	app, mock := newTestApp(t, "")

	mock.ExpectQuery(`SELECT user_id, COUNT\(\*\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total"}).
			AddRow("user-a", 3).
			AddRow("user-b", 3).
			AddRow("user-c", 1))
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, body := doRequest(t, app, httptest.NewRequest("GET", "/api/leaderboard", nil))

	var entries []struct {
		Rank   int   `json:"rank"`
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 3)

	// Tied point totals share a rank; the next distinct total takes the
	// following one.
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1, entries[1].Rank)
	assert.Equal(t, 2, entries[2].Rank)
	assert.Equal(t, int64(100), entries[2].Points)
}

func TestMatchesAnonymousEmpty(t *testing.T) {
	app, mock := newTestApp(t, "")

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/matches", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressAnonymousEmpty(t *testing.T) {
	app, mock := newTestApp(t, "")

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/progress", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"sessions":[],"achievements":[]}`, string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationListIsBatched(t *testing.T) {
	app, mock := newTestApp(t, "me")

	now := time.Now().UTC().Truncate(time.Second)
	earlier := now.Add(-1 * time.Hour)

	matchCols := []string{"id", "teacher_id", "learner_id", "skill_id", "status", "created_at", "updated_at", "deleted_at"}
	mock.ExpectQuery(`SELECT \* FROM "matches"`).
		WillReturnRows(sqlmock.NewRows(matchCols).
			AddRow("m1", "me", "them-1", "sk1", "accepted", earlier, now, nil).
			AddRow("m2", "them-2", "me", "sk2", "accepted", earlier, now, nil))

	// Exactly ONE latest-message query for all matches, never one per match.
	mock.ExpectQuery(`SELECT DISTINCT ON \(match_id\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "match_id", "sender_id", "content", "message_type", "created_at"}).
			AddRow("msg1", "m1", "them-1", "see you tomorrow", "text", earlier).
			AddRow("msg2", "m2", "me", "thanks!", "text", now))

	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow("them-1", "Bola").
			AddRow("them-2", "Chen"))
	mock.ExpectQuery(`SELECT \* FROM "skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("sk1", "Guitar").
			AddRow("sk2", "Spanish"))

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/messages", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Conversations []struct {
			MatchID     string `json:"match_id"`
			Counterpart struct {
				Name string `json:"name"`
			} `json:"counterpart"`
			LastMessage struct {
				Content string `json:"content"`
			} `json:"last_message"`
		} `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Conversations, 2)

	// Most recently active conversation first.
	assert.Equal(t, "m2", out.Conversations[0].MatchID)
	assert.Equal(t, "thanks!", out.Conversations[0].LastMessage.Content)
	assert.Equal(t, "Chen", out.Conversations[0].Counterpart.Name)
	assert.Equal(t, "m1", out.Conversations[1].MatchID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSkillEchoesFields(t *testing.T) {
	app, mock := newTestApp(t, "me")

	skillID := "5f0a4a9e-33a1-4c61-9a6f-2d9a5a1c7b10"
	linkID := "9b2f7c44-0d1e-4f58-8f3a-6c1e2d9b7a21"

	// The driver inserts with RETURNING for the default-valued id column, so
	// both inserts come through as queries.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(skillID))
	mock.ExpectQuery(`INSERT INTO "user_skills"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(linkID))
	mock.ExpectCommit()

	payload := bytes.NewBufferString(`{"name":"Knife Sharpening","category":"crafts","description":"Whetstone basics","skill_type":"teacher"}`)
	req := httptest.NewRequest("POST", "/api/skills", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Skill struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Slug        string `json:"slug"`
			Category    string `json:"category"`
			Description string `json:"description"`
		} `json:"skill"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Skill.ID)
	assert.Equal(t, "Knife Sharpening", out.Skill.Name)
	assert.Equal(t, "knife-sharpening", out.Skill.Slug)
	assert.Equal(t, "crafts", out.Skill.Category)
	assert.Equal(t, "Whetstone basics", out.Skill.Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessagesForMatchNonParticipant(t *testing.T) {
	app, mock := newTestApp(t, "me")

	matchCols := []string{"id", "teacher_id", "learner_id", "skill_id", "status"}
	mock.ExpectQuery(`SELECT \* FROM "matches"`).
		WillReturnRows(sqlmock.NewRows(matchCols).
			AddRow("m9", "alice", "bob", "sk1", "accepted"))

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/api/messages?match_id=m9", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"messages":[]}`, string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillListHonorsRequestContext(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "")
		c.SetUserContext(ctx)
		return c.Next()
	})
	SetupSkillRoutes(app, services.NewSkillService(db), services.NewSearchService(db))

	resp, _ := doRequest(t, app, httptest.NewRequest("GET", "/api/skills", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// A dead request context must stop the handler before any store
	// round-trip happens.
	assert.NoError(t, mock.ExpectationsWereMet())
}
