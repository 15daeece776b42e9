package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"queens/internal/app"
	"queens/internal/cache"
	"queens/internal/config"
	"queens/internal/identity"
	"queens/internal/logger"
	"queens/internal/metrics"
	"queens/internal/models"
	"queens/internal/repositories"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubLLM struct{}

func (stubLLM) Model() string { return "stub-model" }

func (stubLLM) Complete(context.Context, string) (string, error) {
	return `Sure! {"diet_recommendations":["leafy greens"],"exercise_recommendations":["walk"],"symptoms_to_watch":["cramps"],"affirmation":"you got this"}`, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, string) (*models.EmotionAnalysis, error) {
	return &models.EmotionAnalysis{
		Emotions:        map[string]float64{"joy": 0.9, "neutral": 0.1},
		DominantEmotion: "joy",
		Timestamp:       time.Now().UTC(),
	}, nil
}

type stubCanvas struct{}

func (stubCanvas) UpcomingAssignments(context.Context, string) ([]models.Assignment, error) {
	return []models.Assignment{{Name: "Essay", DateDue: "2024-05-07", TimeDue: "23:59"}}, nil
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp builds the full application over an in-memory sqlite database.
func setupApp(t *testing.T, rateLimitRPS float64) *testEnv {
	t.Helper()
	log := logger.Discard()

	db, err := repositories.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repositories.NewGORMUserRepository(db)
	journalRepo := repositories.NewGORMJournalRepository(db)
	offerRepo := repositories.NewGORMOfferRepository(db)
	gateway := identity.NewLocalGateway(repositories.NewGORMCredentialRepository(db), "test_jwt_secret", time.Hour)

	authService := services.NewAuthService(userRepo, gateway, log)
	application := app.New(app.Deps{
		DB:             db,
		Log:            log,
		Metrics:        metrics.Nop{},
		Version:        "test",
		Environment:    "test",
		RequestTimeout: 5 * time.Second,
		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: 1,
		Auth:           authService,
		Users:          services.NewUserService(userRepo, log),
		Menstrual:      services.NewMenstrualHealthService(userRepo, stubLLM{}, cache.Nop{}, time.Hour, log),
		Journals:       services.NewJournalService(journalRepo, userRepo, stubAnalyzer{}, nil, metrics.Nop{}, log),
		Offers:         services.NewOfferService(offerRepo, userRepo, log),
		Canvas:         services.NewCanvasService(userRepo, stubCanvas{}, metrics.Nop{}, log),
		AI:             services.NewAIService(stubLLM{}, metrics.Nop{}),
	})
	return &testEnv{app: application, db: db}
}

// call sends a JSON request and decodes the JSON response into out when out is non-nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signUpAndIn registers email and returns a session token.
func (e *testEnv) signUpAndIn(t *testing.T, email, password string) string {
	t.Helper()
	status := e.call(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusCreated, status)

	var login struct {
		Token string `json:"token"`
	}
	status = e.call(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": email, "password": password}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)
	return login.Token
}

type errorBody struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func TestAuthSignUpAndSignIn(t *testing.T) {
	env := setupApp(t, 0)

	var signup struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	status := env.call(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "a@x.com", "password": "p"}, &signup)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", signup.Message)
	assert.Equal(t, "a@x.com", signup.User.Email)

	// Duplicate registration never creates a second user.
	var conflict errorBody
	status = env.call(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "A@x.com", "password": "other"}, &conflict)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", conflict.Kind)

	var login struct {
		Message string           `json:"message"`
		Token   string           `json:"token"`
		Tokens  identity.Session `json:"tokens"`
	}
	status = env.call(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "a@x.com", "password": "p"}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, login.Token, login.Tokens.AccessToken)
	assert.Equal(t, int64(3600), login.Tokens.ExpiresIn)

	var user models.User
	status = env.call(t, http.MethodGet, "/api/v1/users/a@x.com", login.Token, nil, &user)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@x.com", user.Email)

	var users []models.User
	status = env.call(t, http.MethodGet, "/api/v1/users", login.Token, nil, &users)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, users, 1)

	var rejected errorBody
	status = env.call(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "a@x.com", "password": "wrong"}, &rejected)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", rejected.Kind)
}

func TestSignUpValidation(t *testing.T) {
	env := setupApp(t, 0)

	var body errorBody
	status := env.call(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{"email": "not-an-email", "password": "p", "age": 300}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body.Kind)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "age")
}

func TestProtectedRoutesWithoutToken(t *testing.T) {
	env := setupApp(t, 0)

	for _, path := range []string{"/api/v1/users/a@x.com", "/api/v1/offers", "/api/v1/journals/insights", "/api/v1/canvas/assignments"} {
		var body errorBody
		status := env.call(t, http.MethodGet, path, "", nil, &body)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "unauthorized", body.Kind, path)
	}

	status := env.call(t, http.MethodGet, "/api/v1/users/a@x.com", "garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUserPatchIsPartialAndIdempotent(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")
	env.signUpAndIn(t, "b@x.com", "p")

	first := map[string]any{"first_name": "Ada"}
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/users/a@x.com", token, first, nil))

	patch := map[string]any{"bio": "hello", "skills": []string{"go"}, "email": "evil@x.com"}
	var once, twice models.User
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/users/a@x.com", token, patch, &once))
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/users/a@x.com", token, patch, &twice))

	assert.Equal(t, "Ada", twice.FirstName)
	assert.Equal(t, "hello", twice.Bio)
	assert.Equal(t, []string{"go"}, twice.Skills)
	assert.Equal(t, "a@x.com", twice.Email)
	assert.Equal(t, once.Bio, twice.Bio)
	assert.Equal(t, once.Skills, twice.Skills)

	// Another user's profile cannot be changed.
	var body errorBody
	status := env.call(t, http.MethodPatch, "/api/v1/users/b@x.com", token, patch, &body)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = env.call(t, http.MethodGet, "/api/v1/users/nobody@x.com", token, nil, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body.Kind)
}

func TestEncodedEmailPathParams(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")

	var user models.User
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/users/a%40x.com", token, nil, &user))
	assert.Equal(t, "a@x.com", user.Email)

	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/users/a%40x.com", token, map[string]any{"bio": "hi"}, &user))
	assert.Equal(t, "hi", user.Bio)

	var phase models.PhaseResponse
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/menstrual-health/a%40x.com/phase", token, nil, &phase))
	assert.False(t, phase.HasData)
}

func TestDisabledAccountTokenIsRejected(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")

	require.Equal(t, http.StatusOK, env.call(t, http.MethodDelete, "/api/v1/users/a@x.com", token, nil, nil))

	var body errorBody
	status := env.call(t, http.MethodGet, "/api/v1/offers", token, nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body.Kind)

	status = env.call(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]any{"email": "a@x.com", "password": "p"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOfferLifecycle(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")
	other := env.signUpAndIn(t, "b@x.com", "p")

	var created models.Offer
	status := env.call(t, http.MethodPost, "/api/v1/offers", token, map[string]any{"title": "Resume review", "ownerEmail": "a@x.com"}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultOfferDurationDays, created.Duration)

	var fetched models.Offer
	status = env.call(t, http.MethodGet, "/api/v1/offers/"+created.ID, token, nil, &fetched)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Resume review", fetched.Title)

	var missing errorBody
	status = env.call(t, http.MethodGet, "/api/v1/offers/nonexistent-id", token, nil, &missing)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", missing.Kind)

	var second models.Offer
	require.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, "/api/v1/offers", token, map[string]any{"title": "Mock interview", "skill": "go"}, &second))
	assert.NotEqual(t, created.ID, second.ID)

	var listed []models.Offer
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/offers?skill=go", token, nil, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/v1/offers?limit=0", token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPut, "/api/v1/offers/"+created.ID, token, map[string]any{}, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPut, "/api/v1/offers/"+created.ID, other, map[string]any{"title": "mine"}, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPost, "/api/v1/offers", other, map[string]any{"title": "x", "ownerEmail": "a@x.com"}, nil))

	var updated models.Offer
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPut, "/api/v1/offers/"+created.ID, token, map[string]any{"title": "CV review"}, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "CV review", updated.Title)

	require.Equal(t, http.StatusOK, env.call(t, http.MethodDelete, "/api/v1/offers/"+created.ID, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/v1/offers/"+created.ID, token, nil, nil))
}

func TestJournalFlow(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")
	other := env.signUpAndIn(t, "b@x.com", "p")

	var first, second models.Journal
	require.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, "/api/v1/journals", token,
		map[string]any{"title": "One", "description": "calm morning", "date": "05-01-2024"}, &first))
	require.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, "/api/v1/journals", token,
		map[string]any{"title": "Two", "description": "busy day", "date": "05-02-2024"}, &second))
	assert.Equal(t, "a@x.com", first.Email)

	var listed []models.Journal
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/journals/user/a@x.com", token, nil, &listed))
	require.Len(t, listed, 2)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].CreatedAt.After(listed[i-1].CreatedAt), "journals must be newest first")
	}

	analysis := map[string]any{"emotions": map[string]float64{"joy": 0.8, "calm": 0.2}, "dominant_emotion": "joy"}
	var annotated models.Journal
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/journals/"+first.ID+"/emotion-analysis", token, analysis, &annotated))
	require.NotNil(t, annotated.EmotionAnalysis)
	assert.Equal(t, first.ID, annotated.EmotionAnalysis.EntryID)

	var insights models.JournalInsights
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/journals/insights?start=05-01-2024&end=05-31-2024", token, nil, &insights))
	assert.Equal(t, 1, insights.Metadata.TotalEntries)
	assert.Equal(t, 1, insights.Emotions.DominantEmotions["joy"])
	assert.Equal(t, "05-01-2024", insights.Metadata.DateRange.Start)

	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/v1/journals/insights?start=2024-05-01", token, nil, nil))

	var analyzed models.AnalyzeResponse
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPost, "/api/v1/journal/analyze", token, map[string]string{"content": "what a day"}, &analyzed))
	assert.Equal(t, "success", analyzed.Status)
	assert.Equal(t, "joy", analyzed.Analysis.DominantEmotion)

	// Journals are private to their owner.
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, "/api/v1/journals/"+first.ID, other, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, "/api/v1/journals/user/a@x.com", other, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodDelete, "/api/v1/journals/"+first.ID, other, nil, nil))

	require.Equal(t, http.StatusOK, env.call(t, http.MethodDelete, "/api/v1/journals/"+second.ID, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/v1/journals/"+second.ID, token, nil, nil))
}

func TestMenstrualHealthViews(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")

	var phase models.PhaseResponse
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/menstrual-health/a@x.com/phase", token, nil, &phase))
	assert.False(t, phase.HasData)

	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/v1/menstrual-health/a@x.com/recommendations", token, nil, nil))

	lastPeriod := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	qa := map[string]any{"qa_pairs": []map[string]string{
		{"question": models.QuestionLastPeriod, "answer": lastPeriod},
		{"question": models.QuestionPeriodDuration, "answer": "5-7"},
	}}
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/users/a@x.com", token, qa, nil))

	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/menstrual-health/a@x.com/phase", token, nil, &phase))
	assert.True(t, phase.HasData)
	assert.Equal(t, models.PhaseMenstrual, phase.Phase)

	var recs models.Recommendations
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/menstrual-health/a@x.com/recommendations", token, nil, &recs))
	assert.Equal(t, models.PhaseMenstrual, recs.Phase)
	assert.Equal(t, []string{"leafy greens"}, recs.DietRecommendations)
}

func TestCanvasAndCompletion(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")

	var body errorBody
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/v1/canvas/assignments", token, nil, &body))
	assert.Contains(t, body.Errors, "canvas_token")

	require.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/users/a@x.com", token, map[string]any{"canvas_token": "tok"}, nil))
	var assignments []models.Assignment
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/canvas/assignments", token, nil, &assignments))
	require.Len(t, assignments, 1)
	assert.Equal(t, "Essay", assignments[0].Name)

	var user models.User
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/users/a@x.com", token, nil, &user))
	assert.Len(t, user.Assignments, 1)

	var completion models.CompletionResponse
	require.Equal(t, http.StatusOK, env.call(t, http.MethodPost, "/api/v1/openai/test", token, map[string]string{"prompt": "hello"}, &completion))
	assert.Equal(t, "stub-model", completion.Model)
	assert.NotEmpty(t, completion.Response)
}

func TestDatabaseFailureIsUnavailable(t *testing.T) {
	env := setupApp(t, 0)
	token := env.signUpAndIn(t, "a@x.com", "p")

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var body errorBody
	status := env.call(t, http.MethodGet, "/api/v1/users/a@x.com", token, nil, &body)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "collaborator_unavailable", body.Kind)
	assert.Equal(t, "database is unavailable", body.Message)

	var health map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, env.call(t, http.MethodGet, "/api/v1/health", "", nil, &health))
	assert.Equal(t, "unavailable", health["database"])
}

func TestHealthAndUnknownRoute(t *testing.T) {
	env := setupApp(t, 0)

	var health map[string]string
	require.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/health", "", nil, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "ok", health["database"])

	var body errorBody
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/nowhere", "", nil, &body))
	assert.Equal(t, "not_found", body.Kind)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	env := setupApp(t, 0.001)

	creds := map[string]string{"email": "a@x.com", "password": "p"}
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPost, "/api/v1/auth/signin", "", creds, nil))

	var body errorBody
	assert.Equal(t, http.StatusTooManyRequests, env.call(t, http.MethodPost, "/api/v1/auth/signin", "", creds, &body))
	assert.Equal(t, "rate_limited", body.Kind)
}
