package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-scoring-service/internal/api/dto"
	"github.com/spec-kit/user-scoring-service/internal/api/http/handlers"
	"github.com/spec-kit/user-scoring-service/internal/observability"
	"github.com/spec-kit/user-scoring-service/internal/repository"
	"github.com/spec-kit/user-scoring-service/internal/service"
)

type userEnvelope struct {
	Data dto.UserResponse `json:"data"`
}

type usersEnvelope struct {
	Data []dto.UserResponse `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	engine := service.NewUserService(service.UserDependencies{
		Registry: repository.NewUserRegistry(),
	})
	var engineMu sync.Mutex

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("user-scoring-service", "test", engine, &engineMu),
		Users:  handlers.NewUsersHandler(engine, &engineMu),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func requireInvalidArgument(t *testing.T, resp *http.Response, wantMessage string) {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorEnvelope
	decodeBody(t, resp, &body)
	assert.Equal(t, "INVALID_ARGUMENT", body.Error.Code)
	assert.Equal(t, wantMessage, body.Error.Message)
}

// birthDateYearsAgo keeps the age stable no matter when the test runs by
// placing the anniversary one day in the past.
func birthDateYearsAgo(years int) string {
	return time.Now().UTC().AddDate(-years, 0, -1).Format("2006-01-02")
}

func createUser(t *testing.T, app *fiber.App, username, email string, years int) dto.UserResponse {
	t.Helper()

	resp := doJSON(t, app, "POST", "/users", dto.CreateUserRequest{
		Username:  username,
		Email:     email,
		BirthDate: birthDateYearsAgo(years),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body userEnvelope
	decodeBody(t, resp, &body)
	return body.Data
}

func TestCreateUserEndpoint(t *testing.T) {
	app := newTestApp(t)

	user := createUser(t, app, "alice", "alice@example.com", 30)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 30, user.Age)
	assert.True(t, user.Adult)
	assert.Equal(t, 0, user.Score)
	assert.Equal(t, "ACTIVE", user.Status)
	assert.Equal(t, "Novice", user.ExperienceLevel)
}

func TestCreateUserEndpointRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "POST", "/users", dto.CreateUserRequest{})
	requireInvalidArgument(t, resp, "Username cannot be empty")

	resp = doJSON(t, app, "POST", "/users", dto.CreateUserRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		BirthDate: "15-06-1990",
	})
	requireInvalidArgument(t, resp, "birth_date must be YYYY-MM-DD")
}

func TestCreateUserEndpointRejectsDuplicates(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)

	resp := doJSON(t, app, "POST", "/users", dto.CreateUserRequest{
		Username:  "ALICE",
		Email:     "other@example.com",
		BirthDate: birthDateYearsAgo(30),
	})
	requireInvalidArgument(t, resp, "Username already exists")
}

func TestGetUserEndpoint(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)

	resp := doJSON(t, app, "GET", "/users/alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body userEnvelope
	decodeBody(t, resp, &body)
	assert.Equal(t, "alice", body.Data.Username)

	resp = doJSON(t, app, "GET", "/users/ghost", nil)
	requireInvalidArgument(t, resp, "User not found")
}

func TestUpdateScoreEndpoint(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)

	score := 75
	resp := doJSON(t, app, "PUT", "/users/alice/score", dto.UpdateScoreRequest{Score: &score})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body userEnvelope
	decodeBody(t, resp, &body)
	// 75 plus the one-time qualification bonus
	assert.Equal(t, 85, body.Data.Score)
	assert.Equal(t, "Advanced", body.Data.ExperienceLevel)
}

func TestUpdateScoreEndpointValidation(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)

	resp := doJSON(t, app, "PUT", "/users/alice/score", fiber.Map{})
	requireInvalidArgument(t, resp, "score required")

	score := 101
	resp = doJSON(t, app, "PUT", "/users/alice/score", dto.UpdateScoreRequest{Score: &score})
	requireInvalidArgument(t, resp, "Score must be between 0 and 100")

	score = 50
	resp = doJSON(t, app, "PUT", "/users/ghost/score", dto.UpdateScoreRequest{Score: &score})
	requireInvalidArgument(t, resp, "User not found")
}

func TestListUsersEndpoint(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)
	createUser(t, app, "bobby", "bobby@example.com", 15)

	resp := doJSON(t, app, "GET", "/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body usersEnvelope
	decodeBody(t, resp, &body)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "alice", body.Data[0].Username)
	assert.Equal(t, "bobby", body.Data[1].Username)

	resp = doJSON(t, app, "GET", "/users?min_age=18", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "alice", body.Data[0].Username)

	// alice activated on creation, bobby is a minor and stayed inactive
	resp = doJSON(t, app, "GET", "/users?status=ACTIVE", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "alice", body.Data[0].Username)

	resp = doJSON(t, app, "GET", "/users?status=INACTIVE", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "bobby", body.Data[0].Username)

	resp = doJSON(t, app, "GET", "/users?status=SUSPENDED", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Data)
}

func TestListUsersEndpointValidation(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "GET", "/users?min_age=abc", nil)
	requireInvalidArgument(t, resp, "min_age and max_age must be integers")

	resp = doJSON(t, app, "GET", "/users?min_age=40&max_age=10", nil)
	requireInvalidArgument(t, resp, "Minimum age cannot be greater than maximum age")

	resp = doJSON(t, app, "GET", "/users?status=banana", nil)
	requireInvalidArgument(t, resp, "Unknown user status")

	resp = doJSON(t, app, "GET", "/users?status=ACTIVE&min_age=18", nil)
	requireInvalidArgument(t, resp, "status cannot be combined with min_age/max_age")
}

func TestRankingEndpoint(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)
	score := 85
	resp := doJSON(t, app, "PUT", "/users/alice/score", dto.UpdateScoreRequest{Score: &score})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, "GET", "/users/alice/ranking", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data dto.RankingResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	// score 95 after the bonus: 95 * 1.2 * 1.5 * 2.0
	assert.InDelta(t, 342.0, body.Data.Ranking, 1e-9)

	resp = doJSON(t, app, "GET", "/users/ghost/ranking", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Zero(t, body.Data.Ranking)
}

func TestPremiumAccessEndpoint(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)

	resp := doJSON(t, app, "GET", "/users/alice/premium-access", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data dto.PremiumAccessResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Data.PremiumAccess)

	score := 85
	scoreResp := doJSON(t, app, "PUT", "/users/alice/score", dto.UpdateScoreRequest{Score: &score})
	require.Equal(t, http.StatusOK, scoreResp.StatusCode)
	scoreResp.Body.Close()

	resp = doJSON(t, app, "GET", "/users/alice/premium-access", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.True(t, body.Data.PremiumAccess)
}

func TestStatisticsEndpoint(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)
	createUser(t, app, "bobby", "bobby@example.com", 15)

	resp := doJSON(t, app, "GET", "/statistics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data dto.StatisticsResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 2, body.Data.TotalUsers)
	assert.InDelta(t, 22.5, body.Data.AverageAge, 1e-9)
	assert.Equal(t, 1, body.Data.ActiveUsers)
	assert.Equal(t, 1, body.Data.AdultUsers)
}

func TestUserIDToolEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "POST", "/tools/user-id", dto.GenerateIDRequest{
		Username: "testuser",
		Email:    "test@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data dto.GenerateIDResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.Regexp(t, `^USR\d{1,6}$`, body.Data.UserID)

	resp = doJSON(t, app, "POST", "/tools/user-id", dto.GenerateIDRequest{Username: "testuser"})
	requireInvalidArgument(t, resp, "Username and email cannot be empty")
}

func TestUsernameValidationToolEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "POST", "/tools/username-validation", dto.ValidateUsernameRequest{Username: "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data dto.ValidateUsernameResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Data.Valid)

	resp = doJSON(t, app, "POST", "/tools/username-validation", dto.ValidateUsernameRequest{Username: "1bad"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.False(t, body.Data.Valid)
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)
	createUser(t, app, "alice", "alice@example.com", 30)

	resp := doJSON(t, app, "GET", "/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var live map[string]any
	decodeBody(t, resp, &live)
	assert.Equal(t, "alive", live["status"])
	assert.Equal(t, "user-scoring-service", live["service"])

	resp = doJSON(t, app, "GET", "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ready map[string]any
	decodeBody(t, resp, &ready)
	assert.Equal(t, "ready", ready["status"])
	assert.Equal(t, float64(1), ready["users"])
}
