package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-scoring-service/internal/api/dto"
	"github.com/spec-kit/user-scoring-service/internal/domain"
	"github.com/spec-kit/user-scoring-service/internal/service"
	"github.com/spec-kit/user-scoring-service/pkg/errorutil"
)

// defaultMaxAge is the upper age bound applied when a list query sets
// min_age without max_age.
const defaultMaxAge = 150

// UsersHandler exposes the scoring engine over HTTP. The engine does no
// locking of its own, so every route that touches it holds mu.
type UsersHandler struct {
	engine *service.UserService
	mu     *sync.Mutex
	now    func() time.Time
}

// NewUsersHandler constructs handler.
func NewUsersHandler(engine *service.UserService, mu *sync.Mutex) *UsersHandler {
	return &UsersHandler{engine: engine, mu: mu, now: time.Now}
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewInvalidArgument("invalid payload", nil)
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	user, err := h.engine.CreateUser(req.Username, req.Email, birthDate)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.userResponse(user)})
}

// ListUsers GET /users. Without query parameters it returns everyone;
// status filters by lifecycle state, min_age/max_age by inclusive age
// bounds. The two filters do not combine.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	statusRaw := c.Query("status")
	minRaw := c.Query("min_age")
	maxRaw := c.Query("max_age")
	if statusRaw != "" && (minRaw != "" || maxRaw != "") {
		return errorutil.NewInvalidArgument("status cannot be combined with min_age/max_age", nil)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var users []domain.User
	switch {
	case statusRaw != "":
		status, err := domain.ParseUserStatus(statusRaw)
		if err != nil {
			return err
		}
		users, err = h.engine.FindUsersByStatus(status)
		if err != nil {
			return err
		}
	case minRaw == "" && maxRaw == "":
		users = h.engine.AllUsers()
	default:
		minAge, err := parseAgeQuery(minRaw, 0)
		if err != nil {
			return err
		}
		maxAge, err := parseAgeQuery(maxRaw, defaultMaxAge)
		if err != nil {
			return err
		}
		users, err = h.engine.FindUsersByAgeRange(minAge, maxAge)
		if err != nil {
			return err
		}
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, h.userResponse(user))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:username.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	user, err := h.engine.GetUser(c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.userResponse(user)})
}

// UpdateScore PUT /users/:username/score.
func (h *UsersHandler) UpdateScore(c *fiber.Ctx) error {
	var req dto.UpdateScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewInvalidArgument("invalid payload", nil)
	}
	if req.Score == nil {
		return errorutil.NewInvalidArgument("score required", nil)
	}

	username := c.Params("username")
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.engine.UpdateUserScore(username, *req.Score); err != nil {
		return err
	}
	user, err := h.engine.GetUser(username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.userResponse(user)})
}

// Ranking GET /users/:username/ranking. Unknown usernames rank 0.0 instead
// of failing, matching the engine.
func (h *UsersHandler) Ranking(c *fiber.Ctx) error {
	username := c.Params("username")
	h.mu.Lock()
	defer h.mu.Unlock()
	ranking := h.engine.CalculateUserRanking(username)
	return c.JSON(fiber.Map{"data": dto.RankingResponse{Username: username, Ranking: ranking}})
}

// PremiumAccess GET /users/:username/premium-access.
func (h *UsersHandler) PremiumAccess(c *fiber.Ctx) error {
	username := c.Params("username")
	h.mu.Lock()
	defer h.mu.Unlock()
	allowed := h.engine.CanAccessPremiumFeatures(username)
	return c.JSON(fiber.Map{"data": dto.PremiumAccessResponse{Username: username, PremiumAccess: allowed}})
}

// Statistics GET /statistics.
func (h *UsersHandler) Statistics(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	stats := h.engine.GenerateStatistics()
	return c.JSON(fiber.Map{"data": dto.StatisticsResponse{
		TotalUsers:      stats.TotalUsers,
		AverageScore:    stats.AverageScore,
		AverageAge:      stats.AverageAge,
		ActiveUsers:     stats.ActiveUsers,
		AdultUsers:      stats.AdultUsers,
		PromotableUsers: stats.PromotableUsers,
	}})
}

// GenerateUserID POST /tools/user-id.
func (h *UsersHandler) GenerateUserID(c *fiber.Ctx) error {
	var req dto.GenerateIDRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewInvalidArgument("invalid payload", nil)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id, err := h.engine.GenerateUserID(req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GenerateIDResponse{UserID: id}})
}

// ValidateUsername POST /tools/username-validation.
func (h *UsersHandler) ValidateUsername(c *fiber.Ctx) error {
	var req dto.ValidateUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewInvalidArgument("invalid payload", nil)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	valid := h.engine.IsValidUsername(req.Username)
	return c.JSON(fiber.Map{"data": dto.ValidateUsernameResponse{Username: req.Username, Valid: valid}})
}

func parseBirthDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errorutil.NewInvalidArgument("birth_date must be YYYY-MM-DD", map[string]any{"birth_date": raw})
	}
	return parsed, nil
}

func parseAgeQuery(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errorutil.NewInvalidArgument("min_age and max_age must be integers", nil)
	}
	return parsed, nil
}

func (h *UsersHandler) userResponse(user domain.User) dto.UserResponse {
	today := h.now()
	level, _ := user.ExperienceLevel() // stored scores are never negative
	return dto.UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		BirthDate:       user.BirthDate.Format("2006-01-02"),
		Age:             user.Age(today),
		Adult:           user.IsAdult(today),
		Score:           user.Score,
		Status:          user.Status.String(),
		ExperienceLevel: string(level),
	}
}
