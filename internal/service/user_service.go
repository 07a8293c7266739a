package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/spec-kit/user-scoring-service/internal/domain"
	"github.com/spec-kit/user-scoring-service/internal/events"
	"github.com/spec-kit/user-scoring-service/internal/repository"
	"github.com/spec-kit/user-scoring-service/pkg/errorutil"
	"github.com/spec-kit/user-scoring-service/pkg/mathutil"
)

// 0x85ebca6b read as a signed 32-bit value; the identifier mix depends on
// the wrapped negative multiplier, not the unsigned one.
const idMixMultiplier = int64(-2049060245)

// UserService owns the scoring rules and the registry they run against.
// All methods are synchronous; callers that share one instance across
// goroutines serialize access at their boundary.
type UserService struct {
	registry   repository.UserRegistry
	dispatcher events.Dispatcher
	clock      func() time.Time
}

// UserDependencies bundles collaborators for the user service. Dispatcher
// is optional; Clock defaults to time.Now.
type UserDependencies struct {
	Registry   repository.UserRegistry
	Dispatcher events.Dispatcher
	Clock      func() time.Time
}

// UserStatistics is a snapshot of registry-wide aggregates.
type UserStatistics struct {
	TotalUsers      int
	AverageScore    float64
	AverageAge      float64
	ActiveUsers     int
	AdultUsers      int
	PromotableUsers int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	svc := &UserService{
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	return svc
}

// CreateUser validates the input, enforces username/email uniqueness and
// stores the new record. Adults with a structurally valid email start out
// Active instead of Inactive. The returned value is a copy.
func (s *UserService) CreateUser(username, email string, birthDate time.Time) (domain.User, error) {
	if err := s.validateNewUser(username, email, birthDate); err != nil {
		return domain.User{}, err
	}
	if s.registry.UsernameExists(username) {
		return domain.User{}, errorutil.NewInvalidArgument("Username already exists", map[string]any{"username": username})
	}
	if s.registry.EmailExists(email) {
		return domain.User{}, errorutil.NewInvalidArgument("Email already exists", map[string]any{"email": email})
	}

	user := domain.NewUser(username, email, birthDate)
	user.ID = uuid.NewString()

	today := s.clock()
	activated := user.IsAdult(today) && user.HasValidEmailFormat()
	if activated {
		user.Status = domain.UserStatusActive
	}

	s.registry.Add(user)
	s.publishEvent(events.Event{
		Type:     events.EventUserCreated,
		Username: user.Username,
		Payload: events.UserCreatedPayload{
			UserID:    user.ID,
			Email:     user.Email,
			Status:    user.Status.String(),
			Activated: activated,
		},
	})
	return *user, nil
}

// UpdateUserScore applies a new score together with the follow-up rules: a
// score crossing the qualification threshold earns a one-time bonus as long
// as the total stays within 100, and an active user dropping below 10 is
// suspended. The suspension rule sees the state left by the bonus rule.
func (s *UserService) UpdateUserScore(username string, newScore int) error {
	user, err := s.findUser(username)
	if err != nil {
		return err
	}

	oldScore := user.Score
	oldStatus := user.Status
	if err := user.UpdateScore(newScore); err != nil {
		return err
	}

	bonus := 0
	if oldScore < 50 && newScore >= 50 {
		bonus = s.qualificationBonus(user)
		if newScore+bonus <= 100 {
			user.Score = newScore + bonus
		} else {
			bonus = 0
		}
	}

	if newScore < 10 && user.Status == domain.UserStatusActive {
		user.Status = domain.UserStatusSuspended
	}

	s.publishEvent(events.Event{
		Type:     events.EventUserScoreChanged,
		Username: user.Username,
		Payload: events.UserScoreChangedPayload{
			OldScore:           oldScore,
			NewScore:           user.Score,
			QualificationBonus: bonus,
		},
	})
	if user.Status != oldStatus {
		s.publishEvent(events.Event{
			Type:     events.EventUserStatusChanged,
			Username: user.Username,
			Payload: events.UserStatusChangedPayload{
				OldStatus: oldStatus.String(),
				NewStatus: user.Status.String(),
				Reason:    statusChangeReason(user.Status),
			},
		})
	}
	return nil
}

// CalculateUserRanking folds score, adulthood, status and experience level
// into one figure, rounded half-up at two decimals. Unknown usernames rank
// 0.0 rather than failing.
func (s *UserService) CalculateUserRanking(username string) float64 {
	user, err := s.findUser(username)
	if err != nil {
		return 0.0
	}

	today := s.clock()
	ranking := float64(user.Score)

	if user.IsAdult(today) {
		ranking *= 1.2
	} else {
		ranking *= 0.8
	}

	switch user.Status {
	case domain.UserStatusActive:
		ranking *= 1.5
	case domain.UserStatusInactive:
		ranking *= 0.5
	case domain.UserStatusSuspended:
		ranking *= 0.1
	case domain.UserStatusDeleted:
		ranking = 0.0
	}

	level, err := user.ExperienceLevel()
	if err != nil {
		return 0.0
	}
	switch level {
	case domain.ExperienceLevelExpert:
		ranking *= 2.0
	case domain.ExperienceLevelAdvanced:
		ranking *= 1.7
	case domain.ExperienceLevelIntermediate:
		ranking *= 1.3
	case domain.ExperienceLevelBeginner:
		ranking *= 1.0
	case domain.ExperienceLevelNovice:
		ranking *= 0.7
	}

	return roundTo2(ranking)
}

// FindUsersByAgeRange returns copies of all users whose age falls inside
// the inclusive bounds.
func (s *UserService) FindUsersByAgeRange(minAge, maxAge int) ([]domain.User, error) {
	if minAge < 0 || maxAge < 0 {
		return nil, errorutil.NewInvalidArgument("Age cannot be negative", map[string]any{"min_age": minAge, "max_age": maxAge})
	}
	if minAge > maxAge {
		return nil, errorutil.NewInvalidArgument("Minimum age cannot be greater than maximum age", map[string]any{"min_age": minAge, "max_age": maxAge})
	}

	today := s.clock()
	matches := make([]domain.User, 0)
	for _, user := range s.registry.List() {
		age := user.Age(today)
		if age >= minAge && age <= maxAge {
			matches = append(matches, *user)
		}
	}
	return matches, nil
}

// FindUsersByStatus returns copies of all users currently in the given
// lifecycle state. Values outside the enum are refused rather than matched
// against nothing.
func (s *UserService) FindUsersByStatus(status domain.UserStatus) ([]domain.User, error) {
	if !status.IsValid() {
		return nil, errorutil.NewInvalidArgument("Unknown user status", map[string]any{"status": int(status)})
	}

	matches := make([]domain.User, 0)
	for _, user := range s.registry.List() {
		if user.Status == status {
			matches = append(matches, *user)
		}
	}
	return matches, nil
}

// GenerateStatistics aggregates the whole registry. An empty registry
// yields the zero snapshot.
func (s *UserService) GenerateStatistics() UserStatistics {
	users := s.registry.List()
	if len(users) == 0 {
		return UserStatistics{}
	}

	today := s.clock()
	stats := UserStatistics{TotalUsers: len(users)}
	scoreSum := 0
	ageSum := 0
	for _, user := range users {
		scoreSum += user.Score
		ageSum += user.Age(today)
		if user.Status == domain.UserStatusActive {
			stats.ActiveUsers++
		}
		if user.IsAdult(today) {
			stats.AdultUsers++
		}
		if user.CanBePromoted(today) {
			stats.PromotableUsers++
		}
	}
	stats.AverageScore = float64(scoreSum) / float64(len(users))
	stats.AverageAge = float64(ageSum) / float64(len(users))
	return stats
}

// IsValidUsername checks length, leading letter, the allowed character set
// (letters, digits, underscore, hyphen) and that at least half of the runes
// are letters.
func (s *UserService) IsValidUsername(username string) bool {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return false
	}

	runes := []rune(trimmed)
	if len(runes) < 3 || len(runes) > 50 {
		return false
	}
	if !unicode.IsLetter(runes[0]) {
		return false
	}

	letters := 0
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return float64(letters)/float64(len(runes)) >= 0.5
}

// GenerateUserID derives a reproducible presentation identifier from the
// username and email. It is not collision free; User.ID stays the real
// identifier.
func (s *UserService) GenerateUserID(username, email string) (string, error) {
	if username == "" || email == "" {
		return "", errorutil.NewInvalidArgument("Username and email cannot be empty", nil)
	}

	combined := int64(abs32(stringHash(username)))*31 + int64(abs32(stringHash(email)))
	combined ^= int64(uint64(combined) >> 16)
	combined *= idMixMultiplier
	combined ^= int64(uint64(combined) >> 13)

	suffix := combined % 1_000_000
	if suffix < 0 {
		suffix = -suffix
	}
	return "USR" + strconv.FormatInt(suffix, 10), nil
}

// CanAccessPremiumFeatures requires an active adult whose score clears an
// age-dependent threshold and is either prime or at least 85. Unknown
// usernames simply report false.
func (s *UserService) CanAccessPremiumFeatures(username string) bool {
	user, err := s.findUser(username)
	if err != nil {
		return false
	}

	today := s.clock()
	if user.Status != domain.UserStatusActive || !user.IsAdult(today) {
		return false
	}

	requiredScore := 70
	if user.Age(today) < 25 {
		requiredScore = 60
	}
	if user.Score < requiredScore {
		return false
	}

	return mathutil.IsPrime(user.Score) || user.Score >= 85
}

// GetUser returns a copy of the record stored under the exact username.
func (s *UserService) GetUser(username string) (domain.User, error) {
	user, err := s.findUser(username)
	if err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

// AllUsers returns copies of every record in insertion order.
func (s *UserService) AllUsers() []domain.User {
	stored := s.registry.List()
	users := make([]domain.User, len(stored))
	for i, user := range stored {
		users[i] = *user
	}
	return users
}

// UserCount reports the number of stored users.
func (s *UserService) UserCount() int {
	return s.registry.Count()
}

// ClearUsers empties the registry.
func (s *UserService) ClearUsers() {
	s.registry.Clear()
}

func (s *UserService) validateNewUser(username, email string, birthDate time.Time) error {
	if strings.TrimSpace(username) == "" {
		return errorutil.NewInvalidArgument("Username cannot be empty", nil)
	}
	if strings.TrimSpace(email) == "" {
		return errorutil.NewInvalidArgument("Email cannot be empty", nil)
	}
	if birthDate.IsZero() {
		return errorutil.NewInvalidArgument("Birth date is required", nil)
	}
	if birthDate.After(s.clock()) {
		return errorutil.NewInvalidArgument("Birth date cannot be in the future", map[string]any{"birth_date": birthDate.Format("2006-01-02")})
	}
	if !s.IsValidUsername(username) {
		return errorutil.NewInvalidArgument("Invalid username format", map[string]any{"username": username})
	}
	return nil
}

// findUser resolves the exact username or reports it as invalid input; the
// registry surface never leaks its own sentinel.
func (s *UserService) findUser(username string) (*domain.User, error) {
	user, err := s.registry.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errorutil.NewInvalidArgument("User not found", map[string]any{"username": username})
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) qualificationBonus(user *domain.User) int {
	bonus := 5
	if user.IsAdult(s.clock()) {
		bonus += 3
	}
	if user.HasValidEmailFormat() {
		bonus += 2
	}
	return bonus
}

func (s *UserService) publishEvent(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	_ = s.dispatcher.Publish(context.Background(), event)
}

func statusChangeReason(newStatus domain.UserStatus) string {
	switch newStatus {
	case domain.UserStatusActive:
		return "score_activation"
	case domain.UserStatusSuspended:
		return "low_score_suspension"
	default:
		return ""
	}
}

// stringHash is a 31-polynomial over the UTF-16 code units of s with 32-bit
// wraparound, so generated identifiers stay stable across platforms.
func stringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(unit)
	}
	return h
}

// abs32 wraps on the minimum value instead of widening.
func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// roundTo2 rounds half-up at two decimals.
func roundTo2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
