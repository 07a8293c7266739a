package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/user-scoring-service/pkg/errorutil"
)

// UserStatus enumerates lifecycle states for scored users. It is a closed
// enum: the zero value is Inactive, matching the state a new user starts in.
type UserStatus int

const (
	UserStatusInactive UserStatus = iota
	UserStatusActive
	UserStatusSuspended
	UserStatusDeleted
)

// IsValid reports whether s is one of the declared states.
func (s UserStatus) IsValid() bool {
	return s >= UserStatusInactive && s <= UserStatusDeleted
}

func (s UserStatus) String() string {
	switch s {
	case UserStatusInactive:
		return "INACTIVE"
	case UserStatusActive:
		return "ACTIVE"
	case UserStatusSuspended:
		return "SUSPENDED"
	case UserStatusDeleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// ParseUserStatus maps the wire name of a state back to its enum value.
func ParseUserStatus(value string) (UserStatus, error) {
	switch value {
	case "INACTIVE":
		return UserStatusInactive, nil
	case "ACTIVE":
		return UserStatusActive, nil
	case "SUSPENDED":
		return UserStatusSuspended, nil
	case "DELETED":
		return UserStatusDeleted, nil
	default:
		return UserStatusInactive, errorutil.NewInvalidArgument("Unknown user status", map[string]any{"status": value})
	}
}

// ExperienceLevel buckets a score into a named tier.
type ExperienceLevel string

const (
	ExperienceLevelExpert       ExperienceLevel = "Expert"
	ExperienceLevelAdvanced     ExperienceLevel = "Advanced"
	ExperienceLevelIntermediate ExperienceLevel = "Intermediate"
	ExperienceLevelBeginner     ExperienceLevel = "Beginner"
	ExperienceLevelNovice       ExperienceLevel = "Novice"
)

// User is the aggregate the scoring rules operate on. A zero BirthDate means
// the birth date is unknown. Score stays within [0,100] as long as mutations
// go through UpdateScore.
type User struct {
	ID        string
	Username  string
	Email     string
	BirthDate time.Time
	Score     int
	Status    UserStatus
}

// NewUser returns a user in the Inactive state with a zero score.
func NewUser(username, email string, birthDate time.Time) *User {
	return &User{
		Username:  username,
		Email:     email,
		BirthDate: birthDate,
		Score:     0,
		Status:    UserStatusInactive,
	}
}

// Age returns the whole calendar years between the birth date and today,
// or 0 when the birth date is unknown.
func (u *User) Age(today time.Time) int {
	if u.BirthDate.IsZero() {
		return 0
	}
	years := today.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(today) {
		years--
	}
	return years
}

// IsAdult reports whether the user is 18 or older.
func (u *User) IsAdult(today time.Time) bool {
	return u.Age(today) >= 18
}

// ExperienceLevel derives the tier for the current score. Scores below zero
// are refused rather than bucketed.
func (u *User) ExperienceLevel() (ExperienceLevel, error) {
	if u.Score < 0 {
		return "", errorutil.NewInvalidArgument("Score cannot be negative", map[string]any{"score": u.Score})
	}
	switch {
	case u.Score >= 90:
		return ExperienceLevelExpert, nil
	case u.Score >= 70:
		return ExperienceLevelAdvanced, nil
	case u.Score >= 50:
		return ExperienceLevelIntermediate, nil
	case u.Score >= 30:
		return ExperienceLevelBeginner, nil
	default:
		return ExperienceLevelNovice, nil
	}
}

// UpdateScore validates and stores a new score. Reaching 50 activates an
// inactive user; suspended and deleted users are never activated here.
func (u *User) UpdateScore(newScore int) error {
	if newScore < 0 || newScore > 100 {
		return errorutil.NewInvalidArgument("Score must be between 0 and 100", map[string]any{"score": newScore})
	}
	u.Score = newScore
	if newScore >= 50 && u.Status == UserStatusInactive {
		u.Status = UserStatusActive
	}
	return nil
}

// CanBePromoted reports whether the user is active, scores at least 75 and
// is an adult.
func (u *User) CanBePromoted(today time.Time) bool {
	return u.Status == UserStatusActive && u.Score >= 75 && u.IsAdult(today)
}

// CalculateBonus combines age, score and status into a bonus figure. Active
// users have the whole sum doubled.
func (u *User) CalculateBonus(today time.Time) int {
	bonus := 0
	if u.IsAdult(today) {
		bonus += 10
	}
	if u.Score > 80 {
		bonus += u.Score * 2
	} else if u.Score > 50 {
		bonus += u.Score
	}
	if u.Status == UserStatusActive {
		bonus *= 2
	}
	return bonus
}

// HasValidEmailFormat runs a conservative structural check over the email.
// It never errors; malformed addresses simply report false.
func (u *User) HasValidEmailFormat() bool {
	email := u.Email
	if strings.TrimSpace(email) == "" {
		return false
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return false
	}
	if strings.Index(email, "@") != strings.LastIndex(email, "@") {
		return false
	}

	atIndex := strings.Index(email, "@")
	lastDotIndex := strings.LastIndex(email, ".")

	// the @ must sit before the last dot, with characters on every side
	if atIndex >= lastDotIndex {
		return false
	}
	if atIndex == 0 {
		return false
	}
	if lastDotIndex == len(email)-1 {
		return false
	}
	if lastDotIndex-atIndex <= 1 {
		return false
	}
	if strings.Contains(email, "..") || strings.Contains(email, "@.") {
		return false
	}
	return true
}

// Equal compares identity, not value: two users are the same when ID and
// username match.
func (u *User) Equal(other *User) bool {
	if other == nil {
		return false
	}
	return u.ID == other.ID && u.Username == other.Username
}

func (u *User) String() string {
	return fmt.Sprintf("User{id=%s, username=%s, email=%s, score=%d, status=%s}",
		u.ID, u.Username, u.Email, u.Score, u.Status)
}
