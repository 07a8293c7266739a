package dto

// CreateUserRequest payload for registering a user.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"`
}

// UpdateScoreRequest payload for score updates. Score is a pointer so a
// missing field is distinguishable from zero.
type UpdateScoreRequest struct {
	Score *int `json:"score"`
}

// GenerateIDRequest payload for the identifier tool.
type GenerateIDRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ValidateUsernameRequest payload for the username tool.
type ValidateUsernameRequest struct {
	Username string `json:"username"`
}

// UserResponse is the user representation served over HTTP, including the
// derived age and experience fields.
type UserResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	BirthDate       string `json:"birth_date"`
	Age             int    `json:"age"`
	Adult           bool   `json:"adult"`
	Score           int    `json:"score"`
	Status          string `json:"status"`
	ExperienceLevel string `json:"experience_level"`
}

// RankingResponse carries the composite ranking for one user.
type RankingResponse struct {
	Username string  `json:"username"`
	Ranking  float64 `json:"ranking"`
}

// PremiumAccessResponse reports the premium feature gate for one user.
type PremiumAccessResponse struct {
	Username      string `json:"username"`
	PremiumAccess bool   `json:"premium_access"`
}

// GenerateIDResponse carries a generated identifier.
type GenerateIDResponse struct {
	UserID string `json:"user_id"`
}

// ValidateUsernameResponse reports the outcome of a username check.
type ValidateUsernameResponse struct {
	Username string `json:"username"`
	Valid    bool   `json:"valid"`
}

// StatisticsResponse is the registry-wide aggregate snapshot.
type StatisticsResponse struct {
	TotalUsers      int     `json:"total_users"`
	AverageScore    float64 `json:"average_score"`
	AverageAge      float64 `json:"average_age"`
	ActiveUsers     int     `json:"active_users"`
	AdultUsers      int     `json:"adult_users"`
	PromotableUsers int     `json:"promotable_users"`
}
