package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth / users ---

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=GUEST USER ADMIN guest user admin"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Questions / answers / votes ---

type createQuestionRequest struct {
	Title string   `json:"title" validate:"required,max=140"`
	Body  string   `json:"body"  validate:"required"`
	// Tags are limited after normalization, so duplicates do not count.
	Tags  []string `json:"tags"`
}

type questionResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	AuthorID          string    `json:"author_id"`
	AuthorUsername    string    `json:"author_username"`
	Tags              []string  `json:"tags"`
	Score             int64     `json:"score"`
	AnswerCount       int64     `json:"answer_count"`
	HasAcceptedAnswer bool      `json:"has_accepted_answer"`
	Views             int64     `json:"views"`
	CreatedAt         time.Time `json:"created_at"`
}

type questionDetailResponse struct {
	questionResponse
	Answers []answerResponse `json:"answers"`
}

type questionListResponse struct {
	Items      []questionResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type createAnswerRequest struct {
	Body string `json:"body" validate:"required"`
}

type answerResponse struct {
	ID             string    `json:"id"`
	Body           string    `json:"body"`
	Accepted       bool      `json:"accepted"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	QuestionID     string    `json:"question_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type voteRequest struct {
	Value int `json:"value" validate:"oneof=1 -1"`
}

type tagResponse struct {
	Name          string `json:"name"`
	QuestionCount int64  `json:"question_count"`
}

// --- Admin ---

type activityResponse struct {
	Kind       string            `json:"kind"`
	ActorID    string            `json:"actor_id,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
