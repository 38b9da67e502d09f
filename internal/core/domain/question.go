package domain

import "time"

const (
	MaxTitleLength = 140
	MaxTagLength   = 30
	MaxTags        = 5
)

// Question is a post asking the community for help.
type Question struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Tags           []string  `json:"tags"`
	Score          int64     `json:"score"`
	AnswerCount    int64     `json:"answer_count"`
	HasAccepted    bool      `json:"has_accepted_answer"`
	Views          int64     `json:"views"`
	CreatedAt      time.Time `json:"created_at"`
}

// Answer is a reply to a question. At most one answer per question is accepted.
type Answer struct {
	ID             string    `json:"id"`
	Body           string    `json:"body"`
	Accepted       bool      `json:"accepted"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	QuestionID     string    `json:"question_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Vote is a single user's +1/-1 on a question; (UserID, QuestionID) is unique.
type Vote struct {
	ID         string
	Value      int
	UserID     string
	QuestionID string
}

// Tag labels questions by topic. Names are unique and lowercase.
type Tag struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int64  `json:"question_count"`
}
