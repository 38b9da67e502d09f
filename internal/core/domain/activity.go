package domain

import "time"

// ActivityKind names an auditable action.
type ActivityKind string

const (
	ActivityLoginSucceeded  ActivityKind = "login_succeeded"
	ActivityLoginFailed     ActivityKind = "login_failed"
	ActivityUserRegistered  ActivityKind = "user_registered"
	ActivityUserDeleted     ActivityKind = "user_deleted"
	ActivityRoleChanged     ActivityKind = "role_changed"
	ActivityQuestionPosted  ActivityKind = "question_posted"
	ActivityQuestionDeleted ActivityKind = "question_deleted"
	ActivityAnswerPosted    ActivityKind = "answer_posted"
	ActivityAnswerAccepted  ActivityKind = "answer_accepted"
	ActivityAnswerDeleted   ActivityKind = "answer_deleted"
	ActivityVoteCast        ActivityKind = "vote_cast"
	ActivityVoteRetracted   ActivityKind = "vote_retracted"
)

// ActivityEvent is an append-only audit record. ActorID is empty for
// anonymous actions such as a failed login for an unknown username.
type ActivityEvent struct {
	Kind       ActivityKind      `json:"kind"`
	ActorID    string            `json:"actor_id,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
