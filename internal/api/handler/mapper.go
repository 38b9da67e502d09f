package handler

import (
	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toQuestionResponse(q *domain.Question) questionResponse {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return questionResponse{
		ID:                q.ID,
		Title:             q.Title,
		Body:              q.Body,
		AuthorID:          q.AuthorID,
		AuthorUsername:    q.AuthorUsername,
		Tags:              tags,
		Score:             q.Score,
		AnswerCount:       q.AnswerCount,
		HasAcceptedAnswer: q.HasAccepted,
		Views:             q.Views,
		CreatedAt:         q.CreatedAt.UTC(),
	}
}

func toQuestionListResponse(r *ports.ListQuestionsResult) questionListResponse {
	items := make([]questionResponse, 0, len(r.Items))
	for _, q := range r.Items {
		items = append(items, toQuestionResponse(q))
	}
	return questionListResponse{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}

func toQuestionDetailResponse(d *ports.QuestionDetail) questionDetailResponse {
	return questionDetailResponse{
		questionResponse: toQuestionResponse(d.Question),
		Answers:          toAnswerResponses(d.Answers),
	}
}

func toAnswerResponse(a *domain.Answer) answerResponse {
	return answerResponse{
		ID:             a.ID,
		Body:           a.Body,
		Accepted:       a.Accepted,
		AuthorID:       a.AuthorID,
		AuthorUsername: a.AuthorUsername,
		QuestionID:     a.QuestionID,
		CreatedAt:      a.CreatedAt.UTC(),
	}
}

func toAnswerResponses(answers []*domain.Answer) []answerResponse {
	out := make([]answerResponse, 0, len(answers))
	for _, a := range answers {
		out = append(out, toAnswerResponse(a))
	}
	return out
}

func toTagResponses(tags []*domain.Tag) []tagResponse {
	out := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagResponse{Name: t.Name, QuestionCount: t.QuestionCount})
	}
	return out
}

func toActivityResponses(events []*domain.ActivityEvent) []activityResponse {
	out := make([]activityResponse, 0, len(events))
	for _, e := range events {
		out = append(out, activityResponse{
			Kind:       string(e.Kind),
			ActorID:    e.ActorID,
			Actor:      e.Actor,
			TargetID:   e.TargetID,
			Attributes: e.Attributes,
			OccurredAt: e.OccurredAt.UTC(),
		})
	}
	return out
}
