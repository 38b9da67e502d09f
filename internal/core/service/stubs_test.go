package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// stubUserRepo enforces username/email uniqueness under a lock, the way a
// UNIQUE constraint would.
type stubUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	seq    int
	findFn func(username string) (*domain.User, error)
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrConflict
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.byID[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findFn != nil {
		return r.findFn(username)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubQuestionRepo struct {
	items   map[string]*domain.Question
	created *domain.Question
	filter  ports.ListQuestionsFilter
	total   int64
	deleted []string
}

func newStubQuestionRepo(qs ...*domain.Question) *stubQuestionRepo {
	r := &stubQuestionRepo{items: make(map[string]*domain.Question)}
	for _, q := range qs {
		r.items[q.ID] = q
	}
	return r
}

func (r *stubQuestionRepo) Create(_ context.Context, q *domain.Question) (*domain.Question, error) {
	c := *q
	c.ID = "q-new"
	r.created = &c
	r.items[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubQuestionRepo) FindByID(_ context.Context, id string) (*domain.Question, error) {
	q, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *q
	return &c, nil
}

func (r *stubQuestionRepo) List(_ context.Context, f ports.ListQuestionsFilter) ([]*domain.Question, int64, error) {
	r.filter = f
	out := make([]*domain.Question, 0, len(r.items))
	for _, q := range r.items {
		c := *q
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := r.total
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

func (r *stubQuestionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubAnswerRepo struct {
	items    map[string]*domain.Answer
	accepted string
	deleted  []string
}

func newStubAnswerRepo(as ...*domain.Answer) *stubAnswerRepo {
	r := &stubAnswerRepo{items: make(map[string]*domain.Answer)}
	for _, a := range as {
		r.items[a.ID] = a
	}
	return r
}

func (r *stubAnswerRepo) Create(_ context.Context, a *domain.Answer) (*domain.Answer, error) {
	c := *a
	c.ID = "a-new"
	r.items[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubAnswerRepo) FindByID(_ context.Context, id string) (*domain.Answer, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *stubAnswerRepo) ListByQuestion(_ context.Context, questionID string) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range r.items {
		if a.QuestionID == questionID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubAnswerRepo) Accept(_ context.Context, id string) error {
	r.accepted = id
	return nil
}

func (r *stubAnswerRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type voteKey struct{ user, question string }

type stubVoteRepo struct {
	votes map[voteKey]int
}

func newStubVoteRepo() *stubVoteRepo {
	return &stubVoteRepo{votes: make(map[voteKey]int)}
}

func (r *stubVoteRepo) Create(_ context.Context, v *domain.Vote) error {
	k := voteKey{v.UserID, v.QuestionID}
	if _, ok := r.votes[k]; ok {
		return domain.ErrConflict
	}
	r.votes[k] = v.Value
	return nil
}

func (r *stubVoteRepo) Delete(_ context.Context, userID, questionID string) error {
	k := voteKey{userID, questionID}
	if _, ok := r.votes[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.votes, k)
	return nil
}

type stubTagRepo struct {
	tags []*domain.Tag
}

func (r *stubTagRepo) List(_ context.Context) ([]*domain.Tag, error) {
	return r.tags, nil
}

type stubViewCounter struct {
	counts map[string]int64
	err    error
}

func (v *stubViewCounter) RecordView(_ context.Context, questionID, _ string) (int64, error) {
	if v.err != nil {
		return 0, v.err
	}
	v.counts[questionID]++
	return v.counts[questionID], nil
}

func (v *stubViewCounter) Views(_ context.Context, ids ...string) (map[string]int64, error) {
	if v.err != nil {
		return nil, v.err
	}
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		out[id] = v.counts[id]
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (p *recordingPublisher) Publish(e domain.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) kinds() []domain.ActivityKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ActivityKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}
