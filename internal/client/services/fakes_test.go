package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/identity"
	"github.com/dmitrijs2005/studysync/internal/client/models"
)

// ---- fake identity provider ----

type fakeProvider struct {
	mu   sync.Mutex
	subs map[int]identity.Listener
	next int
	cur  *models.Principal

	signInErr   error
	signUpErr   error
	interactive error
	tokenErr    error
	token       string

	signOuts     atomic.Int32
	tokenCalls   atomic.Int32
	displayNames []string
	resetEmails  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{subs: map[int]identity.Listener{}, token: "id-token"}
}

func (f *fakeProvider) emit(p *models.Principal) {
	f.mu.Lock()
	f.cur = p
	ls := make([]identity.Listener, 0, len(f.subs))
	for _, l := range f.subs {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(p)
	}
}

func (f *fakeProvider) subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeProvider) SignIn(_ context.Context, email, _ string) (*models.Principal, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	p := &models.Principal{ID: "uid-" + email, Email: email}
	f.emit(p)
	return p, nil
}

func (f *fakeProvider) SignInInteractive(context.Context) (*models.Principal, error) {
	if f.interactive != nil {
		return nil, f.interactive
	}
	p := &models.Principal{ID: "uid-google", Email: "g@example.com"}
	f.emit(p)
	return p, nil
}

func (f *fakeProvider) SignUp(_ context.Context, email, _ string) (*models.Principal, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	p := &models.Principal{ID: "uid-" + email, Email: email}
	f.emit(p)
	return p, nil
}

func (f *fakeProvider) UpdateDisplayName(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.displayNames = append(f.displayNames, name)
	return nil
}

func (f *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEmails = append(f.resetEmails, email)
	return nil
}

func (f *fakeProvider) SignOut() {
	f.signOuts.Add(1)
	f.mu.Lock()
	had := f.cur != nil
	f.mu.Unlock()
	if had {
		f.emit(nil)
	}
}

func (f *fakeProvider) IDToken(context.Context) (string, error) {
	f.tokenCalls.Add(1)
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeProvider) Current() *models.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

func (f *fakeProvider) Subscribe(fn identity.Listener) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeProvider) Restore(context.Context) error {
	f.emit(nil)
	return nil
}

// ---- fake backend ----

type fakeAPI struct {
	calls atomic.Int32

	mu      sync.Mutex
	tokens  []string
	putReqs []string

	me              func(ctx context.Context) (*models.Profile, error)
	completeProfile func(ctx context.Context, d models.ProfileUpdate) (*models.Profile, error)

	listConversations  func(ctx context.Context, p models.PageRequest) (*models.Page[models.Conversation], error)
	createConversation func(ctx context.Context, d models.NewConversation) (*models.Conversation, error)
	getConversation    func(ctx context.Context, id string) (*models.ConversationDetail, error)
	deleteConversation func(ctx context.Context, id string) error

	listProgress    func(ctx context.Context, p models.PageRequest) (*models.Page[models.ProgressEntry], error)
	progressStats   func(ctx context.Context) (*models.ProgressStats, error)
	recommendations func(ctx context.Context, limit int) ([]models.Recommendation, error)
	markUnderstood  func(ctx context.Context, code string, u models.Understanding) (*models.ProgressEntry, error)

	generateExam     func(ctx context.Context, r models.ExamRequest) (*models.ExamRecord, error)
	listExams        func(ctx context.Context, p models.PageRequest) (*models.Page[models.ExamListItem], error)
	examAvailability func(ctx context.Context) (models.ExamAvailability, error)
	deleteExam       func(ctx context.Context, id string) error
	downloadExam     func(ctx context.Context, id string) (*models.ExamDownload, error)
}

var _ client.Client = (*fakeAPI)(nil)

func (f *fakeAPI) record(ctx context.Context) {
	f.calls.Add(1)
	f.mu.Lock()
	f.tokens = append(f.tokens, client.BearerToken(ctx))
	f.mu.Unlock()
}

func (f *fakeAPI) Me(ctx context.Context) (*models.Profile, error) {
	f.record(ctx)
	if f.me == nil {
		return &models.Profile{ID: "p", Role: models.RoleStudent}, nil
	}
	return f.me(ctx)
}

func (f *fakeAPI) CompleteProfile(ctx context.Context, d models.ProfileUpdate) (*models.Profile, error) {
	f.record(ctx)
	return f.completeProfile(ctx, d)
}

func (f *fakeAPI) ListConversations(ctx context.Context, p models.PageRequest) (*models.Page[models.Conversation], error) {
	f.record(ctx)
	return f.listConversations(ctx, p)
}

func (f *fakeAPI) CreateConversation(ctx context.Context, d models.NewConversation) (*models.Conversation, error) {
	f.record(ctx)
	return f.createConversation(ctx, d)
}

func (f *fakeAPI) GetConversation(ctx context.Context, id string) (*models.ConversationDetail, error) {
	f.record(ctx)
	return f.getConversation(ctx, id)
}

func (f *fakeAPI) DeleteConversation(ctx context.Context, id string) error {
	f.record(ctx)
	return f.deleteConversation(ctx, id)
}

func (f *fakeAPI) ListProgress(ctx context.Context, p models.PageRequest) (*models.Page[models.ProgressEntry], error) {
	f.record(ctx)
	return f.listProgress(ctx, p)
}

func (f *fakeAPI) ProgressStats(ctx context.Context) (*models.ProgressStats, error) {
	f.record(ctx)
	return f.progressStats(ctx)
}

func (f *fakeAPI) Recommendations(ctx context.Context, limit int) ([]models.Recommendation, error) {
	f.record(ctx)
	return f.recommendations(ctx, limit)
}

func (f *fakeAPI) MarkUnderstood(ctx context.Context, code string, u models.Understanding) (*models.ProgressEntry, error) {
	f.record(ctx)
	f.mu.Lock()
	f.putReqs = append(f.putReqs, code)
	f.mu.Unlock()
	if f.markUnderstood == nil {
		return nil, nil
	}
	return f.markUnderstood(ctx, code, u)
}

func (f *fakeAPI) GenerateExam(ctx context.Context, r models.ExamRequest) (*models.ExamRecord, error) {
	f.record(ctx)
	return f.generateExam(ctx, r)
}

func (f *fakeAPI) ListExams(ctx context.Context, p models.PageRequest) (*models.Page[models.ExamListItem], error) {
	f.record(ctx)
	return f.listExams(ctx, p)
}

func (f *fakeAPI) ExamAvailability(ctx context.Context) (models.ExamAvailability, error) {
	f.record(ctx)
	return f.examAvailability(ctx)
}

func (f *fakeAPI) DeleteExam(ctx context.Context, id string) error {
	f.record(ctx)
	return f.deleteExam(ctx, id)
}

func (f *fakeAPI) DownloadExam(ctx context.Context, id string) (*models.ExamDownload, error) {
	f.record(ctx)
	return f.downloadExam(ctx, id)
}

func (f *fakeAPI) seenTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *fakeAPI) puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.putReqs...)
}

// ---- token source ----

type staticTokens struct {
	token string
	calls atomic.Int32
}

func (s *staticTokens) Token(context.Context) string {
	s.calls.Add(1)
	return s.token
}
