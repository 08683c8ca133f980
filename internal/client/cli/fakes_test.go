package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/studysync/internal/client/i18n"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/client/services"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/stretchr/testify/require"
)

// ------------ session ------------

type fakeSession struct {
	snap     services.Session
	subs     map[int]func(services.Session)
	next     int
	complete bool

	loginErr    error
	providerErr error
	providerNil bool
	profileErr  error
	completeErr error

	logins   []string
	resets   []string
	updates  []models.ProfileUpdate
	refreshs int
}

func newFakeSession() *fakeSession {
	return &fakeSession{subs: map[int]func(services.Session){}, snap: services.Session{State: services.StateSignedOut}, complete: true}
}

func (f *fakeSession) set(s services.Session) {
	f.snap = s
	for _, fn := range f.subs {
		fn(s)
	}
}

func (f *fakeSession) signIn(email string) {
	f.set(services.Session{
		State:     services.StateProfileReady,
		Principal: &models.Principal{ID: "uid-" + email, Email: email},
		Profile:   &models.Profile{ID: "uid-" + email, Email: email, Role: models.RoleStudent, ProfileComplete: f.complete},
	})
}

func (f *fakeSession) Login(_ context.Context, email, password string) error {
	f.logins = append(f.logins, email+":"+password)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.signIn(email)
	return nil
}

func (f *fakeSession) LoginWithProvider(context.Context) error {
	if f.providerErr != nil {
		return f.providerErr
	}
	if !f.providerNil {
		f.signIn("g@example.com")
	}
	return nil
}

func (f *fakeSession) Register(_ context.Context, email, password, name string) error {
	f.logins = append(f.logins, email+":"+password+":"+name)
	f.signIn(email)
	return nil
}

func (f *fakeSession) Logout() {
	f.set(services.Session{State: services.StateSignedOut})
}

func (f *fakeSession) ResetPassword(_ context.Context, email string) error {
	f.resets = append(f.resets, email)
	return nil
}

func (f *fakeSession) CompleteProfile(_ context.Context, d models.ProfileUpdate) (*models.Profile, error) {
	f.updates = append(f.updates, d)
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	p := *f.snap.Profile
	p.FullName, p.Role, p.Grade, p.ProfileComplete = d.FullName, d.Role, d.Grade, true
	f.snap.Profile = &p
	return &p, nil
}

func (f *fakeSession) RefreshProfile(context.Context) error {
	f.refreshs++
	if f.profileErr != nil {
		return f.profileErr
	}
	if f.snap.Principal != nil {
		f.snap.State = services.StateProfileReady
		f.snap.Profile = &models.Profile{ID: f.snap.Principal.ID, Email: f.snap.Principal.Email, ProfileComplete: true}
	}
	return nil
}

func (f *fakeSession) Snapshot() services.Session { return f.snap }
func (f *fakeSession) ProfileError() error        { return f.profileErr }
func (f *fakeSession) NeedsProfileCompletion() bool {
	return f.snap.State == services.StateProfileReady && f.snap.Profile != nil && !f.snap.Profile.ProfileComplete
}

func (f *fakeSession) Subscribe(fn func(services.Session)) func() {
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() { delete(f.subs, id) }
}

// ------------ collections ------------

type fakeConversations struct {
	items   []models.Conversation
	cursor  models.Cursor
	resets  []bool
	listErr error
	created []models.NewConversation
	deleted []string
	detail  map[string]*models.ConversationDetail
	cleared int
}

func (f *fakeConversations) List(_ context.Context, reset bool) error {
	f.resets = append(f.resets, reset)
	return f.listErr
}
func (f *fakeConversations) Get(_ context.Context, id string) (*models.ConversationDetail, error) {
	return f.detail[id], nil
}
func (f *fakeConversations) Create(_ context.Context, d models.NewConversation) (*models.Conversation, error) {
	f.created = append(f.created, d)
	return &models.Conversation{ID: "c-new", Title: d.Title}, nil
}
func (f *fakeConversations) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	for _, c := range f.items {
		if c.ID == id {
			return nil
		}
	}
	return common.ErrNotFound
}
func (f *fakeConversations) Items() []models.Conversation { return f.items }
func (f *fakeConversations) Cursor() models.Cursor        { return f.cursor }
func (f *fakeConversations) Clear()                       { f.cleared++; f.items = nil }

type statusChange struct {
	code   string
	status models.ProgressStatus
	u      models.Understanding
}

type fakeProgress struct {
	items     []models.ProgressEntry
	cursor    models.Cursor
	stats     *models.ProgressStats
	statsErr  error
	recs      []models.Recommendation
	recLimit  int
	changes   []statusChange
	mutateErr error
	cleared   int
}

func (f *fakeProgress) List(context.Context, bool) error { return nil }
func (f *fakeProgress) Stats(context.Context) (*models.ProgressStats, error) {
	return f.stats, f.statsErr
}
func (f *fakeProgress) Recommendations(_ context.Context, limit int) ([]models.Recommendation, error) {
	f.recLimit = limit
	return f.recs, nil
}
func (f *fakeProgress) MutateStatus(_ context.Context, code string, st models.ProgressStatus, u models.Understanding) error {
	f.changes = append(f.changes, statusChange{code, st, u})
	return f.mutateErr
}
func (f *fakeProgress) CountByStatus() map[models.ProgressStatus]int {
	out := map[models.ProgressStatus]int{}
	for _, e := range f.items {
		out[e.Status]++
	}
	return out
}
func (f *fakeProgress) Items() []models.ProgressEntry { return f.items }
func (f *fakeProgress) Cursor() models.Cursor         { return f.cursor }
func (f *fakeProgress) Clear()                        { f.cleared++; f.items = nil }

type fakeExams struct {
	items     []models.ExamListItem
	cursor    models.Cursor
	listErr   error
	requests  []models.ExamRequest
	genErr    error
	record    *models.ExamRecord
	downloads []*models.Download
	deleted   []string
	avail     models.ExamAvailability
	cleared   int
}

func (f *fakeExams) List(context.Context, bool) error { return f.listErr }
func (f *fakeExams) GenerateExam(_ context.Context, r models.ExamRequest) (*models.ExamRecord, error) {
	f.requests = append(f.requests, r)
	if f.genErr != nil {
		return nil, f.genErr
	}
	return f.record, nil
}
func (f *fakeExams) Download(_ context.Context, id string) (*models.Download, error) {
	d := &models.Download{ExamID: id, Location: "/tmp/" + id + ".pdf", Destination: "file"}
	f.downloads = append(f.downloads, d)
	return d, nil
}
func (f *fakeExams) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeExams) Downloads(context.Context, int) ([]*models.Download, error) {
	return f.downloads, nil
}
func (f *fakeExams) ForgetDownloads(_ context.Context, id string) (int64, error) {
	var kept []*models.Download
	for _, d := range f.downloads {
		if d.ExamID != id {
			kept = append(kept, d)
		}
	}
	n := int64(len(f.downloads) - len(kept))
	f.downloads = kept
	return n, nil
}
func (f *fakeExams) Availability(context.Context) (models.ExamAvailability, error) {
	return f.avail, nil
}
func (f *fakeExams) Items() []models.ExamListItem { return f.items }
func (f *fakeExams) Cursor() models.Cursor        { return f.cursor }
func (f *fakeExams) Clear()                       { f.cleared++; f.items = nil }

// ------------ app ------------

type testApp struct {
	*App
	session *fakeSession
	convs   *fakeConversations
	prog    *fakeProgress
	exams   *fakeExams
	out     *bytes.Buffer
}

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func translator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New("en", nil)
	require.NoError(t, err)
	return tr
}

// newTestApp builds an App over fakes; input lines feed prompts and the
// password reader.
func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()

	origPw := getPassword
	getPassword = func(r *bufio.Reader, _ string, _ io.Writer) ([]byte, error) {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		return []byte(strings.TrimSpace(line)), nil
	}
	t.Cleanup(func() { getPassword = origPw })

	ta := &testApp{
		session: newFakeSession(),
		convs:   &fakeConversations{detail: map[string]*models.ConversationDetail{}},
		prog:    &fakeProgress{},
		exams:   &fakeExams{},
		out:     &bytes.Buffer{},
	}
	ta.App = NewApp(Deps{
		Session:       ta.session,
		Conversations: ta.convs,
		Progress:      ta.prog,
		Exams:         ta.exams,
		Translator:    translator(t),
		In:            readerFromLines(input...),
		Out:           ta.out,
	})
	t.Cleanup(ta.Close)
	return ta
}
