package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/studysync/internal/client/i18n"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/client/services"
	"github.com/dmitrijs2005/studysync/internal/logging"
)

// Session is the part of services.AuthService the CLI uses.
type Session interface {
	Login(ctx context.Context, email, password string) error
	LoginWithProvider(ctx context.Context) error
	Register(ctx context.Context, email, password, displayName string) error
	Logout()
	ResetPassword(ctx context.Context, email string) error
	CompleteProfile(ctx context.Context, data models.ProfileUpdate) (*models.Profile, error)
	RefreshProfile(ctx context.Context) error
	Snapshot() services.Session
	ProfileError() error
	NeedsProfileCompletion() bool
	Subscribe(fn func(services.Session)) func()
}

// Conversations is the part of services.ConversationService the CLI uses.
type Conversations interface {
	List(ctx context.Context, reset bool) error
	Get(ctx context.Context, id string) (*models.ConversationDetail, error)
	Create(ctx context.Context, data models.NewConversation) (*models.Conversation, error)
	Delete(ctx context.Context, id string) error
	Items() []models.Conversation
	Cursor() models.Cursor
	Clear()
}

// Progress is the part of services.ProgressService the CLI uses.
type Progress interface {
	List(ctx context.Context, reset bool) error
	Stats(ctx context.Context) (*models.ProgressStats, error)
	Recommendations(ctx context.Context, limit int) ([]models.Recommendation, error)
	MutateStatus(ctx context.Context, code string, status models.ProgressStatus, u models.Understanding) error
	CountByStatus() map[models.ProgressStatus]int
	Items() []models.ProgressEntry
	Cursor() models.Cursor
	Clear()
}

// Exams is the part of services.ExamService the CLI uses.
type Exams interface {
	List(ctx context.Context, reset bool) error
	GenerateExam(ctx context.Context, req models.ExamRequest) (*models.ExamRecord, error)
	Download(ctx context.Context, id string) (*models.Download, error)
	Delete(ctx context.Context, id string) error
	Downloads(ctx context.Context, limit int) ([]*models.Download, error)
	ForgetDownloads(ctx context.Context, examID string) (int64, error)
	Availability(ctx context.Context) (models.ExamAvailability, error)
	Items() []models.ExamListItem
	Cursor() models.Cursor
	Clear()
}

// Deps are the collaborators of an App. In and Out default to stdin and
// stdout; Logger defaults to a no-op logger.
type Deps struct {
	Session       Session
	Conversations Conversations
	Progress      Progress
	Exams         Exams
	Translator    *i18n.Translator
	Logger        logging.Logger
	In            *bufio.Reader
	Out           io.Writer
}

type App struct {
	session       Session
	conversations Conversations
	progress      Progress
	exams         Exams
	tr            *i18n.Translator
	log           logging.Logger
	reader        *bufio.Reader
	out           io.Writer

	commands    map[string]command
	unsubscribe func()

	mu         sync.Mutex
	owner      string
	difficulty models.Percentages
}

func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = bufio.NewReader(os.Stdin)
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}

	a := &App{
		session:       d.Session,
		conversations: d.Conversations,
		progress:      d.Progress,
		exams:         d.Exams,
		tr:            d.Translator,
		log:           d.Logger,
		reader:        d.In,
		out:           d.Out,
		difficulty:    models.DefaultPercentages,
	}
	a.commands = a.buildCommands()
	a.unsubscribe = d.Session.Subscribe(a.onSession)
	return a
}

// onSession clears every cached collection when the session ends or
// changes hands.
func (a *App) onSession(s services.Session) {
	owner := ""
	if s.Principal != nil {
		owner = s.Principal.ID
	}

	a.mu.Lock()
	changed := owner != a.owner
	a.owner = owner
	a.mu.Unlock()

	if changed || s.State == services.StateSignedOut {
		a.conversations.Clear()
		a.progress.Clear()
		a.exams.Clear()
		a.log.Debug(context.Background(), "caches cleared", "state", s.State.String())
	}
}

// Close releases the session subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Run prints the welcome line and serves commands until the input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.say("Welcome", nil)
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) buildCommands() map[string]command {
	return map[string]command{
		"register":       {usage: "register", run: a.Register},
		"login":          {usage: "login", run: a.Login},
		"login-google":   {usage: "login-google", run: a.LoginWithProvider},
		"reset-password": {usage: "reset-password [email]", run: a.ResetPassword},
		"logout":         {usage: "logout", signedIn: true, run: a.Logout},

		"profile":          {usage: "profile", signedIn: true, run: a.ShowProfile},
		"complete-profile": {usage: "complete-profile", signedIn: true, run: a.CompleteProfile},

		"conversations":       {usage: "conversations [more]", signedIn: true, profileReady: true, run: a.ListConversations},
		"conversation":        {usage: "conversation <id>", signedIn: true, profileReady: true, run: a.ShowConversation},
		"new-conversation":    {usage: "new-conversation", signedIn: true, profileReady: true, run: a.NewConversation},
		"delete-conversation": {usage: "delete-conversation <id>", signedIn: true, profileReady: true, run: a.DeleteConversation},

		"progress":   {usage: "progress [more]", signedIn: true, profileReady: true, run: a.ListProgress},
		"stats":      {usage: "stats", signedIn: true, profileReady: true, run: a.Stats},
		"recommend":  {usage: "recommend [limit]", signedIn: true, profileReady: true, run: a.Recommend},
		"start":      {usage: "start <code>", signedIn: true, profileReady: true, run: a.StartKazanim},
		"understood": {usage: "understood <code>", signedIn: true, profileReady: true, run: a.Understood},

		"exams":            {usage: "exams [more]", signedIn: true, profileReady: true, run: a.ListExams},
		"availability":     {usage: "availability", signedIn: true, profileReady: true, run: a.Availability},
		"difficulty":       {usage: "difficulty", signedIn: true, profileReady: true, run: a.EditDifficulty},
		"generate":         {usage: "generate", signedIn: true, profileReady: true, run: a.Generate},
		"download":         {usage: "download <id>", signedIn: true, profileReady: true, run: a.Download},
		"delete-exam":      {usage: "delete-exam <id>", signedIn: true, profileReady: true, run: a.DeleteExam},
		"downloads":        {usage: "downloads", signedIn: true, profileReady: true, run: a.ListDownloads},
		"forget-downloads": {usage: "forget-downloads <id>", signedIn: true, profileReady: true, run: a.ForgetDownloads},

		"dashboard": {usage: "dashboard", signedIn: true, profileReady: true, run: a.Dashboard},
	}
}

func (a *App) lookup(name string) (command, bool) {
	c, ok := a.commands[name]
	return c, ok
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Principal != nil
}

func (a *App) profileReady() bool {
	if a.session.Snapshot().State == services.StateProfileReady && !a.session.NeedsProfileCompletion() {
		return true
	}
	a.profileGate()
	return false
}

func (a *App) help() {
	if a.isLoggedIn() {
		a.say("HelpSignedIn", nil)
	} else {
		a.say("HelpSignedOut", nil)
	}
}

func (a *App) say(id string, data map[string]any) {
	fmt.Fprintln(a.out, a.tr.Td(id, data))
}

func (a *App) sayN(id string, n int, data map[string]any) {
	fmt.Fprintln(a.out, a.tr.Tp(id, n, data))
}

func (a *App) report(err error) {
	a.log.Debug(context.Background(), "command failed", "error", err)
	fmt.Fprintln(a.out, describeError(a.tr, err))
}

// status is shown in the prompt: the signed-in e-mail, or nothing.
func (a *App) status() string {
	s := a.session.Snapshot()
	if s.Principal == nil {
		return ""
	}
	name := s.Principal.Email
	if name == "" {
		name = s.Principal.ID
	}
	return "(" + name + ")"
}

// printCursor prints the loaded/total summary of a collection.
func (a *App) printCursor(n int, c models.Cursor) {
	if n == 0 {
		a.say("NoItems", nil)
		return
	}
	a.sayN("Items", n, map[string]any{"Total": c.Total})
	if c.HasMore {
		a.say("MoreAvailable", nil)
	}
}

// wantsMore reports whether args ask for the next page.
func wantsMore(args []string) bool {
	return len(args) > 0 && args[0] == "more"
}
