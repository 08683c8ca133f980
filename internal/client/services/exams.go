package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/client/repositories/downloads"
	"github.com/dmitrijs2005/studysync/internal/client/storage"
	"github.com/dmitrijs2005/studysync/internal/logging"
	"github.com/google/uuid"
)

// ExamService caches the generated-exam list and keeps the most recently
// generated exam in a slot of its own.
type ExamService struct {
	api    client.Client
	coll   *collection[models.ExamListItem]
	saver  storage.Saver
	ledger downloads.Repository
	log    logging.Logger
	now    func() time.Time

	mu           sync.Mutex
	last         *models.ExamRecord
	availability models.ExamAvailability
}

// NewExamService builds the service. saver and ledger may be nil; Download
// then fails and nothing is recorded, respectively.
func NewExamService(api client.Client, tokens TokenSource, pageSize int, saver storage.Saver, ledger downloads.Repository, log logging.Logger) *ExamService {
	if log == nil {
		log = logging.Nop()
	}
	return &ExamService{
		api:    api,
		coll:   newCollection(tokens, pageSize, func(e models.ExamListItem) string { return e.ExamID }),
		saver:  saver,
		ledger: ledger,
		log:    log.With("resource", "exams"),
		now:    time.Now,
	}
}

func (s *ExamService) List(ctx context.Context, reset bool) error {
	err := s.coll.list(ctx, reset, s.api.ListExams)
	if err != nil {
		s.log.Warn(ctx, "list failed", "reset", reset, "error", err)
	}
	return err
}

func (s *ExamService) LoadMore(ctx context.Context) error {
	return s.List(ctx, false)
}

// GenerateExam fills in defaults for omitted fields and asks the backend to
// build an exam. The result goes to LastGenerated only; List must be called
// to see it in the cached list. On failure LastGenerated is unchanged and
// the error is also kept in the error slot.
func (s *ExamService) GenerateExam(ctx context.Context, req models.ExamRequest) (*models.ExamRecord, error) {
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, s.coll.fail(err)
	}

	req = req.WithDefaults()
	rec, err := s.api.GenerateExam(actx, req)
	if err != nil {
		s.log.Warn(ctx, "generate failed", "error", err)
		return nil, s.coll.fail(fmt.Errorf("generate exam: %w", err))
	}
	if rec.Title == "" {
		rec.Title = req.Title
	}

	s.mu.Lock()
	s.last = rec
	s.mu.Unlock()

	if rec.Warning != "" {
		s.log.Info(ctx, "exam generated with warning", "exam", rec.ExamID, "warning", rec.Warning, "skipped", len(rec.SkippedKazanims))
	}

	out := *rec
	return &out, nil
}

// LastGenerated returns the most recently generated exam, or nil.
func (s *ExamService) LastGenerated() *models.ExamRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	out := *s.last
	return &out
}

// Delete removes the exam from the cache and then from the backend. The
// cache is not restored if the request fails.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	return s.coll.deleteOptimistic(ctx, id, s.api.DeleteExam)
}

// Download fetches the exam document, saves it through the saver and records
// it in the ledger. A failure is returned and kept in the error slot; it
// never touches LastGenerated.
func (s *ExamService) Download(ctx context.Context, id string) (*models.Download, error) {
	if s.saver == nil {
		return nil, s.coll.fail(fmt.Errorf("download exam %s: no saver configured", id))
	}
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, s.coll.fail(err)
	}

	doc, err := s.api.DownloadExam(actx, id)
	if err != nil {
		return nil, s.coll.fail(fmt.Errorf("download exam %s: %w", id, err))
	}

	loc, err := s.saver.Save(ctx, doc.FileName, doc.ContentType, doc.Data)
	if err != nil {
		return nil, s.coll.fail(fmt.Errorf("save exam %s: %w", id, err))
	}

	d := &models.Download{
		ID:          uuid.NewString(),
		ExamID:      id,
		FileName:    doc.FileName,
		Destination: s.saver.Kind(),
		Location:    loc,
		Size:        int64(len(doc.Data)),
		ContentType: doc.ContentType,
		SavedAt:     s.now(),
	}
	if s.ledger != nil {
		if err := s.ledger.Record(ctx, d); err != nil {
			s.log.Warn(ctx, "download saved but not recorded", "exam", id, "location", loc, "error", err)
		}
	}
	s.log.Info(ctx, "exam saved", "exam", id, "location", loc, "bytes", d.Size)
	return d, nil
}

// Downloads lists recorded downloads, newest first.
func (s *ExamService) Downloads(ctx context.Context, limit int) ([]*models.Download, error) {
	if s.ledger == nil {
		return nil, nil
	}
	return s.ledger.List(ctx, limit)
}

// ForgetDownloads drops the ledger records of one exam. Saved files stay
// where they are.
func (s *ExamService) ForgetDownloads(ctx context.Context, examID string) (int64, error) {
	if s.ledger == nil {
		return 0, nil
	}
	n, err := s.ledger.ForgetExam(ctx, examID)
	if err != nil {
		return 0, fmt.Errorf("forget downloads of %s: %w", examID, err)
	}
	return n, nil
}

// Availability fetches and caches exams/stats/available.
func (s *ExamService) Availability(ctx context.Context) (models.ExamAvailability, error) {
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, s.coll.fail(err)
	}
	a, err := s.api.ExamAvailability(actx)
	if err != nil {
		return nil, s.coll.fail(fmt.Errorf("exam availability: %w", err))
	}

	s.mu.Lock()
	s.availability = a
	s.mu.Unlock()
	return a, nil
}

// CachedAvailability returns the last fetched availability payload.
func (s *ExamService) CachedAvailability() models.ExamAvailability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availability
}

func (s *ExamService) Items() []models.ExamListItem { return s.coll.snapshot() }
func (s *ExamService) Cursor() models.Cursor        { return s.coll.getCursor() }
func (s *ExamService) Loading() bool                { return s.coll.isLoading() }
func (s *ExamService) Err() error                   { return s.coll.err() }
func (s *ExamService) Len() int                     { return s.coll.length() }

// Clear forgets the cached list, the last generated exam and availability.
func (s *ExamService) Clear() {
	s.coll.clear()
	s.mu.Lock()
	s.last, s.availability = nil, nil
	s.mu.Unlock()
}
