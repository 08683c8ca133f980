package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
)

const recentDownloads = 20

func (a *App) ListExams(ctx context.Context, args []string) error {
	if err := a.exams.List(ctx, !wantsMore(args)); err != nil {
		return err
	}
	items := a.exams.Items()
	for _, e := range items {
		fmt.Fprintf(a.out, "%s  %-30s  %3d  %s\n", e.ExamID, e.Title, e.QuestionCount, e.CreatedAt.Local().Format(timeLayout))
	}
	a.printCursor(len(items), a.exams.Cursor())
	return nil
}

// Availability prints the server-computed availability payload as sorted
// key=value lines.
func (a *App) Availability(ctx context.Context, _ []string) error {
	av, err := a.exams.Availability(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(av))
	for k := range av {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%s=%v\n", k, av[k])
	}
	return nil
}

func (a *App) currentDifficulty() models.Percentages {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.difficulty
}

func (a *App) printDifficulty(p models.Percentages) {
	a.say("Distribution", map[string]any{
		"Kolay": p[models.Kolay],
		"Orta":  p[models.Orta],
		"Zor":   p[models.Zor],
	})
}

// EditDifficulty adjusts the difficulty mix used by generate. Each edit sets
// one axis and rebalances the other two so the total stays at 100.
func (a *App) EditDifficulty(_ context.Context, _ []string) error {
	p := a.currentDifficulty()
	for {
		a.printDifficulty(p)
		line, err := a.prompt("PromptDifficulty")
		if err != nil || line == "" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			a.say("Usage", map[string]any{"Usage": "<kolay|orta|zor> <0-100>"})
			continue
		}
		axis, err := models.ParseAxis(fields[0])
		if err != nil {
			a.report(fmt.Errorf("%w: %v", common.ErrValidation, err))
			continue
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			a.say("Usage", map[string]any{"Usage": "<kolay|orta|zor> <0-100>"})
			continue
		}
		p = p.Set(axis, v)
	}

	a.mu.Lock()
	a.difficulty = p
	a.mu.Unlock()
	return nil
}

// Generate asks for the exam parameters and requests an exam. Empty answers
// fall back to the request defaults.
func (a *App) Generate(ctx context.Context, _ []string) error {
	title, err := a.prompt("PromptTitle")
	if err != nil {
		return err
	}
	count, _, err := GetOptionalInt(a.reader, a.tr.T("PromptQuestionCount"), a.out)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	codes, err := a.prompt("PromptKazanims")
	if err != nil {
		return err
	}

	p := a.currentDifficulty()
	a.printDifficulty(p)
	rec, err := a.exams.GenerateExam(ctx, models.ExamRequest{
		Title:                  title,
		QuestionCount:          count,
		DifficultyDistribution: p.Distribution(),
		KazanimCodes:           strings.Fields(codes),
	})
	if err != nil {
		return err
	}

	a.say("ExamGenerated", map[string]any{"ID": rec.ExamID, "Count": rec.QuestionCount})
	if rec.Warning != "" {
		a.say("ExamWarning", map[string]any{"Warning": rec.Warning})
	}
	if n := len(rec.SkippedKazanims); n > 0 {
		a.sayN("ExamSkipped", n, nil)
	}
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	d, err := a.exams.Download(ctx, args[0])
	if err != nil {
		return err
	}
	a.say("ExamSaved", map[string]any{"Location": d.Location})
	return nil
}

func (a *App) DeleteExam(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.exams.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.say("Deleted", map[string]any{"ID": args[0]})
	return nil
}

// ListDownloads prints the local ledger of saved exams, newest first.
func (a *App) ListDownloads(ctx context.Context, _ []string) error {
	ds, err := a.exams.Downloads(ctx, recentDownloads)
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		a.say("NoItems", nil)
		return nil
	}
	for _, d := range ds {
		fmt.Fprintf(a.out, "%s  %s  %-5s %s\n", d.SavedAt.Local().Format(timeLayout), d.ExamID, d.Destination, d.Location)
	}
	return nil
}

// ForgetDownloads removes one exam from the local ledger.
func (a *App) ForgetDownloads(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := a.exams.ForgetDownloads(ctx, args[0])
	if err != nil {
		return err
	}
	a.sayN("DownloadsForgotten", int(n), map[string]any{"ID": args[0]})
	return nil
}
