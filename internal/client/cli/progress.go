package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
)

const defaultRecommendations = 5

func (a *App) ListProgress(ctx context.Context, args []string) error {
	if err := a.progress.List(ctx, !wantsMore(args)); err != nil {
		return err
	}
	items := a.progress.Items()
	for _, e := range items {
		fmt.Fprintf(a.out, "%-14s %-12s %3.0f%%  %s\n", e.KazanimCode, e.Status, e.Confidence*100, e.Description)
	}
	a.printCursor(len(items), a.progress.Cursor())
	a.printCounts()
	return nil
}

func (a *App) printCounts() {
	c := a.progress.CountByStatus()
	a.say("ProgressCounts", map[string]any{
		"Tracked":    c[models.StatusTracked],
		"InProgress": c[models.StatusInProgress],
		"Understood": c[models.StatusUnderstood],
	})
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	st, err := a.progress.Stats(ctx)
	if err != nil {
		return err
	}
	a.printStats(st)
	return nil
}

func (a *App) printStats(st *models.ProgressStats) {
	a.say("StatsLine", map[string]any{
		"InProgress": st.InProgressCount,
		"Week":       st.ThisWeekUnderstood,
		"Streak":     st.StreakDays,
	})
}

func (a *App) Recommend(ctx context.Context, args []string) error {
	limit := defaultRecommendations
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return errUsage
		}
		limit = n
	}
	recs, err := a.progress.Recommendations(ctx, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.say("NoItems", nil)
	}
	for _, r := range recs {
		fmt.Fprintf(a.out, "%-14s %s", r.KazanimCode, r.Description)
		if r.Reason != "" {
			fmt.Fprintf(a.out, " (%s)", r.Reason)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

// StartKazanim moves a kazanim to in_progress. The change is local.
func (a *App) StartKazanim(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.progress.MutateStatus(ctx, args[0], models.StatusInProgress, models.Understanding{}); err != nil {
		return err
	}
	a.say("MarkedInProgress", map[string]any{"Code": args[0]})
	return nil
}

// Understood marks a kazanim as understood, optionally with a self-reported
// confidence.
func (a *App) Understood(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u := models.Understanding{Signals: []string{"self_reported"}}
	pct, ok, err := GetOptionalInt(a.reader, a.tr.T("PromptConfidence"), a.out)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if ok {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: confidence must be between 0 and 100", common.ErrValidation)
		}
		u.Confidence = float64(pct) / 100
	}

	if err := a.progress.MutateStatus(ctx, args[0], models.StatusUnderstood, u); err != nil {
		return err
	}
	a.say("MarkedUnderstood", map[string]any{"Code": args[0]})
	return nil
}
