package cli

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/studysync/internal/client/models"
)

// Dashboard reloads the three collections and the progress stats
// concurrently, then prints a short summary of each. A failing section is
// reported without hiding the others, so the group is not cancelled on the
// first error.
func (a *App) Dashboard(ctx context.Context, _ []string) error {
	var (
		convErr, progErr, statsErr, examErr error
		stats                               *models.ProgressStats
	)

	var g errgroup.Group
	g.Go(func() error {
		convErr = a.conversations.List(ctx, true)
		return convErr
	})
	g.Go(func() error {
		progErr = a.progress.List(ctx, true)
		return progErr
	})
	g.Go(func() error {
		stats, statsErr = a.progress.Stats(ctx)
		return statsErr
	})
	g.Go(func() error {
		examErr = a.exams.List(ctx, true)
		return examErr
	})
	if err := g.Wait(); err != nil {
		a.log.Debug(ctx, "dashboard refresh incomplete", "error", err)
	}

	a.say("DashboardHeader", nil)

	a.say("DashboardConversations", nil)
	if convErr != nil {
		a.report(convErr)
	} else {
		a.printCursor(len(a.conversations.Items()), a.conversations.Cursor())
	}

	a.say("DashboardProgress", nil)
	if progErr != nil {
		a.report(progErr)
	} else {
		a.printCounts()
	}
	if statsErr != nil {
		a.report(statsErr)
	} else {
		a.printStats(stats)
	}

	a.say("DashboardExams", nil)
	if examErr != nil {
		a.report(examErr)
	} else {
		a.printCursor(len(a.exams.Items()), a.exams.Cursor())
	}
	return nil
}
