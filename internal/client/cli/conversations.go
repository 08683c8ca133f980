package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studysync/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) ListConversations(ctx context.Context, args []string) error {
	if err := a.conversations.List(ctx, !wantsMore(args)); err != nil {
		return err
	}
	items := a.conversations.Items()
	for _, c := range items {
		subject := "-"
		if c.Subject != nil {
			subject = *c.Subject
		}
		fmt.Fprintf(a.out, "%s  %-30s  %-12s  %s\n", c.ID, c.Title, subject, c.UpdatedAt.Local().Format(timeLayout))
	}
	a.printCursor(len(items), a.conversations.Cursor())
	return nil
}

func (a *App) ShowConversation(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	d, err := a.conversations.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if d == nil {
		a.say("ConversationNotFound", nil)
		return nil
	}
	fmt.Fprintf(a.out, "%s  %s\n", d.ID, d.Title)
	a.sayN("ConversationMessages", len(d.Messages), nil)
	return nil
}

func (a *App) NewConversation(ctx context.Context, _ []string) error {
	title, err := a.prompt("PromptTitle")
	if err != nil {
		return err
	}
	subject, err := a.prompt("PromptSubject")
	if err != nil {
		return err
	}

	data := models.NewConversation{Title: title}
	if subject != "" {
		data.Subject = &subject
	}
	c, err := a.conversations.Create(ctx, data)
	if err != nil {
		return err
	}
	a.say("ConversationCreated", map[string]any{"ID": c.ID})
	return nil
}

func (a *App) DeleteConversation(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.conversations.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.say("Deleted", map[string]any{"ID": args[0]})
	return nil
}
