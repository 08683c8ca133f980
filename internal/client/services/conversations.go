package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/dmitrijs2005/studysync/internal/logging"
)

// ConversationService caches the user's conversations, newest first.
type ConversationService struct {
	api  client.Client
	coll *collection[models.Conversation]
	log  logging.Logger
}

func NewConversationService(api client.Client, tokens TokenSource, pageSize int, log logging.Logger) *ConversationService {
	if log == nil {
		log = logging.Nop()
	}
	return &ConversationService{
		api:  api,
		coll: newCollection(tokens, pageSize, func(c models.Conversation) string { return c.ID }),
		log:  log.With("resource", "conversations"),
	}
}

// List loads the first page when reset is set, the next page otherwise.
func (s *ConversationService) List(ctx context.Context, reset bool) error {
	err := s.coll.list(ctx, reset, s.api.ListConversations)
	if err != nil {
		s.log.Warn(ctx, "list failed", "reset", reset, "error", err)
	}
	return err
}

// LoadMore appends the next page if there is one.
func (s *ConversationService) LoadMore(ctx context.Context) error {
	return s.List(ctx, false)
}

// Get fetches a conversation with its messages. A missing conversation
// yields (nil, nil).
func (s *ConversationService) Get(ctx context.Context, id string) (*models.ConversationDetail, error) {
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, err
	}
	d, err := s.api.GetConversation(actx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	return d, nil
}

// Create starts a conversation. It is added to the cache only after the
// backend confirms it.
func (s *ConversationService) Create(ctx context.Context, data models.NewConversation) (*models.Conversation, error) {
	actx, err := authorize(ctx, s.coll.tokens)
	if err != nil {
		return nil, s.coll.fail(err)
	}
	conv, err := s.api.CreateConversation(actx, data)
	if err != nil {
		return nil, s.coll.fail(fmt.Errorf("create conversation: %w", err))
	}
	s.coll.insert(*conv)
	return conv, nil
}

// Delete removes the conversation from the cache and then from the backend.
// The cache is not restored if the request fails.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	err := s.coll.deleteOptimistic(ctx, id, s.api.DeleteConversation)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "delete failed, cache keeps the removal", "id", id, "error", err)
	}
	return err
}

func (s *ConversationService) Items() []models.Conversation { return s.coll.snapshot() }
func (s *ConversationService) Cursor() models.Cursor        { return s.coll.getCursor() }
func (s *ConversationService) Loading() bool                { return s.coll.isLoading() }
func (s *ConversationService) Err() error                   { return s.coll.err() }
func (s *ConversationService) Len() int                     { return s.coll.length() }

// Clear forgets everything cached, e.g. after sign-out.
func (s *ConversationService) Clear() { s.coll.clear() }
