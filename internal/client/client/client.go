package client

import (
	"context"

	"github.com/dmitrijs2005/studysync/internal/client/models"
)

// Client is the backend API used by the services. Every method expects the
// bearer token to be attached to ctx with WithBearerToken.
type Client interface {
	Me(ctx context.Context) (*models.Profile, error)
	CompleteProfile(ctx context.Context, data models.ProfileUpdate) (*models.Profile, error)

	ListConversations(ctx context.Context, page models.PageRequest) (*models.Page[models.Conversation], error)
	CreateConversation(ctx context.Context, data models.NewConversation) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.ConversationDetail, error)
	DeleteConversation(ctx context.Context, id string) error

	ListProgress(ctx context.Context, page models.PageRequest) (*models.Page[models.ProgressEntry], error)
	ProgressStats(ctx context.Context) (*models.ProgressStats, error)
	Recommendations(ctx context.Context, limit int) ([]models.Recommendation, error)
	MarkUnderstood(ctx context.Context, code string, u models.Understanding) (*models.ProgressEntry, error)

	GenerateExam(ctx context.Context, req models.ExamRequest) (*models.ExamRecord, error)
	ListExams(ctx context.Context, page models.PageRequest) (*models.Page[models.ExamListItem], error)
	ExamAvailability(ctx context.Context) (models.ExamAvailability, error)
	DeleteExam(ctx context.Context, id string) error
	DownloadExam(ctx context.Context, id string) (*models.ExamDownload, error)
}

type bearerKey struct{}

// WithBearerToken returns a copy of ctx carrying token for the next backend
// call. An empty token removes any previously attached one.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerToken returns the token attached to ctx, if any.
func BearerToken(ctx context.Context) string {
	tok, _ := ctx.Value(bearerKey{}).(string)
	return tok
}
