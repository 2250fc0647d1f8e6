package store

import (
	"context"

	"github.com/mobilien/mobi-agent/pkg/types"
)

type ChatSessionStore interface {
	// Create inserts the session, ignoring a conflict on the id so that
	// concurrent first messages of the same conversation stay idempotent.
	Create(ctx context.Context, data types.ChatSession) error
	Get(ctx context.Context, sessionID string) (*types.ChatSession, error)
	UpdateAccessTime(ctx context.Context, sessionID string) error
	Total(ctx context.Context) (int64, error)
}

type ChatMessageStore interface {
	Create(ctx context.Context, data *types.ChatMessage) error
	// ListBySession returns at most limit of the newest messages,
	// re-ordered ascending by creation time.
	ListBySession(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error)
	TotalBySession(ctx context.Context, sessionID string) (int64, error)
}

type ContextDataStore interface {
	Get(ctx context.Context, category, keyName string) (*types.ContextData, error)
	List(ctx context.Context, category string) ([]types.ContextData, error)
}

type NewsletterStore interface {
	// Upsert inserts by email or refreshes the existing row, returning
	// the subscription id.
	Upsert(ctx context.Context, data types.NewsletterSubscription) (int64, error)
}

type ContactStore interface {
	Create(ctx context.Context, data types.ContactRequest) error
}
