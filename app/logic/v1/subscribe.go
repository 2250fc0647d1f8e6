package v1

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/app/store"
	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/i18n"
	"github.com/mobilien/mobi-agent/pkg/types"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type NewsletterLogic struct {
	ctx   context.Context
	store store.NewsletterStore
}

func NewNewsletterLogic(ctx context.Context, core *core.Core) *NewsletterLogic {
	return &NewsletterLogic{
		ctx:   ctx,
		store: core.Store().NewsletterStore(),
	}
}

// Subscribe registers an email address, idempotently. Resubscribing
// refreshes the source and request metadata instead of failing.
func (l *NewsletterLogic) Subscribe(email, source, ip, userAgent string) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(normalized) {
		return 0, errors.New("NewsletterLogic.Subscribe.validate", i18n.ERROR_INVALID_EMAIL, nil).Code(http.StatusBadRequest)
	}

	id, err := l.store.Upsert(l.ctx, types.NewsletterSubscription{
		Email:     normalized,
		Source:    source,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	if err != nil {
		return 0, errors.New("NewsletterLogic.Subscribe.Upsert", i18n.ERROR_INTERNAL, err)
	}
	return id, nil
}

type ContactLogic struct {
	ctx   context.Context
	store store.ContactStore
}

func NewContactLogic(ctx context.Context, core *core.Core) *ContactLogic {
	return &ContactLogic{
		ctx:   ctx,
		store: core.Store().ContactStore(),
	}
}

func (l *ContactLogic) SubmitContact(name, email, message, ip, userAgent string) error {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	normalized := strings.ToLower(strings.TrimSpace(email))

	if name == "" || message == "" {
		return errors.New("ContactLogic.SubmitContact.validate", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if !emailRegex.MatchString(normalized) {
		return errors.New("ContactLogic.SubmitContact.email", i18n.ERROR_INVALID_EMAIL, nil).Code(http.StatusBadRequest)
	}

	if err := l.store.Create(l.ctx, types.ContactRequest{
		Name:      name,
		Email:     normalized,
		Message:   message,
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		return errors.New("ContactLogic.SubmitContact.Create", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
