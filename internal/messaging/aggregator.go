package messaging

import (
	"context"

	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/models"
	"marketzone/backend/internal/storage"

	"golang.org/x/sync/errgroup"
)

const unreadConcurrency = 4

// Aggregator builds a user's conversation list from raw messages.
// Nothing is cached; every call reads the store.
type Aggregator struct {
	store    storage.MessageStore
	users    storage.UserDirectory
	products storage.ProductDirectory
}

func NewAggregator(store storage.MessageStore, users storage.UserDirectory, products storage.ProductDirectory) *Aggregator {
	return &Aggregator{store: store, users: users, products: products}
}

// GetConversations returns one entry per counterpart, newest activity first.
func (a *Aggregator) GetConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	msgs, err := a.store.ListAllInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}
	convs := make([]models.Conversation, 0)
	if len(msgs) == 0 {
		return convs, nil
	}

	profiles, err := a.users.GetUsers(ctx, participantIDs(msgs))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, m := range msgs {
		_, senderOK := profiles[m.SenderID]
		_, receiverOK := profiles[m.ReceiverID]
		if !senderOK || !receiverOK {
			logger.Warn().Uint("message_id", m.ID).Msg("skipping message with unknown participant")
			continue
		}

		other := m.Counterpart(userID)
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}

		otherUser := profiles[other]
		convs = append(convs, models.Conversation{
			ID:           models.ConversationKey(userID, other),
			Participants: []string{userID, other},
			OtherUser:    otherUser.Snippet(),
			LastMessage:  m,
			UpdatedAt:    m.CreatedAt,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(unreadConcurrency)
	for i := range convs {
		conv := &convs[i]
		g.Go(func() error {
			n, err := a.store.CountUnreadFrom(gctx, conv.OtherUser.ID, userID)
			if err != nil {
				return err
			}
			conv.UnreadCount = n
			conv.Product = a.productFor(gctx, conv.LastMessage)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return convs, nil
}

// productFor resolves the listing of m. Lookup failures only cost the snippet.
func (a *Aggregator) productFor(ctx context.Context, m models.Message) *models.ProductSnippet {
	if a.products == nil || m.ProductID == nil || *m.ProductID == "" {
		return nil
	}
	p, err := a.products.GetProduct(ctx, *m.ProductID)
	if err != nil {
		logger.Warn().Err(err).Str("product_id", *m.ProductID).Msg("product lookup failed")
		return nil
	}
	if p == nil {
		return nil
	}
	s := p.Snippet()
	return &s
}

func participantIDs(msgs []models.Message) []string {
	set := make(map[string]struct{})
	ids := make([]string, 0)
	for _, m := range msgs {
		for _, id := range []string{m.SenderID, m.ReceiverID} {
			if _, ok := set[id]; !ok {
				set[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}
