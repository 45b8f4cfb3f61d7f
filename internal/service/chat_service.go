package service

import (
	"context"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/fitnessapi"
	"github.com/dom/fitgate/internal/repository"
)

// Chatter relays a chat message to the fitness service's chatbot.
type Chatter interface {
	Chat(ctx context.Context, userID domain.UserID, message string) (*fitnessapi.ChatReply, error)
}

// ChatService relays chatbot messages and tracks which user each returned
// conversation id belongs to, so history is only served to its owner.
type ChatService struct {
	chatter       Chatter
	conversations repository.ConversationRepository
	now           func() time.Time
}

func NewChatService(chatter Chatter, conversations repository.ConversationRepository) *ChatService {
	return &ChatService{
		chatter:       chatter,
		conversations: conversations,
		now:           time.Now,
	}
}

func (s *ChatService) Chat(ctx context.Context, userID domain.UserID, message string) (*fitnessapi.ChatReply, error) {
	reply, err := s.chatter.Chat(ctx, userID, message)
	if err != nil {
		return nil, err
	}

	if reply.ConversationID != "" {
		err := s.conversations.Record(ctx, &domain.Conversation{
			ID:        reply.ConversationID,
			UserID:    userID,
			CreatedAt: s.now(),
		})
		if err != nil {
			return nil, domain.StoreError("record conversation", err)
		}
	}
	return reply, nil
}

// AuthorizeHistory returns ErrConversationNotFound unless userID was the one
// the conversation was issued to.
func (s *ChatService) AuthorizeHistory(ctx context.Context, userID domain.UserID, conversationID string) error {
	if conversationID == "" {
		return domain.ErrConversationNotFound
	}
	owns, err := s.conversations.Owns(ctx, userID, conversationID)
	if err != nil {
		return domain.StoreError("lookup conversation", err)
	}
	if !owns {
		return domain.ErrConversationNotFound
	}
	return nil
}
