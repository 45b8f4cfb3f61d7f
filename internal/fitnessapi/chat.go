package fitnessapi

import (
	"context"
	"net/http"

	"github.com/dom/fitgate/internal/domain"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatReply struct {
	Response              string   `json:"response"`
	Sources               []string `json:"sources,omitempty"`
	ConversationID        string   `json:"conversation_id"`
	RetrievalInstructions string   `json:"retrieval_instructions,omitempty"`
}

func (c *Client) Chat(ctx context.Context, userID domain.UserID, message string) (*ChatReply, error) {
	resp, err := c.Do(ctx, http.MethodPost, "chat", nil, chatRequest{
		UserID:  userID.String(),
		Message: message,
	})
	if err != nil {
		return nil, err
	}

	var reply ChatReply
	if err := decode(resp, "chat", &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
