package service

import (
	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/repository"
)

// FitnessService is the part of the fitness service the services call.
type FitnessService interface {
	ProfileChecker
	Chatter
}

type Services struct {
	Auth *AuthService
	Chat *ChatService
}

func NewServices(repos *repository.Repositories, fitness FitnessService, mailer Mailer, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(repos, fitness, mailer, cfg),
		Chat: NewChatService(fitness, repos.Conversation),
	}
}
