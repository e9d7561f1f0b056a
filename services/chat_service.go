package services

import (
	"chatline/contract"
	"chatline/domain"
	"chatline/errors"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type IChatService interface {
	ListUsers(ctx context.Context, callerID string) ([]domain.User, error)
	GetConversation(ctx context.Context, cmd domain.GetConversationCommand) ([]domain.Message, error)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
}

type ChatService struct {
	log        *slog.Logger
	users      contract.IUserRepository
	messages   contract.IMessageRepository
	dispatcher contract.IDispatcher
	uploader   contract.ImageUploader
}

func NewChatService(log *slog.Logger, users contract.IUserRepository, messages contract.IMessageRepository,
	dispatcher contract.IDispatcher, uploader contract.ImageUploader) *ChatService {
	return &ChatService{
		log:        log,
		users:      users,
		messages:   messages,
		dispatcher: dispatcher,
		uploader:   uploader,
	}
}

// ListUsers returns every user but the caller, the sidebar of the client.
func (s *ChatService) ListUsers(ctx context.Context, callerID string) ([]domain.User, error) {
	return s.users.ListUsersExcept(ctx, callerID)
}

func (s *ChatService) GetConversation(ctx context.Context, cmd domain.GetConversationCommand) ([]domain.Message, error) {
	if cmd.UserID == "" || cmd.PartnerID == "" {
		return nil, errors.ErrInvalidRequest
	}
	return s.messages.GetConversation(ctx, cmd.UserID, cmd.PartnerID)
}

// SendMessage uploads the optional image, persists the message, then tries a
// real-time delivery. The message is returned once persisted, whatever the
// delivery outcome.
func (s *ChatService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	if cmd.IsEmpty() {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	if cmd.SenderID == "" || cmd.ReceiverID == "" {
		return domain.Message{}, errors.ErrInvalidRequest
	}

	imageURL := ""
	if cmd.Image != "" {
		url, err := s.uploader.Upload(ctx, cmd.Image)
		if err != nil {
			return domain.Message{}, err
		}
		imageURL = url
	}

	message, err := s.messages.StoreMessage(ctx, domain.NewMessage{
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Text:       cmd.Text,
		Image:      imageURL,
	})
	if err != nil {
		s.log.Error("Message not persisted", "sender_id", cmd.SenderID, "receiver_id", cmd.ReceiverID, "error", err)
		return domain.Message{}, err
	}

	result := s.dispatcher.Deliver(ctx, message)
	s.log.Debug("Message sent", "message_id", message.ID, "receiver_id", message.ReceiverID, "result", result.String())
	return message, nil
}
