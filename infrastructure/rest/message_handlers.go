package rest

import (
	"chatline/auth"
	"chatline/domain"
	"chatline/errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return s.fail(c, errors.ErrUnauthorized)
	}
	users, err := s.chat.ListUsers(c.UserContext(), user.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(users)
}

func (s *Server) conversation(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return s.fail(c, errors.ErrUnauthorized)
	}
	messages, err := s.chat.GetConversation(c.UserContext(), domain.GetConversationCommand{
		UserID:    user.ID,
		PartnerID: c.Params("id"),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(messages)
}

func (s *Server) send(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return s.fail(c, errors.ErrUnauthorized)
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
	}
	message, err := s.chat.SendMessage(c.UserContext(), domain.SendMessageCommand{
		SenderID:   user.ID,
		ReceiverID: c.Params("id"),
		Text:       req.Text,
		Image:      req.Image,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"uptime":      time.Since(s.start).Round(time.Second).String(),
		"connections": s.stats.Connections(),
		"onlineUsers": s.stats.OnlineUsers(),
		"process":     s.stats.Process(),
		"queues":      s.stats.Queues(),
	})
}
