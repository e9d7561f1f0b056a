package rest

import (
	"chatline/auth"
	"chatline/errors"
	"chatline/services"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (s *Server) signup(c *fiber.Ctx) error {
	var req auth.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
	}
	user, token, err := s.auth.Signup(c.UserContext(), req)
	if err != nil {
		return s.fail(c, err)
	}
	s.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
	}
	user, token, err := s.auth.Login(c.UserContext(), req)
	if err != nil {
		return s.fail(c, err)
	}
	s.setSessionCookie(c, token)
	return c.JSON(user)
}

func (s *Server) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   s.cfg.CookieSecure,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (s *Server) check(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return s.fail(c, errors.ErrUnauthorized)
	}
	return c.JSON(user)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return s.fail(c, errors.ErrUnauthorized)
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
	}
	updated, err := s.auth.UpdateProfile(c.UserContext(), user.ID, req.ProfilePic)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(updated)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token services.Token) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token.String(),
		MaxAge:   int(s.tokens.Duration().Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   s.cfg.CookieSecure,
	})
}
