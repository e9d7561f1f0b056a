package client

import (
	"bytes"
	"chatline/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// API is a small REST client of the chat server. The session cookie set at
// login is kept in its cookie jar.
type API struct {
	baseURL string
	http    *http.Client
}

type apiError struct {
	Message string `json:"message"`
}

type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

func NewAPI(baseURL string, timeout time.Duration) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (a *API) Signup(ctx context.Context, fullName, email, password string) (domain.User, error) {
	var user domain.User
	body := map[string]string{"fullName": fullName, "email": email, "password": password}
	err := a.call(ctx, http.MethodPost, "/api/auth/signup", body, &user)
	return user, err
}

func (a *API) Login(ctx context.Context, email, password string) (domain.User, error) {
	var user domain.User
	body := map[string]string{"email": email, "password": password}
	err := a.call(ctx, http.MethodPost, "/api/auth/login", body, &user)
	return user, err
}

func (a *API) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := a.call(ctx, http.MethodGet, "/api/message/users", nil, &users)
	return users, err
}

func (a *API) Conversation(ctx context.Context, partnerID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := a.call(ctx, http.MethodGet, "/api/message/"+partnerID, nil, &messages)
	return messages, err
}

// Send posts a message, image being an optional data URI.
func (a *API) Send(ctx context.Context, receiverID, text, image string) (domain.Message, error) {
	var message domain.Message
	body := map[string]string{"text": text, "image": image}
	err := a.call(ctx, http.MethodPost, "/api/message/send/"+receiverID, body, &message)
	return message, err
}

func (a *API) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &StatusError{Status: resp.StatusCode, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
