// Command client is a terminal chat client: it logs in, opens the
// conversation with one partner and sends every line typed on stdin.
package main

import (
	"bufio"
	"chatline/client"
	"chatline/domain"
	"chatline/domain/event"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL    string        `envconfig:"CHAT_SERVER_URL" default:"http://localhost:5001"`
	SocketURL    string        `envconfig:"CHAT_SOCKET_URL" default:"ws://localhost:5001"`
	FullName     string        `envconfig:"CHAT_FULL_NAME"`
	Email        string        `envconfig:"CHAT_EMAIL" required:"true"`
	Password     string        `envconfig:"CHAT_PASSWORD" required:"true"`
	PartnerEmail string        `envconfig:"CHAT_PARTNER_EMAIL" required:"true"`
	Timeout      time.Duration `envconfig:"CHAT_TIMEOUT" default:"10s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := client.NewAPI(config.ServerURL, config.Timeout)
	if err != nil {
		return exitRuntime, err
	}
	me, err := authenticate(ctx, api, config)
	if err != nil {
		return exitRuntime, err
	}

	partner, err := findPartner(ctx, api, config.PartnerEmail)
	if err != nil {
		return exitRuntime, err
	}

	channel := client.NewSocketChannel(log)
	channel.On(event.OnlineUsersName, func(e event.DomainEvent) {
		online := e.(event.OnlineUsers)
		status := color.Gray.Sprint("offline")
		for _, id := range online.UserIDs {
			if id == partner.ID {
				status = color.Green.Sprint("online")
			}
		}
		fmt.Printf("%s is %s\n", partner.FullName, status)
	})
	subscriber := client.NewSubscriber(channel)
	channel.On(event.NewMessageName, func(e event.DomainEvent) {
		msg := e.(event.NewMessage).Message
		if msg.SenderID == partner.ID {
			printMessage(partner.FullName, msg, color.Cyan)
		}
	})

	if err := channel.Connect(ctx, config.SocketURL, me.ID); err != nil {
		return exitRuntime, err
	}
	defer func() { _ = channel.Close() }()

	history, err := api.Conversation(ctx, partner.ID)
	if err != nil {
		return exitRuntime, fmt.Errorf("history fetch failed: %w", err)
	}
	subscriber.Subscribe(partner.ID, history)
	defer subscriber.Unsubscribe()
	for _, msg := range history {
		if msg.SenderID == me.ID {
			printMessage("me", msg, color.White)
		} else {
			printMessage(partner.FullName, msg, color.Cyan)
		}
	}
	color.Bold.Printf(">>> Chatting with %s (Ctrl+C to quit)\n", partner.FullName)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case <-channel.Done():
			return exitRuntime, fmt.Errorf("connection lost")
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			sent, err := api.Send(ctx, partner.ID, text, "")
			if err != nil {
				color.Red.Printf("not sent: %v\n", err)
				continue
			}
			subscriber.Append(sent)
		}
	}
}

// authenticate logs in, creating the account first when it does not exist.
func authenticate(ctx context.Context, api *client.API, config Config) (domain.User, error) {
	me, err := api.Login(ctx, config.Email, config.Password)
	var statusErr *client.StatusError
	if err == nil || !errors.As(err, &statusErr) || statusErr.Status != http.StatusBadRequest || config.FullName == "" {
		return me, err
	}
	return api.Signup(ctx, config.FullName, config.Email, config.Password)
}

func findPartner(ctx context.Context, api *client.API, email string) (domain.User, error) {
	users, err := api.Users(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("users fetch failed: %w", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("no user with email %s", email)
}

func printMessage(author string, msg domain.Message, c color.Color) {
	body := msg.Text
	if msg.Image != "" {
		body = strings.TrimSpace(body + " [image] " + msg.Image)
	}
	fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format(time.TimeOnly), c.Sprint(author), body)
}
