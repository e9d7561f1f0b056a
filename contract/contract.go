//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chatline/domain"
	"chatline/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the push side of one live connection.
// Consume must not block longer than ctx allows.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps a user to the connection that last announced it.
type IRegistry interface {
	Register(userID, connectionID string)
	Unregister(userID, connectionID string) bool
	Lookup(userID string) (string, bool)
	Snapshot() []string
}

// IDispatcher pushes persisted messages and presence views to live connections.
type IDispatcher interface {
	Deliver(ctx context.Context, message domain.Message) domain.DeliveryResult
	BroadcastPresence(ctx context.Context) int
}

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error)
	GetConversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
}

type IUserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	ListUsersExcept(ctx context.Context, id string) ([]domain.User, error)
	UpdateProfilePic(ctx context.Context, id, url string) (domain.User, error)
}

// ImageUploader stores a data URI image in an object store and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}
