package repositories

import (
	"chatline/domain"
	"chatline/errors"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const userPrefix = "user:"

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists the user and its email index in one transaction.
// The ID and creation date are assigned here when missing.
func (u *UserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Unix(0, time.Now().UnixNano()).UTC()
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		indexKey := emailKey(user.Email)
		if _, err := txn.Get(indexKey); err == nil {
			return errors.ErrUserAlreadyExists
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(userKey(user.ID), encodeUser(user)); err != nil {
			return err
		}
		return txn.Set(indexKey, []byte(user.ID))
	})
	if err != nil {
		return domain.User{}, wrapStorage(err)
	}
	return user, nil
}

func (u *UserRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, string(id))
		return err
	})
	if err != nil {
		return domain.User{}, wrapStorage(err)
	}
	return user, nil
}

func (u *UserRepository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, wrapStorage(err)
	}
	return user, nil
}

// ListUsersExcept returns every user but id, in key order.
func (u *UserRepository) ListUsersExcept(ctx context.Context, id string) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0)
	prefix := []byte(userPrefix)
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if string(it.Item().Key()) == userPrefix+id {
				continue
			}
			err := it.Item().Value(func(value []byte) error {
				user, err := decodeUser(value)
				if err != nil {
					return err
				}
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return users, nil
}

func (u *UserRepository) UpdateProfilePic(ctx context.Context, id, url string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.Update(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		if err != nil {
			return err
		}
		user.ProfilePic = url
		return txn.Set(userKey(id), encodeUser(user))
	})
	if err != nil {
		return domain.User{}, wrapStorage(err)
	}
	return user, nil
}

func getUser(txn *badger.Txn, id string) (domain.User, error) {
	item, err := txn.Get(userKey(id))
	if err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err = item.Value(func(value []byte) error {
		user, err = decodeUser(value)
		return err
	})
	return user, err
}

// wrapStorage keeps domain errors as they are and maps a missing key to ErrUserNotFound.
func wrapStorage(err error) error {
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		return err
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return errors.ErrUserNotFound
	default:
		return fmt.Errorf("%w: %w", errors.ErrStorage, err)
	}
}

func userKey(id string) []byte {
	return []byte(userPrefix + id)
}

func emailKey(email string) []byte {
	return []byte("email:" + strings.ToLower(strings.TrimSpace(email)))
}
