package repositories

import (
	"chatline/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Values are stored with the protobuf wire format so that unknown fields
// written by a newer binary are skipped instead of breaking reads.
const (
	messageFieldID protowire.Number = iota + 1
	messageFieldSender
	messageFieldReceiver
	messageFieldText
	messageFieldImage
	messageFieldCreatedAt
	messageFieldSequence
)

const (
	userFieldID protowire.Number = iota + 1
	userFieldFullName
	userFieldEmail
	userFieldPasswordHash
	userFieldProfilePic
	userFieldCreatedAt
)

func encodeMessage(message domain.Message, seq uint64) []byte {
	var b []byte
	b = appendString(b, messageFieldID, message.ID.String())
	b = appendString(b, messageFieldSender, message.SenderID)
	b = appendString(b, messageFieldReceiver, message.ReceiverID)
	b = appendString(b, messageFieldText, message.Text)
	b = appendString(b, messageFieldImage, message.Image)
	b = appendVarint(b, messageFieldCreatedAt, uint64(message.CreatedAt.UnixNano()))
	b = appendVarint(b, messageFieldSequence, seq)
	return b
}

func decodeMessage(b []byte) (domain.Message, error) {
	var id, sender, receiver, text, image string
	var createdAt, seq uint64
	err := decodeRecord(b,
		map[protowire.Number]*string{
			messageFieldID:       &id,
			messageFieldSender:   &sender,
			messageFieldReceiver: &receiver,
			messageFieldText:     &text,
			messageFieldImage:    &image,
		},
		map[protowire.Number]*uint64{
			messageFieldCreatedAt: &createdAt,
			messageFieldSequence:  &seq,
		})
	if err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("message id: %w", err)
	}
	return domain.Message{
		ID:         parsedID,
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		Image:      image,
		CreatedAt:  time.Unix(0, int64(createdAt)).UTC(),
	}, nil
}

func encodeUser(user domain.User) []byte {
	var b []byte
	b = appendString(b, userFieldID, user.ID)
	b = appendString(b, userFieldFullName, user.FullName)
	b = appendString(b, userFieldEmail, user.Email)
	b = appendString(b, userFieldPasswordHash, user.PasswordHash)
	b = appendString(b, userFieldProfilePic, user.ProfilePic)
	b = appendVarint(b, userFieldCreatedAt, uint64(user.CreatedAt.UnixNano()))
	return b
}

func decodeUser(b []byte) (domain.User, error) {
	var user domain.User
	var createdAt uint64
	err := decodeRecord(b,
		map[protowire.Number]*string{
			userFieldID:           &user.ID,
			userFieldFullName:     &user.FullName,
			userFieldEmail:        &user.Email,
			userFieldPasswordHash: &user.PasswordHash,
			userFieldProfilePic:   &user.ProfilePic,
		},
		map[protowire.Number]*uint64{
			userFieldCreatedAt: &createdAt,
		})
	if err != nil {
		return domain.User{}, err
	}
	user.CreatedAt = time.Unix(0, int64(createdAt)).UTC()
	return user, nil
}

// Empty strings are not written, proto3 style.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func decodeRecord(b []byte, strings map[protowire.Number]*string, varints map[protowire.Number]*uint64) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && strings[num] != nil:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			*strings[num] = v
			b = b[n:]
		case typ == protowire.VarintType && varints[num] != nil:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			*varints[num] = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
