package event

import (
	"chatline/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEncode_NewMessage_CarriesFullPayload(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hey",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	frame, err := Encode(NewMessage{Message: message})
	req.NoError(err)
	req.Contains(string(frame), `"event":"newMessage"`)
	req.Contains(string(frame), `"senderId":"alice"`)
	req.NotContains(string(frame), `"image"`)

	decoded, err := Decode(frame)
	req.NoError(err)
	req.Equal(NewMessage{Message: message}, decoded)
}

func TestEncode_OnlineUsers_NeverNull(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(OnlineUsers{})
	req.NoError(err)
	req.JSONEq(`{"event":"getOnlineUsers","data":[]}`, string(frame))
}

func TestDecode_UnknownEvent(t *testing.T) {
	_, err := Decode([]byte(`{"event":"typing","data":{}}`))
	require.Error(t, err)
}
