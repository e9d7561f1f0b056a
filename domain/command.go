package domain

// SendMessageCommand is the intent of SenderID to message ReceiverID.
// Image, when set, is a data URI still to be uploaded.
type SendMessageCommand struct {
	SenderID   string
	ReceiverID string
	Text       string `validate:"max=4096"`
	Image      string
}

// IsEmpty reports whether the command carries neither text nor image.
func (c SendMessageCommand) IsEmpty() bool {
	return c.Text == "" && c.Image == ""
}

// GetConversationCommand asks for the full history between UserID and PartnerID.
type GetConversationCommand struct {
	UserID    string
	PartnerID string
}
