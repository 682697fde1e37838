package telegram

import "strconv"

// Update is the subset of a Telegram webhook update the relay reads.
type Update struct {
	Message  *Message `json:"message"`
	UpdateID int64    `json:"update_id"`
}

// Message is an incoming chat message.
type Message struct {
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
	MessageID int64  `json:"message_id"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// ChatID returns the chat id in the form used to key pending transactions.
func (c Chat) ChatID() string {
	return strconv.FormatInt(c.ID, 10)
}

// Reply returns the chat id and text of the update's message. ok is false for
// updates that carry no message, such as edits or callback queries.
func (u Update) Reply() (chatID, text string, ok bool) {
	if u.Message == nil {
		return "", "", false
	}
	return u.Message.Chat.ChatID(), u.Message.Text, true
}
