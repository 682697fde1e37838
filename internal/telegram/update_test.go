package telegram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_Reply(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantChat string
		wantText string
		wantOK   bool
	}{
		{
			name:     "text message",
			payload:  `{"update_id":1,"message":{"message_id":5,"chat":{"id":42,"type":"private"},"text":"lunch with friends"}}`,
			wantChat: "42",
			wantText: "lunch with friends",
			wantOK:   true,
		},
		{
			name:     "negative group id",
			payload:  `{"message":{"chat":{"id":-1001234},"text":"taxi"}}`,
			wantChat: "-1001234",
			wantText: "taxi",
			wantOK:   true,
		},
		{
			name:     "message without text",
			payload:  `{"message":{"chat":{"id":42}}}`,
			wantChat: "42",
			wantOK:   true,
		},
		{
			name:    "no message",
			payload: `{"update_id":2,"edited_message":{"chat":{"id":42},"text":"x"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u Update
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &u))

			chatID, text, ok := u.Reply()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantChat, chatID)
			assert.Equal(t, tt.wantText, text)
		})
	}
}
