package sheets

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   string
		wantStatus int
		wantErr    bool
	}{
		{name: "valid callback", query: "?state=s1&code=abc", wantStatus: http.StatusOK, wantCode: "abc"},
		{name: "state mismatch", query: "?state=other&code=abc", wantStatus: http.StatusBadRequest, wantErr: true},
		{name: "user denied", query: "?state=s1&error=access_denied", wantStatus: http.StatusBadRequest, wantErr: true},
		{name: "missing code", query: "?state=s1", wantStatus: http.StatusBadRequest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errorChan := make(chan error, 1)

			rec := httptest.NewRecorder()
			callbackHandler("s1", codeChan, errorChan)(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr {
				require.Len(t, errorChan, 1)
				assert.Error(t, <-errorChan)
				return
			}
			require.Len(t, codeChan, 1)
			assert.Equal(t, tt.wantCode, <-codeChan)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, saveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
