package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go-contact-review-backend/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// newStubBot builds a bot whose API calls land on a local stub server.
func newStubBot(t *testing.T, handler http.HandlerFunc) *tgbotapi.BotAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	bot := &tgbotapi.BotAPI{Token: "test", Client: server.Client(), Buffer: 100}
	bot.SetAPIEndpoint(server.URL + "/bot%s/%s")
	return bot
}

func TestCallbackWithoutMessageIsAnswered(t *testing.T) {
	// Telegram sends callbacks with no Message when the original message is
	// inaccessible or too old; those must answer the query, not crash.
	answered := 0
	bot := newStubBot(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/answerCallbackQuery") {
			answered++
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":true}`))
	})

	rb := &reviewBot{bot: bot, api: newAPIClient("http://127.0.0.1:1"), sessions: newSessionTracker()}

	assert.NotPanics(t, func() {
		rb.handleCallback(&tgbotapi.CallbackQuery{ID: "cb1", Data: callbackData(actionSkip, 0)})
	})
	assert.Equal(t, 1, answered)
}
