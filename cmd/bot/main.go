package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"go-contact-review-backend/config"
	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeMessage = `🤖 *CSV Contact Manager Bot*

Upload a CSV file with contacts (name, email, LinkedIn URL) and I'll help you review and add them to Mailchimp and/or Pipedrive.

*How to use:*
1. Send me a CSV file
2. I'll parse the contacts and show them to you
3. Review each contact and choose where to add them
4. Single tap to approve/reject for each service

*Supported CSV format:*
- ` + "`name`" + ` - Full name
- ` + "`email`" + ` - Email address
- ` + "`What is your LinkedIn profile?`" + ` - LinkedIn URL
- ` + "`first_name`" + ` and ` + "`last_name`" + ` (optional)

Ready to upload your CSV file! 📁`

const helpMessage = `📋 *Available Commands:*

/start - Start the bot and see instructions
/help - Show this help message

*To process contacts:*
1. Send a CSV file to the bot
2. Review each contact one by one
3. Use the buttons to add to Mailchimp and/or Pipedrive
4. Skip contacts you don't want to add`

type reviewBot struct {
	bot      *tgbotapi.BotAPI
	api      *apiClient
	sessions *sessionTracker
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN not found in environment variables")
	}

	logger.Init()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	logger.Log.Info("Starting Telegram bot", "username", bot.Self.UserName, "api", cfg.APIBaseURL)

	rb := &reviewBot{
		bot:      bot,
		api:      newAPIClient(cfg.APIBaseURL),
		sessions: newSessionTracker(),
	}
	rb.run()
}

func (rb *reviewBot) run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	for update := range rb.bot.GetUpdatesChan(u) {
		switch {
		case update.Message != nil && update.Message.IsCommand():
			rb.handleCommand(update.Message)
		case update.Message != nil && update.Message.Document != nil:
			rb.handleDocument(update.Message)
		case update.CallbackQuery != nil:
			rb.handleCallback(update.CallbackQuery)
		}
	}
}

func (rb *reviewBot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		rb.reply(msg.Chat.ID, welcomeMessage)
	case "help":
		rb.reply(msg.Chat.ID, helpMessage)
	}
}

// handleDocument downloads an uploaded CSV, forwards it to the backend and
// starts the review loop for this chat.
func (rb *reviewBot) handleDocument(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document

	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".csv") {
		rb.reply(chatID, "❌ Please upload a CSV file (.csv extension)")
		return
	}

	rb.reply(chatID, "📥 Processing your CSV file...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	data, err := rb.downloadDocument(ctx, doc.FileID)
	if err != nil {
		logger.Log.Error("failed to download document", "error", err)
		rb.reply(chatID, fmt.Sprintf("❌ Error processing file: %v", err))
		return
	}

	result, err := rb.api.uploadCSV(ctx, doc.FileName, data)
	if err != nil {
		rb.reply(chatID, fmt.Sprintf("❌ Error processing CSV: %v", err))
		return
	}

	rb.sessions.start(chatID, result.SessionID, result.TotalContacts)
	rb.showContact(chatID)
}

// showContact renders the current contact with its action buttons, or wraps
// up the session when every contact has been reviewed.
func (rb *reviewBot) showContact(chatID int64) {
	state, ok := rb.sessions.get(chatID)
	if !ok {
		rb.reply(chatID, "❌ No active session found. Please upload a CSV file.")
		return
	}
	if state.done() {
		rb.sessions.drop(chatID)
		rb.reply(chatID, "🎉 *All contacts processed!*\n\nUpload another CSV file when you're ready.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listing, err := rb.api.listContacts(ctx, state.SessionID)
	if err != nil {
		rb.reply(chatID, "❌ Error loading contact details")
		return
	}
	if state.Current >= len(listing.Contacts) {
		rb.sessions.drop(chatID)
		rb.reply(chatID, "❌ Session expired. Please upload the CSV again.")
		return
	}
	contact := listing.Contacts[state.Current]

	text := fmt.Sprintf("👤 *Contact %d of %d*\n\n*Name:* %s\n*Email:* %s\n*LinkedIn:* %s",
		state.Current+1, state.Total, contact.Name, contact.Email, contact.LinkedInURL)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Add to Mailchimp", callbackData(actionMailingList, state.Current)),
			tgbotapi.NewInlineKeyboardButtonData("✅ Add to Pipedrive", callbackData(actionCRM, state.Current)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Add to Both", callbackData(actionBoth, state.Current)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Skip", callbackData(actionSkip, state.Current)),
		),
	)

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = keyboard
	if _, err := rb.bot.Send(reply); err != nil {
		logger.Log.Error("failed to send contact message", "error", err)
	}
}

func (rb *reviewBot) handleCallback(query *tgbotapi.CallbackQuery) {
	// Telegram omits Message for callbacks on inaccessible or too-old
	// messages; there is no chat to act on then.
	if query.Message == nil {
		rb.answerCallback(query.ID, "❌ This message is no longer available. Please upload the CSV again.")
		return
	}
	chatID := query.Message.Chat.ID

	state, ok := rb.sessions.get(chatID)
	if !ok {
		rb.answerCallback(query.ID, "❌ No active session found")
		return
	}
	rb.answerCallback(query.ID, "")

	action, index, err := parseCallback(query.Data)
	if err != nil {
		logger.Log.Warn("ignoring malformed callback", "data", query.Data)
		return
	}

	// Stale buttons from an earlier contact stay on screen; only the current
	// index is actionable.
	if index != state.Current {
		rb.editMessage(chatID, query.Message.MessageID,
			"⚠️ This contact has already been processed. Please continue with the current contact.")
		return
	}

	if action == actionSkip {
		rb.editMessage(chatID, query.Message.MessageID, "⏭️ Skipped")
		state.Current++
		rb.showContact(chatID)
		return
	}

	mailingList, crm := reviewFlags(action)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := rb.api.reviewContact(ctx, &domain.ReviewRequest{
		SessionID:        state.SessionID,
		ContactIndex:     index,
		AddToMailingList: mailingList,
		AddToCRM:         crm,
	})
	if err != nil {
		rb.editMessage(chatID, query.Message.MessageID, fmt.Sprintf("❌ Error: %v", err))
		return
	}

	rb.editMessage(chatID, query.Message.MessageID, formatResults(result.Contact.Name, result.Results))
	state.Current++
	rb.showContact(chatID)
}

func (rb *reviewBot) downloadDocument(ctx context.Context, fileID string) ([]byte, error) {
	url, err := rb.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (rb *reviewBot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := rb.bot.Send(msg); err != nil {
		logger.Log.Error("failed to send message", "error", err)
	}
}

func (rb *reviewBot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := rb.bot.Send(edit); err != nil {
		logger.Log.Error("failed to edit message", "error", err)
	}
}

func (rb *reviewBot) answerCallback(id, text string) {
	if _, err := rb.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Log.Error("failed to answer callback", "error", err)
	}
}
