// Package telegram delivers shopping lists over a Telegram bot. A user links
// their chat with "/start <api token>" and can then pull the aggregated cart
// as text or as the PDF document.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"recipe-box/internal/auth"
	"recipe-box/internal/pdf"
	"recipe-box/internal/recipe"
	"recipe-box/internal/shopping"
)

// Bot wraps the Telegram API and the shopping-list pipeline.
type Bot struct {
	api     *tgbotapi.BotAPI
	tokens  *auth.Tokens
	carts   *shopping.Repository
	recipes *recipe.Repository

	mu    sync.Mutex
	chats map[int64]int64 // chat ID -> linked user ID
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(botToken, webhookURL string, tokens *auth.Tokens, carts *shopping.Repository, recipes *recipe.Repository) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(webhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:     api,
		tokens:  tokens,
		carts:   carts,
		recipes: recipes,
		chats:   make(map[int64]int64),
	}, nil
}

// WebhookHandler returns the HTTP handler Telegram posts updates to.
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			log.Printf("Error parsing update: %v", err)
			return
		}
		if update.Message == nil {
			return
		}
		b.handleMessage(r.Context(), update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		b.handleStart(chatID, msg.Text)
	case msg.Text == "/shoppinglist":
		b.handleShoppingList(ctx, chatID, false)
	case msg.Text == "/shoppinglistpdf":
		b.handleShoppingList(ctx, chatID, true)
	default:
		b.reply(chatID, "Commands:\n/start <token> - link your account\n/shoppinglist - show your shopping list\n/shoppinglistpdf - download it as PDF")
	}
}

func (b *Bot) handleStart(chatID int64, text string) {
	token := parseStartToken(text)
	if token == "" {
		b.reply(chatID, "Send /start <token> with an API token to link your account.")
		return
	}

	userID, err := b.tokens.Verify(token)
	if err != nil {
		b.reply(chatID, "That token is not valid. Request a fresh one and try again.")
		return
	}

	b.mu.Lock()
	b.chats[chatID] = userID
	b.mu.Unlock()

	b.reply(chatID, "Account linked. Use /shoppinglist whenever you need your list.")
}

func (b *Bot) linkedUser(chatID int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.chats[chatID]
	return userID, ok
}

func (b *Bot) handleShoppingList(ctx context.Context, chatID int64, asPDF bool) {
	userID, ok := b.linkedUser(chatID)
	if !ok {
		b.reply(chatID, "Link your account first with /start <token>.")
		return
	}

	selection, err := b.carts.Selection(ctx, userID)
	if err != nil {
		log.Printf("Failed to load cart for user %d: %v", userID, err)
		b.reply(chatID, "Something went wrong, try again later.")
		return
	}

	lines, err := shopping.Aggregate(ctx, selection, b.recipes)
	if err != nil {
		log.Printf("Failed to aggregate shopping list for user %d: %v", userID, err)
		b.reply(chatID, "Something went wrong, try again later.")
		return
	}

	if !asPDF {
		b.reply(chatID, formatShoppingList(lines))
		return
	}

	doc, err := pdf.Render(lines)
	if err != nil {
		log.Printf("Failed to render shopping list for user %d: %v", userID, err)
		b.reply(chatID, "Something went wrong, try again later.")
		return
	}

	document := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "shopping_cart.pdf",
		Bytes: doc,
	})
	if _, err := b.api.Send(document); err != nil {
		log.Printf("Failed to send document to chat %d: %v", chatID, err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

// parseStartToken extracts the token argument from a "/start <token>" command.
func parseStartToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return ""
	}
	return fields[1]
}

// formatShoppingList renders the aggregated list as a plain text message.
func formatShoppingList(lines []shopping.AggregatedLine) string {
	if len(lines) == 0 {
		return "Your shopping list is empty."
	}

	var sb strings.Builder
	sb.WriteString("🛒 Shopping list\n")
	for i, line := range lines {
		sb.WriteString(fmt.Sprintf("%d. %s: %d %s\n", i+1, line.Name, line.Total, line.Unit))
	}
	return sb.String()
}
