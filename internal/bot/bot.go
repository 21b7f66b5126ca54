// Package bot is the Telegram front end over the booking core: it
// renders the slot grid, routes toggle callbacks, and walks the user
// through checkout. All booking invariants live in internal/booking;
// the bot only calls in and renders the results.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"deskbook/internal/booking"
	"deskbook/internal/metrics"
	"deskbook/internal/report"
	"deskbook/internal/schedule"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Rules bounds what the bot accepts at the flow level. The core's
// Range stays unbounded and pure; these are presentation guards.
type Rules struct {
	MaxRangeDays   int
	MaxAdvanceDays int
	RecentLimit    int
}

// Bot wires the Telegram client to the booking core.
type Bot struct {
	tg       telegramClient
	svc      *booking.Service
	sessions *booking.SessionStore
	fsm      *booking.FSM
	inputs   *inputStore
	managers map[int64]struct{}
	rules    Rules
	limiter  *rate.Limiter
	logger   *zerolog.Logger
}

// New creates a bot over the real Telegram API.
func New(token string, debug bool, svc *booking.Service, sessions *booking.SessionStore, managers []int64, rules Rules, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return newBot(&realTelegramClient{api: api}, svc, sessions, managers, rules, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, svc *booking.Service, sessions *booking.SessionStore, managers []int64, rules Rules, logger *zerolog.Logger) (*Bot, error) {
	return newBot(tg, svc, sessions, managers, rules, logger)
}

func newBot(tg telegramClient, svc *booking.Service, sessions *booking.SessionStore, managers []int64, rules Rules, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	mgrs := make(map[int64]struct{})
	for _, id := range managers {
		mgrs[id] = struct{}{}
	}
	if rules.MaxRangeDays <= 0 {
		rules.MaxRangeDays = 14
	}
	if rules.MaxAdvanceDays <= 0 {
		rules.MaxAdvanceDays = 60
	}
	if rules.RecentLimit <= 0 {
		rules.RecentLimit = 5
	}
	return &Bot{
		tg:       tg,
		svc:      svc,
		sessions: sessions,
		fsm:      booking.NewFSM(),
		inputs:   newInputStore(),
		managers: mgrs,
		rules:    rules,
		limiter:  rate.NewLimiter(rate.Limit(20), 30),
		logger:   logger,
	}, nil
}

var mainMenu = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("🗓 Book slots"),
		tgbotapi.NewKeyboardButton("📌 Recent bookings"),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("ℹ️ Help"),
	),
)

// Start begins polling updates and handles them until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("booking bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			b.handleUpdate(l.WithContext(ctx), &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(text, "/start"):
		b.inputs.reset(userID)
		b.sessions.Reset(userID)
		welcome := tgbotapi.NewMessage(chatID, "Welcome to the co-working space booking bot. Choose an action:")
		welcome.ReplyMarkup = mainMenu
		b.send(ctx, welcome)
		return
	case text == "🗓 Book slots" || strings.HasPrefix(text, "/book"):
		b.startBookingFlow(ctx, chatID, userID)
		return
	case text == "📌 Recent bookings" || strings.HasPrefix(text, "/bookings"):
		b.handleRecentBookings(ctx, chatID)
		return
	case text == "ℹ️ Help" || strings.HasPrefix(text, "/help"):
		b.reply(ctx, chatID, "Commands: /book — pick dates and slots, /bookings — recent bookings, /cancel — abort the current flow.")
		return
	case strings.HasPrefix(text, "/export"):
		b.handleExport(ctx, chatID, userID)
		return
	case strings.HasPrefix(text, "/skip"):
		b.handleSkip(ctx, chatID, userID)
		return
	case strings.HasPrefix(text, "/cancel"):
		b.inputs.reset(userID)
		b.sessions.Reset(userID)
		b.reply(ctx, chatID, "Cancelled. Use /book to start over.")
		return
	}

	st := b.inputs.get(userID)
	switch st.Step {
	case stepStartDate:
		b.handleStartDateInput(ctx, chatID, userID, st, text)
	case stepEndDate:
		b.handleEndDateInput(ctx, chatID, userID, st, text)
	case stepName:
		b.handleNameInput(ctx, chatID, userID, st, text)
	case stepEmail:
		b.handleEmailInput(ctx, chatID, userID, st, text)
	case stepPhone:
		b.handlePhoneInput(ctx, chatID, userID, st, text)
	}
}

// --- date range flow ---

func (b *Bot) startBookingFlow(ctx context.Context, chatID, userID int64) {
	b.sessions.Reset(userID)
	st := b.inputs.get(userID)
	st.Step = stepStartDate
	st.StartDate = ""
	b.reply(ctx, chatID, "Send the start date (YYYY-MM-DD):")
}

func (b *Bot) handleStartDateInput(ctx context.Context, chatID, userID int64, st *userInput, text string) {
	date, err := schedule.ParseDate(text)
	if err != nil {
		b.reply(ctx, chatID, "That does not look like a date. Use YYYY-MM-DD, e.g. 2025-01-10.")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		b.reply(ctx, chatID, "The start date is in the past. Pick today or later.")
		return
	}
	if date.After(today.AddDate(0, 0, b.rules.MaxAdvanceDays)) {
		b.reply(ctx, chatID, fmt.Sprintf("Bookings open at most %d days ahead.", b.rules.MaxAdvanceDays))
		return
	}

	st.StartDate = text
	st.Step = stepEndDate
	b.reply(ctx, chatID, "Send the end date (YYYY-MM-DD):")
}

func (b *Bot) handleEndDateInput(ctx context.Context, chatID, userID int64, st *userInput, text string) {
	if _, err := schedule.ParseDate(text); err != nil {
		b.reply(ctx, chatID, "That does not look like a date. Use YYYY-MM-DD, e.g. 2025-01-12.")
		return
	}

	span := schedule.Span(st.StartDate, text)
	if span == 0 {
		b.reply(ctx, chatID, "The end date is before the start date. Send an end date on or after "+st.StartDate+".")
		return
	}
	if span > b.rules.MaxRangeDays {
		b.reply(ctx, chatID, fmt.Sprintf("That range covers %d days; the limit is %d. Pick a shorter range.", span, b.rules.MaxRangeDays))
		return
	}

	dates := schedule.Range(st.StartDate, text)

	sess := b.sessions.GetOrCreate(userID)
	sess.SetRange(st.StartDate, text, dates)
	b.fsm.Transition(sess, booking.StateSlotGrid)
	st.Step = stepNone

	b.sendGrid(ctx, chatID, sess)
}

// sendGrid sends one slot keyboard per date plus the checkout row.
func (b *Bot) sendGrid(ctx context.Context, chatID int64, sess *booking.Session) {
	ledger := b.svc.Ledger()
	cat := b.svc.Catalog()

	for _, date := range sess.Dates() {
		msg := tgbotapi.NewMessage(chatID, "📅 "+schedule.FormatDay(date))
		msg.ReplyMarkup = dayKeyboard(date, cat, ledger, sess)
		b.send(ctx, msg)
	}

	control := tgbotapi.NewMessage(chatID, "Tap free cells to select them, then check out.")
	control.ReplyMarkup = checkoutKeyboard()
	b.send(ctx, control)
}

// --- callbacks ---

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	if data == "noop" {
		b.answerCallback(cq.ID, "")
		return
	}

	sess := b.sessions.Get(userID)
	if sess == nil {
		b.answerCallback(cq.ID, "Session expired. Use /book to start over.")
		return
	}

	switch {
	case strings.HasPrefix(data, "cell:"):
		b.handleCellCallback(ctx, cq, sess)
	case data == "checkout":
		b.handleCheckoutCallback(ctx, cq, sess)
	case data == "details":
		b.handleDetailsCallback(ctx, cq, sess)
	case data == "back:grid":
		b.handleBackToGrid(ctx, cq, sess)
	case data == "confirm":
		b.handleConfirmCallback(ctx, chatID, userID, cq, sess)
	case data == "cancel":
		b.handleCancelCallback(ctx, cq, sess)
	default:
		b.answerCallback(cq.ID, "")
	}
}

func (b *Bot) handleCellCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *booking.Session) {
	date, slotID, ok := parseCellCallback(cq.Data)
	if !ok {
		b.answerCallback(cq.ID, "")
		return
	}

	state := sess.GetState()
	if state != booking.StateSlotGrid && state != booking.StateSelecting {
		b.answerCallback(cq.ID, "Finish or cancel the current checkout first.")
		return
	}

	ledger := b.svc.Ledger()
	snapshot, selected, changed := sess.Toggle(ledger, date, slotID)
	if !changed {
		b.answerCallback(cq.ID, "That slot is already booked.")
		return
	}

	if state == booking.StateSlotGrid {
		b.fsm.Transition(sess, booking.StateSelecting)
	}

	action := "deselect"
	if selected {
		action = "select"
	}
	metrics.IncSlotToggled(action)

	total := b.svc.Catalog().Total(slotIDs(snapshot))
	b.answerCallback(cq.ID, fmt.Sprintf("%d slot(s) · $%d", len(snapshot), total))

	// Refresh the tapped day's keyboard in place.
	edit := tgbotapi.NewEditMessageReplyMarkup(
		cq.Message.Chat.ID,
		cq.Message.MessageID,
		dayKeyboard(date, b.svc.Catalog(), ledger, sess),
	)
	b.request(ctx, edit)
}

func (b *Bot) handleCheckoutCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *booking.Session) {
	if sess.SelectionCount() == 0 {
		b.answerCallback(cq.ID, "Select at least one time slot first.")
		return
	}
	if !b.fsm.Transition(sess, booking.StateReviewPending) {
		b.answerCallback(cq.ID, "")
		return
	}
	b.answerCallback(cq.ID, "")

	msg := tgbotapi.NewMessage(cq.Message.Chat.ID, formatSelectionSummary(sess.Snapshot(), b.svc.Catalog()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = reviewKeyboard()
	b.send(ctx, msg)
}

func (b *Bot) handleDetailsCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *booking.Session) {
	if !b.fsm.Transition(sess, booking.StateConfirming) {
		b.answerCallback(cq.ID, "")
		return
	}
	b.answerCallback(cq.ID, "")

	st := b.inputs.get(cq.From.ID)
	st.Step = stepName
	b.reply(ctx, cq.Message.Chat.ID, "Your full name:")
}

func (b *Bot) handleBackToGrid(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *booking.Session) {
	// Selection is preserved on the way back.
	b.fsm.Transition(sess, booking.StateSelecting)
	b.inputs.get(cq.From.ID).Step = stepNone
	b.answerCallback(cq.ID, "Selection kept.")
}

func (b *Bot) handleCancelCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *booking.Session) {
	b.fsm.Transition(sess, booking.StateSelecting)
	b.inputs.get(cq.From.ID).Step = stepNone
	b.answerCallback(cq.ID, "")
	b.reply(ctx, cq.Message.Chat.ID, "Checkout cancelled — your selection is kept. Tap 🛒 Checkout when ready.")
}

// --- customer form ---

func (b *Bot) handleNameInput(ctx context.Context, chatID, userID int64, st *userInput, text string) {
	sess := b.sessions.Get(userID)
	if sess == nil {
		st.Step = stepNone
		return
	}
	sess.SetCustomerName(text)
	st.Step = stepEmail
	b.reply(ctx, chatID, "Email address:")
}

func (b *Bot) handleEmailInput(ctx context.Context, chatID, userID int64, st *userInput, text string) {
	sess := b.sessions.Get(userID)
	if sess == nil {
		st.Step = stepNone
		return
	}
	sess.SetCustomerEmail(text)
	st.Step = stepPhone
	b.reply(ctx, chatID, "Phone number (or /skip):")
}

func (b *Bot) handlePhoneInput(ctx context.Context, chatID, userID int64, st *userInput, text string) {
	sess := b.sessions.Get(userID)
	if sess == nil {
		st.Step = stepNone
		return
	}
	sess.SetCustomerPhone(text)
	st.Step = stepNone
	b.sendConfirm(ctx, chatID, sess)
}

func (b *Bot) handleSkip(ctx context.Context, chatID, userID int64) {
	st := b.inputs.get(userID)
	if st.Step != stepPhone {
		return
	}
	sess := b.sessions.Get(userID)
	if sess == nil {
		st.Step = stepNone
		return
	}
	st.Step = stepNone
	b.sendConfirm(ctx, chatID, sess)
}

func (b *Bot) sendConfirm(ctx context.Context, chatID int64, sess *booking.Session) {
	msg := tgbotapi.NewMessage(chatID, formatBookingConfirmation(sess.Snapshot(), b.svc.Catalog(), sess.CustomerDraft()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = confirmKeyboard()
	b.send(ctx, msg)
}

// --- confirm ---

func (b *Bot) handleConfirmCallback(ctx context.Context, chatID, userID int64, cq *tgbotapi.CallbackQuery, sess *booking.Session) {
	l := zerolog.Ctx(ctx)

	bookings, err := b.svc.Confirm(sess)
	if err != nil {
		b.answerCallback(cq.ID, "")
		var mfe *booking.MissingFieldError
		var ste *booking.SlotTakenError
		switch {
		case errors.Is(err, booking.ErrEmptySelection):
			metrics.IncConfirmRejected("empty_selection")
			b.reply(ctx, chatID, "Nothing is selected. Use /book to pick slots first.")
		case errors.As(err, &mfe):
			metrics.IncConfirmRejected("missing_" + mfe.Field)
			b.askAgain(ctx, chatID, userID, mfe.Field)
		case errors.As(err, &ste):
			metrics.IncConfirmRejected("slot_taken")
			b.fsm.Transition(sess, booking.StateSelecting)
			b.inputs.get(userID).Step = stepNone
			b.reply(ctx, chatID, fmt.Sprintf(
				"%d slot(s) were just booked by someone else and removed from your selection. Review the grid and check out again.",
				len(ste.Cells)))
			b.sendGrid(ctx, chatID, sess)
		default:
			l.Error().Err(err).Msg("confirm failed")
			b.reply(ctx, chatID, "Something went wrong. Your selection is kept; try again.")
		}
		return
	}

	b.fsm.Transition(sess, booking.StateConfirmed)
	b.answerCallback(cq.ID, "Booking confirmed!")

	for _, bk := range bookings {
		metrics.IncBookingCreated()
		metrics.AddBookingRevenue(bk.Total)
		l.Info().
			Str("booking_id", bk.ID).
			Str("date", bk.Date).
			Int("slots", len(bk.Slots)).
			Int("total", bk.Total).
			Msg("booking created")

		msg := tgbotapi.NewMessage(chatID, formatBookingComplete(bk))
		msg.ParseMode = tgbotapi.ModeMarkdown
		b.send(ctx, msg)
	}

	// Back to the grid; the freshly booked cells now render as taken.
	b.fsm.Transition(sess, booking.StateSlotGrid)
	b.sendGrid(ctx, chatID, sess)
}

// askAgain re-opens the form at the offending field, keeping
// everything else the user already entered.
func (b *Bot) askAgain(ctx context.Context, chatID, userID int64, field string) {
	st := b.inputs.get(userID)
	sess := b.sessions.Get(userID)
	if sess != nil {
		b.fsm.Transition(sess, booking.StateSelecting)
		b.fsm.Transition(sess, booking.StateReviewPending)
		b.fsm.Transition(sess, booking.StateConfirming)
	}
	switch field {
	case "name":
		st.Step = stepName
		b.reply(ctx, chatID, "A name is required. Your full name:")
	case "email":
		st.Step = stepEmail
		b.reply(ctx, chatID, "A valid email is required. Email address:")
	}
}

// --- queries ---

func (b *Bot) handleRecentBookings(ctx context.Context, chatID int64) {
	bookings := b.svc.Ledger().List(b.rules.RecentLimit)
	msg := tgbotapi.NewMessage(chatID, formatRecentBookings(bookings))
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(ctx, msg)
}

func (b *Bot) handleExport(ctx context.Context, chatID, userID int64) {
	if !b.isManager(userID) {
		b.reply(ctx, chatID, "The export is available to managers only.")
		return
	}

	// Oldest first in the workbook.
	all := b.svc.Ledger().List(0)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	var buf bytes.Buffer
	if err := report.WriteLedger(all, &buf); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("ledger export failed")
		b.reply(ctx, chatID, "Export failed.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: buf.Bytes(),
	})
	b.send(ctx, doc)
}

func (b *Bot) isManager(userID int64) bool {
	_, ok := b.managers[userID]
	return ok
}

// --- send helpers ---

func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.tg.Send(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("telegram send failed")
	}
}

func (b *Bot) request(ctx context.Context, msg tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.tg.Request(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("telegram request failed")
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(id, text string) {
	_, _ = b.tg.Request(tgbotapi.NewCallback(id, text))
}

func slotIDs(cells []booking.Cell) []string {
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.SlotID
	}
	return ids
}
