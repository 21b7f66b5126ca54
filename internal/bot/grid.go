package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"deskbook/internal/booking"
	"deskbook/internal/catalog"
	"deskbook/internal/schedule"
)

// cellCallback encodes a grid cell as callback data. Dates and slot
// ids never contain ':'.
func cellCallback(date, slotID string) string {
	return fmt.Sprintf("cell:%s:%s", date, slotID)
}

// parseCellCallback is the inverse of cellCallback.
func parseCellCallback(data string) (date, slotID string, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != "cell" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// dayKeyboard builds the slot keyboard for one date. Booked cells are
// marked ⛔, selected ones ✅, free ones show their price.
func dayKeyboard(date string, cat *catalog.Catalog, avail booking.Availability, sess *booking.Session) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)

	var currentRow []tgbotapi.InlineKeyboardButton
	for _, slot := range cat.Slots() {
		var text string
		switch {
		case avail.IsBooked(date, slot.ID):
			text = "⛔ " + slot.ID
		case sess != nil && sess.Selected(date, slot.ID):
			text = "✅ " + slot.ID
		default:
			text = fmt.Sprintf("%s · $%d", slot.ID, slot.Price)
		}
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(text, cellCallback(date, slot.ID)))
		if len(currentRow) == 3 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// checkoutKeyboard is the control row sent after the grid.
func checkoutKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Checkout", "checkout"),
		),
	)
}

// reviewKeyboard offers to enter contact details or go back to the
// grid without losing the selection.
func reviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Enter details", "details"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back:grid"),
		),
	)
}

// confirmKeyboard is the final confirm/cancel pair.
func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
		),
	)
}

// formatSelectionSummary renders the selected cells with per-cell
// prices and the grand total.
func formatSelectionSummary(cells []booking.Cell, cat *catalog.Catalog) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Selected slots:*\n\n")

	total := 0
	for _, c := range cells {
		slot, _ := cat.Get(c.SlotID)
		label := slot.Label
		if label == "" {
			label = c.SlotID
		}
		price := cat.PriceOf(c.SlotID)
		total += price
		fmt.Fprintf(&sb, "%s — %s · $%d\n", schedule.FormatDay(c.Date), label, price)
	}

	fmt.Fprintf(&sb, "\n💰 *Total: $%d*", total)
	return sb.String()
}

// formatBookingConfirmation renders the final review before confirm.
func formatBookingConfirmation(cells []booking.Cell, cat *catalog.Catalog, customer booking.Customer) string {
	phone := customer.Phone
	if phone == "" {
		phone = "—"
	}
	return fmt.Sprintf(`📋 *Booking details:*

👤 *Name:* %s
📧 *Email:* %s
📞 *Phone:* %s

%s

Confirm?`,
		customer.Name,
		customer.Email,
		phone,
		formatSelectionSummary(cells, cat),
	)
}

// formatBookingComplete renders one confirmed booking record.
func formatBookingComplete(b booking.Booking) string {
	return fmt.Sprintf(`✅ *Booking confirmed*

📅 %s
⏰ %s
👤 %s
💰 $%d`,
		schedule.FormatDay(b.Date),
		b.SlotList(),
		b.Customer.Name,
		b.Total,
	)
}

// formatRecentBookings renders the newest-first booking list.
func formatRecentBookings(bookings []booking.Booking) string {
	if len(bookings) == 0 {
		return "No bookings yet."
	}

	var sb strings.Builder
	sb.WriteString("📌 *Recent bookings:*\n")
	for _, b := range bookings {
		fmt.Fprintf(&sb, "\n%s — %d slot(s) — %s — $%d\n  booked %s\n",
			schedule.FormatDay(b.Date),
			len(b.Slots),
			b.Customer.Name,
			b.Total,
			b.BookedAt.Format("Jan 2 15:04"),
		)
	}
	return sb.String()
}
