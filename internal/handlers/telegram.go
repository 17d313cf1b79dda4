package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ecoshop/internal/authapi"
	"ecoshop/internal/catalog"
	"ecoshop/internal/log"
	"ecoshop/internal/match"
	"ecoshop/internal/repo"
	"ecoshop/internal/shop"
	"ecoshop/internal/storefront"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of *tgbotapi.BotAPI the handler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

const helpText = `Befehle:
/shop – Produkte durchsuchen
/product <id> – Produktdetails und dein Match
/search <text> – Produktsuche
/prefs – Nachhaltigkeits-Präferenzen festlegen
/summary – deine Top-Prioritäten
/login email|passwort – anmelden
/logout – abmelden
/me – Profil anzeigen
/register email|passwort|passwort|vorname|nachname|ja – Konto anlegen (ja = Nutzungsbedingungen akzeptiert)
/verify <token> – E-Mail bestätigen
/cart – Warenkorb
/confirm – Bestellung abschließen
/orders – deine Bestellungen
/contact name|email|nachricht – Nachricht an uns
/about – über EcoShop`

const aboutText = `Über EcoShop 🌿
Unser Ziel: nachhaltiges Einkaufen für alle einfach machen.

Jeder Einkauf hat Wirkung. Wir prüfen Lieferanten und Produkte auf Nachhaltigkeit, faire Produktion und Umweltverantwortung.
Mit dem Nachhaltigkeits-Match legst du unter /prefs fest, was dir wichtig ist: Bio-Materialien, faire Arbeit, CO2-Neutralität oder plastikfreie Verpackung.

Kontakt: info@ecoshop.com · +1 (555) 123-4567`

const startText = "Willkommen bei EcoShop! 🌿\nFinde nachhaltige Produkte, die zu deinen Werten passen.\n\n" + helpText

type Handler struct {
	bot  Sender
	shop *storefront.Storefront
	log  zerolog.Logger

	waitingSearch map[int64]bool // поиск товара 2м сообщением
}

func NewHandler(bot Sender, sf *storefront.Storefront) *Handler {
	return &Handler{
		bot:           bot,
		shop:          sf,
		log:           log.WithComponent("bot"),
		waitingSearch: make(map[int64]bool),
	}
}

// HandleUpdates reads updates until ctx is cancelled. Updates are handled
// one at a time, so the handler's own state needs no locking.
func HandleUpdates(ctx context.Context, bot *tgbotapi.BotAPI, sf *storefront.Storefront) {
	h := NewHandler(bot, sf)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}
	h.handleMessage(ctx, update.Message)
}

func (h *Handler) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	var action string

	switch {
	case h.waitingSearch[chatID] && !m.IsCommand(): // поиск вторым сообщением
		action = "search 2nd msg"
		delete(h.waitingSearch, chatID)
		h.reply(chatID, h.searchText(m.Text))

	case m.IsCommand():
		action = m.Command()
		delete(h.waitingSearch, chatID)
		h.handleCommand(ctx, m)

	default:
		action = "text"
		h.reply(chatID, "Unbekannte Eingabe. /help zeigt alle Befehle.")
	}

	ev := h.log.Info().Int64("chat_id", chatID).Str("action", action)
	if m.From != nil {
		ev = ev.Int64("user_id", m.From.ID).Str("username", userName(m.From))
	}
	ev.Msg("message")
}

func (h *Handler) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())

	switch m.Command() {
	case "start":
		h.show(chatID, 0, startText, keyboardPtr(CreateStartKeyboard()))

	case "help":
		h.reply(chatID, helpText)

	case "shop":
		h.showShop(chatID, 0, 1)

	case "product":
		id, err := strconv.Atoi(strings.TrimPrefix(args, "ID"))
		if err != nil {
			h.reply(chatID, "Bitte eine Produkt-ID angeben: /product <id>")
			return
		}
		h.showProduct(chatID, 0, id)

	case "search":
		if args == "" {
			h.waitingSearch[chatID] = true
			h.reply(chatID, "Wonach suchst du? Suchbegriff eingeben:")
			return
		}
		h.reply(chatID, h.searchText(args))

	case "prefs":
		h.showPreferences(chatID, 0)

	case "summary":
		h.reply(chatID, formatSummary(h.shop.Summary(chatID)))

	case "login":
		h.login(ctx, m, args)

	case "logout":
		if err := h.shop.Logout(ctx, chatID); err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("logout")
			h.reply(chatID, errorText(err))
			return
		}
		h.reply(chatID, "Du wurdest abgemeldet.")

	case "me":
		u, err := h.shop.Me(ctx, chatID)
		if err != nil {
			h.reply(chatID, errorText(err))
			return
		}
		h.reply(chatID, formatUser(*u))

	case "register":
		h.register(ctx, m, args)

	case "verify":
		if args == "" {
			h.reply(chatID, "Bitte den Bestätigungscode angeben: /verify <token>")
			return
		}
		if err := h.shop.VerifyEmail(ctx, args); err != nil {
			h.reply(chatID, "Bestätigung fehlgeschlagen: "+apiErrorText(err))
			return
		}
		h.reply(chatID, "E-Mail bestätigt. Du kannst dich jetzt mit /login anmelden.")

	case "cart":
		h.showCart(ctx, chatID, 0)

	case "confirm":
		h.confirm(ctx, chatID)

	case "orders":
		orders, err := h.shop.Orders(ctx, chatID)
		if err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("load orders")
			h.reply(chatID, errorText(err))
			return
		}
		h.reply(chatID, formatOrders(orders))

	case "contact":
		h.contact(chatID, args)

	case "about":
		h.reply(chatID, aboutText)

	default:
		h.reply(chatID, "Unbekannter Befehl. /help zeigt alle Befehle.")
	}
}

func (h *Handler) login(ctx context.Context, m *tgbotapi.Message, args string) {
	chatID := m.Chat.ID
	// сообщение с паролем не оставляем в чате, даже если формат неверный
	h.deleteSecret(m, args)
	parts := strings.SplitN(args, "|", 2)
	if len(parts) != 2 {
		h.reply(chatID, "Verwende: /login email|passwort")
		return
	}

	s, err := h.shop.Login(ctx, chatID, parts[0], parts[1])
	switch {
	case errors.Is(err, storefront.ErrAlreadySignedIn):
		text := "Du bist bereits angemeldet. Abmelden mit /logout."
		if cur, err := h.shop.CurrentSession(ctx, chatID); err == nil {
			text = fmt.Sprintf("Du bist bereits angemeldet als %s. Abmelden mit /logout.", cur.User.DisplayName())
		}
		h.reply(chatID, text)
	case err != nil:
		var fields authapi.FieldErrors
		if errors.As(err, &fields) {
			h.reply(chatID, fields.Error())
			return
		}
		h.reply(chatID, authapi.UserMessage(err))
	default:
		h.reply(chatID, fmt.Sprintf("Willkommen zurück, %s!", s.User.DisplayName()))
	}
}

func (h *Handler) register(ctx context.Context, m *tgbotapi.Message, args string) {
	chatID := m.Chat.ID
	h.deleteSecret(m, args)
	parts := strings.Split(args, "|")
	if len(parts) < 5 || len(parts) > 6 {
		h.reply(chatID, "Verwende: /register email|passwort|passwort|vorname|nachname|ja")
		return
	}
	form := authapi.RegistrationForm{
		Email:           strings.TrimSpace(parts[0]),
		Password:        parts[1],
		ConfirmPassword: parts[2],
		FirstName:       parts[3],
		LastName:        parts[4],
		AgreeToTerms:    len(parts) == 6 && strings.EqualFold(strings.TrimSpace(parts[5]), "ja"),
	}
	u, err := h.shop.Register(ctx, form)
	if err != nil {
		var fields authapi.FieldErrors
		if errors.As(err, &fields) {
			h.reply(chatID, fields.Error())
			return
		}
		h.reply(chatID, "Registrierung fehlgeschlagen: "+apiErrorText(err))
		return
	}
	h.reply(chatID, fmt.Sprintf(
		"Konto für %s angelegt. Bitte bestätige deine E-Mail mit /verify <token> und melde dich dann mit /login an.", u.Email))
}

// deleteSecret removes a command message that may carry a password.
func (h *Handler) deleteSecret(m *tgbotapi.Message, args string) {
	if args == "" {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(m.Chat.ID, m.MessageID)); err != nil {
		h.log.Debug().Err(err).Str("command", m.Command()).Msg("delete message")
	}
}

func (h *Handler) contact(chatID int64, args string) {
	parts := strings.SplitN(args, "|", 3)
	if len(parts) != 3 {
		h.reply(chatID, "Verwende: /contact name|email|nachricht")
		return
	}
	form := authapi.ContactForm{
		Name:    strings.TrimSpace(parts[0]),
		Email:   strings.TrimSpace(parts[1]),
		Message: strings.TrimSpace(parts[2]),
	}
	if err := authapi.ValidateContact(form); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.log.Info().Int64("chat_id", chatID).
		Str("name", form.Name).
		Str("email", form.Email).
		Str("message", form.Message).
		Msg("contact message")
	h.reply(chatID, fmt.Sprintf("Danke für deine Nachricht, %s! Wir melden uns bald unter %s.", form.Name, form.Email))
}

func (h *Handler) confirm(ctx context.Context, chatID int64) {
	if _, err := h.shop.CurrentSession(ctx, chatID); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	id, err := h.shop.ConfirmCart(ctx, chatID)
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.log.Info().Int64("chat_id", chatID).Int("order_id", id).Msg("order confirmed")
	h.reply(chatID, fmt.Sprintf("Bestellung #%d bestätigt. Vielen Dank für deinen nachhaltigen Einkauf!", id))
}

func (h *Handler) searchText(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Leerer Suchbegriff."
	}
	return formatSearch(query, h.shop.Search(query))
}

func (h *Handler) showShop(chatID int64, messageID, page int) {
	p := h.shop.Listing(chatID, page)
	h.show(chatID, messageID, formatShop(p), keyboardPtr(CreateShopKeyboard(p)))
}

func (h *Handler) showProduct(chatID int64, messageID, productID int) {
	view, err := h.shop.Product(chatID, productID)
	if err != nil {
		h.show(chatID, messageID, errorText(err), nil)
		return
	}
	h.show(chatID, messageID, formatProductView(view), keyboardPtr(CreateProductKeyboard(view)))
}

func (h *Handler) showPreferences(chatID int64, messageID int) {
	imp := h.shop.State(chatID).Importance
	h.show(chatID, messageID, formatImportance(imp), keyboardPtr(CreateImportanceKeyboard(imp)))
}

func (h *Handler) showCart(ctx context.Context, chatID int64, messageID int) {
	cart, err := h.shop.Cart(ctx, chatID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("load cart")
		h.show(chatID, messageID, errorText(err), nil)
		return
	}
	var kb *tgbotapi.InlineKeyboardMarkup
	if cart != nil && len(cart.Items) > 0 {
		kb = keyboardPtr(CreateCartKeyboard())
	}
	h.show(chatID, messageID, formatCart(cart, h.shop.ProductByID), kb)
}

func (h *Handler) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) { // обработка нажатий на кнопки
	if callback.Message == nil {
		h.answer(callback.ID, "", false)
		return
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data
	answer, alert := "", false

	switch {
	case data == "current":

	case data == "start":
		h.show(chatID, messageID, startText, keyboardPtr(CreateStartKeyboard()))

	case data == "back_shop":
		h.showShop(chatID, messageID, 0)

	case strings.HasPrefix(data, "prev_"), strings.HasPrefix(data, "next_"):
		page, err := strconv.Atoi(data[len("next_"):])
		if err != nil {
			h.log.Warn().Str("data", data).Msg("bad page callback")
			break
		}
		if strings.HasPrefix(data, "prev_") {
			page--
		} else {
			page++
		}
		h.showShop(chatID, messageID, page)

	case data == "cat_all":
		h.shop.ClearCategories(chatID)
		h.showShop(chatID, messageID, 1)

	case strings.HasPrefix(data, "cat_"):
		categories := catalog.Categories()
		i, err := strconv.Atoi(strings.TrimPrefix(data, "cat_"))
		if err != nil || i < 0 || i >= len(categories) {
			h.log.Warn().Str("data", data).Msg("bad category callback")
			break
		}
		h.shop.ToggleCategory(chatID, categories[i])
		h.showShop(chatID, messageID, 1)

	case strings.HasPrefix(data, "sort_"):
		h.shop.SetSort(chatID, shop.SortOrder(strings.TrimPrefix(data, "sort_")))
		h.showShop(chatID, messageID, 1)

	case strings.HasPrefix(data, "product_"):
		id, err := strconv.Atoi(strings.TrimPrefix(data, "product_"))
		if err != nil {
			h.log.Warn().Str("data", data).Msg("bad product callback")
			break
		}
		h.showProduct(chatID, messageID, id)

	case data == "prefs":
		h.showPreferences(chatID, messageID)

	case strings.HasPrefix(data, "imp_"):
		key, value, err := parseImportance(data)
		if err == nil {
			err = h.shop.SetImportance(chatID, key, value)
		}
		if err != nil {
			answer, alert = "Ungültige Bewertung.", true
			break
		}
		answer = fmt.Sprintf("%s: %s", catalog.Label(key), catalog.ImportanceLabel(value))
		h.showPreferences(chatID, messageID)

	case strings.HasPrefix(data, "size_"), strings.HasPrefix(data, "color_"),
		data == "qty_add", data == "qty_del":
		if err := h.changeSelection(chatID, data); err != nil {
			answer, alert = errorText(err), true
			break
		}
		h.showProduct(chatID, messageID, h.shop.State(chatID).Selection.ProductID)

	case data == "addcart":
		item, err := h.shop.AddToCart(ctx, chatID)
		if err != nil {
			answer, alert = errorText(err), true
			break
		}
		answer = fmt.Sprintf("%d× in den Warenkorb gelegt", item.Quantity)
		h.showProduct(chatID, messageID, item.ProductID)

	case data == "cart":
		h.showCart(ctx, chatID, messageID)

	case data == "confirm":
		h.confirm(ctx, chatID)

	default:
		h.log.Warn().Str("data", data).Msg("unknown callback")
	}

	h.answer(callback.ID, answer, alert)
	ev := h.log.Info().Int64("chat_id", chatID).Str("action", data)
	if callback.From != nil {
		ev = ev.Int64("user_id", callback.From.ID).Str("username", userName(callback.From))
	}
	ev.Msg("callback")
}

func (h *Handler) changeSelection(chatID int64, data string) error {
	switch {
	case strings.HasPrefix(data, "size_"):
		return h.shop.SelectSize(chatID, strings.TrimPrefix(data, "size_"))
	case strings.HasPrefix(data, "color_"):
		return h.shop.SelectColor(chatID, strings.TrimPrefix(data, "color_"))
	case data == "qty_add":
		return h.shop.ChangeQuantity(chatID, 1)
	default:
		return h.shop.ChangeQuantity(chatID, -1)
	}
}

// parseImportance splits "imp_<attribute>_<value>".
func parseImportance(data string) (string, int, error) {
	rest := strings.TrimPrefix(data, "imp_")
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", 0, match.ErrInvalidImportance
	}
	v, err := match.ParseImportance(rest[i+1:])
	if err != nil {
		return "", 0, err
	}
	return rest[:i], v, nil
}

// errorText is the chat reply for an error from the storefront.
func errorText(err error) string {
	var fields authapi.FieldErrors
	switch {
	case errors.As(err, &fields):
		return fields.Error()
	case errors.Is(err, storefront.ErrNotSignedIn):
		return "Bitte zuerst anmelden: /login email|passwort"
	case errors.Is(err, storefront.ErrNoSelection):
		return "Bitte zuerst ein Produkt öffnen."
	case errors.Is(err, storefront.ErrSizeRequired):
		return "Bitte eine Größe wählen."
	case errors.Is(err, storefront.ErrColorRequired):
		return "Bitte eine Farbe wählen."
	case errors.Is(err, storefront.ErrOutOfStock):
		return "Dieses Produkt ist nicht vorrätig."
	case errors.Is(err, storefront.ErrUnknownOption):
		return "Diese Option gibt es für das Produkt nicht."
	case errors.Is(err, repo.ErrProductNotFound):
		return "Produkt nicht gefunden."
	case errors.Is(err, repo.ErrNoOpenCart):
		return "Dein Warenkorb ist leer."
	}
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		return authapi.UserMessage(err)
	}
	return "Etwas ist schiefgelaufen. Bitte später erneut versuchen."
}

// apiErrorText prefers the server's own message for register and verify.
func apiErrorText(err error) string {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.As(err, &apiErr) || errors.Is(err, context.DeadlineExceeded) {
		return authapi.UserMessage(err)
	}
	return errorText(err)
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

// show edits the message when messageID is set, otherwise sends a new one.
func (h *Handler) show(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
		msg.ReplyMarkup = keyboard
		h.send(msg)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.log.Error().Err(err).Msg("send message")
	}
}

func (h *Handler) answer(callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := h.bot.Request(cb); err != nil {
		h.log.Debug().Err(err).Msg("answer callback")
	}
}

func keyboardPtr(k tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &k
}

func userName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
