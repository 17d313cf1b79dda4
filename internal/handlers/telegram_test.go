package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"ecoshop/internal/authapi"
	"ecoshop/internal/catalog"
	"ecoshop/internal/match"
	"ecoshop/internal/models"
	"ecoshop/internal/repo"
	"ecoshop/internal/shop"
	"ecoshop/internal/storefront"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

func (f *fakeSender) lastAnswer(t *testing.T) tgbotapi.CallbackConfig {
	t.Helper()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if cb, ok := f.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb
		}
	}
	t.Fatal("no callback answer")
	return tgbotapi.CallbackConfig{}
}

func (f *fakeSender) deleted() int {
	var n int
	for _, r := range f.requests {
		if _, ok := r.(tgbotapi.DeleteMessageConfig); ok {
			n++
		}
	}
	return n
}

type fakeAuth struct {
	loginErr error
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*authapi.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authapi.LoginResult{AccessToken: "tok", User: &models.User{Email: email, FirstName: "Anna"}}, nil
}

func (f *fakeAuth) Me(_ context.Context, token string) (*models.User, error) {
	return &models.User{Email: "anna@example.com", FirstName: "Anna", LastName: "Berg"}, nil
}

func (f *fakeAuth) Register(_ context.Context, r authapi.RegisterRequest) (*models.User, error) {
	return &models.User{Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}, nil
}

func (f *fakeAuth) ConfirmEmail(_ context.Context, token string) error {
	return &authapi.APIError{Status: http.StatusNotFound, Message: "Unbekannter Bestätigungscode"}
}

func newTestHandler(auth *fakeAuth) (*Handler, *fakeSender, *storefront.Storefront) {
	sf := storefront.New(repo.NewProductRepo(), storefront.NewMemorySessions(), storefront.NewMemoryCarts(), auth)
	sender := &fakeSender{}
	return NewHandler(sender, sf), sender, sf
}

func command(chatID int64, text string) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID, UserName: "anna"},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func plainText(chatID int64, s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 11,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      s,
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func buttonTexts(row []tgbotapi.InlineKeyboardButton) []string {
	out := make([]string, 0, len(row))
	for _, b := range row {
		out = append(out, b.Text)
	}
	return out
}

func callbacks(kb tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func TestStartCommand(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	h.HandleUpdate(context.Background(), command(1, "/start"))

	assert.Contains(t, sender.lastText(t), "Willkommen bei EcoShop")
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Contains(t, callbacks(kb), "back_shop")
}

func TestShopPagination(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, command(1, "/shop"))
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, []string{"1/2", "Weiter →"}, buttonTexts(kb.InlineKeyboard[0]))
	assert.Len(t, kb.InlineKeyboard[1], 5)

	h.HandleUpdate(ctx, callback(1, "next_1"))
	edit := sender.sent[1].(tgbotapi.EditMessageTextConfig)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, []string{"← Zurück", "2/2"}, buttonTexts(edit.ReplyMarkup.InlineKeyboard[0]))
	assert.Len(t, edit.ReplyMarkup.InlineKeyboard[1], 3)
	assert.Equal(t, "cb", sender.lastAnswer(t).CallbackQueryID)
}

func TestCategoryAndSortCallbacks(t *testing.T) {
	h, sender, sf := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, callback(1, "cat_4"))
	out := sender.lastText(t)
	assert.Contains(t, out, "Nachhaltige Produkte (2 von 8)")
	assert.Contains(t, out, "Kategorien: Accessories")
	edit := sender.sent[len(sender.sent)-1].(tgbotapi.EditMessageTextConfig)
	require.NotNil(t, edit.ReplyMarkup)
	var labels []string
	for _, row := range edit.ReplyMarkup.InlineKeyboard {
		labels = append(labels, buttonTexts(row)...)
	}
	assert.Contains(t, labels, "✓ Accessories (2)")
	assert.Contains(t, labels, "Food & Beverages (2)")
	assert.Contains(t, out, "Vegan Leather Wallet")
	assert.NotContains(t, out, "Organic Cotton T-Shirt")

	h.HandleUpdate(ctx, callback(1, "sort_price-high"))
	out = sender.lastText(t)
	assert.Less(t, strings.Index(out, "Hemp Backpack"), strings.Index(out, "Vegan Leather Wallet"))

	h.HandleUpdate(ctx, callback(1, "sort_bogus"))
	assert.Equal(t, shop.SortRelevance, sf.State(1).Query.Sort)
	assert.Contains(t, sender.lastText(t), "Sortierung: Best Match")

	h.HandleUpdate(ctx, callback(1, "cat_all"))
	assert.Empty(t, sf.State(1).Query.Categories)
	assert.Contains(t, sender.lastText(t), "Nachhaltige Produkte (8)\n")

	h.HandleUpdate(ctx, callback(1, "cat_99"))
	assert.Empty(t, sf.State(1).Query.Categories)
}

func TestProductCartAndCheckout(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, callback(2, "product_1"))
	out := sender.lastText(t)
	assert.Contains(t, out, "Organic Cotton T-Shirt")
	assert.Contains(t, out, "statt $39.99")

	h.HandleUpdate(ctx, callback(2, "addcart"))
	ans := sender.lastAnswer(t)
	assert.True(t, ans.ShowAlert)
	assert.Equal(t, "Bitte eine Größe wählen.", ans.Text)

	h.HandleUpdate(ctx, callback(2, "size_M"))
	h.HandleUpdate(ctx, callback(2, "color_Black"))
	h.HandleUpdate(ctx, callback(2, "qty_add"))
	assert.Contains(t, sender.lastText(t), "Größe M · Farbe Black")

	h.HandleUpdate(ctx, callback(2, "addcart"))
	assert.Equal(t, "2× in den Warenkorb gelegt", sender.lastAnswer(t).Text)

	h.HandleUpdate(ctx, command(2, "/cart"))
	out = sender.lastText(t)
	assert.Contains(t, out, "Organic Cotton T-Shirt (M, Black) × 2 – $59.98")
	assert.Contains(t, out, "Gesamt: $59.98")

	h.HandleUpdate(ctx, command(2, "/confirm"))
	assert.Contains(t, sender.lastText(t), "Bitte zuerst anmelden")

	h.HandleUpdate(ctx, command(2, "/login anna@example.com|secret1"))
	assert.Equal(t, "Willkommen zurück, Anna!", sender.lastText(t))

	h.HandleUpdate(ctx, command(2, "/confirm"))
	assert.Contains(t, sender.lastText(t), "Bestellung #1 bestätigt")

	h.HandleUpdate(ctx, command(2, "/confirm"))
	assert.Equal(t, "Dein Warenkorb ist leer.", sender.lastText(t))

	h.HandleUpdate(ctx, command(2, "/orders"))
	assert.Contains(t, sender.lastText(t), "#1 – $59.98 – bestätigt")
}

func TestImportanceCallback(t *testing.T) {
	h, sender, sf := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, callback(3, "imp_bio_4"))
	assert.Equal(t, 4, sf.State(3).Importance.Get(catalog.AttrBio))
	assert.Equal(t, "Bio/Organic: Very Important", sender.lastAnswer(t).Text)
	out := sender.lastText(t)
	assert.Contains(t, out, "1 = Not Important\n")
	assert.Contains(t, out, "Bio/Organic: 4 – Very Important")

	h.HandleUpdate(ctx, callback(3, "imp_bio_9"))
	assert.True(t, sender.lastAnswer(t).ShowAlert)
	assert.Equal(t, 4, sf.State(3).Importance.Get(catalog.AttrBio))

	h.HandleUpdate(ctx, command(3, "/summary"))
	assert.Equal(t, "Deine Top-Prioritäten: Bio/Organic", sender.lastText(t))

	h.HandleUpdate(ctx, command(3, "/product 2"))
	out = sender.lastText(t)
	assert.Contains(t, out, "Dein Match: 100% (sehr gut)")
}

func TestLoginMessages(t *testing.T) {
	auth := &fakeAuth{}
	h, sender, _ := newTestHandler(auth)
	ctx := context.Background()

	h.HandleUpdate(ctx, command(4, "/login nur-ein-feld"))
	assert.Equal(t, "Verwende: /login email|passwort", sender.lastText(t))

	h.HandleUpdate(ctx, command(4, "/login foo|123"))
	out := sender.lastText(t)
	assert.Contains(t, out, "Bitte eine gültige E-Mail eingeben")
	assert.Contains(t, out, "Mindestens 6 Zeichen")

	auth.loginErr = &authapi.APIError{Status: http.StatusUnauthorized}
	h.HandleUpdate(ctx, command(4, "/login anna@example.com|secret1"))
	assert.Equal(t, authapi.MsgWrongCredentials, sender.lastText(t))

	auth.loginErr = nil
	h.HandleUpdate(ctx, command(4, "/login anna@example.com|secret1"))
	h.HandleUpdate(ctx, command(4, "/login anna@example.com|secret1"))
	assert.Contains(t, sender.lastText(t), "bereits angemeldet als Anna")

	h.HandleUpdate(ctx, command(4, "/login other@example.com|x"))
	assert.Equal(t, "Du bist bereits angemeldet als Anna. Abmelden mit /logout.", sender.lastText(t))

	assert.Equal(t, 6, sender.deleted())

	h.HandleUpdate(ctx, command(4, "/me"))
	assert.Contains(t, sender.lastText(t), "Nachname: Berg")

	h.HandleUpdate(ctx, command(4, "/logout"))
	h.HandleUpdate(ctx, command(4, "/me"))
	assert.Contains(t, sender.lastText(t), "Bitte zuerst anmelden")
}

func TestPasswordMessageDeletedOnBadFormat(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, command(8, "/login anna@example.com geheim123"))
	assert.Equal(t, "Verwende: /login email|passwort", sender.lastText(t))
	assert.Equal(t, 1, sender.deleted())

	h.HandleUpdate(ctx, command(8, "/register anna@example.com|geheim123|geheim123"))
	assert.Contains(t, sender.lastText(t), "Verwende: /register")
	assert.Equal(t, 2, sender.deleted())

	// без аргументов удалять нечего
	h.HandleUpdate(ctx, command(8, "/login"))
	h.HandleUpdate(ctx, command(8, "/register"))
	assert.Equal(t, 2, sender.deleted())

	del := sender.requests[0].(tgbotapi.DeleteMessageConfig)
	assert.Equal(t, int64(8), del.ChatID)
	assert.Equal(t, 10, del.MessageID)
}

func TestRegisterAndVerify(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, command(5, "/register a@b.de|secret1|secret1|Anna|Berg"))
	assert.Equal(t, "Bitte den Nutzungsbedingungen zustimmen", sender.lastText(t))

	h.HandleUpdate(ctx, command(5, "/register a@b.de|secret1|secret2|Anna|Berg|ja"))
	assert.Equal(t, "Passwörter stimmen nicht überein", sender.lastText(t))

	h.HandleUpdate(ctx, command(5, "/register a@b.de|secret1|secret1|Anna|Berg|ja"))
	assert.Contains(t, sender.lastText(t), "Konto für a@b.de angelegt")

	h.HandleUpdate(ctx, command(5, "/verify abc"))
	assert.Equal(t, "Bestätigung fehlgeschlagen: Unbekannter Bestätigungscode", sender.lastText(t))
}

func TestSearchSecondMessage(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, command(6, "/search"))
	assert.Contains(t, sender.lastText(t), "Suchbegriff eingeben")

	h.HandleUpdate(ctx, plainText(6, "bamboo"))
	assert.Contains(t, sender.lastText(t), "ID2 Bamboo Toothbrush Set – $12.99")

	h.HandleUpdate(ctx, plainText(6, "bamboo"))
	assert.Contains(t, sender.lastText(t), "Unbekannte Eingabe")

	h.HandleUpdate(ctx, command(6, "/search kein-treffer"))
	assert.Contains(t, sender.lastText(t), "keine Produkte gefunden")
}

func TestContactAndUnknownCommand(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeAuth{})
	ctx := context.Background()

	h.HandleUpdate(ctx, command(7, "/contact Anna|anna@example.com|Hallo Team"))
	assert.Equal(t, "Danke für deine Nachricht, Anna! Wir melden uns bald unter anna@example.com.", sender.lastText(t))

	h.HandleUpdate(ctx, command(7, "/contact Hallo Team"))
	assert.Equal(t, "Verwende: /contact name|email|nachricht", sender.lastText(t))

	h.HandleUpdate(ctx, command(7, "/contact"))
	assert.Equal(t, "Verwende: /contact name|email|nachricht", sender.lastText(t))

	h.HandleUpdate(ctx, command(7, "/contact  |keine-mail| "))
	assert.Equal(t, "Name fehlt\nBitte eine gültige E-Mail eingeben\nNachricht fehlt", sender.lastText(t))

	h.HandleUpdate(ctx, command(7, "/about"))
	assert.Contains(t, sender.lastText(t), "Über EcoShop")
	assert.Contains(t, sender.lastText(t), "info@ecoshop.com")

	h.HandleUpdate(ctx, command(7, "/nope"))
	assert.Contains(t, sender.lastText(t), "Unbekannter Befehl")

	h.HandleUpdate(ctx, command(7, "/product abc"))
	assert.Contains(t, sender.lastText(t), "/product <id>")

	h.HandleUpdate(ctx, command(7, "/product 99"))
	assert.Equal(t, "Produkt nicht gefunden.", sender.lastText(t))
}

func TestProductKeyboard(t *testing.T) {
	p, err := repo.NewProductRepo().ProductByID(1)
	require.NoError(t, err)
	view := &storefront.ProductView{
		Product:   *p,
		Selection: storefront.Selection{ProductID: 1, Size: "L", Quantity: 2},
	}
	kb := CreateProductKeyboard(view)
	assert.Contains(t, buttonTexts(kb.InlineKeyboard[0]), "✓ L")
	assert.Contains(t, callbacks(kb), "qty_del")
	assert.Contains(t, callbacks(kb), "addcart")

	view.Product.InStock = false
	view.Selection.Quantity = 1
	kb = CreateProductKeyboard(view)
	assert.NotContains(t, callbacks(kb), "addcart")
	assert.NotContains(t, callbacks(kb), "qty_del")
}

func TestImportanceKeyboard(t *testing.T) {
	imp := match.DefaultImportance()
	require.NoError(t, imp.Set(catalog.AttrVegan, 3))
	kb := CreateImportanceKeyboard(imp)

	// две строки на атрибут плюс навигация
	require.Len(t, kb.InlineKeyboard, 2*len(catalog.Attributes())+1)
	assert.Equal(t, []string{"[1]", "2", "3", "4"}, buttonTexts(kb.InlineKeyboard[1]))
	assert.Contains(t, callbacks(kb), "imp_vegan_3")

	var veganRow []string
	for i, attr := range catalog.Attributes() {
		if attr.Key == catalog.AttrVegan {
			veganRow = buttonTexts(kb.InlineKeyboard[2*i+1])
		}
	}
	assert.Equal(t, []string{"1", "2", "[3]", "4"}, veganRow)
}

func TestParseImportance(t *testing.T) {
	key, v, err := parseImportance("imp_ethical-work_3")
	require.NoError(t, err)
	assert.Equal(t, "ethical-work", key)
	assert.Equal(t, 3, v)

	_, _, err = parseImportance("imp_bio")
	assert.Error(t, err)
	_, _, err = parseImportance("imp_bio_x")
	assert.Error(t, err)
}

func TestFormatListingHidesZeroMatch(t *testing.T) {
	p, err := repo.NewProductRepo().ProductByID(3)
	require.NoError(t, err)

	out := formatListing(shop.Listing{Product: *p})
	assert.NotContains(t, out, "Match")
	out = formatListing(shop.Listing{Product: *p, Match: match.ListingScore{Score: 1, Total: 2, Percentage: 50}})
	assert.Contains(t, out, "50% Match")
}
