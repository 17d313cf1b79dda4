// Package storefront holds the per-chat shop state and the use cases the
// bot exposes: browsing, product detail, preferences, account and cart.
package storefront

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"ecoshop/internal/authapi"
	"ecoshop/internal/catalog"
	"ecoshop/internal/log"
	"ecoshop/internal/match"
	"ecoshop/internal/models"
	"ecoshop/internal/repo"
	"ecoshop/internal/shop"

	"github.com/rs/zerolog"
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrAlreadySignedIn = errors.New("already signed in")
	ErrNoSelection     = errors.New("no product selected")
	ErrSizeRequired    = errors.New("size required")
	ErrColorRequired   = errors.New("color required")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrUnknownOption   = errors.New("unknown product option")
)

type SessionStore interface {
	SaveSession(ctx context.Context, s *models.Session) error
	Session(ctx context.Context, chatID int64) (*models.Session, error)
	DeleteSession(ctx context.Context, chatID int64) error
}

type CartStore interface {
	OpenCart(ctx context.Context, chatID int64) (*models.Order, error)
	AddItemToCart(ctx context.Context, item models.OrderItem) error
	DetailCart(ctx context.Context, chatID int64) (*models.OrderWithItems, error)
	ConfirmOrder(ctx context.Context, chatID int64) (int, error)
	UserOrders(ctx context.Context, chatID int64) ([]models.Order, error)
}

type AuthClient interface {
	Login(ctx context.Context, email, password string) (*authapi.LoginResult, error)
	Me(ctx context.Context, token string) (*models.User, error)
	Register(ctx context.Context, r authapi.RegisterRequest) (*models.User, error)
	ConfirmEmail(ctx context.Context, token string) error
}

var (
	_ SessionStore = (*repo.SessionRepo)(nil)
	_ CartStore    = (*repo.OrderRepo)(nil)
	_ AuthClient   = (*authapi.Client)(nil)
)

// Selection is the add-to-cart form of the product page.
type Selection struct {
	ProductID int
	Size      string
	Color     string
	Quantity  int
}

// ChatState is the transient UI state of one chat. Nothing in it is
// persisted; a restart resets every chat to the defaults.
type ChatState struct {
	Query      shop.Query
	Importance match.Importance
	Page       int
	Selection  Selection
}

func newChatState() *ChatState {
	return &ChatState{
		Query:      shop.Query{Sort: shop.SortRelevance},
		Importance: match.DefaultImportance(),
		Page:       1,
	}
}

func (s *ChatState) clone() ChatState {
	out := *s
	out.Query.Categories = append([]string(nil), s.Query.Categories...)
	out.Importance = s.Importance.Clone()
	return out
}

type Storefront struct {
	products *repo.ProductRepo
	sessions SessionStore
	carts    CartStore
	auth     AuthClient
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	states map[int64]*ChatState
}

func New(products *repo.ProductRepo, sessions SessionStore, carts CartStore, auth AuthClient) *Storefront {
	return &Storefront{
		products: products,
		sessions: sessions,
		carts:    carts,
		auth:     auth,
		log:      log.WithComponent("storefront"),
		now:      time.Now,
		states:   make(map[int64]*ChatState),
	}
}

// update runs fn on the chat's state under the lock.
func (sf *Storefront) update(chatID int64, fn func(*ChatState) error) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	st, ok := sf.states[chatID]
	if !ok {
		st = newChatState()
		sf.states[chatID] = st
	}
	return fn(st)
}

// State returns a copy of the chat's state.
func (sf *Storefront) State(chatID int64) ChatState {
	var out ChatState
	_ = sf.update(chatID, func(st *ChatState) error {
		out = st.clone()
		return nil
	})
	return out
}

func (sf *Storefront) reset(chatID int64) {
	sf.mu.Lock()
	delete(sf.states, chatID)
	sf.mu.Unlock()
}

func (sf *Storefront) SetImportance(chatID int64, attribute string, value int) error {
	return sf.update(chatID, func(st *ChatState) error {
		return st.Importance.Set(attribute, value)
	})
}

func (sf *Storefront) ToggleCategory(chatID int64, category string) {
	_ = sf.update(chatID, func(st *ChatState) error {
		st.Query.ToggleCategory(category)
		st.Page = 1
		return nil
	})
}

func (sf *Storefront) ClearCategories(chatID int64) {
	_ = sf.update(chatID, func(st *ChatState) error {
		st.Query.Categories = nil
		st.Page = 1
		return nil
	})
}

// SetSort switches the listing order; unknown orders select relevance.
func (sf *Storefront) SetSort(chatID int64, order shop.SortOrder) {
	if !order.Valid() {
		order = shop.SortRelevance
	}
	_ = sf.update(chatID, func(st *ChatState) error {
		st.Query.Sort = order
		st.Page = 1
		return nil
	})
}

type ListingPage struct {
	Items []shop.Listing
	Total int // товаров в каталоге без фильтра
	Page  int
	Pages int
	Count int
	Query shop.Query

	CategoryCounts map[string]int
}

// Listing returns the requested page of the chat's shop listing; page 0
// keeps the current page.
func (sf *Storefront) Listing(chatID int64, page int) ListingPage {
	var out ListingPage
	_ = sf.update(chatID, func(st *ChatState) error {
		if page == 0 {
			page = st.Page
		}
		all := shop.List(sf.products.AllProducts(), st.Query, st.Importance)
		out.Items, out.Page = shop.Page(all, page)
		st.Page = out.Page
		out.Pages = shop.Pages(len(all))
		out.Count = len(all)
		out.Total = sf.products.CountProducts()
		out.CategoryCounts = sf.CategoryCounts()
		out.Query = shop.Query{
			Categories: append([]string(nil), st.Query.Categories...),
			Sort:       st.Query.Sort,
		}
		return nil
	})
	return out
}

// CategoryCounts returns the number of products per catalog category.
func (sf *Storefront) CategoryCounts() map[string]int {
	out := make(map[string]int)
	for _, c := range catalog.Categories() {
		out[c] = len(sf.products.ProductsByCategory(c))
	}
	return out
}

type ProductView struct {
	Product   models.Product
	Detail    match.DetailScore
	Breakdown []match.BreakdownLine
	Band      match.Band
	Selection Selection
}

// Product opens the detail page and starts a fresh add-to-cart selection.
func (sf *Storefront) Product(chatID int64, productID int) (*ProductView, error) {
	p, err := sf.products.ProductByID(productID)
	if err != nil {
		return nil, err
	}
	view := &ProductView{Product: *p}
	_ = sf.update(chatID, func(st *ChatState) error {
		if st.Selection.ProductID != productID {
			st.Selection = Selection{ProductID: productID, Quantity: 1}
		}
		view.Detail = match.Detail(p.Attributes, st.Importance)
		view.Breakdown = match.Breakdown(p.Attributes, st.Importance)
		view.Selection = st.Selection
		return nil
	})
	view.Band = match.BandFor(view.Detail.Percentage)
	return view, nil
}

func (sf *Storefront) Summary(chatID int64) []string {
	return match.Summary(sf.State(chatID).Importance)
}

// CurrentSession returns the chat's session. An expired token ends the
// session.
func (sf *Storefront) CurrentSession(ctx context.Context, chatID int64) (*models.Session, error) {
	s, err := sf.sessions.Session(ctx, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, err
	}
	if authapi.TokenExpired(s.Token, sf.now()) {
		sf.log.Info().Int64("chat_id", chatID).Msg("session token expired")
		if err := sf.sessions.DeleteSession(ctx, chatID); err != nil {
			return nil, err
		}
		return nil, ErrNotSignedIn
	}
	return s, nil
}

func (sf *Storefront) Login(ctx context.Context, chatID int64, email, password string) (*models.Session, error) {
	if _, err := sf.CurrentSession(ctx, chatID); err == nil {
		return nil, ErrAlreadySignedIn
	} else if !errors.Is(err, ErrNotSignedIn) {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if err := authapi.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	res, err := sf.auth.Login(ctx, email, password)
	if err != nil {
		sf.log.Info().Int64("chat_id", chatID).Err(err).Msg("login failed")
		return nil, err
	}

	user := models.User{Email: email}
	if res.User != nil {
		user = *res.User
	} else if me, err := sf.auth.Me(ctx, res.AccessToken); err == nil {
		user = *me
	} else {
		sf.log.Warn().Err(err).Msg("load profile after login")
	}
	if user.Email == "" {
		user.Email = email
	}

	s := &models.Session{ChatID: chatID, Token: res.AccessToken, User: user}
	if err := sf.sessions.SaveSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (sf *Storefront) Logout(ctx context.Context, chatID int64) error {
	sf.reset(chatID)
	return sf.sessions.DeleteSession(ctx, chatID)
}

// Me reloads the profile from the account API and stores it in the session.
func (sf *Storefront) Me(ctx context.Context, chatID int64) (*models.User, error) {
	s, err := sf.CurrentSession(ctx, chatID)
	if err != nil {
		return nil, err
	}
	u, err := sf.auth.Me(ctx, s.Token)
	if err != nil {
		return nil, err
	}
	s.User = *u
	if err := sf.sessions.SaveSession(ctx, s); err != nil {
		return nil, err
	}
	return u, nil
}

func (sf *Storefront) Register(ctx context.Context, form authapi.RegistrationForm) (*models.User, error) {
	if err := authapi.ValidateRegistration(form); err != nil {
		return nil, err
	}
	return sf.auth.Register(ctx, form.Request())
}

func (sf *Storefront) VerifyEmail(ctx context.Context, token string) error {
	return sf.auth.ConfirmEmail(ctx, token)
}

func (sf *Storefront) SelectSize(chatID int64, size string) error {
	return sf.updateSelection(chatID, func(p *models.Product, sel *Selection) error {
		if !contains(p.Sizes, size) {
			return ErrUnknownOption
		}
		sel.Size = size
		return nil
	})
}

func (sf *Storefront) SelectColor(chatID int64, color string) error {
	return sf.updateSelection(chatID, func(p *models.Product, sel *Selection) error {
		if !contains(p.Colors, color) {
			return ErrUnknownOption
		}
		sel.Color = color
		return nil
	})
}

// ChangeQuantity adds delta to the selected quantity, never below 1.
func (sf *Storefront) ChangeQuantity(chatID int64, delta int) error {
	return sf.updateSelection(chatID, func(_ *models.Product, sel *Selection) error {
		sel.Quantity = max(1, sel.Quantity+delta)
		return nil
	})
}

func (sf *Storefront) updateSelection(chatID int64, fn func(*models.Product, *Selection) error) error {
	return sf.update(chatID, func(st *ChatState) error {
		if st.Selection.ProductID == 0 {
			return ErrNoSelection
		}
		p, err := sf.products.ProductByID(st.Selection.ProductID)
		if err != nil {
			return err
		}
		return fn(p, &st.Selection)
	})
}

// AddToCart puts the current selection into the chat's cart. Size and
// color are required when the product offers them.
func (sf *Storefront) AddToCart(ctx context.Context, chatID int64) (*models.OrderItem, error) {
	sel := sf.State(chatID).Selection
	if sel.ProductID == 0 {
		return nil, ErrNoSelection
	}
	p, err := sf.products.ProductByID(sel.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.InStock {
		return nil, ErrOutOfStock
	}
	if len(p.Sizes) > 0 && sel.Size == "" {
		return nil, ErrSizeRequired
	}
	if len(p.Colors) > 0 && sel.Color == "" {
		return nil, ErrColorRequired
	}

	order, err := sf.carts.OpenCart(ctx, chatID)
	if err != nil {
		return nil, err
	}
	item := models.OrderItem{
		OrderID:   order.ID,
		ProductID: p.ID,
		Size:      sel.Size,
		Color:     sel.Color,
		Quantity:  max(1, sel.Quantity),
		Price:     p.Price,
	}
	if err := sf.carts.AddItemToCart(ctx, item); err != nil {
		return nil, err
	}
	_ = sf.update(chatID, func(st *ChatState) error {
		st.Selection = Selection{ProductID: p.ID, Quantity: 1}
		return nil
	})
	return &item, nil
}

// Cart returns nil, nil when the chat has no open cart.
func (sf *Storefront) Cart(ctx context.Context, chatID int64) (*models.OrderWithItems, error) {
	return sf.carts.DetailCart(ctx, chatID)
}

func (sf *Storefront) ConfirmCart(ctx context.Context, chatID int64) (int, error) {
	return sf.carts.ConfirmOrder(ctx, chatID)
}

// Orders lists the chat's orders, newest first, the open cart included.
func (sf *Storefront) Orders(ctx context.Context, chatID int64) ([]models.Order, error) {
	return sf.carts.UserOrders(ctx, chatID)
}

func (sf *Storefront) ProductByID(id int) (*models.Product, error) {
	return sf.products.ProductByID(id)
}

func (sf *Storefront) Search(query string) []models.Product {
	return sf.products.SearchProduct(query)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
