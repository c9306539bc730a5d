package handler

import (
	"context"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/model"
)

// --- テスト用のコントローラモック ---

type mockIndexView struct {
	stateFn     func() (string, bool)
	loginFn     func(ctx context.Context, identifier, password string) (auth.LoginOutcome, error)
	logoutFn    func(ctx context.Context)
	addToCartFn func(ctx context.Context, product model.Product)
	cartCount   int
	loggedIn    bool
}

func (m *mockIndexView) State() (string, bool) {
	if m.stateFn != nil {
		return m.stateFn()
	}
	return "", m.loggedIn
}

func (m *mockIndexView) IsLoggedIn() bool {
	_, loggedIn := m.State()
	return loggedIn
}

func (m *mockIndexView) Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error) {
	return m.loginFn(ctx, identifier, password)
}

func (m *mockIndexView) Logout(ctx context.Context) {
	if m.logoutFn != nil {
		m.logoutFn(ctx)
	}
}

func (m *mockIndexView) AddToCart(ctx context.Context, product model.Product) {
	if m.addToCartFn != nil {
		m.addToCartFn(ctx, product)
	}
}

func (m *mockIndexView) CartCount() int { return m.cartCount }

type mockUserView struct {
	stateFn    func() (string, bool)
	purchases  []model.PurchaseRecord
	registerFn func(ctx context.Context, form auth.RegistrationForm) error
	loginFn    func(ctx context.Context, identifier, password string) (auth.LoginOutcome, error)
	logoutFn   func(ctx context.Context)
	cartCount  int
}

func (m *mockUserView) State() (string, bool) {
	if m.stateFn != nil {
		return m.stateFn()
	}
	return "", false
}

func (m *mockUserView) Purchases() []model.PurchaseRecord { return m.purchases }

func (m *mockUserView) Register(ctx context.Context, form auth.RegistrationForm) error {
	return m.registerFn(ctx, form)
}

func (m *mockUserView) Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error) {
	return m.loginFn(ctx, identifier, password)
}

func (m *mockUserView) Logout(ctx context.Context) {
	if m.logoutFn != nil {
		m.logoutFn(ctx)
	}
}

func (m *mockUserView) CartCount() int { return m.cartCount }

type mockTrackingView struct {
	trackFn   func(ctx context.Context, trackingNumber string) (*model.PurchaseRecord, error)
	cartCount int
}

func (m *mockTrackingView) Track(ctx context.Context, trackingNumber string) (*model.PurchaseRecord, error) {
	return m.trackFn(ctx, trackingNumber)
}

func (m *mockTrackingView) State() (string, bool) { return "", false }
func (m *mockTrackingView) CartCount() int        { return m.cartCount }

type mockAdminView struct {
	adminUser    string
	isAdmin      bool
	purchases    []model.PurchaseRecord
	loginFn      func(ctx context.Context, identifier, password string) (auth.LoginOutcome, error)
	registerFn   func(ctx context.Context, form auth.RegistrationForm) error
	updateFn     func(ctx context.Context, trackingNumber, newStatus string) (bool, error)
	logoutCalled bool
}

func (m *mockAdminView) AdminUser() string                 { return m.adminUser }
func (m *mockAdminView) IsAdmin(ctx context.Context) bool  { return m.isAdmin }
func (m *mockAdminView) Purchases() []model.PurchaseRecord { return m.purchases }

func (m *mockAdminView) Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error) {
	return m.loginFn(ctx, identifier, password)
}

func (m *mockAdminView) Register(ctx context.Context, form auth.RegistrationForm) error {
	return m.registerFn(ctx, form)
}

func (m *mockAdminView) UpdateOrderStatus(ctx context.Context, trackingNumber, newStatus string) (bool, error) {
	return m.updateFn(ctx, trackingNumber, newStatus)
}

func (m *mockAdminView) Logout(ctx context.Context) { m.logoutCalled = true }

type mockPersonasView struct {
	listFn    func(ctx context.Context) ([]model.Persona, error)
	replaceFn func(ctx context.Context, personas []model.Persona) error
}

func (m *mockPersonasView) List(ctx context.Context) ([]model.Persona, error) {
	return m.listFn(ctx)
}

func (m *mockPersonasView) Replace(ctx context.Context, personas []model.Persona) error {
	return m.replaceFn(ctx, personas)
}

// --- compile-time interface checks ---

var _ IndexViewInterface = (*mockIndexView)(nil)
var _ UserViewInterface = (*mockUserView)(nil)
var _ TrackingViewInterface = (*mockTrackingView)(nil)
var _ AdminViewInterface = (*mockAdminView)(nil)
var _ PersonasViewInterface = (*mockPersonasView)(nil)
