package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/cart"
	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/session"
	"github.com/elpanda/tienda/internal/store"
)

// UserController はプロフィールビューの状態を管理する。
// ホームビューと異なり、sesionActivaに加えてuserDataの変更でも
// セッション状態を再導出する（双方向の同期）。
type UserController struct {
	handle store.Handle
	auth   *auth.Service
	cart   *cart.Service
	sync   *session.Synchronizer
	logger *slog.Logger

	mu         sync.Mutex
	username   string
	isLoggedIn bool
	purchases  []model.PurchaseRecord
}

// NewUserController はUserControllerを生成する。
func NewUserController(handle store.Handle, authSvc *auth.Service, cartSvc *cart.Service, logger *slog.Logger) *UserController {
	c := &UserController{
		handle: handle,
		auth:   authSvc,
		cart:   cartSvc,
		logger: logger,
	}
	c.sync = session.NewSynchronizer(handle, session.SynchronizerConfig{WatchUserData: true}, logger,
		c.clearSession, c.resyncSession)
	return c
}

// Init はセッション状態・購入履歴・カート数を読み込み、購読を開始する。
func (c *UserController) Init(ctx context.Context) {
	c.refreshSession(ctx)
	c.loadPurchases(ctx)
	c.cart.LoadCartCount(ctx)
	c.sync.Start()
}

// Close は購読を解除する。
func (c *UserController) Close() {
	c.sync.Stop()
}

func (c *UserController) refreshSession(ctx context.Context) {
	st := session.Check(ctx, c.handle)
	c.mu.Lock()
	c.username = st.Username
	c.isLoggedIn = st.Active
	c.mu.Unlock()
}

func (c *UserController) clearSession() {
	c.mu.Lock()
	c.username = ""
	c.isLoggedIn = false
	c.mu.Unlock()
}

// resyncSession は外部変更の通知を受けてストアから状態を再導出する。
func (c *UserController) resyncSession() {
	c.refreshSession(context.Background())
}

func (c *UserController) loadPurchases(ctx context.Context) {
	raw, ok := c.handle.Get(ctx, store.KeyPurchases)
	purchases := store.DecodeList[model.PurchaseRecord](raw, ok)
	c.mu.Lock()
	c.purchases = purchases
	c.mu.Unlock()
}

// State は現在のメモリ内セッション状態を返す。
func (c *UserController) State() (username string, loggedIn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.isLoggedIn
}

// Purchases はキャッシュ済みの購入履歴のコピーを返す。
func (c *UserController) Purchases() []model.PurchaseRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PurchaseRecord, len(c.purchases))
	copy(out, c.purchases)
	return out
}

// Register はセルフサービス登録を実行する。
func (c *UserController) Register(ctx context.Context, form auth.RegistrationForm) error {
	return c.auth.Register(ctx, form)
}

// Login はプロフィールビューのログインフローを実行する。
// userDataレコードのみと比較する（管理者ショートカットは参照しない）。
func (c *UserController) Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error) {
	if identifier == "" || password == "" {
		return auth.LoginOutcome{}, model.NewValidationError(
			[]string{"nombre de usuario y contraseña son obligatorios"},
			[]string{"nombreUsuario", "password"},
		)
	}

	outcome, err := c.auth.LoginUser(ctx, identifier, password)
	if err != nil {
		return auth.LoginOutcome{}, err
	}

	c.mu.Lock()
	c.username = outcome.Username
	c.isLoggedIn = true
	c.mu.Unlock()
	return outcome, nil
}

// Logout はセッションを閉じ、メモリ内状態を消去する。
func (c *UserController) Logout(ctx context.Context) {
	c.auth.Logout(ctx)
	c.clearSession()
}

// CartCount はメモリ内の累計カート数を返す。
func (c *UserController) CartCount() int {
	return c.cart.Count()
}
