// Package view は各画面のコントローラを提供する。
// コントローラはストアのキャッシュとして一時的なメモリ内状態を所有し、
// 変更通知を購読して他インスタンスの書き込みに追従する。
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

// IndexController はホームビューの状態を管理する。
// セッション変更の購読はsesionActivaの失効のみに反応する
// （ログイン方向の変更には追従しない。元のホームビューの挙動）。
type IndexController struct {
	handle store.Handle
	auth   *auth.Service
	cart   *cart.Service
	sync   *session.Synchronizer
	logger *slog.Logger

	mu         sync.Mutex
	username   string
	isLoggedIn bool
}

// NewIndexController はIndexControllerを生成する。
func NewIndexController(handle store.Handle, authSvc *auth.Service, cartSvc *cart.Service, logger *slog.Logger) *IndexController {
	c := &IndexController{
		handle: handle,
		auth:   authSvc,
		cart:   cartSvc,
		logger: logger,
	}
	c.sync = session.NewSynchronizer(handle, session.SynchronizerConfig{}, logger, c.clearSession, nil)
	return c
}

// Init はストアからセッション状態とカート数を読み込み、
// セッション同期の購読を開始する。
func (c *IndexController) Init(ctx context.Context) {
	c.refreshSession(ctx)
	c.cart.LoadCartCount(ctx)
	c.sync.Start()
}

// Close は購読を解除する。
func (c *IndexController) Close() {
	c.sync.Stop()
}

func (c *IndexController) refreshSession(ctx context.Context) {
	st := session.Check(ctx, c.handle)
	c.mu.Lock()
	c.username = st.Username
	c.isLoggedIn = st.Active
	c.mu.Unlock()
}

func (c *IndexController) clearSession() {
	c.mu.Lock()
	c.username = ""
	c.isLoggedIn = false
	c.mu.Unlock()
}

// State は現在のメモリ内セッション状態を返す。
func (c *IndexController) State() (username string, loggedIn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.isLoggedIn
}

// IsLoggedIn はメモリ内状態でのログイン有無を返す。
func (c *IndexController) IsLoggedIn() bool {
	_, loggedIn := c.State()
	return loggedIn
}

// Login はホームビューのログインフローを実行する。
// 管理者ショートカットを先に検証し、それ以外はuserDataレコードと比較する。
// 成功時はメモリ内状態を更新する。
func (c *IndexController) Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error) {
	if identifier == "" || password == "" {
		return auth.LoginOutcome{}, model.NewValidationError(
			[]string{"nombre de usuario y contraseña son obligatorios"},
			[]string{"nombreUsuario", "password"},
		)
	}

	outcome, err := c.auth.Login(ctx, identifier, password)
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
// ホームビューのログアウトは管理者フラグも除去する。
func (c *IndexController) Logout(ctx context.Context) {
	c.auth.Logout(ctx)
	c.clearSession()
}

// AddToCart はカタログの商品をカートに追加する。
func (c *IndexController) AddToCart(ctx context.Context, product model.Product) {
	c.cart.AddToCart(ctx, product)
}

// CartCount はメモリ内の累計カート数を返す。
func (c *IndexController) CartCount() int {
	return c.cart.Count()
}
