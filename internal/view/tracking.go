package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/cart"
	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/orders"
	"github.com/elpanda/tienda/internal/session"
	"github.com/elpanda/tienda/internal/store"
)

// TrackingController は配送追跡ビューの状態を管理する。
// このビューは変更通知を購読しない。セッション状態は初期化時の
// スナップショットのまま古くなり得る（元の追跡画面の挙動を保持）。
type TrackingController struct {
	handle  store.Handle
	auth    *auth.Service
	cart    *cart.Service
	tracker *orders.Tracker
	logger  *slog.Logger

	mu         sync.Mutex
	username   string
	isLoggedIn bool
}

// NewTrackingController はTrackingControllerを生成する。
func NewTrackingController(handle store.Handle, authSvc *auth.Service, cartSvc *cart.Service, tracker *orders.Tracker, logger *slog.Logger) *TrackingController {
	return &TrackingController{
		handle:  handle,
		auth:    authSvc,
		cart:    cartSvc,
		tracker: tracker,
		logger:  logger,
	}
}

// Init はセッション状態とカート数を読み込む。
func (c *TrackingController) Init(ctx context.Context) {
	st := session.Check(ctx, c.handle)
	c.mu.Lock()
	c.username = st.Username
	c.isLoggedIn = st.Active
	c.mu.Unlock()

	c.cart.LoadCartCount(ctx)
}

// State は現在のメモリ内セッション状態を返す。
func (c *TrackingController) State() (username string, loggedIn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.isLoggedIn
}

// Track は追跡番号で注文を検索する。
// 注文データはローカルストアではなくリモートから毎回取得する。
// 見つからない場合は(nil, nil)を返す。
func (c *TrackingController) Track(ctx context.Context, trackingNumber string) (*model.PurchaseRecord, error) {
	return c.tracker.Track(ctx, trackingNumber)
}

// Logout はセッションを閉じ、メモリ内状態を消去する。
func (c *TrackingController) Logout(ctx context.Context) {
	c.auth.Logout(ctx)

	c.mu.Lock()
	c.username = ""
	c.isLoggedIn = false
	c.mu.Unlock()
}

// CartCount はメモリ内の累計カート数を返す。
func (c *TrackingController) CartCount() int {
	return c.cart.Count()
}
