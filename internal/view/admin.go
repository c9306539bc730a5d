package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/orders"
	"github.com/elpanda/tienda/internal/session"
	"github.com/elpanda/tienda/internal/store"
)

// AdminController は管理画面の状態を管理する。
// 管理者セッションは通常セッションと独立しており、変更通知も購読しない。
type AdminController struct {
	handle store.Handle
	auth   *auth.Service
	orders *orders.Admin
	logger *slog.Logger

	mu        sync.Mutex
	adminUser string
	purchases []model.PurchaseRecord
}

// NewAdminController はAdminControllerを生成する。
func NewAdminController(handle store.Handle, authSvc *auth.Service, ordersAdmin *orders.Admin, logger *slog.Logger) *AdminController {
	return &AdminController{
		handle: handle,
		auth:   authSvc,
		orders: ordersAdmin,
		logger: logger,
	}
}

// Init は管理者セッション状態と購入一覧を読み込む。
func (c *AdminController) Init(ctx context.Context) {
	st := session.CheckAdmin(ctx, c.handle)

	c.mu.Lock()
	if st.Active {
		c.adminUser = st.AdminUser
	} else {
		c.adminUser = ""
	}
	c.mu.Unlock()

	c.reloadPurchases(ctx)
}

func (c *AdminController) reloadPurchases(ctx context.Context) {
	purchases := c.orders.LoadPurchases(ctx)
	c.mu.Lock()
	c.purchases = purchases
	c.mu.Unlock()
}

// AdminUser はメモリ内の管理者名を返す。未ログインなら空文字列。
func (c *AdminController) AdminUser() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adminUser
}

// IsAdmin はストアを直接参照して管理者セッションの有無を判定する。
// 書き込み操作のガードに使うため、キャッシュではなく現在値を見る。
func (c *AdminController) IsAdmin(ctx context.Context) bool {
	return session.CheckAdmin(ctx, c.handle).Active
}

// Purchases はキャッシュ済みの購入一覧のコピーを返す。
func (c *AdminController) Purchases() []model.PurchaseRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PurchaseRecord, len(c.purchases))
	copy(out, c.purchases)
	return out
}

// Login は管理画面のログインフローを実行する。
// ショートカット資格情報のみを検証する（userDataは参照しない）。
func (c *AdminController) Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error) {
	if identifier == "" || password == "" {
		return auth.LoginOutcome{}, model.NewValidationError(
			[]string{"usuario y contraseña son obligatorios"},
			[]string{"username", "password"},
		)
	}

	outcome, err := c.auth.LoginAdmin(ctx, identifier, password)
	if err != nil {
		return auth.LoginOutcome{}, err
	}

	c.mu.Lock()
	c.adminUser = outcome.Username
	c.mu.Unlock()
	return outcome, nil
}

// Register は管理者登録経路でusuariosディレクトリにレコードを追記する。
func (c *AdminController) Register(ctx context.Context, form auth.RegistrationForm) error {
	return c.auth.RegisterDirectory(ctx, form)
}

// UpdateOrderStatus は追跡番号で注文を検索し、状態を更新する。
// 両フィールドが必須。見つかった場合はキャッシュも更新する。
func (c *AdminController) UpdateOrderStatus(ctx context.Context, trackingNumber, newStatus string) (bool, error) {
	if trackingNumber == "" || newStatus == "" {
		return false, model.NewValidationError(
			[]string{"número de seguimiento y estado son obligatorios"},
			[]string{"trackingNumber", "orderStatus"},
		)
	}

	found := c.orders.UpdateStatus(ctx, trackingNumber, newStatus)
	if found {
		c.reloadPurchases(ctx)
	}
	return found, nil
}

// Logout は管理者セッションのみを破棄する。
// 通常セッションのsesionActivaには触れない。
func (c *AdminController) Logout(ctx context.Context) {
	c.auth.AdminLogout(ctx)

	c.mu.Lock()
	c.adminUser = ""
	c.mu.Unlock()
}
