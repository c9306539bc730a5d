package view

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/orders"
	"github.com/elpanda/tienda/internal/store"
)

func newAdminController(t *testing.T, tb *tab) *AdminController {
	t.Helper()
	ordersAdmin := orders.NewAdmin(tb.handle, discardLogger())
	return NewAdminController(tb.handle, tb.auth, ordersAdmin, discardLogger())
}

func seedPurchases(t *testing.T, h *store.MemoryHandle) {
	t.Helper()
	h.Set(context.Background(), store.KeyPurchases,
		`[{"trackingNumber":"TRK-1","status":"pendiente"},{"trackingNumber":"TRK-2","status":"pendiente"}]`)
}

func TestAdminController_LoginShortcut(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	c := newAdminController(t, tb)
	c.Init(ctx)

	outcome, err := c.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if outcome.Role != model.RoleAdmin {
		t.Errorf("Role = %v, want admin", outcome.Role)
	}
	if c.AdminUser() != "Admin" {
		t.Errorf("AdminUser() = %q, want Admin", c.AdminUser())
	}
	if !c.IsAdmin(ctx) {
		t.Error("IsAdmin should report true after login")
	}
}

// 管理画面は登録済みユーザーの資格情報を受け付けない。
func TestAdminController_LoginRejectsUserCredentials(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	seedUser(t, tb.handle, "Ana Pérez", "a@b.com", "secret1")

	c := newAdminController(t, tb)
	c.Init(ctx)

	_, err := c.Login(ctx, "a@b.com", "secret1")
	if !errors.Is(err, auth.ErrCredentialMismatch) {
		t.Errorf("err = %v, want ErrCredentialMismatch", err)
	}
	if c.IsAdmin(ctx) {
		t.Error("IsAdmin must remain false")
	}
}

func TestAdminController_InitDefaultAdminName(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	// loggedInUserが存在しない場合の既定名
	tb.handle.Set(ctx, store.KeyIsAdminLoggedIn, store.ValorActivo)

	c := newAdminController(t, tb)
	c.Init(ctx)

	if c.AdminUser() != "Admin" {
		t.Errorf("AdminUser() = %q, want default Admin", c.AdminUser())
	}
}

func TestAdminController_UpdateOrderStatus(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	seedPurchases(t, tb.handle)

	c := newAdminController(t, tb)
	c.Init(ctx)

	found, err := c.UpdateOrderStatus(ctx, "TRK-2", "entregado")
	if err != nil || !found {
		t.Fatalf("UpdateOrderStatus = %v, %v", found, err)
	}

	// キャッシュと耐久ストアの両方が更新される
	for _, p := range c.Purchases() {
		if p.TrackingNumber == "TRK-2" && p.Status != "entregado" {
			t.Errorf("cached status = %q, want entregado", p.Status)
		}
	}
	raw, _ := tb.handle.Get(ctx, store.KeyPurchases)
	if !strings.Contains(raw, "entregado") {
		t.Error("store was not updated")
	}
}

func TestAdminController_UpdateOrderStatusNotFound(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	seedPurchases(t, tb.handle)

	c := newAdminController(t, tb)
	c.Init(ctx)

	found, err := c.UpdateOrderStatus(ctx, "TRK-9", "entregado")
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if found {
		t.Error("unknown tracking number must not match")
	}
}

func TestAdminController_UpdateOrderStatusValidation(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)

	c := newAdminController(t, tb)
	c.Init(context.Background())

	_, err := c.UpdateOrderStatus(context.Background(), "TRK-1", "")
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *model.ValidationError", err)
	}
}

// 管理者ログアウトは通常セッションに触れない。
func TestAdminController_LogoutKeepsUserSession(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	tb.handle.Set(ctx, store.KeySesionActiva, store.ValorActivo)

	c := newAdminController(t, tb)
	c.Init(ctx)
	if _, err := c.Login(ctx, "admin", "admin"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	c.Logout(ctx)

	if c.AdminUser() != "" {
		t.Error("AdminUser must be cleared")
	}
	if c.IsAdmin(ctx) {
		t.Error("IsAdmin must be false after logout")
	}
	if v, _ := tb.handle.Get(ctx, store.KeySesionActiva); v != store.ValorActivo {
		t.Error("sesionActiva must survive an admin logout")
	}
}

func TestAdminController_RegisterDirectory(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	c := newAdminController(t, tb)
	c.Init(ctx)

	form := validRegistration()
	form.Rol = model.RoleCustomer
	if err := c.Register(ctx, form); err != nil {
		t.Fatalf("Register: %v", err)
	}

	raw, ok := tb.handle.Get(ctx, store.KeyUsuarios)
	if !ok || !strings.Contains(raw, "a@b.com") {
		t.Errorf("usuarios = %q, want appended record", raw)
	}
	// 管理者登録経路はuserDataには書かない
	if _, ok := tb.handle.Get(ctx, store.KeyUserData); ok {
		t.Error("directory registration must not touch userData")
	}
}
