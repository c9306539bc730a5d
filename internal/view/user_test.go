package view

import (
	"context"
	"testing"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/store"
)

func validRegistration() auth.RegistrationForm {
	return auth.RegistrationForm{
		NombreCompleto:  "Ana Pérez",
		NombreUsuario:   "anap",
		Email:           "a@b.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FechaNacimiento: "2000-01-15",
		Direccion:       "Av. Siempre Viva 742",
	}
}

func TestUserController_RegisterThenLogin(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	c := tb.user(t)
	c.Init(ctx)

	if err := c.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	outcome, err := c.Login(ctx, "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if outcome.Username != "Ana Pérez" {
		t.Errorf("Username = %q", outcome.Username)
	}
	if _, loggedIn := c.State(); !loggedIn {
		t.Error("expected logged in after login")
	}
}

// プロフィールビューのログインは管理者ショートカットを参照しない。
func TestUserController_LoginIgnoresAdminShortcut(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)

	c := tb.user(t)
	c.Init(context.Background())

	if _, err := c.Login(context.Background(), "admin@gmail.com", "admin"); err == nil {
		t.Fatal("expected error for admin shortcut on the profile view")
	}
}

// TestUserController_LoginResyncsOtherTab はプロフィールビューが
// ログイン方向の変更にも追従することを検証する（ホームビューとの差分）。
func TestUserController_LoginResyncsOtherTab(t *testing.T) {
	backend := store.NewMemoryBackend()
	ctx := context.Background()

	tabA := newTab(t, backend)
	tabB := newTab(t, backend)
	seedUser(t, tabA.handle, "Ana Pérez", "a@b.com", "secret1")

	userB := tabB.user(t)
	userB.Init(ctx)
	if _, loggedIn := userB.State(); loggedIn {
		t.Fatal("tab B should start logged out")
	}

	userA := tabA.user(t)
	userA.Init(ctx)
	if _, err := userA.Login(ctx, "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if username, loggedIn := userB.State(); !loggedIn || username != "Ana Pérez" {
		t.Errorf("tab B State() = %q, %v, want resynced login", username, loggedIn)
	}
}

func TestUserController_LogoutPropagates(t *testing.T) {
	backend := store.NewMemoryBackend()
	ctx := context.Background()

	tabA := newTab(t, backend)
	tabB := newTab(t, backend)
	seedUser(t, tabA.handle, "Ana Pérez", "a@b.com", "secret1")
	tabA.handle.Set(ctx, store.KeySesionActiva, store.ValorActivo)

	userB := tabB.user(t)
	userB.Init(ctx)

	userA := tabA.user(t)
	userA.Init(ctx)
	userA.Logout(ctx)

	if _, loggedIn := userB.State(); loggedIn {
		t.Error("tab B did not observe the logout")
	}
}

// userDataの外部変更でもセッション状態を再導出する。
func TestUserController_UserDataChangeResyncs(t *testing.T) {
	backend := store.NewMemoryBackend()
	ctx := context.Background()

	tabA := newTab(t, backend)
	tabB := newTab(t, backend)
	seedUser(t, tabA.handle, "Ana Pérez", "a@b.com", "secret1")
	tabA.handle.Set(ctx, store.KeySesionActiva, store.ValorActivo)

	userB := tabB.user(t)
	userB.Init(ctx)

	seedUser(t, tabA.handle, "Berta Soto", "b@c.com", "secret2")

	if username, _ := userB.State(); username != "Berta Soto" {
		t.Errorf("username = %q, want Berta Soto after userData change", username)
	}
}

func TestUserController_PurchasesLoaded(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)
	ctx := context.Background()

	tb.handle.Set(ctx, store.KeyPurchases,
		`[{"trackingNumber":"TRK-1","status":"enviado","producto":"Arroz chapsui","cantidad":1,"total":6990}]`)

	c := tb.user(t)
	c.Init(ctx)

	purchases := c.Purchases()
	if len(purchases) != 1 || purchases[0].TrackingNumber != "TRK-1" {
		t.Errorf("Purchases() = %+v", purchases)
	}
}

func TestUserController_PurchasesDefaultEmpty(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := newTab(t, backend)

	c := tb.user(t)
	c.Init(context.Background())

	if got := c.Purchases(); len(got) != 0 {
		t.Errorf("Purchases() = %+v, want empty", got)
	}
}
