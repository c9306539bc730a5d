package view

import (
	"context"
	"log/slog"
	"testing"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/cart"
	"github.com/elpanda/tienda/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// tab は1つのサービスインスタンス（ブラウザのタブに相当）の配線。
type tab struct {
	handle *store.MemoryHandle
	auth   *auth.Service
	cart   *cart.Service
}

func newTab(t *testing.T, backend *store.MemoryBackend) *tab {
	t.Helper()
	handle := backend.NewHandle()
	checker := auth.StaticAdminChecker{
		Username: "admin",
		Email:    "admin@gmail.com",
		Password: "admin",
	}
	logger := discardLogger()
	return &tab{
		handle: handle,
		auth:   auth.NewService(handle, checker, logger),
		cart:   cart.NewService(handle, logger),
	}
}

func (tb *tab) index(t *testing.T) *IndexController {
	t.Helper()
	c := NewIndexController(tb.handle, tb.auth, tb.cart, discardLogger())
	t.Cleanup(c.Close)
	return c
}

func (tb *tab) user(t *testing.T) *UserController {
	t.Helper()
	c := NewUserController(tb.handle, tb.auth, tb.cart, discardLogger())
	t.Cleanup(c.Close)
	return c
}

// seedUser は登録済みユーザーをストアに直接投入する。
func seedUser(t *testing.T, h *store.MemoryHandle, nombre, email, password string) {
	t.Helper()
	h.Set(context.Background(), store.KeyUserData,
		`{"nombreCompleto":"`+nombre+`","email":"`+email+`","password":"`+password+`"}`)
}

func TestCatalog(t *testing.T) {
	products := Catalog()
	if len(products) == 0 {
		t.Fatal("catalog must not be empty")
	}

	p, ok := FindProduct(products[0].ID)
	if !ok || p.Nombre != products[0].Nombre {
		t.Errorf("FindProduct(%d) = %+v, %v", products[0].ID, p, ok)
	}
	if _, ok := FindProduct("desconocido"); ok {
		t.Error("unknown id must not match")
	}

	// 返り値を変更しても内部カタログに影響しない
	products[0].Nombre = "mutado"
	if fresh := Catalog(); fresh[0].Nombre == "mutado" {
		t.Error("Catalog must return a copy")
	}
}
