package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elpanda/tienda/internal/model"
)

func TestPersonasHandler_List(t *testing.T) {
	controller := &mockPersonasView{
		listFn: func(ctx context.Context) ([]model.Persona, error) {
			return []model.Persona{{Nombre: "Ana", Email: "a@b.com"}}, nil
		},
	}
	h := NewPersonasHandler(controller, &mockAdminView{})

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/lista-personas", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var personas []model.Persona
	if err := json.NewDecoder(w.Body).Decode(&personas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(personas) != 1 || personas[0].Nombre != "Ana" {
		t.Errorf("personas = %+v", personas)
	}
}

func TestPersonasHandler_ListRemoteFailure(t *testing.T) {
	controller := &mockPersonasView{
		listFn: func(ctx context.Context) ([]model.Persona, error) {
			return nil, errors.New("bucket no disponible")
		},
	}
	h := NewPersonasHandler(controller, &mockAdminView{})

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/lista-personas", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestPersonasHandler_Replace(t *testing.T) {
	var got []model.Persona
	controller := &mockPersonasView{
		replaceFn: func(ctx context.Context, personas []model.Persona) error {
			got = personas
			return nil
		},
	}
	h := NewPersonasHandler(controller, &mockAdminView{isAdmin: true})

	req := httptest.NewRequest(http.MethodPost, "/lista-personas",
		strings.NewReader(`[{"nombre":"Ana","email":"a@b.com"},{"nombre":"Berta","email":"b@c.com"}]`))
	w := httptest.NewRecorder()
	h.Replace(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(got) != 2 {
		t.Errorf("replaced %d personas, want 2", len(got))
	}
}

// 全置換は管理者セッションが必要。
func TestPersonasHandler_ReplaceRequiresAdmin(t *testing.T) {
	h := NewPersonasHandler(&mockPersonasView{}, &mockAdminView{isAdmin: false})

	req := httptest.NewRequest(http.MethodPost, "/lista-personas", strings.NewReader(`[]`))
	w := httptest.NewRecorder()
	h.Replace(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
