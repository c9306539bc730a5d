package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/elpanda/tienda/internal/model"
)

// PersonasViewInterface はpersonasハンドラーが必要とするコントローラインターフェース。
type PersonasViewInterface interface {
	// List はリモートからpersonas一覧を取得する。
	List(ctx context.Context) ([]model.Persona, error)
	// Replace はpersonasコレクション全体を置き換える。
	Replace(ctx context.Context, personas []model.Persona) error
}

// adminChecker は管理者セッションの有無の判定のみを公開する。
type adminChecker interface {
	IsAdmin(ctx context.Context) bool
}

// PersonasHandler はリモートのpersonas一覧のHTTPハンドラー。
type PersonasHandler struct {
	controller PersonasViewInterface
	admin      adminChecker
}

// NewPersonasHandler はPersonasHandlerを生成する。
func NewPersonasHandler(controller PersonasViewInterface, admin adminChecker) *PersonasHandler {
	return &PersonasHandler{
		controller: controller,
		admin:      admin,
	}
}

// List はpersonas一覧を返す。
// GET /lista-personas
func (h *PersonasHandler) List(w http.ResponseWriter, r *http.Request) {
	personas, err := h.controller.List(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewRemoteFetchFailedError())
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

// Replace はpersonasコレクション全体を置き換える。管理者セッションが必要。
// POST /lista-personas
func (h *PersonasHandler) Replace(w http.ResponseWriter, r *http.Request) {
	if !h.admin.IsAdmin(r.Context()) {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewAdminRequiredError())
		return
	}

	var personas []model.Persona
	if err := json.NewDecoder(r.Body).Decode(&personas); err != nil {
		writeInvalidBodyError(w)
		return
	}

	if err := h.controller.Replace(r.Context(), personas); err != nil {
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewRemoteFetchFailedError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
