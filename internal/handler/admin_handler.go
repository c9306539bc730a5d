package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/model"
)

// AdminViewInterface は管理画面ハンドラーが必要とするコントローラインターフェース。
type AdminViewInterface interface {
	// AdminUser はメモリ内の管理者名を返す。未ログインなら空文字列。
	AdminUser() string
	// IsAdmin はストアを直接参照して管理者セッションの有無を判定する。
	IsAdmin(ctx context.Context) bool
	// Purchases はキャッシュ済みの購入一覧を返す。
	Purchases() []model.PurchaseRecord
	// Login はショートカット資格情報のみでログインする。
	Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error)
	// Register はusuariosディレクトリにレコードを追記する。
	Register(ctx context.Context, form auth.RegistrationForm) error
	// UpdateOrderStatus は追跡番号で注文の状態を更新する。
	UpdateOrderStatus(ctx context.Context, trackingNumber, newStatus string) (bool, error)
	// Logout は管理者セッションのみを破棄する。
	Logout(ctx context.Context)
}

// AdminHandler は管理画面のHTTPハンドラー。
type AdminHandler struct {
	controller AdminViewInterface
	metrics    MetricsRecorder
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(controller AdminViewInterface, metrics MetricsRecorder) *AdminHandler {
	return &AdminHandler{
		controller: controller,
		metrics:    metrics,
	}
}

// adminLoginRequest は管理者ログインリクエストのボディ。
// 管理画面のフォームはフィールド名が異なる（username）。
type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// adminStateResponse は管理画面の状態レスポンス。
type adminStateResponse struct {
	AdminUser string                 `json:"adminUser"`
	IsAdmin   bool                   `json:"isAdmin"`
	Purchases []model.PurchaseRecord `json:"purchases"`
}

// updateStatusRequest は注文状態更新リクエストのボディ。
type updateStatusRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	OrderStatus    string `json:"orderStatus"`
}

// State は管理画面の状態を返す。
// GET /admin
func (h *AdminHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, adminStateResponse{
		AdminUser: h.controller.AdminUser(),
		IsAdmin:   h.controller.IsAdmin(r.Context()),
		Purchases: h.controller.Purchases(),
	})
}

// Login は管理者ログインを処理する。
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	outcome, err := h.controller.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin("failure")
		}
		handleServiceError(w, mapAuthError(err))
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin(string(outcome.Role))
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Username: outcome.Username,
		Rol:      string(outcome.Role),
		Mensaje:  "Inicio de sesión exitoso como administrador.",
	})
}

// Register は管理者登録経路を処理する。管理者セッションが必要。
// POST /admin/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.controller.IsAdmin(r.Context()) {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewAdminRequiredError())
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	if err := h.controller.Register(r.Context(), req.toForm()); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration("admin")
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"mensaje": "Usuario registrado exitosamente con el rol: " + req.Rol,
	})
}

// UpdateOrderStatus は注文状態の更新を処理する。管理者セッションが必要。
// POST /admin/pedidos/estado
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !h.controller.IsAdmin(r.Context()) {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewAdminRequiredError())
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	found, err := h.controller.UpdateOrderStatus(r.Context(), req.TrackingNumber, req.OrderStatus)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !found {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewOrderNotFoundError(req.TrackingNumber))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "Estado actualizado correctamente."})
}

// Logout は管理者セッションを破棄する。
// POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.controller.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "Sesión de administrador cerrada"})
}
