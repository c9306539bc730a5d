package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/model"
)

// UserViewInterface はプロフィールビューハンドラーが必要とするコントローラインターフェース。
type UserViewInterface interface {
	// State は現在のメモリ内セッション状態を返す。
	State() (username string, loggedIn bool)
	// Purchases はキャッシュ済みの購入履歴を返す。
	Purchases() []model.PurchaseRecord
	// Register はセルフサービス登録を実行する。
	Register(ctx context.Context, form auth.RegistrationForm) error
	// Login はuserDataレコードとの比較でログインする。
	Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error)
	// Logout はセッションを閉じる。
	Logout(ctx context.Context)
	// CartCount はメモリ内の累計カート数を返す。
	CartCount() int
}

// UserHandler はプロフィールビューのHTTPハンドラー。
type UserHandler struct {
	controller UserViewInterface
	metrics    MetricsRecorder
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(controller UserViewInterface, metrics MetricsRecorder) *UserHandler {
	return &UserHandler{
		controller: controller,
		metrics:    metrics,
	}
}

// registerRequest は登録リクエストのボディ。
type registerRequest struct {
	NombreCompleto  string `json:"nombreCompleto"`
	NombreUsuario   string `json:"nombreUsuario"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FechaNacimiento string `json:"fechaNacimiento"`
	Direccion       string `json:"direccion"`
	Rol             string `json:"rol"`
}

func (req registerRequest) toForm() auth.RegistrationForm {
	return auth.RegistrationForm{
		NombreCompleto:  req.NombreCompleto,
		NombreUsuario:   req.NombreUsuario,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FechaNacimiento: req.FechaNacimiento,
		Direccion:       req.Direccion,
		Rol:             model.Role(req.Rol),
	}
}

// userStateResponse はプロフィールビューの状態レスポンス。
type userStateResponse struct {
	Username   string                 `json:"username"`
	IsLoggedIn bool                   `json:"isLoggedIn"`
	CartCount  int                    `json:"cartCount"`
	Purchases  []model.PurchaseRecord `json:"purchases"`
}

// State はプロフィールビューの状態を返す。
// GET /user
func (h *UserHandler) State(w http.ResponseWriter, _ *http.Request) {
	username, loggedIn := h.controller.State()
	writeJSON(w, http.StatusOK, userStateResponse{
		Username:   username,
		IsLoggedIn: loggedIn,
		CartCount:  h.controller.CartCount(),
		Purchases:  h.controller.Purchases(),
	})
}

// Register はセルフサービス登録を処理する。
// POST /user/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
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
		h.metrics.RecordRegistration("user")
	}
	writeJSON(w, http.StatusCreated, map[string]string{"mensaje": "Registro exitoso"})
}

// Login はプロフィールビューのログインを処理する。
// POST /user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	outcome, err := h.controller.Login(r.Context(), req.NombreUsuario, req.Password)
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
		Mensaje:  "Inicio de sesión exitoso",
	})
}

// Logout はセッションを閉じる。
// POST /user/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.controller.Logout(r.Context())
	if h.metrics != nil {
		h.metrics.RecordLogout()
	}
	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "Sesión cerrada"})
}
