package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/elpanda/tienda/internal/auth"
	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/orders"
	"github.com/elpanda/tienda/internal/view"
)

// IndexViewInterface はホームビューハンドラーが必要とするコントローラインターフェース。
type IndexViewInterface interface {
	// State は現在のメモリ内セッション状態を返す。
	State() (username string, loggedIn bool)
	// IsLoggedIn はメモリ内状態でのログイン有無を返す。
	IsLoggedIn() bool
	// Login はホームビューのログインフローを実行する（管理者バリアント込み）。
	Login(ctx context.Context, identifier, password string) (auth.LoginOutcome, error)
	// Logout はセッションを閉じる。
	Logout(ctx context.Context)
	// AddToCart はカタログの商品をカートに追加する。
	AddToCart(ctx context.Context, product model.Product)
	// CartCount はメモリ内の累計カート数を返す。
	CartCount() int
}

// IndexHandler はホームビューのHTTPハンドラー。
type IndexHandler struct {
	controller IndexViewInterface
	metrics    MetricsRecorder
}

// NewIndexHandler はIndexHandlerを生成する。
func NewIndexHandler(controller IndexViewInterface, metrics MetricsRecorder) *IndexHandler {
	return &IndexHandler{
		controller: controller,
		metrics:    metrics,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	NombreUsuario string `json:"nombreUsuario"`
	Password      string `json:"password"`
}

// loginResponse はログイン成功のレスポンス。
type loginResponse struct {
	Username string `json:"username"`
	Rol      string `json:"rol"`
	Mensaje  string `json:"mensaje"`
}

// indexStateResponse はホームビューの状態レスポンス。
type indexStateResponse struct {
	Username   string            `json:"username"`
	IsLoggedIn bool              `json:"isLoggedIn"`
	CartCount  int               `json:"cartCount"`
	Productos  []productResponse `json:"productos"`
}

// productResponse は商品のAPIレスポンス。
type productResponse struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
}

// addToCartRequest はカート追加リクエストのボディ。商品IDで指定する。
type addToCartRequest struct {
	ID string `json:"id"`
}

// cartCountResponse はカート数のレスポンス。
type cartCountResponse struct {
	CartCount int `json:"cartCount"`
}

// State はホームビューの状態を返す。
// GET /
func (h *IndexHandler) State(w http.ResponseWriter, r *http.Request) {
	username, loggedIn := h.controller.State()

	products := view.Catalog()
	productos := make([]productResponse, len(products))
	for i, p := range products {
		productos[i] = productResponse{ID: p.ID, Nombre: p.Nombre, Precio: p.Precio}
	}

	writeJSON(w, http.StatusOK, indexStateResponse{
		Username:   username,
		IsLoggedIn: loggedIn,
		CartCount:  h.controller.CartCount(),
		Productos:  productos,
	})
}

// Login はホームビューのログインを処理する。
// POST /login
func (h *IndexHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	outcome, err := h.controller.Login(r.Context(), req.NombreUsuario, req.Password)
	if err != nil {
		h.recordLogin("failure")
		handleServiceError(w, mapAuthError(err))
		return
	}

	h.recordLogin(string(outcome.Role))
	writeJSON(w, http.StatusOK, loginResponse{
		Username: outcome.Username,
		Rol:      string(outcome.Role),
		Mensaje:  "Inicio de sesión exitoso",
	})
}

// Logout はセッションを閉じる。
// POST /logout
func (h *IndexHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.controller.Logout(r.Context())
	if h.metrics != nil {
		h.metrics.RecordLogout()
	}
	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "Sesión cerrada"})
}

// GoToProfile はプロフィールへの遷移可否を返す。
// 未ログインの場合は401を返す（元のホームビューのガード）。
// GET /perfil
func (h *IndexHandler) GoToProfile(w http.ResponseWriter, r *http.Request) {
	if !h.controller.IsLoggedIn() {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"destino": "/user"})
}

// AddToCart はカタログの商品をカートに追加する。
// POST /cart
func (h *IndexHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	product, ok := view.FindProduct(req.ID)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeValidation,
			Message:  "Producto no encontrado en el catálogo.",
			Category: "validacion",
			Action:   "Verifica el identificador del producto.",
		})
		return
	}

	h.controller.AddToCart(r.Context(), product)
	if h.metrics != nil {
		h.metrics.RecordCartAdd()
	}
	writeJSON(w, http.StatusOK, cartCountResponse{CartCount: h.controller.CartCount()})
}

// CartCount はメモリ内の累計カート数を返す。
// GET /cart
func (h *IndexHandler) CartCount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cartCountResponse{CartCount: h.controller.CartCount()})
}

func (h *IndexHandler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(result)
	}
}

// --- ヘルパー関数 ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	Category      string   `json:"category"`
	Action        string   `json:"action"`
	TouchedFields []string `json:"touchedFields,omitempty"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidBodyError はボディ解析失敗の400を書き込む。
func writeInvalidBodyError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "No se pudo interpretar el cuerpo de la solicitud.",
		Category: "validacion",
		Action:   "Envía un JSON válido.",
	})
}

// mapAuthError は認証層の内部エラーをAPIErrorに変換する。
// 「レコードなし」と「不一致」はユーザー向けには別メッセージのまま保持する
// （元設計のアラート文言の区別を踏襲）。
func mapAuthError(err error) error {
	switch {
	case errors.Is(err, auth.ErrNoRecord):
		return model.NewUserNotFoundError()
	case errors.Is(err, auth.ErrCredentialMismatch):
		return model.NewInvalidCredentialsError()
	}
	return err
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, apiErrorResponse{
			Code:          verr.Code,
			Message:       verr.Message,
			Category:      verr.Category,
			Action:        verr.Action,
			TouchedFields: verr.TouchedFields,
		})
		return
	}

	if errors.Is(err, orders.ErrFetchFailed) {
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewRemoteFetchFailedError())
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Ocurrió un error interno.",
		Category: "system",
		Action:   "Inténtalo de nuevo más tarde.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeTrackingRequired:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeLoginRequired:
		return http.StatusUnauthorized
	case model.ErrCodeAdminRequired:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeRemoteFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
