// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。メッセージはユーザー向けにスペイン語。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validacion, pedido, remoto, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeTrackingRequired   = "TRACKING_REQUIRED"
	ErrCodeRemoteFetchFailed  = "REMOTE_FETCH_FAILED"
	ErrCodeAdminRequired      = "ADMIN_REQUIRED"
	ErrCodeLoginRequired      = "LOGIN_REQUIRED"
)

// ValidationError は登録・ログインフォームの検証エラーを表す。
// TouchedFieldsにはUIハイライト用に全フィールド名が含まれる
// （元設計のmarkAllAsTouchedを踏襲し、失敗フィールドのみではない）。
type ValidationError struct {
	APIError
	TouchedFields []string
}

// NewValidationError はフォーム検証エラーを生成する。
// reasonsは内部向けの失敗理由、touchedはフォームの全フィールド名。
func NewValidationError(reasons []string, touched []string) *ValidationError {
	return &ValidationError{
		APIError: APIError{
			Code:     ErrCodeValidation,
			Message:  "Por favor, completa todos los campos correctamente.",
			Category: "validacion",
			Action:   fmt.Sprintf("Revisa los campos del formulario: %s.", strings.Join(reasons, "; ")),
		},
		TouchedFields: touched,
	}
}

// NewInvalidCredentialsError は資格情報不一致エラーを生成する。
// 「レコードなし」と「不一致」はここで同一メッセージに潰される（内部では区別される）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Correo o contraseña incorrectos.",
		Category: "auth",
		Action:   "Verifica tus credenciales e inténtalo de nuevo.",
	}
}

// NewUserNotFoundError は登録レコード不在エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Usuario no encontrado.",
		Category: "auth",
		Action:   "Regístrate antes de iniciar sesión.",
	}
}

// NewOrderNotFoundError は注文未検出（正常系の結果）を生成する。
func NewOrderNotFoundError(trackingNumber string) *APIError {
	return &APIError{
		Code:     ErrCodeOrderNotFound,
		Message:  "No se encontró un pedido con ese número.",
		Category: "pedido",
		Action:   fmt.Sprintf("Verifica el número de seguimiento: %s.", trackingNumber),
	}
}

// NewTrackingRequiredError は追跡番号未入力エラーを生成する。
func NewTrackingRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTrackingRequired,
		Message:  "Por favor, ingresa un número de seguimiento válido.",
		Category: "validacion",
		Action:   "Ingresa el número de seguimiento de tu pedido.",
	}
}

// NewRemoteFetchFailedError はリモート取得失敗エラーを生成する。
// 詳細はログのみに記録し、ユーザーには汎用メッセージを返す。
func NewRemoteFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRemoteFetchFailed,
		Message:  "No se pudo cargar los datos desde el servidor.",
		Category: "remoto",
		Action:   "Inténtalo de nuevo más tarde.",
	}
}

// NewAdminRequiredError は管理者権限が必要な操作のエラーを生成する。
func NewAdminRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAdminRequired,
		Message:  "Se requiere una sesión de administrador.",
		Category: "auth",
		Action:   "Inicia sesión como administrador.",
	}
}

// NewLoginRequiredError は未ログイン状態での保護操作のエラーを生成する。
func NewLoginRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginRequired,
		Message:  "Por favor, inicie sesión primero.",
		Category: "auth",
		Action:   "Inicia sesión para continuar.",
	}
}
