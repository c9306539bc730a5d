// Package auth は登録・ログイン・ログアウトのフローを提供する。
package auth

import "github.com/elpanda/tienda/internal/model"

// CredentialChecker は管理者資格情報の検証ポート。
// ハードコードされた管理者ショートカットを呼び出し側から切り離し、
// 本物のシークレット管理への差し替えを呼び出し箇所の変更なしに可能にする。
type CredentialChecker interface {
	// Authenticate は識別子とシークレットを検証し、付与する役割を返す。
	// 認証できない場合はRoleNone。
	Authenticate(identifier, secret string) model.Role
}

// StaticAdminChecker は設定値との単純比較で管理者を認証する。
// 元設計のハードコード資格情報（admin/admin、およびメール形式の
// admin@gmail.com変体）をそのまま再現する。既知の設計上の弱点であり、
// 隠さずに設定で差し替え可能にしてある。
type StaticAdminChecker struct {
	Username string // 例: "admin"
	Email    string // 例: "admin@gmail.com"
	Password string
}

// Authenticate はStaticAdminCheckerの検証を行う。
func (c StaticAdminChecker) Authenticate(identifier, secret string) model.Role {
	if secret != c.Password {
		return model.RoleNone
	}
	if identifier == c.Username || identifier == c.Email {
		return model.RoleAdmin
	}
	return model.RoleNone
}

// compile-time interface check
var _ CredentialChecker = StaticAdminChecker{}
