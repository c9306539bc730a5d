// Package model はドメインモデルを定義する。
package model

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleCustomer は一般顧客。
	RoleCustomer Role = "cliente"
	// RoleAdmin は管理者。
	RoleAdmin Role = "admin"
	// RoleNone は認証失敗を表す。
	RoleNone Role = ""
)

// UserRecord は登録ユーザーを表す。
// JSONフィールド名は既存ストアの保存形式（スペイン語キー）と互換を保つ。
// パスワードは平文で保存される。これは元設計の既知の弱点であり、
// 暗黙に修正せず保持する（DESIGN.md参照）。
type UserRecord struct {
	NombreCompleto  string `json:"nombreCompleto"`
	NombreUsuario   string `json:"nombreUsuario"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	FechaNacimiento string `json:"fechaNacimiento"` // YYYY-MM-DD
	Rol             Role   `json:"rol,omitempty"`
	Direccion       string `json:"direccion,omitempty"`
}

// Persona はリモートのpersonas.jsonドキュメントに含まれる人物レコードを表す。
type Persona struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono,omitempty"`
}
