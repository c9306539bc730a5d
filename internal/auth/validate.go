package auth

import (
	"fmt"
	"regexp"
	"time"

	"github.com/elpanda/tienda/internal/model"
)

// emailRegex はメールアドレスの形式検証。
// ローカル部の許容文字、@、ドットを含むドメイン、2文字以上のTLD。
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	minPasswordLen = 6
	minAge         = 13
	maxAge         = 100
	birthDateLayout = "2006-01-02"
)

// RegistrationForm は登録フォームの入力値を表す。
type RegistrationForm struct {
	NombreCompleto  string     `json:"nombreCompleto"`
	NombreUsuario   string     `json:"nombreUsuario"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirmPassword"`
	FechaNacimiento string     `json:"fechaNacimiento"` // YYYY-MM-DD
	Direccion       string     `json:"direccion"`       // 任意
	Rol             model.Role `json:"rol"`             // 管理者登録経路のみ必須
}

// registrationFields は登録フォームの全フィールド名。
// 検証失敗時はUIハイライトのため全フィールドをtouched扱いにする
// （元設計のmarkAllAsTouchedを踏襲）。
var registrationFields = []string{
	"nombreCompleto", "nombreUsuario", "email",
	"password", "confirmPassword", "fechaNacimiento", "direccion",
}

// directoryFields は管理者登録フォームの全フィールド名。
var directoryFields = []string{
	"nombreCompleto", "nombreUsuario", "email",
	"password", "confirmPassword", "fechaNacimiento", "rol",
}

// validateRegistration はセルフサービス登録の検証を行う。
// いずれかの検証に失敗した場合はnilでない*model.ValidationErrorを返し、
// 呼び出し側は一切の変更を行わずに中断する。
func validateRegistration(form RegistrationForm, now time.Time) *model.ValidationError {
	var reasons []string

	if form.NombreCompleto == "" {
		reasons = append(reasons, "nombreCompleto requerido")
	}
	if form.NombreUsuario == "" {
		reasons = append(reasons, "nombreUsuario requerido")
	}
	reasons = append(reasons, validateEmail(form.Email)...)
	reasons = append(reasons, validatePassword(form.Password, form.ConfirmPassword)...)
	reasons = append(reasons, validateBirthDate(form.FechaNacimiento, now)...)

	if len(reasons) > 0 {
		return model.NewValidationError(reasons, registrationFields)
	}
	return nil
}

// validateDirectory は管理者登録経路の検証を行う。
// 年齢検証は行わない（元設計の管理者フォームにはなかった）。役割は必須。
func validateDirectory(form RegistrationForm) *model.ValidationError {
	var reasons []string

	if form.NombreCompleto == "" {
		reasons = append(reasons, "nombreCompleto requerido")
	}
	if form.NombreUsuario == "" {
		reasons = append(reasons, "nombreUsuario requerido")
	}
	reasons = append(reasons, validateEmail(form.Email)...)
	reasons = append(reasons, validatePassword(form.Password, form.ConfirmPassword)...)
	if form.FechaNacimiento == "" {
		reasons = append(reasons, "fechaNacimiento requerida")
	}
	if form.Rol == "" {
		reasons = append(reasons, "rol requerido")
	}

	if len(reasons) > 0 {
		return model.NewValidationError(reasons, directoryFields)
	}
	return nil
}

func validateEmail(email string) []string {
	if email == "" {
		return []string{"email requerido"}
	}
	if !emailRegex.MatchString(email) {
		return []string{"formato de email inválido"}
	}
	return nil
}

func validatePassword(password, confirm string) []string {
	var reasons []string
	if password == "" {
		reasons = append(reasons, "password requerida")
	} else if len(password) < minPasswordLen {
		reasons = append(reasons, fmt.Sprintf("password de al menos %d caracteres", minPasswordLen))
	}
	if confirm == "" {
		reasons = append(reasons, "confirmPassword requerida")
	} else if password != confirm {
		reasons = append(reasons, "las contraseñas no coinciden")
	}
	return reasons
}

func validateBirthDate(raw string, now time.Time) []string {
	if raw == "" {
		return []string{"fechaNacimiento requerida"}
	}
	birth, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return []string{"fecha de nacimiento inválida"}
	}
	age := ageAt(birth, now)
	if age < minAge || age > maxAge {
		return []string{fmt.Sprintf("edad fuera del rango [%d, %d]", minAge, maxAge)}
	}
	return nil
}

// ageAt は暦年差から、今年の誕生日がまだ来ていない場合に1を引いた年齢を返す。
func ageAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	birthdayThisYear := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(birthdayThisYear) {
		age--
	}
	return age
}
