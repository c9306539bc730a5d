package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/store"
)

// ログイン失敗の内部理由。ユーザーには両方とも同じ汎用メッセージで
// 提示されるが、内部（テストとログ）では区別される。
var (
	// ErrNoRecord は登録レコードが存在しない。
	ErrNoRecord = errors.New("auth: no hay registro de usuario")
	// ErrCredentialMismatch は登録レコードと資格情報が一致しない。
	ErrCredentialMismatch = errors.New("auth: credenciales incorrectas")
)

// LoginOutcome はログイン成功の結果を表す。
type LoginOutcome struct {
	Role     model.Role
	Username string
}

// Service は認証・登録のビジネスロジックを提供する。
// 全ての耐久状態は注入されたストアハンドルが所有する。
type Service struct {
	handle  store.Handle
	checker CredentialChecker
	logger  *slog.Logger

	// now は年齢検証の基準時刻。テストで差し替える。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(handle store.Handle, checker CredentialChecker, logger *slog.Logger) *Service {
	return &Service{
		handle:  handle,
		checker: checker,
		logger:  logger,
		now:     time.Now,
	}
}

// Register はセルフサービス登録を実行する。
// 検証失敗時は*model.ValidationErrorを返し、ストアへの変更は行わない。
// 成功時はuserDataを上書きする。このストアキーは単一レコードのみを
// 保持するため、再登録は既存レコードを常に置き換える（元設計の制限を保持）。
func (s *Service) Register(ctx context.Context, form RegistrationForm) error {
	if verr := validateRegistration(form, s.now()); verr != nil {
		return verr
	}

	record := model.UserRecord{
		NombreCompleto:  form.NombreCompleto,
		NombreUsuario:   form.NombreUsuario,
		Email:           form.Email,
		Password:        form.Password,
		FechaNacimiento: form.FechaNacimiento,
		Direccion:       form.Direccion,
	}
	s.handle.Set(ctx, store.KeyUserData, store.EncodeJSON(record))

	s.logger.Info("usuario registrado",
		slog.String("email", record.Email),
	)
	return nil
}

// RegisterDirectory は管理者登録経路を実行する。
// userDataではなくusuariosリストに追記する。この二重化は元設計の
// 観測された挙動であり、統合せずに保持する（DESIGN.md参照）。
func (s *Service) RegisterDirectory(ctx context.Context, form RegistrationForm) error {
	if verr := validateDirectory(form); verr != nil {
		return verr
	}

	raw, ok := s.handle.Get(ctx, store.KeyUsuarios)
	usuarios := store.DecodeList[model.UserRecord](raw, ok)
	usuarios = append(usuarios, model.UserRecord{
		NombreCompleto:  form.NombreCompleto,
		NombreUsuario:   form.NombreUsuario,
		Email:           form.Email,
		Password:        form.Password,
		FechaNacimiento: form.FechaNacimiento,
		Rol:             form.Rol,
	})
	s.handle.Set(ctx, store.KeyUsuarios, store.EncodeJSON(usuarios))

	s.logger.Info("usuario registrado en el directorio",
		slog.String("email", form.Email),
		slog.String("rol", string(form.Rol)),
	)
	return nil
}

// Login は識別子とパスワードでログインを試みる（ホームビューのフロー）。
//
// まず注入されたCredentialCheckerで管理者ショートカットを検証し、
// 管理者でなければ単一のuserDataレコードとの比較に進む。
func (s *Service) Login(ctx context.Context, identifier, password string) (LoginOutcome, error) {
	if role := s.checker.Authenticate(identifier, password); role == model.RoleAdmin {
		s.grantAdminSession(ctx, identifier)
		return LoginOutcome{Role: model.RoleAdmin, Username: "Admin"}, nil
	}
	return s.LoginUser(ctx, identifier, password)
}

// LoginAdmin は管理者ショートカットのみを検証する（管理画面のフロー）。
// 登録レコードへのフォールバックは行わない。
func (s *Service) LoginAdmin(ctx context.Context, identifier, password string) (LoginOutcome, error) {
	if role := s.checker.Authenticate(identifier, password); role != model.RoleAdmin {
		return LoginOutcome{}, ErrCredentialMismatch
	}
	s.grantAdminSession(ctx, identifier)
	return LoginOutcome{Role: model.RoleAdmin, Username: "Admin"}, nil
}

// grantAdminSession は管理者セッションのフラグを設定する。
// sesionActivaは設定しない（管理者セッションは通常セッションと独立管理）。
// 変更通知も発行しない。
func (s *Service) grantAdminSession(ctx context.Context, identifier string) {
	s.handle.Set(ctx, store.KeyIsAdminLoggedIn, store.ValorActivo)
	s.handle.Set(ctx, store.KeyLoggedInUser, "Admin")

	s.logger.Info("inicio de sesión de administrador",
		slog.String("identifier", identifier),
	)
}

// LoginUser は単一のuserDataレコードのemail/passwordと比較する
// （プロフィールビューのフロー。管理者ショートカットは参照しない）。
// 成功時はsesionActiva=trueを設定し、書き込み元インスタンス自身も
// 再同期できるよう合成変更通知を発行する。
func (s *Service) LoginUser(ctx context.Context, identifier, password string) (LoginOutcome, error) {
	raw, ok := s.handle.Get(ctx, store.KeyUserData)
	user, decoded := store.DecodeRecord[model.UserRecord](raw, ok)
	if !decoded {
		return LoginOutcome{}, ErrNoRecord
	}

	if user.Email != identifier || user.Password != password {
		return LoginOutcome{}, ErrCredentialMismatch
	}

	s.handle.Set(ctx, store.KeySesionActiva, store.ValorActivo)
	s.handle.Announce(store.ChangeEvent{
		Key:      store.KeySesionActiva,
		NewValue: store.ValorActivo,
		Origin:   s.handle.Origin(),
	})

	s.logger.Info("inicio de sesión exitoso",
		slog.String("email", user.Email),
	)
	return LoginOutcome{Role: model.RoleCustomer, Username: user.NombreCompleto}, nil
}

// Logout は通常セッションを無効化する。
// sesionActivaをfalseに設定する（userDataは決して削除しない。
// 古いユーザーデータが残るのは元設計どおり）。管理者フラグも除去し、
// 合成変更通知で自インスタンスのビューにも反映させる。
func (s *Service) Logout(ctx context.Context) {
	s.handle.Set(ctx, store.KeySesionActiva, store.ValorInactivo)
	s.handle.Remove(ctx, store.KeyIsAdminLoggedIn)
	s.handle.Remove(ctx, store.KeyLoggedInUser)

	s.handle.Announce(store.ChangeEvent{
		Key:      store.KeySesionActiva,
		NewValue: store.ValorInactivo,
		Origin:   s.handle.Origin(),
	})

	s.logger.Info("sesión cerrada")
}

// AdminLogout は管理者セッションのみを破棄する。
// 通常セッションのフラグには触れない（元の管理画面の挙動）。
func (s *Service) AdminLogout(ctx context.Context) {
	s.handle.Remove(ctx, store.KeyIsAdminLoggedIn)
	s.handle.Remove(ctx, store.KeyLoggedInUser)

	s.logger.Info("sesión de administrador cerrada")
}
