// Package session はセッション状態の導出と、
// インスタンス間のセッション同期を提供する。
package session

import (
	"context"

	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/store"
)

// State は通常ユーザーのセッション状態を表す。
// ストアから導出される値で、ビューはこれをキャッシュとして保持する。
type State struct {
	Active   bool
	Username string
}

// AdminState は管理者セッションの状態を表す。
// 通常セッションのフラグとは独立に管理される（元設計の分離を保持）。
type AdminState struct {
	Active    bool
	AdminUser string
}

// Check はストアから通常セッション状態を導出する。
// userDataが存在し、かつsesionActivaが"true"の場合のみログイン中とみなす。
// ログアウト後もuserDataは残るため、フラグ単独では判定しない。
func Check(ctx context.Context, st store.Store) State {
	rawUser, hasUser := st.Get(ctx, store.KeyUserData)
	activa, _ := st.Get(ctx, store.KeySesionActiva)

	if !hasUser || activa != store.ValorActivo {
		return State{}
	}

	user, ok := store.DecodeRecord[model.UserRecord](rawUser, hasUser)
	if !ok {
		// 壊れたuserDataは不在として扱う
		return State{}
	}

	return State{
		Active:   true,
		Username: user.NombreCompleto,
	}
}

// CheckAdmin はストアから管理者セッション状態を導出する。
func CheckAdmin(ctx context.Context, st store.Store) AdminState {
	flag, _ := st.Get(ctx, store.KeyIsAdminLoggedIn)
	if flag != store.ValorActivo {
		return AdminState{}
	}

	name, ok := st.Get(ctx, store.KeyLoggedInUser)
	if !ok || name == "" {
		name = "Admin"
	}
	return AdminState{Active: true, AdminUser: name}
}
