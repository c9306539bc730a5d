// Package store は共有の永続キーバリューストアと、
// その変更通知チャネルの契約を定義する。
//
// 元のブラウザ実装ではlocalStorageとstorageイベントに相当する。
// 本実装では稼働中のサービスインスタンス1つが「タブ」1つに対応し、
// 全インスタンスが同じバックエンド（Postgres）を共有する。
// 変更通知はベストエフォートで、書き込みを行ったハンドル自身には
// 配送されない（同一ドキュメント除外）。自分の書き込みに反応したい
// 消費者はAnnounceで合成通知を発行する。
package store

import "context"

// ストアの既知キー。値はすべて文字列（構造データはJSONエンコード）。
const (
	// KeyUserData は単一の登録ユーザーレコード（UserRecord）。
	KeyUserData = "userData"
	// KeySesionActiva は通常セッションの有効フラグ（"true"/"false"）。
	KeySesionActiva = "sesionActiva"
	// KeyIsAdminLoggedIn は管理者セッションフラグ（"true"/不在）。
	// 通常セッションとは独立に管理される（元設計の観測された挙動を保持）。
	KeyIsAdminLoggedIn = "isAdminLoggedIn"
	// KeyLoggedInUser は表示名。
	KeyLoggedInUser = "loggedInUser"
	// KeyUsuarios は管理者登録経路のユーザー一覧。KeyUserDataとは別物
	// （元設計の二重化をそのまま保持。DESIGN.md参照）。
	KeyUsuarios = "usuarios"
	// KeyCart はカート内容（CartItemのリスト）。
	KeyCart = "cart"
	// KeyPurchases はローカルの注文レコード一覧。リモートの注文ドキュメント
	// とは別のデータソース（元設計の分離を保持）。
	KeyPurchases = "purchases"
)

// ValorActivo はセッションフラグの有効値。
const ValorActivo = "true"

// ValorInactivo はセッションフラグの無効値。
const ValorInactivo = "false"

// ChangeEvent はキーの変更通知を表す。
// Removeによる削除はNewValue空文字列として配送される。
type ChangeEvent struct {
	Key      string `json:"clave"`
	NewValue string `json:"valor"`
	Origin   string `json:"origen"`
}

// Store は共有キーバリューストアの契約。
// バックエンドが利用不能な場合、各操作はエラーではなく
// no-opに退化する（Getは不在として振る舞う）。
type Store interface {
	// Get はキーの値を返す。不在または読み取り失敗時はok=false。
	Get(ctx context.Context, key string) (value string, ok bool)
	// Set はキーに値を書き込み、他のハンドルへ変更通知を発行する。
	Set(ctx context.Context, key, value string)
	// Remove はキーを削除し、他のハンドルへ変更通知を発行する。
	Remove(ctx context.Context, key string)
}

// Notifier は変更通知の購読ポート。
type Notifier interface {
	// Subscribe はハンドラを登録し、解除関数を返す。
	// 購読はビューのライフタイムにスコープし、解除関数で必ず破棄すること。
	Subscribe(fn func(ChangeEvent)) (cancel func())
	// Announce は合成通知を自ハンドルの購読者のみに配送する。
	// 書き込み元が自分自身の変更に反応するための経路
	// （元実装のwindow.dispatchEvent(new Event('storage'))に相当）。
	Announce(ev ChangeEvent)
}

// Handle は1インスタンス（「タブ」）分のストアアクセスを表す。
type Handle interface {
	Store
	Notifier
	// Origin はこのハンドルの識別子。変更通知の自己除外に使用される。
	Origin() string
}

// Recorder はストア操作と通知配送の計測ポート。
type Recorder interface {
	RecordStoreOp(op string, ok bool)
	RecordNotificationDelivered()
}

// NopRecorder は何も記録しないRecorder。
type NopRecorder struct{}

// RecordStoreOp は何もしない。
func (NopRecorder) RecordStoreOp(op string, ok bool) {}

// RecordNotificationDelivered は何もしない。
func (NopRecorder) RecordNotificationDelivered() {}
