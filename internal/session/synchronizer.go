package session

import (
	"log/slog"
	"sync"

	"github.com/elpanda/tienda/internal/store"
)

// SynchronizerConfig はSynchronizerの挙動設定。
type SynchronizerConfig struct {
	// WatchUserData はuserDataキーの変更でも再同期を行うかどうか。
	// プロフィールビューはtrue、それ以外のビューはsesionActivaのみを監視する。
	WatchUserData bool
}

// Synchronizer はストアの変更通知を購読し、ビューのインメモリ状態を
// 他インスタンスの変更に追随させる。
//
// sesionActivaが"true"以外になった通知は、他のキーの値にかかわらず
// 即座にonClearを呼ぶ。他ビューから見てセッションフラグの無効化は
// 常に古いユーザーデータに優先する。それ以外の監視対象キーの変更は
// onResyncで初期化時と同じ導出をやり直す。
type Synchronizer struct {
	notifier store.Notifier
	config   SynchronizerConfig
	logger   *slog.Logger

	// onClear はこのビューのログイン状態を即座に破棄する。
	onClear func()
	// onResync はストアから状態を再導出する。nilの場合は省略される。
	onResync func()

	mu     sync.Mutex
	cancel func()
}

// NewSynchronizer はSynchronizerを生成する。
func NewSynchronizer(notifier store.Notifier, config SynchronizerConfig, logger *slog.Logger, onClear, onResync func()) *Synchronizer {
	return &Synchronizer{
		notifier: notifier,
		config:   config,
		logger:   logger,
		onClear:  onClear,
		onResync: onResync,
	}
}

// Start は変更通知の購読を開始する。
// すでに購読中の場合は何もしない（ハンドラが多重登録されることはない）。
func (s *Synchronizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	s.cancel = s.notifier.Subscribe(s.onExternalChange)
}

// Stop は購読を解除する。ビューが非アクティブになる時に必ず呼ぶこと。
// 解除しない場合、後続の通知で積み重なったハンドラが多重に発火する。
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Active は購読中かどうかを返す。テスト用。
func (s *Synchronizer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// onExternalChange は変更通知1件を処理する。
func (s *Synchronizer) onExternalChange(ev store.ChangeEvent) {
	if ev.Key == store.KeySesionActiva && ev.NewValue != store.ValorActivo {
		// 他インスタンスでのログアウト。完全な再同期を待たず即座に
		// このビューのログイン状態を破棄する。
		s.logger.Info("sincronizando cierre de sesión",
			slog.String("origen", ev.Origin),
		)
		s.onClear()
		return
	}

	if ev.Key == store.KeySesionActiva || (s.config.WatchUserData && ev.Key == store.KeyUserData) {
		if s.onResync != nil {
			s.onResync()
		}
	}
}
