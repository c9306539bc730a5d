package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DefaultChannel は変更通知に使用するLISTEN/NOTIFYチャネル名。
const DefaultChannel = "almacen_cambios"

// PostgresBackend はPostgreSQLを使用したストアバックエンド。
// almacenテーブルをキーバリューストアとして使用し、書き込みと同一
// トランザクションでpg_notifyを発行する。別インスタンスで発生した
// 変更はpq.Listenerで受信し、発行元以外のローカルハンドルへ配送する。
type PostgresBackend struct {
	db          *sql.DB
	databaseURL string
	channel     string
	logger      *slog.Logger
	recorder    Recorder

	mu      sync.RWMutex
	handles []*PostgresHandle

	listener *pq.Listener
}

// NewPostgresBackend はPostgresBackendを生成する。
// recorderがnilの場合は計測なしで動作する。
func NewPostgresBackend(db *sql.DB, databaseURL, channel string, logger *slog.Logger, recorder Recorder) *PostgresBackend {
	if channel == "" {
		channel = DefaultChannel
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &PostgresBackend{
		db:          db,
		databaseURL: databaseURL,
		channel:     channel,
		logger:      logger,
		recorder:    recorder,
	}
}

// NewHandle は新しいハンドル（1インスタンス分）を生成して登録する。
func (b *PostgresBackend) NewHandle() *PostgresHandle {
	h := &PostgresHandle{
		backend:     b,
		origin:      uuid.New().String(),
		subscribers: make(map[int]func(ChangeEvent)),
	}
	b.mu.Lock()
	b.handles = append(b.handles, h)
	b.mu.Unlock()
	return h
}

// StartListening は変更通知チャネルのLISTENを開始する。
// コンテキストがキャンセルされるまでバックグラウンドで受信を継続する。
func (b *PostgresBackend) StartListening(ctx context.Context) error {
	listener := pq.NewListener(b.databaseURL, 2*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				b.logger.Error("ストア通知リスナーでエラーが発生しました",
					slog.Int("event", int(event)),
					slog.String("error", err.Error()),
				)
			}
		})

	if err := listener.Listen(b.channel); err != nil {
		listener.Close()
		return fmt.Errorf("failed to listen on channel %s: %w", b.channel, err)
	}

	b.listener = listener
	go b.listenLoop(ctx)

	b.logger.Info("ストア変更通知の受信を開始しました",
		slog.String("channel", b.channel),
	)
	return nil
}

// listenLoop は通知を受信してローカルハンドルへ配送する。
func (b *PostgresBackend) listenLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if err := b.listener.Close(); err != nil {
				b.logger.Error("リスナーのクローズに失敗しました",
					slog.String("error", err.Error()),
				)
			}
			return
		case n := <-b.listener.Notify:
			// 再接続直後はnilが届く。配送済み通知の再送は行われないため
			// 取りこぼしはあり得る（ベストエフォート配送、仕様どおり）。
			if n == nil {
				continue
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				b.logger.Warn("変更通知ペイロードの復号に失敗しました",
					slog.String("payload", n.Extra),
					slog.String("error", err.Error()),
				)
				continue
			}
			b.dispatch(ev)
		case <-time.After(90 * time.Second):
			// アイドル時は接続の生存確認を行う
			go func() {
				if err := b.listener.Ping(); err != nil {
					b.logger.Warn("リスナーのPingに失敗しました",
						slog.String("error", err.Error()),
					)
				}
			}()
		}
	}
}

// dispatch は発行元以外のローカルハンドルへ通知を配送する。
// 発行元ハンドルの除外はオリジンIDで行う（同一ドキュメント除外に相当）。
func (b *PostgresBackend) dispatch(ev ChangeEvent) {
	b.mu.RLock()
	handles := make([]*PostgresHandle, len(b.handles))
	copy(handles, b.handles)
	b.mu.RUnlock()

	for _, h := range handles {
		if h.origin == ev.Origin {
			continue
		}
		h.dispatch(ev)
		b.recorder.RecordNotificationDelivered()
	}
}

// PostgresHandle はPostgresBackend上の1ハンドル。
type PostgresHandle struct {
	backend *PostgresBackend
	origin  string

	subMu       sync.Mutex
	subscribers map[int]func(ChangeEvent)
	nextSubID   int
}

// Origin はハンドルの識別子を返す。
func (h *PostgresHandle) Origin() string {
	return h.origin
}

// Get はキーの値を返す。読み取り失敗時は不在として振る舞う
// （ストア利用不能時の各操作はエラーではなくno-op、という契約）。
func (h *PostgresHandle) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := h.backend.db.QueryRowContext(ctx,
		`SELECT valor FROM almacen WHERE clave = $1`,
		key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		h.backend.recorder.RecordStoreOp("get", true)
		return "", false
	}
	if err != nil {
		h.backend.logger.Error("ストアの読み取りに失敗しました",
			slog.String("clave", key),
			slog.String("error", err.Error()),
		)
		h.backend.recorder.RecordStoreOp("get", false)
		return "", false
	}

	h.backend.recorder.RecordStoreOp("get", true)
	return value, true
}

// Set はキーに値を書き込み、同一トランザクションで変更通知を発行する。
// 失敗はログに記録され、操作はno-opに退化する。
func (h *PostgresHandle) Set(ctx context.Context, key, value string) {
	ev := ChangeEvent{Key: key, NewValue: value, Origin: h.origin}
	err := h.execWithNotify(ctx, ev,
		`INSERT INTO almacen (clave, valor) VALUES ($1, $2)
		 ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor, actualizado_en = now()`,
		key, value,
	)
	if err != nil {
		h.backend.logger.Error("ストアへの書き込みに失敗しました",
			slog.String("clave", key),
			slog.String("error", err.Error()),
		)
		h.backend.recorder.RecordStoreOp("set", false)
		return
	}
	h.backend.recorder.RecordStoreOp("set", true)
}

// Remove はキーを削除し、同一トランザクションで変更通知を発行する。
// 削除はNewValue空文字列として配送される。
func (h *PostgresHandle) Remove(ctx context.Context, key string) {
	ev := ChangeEvent{Key: key, NewValue: "", Origin: h.origin}
	err := h.execWithNotify(ctx, ev,
		`DELETE FROM almacen WHERE clave = $1`,
		key,
	)
	if err != nil {
		h.backend.logger.Error("ストアからの削除に失敗しました",
			slog.String("clave", key),
			slog.String("error", err.Error()),
		)
		h.backend.recorder.RecordStoreOp("remove", false)
		return
	}
	h.backend.recorder.RecordStoreOp("remove", true)
}

// execWithNotify は書き込みクエリとpg_notifyを同一トランザクションで実行する。
func (h *PostgresHandle) execWithNotify(ctx context.Context, ev ChangeEvent, query string, args ...any) error {
	payload := EncodeJSON(ev)

	tx, err := h.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to write almacen: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, h.backend.channel, payload); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to notify: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Subscribe はハンドラを登録し、解除関数を返す。
func (h *PostgresHandle) Subscribe(fn func(ChangeEvent)) func() {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	h.subscribers[id] = fn

	return func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		delete(h.subscribers, id)
	}
}

// Announce は合成通知を自ハンドルの購読者のみに配送する。
func (h *PostgresHandle) Announce(ev ChangeEvent) {
	h.dispatch(ev)
}

// dispatch は登録済みハンドラへ通知を配送する。
func (h *PostgresHandle) dispatch(ev ChangeEvent) {
	h.subMu.Lock()
	fns := make([]func(ChangeEvent), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		fns = append(fns, fn)
	}
	h.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// compile-time interface check
var _ Handle = (*PostgresHandle)(nil)
