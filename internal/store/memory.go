package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend はインメモリのストアバックエンド。
// テストおよび単一インスタンス実行用。複数のハンドルが同じマップを共有し、
// 書き込み元以外のハンドルへ同期的に変更通知をファンアウトする。
type MemoryBackend struct {
	mu      sync.RWMutex
	data    map[string]string
	handles []*MemoryHandle
}

// NewMemoryBackend はMemoryBackendを生成する。
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string]string),
	}
}

// NewHandle は新しいハンドル（「タブ」1つ分）を生成して登録する。
func (b *MemoryBackend) NewHandle() *MemoryHandle {
	h := &MemoryHandle{
		backend:     b,
		origin:      uuid.New().String(),
		subscribers: make(map[int]func(ChangeEvent)),
	}
	b.mu.Lock()
	b.handles = append(b.handles, h)
	b.mu.Unlock()
	return h
}

// broadcast は書き込み元以外の全ハンドルへ変更通知を配送する。
func (b *MemoryBackend) broadcast(ev ChangeEvent) {
	b.mu.RLock()
	handles := make([]*MemoryHandle, len(b.handles))
	copy(handles, b.handles)
	b.mu.RUnlock()

	for _, h := range handles {
		if h.origin == ev.Origin {
			continue
		}
		h.dispatch(ev)
	}
}

// MemoryHandle はMemoryBackend上の1ハンドル。
type MemoryHandle struct {
	backend *MemoryBackend
	origin  string

	subMu       sync.Mutex
	subscribers map[int]func(ChangeEvent)
	nextSubID   int
}

// Origin はハンドルの識別子を返す。
func (h *MemoryHandle) Origin() string {
	return h.origin
}

// Get はキーの値を返す。
func (h *MemoryHandle) Get(ctx context.Context, key string) (string, bool) {
	h.backend.mu.RLock()
	defer h.backend.mu.RUnlock()
	v, ok := h.backend.data[key]
	return v, ok
}

// Set はキーに値を書き込み、他のハンドルへ通知する。
func (h *MemoryHandle) Set(ctx context.Context, key, value string) {
	h.backend.mu.Lock()
	h.backend.data[key] = value
	h.backend.mu.Unlock()

	h.backend.broadcast(ChangeEvent{Key: key, NewValue: value, Origin: h.origin})
}

// Remove はキーを削除し、他のハンドルへ通知する。
// 削除はNewValue空文字列として配送される。
func (h *MemoryHandle) Remove(ctx context.Context, key string) {
	h.backend.mu.Lock()
	delete(h.backend.data, key)
	h.backend.mu.Unlock()

	h.backend.broadcast(ChangeEvent{Key: key, NewValue: "", Origin: h.origin})
}

// Subscribe はハンドラを登録し、解除関数を返す。
func (h *MemoryHandle) Subscribe(fn func(ChangeEvent)) func() {
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
func (h *MemoryHandle) Announce(ev ChangeEvent) {
	h.dispatch(ev)
}

// dispatch は登録済みハンドラへ通知を配送する。
// ハンドラはロック外で呼び出す。
func (h *MemoryHandle) dispatch(ev ChangeEvent) {
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
var _ Handle = (*MemoryHandle)(nil)
