// Package cart はカート管理のドメインロジックを提供する。
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/store"
)

// Service はカート操作と合計数量カウンタを提供する。
// 永続状態はストアのcartキーが所有し、カウンタはその派生キャッシュ。
type Service struct {
	st     store.Store
	logger *slog.Logger

	mu    sync.Mutex
	count int
}

// NewService はServiceを生成する。
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{st: st, logger: logger}
}

// AddToCart は商品をカートへ追加する。
// 同じ商品IDが既にあれば数量を1増やし、なければ数量1で追記する
// （IDについては冪等、効果については非冪等）。
//
// インメモリの合計カウンタは永続コレクションから再計算せず+1する。
// 他インスタンスが同時にカートを変更した場合にずれ得るのは既知の
// 整合性ギャップであり、修正せずに保持する。再調整はLoadCartCountが担う。
func (s *Service) AddToCart(ctx context.Context, product model.Product) {
	raw, ok := s.st.Get(ctx, store.KeyCart)
	items := store.DecodeList[model.CartItem](raw, ok)

	found := false
	for i := range items {
		if items[i].ID == product.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, model.CartItem{
			ID:       product.ID,
			Nombre:   product.Nombre,
			Precio:   product.Precio,
			Quantity: 1,
		})
	}

	s.st.Set(ctx, store.KeyCart, store.EncodeJSON(items))

	s.mu.Lock()
	s.count++
	s.mu.Unlock()

	s.logger.Info("producto agregado al carrito",
		slog.String("producto", product.ID),
	)
}

// Count は現在のインメモリ合計数量を返す。
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// LoadCartCount は永続コレクションから合計数量を再計算してカウンタを
// 再調整する。初期化時と完全な再同期が必要な場面で使用する。
// 不在・壊れたカートデータはエラーなしで0になる。
func (s *Service) LoadCartCount(ctx context.Context) int {
	raw, ok := s.st.Get(ctx, store.KeyCart)
	items := store.DecodeList[model.CartItem](raw, ok)

	total := 0
	for _, item := range items {
		total += item.Quantity
	}

	s.mu.Lock()
	s.count = total
	s.mu.Unlock()
	return total
}
