package orders

import (
	"context"
	"log/slog"

	"github.com/elpanda/tienda/internal/model"
	"github.com/elpanda/tienda/internal/store"
)

// Admin は管理者による注文ステータス更新を提供する。
// 操作対象はローカルのpurchasesコレクションのみで、追跡が参照する
// リモートドキュメントとは別物（元設計の分離を保持）。
type Admin struct {
	st     store.Store
	logger *slog.Logger
}

// NewAdmin はAdminを生成する。
func NewAdmin(st store.Store, logger *slog.Logger) *Admin {
	return &Admin{st: st, logger: logger}
}

// LoadPurchases はローカルの注文レコード一覧を返す。
// 不在・壊れたデータはエラーなしで空リストになる。
func (a *Admin) LoadPurchases(ctx context.Context) []model.PurchaseRecord {
	raw, ok := a.st.Get(ctx, store.KeyPurchases)
	return store.DecodeList[model.PurchaseRecord](raw, ok)
}

// UpdateStatus は追跡番号が完全一致するレコードのステータスを書き換え、
// コレクション全体を永続化し直す。一致がなければ何も変更せずfalseを返す
// （未検出は正常系の結果でありエラーではない）。
func (a *Admin) UpdateStatus(ctx context.Context, trackingNumber, newStatus string) bool {
	raw, ok := a.st.Get(ctx, store.KeyPurchases)
	purchases := store.DecodeList[model.PurchaseRecord](raw, ok)

	for i := range purchases {
		if purchases[i].TrackingNumber == trackingNumber {
			purchases[i].Status = newStatus
			a.st.Set(ctx, store.KeyPurchases, store.EncodeJSON(purchases))

			a.logger.Info("estado del pedido actualizado",
				slog.String("tracking_number", trackingNumber),
				slog.String("status", newStatus),
			)
			return true
		}
	}

	a.logger.Warn("número de seguimiento no encontrado",
		slog.String("tracking_number", trackingNumber),
	)
	return false
}
