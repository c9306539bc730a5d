package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elpanda/tienda/internal/model"
)

// ErrFetchFailed はリモート取得の失敗を表す。
// 「見つからない」（正常系の結果、nilで表現）とは明確に区別される。
var ErrFetchFailed = errors.New("orders: no se pudo cargar la colección remota")

// OrderFetcher は注文コレクションの取得ポート。
type OrderFetcher interface {
	FetchOrders(ctx context.Context) ([]model.PurchaseRecord, error)
}

// Tracker は追跡番号による注文検索を提供する。
type Tracker struct {
	fetcher OrderFetcher
	logger  *slog.Logger
}

// NewTracker はTrackerを生成する。
func NewTracker(fetcher OrderFetcher, logger *slog.Logger) *Tracker {
	return &Tracker{fetcher: fetcher, logger: logger}
}

// Track は追跡番号で注文を検索する。
// 空の追跡番号はリモート取得を行わずローカルで拒否する。
// 取得失敗はErrFetchFailedをラップしたエラー、未検出は(nil, nil)。
//
// 取得中の再呼び出しはレースし、最後に到着した応答が勝つ
// （古い応答を破棄するリクエストトークンは元設計に存在しない。
// 既知のギャップとして保持）。
func (t *Tracker) Track(ctx context.Context, trackingNumber string) (*model.PurchaseRecord, error) {
	if trackingNumber == "" {
		return nil, model.NewTrackingRequiredError()
	}

	orders, err := t.fetcher.FetchOrders(ctx)
	if err != nil {
		t.logger.Error("error al cargar los pedidos remotos",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	for i := range orders {
		if orders[i].TrackingNumber == trackingNumber {
			t.logger.Info("pedido encontrado",
				slog.String("tracking_number", trackingNumber),
			)
			return &orders[i], nil
		}
	}

	t.logger.Warn("pedido no encontrado",
		slog.String("tracking_number", trackingNumber),
	)
	return nil, nil
}
