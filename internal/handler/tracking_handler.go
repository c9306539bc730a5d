package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/elpanda/tienda/internal/model"
)

// TrackingViewInterface は配送追跡ハンドラーが必要とするコントローラインターフェース。
type TrackingViewInterface interface {
	// Track は追跡番号で注文を検索する。見つからない場合は(nil, nil)。
	Track(ctx context.Context, trackingNumber string) (*model.PurchaseRecord, error)
	// State は現在のメモリ内セッション状態を返す。
	State() (username string, loggedIn bool)
	// CartCount はメモリ内の累計カート数を返す。
	CartCount() int
}

// TrackingHandler は配送追跡ビューのHTTPハンドラー。
type TrackingHandler struct {
	controller TrackingViewInterface
	metrics    MetricsRecorder
}

// NewTrackingHandler はTrackingHandlerを生成する。
func NewTrackingHandler(controller TrackingViewInterface, metrics MetricsRecorder) *TrackingHandler {
	return &TrackingHandler{
		controller: controller,
		metrics:    metrics,
	}
}

// trackRequest は注文追跡リクエストのボディ。
type trackRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

// Track は追跡番号で注文を検索する。
// POST /seg-pedido/track
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	rec, err := h.controller.Track(r.Context(), req.TrackingNumber)
	if err != nil {
		h.recordTracking("error")
		handleServiceError(w, err)
		return
	}
	if rec == nil {
		h.recordTracking("not_found")
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewOrderNotFoundError(req.TrackingNumber))
		return
	}

	h.recordTracking("found")
	writeJSON(w, http.StatusOK, rec)
}

func (h *TrackingHandler) recordTracking(result string) {
	if h.metrics != nil {
		h.metrics.RecordTracking(result)
	}
}
