package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/elpanda/tienda/internal/middleware"
)

// MetricsRecorder はハンドラーが記録する業務メトリクスのインターフェース。
type MetricsRecorder interface {
	RecordLogin(result string)
	RecordLogout()
	RecordRegistration(route string)
	RecordCartAdd()
	RecordTracking(result string)
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 画面コントローラ
	Index    IndexViewInterface
	User     UserViewInterface
	Tracking TrackingViewInterface
	Admin    AdminViewInterface
	Personas PersonasViewInterface

	// メトリクス（nil可。nilの場合は記録しない）
	Metrics MetricsRecorder
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → RateLimit(General)
//
// ログイン系エンドポイントにはより厳しいレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	indexHandler := NewIndexHandler(deps.Index, deps.Metrics)
	userHandler := NewUserHandler(deps.User, deps.Metrics)
	trackingHandler := NewTrackingHandler(deps.Tracking, deps.Metrics)
	adminHandler := NewAdminHandler(deps.Admin, deps.Metrics)
	personasHandler := NewPersonasHandler(deps.Personas, deps.Admin)

	// ヘルスチェックはレート制限の外に置く
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ホームビュー
		r.Get("/", indexHandler.State)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", indexHandler.Login)
		r.Post("/logout", indexHandler.Logout)
		r.Get("/perfil", indexHandler.GoToProfile)

		// カート
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", indexHandler.CartCount)
			r.Post("/", indexHandler.AddToCart)
		})

		// プロフィールビュー
		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.State)
			r.Post("/register", userHandler.Register)
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
		})

		// 配送追跡ビュー
		r.Post("/seg-pedido/track", trackingHandler.Track)

		// 管理画面
		r.Route("/admin", func(r chi.Router) {
			r.Get("/", adminHandler.State)
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", adminHandler.Login)
			r.Post("/register", adminHandler.Register)
			r.Post("/pedidos/estado", adminHandler.UpdateOrderStatus)
			r.Post("/logout", adminHandler.Logout)
		})

		// リモートのpersonas一覧
		r.Route("/lista-personas", func(r chi.Router) {
			r.Get("/", personasHandler.List)
			r.Post("/", personasHandler.Replace)
		})
	})

	return r
}
