// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// ハンドラー層の業務メトリクスとストア層の操作メトリクスの両方を集約する。
type Collector struct {
	logins                 *prometheus.CounterVec
	logouts                prometheus.Counter
	registrations          *prometheus.CounterVec
	cartAdds               prometheus.Counter
	trackingLookups        *prometheus.CounterVec
	remoteFetchFailures    *prometheus.CounterVec
	remoteFetchLatency     prometheus.Histogram
	storeOps               *prometheus.CounterVec
	notificationsDelivered prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tienda_logins_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tienda_logouts_total",
			Help: "ログアウトの合計数",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tienda_registrations_total",
			Help: "登録経路別のユーザー登録合計数",
		}, []string{"route"}),
		cartAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tienda_cart_adds_total",
			Help: "カート追加の合計数",
		}),
		trackingLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tienda_tracking_lookups_total",
			Help: "注文追跡検索の結果別合計数",
		}, []string{"result"}),
		remoteFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tienda_remote_fetch_failures_total",
			Help: "リモートドキュメント取得失敗のURL別合計数",
		}, []string{"url"}),
		remoteFetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tienda_remote_fetch_latency_seconds",
			Help:    "リモートドキュメント取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tienda_store_ops_total",
			Help: "耐久ストア操作の種別・成否別合計数",
		}, []string{"op", "ok"}),
		notificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tienda_notifications_delivered_total",
			Help: "配送された変更通知の合計数",
		}),
	}

	reg.MustRegister(
		c.logins,
		c.logouts,
		c.registrations,
		c.cartAdds,
		c.trackingLookups,
		c.remoteFetchFailures,
		c.remoteFetchLatency,
		c.storeOps,
		c.notificationsDelivered,
	)

	return c
}

// RecordLogin はログイン試行を結果別に記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordLogout はログアウトを記録する。
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// RecordRegistration はユーザー登録を経路別に記録する。
func (c *Collector) RecordRegistration(route string) {
	c.registrations.WithLabelValues(route).Inc()
}

// RecordCartAdd はカート追加を記録する。
func (c *Collector) RecordCartAdd() {
	c.cartAdds.Inc()
}

// RecordTracking は注文追跡検索を結果別に記録する。
func (c *Collector) RecordTracking(result string) {
	c.trackingLookups.WithLabelValues(result).Inc()
}

// RecordRemoteFetchFailure はリモート取得失敗を記録する。
func (c *Collector) RecordRemoteFetchFailure(url string) {
	c.remoteFetchFailures.WithLabelValues(url).Inc()
}

// RecordRemoteFetchLatency はリモート取得のレイテンシを記録する。
func (c *Collector) RecordRemoteFetchLatency(duration time.Duration) {
	c.remoteFetchLatency.Observe(duration.Seconds())
}

// RecordStoreOp は耐久ストア操作を種別・成否別に記録する。
func (c *Collector) RecordStoreOp(op string, ok bool) {
	okLabel := "true"
	if !ok {
		okLabel = "false"
	}
	c.storeOps.WithLabelValues(op, okLabel).Inc()
}

// RecordNotificationDelivered は変更通知の配送を記録する。
func (c *Collector) RecordNotificationDelivered() {
	c.notificationsDelivered.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
