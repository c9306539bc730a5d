// Package orders は注文追跡とステータス更新を提供する。
// リモートの注文ドキュメント（外部コラボレータ）とローカルのpurchases
// コレクションは別のデータソースであり、統合しない（DESIGN.md参照）。
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"

	"github.com/elpanda/tienda/internal/model"
)

// maxResponseSize はリモートドキュメントの最大読み取りサイズ。
const maxResponseSize = 5 * 1024 * 1024

// RemoteClientConfig はRemoteClientの設定。
type RemoteClientConfig struct {
	// OrdersURL は注文コレクション（carrito.json）の読み取りエンドポイント。
	OrdersURL string
	// PersonasURL は人物コレクション（personas.json）の読み書きエンドポイント。
	PersonasURL string
	// BearerToken は書き込みエンドポイントの静的ベアラー資格情報。
	// クライアントに埋め込まれる静的トークンは元設計の既知の弱点であり、
	// 隠さず設定で差し替え可能にしてある。
	BearerToken string
	Timeout     time.Duration
}

// FetchRecorder はリモート取得のメトリクスを記録する。
type FetchRecorder interface {
	RecordRemoteFetchFailure(url string)
	RecordRemoteFetchLatency(duration time.Duration)
}

// RemoteClient はリモートJSONドキュメントのクライアント。
// 読み取りは全コレクションの取得、書き込みはドキュメント全体の上書き。
type RemoteClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     RemoteClientConfig
	recorder   FetchRecorder
}

// SetRecorder はメトリクスレコーダーを設定する。nilの場合は記録しない。
func (c *RemoteClient) SetRecorder(recorder FetchRecorder) {
	c.recorder = recorder
}

func (c *RemoteClient) recordFailure(url string) {
	if c.recorder != nil {
		c.recorder.RecordRemoteFetchFailure(url)
	}
}

func (c *RemoteClient) recordLatency(start time.Time) {
	if c.recorder != nil {
		c.recorder.RecordRemoteFetchLatency(time.Since(start))
	}
}

// NewRemoteClient はRemoteClientを生成する。
// HTTPクライアントはsafeurlで構築し、プライベートIPや
// メタデータIPへのリクエストをダイヤラレベルでブロックする。
func NewRemoteClient(config RemoteClientConfig, logger *slog.Logger) *RemoteClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	safeConfig := safeurl.GetConfigBuilder().
		SetTimeout(config.Timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return &RemoteClient{
		httpClient: safeurl.Client(safeConfig).Client,
		logger:     logger,
		config:     config,
	}
}

// FetchOrders はリモートの注文コレクション全体を取得する。
func (c *RemoteClient) FetchOrders(ctx context.Context) ([]model.PurchaseRecord, error) {
	var orders []model.PurchaseRecord
	if err := c.fetch(ctx, c.config.OrdersURL, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchPersonas はリモートの人物コレクション全体を取得する。
func (c *RemoteClient) FetchPersonas(ctx context.Context) ([]model.Persona, error) {
	var personas []model.Persona
	if err := c.fetch(ctx, c.config.PersonasURL, &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

// ReplacePersonas はリモートの人物ドキュメント全体を与えられたリストで
// 上書きする。静的ベアラー資格情報で認証される管理者専用の操作。
func (c *RemoteClient) ReplacePersonas(ctx context.Context, personas []model.Persona) error {
	body, err := json.Marshal(personas)
	if err != nil {
		return fmt.Errorf("failed to encode personas: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.PersonasURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(c.config.PersonasURL)
		c.logger.Error("error al sobrescribir el documento remoto",
			slog.String("url", c.config.PersonasURL),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to overwrite remote document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recordFailure(c.config.PersonasURL)
		c.logger.Error("el endpoint remoto devolvió un estado de error",
			slog.String("url", c.config.PersonasURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("remote endpoint returned status %d", resp.StatusCode)
	}

	c.logger.Info("documento remoto sobrescrito con éxito",
		slog.Int("personas", len(personas)),
	)
	return nil
}

// fetch はリモートJSONドキュメントを取得して復号する。
func (c *RemoteClient) fetch(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(url)
		c.logger.Error("error al cargar datos remotos",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to fetch remote document: %w", err)
	}
	defer resp.Body.Close()
	c.recordLatency(start)

	if resp.StatusCode != http.StatusOK {
		c.recordFailure(url)
		return fmt.Errorf("remote endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode remote document: %w", err)
	}
	return nil
}
