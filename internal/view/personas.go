package view

import (
	"context"
	"log/slog"

	"github.com/elpanda/tienda/internal/model"
)

// PersonaClient はリモートのpersonasコレクションへのアクセスを抽象化する。
type PersonaClient interface {
	FetchPersonas(ctx context.Context) ([]model.Persona, error)
	ReplacePersonas(ctx context.Context, personas []model.Persona) error
}

// PersonasController はリモートのpersonas一覧の取得と全置換を提供する。
// ローカルストアは経由しない。
type PersonasController struct {
	client PersonaClient
	logger *slog.Logger
}

// NewPersonasController はPersonasControllerを生成する。
func NewPersonasController(client PersonaClient, logger *slog.Logger) *PersonasController {
	return &PersonasController{client: client, logger: logger}
}

// List はリモートからpersonas一覧を取得する。
func (c *PersonasController) List(ctx context.Context) ([]model.Persona, error) {
	return c.client.FetchPersonas(ctx)
}

// Replace はpersonasコレクション全体を新しい一覧で置き換える。
// 部分更新はない（リモート側の操作が全置換のみのため）。
func (c *PersonasController) Replace(ctx context.Context, personas []model.Persona) error {
	return c.client.ReplacePersonas(ctx, personas)
}
