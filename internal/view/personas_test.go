package view

import (
	"context"
	"errors"
	"testing"

	"github.com/elpanda/tienda/internal/model"
)

type mockPersonaClient struct {
	fetchFn   func(ctx context.Context) ([]model.Persona, error)
	replaceFn func(ctx context.Context, personas []model.Persona) error
}

func (m *mockPersonaClient) FetchPersonas(ctx context.Context) ([]model.Persona, error) {
	return m.fetchFn(ctx)
}

func (m *mockPersonaClient) ReplacePersonas(ctx context.Context, personas []model.Persona) error {
	return m.replaceFn(ctx, personas)
}

func TestPersonasController_List(t *testing.T) {
	client := &mockPersonaClient{
		fetchFn: func(ctx context.Context) ([]model.Persona, error) {
			return []model.Persona{{Nombre: "Ana"}}, nil
		},
	}
	c := NewPersonasController(client, discardLogger())

	personas, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(personas) != 1 || personas[0].Nombre != "Ana" {
		t.Errorf("List() = %+v", personas)
	}
}

func TestPersonasController_Replace(t *testing.T) {
	var got []model.Persona
	client := &mockPersonaClient{
		replaceFn: func(ctx context.Context, personas []model.Persona) error {
			got = personas
			return nil
		},
	}
	c := NewPersonasController(client, discardLogger())

	want := []model.Persona{{Nombre: "Ana"}, {Nombre: "Berta"}}
	if err := c.Replace(context.Background(), want); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("replaced with %d personas, want 2", len(got))
	}
}

func TestPersonasController_ReplaceError(t *testing.T) {
	wantErr := errors.New("bucket rechazó la escritura")
	client := &mockPersonaClient{
		replaceFn: func(ctx context.Context, personas []model.Persona) error {
			return wantErr
		},
	}
	c := NewPersonasController(client, discardLogger())

	if err := c.Replace(context.Background(), nil); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
