package view

import "github.com/elpanda/tienda/internal/model"

// catalogo はホームビューに表示される商品一覧。
// 商品マスタは耐久ストアではなくビューに属する（元設計どおり）。
var catalogo = []model.Product{
	{ID: "arroz-chapsui", Nombre: "Arroz chapsui", Precio: 6990},
	{ID: "pollo-mongoliano", Nombre: "Pollo mongoliano", Precio: 7490},
	{ID: "carne-mongoliana", Nombre: "Carne mongoliana", Precio: 7990},
	{ID: "chapsui-pollo", Nombre: "Chapsui de pollo", Precio: 6490},
	{ID: "wantan-frito", Nombre: "Wantán frito (6 unidades)", Precio: 3990},
	{ID: "arrollado-primavera", Nombre: "Arrollado primavera", Precio: 2990},
}

// Catalog は商品カタログのコピーを返す。
func Catalog() []model.Product {
	out := make([]model.Product, len(catalogo))
	copy(out, catalogo)
	return out
}

// FindProduct はIDで商品を検索する。
func FindProduct(id string) (model.Product, bool) {
	for _, p := range catalogo {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}
