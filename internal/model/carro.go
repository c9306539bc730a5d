package model

// Product は販売商品を表す。
type Product struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
}

// CartItem はカート内の1商品を表す。
// 商品IDごとに一意で、同じ商品の追加は数量の加算にマージされる。
type CartItem struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Precio   float64 `json:"precio"`
	Quantity int     `json:"quantity"`
}
