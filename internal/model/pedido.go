package model

// PurchaseRecord は注文・購入レコードを表す。
// trackingNumberは外部で採番される一意な識別子で、
// 注文追跡とステータス更新の唯一の検索キーとして使用される。
type PurchaseRecord struct {
	TrackingNumber string  `json:"trackingNumber"`
	Status         string  `json:"status"`
	Producto       string  `json:"producto,omitempty"`
	Cantidad       int     `json:"cantidad,omitempty"`
	Total          float64 `json:"total,omitempty"`
	Fecha          string  `json:"fecha,omitempty"`
}
