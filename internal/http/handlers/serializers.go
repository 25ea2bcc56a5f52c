package handlers

import "stockroom/internal/domain"

// Decimals go out as strings with two places, e.g. "30.00".

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productView struct {
	ID        int64         `json:"id"`
	Shop      int64         `json:"shop"`
	Name      string        `json:"name"`
	Category  *categoryView `json:"category"`
	Quantity  int           `json:"quantity"`
	Price     string        `json:"price"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

func toProductView(p domain.Product) productView {
	v := productView{
		ID:        p.ID,
		Shop:      p.ShopID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price.StringFixed(2),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.CategoryID.Valid {
		v.Category = &categoryView{ID: p.CategoryID.Int64, Name: p.CategoryName.String}
	}
	return v
}

type saleView struct {
	ID           int64  `json:"id"`
	Shop         int64  `json:"shop"`
	Product      *int64 `json:"product"`
	ProductName  string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
	TotalPrice   string `json:"total_price"`
	CreatedAt    string `json:"created_at"`
}

func toSaleView(s domain.Sale) saleView {
	v := saleView{
		ID:           s.ID,
		Shop:         s.ShopID,
		ProductName:  s.ProductName,
		QuantitySold: s.QuantitySold,
		TotalPrice:   s.TotalPrice.StringFixed(2),
		CreatedAt:    s.CreatedAt,
	}
	if s.ProductID.Valid {
		id := s.ProductID.Int64
		v.Product = &id
	}
	return v
}

func toSaleViews(in []domain.Sale) []saleView {
	out := make([]saleView, 0, len(in))
	for _, s := range in {
		out = append(out, toSaleView(s))
	}
	return out
}

type alertView struct {
	Product     int64  `json:"product"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
	IsAlerted   bool   `json:"is_alerted"`
	LowStock    bool   `json:"low_stock"`
	Status      string `json:"status"`
}

func toAlertView(a domain.StockAlert) alertView {
	return alertView{
		Product:     a.ProductID,
		ProductName: a.ProductName,
		Quantity:    a.Quantity,
		Threshold:   a.Threshold,
		IsAlerted:   a.IsAlerted,
		LowStock:    a.LowStock(),
		Status:      a.Availability(),
	}
}

type countsView struct {
	Daily   string `json:"daily_sales"`
	Weekly  string `json:"weekly_sales"`
	Monthly string `json:"monthly_sales"`
}
