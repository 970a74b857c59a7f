package postgres

import (
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// Cart and order lines are stored as JSONB documents rather than child rows.
// The snapshot inside each line is immutable once written, so there is
// nothing to join against and the whole cart always travels as one value.

type productDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url,omitempty"`
}

type cartLineDoc struct {
	ProductID string     `json:"product_id"`
	Qty       int        `json:"qty"`
	Product   productDoc `json:"product"`
	AddedAt   time.Time  `json:"added_at"`
}

type orderItemDoc struct {
	ProductID   string     `json:"product_id"`
	Qty         int        `json:"qty"`
	DeductedQty int        `json:"deducted_qty"`
	Product     productDoc `json:"product"`
	AddedAt     time.Time  `json:"added_at"`
}

func toProductDoc(p domain.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}

func fromProductDoc(d productDoc) domain.Product {
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		PriceCents:  d.PriceCents,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
	}
}

func toCartLineDocs(lines []domain.CartLine) []cartLineDoc {
	docs := make([]cartLineDoc, 0, len(lines))
	for _, line := range lines {
		docs = append(docs, cartLineDoc{
			ProductID: line.ProductID,
			Qty:       line.Qty,
			Product:   toProductDoc(line.Product),
			AddedAt:   line.AddedAt,
		})
	}
	return docs
}

func fromCartLineDocs(docs []cartLineDoc) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(docs))
	for _, d := range docs {
		lines = append(lines, domain.CartLine{
			ProductID: d.ProductID,
			Qty:       d.Qty,
			Product:   fromProductDoc(d.Product),
			AddedAt:   d.AddedAt,
		})
	}
	return lines
}

func toOrderItemDocs(items []domain.OrderItem) []orderItemDoc {
	docs := make([]orderItemDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, orderItemDoc{
			ProductID:   item.ProductID,
			Qty:         item.Qty,
			DeductedQty: item.DeductedQty,
			Product:     toProductDoc(item.Product),
			AddedAt:     item.AddedAt,
		})
	}
	return docs
}

func fromOrderItemDocs(docs []orderItemDoc) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.OrderItem{
			ProductID:   d.ProductID,
			Qty:         d.Qty,
			DeductedQty: d.DeductedQty,
			Product:     fromProductDoc(d.Product),
			AddedAt:     d.AddedAt,
		})
	}
	return items
}
