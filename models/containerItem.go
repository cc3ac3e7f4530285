package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
)

// ContainerItem is one product line inside a container. Quantity is live
// stock: decremented by sales, restored by returns and sale deletion.
// CostPerUnit is derived by the cost allocator and never hand-edited.
type ContainerItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ContainerId int             `gorm:"index;not null" json:"container_id" binding:"required"`
	ProductId   int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_unit"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	Size        string          `gorm:"size:50" json:"size"`
	Color       string          `gorm:"size:50" json:"color"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContainerItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gte=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
}

func GetContainerItem(ctx context.Context, id int) (*ContainerItem, error) {
	return utils.FetchModel[ContainerItem](ctx, id)
}

// RecordedStockByProduct sums live recorded stock across all containers,
// keyed by product. This is the "expected" side of an inventory count.
func RecordedStockByProduct(ctx context.Context) (map[int]int, error) {
	db := config.GetDB()
	type row struct {
		ProductId int
		Total     int
	}
	var rows []row
	if err := db.WithContext(ctx).Model(&ContainerItem{}).
		Select("product_id, SUM(quantity) AS total").
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stock := make(map[int]int, len(rows))
	for _, r := range rows {
		stock[r.ProductId] = r.Total
	}
	return stock, nil
}
