package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
)

type Product struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku       string    `gorm:"size:100;uniqueIndex" json:"sku"`
	Size      string    `gorm:"size:50" json:"size"`
	Color     string    `gorm:"size:50" json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name  string `json:"name" binding:"required"`
	Sku   string `json:"sku"`
	Size  string `json:"size"`
	Color string `json:"color"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, 0); err != nil {
			return nil, err
		}
	}
	product := Product{Name: input.Name, Sku: input.Sku, Size: input.Size, Color: input.Color}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProducts(ctx context.Context, name *string) ([]*Product, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var products []*Product
	if err := dbCtx.Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
