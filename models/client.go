package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
)

type Client struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	client := Client{Name: input.Name, Phone: input.Phone, Address: input.Address}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	return utils.FetchModel[Client](ctx, id)
}

func GetClients(ctx context.Context, name *string) ([]*Client, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var clients []*Client
	if err := dbCtx.Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
