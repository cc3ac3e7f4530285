package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
)

type Investor struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:50" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvestor struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

func CreateInvestor(ctx context.Context, input *NewInvestor) (*Investor, error) {
	investor := Investor{Name: input.Name, Phone: input.Phone}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&investor).Error; err != nil {
		return nil, err
	}
	return &investor, nil
}

func GetInvestor(ctx context.Context, id int) (*Investor, error) {
	return utils.FetchModel[Investor](ctx, id)
}

func GetInvestors(ctx context.Context) ([]*Investor, error) {
	return utils.FetchAllModels[Investor](ctx)
}
