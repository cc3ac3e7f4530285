package utils

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/ossotrade/osso_backend/config"
)

// IsDuplicateKeyError reports a MySQL unique-constraint violation (1062).
// ValidateUnique races with concurrent inserts; callers that must be exact
// catch the constraint error after the insert instead.
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// validate value of the column is unique among rows other than exceptId
func ValidateUnique[T any](ctx context.Context, column string, value interface{}, exceptId interface{}) error {
	db := config.GetDB()
	var count int64
	var model T
	dbCtx := db.WithContext(ctx).Model(&model).Where(column+" = ?", value)
	if exceptId != nil && exceptId != 0 {
		dbCtx = dbCtx.Where("id != ?", exceptId)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New(column + " already exists")
	}
	return nil
}
