package repository

import (
	"context"
	"time"

	"github.com/BAHUBALISID/smj/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	// UpsertPurchase inserts c or, when the phone exists, adds amount to its
	// running total. Either way the stored row is returned.
	UpsertPurchase(ctx context.Context, tx *gorm.DB, c *model.Customer, amount decimal.Decimal, day time.Time) (*model.Customer, error)
	// FirstOrCreateByPhone leaves an existing customer untouched.
	FirstOrCreateByPhone(ctx context.Context, tx *gorm.DB, c *model.Customer) (*model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) UpsertPurchase(ctx context.Context, tx *gorm.DB, c *model.Customer, amount decimal.Decimal, day time.Time) (*model.Customer, error) {
	db := conn(ctx, r.db, tx)
	c.TotalPurchases = amount
	c.LastPurchaseDate = &day
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_purchases":    gorm.Expr("customers.total_purchases + ?", amount),
			"last_purchase_date": day,
			"updated_at":         gorm.Expr("NOW()"),
		}),
	}).Create(c).Error
	if err != nil {
		return nil, err
	}
	return r.findByPhone(db, c.Phone)
}

func (r *customerRepo) FirstOrCreateByPhone(ctx context.Context, tx *gorm.DB, c *model.Customer) (*model.Customer, error) {
	db := conn(ctx, r.db, tx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoNothing: true,
	}).Create(c).Error
	if err != nil {
		return nil, err
	}
	return r.findByPhone(db, c.Phone)
}

func (r *customerRepo) findByPhone(db *gorm.DB, phone string) (*model.Customer, error) {
	var c model.Customer
	if err := db.Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
