package repository

import (
	"context"

	"github.com/BAHUBALISID/smj/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillRepository interface {
	Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error
	CreateItem(ctx context.Context, tx *gorm.DB, it *model.BillItem) error
	CreatePhotos(ctx context.Context, tx *gorm.DB, photos []model.BillItemPhoto) error
	CreatePayment(ctx context.Context, tx *gorm.DB, p *model.BillPayment) error
	// FindForUpdate locks the bill row until the transaction ends.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Bill, error)
	UpdateSettlement(ctx context.Context, tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, status string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	FindByToken(ctx context.Context, token string) (*model.Bill, error)
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

// Create inserts the header only; lines are written with CreateItem in order.
func (r *billRepo) Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(b).Error
}

func (r *billRepo) CreateItem(ctx context.Context, tx *gorm.DB, it *model.BillItem) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(it).Error
}

func (r *billRepo) CreatePhotos(ctx context.Context, tx *gorm.DB, photos []model.BillItemPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&photos).Error
}

func (r *billRepo) CreatePayment(ctx context.Context, tx *gorm.DB, p *model.BillPayment) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *billRepo) FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *billRepo) UpdateSettlement(ctx context.Context, tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, status string) error {
	return conn(ctx, r.db, tx).Model(&model.Bill{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"bill_status":      status,
	}).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *billRepo) FindByToken(ctx context.Context, token string) (*model.Bill, error) {
	return r.findOne(r.db.WithContext(ctx).Where("qr_token = ?", token))
}

func (r *billRepo) findOne(q *gorm.DB) (*model.Bill, error) {
	var b model.Bill
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_index ASC") }).
		Preload("Items.Photos", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, payment_number ASC") }).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}
