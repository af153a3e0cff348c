package repository

import (
	"context"

	"github.com/BAHUBALISID/smj/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExchangeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, e *model.Exchange) error
	CreateItem(ctx context.Context, tx *gorm.DB, it *model.ExchangeItem) error
	CreatePhotos(ctx context.Context, tx *gorm.DB, photos []model.ExchangePhoto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Exchange, error)
	FindByToken(ctx context.Context, token string) (*model.Exchange, error)
}

type exchangeRepo struct{ db *gorm.DB }

func NewExchangeRepository(db *gorm.DB) ExchangeRepository { return &exchangeRepo{db: db} }

func (r *exchangeRepo) Create(ctx context.Context, tx *gorm.DB, e *model.Exchange) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(e).Error
}

func (r *exchangeRepo) CreateItem(ctx context.Context, tx *gorm.DB, it *model.ExchangeItem) error {
	return conn(ctx, r.db, tx).Create(it).Error
}

func (r *exchangeRepo) CreatePhotos(ctx context.Context, tx *gorm.DB, photos []model.ExchangePhoto) error {
	if len(photos) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&photos).Error
}

func (r *exchangeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Exchange, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *exchangeRepo) FindByToken(ctx context.Context, token string) (*model.Exchange, error) {
	return r.findOne(r.db.WithContext(ctx).Where("qr_token = ?", token))
}

func (r *exchangeRepo) findOne(q *gorm.DB) (*model.Exchange, error) {
	var e model.Exchange
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_index ASC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") }).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}
