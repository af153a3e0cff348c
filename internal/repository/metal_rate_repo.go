package repository

import (
	"context"

	"github.com/BAHUBALISID/smj/internal/model"

	"gorm.io/gorm"
)

type MetalRateRepository interface {
	// FindActive returns gorm.ErrRecordNotFound when the pair has no active row.
	FindActive(ctx context.Context, tx *gorm.DB, metal, purity string) (*model.MetalRate, error)
	LockMetal(ctx context.Context, tx *gorm.DB, metal string) error
	Deactivate(ctx context.Context, tx *gorm.DB, metal, purity string) error
	Create(ctx context.Context, tx *gorm.DB, r *model.MetalRate) error
	ListActive(ctx context.Context) ([]model.MetalRate, error)
	History(ctx context.Context, metal, purity string, limit int) ([]model.MetalRate, error)
}

type metalRateRepo struct{ db *gorm.DB }

func NewMetalRateRepository(db *gorm.DB) MetalRateRepository { return &metalRateRepo{db: db} }

func (r *metalRateRepo) FindActive(ctx context.Context, tx *gorm.DB, metal, purity string) (*model.MetalRate, error) {
	var m model.MetalRate
	err := conn(ctx, r.db, tx).
		Where("metal_type = ? AND purity = ? AND is_active", metal, purity).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LockMetal serialises rate writers of one metal until the transaction ends.
func (r *metalRateRepo) LockMetal(ctx context.Context, tx *gorm.DB, metal string) error {
	return conn(ctx, r.db, tx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "metal_rates:"+metal).Error
}

func (r *metalRateRepo) Deactivate(ctx context.Context, tx *gorm.DB, metal, purity string) error {
	return conn(ctx, r.db, tx).Model(&model.MetalRate{}).
		Where("metal_type = ? AND purity = ? AND is_active", metal, purity).
		Update("is_active", false).Error
}

func (r *metalRateRepo) Create(ctx context.Context, tx *gorm.DB, m *model.MetalRate) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *metalRateRepo) ListActive(ctx context.Context) ([]model.MetalRate, error) {
	var out []model.MetalRate
	err := r.db.WithContext(ctx).
		Where("is_active").
		Order("metal_type ASC, purity ASC").
		Find(&out).Error
	return out, err
}

func (r *metalRateRepo) History(ctx context.Context, metal, purity string, limit int) ([]model.MetalRate, error) {
	var out []model.MetalRate
	err := r.db.WithContext(ctx).
		Where("metal_type = ? AND purity = ?", metal, purity).
		Order("effective_from DESC, created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
