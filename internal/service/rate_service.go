package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BAHUBALISID/smj/internal/clock"
	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/model"
	"github.com/BAHUBALISID/smj/internal/purity"
	"github.com/BAHUBALISID/smj/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type RateService interface {
	// ResolveTx resolves inside the caller's transaction, bypassing the cache.
	ResolveTx(ctx context.Context, tx *gorm.DB, metal, purity string) (decimal.Decimal, error)
	ResolveRate(ctx context.Context, metal, purity string) (*dto.ResolvedRateResponse, error)
	SetRate(ctx context.Context, actor Actor, req dto.SetRateRequest) (*dto.SetRateResponse, error)
	AddCustomMetal(ctx context.Context, actor Actor, req dto.SetRateRequest) (*dto.RateResponse, error)
	ListActiveRates(ctx context.Context) ([]dto.RateResponse, error)
	RateHistory(ctx context.Context, metal, purity string, limit int) ([]dto.RateResponse, error)
}

type rateService struct {
	repo  repository.MetalRateRepository
	tx    repository.Transactor
	cache RateCache
	clock clock.Clock
}

func NewRateService(repo repository.MetalRateRepository, tx repository.Transactor, cache RateCache, clk clock.Clock) RateService {
	return &rateService{repo: repo, tx: tx, cache: cache, clock: clk}
}

// parseGrade validates a caller-supplied (metal, purity) pair.
func parseGrade(metal, token string) (purity.Purity, error) {
	m, err := purity.ParseMetal(metal)
	if err != nil {
		return purity.Purity{}, &ValidationError{Fields: map[string]string{"metal_type": err.Error()}}
	}
	p, err := purity.Parse(m, token)
	if err != nil {
		return purity.Purity{}, &ValidationError{Fields: map[string]string{"purity": err.Error()}}
	}
	return p, nil
}

// ── Resolve ───────────────────────────────────────────────────────────────────
// Walks the derivation chain from the requested grade towards its root,
// then applies the fineness ratios back down, rounding at every level.

func (s *rateService) ResolveTx(ctx context.Context, tx *gorm.DB, metal, token string) (decimal.Decimal, error) {
	p, err := parseGrade(metal, token)
	if err != nil {
		return decimal.Zero, err
	}
	return s.resolve(ctx, tx, p)
}

func (s *rateService) resolve(ctx context.Context, tx *gorm.DB, p purity.Purity) (decimal.Decimal, error) {
	visited := make(map[string]bool)
	var chain []*model.MetalRate

	metal, token := string(p.Metal()), p.Token()
	for {
		key := metal + "|" + token
		if visited[key] {
			return decimal.Zero, fmt.Errorf("%w: %s reaches %s twice", ErrCyclicRateDerivation, p, key)
		}
		visited[key] = true

		row, err := s.repo.FindActive(ctx, tx, metal, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if len(chain) == 0 {
				return decimal.Zero, fmt.Errorf("%w: %s", ErrRateNotFound, p)
			}
			// base has no active row: the last derived row keeps its stored snapshot
			break
		}
		if err != nil {
			return decimal.Zero, persist("find active rate", err)
		}
		chain = append(chain, row)
		if !row.IsDerived || row.BaseMetal == nil || row.BasePurity == nil {
			break
		}
		metal, token = *row.BaseMetal, *row.BasePurity
	}

	rate := chain[len(chain)-1].RatePerGram
	for i := len(chain) - 2; i >= 0; i-- {
		var err error
		if rate, err = deriveFrom(rate, chain[i]); err != nil {
			return decimal.Zero, err
		}
	}
	return rate, nil
}

func deriveFrom(baseRate decimal.Decimal, row *model.MetalRate) (decimal.Decimal, error) {
	p, err := purity.Parse(purity.Metal(row.MetalType), row.Purity)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %s: %v", ErrRateNotFound, row.MetalType, row.Purity, err)
	}
	base, err := purity.Parse(purity.Metal(*row.BaseMetal), *row.BasePurity)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %s: %v", ErrRateNotFound, *row.BaseMetal, *row.BasePurity, err)
	}
	r, err := purity.DerivedRate(baseRate, p, base)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrRateNotFound, err)
	}
	return r, nil
}

func (s *rateService) ResolveRate(ctx context.Context, metal, token string) (*dto.ResolvedRateResponse, error) {
	p, err := parseGrade(metal, token)
	if err != nil {
		return nil, err
	}
	resp := &dto.ResolvedRateResponse{MetalType: string(p.Metal()), Purity: p.Token()}

	if s.cache != nil {
		if r, ok := s.cache.Get(ctx, resp.MetalType, resp.Purity); ok {
			resp.RatePerGram, resp.Cached = r, true
			return resp, nil
		}
	}

	r, err := s.resolve(ctx, nil, p)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, resp.MetalType, resp.Purity, r)
	}
	resp.RatePerGram = r
	return resp, nil
}

// ── SetRate ───────────────────────────────────────────────────────────────────
// One transaction per call: lock the metal, replace the active row and, for a
// family base, replace every dependent with a freshly derived row.

func (s *rateService) SetRate(ctx context.Context, actor Actor, req dto.SetRateRequest) (*dto.SetRateResponse, error) {
	p, err := parseGrade(req.MetalType, req.Purity)
	if err != nil {
		return nil, err
	}
	if !req.Rate.IsPositive() {
		return nil, &ValidationError{Fields: map[string]string{"rate": "must be greater than zero"}}
	}
	rate := req.Rate.Round(2)

	var out dto.SetRateResponse
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.LockMetal(ctx, tx, string(p.Metal())); err != nil {
			return persist("lock metal", err)
		}
		now := s.clock.Now()

		row, err := s.replace(ctx, tx, &model.MetalRate{
			MetalType:     string(p.Metal()),
			Purity:        p.Token(),
			RatePerGram:   rate,
			EffectiveFrom: now,
			IsActive:      true,
			CreatedBy:     actor.idPtr(),
		})
		if err != nil {
			return err
		}
		out.Rate = rateToResponse(row)
		out.Dependents = []dto.RateResponse{}

		if !purity.IsBase(p) {
			return nil
		}
		fam, _ := purity.FamilyOf(p.Metal())
		baseMetal, basePurity := string(fam.Metal), fam.Base.Token()
		for _, dep := range fam.Dependents {
			derived, err := purity.DerivedRate(rate, dep, fam.Base)
			if err != nil {
				return err
			}
			dr, err := s.replace(ctx, tx, &model.MetalRate{
				MetalType:     string(dep.Metal()),
				Purity:        dep.Token(),
				RatePerGram:   derived,
				IsDerived:     true,
				BaseMetal:     &baseMetal,
				BasePurity:    &basePurity,
				EffectiveFrom: now,
				IsActive:      true,
				CreatedBy:     actor.idPtr(),
			})
			if err != nil {
				return err
			}
			out.Dependents = append(out.Dependents, rateToResponse(dr))
		}
		return nil
	})
	if err != nil {
		return nil, txErr("set rate", err)
	}

	s.invalidate(ctx)
	log.Info().
		Str("metal", string(p.Metal())).
		Str("purity", p.Token()).
		Str("rate", rate.StringFixed(2)).
		Int("dependents", len(out.Dependents)).
		Msg("metal rate updated")
	return &out, nil
}

func (s *rateService) replace(ctx context.Context, tx *gorm.DB, row *model.MetalRate) (*model.MetalRate, error) {
	if err := s.repo.Deactivate(ctx, tx, row.MetalType, row.Purity); err != nil {
		return nil, persist("deactivate rate", err)
	}
	if err := s.repo.Create(ctx, tx, row); err != nil {
		return nil, persist("insert rate", err)
	}
	return row, nil
}

// AddCustomMetal registers a rate for a pair that has no active row yet.
func (s *rateService) AddCustomMetal(ctx context.Context, actor Actor, req dto.SetRateRequest) (*dto.RateResponse, error) {
	p, err := parseGrade(req.MetalType, req.Purity)
	if err != nil {
		return nil, err
	}
	if !req.Rate.IsPositive() {
		return nil, &ValidationError{Fields: map[string]string{"rate": "must be greater than zero"}}
	}

	var out dto.RateResponse
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.LockMetal(ctx, tx, string(p.Metal())); err != nil {
			return persist("lock metal", err)
		}
		_, err := s.repo.FindActive(ctx, tx, string(p.Metal()), p.Token())
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrRateExists, p)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return persist("find active rate", err)
		}
		row := &model.MetalRate{
			MetalType:     string(p.Metal()),
			Purity:        p.Token(),
			RatePerGram:   req.Rate.Round(2),
			EffectiveFrom: s.clock.Now(),
			IsActive:      true,
			CreatedBy:     actor.idPtr(),
		}
		if err := s.repo.Create(ctx, tx, row); err != nil {
			return persist("insert rate", err)
		}
		out = rateToResponse(row)
		return nil
	})
	if err != nil {
		return nil, txErr("add custom metal", err)
	}
	s.invalidate(ctx)
	return &out, nil
}

func (s *rateService) ListActiveRates(ctx context.Context) ([]dto.RateResponse, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, persist("list active rates", err)
	}
	out := make([]dto.RateResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rateToResponse(&rows[i]))
	}
	return out, nil
}

func (s *rateService) RateHistory(ctx context.Context, metal, token string, limit int) ([]dto.RateResponse, error) {
	p, err := parseGrade(metal, token)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	rows, err := s.repo.History(ctx, string(p.Metal()), p.Token(), limit)
	if err != nil {
		return nil, persist("rate history", err)
	}
	out := make([]dto.RateResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rateToResponse(&rows[i]))
	}
	return out, nil
}

func (s *rateService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func rateToResponse(m *model.MetalRate) dto.RateResponse {
	return dto.RateResponse{
		ID:            m.ID.String(),
		MetalType:     m.MetalType,
		Purity:        m.Purity,
		RatePerGram:   m.RatePerGram,
		IsDerived:     m.IsDerived,
		BaseMetal:     m.BaseMetal,
		BasePurity:    m.BasePurity,
		EffectiveFrom: m.EffectiveFrom.Format(time.RFC3339),
		IsActive:      m.IsActive,
	}
}
