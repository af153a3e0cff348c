// Package app is the composition root shared by the server and smjctl.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
package app

import (
	"github.com/BAHUBALISID/smj/internal/clock"
	"github.com/BAHUBALISID/smj/internal/config"
	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/numbering"
	"github.com/BAHUBALISID/smj/internal/repository"
	"github.com/BAHUBALISID/smj/internal/service"
	"github.com/BAHUBALISID/smj/internal/worker"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repositories groups the gorm-backed stores.
type Repositories struct {
	Tx        repository.Transactor
	Rates     repository.MetalRateRepository
	Customers repository.CustomerRepository
	Bills     repository.BillRepository
	Exchanges repository.ExchangeRepository
	Counters  repository.CounterRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Tx:        repository.NewTransactor(db),
		Rates:     repository.NewMetalRateRepository(db),
		Customers: repository.NewCustomerRepository(db),
		Bills:     repository.NewBillRepository(db),
		Exchanges: repository.NewExchangeRepository(db),
		Counters:  repository.NewCounterRepository(db),
	}
}

// Services is everything the HTTP layer and the CLI call into.
type Services struct {
	Repos      Repositories
	Clock      clock.Clock
	CacheCB    *infra.CircuitBreaker
	Dispatcher *worker.Dispatcher
	Numbers    *numbering.Numberer
	Rates      service.RateService
	Bills      service.BillService
	Payments   service.PaymentService
	Exchanges  service.ExchangeService
}

// NewServices wires repositories, the Redis rate cache, the numberer and the
// receipt dispatcher into the billing services.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.System(loc)
	repos := NewRepositories(db)

	cacheCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "redis-rate-cache", Clock: clk})
	cache := infra.NewRateCache(rdb, cfg.RateCacheTTL, cacheCB)
	dispatcher := worker.NewDispatcher(rdb)
	numbers := numbering.New(repos.Counters, clk, cfg.Numbering())
	coord := service.CoordinatorConfig{NumberRetryAttempts: cfg.NumberRetryAttempts}

	rates := service.NewRateService(repos.Rates, repos.Tx, cache, clk)
	return &Services{
		Repos:      repos,
		Clock:      clk,
		CacheCB:    cacheCB,
		Dispatcher: dispatcher,
		Numbers:    numbers,
		Rates:      rates,
		Bills:      service.NewBillService(repos.Tx, repos.Bills, repos.Customers, rates, numbers, clk, dispatcher, coord),
		Payments:   service.NewPaymentService(repos.Tx, repos.Bills, numbers, coord),
		Exchanges:  service.NewExchangeService(repos.Tx, repos.Exchanges, repos.Customers, rates, numbers, clk, dispatcher, coord),
	}, nil
}
