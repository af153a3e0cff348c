package service_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/BAHUBALISID/smj/internal/model"
	"github.com/BAHUBALISID/smj/internal/numbering"
	"github.com/BAHUBALISID/smj/internal/repository"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// memStore backs every repository with plain maps. Transaction serialises
// callers and restores a snapshot when fn fails, which mirrors a rollback.

type memState struct {
	rates     []model.MetalRate
	customers map[string]model.Customer
	bills     map[uuid.UUID]model.Bill
	items     []model.BillItem
	photos    []model.BillItemPhoto
	payments  []model.BillPayment
	exchanges map[uuid.UUID]model.Exchange
	exItems   []model.ExchangeItem
	exPhotos  []model.ExchangePhoto
	counters  map[string]int64
	// numbers already present in storage, keyed by document number
	taken map[string]bool
}

func (s memState) clone() memState {
	return memState{
		rates:     slices.Clone(s.rates),
		customers: maps.Clone(s.customers),
		bills:     maps.Clone(s.bills),
		items:     slices.Clone(s.items),
		photos:    slices.Clone(s.photos),
		payments:  slices.Clone(s.payments),
		exchanges: maps.Clone(s.exchanges),
		exItems:   slices.Clone(s.exItems),
		exPhotos:  slices.Clone(s.exPhotos),
		counters:  maps.Clone(s.counters),
		taken:     maps.Clone(s.taken),
	}
}

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState
	now  func() time.Time

	// hooks for failure injection
	failRateCreate  func(r *model.MetalRate) error
	failBillPhotos  error
	failCounterNext error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now: now,
		st: memState{
			customers: map[string]model.Customer{},
			bills:     map[uuid.UUID]model.Bill{},
			exchanges: map[uuid.UUID]model.Exchange{},
			counters:  map[string]int64{},
			taken:     map[string]bool{},
		},
	}
}

func (m *memStore) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := m.st.clone()
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.st = snap
		m.mu.Unlock()
		return err
	}
	return nil
}

// putRate inserts a row as-is, bypassing the service.
func (m *memStore) putRate(r model.MetalRate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.st.rates = append(m.st.rates, r)
}

func (m *memStore) takeNumber(n string) {
	m.mu.Lock()
	m.st.taken[n] = true
	m.mu.Unlock()
}

func (m *memStore) billCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.bills)
}

func (m *memStore) counterValue(kind numbering.Kind, period string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.counters[string(kind)+"|"+period]
}

func (m *memStore) customer(phone string) (model.Customer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.st.customers[phone]
	return c, ok
}

func (m *memStore) activeRates(metal, purity string) []model.MetalRate {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.MetalRate
	for _, r := range m.st.rates {
		if r.MetalType == metal && r.Purity == purity && r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

// ── MetalRateRepository ───────────────────────────────────────────────────────

type memRates struct{ *memStore }

func (r memRates) FindActive(_ context.Context, _ *gorm.DB, metal, purity string) (*model.MetalRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.st.rates {
		if row.MetalType == metal && row.Purity == purity && row.IsActive {
			out := row
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memRates) LockMetal(context.Context, *gorm.DB, string) error { return nil }

func (r memRates) Deactivate(_ context.Context, _ *gorm.DB, metal, purity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.st.rates {
		row := &r.st.rates[i]
		if row.MetalType == metal && row.Purity == purity {
			row.IsActive = false
		}
	}
	return nil
}

func (r memRates) Create(_ context.Context, _ *gorm.DB, m *model.MetalRate) error {
	if r.failRateCreate != nil {
		if err := r.failRateCreate(m); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.st.rates {
		if row.MetalType == m.MetalType && row.Purity == m.Purity && row.IsActive && m.IsActive {
			return gorm.ErrDuplicatedKey
		}
	}
	m.ID = uuid.New()
	m.CreatedAt = r.now()
	r.st.rates = append(r.st.rates, *m)
	return nil
}

func (r memRates) ListActive(context.Context) ([]model.MetalRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MetalRate
	for _, row := range r.st.rates {
		if row.IsActive {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MetalType != out[j].MetalType {
			return out[i].MetalType < out[j].MetalType
		}
		return out[i].Purity < out[j].Purity
	})
	return out, nil
}

func (r memRates) History(_ context.Context, metal, purity string, limit int) ([]model.MetalRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MetalRate
	for i := len(r.st.rates) - 1; i >= 0; i-- {
		row := r.st.rates[i]
		if row.MetalType == metal && row.Purity == purity {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EffectiveFrom.After(out[j].EffectiveFrom) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.MetalRateRepository = memRates{}

// ── CustomerRepository ────────────────────────────────────────────────────────

type memCustomers struct{ *memStore }

func (r memCustomers) UpsertPurchase(_ context.Context, _ *gorm.DB, c *model.Customer, amount decimal.Decimal, day time.Time) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.st.customers[c.Phone]
	if !ok {
		cur = *c
		cur.ID = uuid.New()
		cur.TotalPurchases = decimal.Zero
		cur.CreatedAt = r.now()
	}
	cur.TotalPurchases = cur.TotalPurchases.Add(amount)
	cur.LastPurchaseDate = &day
	cur.UpdatedAt = r.now()
	r.st.customers[c.Phone] = cur
	out := cur
	return &out, nil
}

func (r memCustomers) FirstOrCreateByPhone(_ context.Context, _ *gorm.DB, c *model.Customer) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.st.customers[c.Phone]
	if !ok {
		cur = *c
		cur.ID = uuid.New()
		cur.CreatedAt = r.now()
		r.st.customers[c.Phone] = cur
	}
	out := cur
	return &out, nil
}

var _ repository.CustomerRepository = memCustomers{}

// ── BillRepository ────────────────────────────────────────────────────────────

type memBills struct{ *memStore }

func (r memBills) Create(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.taken[b.BillNumber] || r.st.taken["token:"+b.QRToken] {
		return gorm.ErrDuplicatedKey
	}
	b.ID = uuid.New()
	b.CreatedAt = r.now()
	b.UpdatedAt = b.CreatedAt
	r.st.taken[b.BillNumber] = true
	r.st.taken["token:"+b.QRToken] = true
	r.st.bills[b.ID] = *b
	return nil
}

func (r memBills) CreateItem(_ context.Context, _ *gorm.DB, it *model.BillItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.ID = uuid.New()
	it.CreatedAt = r.now()
	r.st.items = append(r.st.items, *it)
	return nil
}

func (r memBills) CreatePhotos(_ context.Context, _ *gorm.DB, photos []model.BillItemPhoto) error {
	if r.failBillPhotos != nil {
		return r.failBillPhotos
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range photos {
		p.ID = uuid.New()
		r.st.photos = append(r.st.photos, p)
	}
	return nil
}

func (r memBills) CreatePayment(_ context.Context, _ *gorm.DB, p *model.BillPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.taken[p.PaymentNumber] {
		return gorm.ErrDuplicatedKey
	}
	p.ID = uuid.New()
	p.CreatedAt = r.now()
	r.st.taken[p.PaymentNumber] = true
	r.st.payments = append(r.st.payments, *p)
	return nil
}

func (r memBills) FindForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.st.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r memBills) UpdateSettlement(_ context.Context, _ *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.st.bills[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.PaidAmount, b.RemainingAmount, b.BillStatus = paid, remaining, status
	r.st.bills[id] = b
	return nil
}

func (r memBills) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	return r.find(func(b model.Bill) bool { return b.ID == id })
}

func (r memBills) FindByToken(_ context.Context, token string) (*model.Bill, error) {
	return r.find(func(b model.Bill) bool { return b.QRToken == token })
}

func (r memBills) find(match func(model.Bill) bool) (*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.st.bills {
		if !match(b) {
			continue
		}
		for _, it := range r.st.items {
			if it.BillID != b.ID {
				continue
			}
			for _, p := range r.st.photos {
				if p.BillItemID == it.ID {
					it.Photos = append(it.Photos, p)
				}
			}
			sort.SliceStable(it.Photos, func(i, j int) bool { return it.Photos[i].Position < it.Photos[j].Position })
			b.Items = append(b.Items, it)
		}
		sort.SliceStable(b.Items, func(i, j int) bool { return b.Items[i].ItemIndex < b.Items[j].ItemIndex })
		for _, p := range r.st.payments {
			if p.BillID == b.ID {
				b.Payments = append(b.Payments, p)
			}
		}
		return &b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.BillRepository = memBills{}

// ── ExchangeRepository ────────────────────────────────────────────────────────

type memExchanges struct{ *memStore }

func (r memExchanges) Create(_ context.Context, _ *gorm.DB, e *model.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.taken[e.ExchangeNumber] {
		return gorm.ErrDuplicatedKey
	}
	e.ID = uuid.New()
	e.CreatedAt = r.now()
	r.st.taken[e.ExchangeNumber] = true
	r.st.exchanges[e.ID] = *e
	return nil
}

func (r memExchanges) CreateItem(_ context.Context, _ *gorm.DB, it *model.ExchangeItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.ID = uuid.New()
	r.st.exItems = append(r.st.exItems, *it)
	return nil
}

func (r memExchanges) CreatePhotos(_ context.Context, _ *gorm.DB, photos []model.ExchangePhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.exPhotos = append(r.st.exPhotos, photos...)
	return nil
}

func (r memExchanges) FindByID(_ context.Context, id uuid.UUID) (*model.Exchange, error) {
	return r.find(func(e model.Exchange) bool { return e.ID == id })
}

func (r memExchanges) FindByToken(_ context.Context, token string) (*model.Exchange, error) {
	return r.find(func(e model.Exchange) bool { return e.QRToken == token })
}

func (r memExchanges) find(match func(model.Exchange) bool) (*model.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.st.exchanges {
		if !match(e) {
			continue
		}
		for _, it := range r.st.exItems {
			if it.ExchangeID == e.ID {
				e.Items = append(e.Items, it)
			}
		}
		for _, p := range r.st.exPhotos {
			if p.ExchangeID == e.ID {
				e.Photos = append(e.Photos, p)
			}
		}
		sort.SliceStable(e.Photos, func(i, j int) bool { return e.Photos[i].Position < e.Photos[j].Position })
		return &e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.ExchangeRepository = memExchanges{}

// ── Counter ───────────────────────────────────────────────────────────────────

type memCounter struct{ *memStore }

func (c memCounter) Next(_ context.Context, _ *gorm.DB, kind numbering.Kind, period string) (int64, error) {
	if c.failCounterNext != nil {
		return 0, c.failCounterNext
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := string(kind) + "|" + period
	c.st.counters[key]++
	return c.st.counters[key], nil
}

var _ repository.CounterRepository = memCounter{}

// ── Cache and queue ───────────────────────────────────────────────────────────

type memCache struct {
	mu            sync.Mutex
	m             map[string]decimal.Decimal
	invalidations int
}

func newMemCache() *memCache { return &memCache{m: map[string]decimal.Decimal{}} }

func (c *memCache) Get(_ context.Context, metal, purity string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[metal+"|"+purity]
	return v, ok
}

func (c *memCache) Set(_ context.Context, metal, purity string, rate decimal.Decimal) {
	c.mu.Lock()
	c.m[metal+"|"+purity] = rate
	c.mu.Unlock()
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	c.m = map[string]decimal.Decimal{}
	c.invalidations++
	c.mu.Unlock()
}

var _ service.RateCache = (*memCache)(nil)

type receiptJob struct {
	kind string
	id   uuid.UUID
}

type memQueue struct {
	mu   sync.Mutex
	jobs []receiptJob
	err  error
}

func (q *memQueue) EnqueueReceipt(_ context.Context, kind string, id uuid.UUID) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, receiptJob{kind: kind, id: id})
	q.mu.Unlock()
	return nil
}

func (q *memQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

var _ service.ReceiptQueue = (*memQueue)(nil)

var errInjected = errors.New("injected failure")
