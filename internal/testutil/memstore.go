// Package testutil provides an in-memory repository.Store and fixtures for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

type memData struct {
	users          []model.User
	plans          []model.Plan
	investments    []model.Investment
	transactions   []model.Transaction
	referrals      []model.Referral
	dailyReturns   []model.DailyReturn
	chats          []model.SupportChat
	messages       []model.SupportMessage
	paymentMethods []model.PaymentMethod
	paymentConfig  *model.PaymentConfig
}

func (d *memData) clone() memData {
	c := memData{
		users:          append([]model.User(nil), d.users...),
		plans:          append([]model.Plan(nil), d.plans...),
		investments:    append([]model.Investment(nil), d.investments...),
		transactions:   append([]model.Transaction(nil), d.transactions...),
		referrals:      append([]model.Referral(nil), d.referrals...),
		dailyReturns:   append([]model.DailyReturn(nil), d.dailyReturns...),
		chats:          append([]model.SupportChat(nil), d.chats...),
		messages:       append([]model.SupportMessage(nil), d.messages...),
		paymentMethods: append([]model.PaymentMethod(nil), d.paymentMethods...),
	}
	if d.paymentConfig != nil {
		pc := *d.paymentConfig
		c.paymentConfig = &pc
	}
	return c
}

type memState struct {
	mu   sync.Mutex // guards data
	txMu sync.Mutex // serialises WithTx
	data memData

	// FailTransaction, when set, is consulted before every transaction insert.
	FailTransaction func(*model.Transaction) error
	// FailDailyReturn, when set, is consulted before every daily return insert.
	FailDailyReturn func(*model.DailyReturn) error
}

// MemStore is a repository.Store kept in memory. WithTx snapshots the data and
// restores it when fn fails, so rollbacks behave like the SQL store.
type MemStore struct {
	*memState
	inTx bool
}

var _ repository.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{memState: &memState{}}
}

func (s *MemStore) Users() repository.UserRepository             { return memUsers{s.memState} }
func (s *MemStore) Plans() repository.PlanRepository             { return memPlans{s.memState} }
func (s *MemStore) Investments() repository.InvestmentRepository { return memInvestments{s.memState} }
func (s *MemStore) Transactions() repository.TransactionRepository {
	return memTransactions{s.memState}
}
func (s *MemStore) Referrals() repository.ReferralRepository { return memReferrals{s.memState} }
func (s *MemStore) DailyReturns() repository.DailyReturnRepository {
	return memDailyReturns{s.memState}
}
func (s *MemStore) Support() repository.SupportRepository { return memSupport{s.memState} }
func (s *MemStore) PaymentMethods() repository.PaymentMethodRepository {
	return memPaymentMethods{s.memState}
}
func (s *MemStore) PaymentConfig() repository.PaymentConfigRepository {
	return memPaymentConfig{s.memState}
}
func (s *MemStore) Stats() repository.StatsRepository { return memStats{s.memState} }

func (s *MemStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.data.clone()
	s.mu.Unlock()

	if err := fn(&MemStore{memState: s.memState, inTx: true}); err != nil {
		s.mu.Lock()
		s.data = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// reversed returns a copy of items, newest insert first.
func reversed[T any](items []T) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	return out
}

// ---- users ----

type memUsers struct{ s *memState }

func (r memUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.users {
		if x.Email == u.Email || x.Username == u.Username || x.ReferralCode == u.ReferralCode {
			return nil, repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.CurrentTier == 0 {
		u.CurrentTier = 1
	}
	r.s.data.users = append(r.s.data.users, *u)
	return u, nil
}

func (r memUsers) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r memUsers) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r memUsers) GetByReferralCode(_ context.Context, code string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ReferralCode == code })
}

func (r memUsers) List(context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return reversed(r.s.data.users), nil
}

func (r memUsers) Update(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.users {
		if x.ID != u.ID && (x.Email == u.Email || x.Username == u.Username || x.ReferralCode == u.ReferralCode) {
			return repository.ErrDuplicate
		}
	}
	for i := range r.s.data.users {
		if r.s.data.users[i].ID == u.ID {
			u.UpdatedAt = time.Now().UTC()
			r.s.data.users[i] = *u
		}
	}
	return nil
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.users = filter(r.s.data.users, func(u model.User) bool { return u.ID != id })
	return nil
}

func (r memUsers) ResetBalances(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.users {
		u := &r.s.data.users[i]
		u.Balance, u.DepositBalance, u.ProfitBalance = decimal.Zero, decimal.Zero, decimal.Zero
		u.TotalDeposits, u.TotalWithdrawals, u.TotalProfit = decimal.Zero, decimal.Zero, decimal.Zero
		u.CurrentTier = 1
	}
	return nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, x := range items {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}

// ---- plans ----

type memPlans struct{ s *memState }

func (r memPlans) List(_ context.Context, activeOnly bool) ([]model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := filter(r.s.data.plans, func(p model.Plan) bool { return !activeOnly || p.IsActive })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out, nil
}

func (r memPlans) Get(_ context.Context, id int) (*model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.plans {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPlans) Create(_ context.Context, p *model.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.plans {
		if x.ID == p.ID {
			return repository.ErrDuplicate
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.s.data.plans = append(r.s.data.plans, *p)
	return nil
}

func (r memPlans) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.data.plans), nil
}

// ---- investments ----

type memInvestments struct{ s *memState }

func (r memInvestments) Create(_ context.Context, inv *model.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	r.s.data.investments = append(r.s.data.investments, *inv)
	return nil
}

func (r memInvestments) Get(_ context.Context, id uuid.UUID) (*model.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.data.investments {
		if inv.ID == id {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r memInvestments) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Investment, error) {
	return r.Get(ctx, id)
}

func (r memInvestments) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return reversed(filter(r.s.data.investments, func(i model.Investment) bool { return i.UserID == userID })), nil
}

func (r memInvestments) ListAll(context.Context) ([]model.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return reversed(r.s.data.investments), nil
}

func (r memInvestments) ListActiveIDs(context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uuid.UUID{}
	for _, inv := range r.s.data.investments {
		if inv.Status == model.InvestmentActive {
			ids = append(ids, inv.ID)
		}
	}
	return ids, nil
}

func (r memInvestments) Update(_ context.Context, inv *model.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.investments {
		if r.s.data.investments[i].ID == inv.ID {
			x := &r.s.data.investments[i]
			x.TotalReturned, x.Status, x.EndDate = inv.TotalReturned, inv.Status, inv.EndDate
		}
	}
	return nil
}

func (r memInvestments) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.investments = filter(r.s.data.investments, func(i model.Investment) bool { return i.UserID != userID })
	return nil
}

func (r memInvestments) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.investments = nil
	return nil
}

// ---- transactions ----

type memTransactions struct{ s *memState }

func (r memTransactions) Create(_ context.Context, t *model.Transaction) error {
	if r.s.FailTransaction != nil {
		if err := r.s.FailTransaction(t); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	r.s.data.transactions = append(r.s.data.transactions, *t)
	return nil
}

func (r memTransactions) Get(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.transactions {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r memTransactions) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return r.Get(ctx, id)
}

func (r memTransactions) FindByReference(_ context.Context, typ model.TransactionType, reference string) (*model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range reversed(r.s.data.transactions) {
		if t.Type == typ && t.Reference != nil && *t.Reference == reference {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func matchTx(f model.TransactionFilter) func(model.Transaction) bool {
	return func(t model.Transaction) bool {
		if f.UserID != nil && t.UserID != *f.UserID {
			return false
		}
		if len(f.Types) > 0 && !contains(f.Types, t.Type) {
			return false
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
			return false
		}
		return true
	}
}

func contains[T comparable](items []T, v T) bool {
	for _, x := range items {
		if x == v {
			return true
		}
	}
	return false
}

func (r memTransactions) List(_ context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return reversed(filter(r.s.data.transactions, matchTx(f))), nil
}

func (r memTransactions) Count(ctx context.Context, f model.TransactionFilter) (int, error) {
	list, _ := r.List(ctx, f)
	return len(list), nil
}

func (r memTransactions) Sum(ctx context.Context, f model.TransactionFilter) (decimal.Decimal, error) {
	list, _ := r.List(ctx, f)
	total := decimal.Zero
	for _, t := range list {
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (r memTransactions) Update(_ context.Context, t *model.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.transactions {
		if r.s.data.transactions[i].ID == t.ID {
			x := &r.s.data.transactions[i]
			x.Status, x.AdminNotes, x.UpdatedAt = t.Status, t.AdminNotes, time.Now().UTC()
		}
	}
	return nil
}

func (r memTransactions) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.transactions = filter(r.s.data.transactions, func(t model.Transaction) bool { return t.UserID != userID })
	return nil
}

func (r memTransactions) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.transactions = nil
	return nil
}

// ---- referrals ----

type memReferrals struct{ s *memState }

func (r memReferrals) Create(_ context.Context, ref *model.Referral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.referrals {
		if x.ReferrerID == ref.ReferrerID && x.ReferredUserID == ref.ReferredUserID {
			return repository.ErrDuplicate
		}
	}
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	r.s.data.referrals = append(r.s.data.referrals, *ref)
	return nil
}

func (r memReferrals) Get(_ context.Context, referrerID, referredUserID uuid.UUID) (*model.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.referrals {
		if x.ReferrerID == referrerID && x.ReferredUserID == referredUserID {
			x := x
			return &x, nil
		}
	}
	return nil, nil
}

func (r memReferrals) ListByReferrer(_ context.Context, referrerID uuid.UUID) ([]model.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return reversed(filter(r.s.data.referrals, func(x model.Referral) bool { return x.ReferrerID == referrerID })), nil
}

func (r memReferrals) ListByReferred(_ context.Context, referredUserID uuid.UUID) ([]model.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return reversed(filter(r.s.data.referrals, func(x model.Referral) bool { return x.ReferredUserID == referredUserID })), nil
}

func (r memReferrals) CountByReferrer(_ context.Context, referrerID uuid.UUID, level int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, x := range r.s.data.referrals {
		if x.ReferrerID == referrerID && x.Level == level {
			n++
		}
	}
	return n, nil
}

func (r memReferrals) AddEarnings(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.referrals {
		if r.s.data.referrals[i].ID == id {
			r.s.data.referrals[i].TotalEarned = r.s.data.referrals[i].TotalEarned.Add(amount)
		}
	}
	return nil
}

func (r memReferrals) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.referrals = filter(r.s.data.referrals, func(x model.Referral) bool {
		return x.ReferrerID != userID && x.ReferredUserID != userID
	})
	return nil
}

func (r memReferrals) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.referrals = nil
	return nil
}

// ---- daily returns ----

type memDailyReturns struct{ s *memState }

func (r memDailyReturns) Create(_ context.Context, d *model.DailyReturn) (bool, error) {
	if r.s.FailDailyReturn != nil {
		if err := r.s.FailDailyReturn(d); err != nil {
			return false, err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ReturnDate = model.Day(d.ReturnDate)
	for _, x := range r.s.data.dailyReturns {
		if x.InvestmentID == d.InvestmentID && x.ReturnDate.Equal(d.ReturnDate) {
			return false, nil
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	r.s.data.dailyReturns = append(r.s.data.dailyReturns, *d)
	return true, nil
}

func (r memDailyReturns) CountByInvestment(_ context.Context, investmentID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(filter(r.s.data.dailyReturns, func(d model.DailyReturn) bool { return d.InvestmentID == investmentID })), nil
}

func (r memDailyReturns) ListByUser(_ context.Context, userID uuid.UUID) ([]model.DailyReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := filter(r.s.data.dailyReturns, func(d model.DailyReturn) bool { return d.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReturnDate.After(out[j].ReturnDate) })
	return out, nil
}

func (r memDailyReturns) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.dailyReturns = filter(r.s.data.dailyReturns, func(d model.DailyReturn) bool { return d.UserID != userID })
	return nil
}

func (r memDailyReturns) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.dailyReturns = nil
	return nil
}

// ---- support ----

type memSupport struct{ s *memState }

func (r memSupport) CreateChat(_ context.Context, c *model.SupportChat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt, c.LastMessageAt = now, now, now
	if c.Status == "" {
		c.Status = model.ChatOpen
	}
	if c.Priority == "" {
		c.Priority = "medium"
	}
	r.s.data.chats = append(r.s.data.chats, *c)
	return nil
}

func (r memSupport) GetChat(_ context.Context, id uuid.UUID) (*model.SupportChat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.chats {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r memSupport) ListChats(_ context.Context, userID *uuid.UUID) ([]model.SupportChat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := filter(r.s.data.chats, func(c model.SupportChat) bool { return userID == nil || c.UserID == *userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (r memSupport) UpdateChat(_ context.Context, c *model.SupportChat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.chats {
		if r.s.data.chats[i].ID == c.ID {
			c.UpdatedAt = time.Now().UTC()
			r.s.data.chats[i] = *c
		}
	}
	return nil
}

func (r memSupport) CreateMessage(_ context.Context, m *model.SupportMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.s.data.messages = append(r.s.data.messages, *m)
	return nil
}

func (r memSupport) ListMessages(_ context.Context, chatID uuid.UUID) ([]model.SupportMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return filter(r.s.data.messages, func(m model.SupportMessage) bool { return m.ChatID == chatID }), nil
}

func (r memSupport) MarkRead(_ context.Context, chatID, readerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.messages {
		m := &r.s.data.messages[i]
		if m.ChatID == chatID && m.SenderID != readerID {
			m.IsRead = true
		}
	}
	return nil
}

func (r memSupport) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	owned := map[uuid.UUID]bool{}
	for _, c := range r.s.data.chats {
		if c.UserID == userID {
			owned[c.ID] = true
		}
	}
	r.s.data.messages = filter(r.s.data.messages, func(m model.SupportMessage) bool {
		return !owned[m.ChatID] && m.SenderID != userID
	})
	r.s.data.chats = filter(r.s.data.chats, func(c model.SupportChat) bool { return !owned[c.ID] })
	return nil
}

func (r memSupport) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.chats, r.s.data.messages = nil, nil
	return nil
}

// ---- payments ----

type memPaymentMethods struct{ s *memState }

func (r memPaymentMethods) List(_ context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := filter(r.s.data.paymentMethods, func(m model.PaymentMethod) bool { return !activeOnly || m.IsActive })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r memPaymentMethods) Get(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.data.paymentMethods {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r memPaymentMethods) Create(_ context.Context, m *model.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.data.paymentMethods = append(r.s.data.paymentMethods, *m)
	return nil
}

func (r memPaymentMethods) Update(_ context.Context, m *model.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.paymentMethods {
		if r.s.data.paymentMethods[i].ID == m.ID {
			m.UpdatedAt = time.Now().UTC()
			r.s.data.paymentMethods[i] = *m
		}
	}
	return nil
}

func (r memPaymentMethods) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.data.paymentMethods)
	r.s.data.paymentMethods = filter(r.s.data.paymentMethods, func(m model.PaymentMethod) bool { return m.ID != id })
	return len(r.s.data.paymentMethods) < before, nil
}

func (r memPaymentMethods) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.data.paymentMethods), nil
}

type memPaymentConfig struct{ s *memState }

func (r memPaymentConfig) Get(context.Context) (*model.PaymentConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.data.paymentConfig == nil {
		return nil, nil
	}
	c := *r.s.data.paymentConfig
	return &c, nil
}

func (r memPaymentConfig) Upsert(_ context.Context, c *model.PaymentConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = 1
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	r.s.data.paymentConfig = &cp
	return nil
}

// ---- stats ----

type memStats struct{ s *memState }

func (r memStats) Dashboard(context.Context) (*model.DashboardStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &model.DashboardStats{TotalVolume: decimal.Zero}
	for _, u := range r.s.data.users {
		if u.Role == model.RoleUser {
			st.TotalUsers++
		}
		st.TotalVolume = st.TotalVolume.Add(u.TotalDeposits)
	}
	for _, t := range r.s.data.transactions {
		if t.Type == model.TxWithdrawal && t.Status == model.TxPending {
			st.PendingWithdrawals++
		}
	}
	return st, nil
}

func (r memStats) Detailed(context.Context) (*model.DetailedStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &model.DetailedStats{
		TotalDeposits: decimal.Zero, TotalWithdrawals: decimal.Zero,
		TotalProfits: decimal.Zero, TotalInvestments: decimal.Zero,
	}
	for _, u := range r.s.data.users {
		if u.Role == model.RoleUser {
			st.TotalUsers++
		}
	}
	for _, t := range r.s.data.transactions {
		switch {
		case t.Type == model.TxDeposit && t.Status == model.TxApproved:
			st.TotalDeposits = st.TotalDeposits.Add(t.Amount)
		case t.Type == model.TxWithdrawal && t.Status == model.TxApproved:
			st.TotalWithdrawals = st.TotalWithdrawals.Add(t.Amount)
		case t.Type == model.TxDailyReturn && t.Status == model.TxCompleted:
			st.TotalProfits = st.TotalProfits.Add(t.Amount)
		case t.Type == model.TxDeposit && t.Status == model.TxPending:
			st.PendingDeposits++
		case t.Type == model.TxWithdrawal && t.Status == model.TxPending:
			st.PendingWithdrawals++
		}
	}
	for _, inv := range r.s.data.investments {
		st.TotalInvestments = st.TotalInvestments.Add(inv.Amount)
		switch inv.Status {
		case model.InvestmentActive:
			st.ActiveInvestments++
		case model.InvestmentCompleted:
			st.CompletedInvestments++
		}
	}
	return st, nil
}
