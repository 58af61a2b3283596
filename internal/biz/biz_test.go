package biz

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"credit-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

// fakeAccountRepo 进程内账户存储，互斥锁模拟行锁语义
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*CreditAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*CreditAccount)}
}

func (r *fakeAccountRepo) GetCreditAccount(_ context.Context, userID string) (*CreditAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, nil
	}
	return acc.Clone(), nil
}

func (r *fakeAccountRepo) CreateCreditAccount(_ context.Context, account *CreditAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.UID]; ok {
		return fmt.Errorf("duplicate account: %s", account.UID)
	}
	r.accounts[account.UID] = account.Clone()
	return nil
}

func (r *fakeAccountRepo) UpdateWithLock(_ context.Context, userID string, fn func(*CreditAccount) error) (*CreditAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	working := acc.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.accounts[userID] = working
	return working.Clone(), nil
}

func (r *fakeAccountRepo) AddTopupCredits(_ context.Context, userID, feature string, amount int) (*CreditAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	switch feature {
	case constants.FeatureTypeChat:
		acc.ChatCreditsFromTopup += amount
	case constants.FeatureTypeVoice:
		acc.VoiceCreditsFromTopup += amount
	default:
		return nil, fmt.Errorf("unknown feature: %s", feature)
	}
	acc.Credits += amount
	return acc.Clone(), nil
}

func (r *fakeAccountRepo) ResetDailyUsage(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, acc := range r.accounts {
		if acc.VoiceCreditsUsedToday > 0 {
			acc.VoiceCreditsUsedToday = 0
			n++
		}
	}
	return n, nil
}

func (r *fakeAccountRepo) ResetMonthlyUsage(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, acc := range r.accounts {
		if acc.VoiceCreditsUsedThisMonth > 0 || acc.ImagesUsedThisMonth > 0 {
			acc.VoiceCreditsUsedThisMonth = 0
			acc.ImagesUsedThisMonth = 0
			n++
		}
	}
	return n, nil
}

// put 直接写入账户（测试初始化用）
func (r *fakeAccountRepo) put(acc *CreditAccount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[acc.UID] = acc.Clone()
}

// get 直接读取账户（断言用）
func (r *fakeAccountRepo) get(userID string) *CreditAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[userID].Clone()
}

// fakeUsageRepo 进程内使用流水存储
type fakeUsageRepo struct {
	mu       sync.Mutex
	records  []*UsageRecord
	failNext error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{}
}

func (r *fakeUsageRepo) RecordUsage(_ context.Context, record *UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	stored := *record
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.records = append(r.records, &stored)
	return nil
}

func (r *fakeUsageRepo) BatchCreateUsageRecords(ctx context.Context, events []*UsageEvent) error {
	for _, e := range events {
		if err := r.RecordUsage(ctx, &UsageRecord{
			ID:          e.RecordID,
			UserID:      e.UserID,
			Feature:     e.Feature,
			CreditsUsed: e.CreditsUsed,
			ThreadID:    e.ThreadID,
			Metadata:    e.Metadata,
			CreatedAt:   e.UsedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUsageRepo) ListUsageRecords(_ context.Context, userID string, _, _ int) ([]*UsageRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*UsageRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUsageRepo) GetUsageStatsToday(_ context.Context, userID, feature string) (*UsageStats, error) {
	return r.stats(userID, feature, constants.StatsPeriodToday), nil
}

func (r *fakeUsageRepo) GetUsageStatsMonth(_ context.Context, userID, feature string) (*UsageStats, error) {
	return r.stats(userID, feature, constants.StatsPeriodMonth), nil
}

func (r *fakeUsageRepo) stats(userID, feature, period string) *UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &UsageStats{UserID: userID, Feature: feature, Period: period}
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		if feature != "" && rec.Feature != feature {
			continue
		}
		s.TotalCount++
		s.TotalCredits += rec.CreditsUsed
	}
	return s
}

func (r *fakeUsageRepo) GetUsageSummary(_ context.Context, userID string) (*UsageSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &UsageSummary{UserID: userID}
	byFeature := make(map[string]*FeatureUsage)
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		summary.TotalCount++
		summary.TotalCredits += rec.CreditsUsed
		fu, ok := byFeature[rec.Feature]
		if !ok {
			fu = &FeatureUsage{Feature: rec.Feature}
			byFeature[rec.Feature] = fu
			summary.Features = append(summary.Features, fu)
		}
		fu.TotalCount++
		fu.TotalCredits += rec.CreditsUsed
	}
	return summary, nil
}

// recordsFor 某用户的全部流水（断言用）
func (r *fakeUsageRepo) recordsFor(userID string) []*UsageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*UsageRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

// fakeTxnRepo 进程内交易记录存储（payment_id 唯一）
// 持有账户存储引用以模拟幂等键占用与入账的同事务语义
type fakeTxnRepo struct {
	mu        sync.Mutex
	byPayment map[string]*Transaction
	accounts  *fakeAccountRepo
	failTopup error
	seq       int
}

func newFakeTxnRepo(accounts *fakeAccountRepo) *fakeTxnRepo {
	return &fakeTxnRepo{byPayment: make(map[string]*Transaction), accounts: accounts}
}

func (r *fakeTxnRepo) GetTransactionByPaymentID(_ context.Context, paymentID string) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.byPayment[paymentID]
	if !ok {
		return nil, nil
	}
	stored := *txn
	return &stored, nil
}

func (r *fakeTxnRepo) CreateTransactionIdempotent(_ context.Context, txn *Transaction) (*Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byPayment[txn.PaymentID]; ok {
		stored := *existing
		return &stored, false, nil
	}
	r.seq++
	stored := *txn
	stored.ID = fmt.Sprintf("txn-%d", r.seq)
	stored.CreatedAt = time.Now()
	r.byPayment[txn.PaymentID] = &stored
	out := stored
	return &out, true, nil
}

func (r *fakeTxnRepo) TopupWithIdempotency(ctx context.Context, txn *Transaction, feature string, credits int) (*CreditAccount, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPayment[txn.PaymentID]; ok {
		acc, err := r.accounts.GetCreditAccount(ctx, txn.UserID)
		if err != nil {
			return nil, false, err
		}
		return acc, false, nil
	}
	// 注入的事务失败：整体回滚，不留交易记录也不入账
	if r.failTopup != nil {
		err := r.failTopup
		r.failTopup = nil
		return nil, false, err
	}
	acc, err := r.accounts.AddTopupCredits(ctx, txn.UserID, feature, credits)
	if err != nil {
		return nil, false, err
	}
	r.seq++
	stored := *txn
	stored.ID = fmt.Sprintf("txn-%d", r.seq)
	stored.CreatedAt = time.Now()
	r.byPayment[txn.PaymentID] = &stored
	return acc, true, nil
}

// failNextTopup 注入一次入账事务失败（模拟提交失败后的回调重试）
func (r *fakeTxnRepo) failNextTopup(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failTopup = err
}

func (r *fakeTxnRepo) ListTransactions(_ context.Context, userID string, _, _ int) ([]*Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Transaction
	for _, txn := range r.byPayment {
		if txn.UserID == userID {
			stored := *txn
			out = append(out, &stored)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTxnRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPayment)
}

// testEnv 用例测试环境
type testEnv struct {
	uc       *CreditUseCase
	accounts *fakeAccountRepo
	usage    *fakeUsageRepo
	txns     *fakeTxnRepo
}

func newTestEnv() *testEnv {
	logger := log.NewStdLogger(io.Discard)
	accounts := newFakeAccountRepo()
	usage := newFakeUsageRepo()
	txns := newFakeTxnRepo(accounts)
	config := &CreditConfig{
		StatusCacheTTL:            time.Minute,
		StatusCacheSize:           64,
		AccountCacheTTL:           time.Minute,
		CreditLowPercentThreshold: 20.0,
		TrialChatCredits:          50,
		TrialVoiceCredits:         30,
	}
	uc := NewCreditUseCase(
		accounts,
		NewUsageRecordUseCase(usage, logger),
		NewTransactionUseCase(txns, logger),
		NewStatusCache(config),
		config,
		logger,
	)
	return &testEnv{uc: uc, accounts: accounts, usage: usage, txns: txns}
}

// futureTime 便捷构造未来时间指针
func futureTime() *time.Time {
	t := time.Now().Add(30 * 24 * time.Hour)
	return &t
}

// pastTime 便捷构造过去时间指针
func pastTime() *time.Time {
	t := time.Now().Add(-24 * time.Hour)
	return &t
}
