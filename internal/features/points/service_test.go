package points

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/features/tiers"
)

type fakeStore struct {
	balances map[int64]int64
	ledger   []Credit
	failLog  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{balances: map[int64]int64{}}
}

func (f *fakeStore) AddPoints(_ context.Context, userID, amount int64) (int64, error) {
	b, ok := f.balances[userID]
	if !ok {
		return 0, common.ErrUserNotFound
	}
	f.balances[userID] = b + amount
	return b + amount, nil
}

func (f *fakeStore) AppendLedger(_ context.Context, c Credit) error {
	if f.failLog {
		return errors.New("disk full")
	}
	f.ledger = append(f.ledger, c)
	return nil
}

func (f *fakeStore) History(_ context.Context, userID int64, limit int) ([]LedgerEntry, error) {
	var out []LedgerEntry
	for i := len(f.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		c := f.ledger[i]
		if c.UserID == userID {
			out = append(out, LedgerEntry{UserID: c.UserID, Delta: c.Amount, Reason: c.Reason})
		}
	}
	return out, nil
}

// snapshotTx откатывает балансы, если fn вернула ошибку.
type snapshotTx struct {
	store *fakeStore
}

func (t snapshotTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := make(map[int64]int64, len(t.store.balances))
	for k, v := range t.store.balances {
		saved[k] = v
	}
	ledger := len(t.store.ledger)
	if err := fn(ctx); err != nil {
		t.store.balances = saved
		t.store.ledger = t.store.ledger[:ledger]
		return err
	}
	return nil
}

type fakeTiers struct {
	synced map[int64]int64
}

func (f *fakeTiers) SyncUserTier(_ context.Context, userID, points int64) (tiers.Tier, error) {
	f.synced[userID] = points
	return tiers.Resolve(nil, points), nil
}

func TestCredit(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	tr := &fakeTiers{synced: map[int64]int64{}}
	svc := NewService(store, tr, snapshotTx{store: store})

	balance, err := svc.Credit(context.Background(), Credit{UserID: 1, Amount: 1200, Reason: ReasonReceiptApproved})
	require.NoError(t, err)
	require.Equal(t, int64(1300), balance)
	require.Equal(t, int64(1300), tr.synced[1])
	require.Len(t, store.ledger, 1)
	require.Equal(t, ReasonReceiptApproved, store.ledger[0].Reason)
}

func TestCreditRejectsNonPositive(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	svc := NewService(store, &fakeTiers{synced: map[int64]int64{}}, snapshotTx{store: store})

	for _, amount := range []int64{0, -5} {
		_, err := svc.Credit(context.Background(), Credit{UserID: 1, Amount: amount, Reason: ReasonAdminAdjustment})
		require.ErrorIs(t, err, common.ErrInvalidPoints)
	}
	require.Equal(t, int64(100), store.balances[1])
	require.Empty(t, store.ledger)
}

func TestCreditRollsBackOnLedgerFailure(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	store.failLog = true
	svc := NewService(store, &fakeTiers{synced: map[int64]int64{}}, snapshotTx{store: store})

	_, err := svc.Credit(context.Background(), Credit{UserID: 1, Amount: 10, Reason: ReasonSignup})
	require.Error(t, err)
	require.Equal(t, int64(100), store.balances[1])
}

func TestCreditUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeTiers{synced: map[int64]int64{}}, snapshotTx{store: store})

	_, err := svc.Credit(context.Background(), Credit{UserID: 404, Amount: 10, Reason: ReasonSignup})
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestAdjust(t *testing.T) {
	store := newFakeStore()
	store.balances[5] = 0
	svc := NewService(store, &fakeTiers{synced: map[int64]int64{}}, snapshotTx{store: store})

	balance, err := svc.Adjust(context.Background(), 1, 5, AdjustInput{Points: 250})
	require.NoError(t, err)
	require.Equal(t, int64(250), balance)
	require.Equal(t, ReasonAdminAdjustment, store.ledger[0].Reason)
	require.Equal(t, "Ajuste manual", store.ledger[0].Description)
	require.Nil(t, store.ledger[0].ReferenceID)

	_, err = svc.Adjust(context.Background(), 1, 5, AdjustInput{Points: -10})
	require.ErrorIs(t, err, common.ErrInvalidPoints)
}

func TestHistory(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 0
	store.balances[2] = 0
	svc := NewService(store, &fakeTiers{synced: map[int64]int64{}}, snapshotTx{store: store})
	ctx := context.Background()

	_, err := svc.Credit(ctx, Credit{UserID: 1, Amount: 100, Reason: ReasonSignup})
	require.NoError(t, err)
	_, err = svc.Credit(ctx, Credit{UserID: 2, Amount: 100, Reason: ReasonSignup})
	require.NoError(t, err)
	_, err = svc.Credit(ctx, Credit{UserID: 1, Amount: 7, Reason: ReasonReceiptApproved})
	require.NoError(t, err)

	list, err := svc.History(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, ReasonReceiptApproved, list[0].Reason)

	list, err = svc.History(ctx, 3, 10)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}
