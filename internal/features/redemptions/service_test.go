package redemptions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/features/prizes"
	"laboratorio3d.cl/rewards/internal/features/users"
)

type world struct {
	users       map[int64]*users.User
	prizes      map[int64]*prizes.Prize
	redemptions []*Redemption
}

func newWorld() *world {
	return &world{
		users: map[int64]*users.User{
			1: {ID: 1, Points: 1000, CanRedeem: true, Active: true},
			2: {ID: 2, Points: 50, CanRedeem: true, Active: true},
			3: {ID: 3, Points: 5000, CanRedeem: false, Active: true},
		},
		prizes: map[int64]*prizes.Prize{
			10: {ID: 10, Name: "Filamento PLA", PointsRequired: 500, Stock: 2, Active: true},
			11: {ID: 11, Name: "Boquilla", PointsRequired: 100, Stock: 0, Active: true},
			12: {ID: 12, Name: "Retirado", PointsRequired: 100, Stock: 5, Active: false},
		},
	}
}

func (w *world) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	prizesCopy := make(map[int64]*prizes.Prize, len(w.prizes))
	for id, p := range w.prizes {
		cp := *p
		prizesCopy[id] = &cp
	}
	var rds []*Redemption
	for _, rd := range w.redemptions {
		cp := *rd
		rds = append(rds, &cp)
	}
	if err := fn(ctx); err != nil {
		w.prizes = prizesCopy
		w.redemptions = rds
		return err
	}
	return nil
}

type store struct{ w *world }

func (s store) Create(_ context.Context, rd *Redemption) error {
	for _, existing := range s.w.redemptions {
		if existing.UserID == rd.UserID && existing.PrizeID == rd.PrizeID {
			return common.ErrDuplicateRedemption
		}
	}
	rd.ID = int64(len(s.w.redemptions) + 1)
	cp := *rd
	s.w.redemptions = append(s.w.redemptions, &cp)
	return nil
}

func (s store) Exists(_ context.Context, userID, prizeID int64) (bool, error) {
	for _, rd := range s.w.redemptions {
		if rd.UserID == userID && rd.PrizeID == prizeID {
			return true, nil
		}
	}
	return false, nil
}

func (s store) LockByID(_ context.Context, id int64) (*Redemption, error) {
	for _, rd := range s.w.redemptions {
		if rd.ID == id {
			cp := *rd
			return &cp, nil
		}
	}
	return nil, common.ErrRedemptionNotFound
}

func (s store) List(_ context.Context, f ListFilter) ([]*Redemption, error) {
	var out []*Redemption
	for _, rd := range s.w.redemptions {
		if f.UserID != nil && rd.UserID != *f.UserID {
			continue
		}
		if f.State != "" && rd.State != f.State {
			continue
		}
		out = append(out, rd)
	}
	return out, nil
}

func (s store) UpdateState(_ context.Context, id int64, state string, notes *string) error {
	for _, rd := range s.w.redemptions {
		if rd.ID == id {
			rd.State = state
			if notes != nil {
				rd.Notes = notes
			}
		}
	}
	return nil
}

type userLocker struct{ w *world }

func (u userLocker) LockByID(_ context.Context, id int64) (*users.User, error) {
	usr, ok := u.w.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	cp := *usr
	return &cp, nil
}

type prizeStock struct{ w *world }

func (p prizeStock) LockByID(_ context.Context, id int64) (*prizes.Prize, error) {
	pr, ok := p.w.prizes[id]
	if !ok {
		return nil, common.ErrPrizeNotFound
	}
	cp := *pr
	return &cp, nil
}

func (p prizeStock) DecrementStock(_ context.Context, id int64) (bool, error) {
	pr := p.w.prizes[id]
	if pr.Stock <= 0 {
		return false, nil
	}
	pr.Stock--
	return true, nil
}

func (p prizeStock) IncrementStock(_ context.Context, id int64) error {
	p.w.prizes[id].Stock++
	return nil
}

func newTestService(w *world) *Service {
	return NewService(store{w}, userLocker{w}, prizeStock{w}, w)
}

func TestRedeem(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)

	res, err := svc.Redeem(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, StatePending, res.Redemption.State)
	require.Equal(t, int64(500), res.Redemption.PointsRequired)
	require.Equal(t, 1, res.Prize.Stock)
	require.Equal(t, int64(1000), res.Balance)

	// Баллы не списываются, остаток уменьшился
	require.Equal(t, int64(1000), w.users[1].Points)
	require.Equal(t, 1, w.prizes[10].Stock)
	require.Len(t, w.redemptions, 1)
}

func TestRedeemRejections(t *testing.T) {
	tests := []struct {
		name     string
		userID   int64
		prizeID  int64
		expected error
	}{
		{"нет остатка", 1, 11, common.ErrPrizeOutOfStock},
		{"неактивный", 1, 12, common.ErrPrizeInactive},
		{"мало баллов", 2, 10, common.ErrInsufficientPoints},
		{"запрещён canje", 3, 10, common.ErrRedemptionNotAllowed},
		{"нет приза", 1, 99, common.ErrPrizeNotFound},
		{"нулевой ID", 1, 0, common.ErrPrizeNotFound},
	}
	for _, ts := range tests {
		w := newWorld()
		svc := newTestService(w)

		_, err := svc.Redeem(context.Background(), ts.userID, ts.prizeID)
		require.ErrorIs(t, err, ts.expected, ts.name)
		require.Empty(t, w.redemptions, ts.name)
		require.Equal(t, 2, w.prizes[10].Stock, ts.name)
		require.Equal(t, 5, w.prizes[12].Stock, ts.name)
	}
}

func TestRedeemDuplicate(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)
	ctx := context.Background()

	_, err := svc.Redeem(ctx, 1, 10)
	require.NoError(t, err)

	// Остаток и баллы есть, но повтор запрещён
	_, err = svc.Redeem(ctx, 1, 10)
	require.ErrorIs(t, err, common.ErrDuplicateRedemption)
	require.Equal(t, 1, w.prizes[10].Stock)
	require.Len(t, w.redemptions, 1)

	// Даже после отклонения первого canje
	_, err = svc.UpdateState(ctx, 99, 1, StateUpdate{State: StateRejected})
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, 1, 10)
	require.ErrorIs(t, err, common.ErrDuplicateRedemption)
}

func TestRedeemDuplicateWinsOverGates(t *testing.T) {
	ctx := context.Background()

	// Последняя единица уже забрана этим же пользователем
	w := newWorld()
	w.prizes[10].Stock = 1
	svc := newTestService(w)
	_, err := svc.Redeem(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0, w.prizes[10].Stock)

	_, err = svc.Redeem(ctx, 1, 10)
	require.ErrorIs(t, err, common.ErrDuplicateRedemption)

	// Приз сняли с витрины после первого canje
	w = newWorld()
	svc = newTestService(w)
	_, err = svc.Redeem(ctx, 1, 10)
	require.NoError(t, err)
	w.prizes[10].Active = false

	_, err = svc.Redeem(ctx, 1, 10)
	require.ErrorIs(t, err, common.ErrDuplicateRedemption)

	// Баллов стало не хватать и canje запретили
	w.prizes[10].Active = true
	w.users[1].Points = 0
	w.users[1].CanRedeem = false
	_, err = svc.Redeem(ctx, 1, 10)
	require.ErrorIs(t, err, common.ErrDuplicateRedemption)
	require.Len(t, w.redemptions, 1)
	require.Equal(t, 1, w.prizes[10].Stock)
}

func TestUpdateStateTransitions(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)
	ctx := context.Background()

	res, err := svc.Redeem(ctx, 1, 10)
	require.NoError(t, err)
	id := res.Redemption.ID

	_, err = svc.UpdateState(ctx, 99, id, StateUpdate{State: StateDelivered})
	require.ErrorIs(t, err, common.ErrInvalidRedemptionTransition)

	rd, err := svc.UpdateState(ctx, 99, id, StateUpdate{State: " Aprobado ", Notes: "retiro en tienda"})
	require.NoError(t, err)
	require.Equal(t, StateApproved, rd.State)
	require.Equal(t, "retiro en tienda", *rd.Notes)

	_, err = svc.UpdateState(ctx, 99, id, StateUpdate{State: StateRejected})
	require.ErrorIs(t, err, common.ErrInvalidRedemptionTransition)

	rd, err = svc.UpdateState(ctx, 99, id, StateUpdate{State: StateDelivered})
	require.NoError(t, err)
	require.Equal(t, StateDelivered, rd.State)

	_, err = svc.UpdateState(ctx, 99, id, StateUpdate{State: StatePending})
	require.ErrorIs(t, err, common.ErrInvalidRedemptionTransition)

	_, err = svc.UpdateState(ctx, 99, 404, StateUpdate{State: StateApproved})
	require.ErrorIs(t, err, common.ErrRedemptionNotFound)
}

func TestRejectReturnsStock(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)
	ctx := context.Background()

	res, err := svc.Redeem(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, w.prizes[10].Stock)

	_, err = svc.UpdateState(ctx, 99, res.Redemption.ID, StateUpdate{State: StateRejected})
	require.NoError(t, err)
	require.Equal(t, 2, w.prizes[10].Stock)
}

func TestListMine(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)
	ctx := context.Background()

	list, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	_, err = svc.Redeem(ctx, 1, 10)
	require.NoError(t, err)
	list, err = svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Filamento PLA", list[0].PrizeName)
}
