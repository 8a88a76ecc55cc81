package tickets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/JonasLeetTheWay/eventisense/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakePayments struct {
	approve bool
	err     error
	charged []decimal.Decimal
	refunds []string
}

func (f *fakePayments) CreatePaymentIntent(ctx context.Context, req *payment.PaymentRequest) (*payment.PaymentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.charged = append(f.charged, req.Amount)
	resp := &payment.PaymentResponse{
		PaymentIntent: &payment.PaymentIntent{ID: "pi_test", Amount: req.Amount},
		Success:       f.approve,
	}
	if !f.approve {
		resp.Error = "card declined"
	}
	return resp, nil
}

func (f *fakePayments) RefundPayment(ctx context.Context, id string, amount decimal.Decimal) (*payment.PaymentResponse, error) {
	f.refunds = append(f.refunds, id)
	return &payment.PaymentResponse{Success: true}, nil
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db        *gorm.DB
	svc       *Service
	payments  *fakePayments
	organizer auth.Identity
	buyer     auth.Identity
	paid      models.Event
	free      models.Event
}

func setup(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))

	org := models.Profile{Email: "org@example.com", Password: "x", FullName: "Org", Role: models.RoleEventPlanner}
	buyer := models.Profile{Email: "buyer@example.com", Password: "x", FullName: "Buyer", Role: models.RoleUser}
	require.NoError(t, db.Create(&org).Error)
	require.NoError(t, db.Create(&buyer).Error)

	paid := models.Event{OrganizerID: org.ID, Name: "Gala", Date: time.Now().Add(48 * time.Hour), TicketPrice: ptr(250000.0), Capacity: ptr(3)}
	free := models.Event{OrganizerID: org.ID, Name: "Meetup", Date: time.Now().Add(48 * time.Hour)}
	require.NoError(t, db.Create(&paid).Error)
	require.NoError(t, db.Create(&free).Error)

	payments := &fakePayments{approve: true}
	return &fixture{
		db:        db,
		svc:       NewService(backend.NewGormStore(db), payments, nil),
		payments:  payments,
		organizer: auth.IdentityOf(org),
		buyer:     auth.IdentityOf(buyer),
		paid:      paid,
		free:      free,
	}
}

func TestJoin_ResolvesReferences(t *testing.T) {
	events := []models.Event{{OrganizerID: 7, TicketPrice: ptr(100.0)}}
	events[0].ID = 1
	profiles := []models.Profile{{Email: "buyer@example.com"}, {Email: "venue@example.com", Role: models.RoleVenueManager}}
	profiles[0].ID = 5
	profiles[1].ID = 7
	tickets := []models.Ticket{
		{EventID: 1, UserID: 5, Quantity: 2},
		{EventID: 99, UserID: 42, Quantity: 1},
	}

	views := Join(tickets, events, profiles)
	require.Len(t, views, 2)

	assert.Equal(t, "buyer@example.com", views[0].Buyer.Email)
	assert.Equal(t, models.RoleVenueManager, views[0].Organizer.Role)
	assert.True(t, views[0].Total.Equal(decimal.NewFromInt(200)))

	assert.Nil(t, views[1].Event)
	assert.Nil(t, views[1].Buyer)
	assert.Nil(t, views[1].Organizer)
	assert.True(t, views[1].Total.IsZero())

	assert.Empty(t, Join(nil, events, profiles))
}

func TestPurchase_Approved(t *testing.T) {
	f := setup(t)

	ticket, err := f.svc.Purchase(context.Background(), f.buyer, f.paid.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.TicketApproved, ticket.Status)
	assert.Equal(t, "pi_test", ticket.PaymentID)
	require.Len(t, f.payments.charged, 1)
	assert.True(t, f.payments.charged[0].Equal(decimal.NewFromInt(500000)))
}

func TestPurchase_DeclinedIsRecorded(t *testing.T) {
	f := setup(t)
	f.payments.approve = false

	ticket, err := f.svc.Purchase(context.Background(), f.buyer, f.paid.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TicketRejected, ticket.Status)
	assert.Equal(t, "card declined", ticket.FailureReason)

	views, err := f.svc.ForUser(context.Background(), f.buyer)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.TicketRejected, views[0].Ticket.Status)
}

func TestPurchase_FreeEventSkipsPayment(t *testing.T) {
	f := setup(t)

	ticket, err := f.svc.Purchase(context.Background(), f.buyer, f.free.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, models.TicketApproved, ticket.Status)
	assert.Empty(t, f.payments.charged)
}

func TestPurchase_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Purchase(ctx, f.buyer, f.paid.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.Purchase(ctx, f.buyer, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Purchase(ctx, f.buyer, f.paid.ID, 3)
	require.NoError(t, err)
	_, err = f.svc.Purchase(ctx, f.buyer, f.paid.ID, 1)
	assert.ErrorIs(t, err, ErrSoldOut)

	f.payments.err = errors.New("gateway timeout")
	_, err = f.svc.Purchase(ctx, f.buyer, f.free.ID, 1)
	assert.NoError(t, err)
}

func TestForOrganizer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Purchase(ctx, f.buyer, f.paid.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Purchase(ctx, f.buyer, f.free.ID, 1)
	require.NoError(t, err)

	views, err := f.svc.ForOrganizer(ctx, f.organizer)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Buyer", views[0].Buyer.FullName)
	assert.Equal(t, "Org", views[0].Organizer.FullName)

	other := auth.Identity{UserID: 999, Role: models.RoleSupplier}
	views, err = f.svc.ForOrganizer(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestSetStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ticket, err := f.svc.Purchase(ctx, f.buyer, f.paid.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, f.buyer, ticket.ID, models.TicketApproved)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.SetStatus(ctx, f.organizer, ticket.ID, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := f.svc.SetStatus(ctx, f.buyer, ticket.ID, models.TicketCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCancelled, updated.Status)
	assert.Equal(t, []string{"pi_test"}, f.payments.refunds)
}

func TestSetStatus_FinalStatesRefundOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ticket, err := f.svc.Purchase(ctx, f.buyer, f.paid.ID, 1)
	require.NoError(t, err)

	cancelled, err := f.svc.SetStatus(ctx, f.organizer, ticket.ID, models.TicketCancelled)
	require.NoError(t, err)
	assert.NotNil(t, cancelled.RefundedAt)

	_, err = f.svc.SetStatus(ctx, f.organizer, ticket.ID, models.TicketApproved)
	assert.ErrorIs(t, err, ErrFinalStatus)

	again, err := f.svc.SetStatus(ctx, f.organizer, ticket.ID, models.TicketCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCancelled, again.Status)

	assert.Len(t, f.payments.charged, 1)
	assert.Equal(t, []string{"pi_test"}, f.payments.refunds)
}

func TestSetStatus_RejectedIsFinal(t *testing.T) {
	f := setup(t)
	f.payments.approve = false
	ctx := context.Background()

	ticket, err := f.svc.Purchase(ctx, f.buyer, f.paid.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.TicketRejected, ticket.Status)

	_, err = f.svc.SetStatus(ctx, f.organizer, ticket.ID, models.TicketApproved)
	assert.ErrorIs(t, err, ErrFinalStatus)
	assert.Empty(t, f.payments.refunds)
}

// rejectingStore fails every ticket insert.
type rejectingStore struct {
	backend.Store
}

func (s rejectingStore) Insert(ctx context.Context, table string, record any) error {
	if table == backend.TableTickets {
		return backend.ErrRejected
	}
	return s.Store.Insert(ctx, table, record)
}

func TestPurchase_InsertFailureRefundsCharge(t *testing.T) {
	f := setup(t)
	svc := NewService(rejectingStore{Store: backend.NewGormStore(f.db)}, f.payments, nil)

	_, err := svc.Purchase(context.Background(), f.buyer, f.paid.ID, 2)
	assert.ErrorIs(t, err, backend.ErrRejected)
	require.Len(t, f.payments.charged, 1)
	assert.Equal(t, []string{"pi_test"}, f.payments.refunds)

	f.payments.approve = false
	_, err = svc.Purchase(context.Background(), f.buyer, f.paid.ID, 1)
	assert.Error(t, err)
	assert.Len(t, f.payments.refunds, 1)
}

type fakeLocker struct {
	held     map[uint]bool
	unlocked []uint
}

func (l *fakeLocker) LockEvent(_ context.Context, eventID, _ uint) error {
	if l.held[eventID] {
		return errors.New("already locked")
	}
	l.held[eventID] = true
	return nil
}

func (l *fakeLocker) UnlockEvent(_ context.Context, eventID uint) error {
	delete(l.held, eventID)
	l.unlocked = append(l.unlocked, eventID)
	return nil
}

func TestPurchase_Locking(t *testing.T) {
	f := setup(t)
	locks := &fakeLocker{held: map[uint]bool{}}
	f.svc.WithLocker(locks)

	_, err := f.svc.Purchase(context.Background(), f.buyer, f.paid.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.paid.ID}, locks.unlocked)
	assert.Empty(t, locks.held)

	locks.held[f.paid.ID] = true
	_, err = f.svc.Purchase(context.Background(), f.buyer, f.paid.ID, 1)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, f.payments.charged, 1)
}
