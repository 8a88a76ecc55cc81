package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/auth"
	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/JonasLeetTheWay/eventisense/internal/payment"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrSoldOut         = errors.New("not enough tickets left")
	ErrForbidden       = errors.New("ticket belongs to another user")
	ErrNotFound        = errors.New("not found")
	ErrBusy            = errors.New("another purchase for this event is in progress")
	ErrFinalStatus     = errors.New("ticket status can no longer change")
)

// Locker serializes purchases per event so the capacity check and the
// insert see a consistent count.
type Locker interface {
	LockEvent(ctx context.Context, eventID, userID uint) error
	UnlockEvent(ctx context.Context, eventID uint) error
}

var profileColumns = []string{"id", "email", "full_name", "company_name", "role"}

type Service struct {
	store    backend.Store
	payments payment.Provider
	locks    Locker
	log      *zap.Logger
}

func NewService(store backend.Store, payments payment.Provider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, payments: payments, log: log}
}

// WithLocker enables per-event purchase locking.
func (s *Service) WithLocker(l Locker) *Service {
	s.locks = l
	return s
}

type collections struct {
	tickets  []models.Ticket
	events   []models.Event
	profiles []models.Profile
}

// fetch reads the three collections concurrently and returns once all of
// them resolved.
func (s *Service) fetch(ctx context.Context, ticketQuery backend.Query) (*collections, error) {
	var out collections
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		out.tickets, err = backend.SelectAll[models.Ticket](gctx, s.store, backend.TableTickets, ticketQuery)
		if err != nil {
			return fmt.Errorf("failed to load tickets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		out.events, err = backend.SelectAll[models.Event](gctx, s.store, backend.TableEvents, backend.Query{})
		if err != nil {
			return fmt.Errorf("failed to load events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		out.profiles, err = backend.SelectAll[models.Profile](gctx, s.store, backend.TableProfiles, backend.Query{Columns: profileColumns})
		if err != nil {
			return fmt.Errorf("failed to load profiles: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForUser lists the caller's tickets, newest first.
func (s *Service) ForUser(ctx context.Context, id auth.Identity) ([]View, error) {
	c, err := s.fetch(ctx, backend.Query{
		Where:   map[string]any{"user_id": id.UserID},
		OrderBy: "id desc",
	})
	if err != nil {
		return nil, err
	}
	return Join(c.tickets, c.events, c.profiles), nil
}

// ForOrganizer lists tickets sold for the caller's events. Admins see all.
func (s *Service) ForOrganizer(ctx context.Context, id auth.Identity) ([]View, error) {
	c, err := s.fetch(ctx, backend.Query{OrderBy: "id desc"})
	if err != nil {
		return nil, err
	}

	views := Join(c.tickets, c.events, c.profiles)
	out := make([]View, 0, len(views))
	for _, v := range views {
		if v.Event != nil && id.CanManage(v.Event.OrganizerID) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Purchase charges quantity tickets for an event. A declined payment is
// still recorded, as a rejected ticket carrying the failure reason.
func (s *Service) Purchase(ctx context.Context, id auth.Identity, eventID uint, quantity int) (*models.Ticket, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	event, err := backend.FindByID[models.Event](ctx, s.store, backend.TableEvents, eventID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if s.locks != nil {
		if err := s.locks.LockEvent(ctx, eventID, id.UserID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBusy, err)
		}
		defer func() {
			if err := s.locks.UnlockEvent(context.WithoutCancel(ctx), eventID); err != nil {
				s.log.Warn("Failed to release purchase lock", zap.Uint("eventID", eventID), zap.Error(err))
			}
		}()
	}

	if event.Capacity != nil {
		sold, err := s.sold(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if sold+quantity > *event.Capacity {
			return nil, fmt.Errorf("%w: %d of %d sold", ErrSoldOut, sold, *event.Capacity)
		}
	}

	ticket := &models.Ticket{
		EventID:  eventID,
		UserID:   id.UserID,
		Quantity: quantity,
		Status:   models.TicketApproved,
	}

	amount := Total(event, quantity)
	charged := false
	if amount.IsPositive() {
		resp, err := s.payments.CreatePaymentIntent(ctx, &payment.PaymentRequest{
			Amount:  amount,
			UserID:  id.UserID,
			EventID: eventID,
		})
		if err != nil {
			return nil, fmt.Errorf("payment processing failed: %w", err)
		}
		if resp.PaymentIntent != nil {
			ticket.PaymentID = resp.PaymentIntent.ID
		}
		if resp.Success {
			charged = ticket.PaymentID != ""
		} else {
			ticket.Status = models.TicketRejected
			ticket.FailureReason = resp.Error
		}
	}

	if err := s.store.Insert(ctx, backend.TableTickets, ticket); err != nil {
		// The buyer was charged for a ticket that was never recorded.
		if charged {
			if _, rerr := s.payments.RefundPayment(context.WithoutCancel(ctx), ticket.PaymentID, amount); rerr != nil {
				s.log.Error("Failed to refund unrecorded ticket",
					zap.String("paymentID", ticket.PaymentID),
					zap.String("amount", amount.String()),
					zap.Error(rerr),
				)
			}
		}
		return nil, fmt.Errorf("failed to record ticket: %w", err)
	}

	s.log.Info("Ticket purchase processed",
		zap.Uint("ticketID", ticket.ID),
		zap.Uint("eventID", eventID),
		zap.Uint("userID", id.UserID),
		zap.String("status", string(ticket.Status)),
	)
	return ticket, nil
}

func (s *Service) sold(ctx context.Context, eventID uint) (int, error) {
	existing, err := backend.SelectAll[models.Ticket](ctx, s.store, backend.TableTickets, backend.Query{
		Columns: []string{"quantity", "status"},
		Where:   map[string]any{"event_id": eventID},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load tickets: %w", err)
	}
	total := 0
	for _, t := range existing {
		if t.Status == models.TicketApproved || t.Status == models.TicketPending {
			total += t.Quantity
		}
	}
	return total, nil
}

// SetStatus changes a ticket's status. The event's organizer may set any
// status; the buyer may only cancel. Cancelled and rejected tickets are
// final. Cancelling a paid ticket refunds it once.
func (s *Service) SetStatus(ctx context.Context, id auth.Identity, ticketID uint, status models.TicketStatus) (*models.Ticket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ticket, err := backend.FindByID[models.Ticket](ctx, s.store, backend.TableTickets, ticketID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("ticket %d: %w", ticketID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	event, err := backend.FindByID[models.Event](ctx, s.store, backend.TableEvents, ticket.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	organizer := id.CanManage(event.OrganizerID)
	buyerCancelling := ticket.UserID == id.UserID && status == models.TicketCancelled
	if !organizer && !buyerCancelling {
		return nil, ErrForbidden
	}

	if status == ticket.Status {
		return ticket, nil
	}
	if ticket.Status.Final() {
		return nil, fmt.Errorf("%w: ticket is %s", ErrFinalStatus, ticket.Status)
	}

	changes := map[string]any{"status": status}
	if status == models.TicketCancelled && ticket.Status == models.TicketApproved &&
		ticket.PaymentID != "" && ticket.RefundedAt == nil {
		amount := Total(event, ticket.Quantity)
		if _, err := s.payments.RefundPayment(ctx, ticket.PaymentID, amount); err != nil {
			return nil, fmt.Errorf("refund failed: %w", err)
		}
		changes["refunded_at"] = time.Now()
		s.log.Info("Ticket refunded", zap.Uint("ticketID", ticketID), zap.String("amount", amount.String()))
	}

	if err := s.store.Update(ctx, backend.TableTickets, ticketID, changes); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	return backend.FindByID[models.Ticket](ctx, s.store, backend.TableTickets, ticketID)
}
