package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"slotBooker/internal/lib/logger/sl"
	"slotBooker/internal/metrics"
	"slotBooker/internal/models"
	"slotBooker/internal/storage"
)

var (
	ErrInvalidInput    = errors.New("invalid booking data")
	ErrSlotTaken       = errors.New("this time slot is already booked")
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidToken    = errors.New("invalid or already used token")
	ErrInvalidAction   = errors.New("invalid action, use 'accept' or 'reject'")
	ErrAlreadyDecided  = errors.New("booking has already been decided")
	ErrVerifiedLocked  = errors.New("verified booking cannot be modified")
	ErrMessaging       = errors.New("failed to send email")
)

const maxTokenAttempts = 5

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Storage
type Storage interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	Booking(ctx context.Context, id int64) (*models.Booking, error)
	BookingByToken(ctx context.Context, token string) (*models.Booking, error)
	Bookings(ctx context.Context, filter models.Filter) ([]models.Booking, error)
	MarkVerified(ctx context.Context, token string, now time.Time) (*models.Booking, error)
	RenewToken(ctx context.Context, id int64, oldToken, newToken string, expiresAt time.Time) (*models.Booking, error)
	DecideBooking(ctx context.Context, id int64, status models.Status) (*models.Booking, error)
	UpdateDetails(ctx context.Context, b *models.Booking) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	SlotTaken(ctx context.Context, date time.Time, excludeID int64) (bool, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	DeleteUnverifiedExpired(ctx context.Context, before time.Time) (int64, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Sender
type Sender interface {
	Send(to, subject, body string) error
}

type Config struct {
	SiteURL    string
	TokenTTL   time.Duration
	StaleAfter time.Duration
}

type VerifyResult string

const (
	Verified VerifyResult = "verified"
	Renewed  VerifyResult = "renewed"
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// ParseAction accepts "accept" and "reject" in any letter case.
func ParseAction(s string) (Action, error) {
	switch {
	case strings.EqualFold(s, string(ActionAccept)):
		return ActionAccept, nil
	case strings.EqualFold(s, string(ActionReject)):
		return ActionReject, nil
	default:
		return "", ErrInvalidAction
	}
}

type Service struct {
	log      *slog.Logger
	storage  Storage
	sender   Sender
	cfg      Config
	validate *validator.Validate
	now      func() time.Time
	newToken func() (string, error)
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTokenSource(newToken func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = newToken
	}
}

func New(log *slog.Logger, storage Storage, sender Sender, cfg Config, opts ...Option) *Service {
	s := &Service{
		log:      log,
		storage:  storage,
		sender:   sender,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
		newToken: randomToken,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func randomToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// Create stores a new pending booking and mails its verification link.
// If the email cannot be sent the booking stays stored and is returned
// together with an error wrapping ErrMessaging.
func (s *Service) Create(ctx context.Context, draft models.Draft) (*models.Booking, error) {
	const op = "services.booking.Create"

	log := s.log.With(slog.String("op", op))

	draft.Name = strings.TrimSpace(draft.Name)
	draft.Email = strings.TrimSpace(draft.Email)

	if err := s.validate.Struct(draft); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	}

	taken, err := s.storage.SlotTaken(ctx, draft.ScheduledDate, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return nil, fmt.Errorf("%s: %w", op, ErrSlotTaken)
	}

	b := models.NewBooking(draft, s.now())

	err = s.withFreshToken(ctx, func(token string, expiresAt time.Time) error {
		b.VerificationToken = &token
		b.ExpiresAt = &expiresAt

		return s.storage.CreateBooking(ctx, b)
	})
	if err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			return nil, fmt.Errorf("%s: %w", op, ErrSlotTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking created", slog.Int64("id", b.ID))
	metrics.BookingEvents.WithLabelValues("created").Inc()

	subject, body := verificationMessage(b, s.verificationLink(b))
	if err = s.send("verification", b.Email, subject, body); err != nil {
		log.Error("failed to send verification email", slog.Int64("id", b.ID), sl.Err(err))

		return b, fmt.Errorf("%s: %w: %w", op, ErrMessaging, err)
	}

	return b, nil
}

// Verify consumes a verification token. An expired token is replaced with a
// fresh one and mailed again instead of verifying the booking.
func (s *Service) Verify(ctx context.Context, token string) (VerifyResult, *models.Booking, error) {
	const op = "services.booking.Verify"

	log := s.log.With(slog.String("op", op))

	if token == "" {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	b, err := s.storage.BookingByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.Int64("id", b.ID))

	now := s.now()

	if b.TokenExpired(now) {
		renewed, err := s.renewToken(ctx, b)
		if err != nil {
			if errors.Is(err, storage.ErrStaleBooking) {
				return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("verification token renewed")
		metrics.BookingEvents.WithLabelValues("renewed").Inc()

		subject, body := renewalMessage(renewed, s.verificationLink(renewed))
		if err = s.send("renewal", renewed.Email, subject, body); err != nil {
			log.Error("failed to send renewed verification email", sl.Err(err))
		}

		return Renewed, renewed, nil
	}

	verified, err := s.storage.MarkVerified(ctx, token, now)
	if err != nil {
		if errors.Is(err, storage.ErrStaleBooking) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking verified")
	metrics.BookingEvents.WithLabelValues("verified").Inc()

	subject, body := confirmedMessage(verified)
	if err = s.send("confirmed", verified.Email, subject, body); err != nil {
		log.Error("failed to send confirmation email", sl.Err(err))
	}

	return Verified, verified, nil
}

// Decide accepts or rejects a pending booking. Verification is not required.
func (s *Service) Decide(ctx context.Context, id int64, action string) (*models.Booking, error) {
	const op = "services.booking.Decide"

	log := s.log.With(slog.String("op", op), slog.Int64("id", id))

	act, err := ParseAction(action)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b, err := s.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.Status != models.StatusPending {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyDecided)
	}

	status := models.StatusAccepted
	if act == ActionReject {
		status = models.StatusRejected
	}

	decided, err := s.storage.DecideBooking(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrStaleBooking):
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyDecided)
		case errors.Is(err, storage.ErrBookingNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking decided", slog.String("status", string(decided.Status)))
	metrics.BookingEvents.WithLabelValues(string(decided.Status)).Inc()

	subject, body := decisionMessage(decided)
	if err = s.send(string(decided.Status), decided.Email, subject, body); err != nil {
		log.Error("failed to send decision email", sl.Err(err))
	}

	return decided, nil
}

// Update applies a partial update to a booking that is not verified yet.
func (s *Service) Update(ctx context.Context, id int64, patch models.Patch) (*models.Booking, error) {
	const op = "services.booking.Update"

	log := s.log.With(slog.String("op", op), slog.Int64("id", id))

	b, err := s.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.IsVerified {
		return nil, fmt.Errorf("%s: %w", op, ErrVerifiedLocked)
	}

	patch = patch.Trimmed()

	if err = s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	}

	if patch.ScheduledDate != nil && patch.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%s: %w: scheduled_date must be set", op, ErrInvalidInput)
	}

	if patch.Empty() {
		return b, nil
	}

	changed := *b
	if patch.Name != nil {
		changed.Name = *patch.Name
	}
	if patch.Email != nil {
		changed.Email = *patch.Email
	}
	if patch.ScheduledDate != nil && !patch.ScheduledDate.Equal(b.ScheduledDate) {
		if b.Status.Active() {
			taken, err := s.storage.SlotTaken(ctx, *patch.ScheduledDate, b.ID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if taken {
				return nil, fmt.Errorf("%s: %w", op, ErrSlotTaken)
			}
		}
		changed.ScheduledDate = *patch.ScheduledDate
	}

	updated, err := s.storage.UpdateDetails(ctx, &changed)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrStaleBooking):
			return nil, fmt.Errorf("%s: %w", op, ErrVerifiedLocked)
		case errors.Is(err, storage.ErrSlotTaken):
			return nil, fmt.Errorf("%s: %w", op, ErrSlotTaken)
		case errors.Is(err, storage.ErrBookingNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking updated")
	metrics.BookingEvents.WithLabelValues("updated").Inc()

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "services.booking.Delete"

	if err := s.storage.DeleteBooking(ctx, id); err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking deleted", slog.String("op", op), slog.Int64("id", id))
	metrics.BookingEvents.WithLabelValues("deleted").Inc()

	return nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.Booking, error) {
	const op = "services.booking.List"

	filter.Search = strings.TrimSpace(filter.Search)

	bookings, err := s.storage.Bookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Booking, error) {
	const op = "services.booking.Get"

	b, err := s.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// PurgeStale deletes unverified bookings whose token expired more than
// StaleAfter ago, releasing their slots. A zero StaleAfter disables it.
func (s *Service) PurgeStale(ctx context.Context) (int64, error) {
	const op = "services.booking.PurgeStale"

	if s.cfg.StaleAfter <= 0 {
		return 0, nil
	}

	n, err := s.storage.DeleteUnverifiedExpired(ctx, s.now().Add(-s.cfg.StaleAfter))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if n > 0 {
		s.log.Info("stale bookings purged", slog.String("op", op), slog.Int64("count", n))
		metrics.BookingEvents.WithLabelValues("purged").Add(float64(n))
	}

	return n, nil
}

func (s *Service) get(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.storage.Booking(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

// issueToken generates a verification token that no booking holds yet,
// together with its expiry.
func (s *Service) issueToken(ctx context.Context) (string, time.Time, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
		}

		exists, err := s.storage.TokenExists(ctx, token)
		if err != nil {
			return "", time.Time{}, err
		}
		if exists {
			continue
		}

		return token, s.now().Add(s.cfg.TokenTTL), nil
	}

	return "", time.Time{}, fmt.Errorf("failed to generate a unique token after %d attempts", maxTokenAttempts)
}

// withFreshToken issues a token and hands it to save, issuing again when a
// concurrent writer claimed the same token first.
func (s *Service) withFreshToken(ctx context.Context, save func(token string, expiresAt time.Time) error) error {
	var err error

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, expiresAt, issueErr := s.issueToken(ctx)
		if issueErr != nil {
			return issueErr
		}

		err = save(token, expiresAt)
		if !errors.Is(err, storage.ErrTokenTaken) {
			return err
		}
	}

	return err
}

// renewToken replaces the expired token of b. It fails with
// storage.ErrStaleBooking when b was verified or renewed meanwhile.
func (s *Service) renewToken(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	var renewed *models.Booking

	err := s.withFreshToken(ctx, func(token string, expiresAt time.Time) error {
		var err error
		renewed, err = s.storage.RenewToken(ctx, b.ID, *b.VerificationToken, token, expiresAt)

		return err
	})
	if err != nil {
		return nil, err
	}

	return renewed, nil
}

func (s *Service) send(kind, to, subject, body string) error {
	if err := s.sender.Send(to, subject, body); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		return err
	}

	metrics.EmailsSent.WithLabelValues(kind, "ok").Inc()

	return nil
}

func (s *Service) verificationLink(b *models.Booking) string {
	return fmt.Sprintf("%s/verify/%s", strings.TrimRight(s.cfg.SiteURL, "/"), *b.VerificationToken)
}
