package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"biblioteca_backend/internals/constants"
	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	"biblioteca_backend/internals/features/circulation/reservations/model"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = fmt.Errorf("%w: reserva no encontrada", helper.ErrNotFound)
	ErrBookNotFound        = fmt.Errorf("%w: libro no encontrado", helper.ErrNotFound)
	ErrNoStockAvailable    = fmt.Errorf("%w: el libro no tiene ejemplares disponibles para reserva", helper.ErrValidation)
	ErrInvalidTransition   = fmt.Errorf("%w: transición de estado no permitida", helper.ErrValidation)
)

type BookStock struct {
	BookID    uuid.UUID
	Title     string
	Available int
}

type ReservationView struct {
	Reservation model.ReservationModel
	BookTitle   string
	UserName    string
}

type ListFilter struct {
	UserID *uuid.UUID
	BookID *uuid.UUID
	Status string
	Offset int
	Limit  int
}

// Store: persistence reservasi. Di dalam WithinTx semua method memakai tx.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// GetBookStock: nil, nil kalau buku tidak ada.
	GetBookStock(ctx context.Context, bookID uuid.UUID) (*BookStock, error)
	Insert(ctx context.Context, r *model.ReservationModel) error
	Get(ctx context.Context, id uuid.UUID) (*model.ReservationModel, error)
	// SaveStatus: update optimistik; ErrConcurrencyConflict kalau versi berubah.
	SaveStatus(ctx context.Context, r *model.ReservationModel, version int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExpirePending menandai Pendiente yang lewat expires_at sebagai Expirada.
	ExpirePending(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	View(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	List(ctx context.Context, f ListFilter) ([]ReservationView, int64, error)

	Audit(ctx context.Context, e auditService.Entry) error
}

type Service struct {
	store  Store
	policy helperAuth.Policy
	now    func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:  store,
		policy: helperAuth.DefaultPolicy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// NormalizeStatus: case-insensitive → bentuk kanonik.
func NormalizeStatus(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, st := range []string{
		constants.ReservationStatusPending,
		constants.ReservationStatusCompleted,
		constants.ReservationStatusCancelled,
		constants.ReservationStatusExpired,
	} {
		if strings.EqualFold(v, st) {
			return st, true
		}
	}
	return "", false
}

// Create: reservasi bersifat advisory, stok hanya dicek, tidak dikurangi.
func (s *Service) Create(ctx context.Context, actor helperAuth.Principal, bookID uuid.UUID) (*ReservationView, error) {
	var view *ReservationView
	err := s.store.WithinTx(ctx, func(tx Store) error {
		book, err := tx.GetBookStock(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return ErrBookNotFound
		}
		if book.Available <= 0 {
			return ErrNoStockAvailable
		}

		now := s.now()
		r := model.ReservationModel{
			ReservationID:         uuid.New(),
			ReservationUserID:     actor.UserID,
			ReservationBookID:     bookID,
			ReservationDate:       now,
			ReservationExpiresAt:  now.AddDate(0, 0, constants.ReservationHoldDays),
			ReservationStatus:     constants.ReservationStatusPending,
			ReservationRowVersion: 1,
		}
		if err := tx.Insert(ctx, &r); err != nil {
			return err
		}
		if err := tx.Audit(ctx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionReservationCreated,
			Entity:   auditService.EntityReservation,
			EntityID: r.ReservationID,
			Payload:  map[string]any{"book_id": bookID, "expires_at": r.ReservationExpiresAt},
		}); err != nil {
			return err
		}

		view, err = tx.View(ctx, r.ReservationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[RESERVATIONS][CREATE] ✅ reservation=%s book=%s user=%s", view.Reservation.ReservationID, bookID, actor.UserID)
	return view, nil
}

func (s *Service) Get(ctx context.Context, actor helperAuth.Principal, id uuid.UUID) (*ReservationView, error) {
	v, err := s.store.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := helperAuth.Authorize(s.policy, actor, v.Reservation.ReservationUserID, "la reserva"); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, actor helperAuth.Principal, f ListFilter) ([]ReservationView, int64, error) {
	if !s.policy.IsAdmin(actor) {
		uid := actor.UserID
		f.UserID = &uid
	}
	if strings.TrimSpace(f.Status) != "" {
		st, ok := NormalizeStatus(f.Status)
		if !ok {
			return nil, 0, fmt.Errorf("%w: estado %q desconocido", helper.ErrValidation, f.Status)
		}
		f.Status = st
	}
	return s.store.List(ctx, f)
}

// UpdateStatus: hanya Pendiente yang boleh berpindah; status final tidak berubah lagi.
func (s *Service) UpdateStatus(ctx context.Context, actor helperAuth.Principal, id uuid.UUID, status string, expectedVersion *int64) (*ReservationView, error) {
	next, ok := NormalizeStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: estado %q desconocido", helper.ErrValidation, status)
	}

	var view *ReservationView
	err := s.store.WithinTx(ctx, func(tx Store) error {
		r, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		version := r.ReservationRowVersion
		if expectedVersion != nil && *expectedVersion != version {
			return fmt.Errorf("reserva %s: %w", id, helper.ErrConcurrencyConflict)
		}

		prev := r.ReservationStatus
		if prev != next {
			if prev != constants.ReservationStatusPending {
				return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, prev, next)
			}
			r.ReservationStatus = next
			if err := tx.SaveStatus(ctx, r, version); err != nil {
				return err
			}
			if err := tx.Audit(ctx, auditService.Entry{
				UserID:   &actor.UserID,
				Action:   auditService.ActionReservationStatus,
				Entity:   auditService.EntityReservation,
				EntityID: id,
				Payload:  map[string]any{"from": prev, "to": next},
			}); err != nil {
				return err
			}
		}

		view, err = tx.View(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Delete: pemilik (membatalkan) atau admin.
func (s *Service) Delete(ctx context.Context, actor helperAuth.Principal, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx Store) error {
		r, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := helperAuth.Authorize(s.policy, actor, r.ReservationUserID, "la reserva"); err != nil {
			return err
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		return tx.Audit(ctx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionReservationDeleted,
			Entity:   auditService.EntityReservation,
			EntityID: id,
			Payload:  map[string]any{"user_id": r.ReservationUserID, "book_id": r.ReservationBookID, "status": r.ReservationStatus},
		})
	})
}

// ExpireDue dipanggil scheduler; mengembalikan jumlah reservasi yang kedaluwarsa.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	var n int
	err := s.store.WithinTx(ctx, func(tx Store) error {
		ids, err := tx.ExpirePending(ctx, s.now())
		if err != nil {
			return err
		}
		n = len(ids)
		for _, id := range ids {
			if err := tx.Audit(ctx, auditService.Entry{
				Action:   auditService.ActionReservationsExpired,
				Entity:   auditService.EntityReservation,
				EntityID: id,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return n, err
}
