package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"biblioteca_backend/internals/constants"
	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	"biblioteca_backend/internals/features/circulation/fines/model"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrFineNotFound   = fmt.Errorf("%w: multa no encontrada", helper.ErrNotFound)
	ErrFineNotPending = fmt.Errorf("%w: la multa no está pendiente", helper.ErrValidation)
	ErrFineNoAmount   = fmt.Errorf("%w: la multa no tiene importe a pagar", helper.ErrValidation)
	ErrBadSignature   = fmt.Errorf("%w: firma de notificación no válida", helper.ErrUnauthorized)

	// tanpa server key notifikasi tidak bisa diverifikasi → tolak semua
	ErrWebhookDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "Notificaciones de pago no configuradas")
)

type FineView struct {
	Fine     model.FineModel
	UserName string
}

type ListFilter struct {
	UserID *uuid.UUID
	Status string
	Offset int
	Limit  int
}

type PaymentStart struct {
	OrderID     string `json:"order_id"`
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
	Amount      int64  `json:"amount"`
}

type Service struct {
	DB        *gorm.DB
	Gateway   PaymentGateway // nil = pembayaran online nonaktif
	ServerKey string

	policy helperAuth.Policy
	now    func() time.Time
}

func NewService(db *gorm.DB, gw PaymentGateway, serverKey string) *Service {
	return &Service{
		DB:        db,
		Gateway:   gw,
		ServerKey: serverKey,
		policy:    helperAuth.DefaultPolicy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =====================================================
// Read
// =====================================================

func loadFine(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.FineModel, error) {
	var f model.FineModel
	err := db.WithContext(ctx).Where("fine_id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

type userNameRow struct {
	UserID   uuid.UUID
	UserName string
}

func (s *Service) withUserNames(ctx context.Context, fines []model.FineModel) ([]FineView, error) {
	out := make([]FineView, 0, len(fines))
	if len(fines) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(fines))
	for _, f := range fines {
		ids = append(ids, f.FineUserID)
	}
	var rows []userNameRow
	if err := s.DB.WithContext(ctx).Table("users").Select("user_id, user_name").Where("user_id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		names[r.UserID] = r.UserName
	}
	for _, f := range fines {
		out = append(out, FineView{Fine: f, UserName: names[f.FineUserID]})
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, actor helperAuth.Principal, f ListFilter) ([]FineView, int64, error) {
	if !s.policy.IsAdmin(actor) {
		uid := actor.UserID
		f.UserID = &uid
	}

	q := s.DB.WithContext(ctx).Model(&model.FineModel{})
	if f.UserID != nil {
		q = q.Where("fine_user_id = ?", *f.UserID)
	}
	if strings.TrimSpace(f.Status) != "" {
		st, ok := NormalizeFineStatus(f.Status)
		if !ok {
			return nil, 0, fmt.Errorf("%w: estado %q desconocido", helper.ErrValidation, f.Status)
		}
		q = q.Where("fine_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var fines []model.FineModel
	if err := q.Order("fine_generated_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&fines).Error; err != nil {
		return nil, 0, err
	}
	views, err := s.withUserNames(ctx, fines)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *Service) Get(ctx context.Context, actor helperAuth.Principal, id uuid.UUID) (*FineView, error) {
	f, err := loadFine(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if err := helperAuth.Authorize(s.policy, actor, f.FineUserID, "la multa"); err != nil {
		return nil, err
	}
	views, err := s.withUserNames(ctx, []model.FineModel{*f})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// =====================================================
// Write
// =====================================================

// saveFine: update optimistik berdasarkan fine_row_version.
func saveFine(ctx context.Context, tx *gorm.DB, f *model.FineModel, version int64) error {
	res := tx.WithContext(ctx).
		Model(&model.FineModel{}).
		Where("fine_id = ? AND fine_row_version = ?", f.FineID, version).
		Updates(map[string]any{
			"fine_status":           f.FineStatus,
			"fine_paid_at":          f.FinePaidAt,
			"fine_payment_order_id": f.FinePaymentOrderID,
			"fine_payment_token":    f.FinePaymentToken,
			"fine_row_version":      gorm.Expr("fine_row_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("multa %s: %w", f.FineID, helper.ErrConcurrencyConflict)
	}
	f.FineRowVersion = version + 1
	return nil
}

// UpdateStatus menjalankan mesin status. expectedVersion opsional dari client.
func (s *Service) UpdateStatus(ctx context.Context, actor helperAuth.Principal, id uuid.UUID, status string, expectedVersion *int64) (*FineView, error) {
	var fine *model.FineModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := loadFine(ctx, tx, id)
		if err != nil {
			return err
		}
		version := f.FineRowVersion
		if expectedVersion != nil && *expectedVersion != version {
			return fmt.Errorf("multa %s: %w", id, helper.ErrConcurrencyConflict)
		}

		prev := f.FineStatus
		changed, err := ApplyFineStatus(f, status, s.now())
		if err != nil {
			return err
		}
		fine = f
		if !changed {
			return nil
		}
		if f.FineStatus != constants.FineStatusPending {
			f.FinePaymentToken = nil
		}
		if err := saveFine(ctx, tx, f, version); err != nil {
			return err
		}
		return auditService.Record(ctx, tx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionFineStatusChanged,
			Entity:   auditService.EntityFine,
			EntityID: f.FineID,
			Payload:  map[string]any{"from": prev, "to": f.FineStatus},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FINES][STATUS] ✅ fine=%s status=%s", fine.FineID, fine.FineStatus)
	views, err := s.withUserNames(ctx, []model.FineModel{*fine})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) Delete(ctx context.Context, actor helperAuth.Principal, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := loadFine(ctx, tx, id)
		if err != nil {
			return err
		}
		res := tx.Where("fine_id = ?", id).Delete(&model.FineModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrFineNotFound
		}
		return auditService.Record(ctx, tx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionFineDeleted,
			Entity:   auditService.EntityFine,
			EntityID: id,
			Payload:  map[string]any{"user_id": f.FineUserID, "status": f.FineStatus, "amount": f.FineAmount},
		})
	})
}

// =====================================================
// Pembayaran (Midtrans)
// =====================================================

type payerRow struct {
	UserName     string
	UserFullName string
	UserEmail    string
}

// StartPayment membuat Snap token untuk denda Pendiente milik actor.
func (s *Service) StartPayment(ctx context.Context, actor helperAuth.Principal, id uuid.UUID) (*PaymentStart, error) {
	if s.Gateway == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Pago en línea no disponible")
	}

	f, err := loadFine(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if err := helperAuth.Authorize(s.policy, actor, f.FineUserID, "la multa"); err != nil {
		return nil, err
	}
	if f.FineStatus != constants.FineStatusPending {
		return nil, ErrFineNotPending
	}
	amount := f.FineAmount.Ceil().IntPart()
	if amount <= 0 {
		return nil, ErrFineNoAmount
	}

	var payer payerRow
	if err := s.DB.WithContext(ctx).Table("users").
		Select("user_name, user_full_name, user_email").
		Where("user_id = ?", f.FineUserID).
		Scan(&payer).Error; err != nil {
		return nil, err
	}
	name := payer.UserFullName
	if strings.TrimSpace(name) == "" {
		name = payer.UserName
	}

	orderID := BuildOrderID(f.FineID, s.now().Unix())
	token, redirectURL, err := s.Gateway.CreateTransaction(PaymentRequest{
		OrderID:       orderID,
		Amount:        amount,
		CustomerName:  name,
		CustomerEmail: payer.UserEmail,
		ItemName:      "Multa biblioteca",
	})
	if err != nil {
		log.Printf("[FINES][PAY] ❌ snap fine=%s: %v", f.FineID, err)
		return nil, fiber.NewError(fiber.StatusBadGateway, "No se pudo crear la transacción de pago")
	}

	f.FinePaymentOrderID = &orderID
	f.FinePaymentToken = &token
	if err := saveFine(ctx, s.DB, f, f.FineRowVersion); err != nil {
		return nil, err
	}

	log.Printf("[FINES][PAY] 💳 fine=%s order=%s amount=%d", f.FineID, orderID, amount)
	return &PaymentStart{OrderID: orderID, SnapToken: token, RedirectURL: redirectURL, Amount: amount}, nil
}

// HandleNotification memproses webhook Midtrans. Hasil: processed | ignored.
func (s *Service) HandleNotification(ctx context.Context, n Notification) (string, error) {
	if s.ServerKey == "" {
		return "", ErrWebhookDisabled
	}
	if !n.VerifySignature(s.ServerKey) {
		return "", ErrBadSignature
	}
	if _, ok := ParseOrderID(n.OrderID); !ok {
		log.Println("[FINES][WEBHOOK] order_id bukan milik denda:", n.OrderID)
		return "ignored", nil
	}

	outcome := "ignored"
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.FineModel
		err := tx.Where("fine_payment_order_id = ?", n.OrderID).First(&f).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("[FINES][WEBHOOK] denda tidak ditemukan untuk order", n.OrderID)
			return nil
		}
		if err != nil {
			return err
		}
		version := f.FineRowVersion

		switch n.TransactionStatus {
		case "capture", "settlement":
			if n.TransactionStatus == "capture" && n.FraudStatus != "" && n.FraudStatus != "accept" {
				return nil
			}
			changed, err := ApplyFineStatus(&f, constants.FineStatusPaid, s.now())
			if err != nil {
				// denda sudah dianulir; pembayaran dicatat di log saja
				log.Printf("[FINES][WEBHOOK] ⚠️ fine=%s: %v", f.FineID, err)
				return nil
			}
			if !changed {
				return nil
			}
			f.FinePaymentToken = nil
			if err := saveFine(ctx, tx, &f, version); err != nil {
				return err
			}
			outcome = "processed"
			return auditService.Record(ctx, tx, auditService.Entry{
				Action:   auditService.ActionFinePaid,
				Entity:   auditService.EntityFine,
				EntityID: f.FineID,
				Payload:  map[string]any{"order_id": n.OrderID, "transaction_id": n.TransactionID, "gross_amount": n.GrossAmount},
			})

		case "expire", "cancel", "deny", "failure":
			if f.FineStatus != constants.FineStatusPending {
				return nil
			}
			f.FinePaymentOrderID = nil
			f.FinePaymentToken = nil
			if err := saveFine(ctx, tx, &f, version); err != nil {
				return err
			}
			outcome = "processed"
			return nil

		default:
			log.Println("[FINES][WEBHOOK] status tidak diproses:", n.TransactionStatus)
			return nil
		}
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
