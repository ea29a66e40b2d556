package service

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

/* =========================================================
   Payment gateway (Midtrans Snap)
========================================================= */

type PaymentRequest struct {
	OrderID       string
	Amount        int64
	CustomerName  string
	CustomerEmail string
	ItemName      string
}

// PaymentGateway: dipisah supaya service bisa dites tanpa Midtrans.
type PaymentGateway interface {
	CreateTransaction(req PaymentRequest) (token string, redirectURL string, err error)
}

type SnapGateway struct {
	client snap.Client
}

// NewSnapGateway: useProduction=false → Sandbox.
func NewSnapGateway(serverKey string, useProduction bool) *SnapGateway {
	g := &SnapGateway{}
	if useProduction {
		g.client.New(serverKey, midtrans.Production)
	} else {
		g.client.New(serverKey, midtrans.Sandbox)
	}
	return g
}

func (g *SnapGateway) CreateTransaction(req PaymentRequest) (string, string, error) {
	if req.Amount <= 0 {
		return "", "", fmt.Errorf("invalid amount %d", req.Amount)
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: truncate(req.CustomerName, 50),
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       truncate(req.OrderID, 50),
				Price:    req.Amount,
				Qty:      1,
				Name:     truncate(req.ItemName, 50),
				Category: "MULTA",
			},
		},
	}

	resp, mErr := g.client.CreateTransaction(snapReq)
	if mErr != nil {
		return "", "", mErr
	}
	return resp.Token, resp.RedirectURL, nil
}

/* =========================================================
   Order id & signature
========================================================= */

// BuildOrderID: FINE-<fine_id>-<unix>
func BuildOrderID(fineID uuid.UUID, unix int64) string {
	return fmt.Sprintf("FINE-%s-%d", fineID, unix)
}

// ParseOrderID mengambil fine_id dari order id Midtrans.
func ParseOrderID(orderID string) (uuid.UUID, bool) {
	if !strings.HasPrefix(orderID, "FINE-") {
		return uuid.Nil, false
	}
	rest := strings.TrimPrefix(orderID, "FINE-")
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest[:i])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Notification: payload webhook Midtrans (field lain diabaikan).
type Notification struct {
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// VerifySignature: SHA512(order_id + status_code + gross_amount + ServerKey)
func (n Notification) VerifySignature(serverKey string) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" {
		return false
	}
	return sha512sum(n.OrderID+n.StatusCode+n.GrossAmount+serverKey) == want
}

func sha512sum(s string) string {
	h := sha512.Sum512([]byte(s))
	return hex.EncodeToString(h[:])
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
