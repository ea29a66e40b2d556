package constants

// Status denda
const (
	FineStatusPending = "Pendiente"
	FineStatusPaid    = "Pagada"
	FineStatusVoided  = "Anulada"
)

// Status reservasi
const (
	ReservationStatusPending   = "Pendiente"
	ReservationStatusCompleted = "Completada"
	ReservationStatusCancelled = "Cancelada"
	ReservationStatusExpired   = "Expirada"
)

const (
	ReservationHoldDays = 3
	MaxLoanLineQuantity = 5
)
