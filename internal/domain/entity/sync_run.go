package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados finales de una pasada de sincronización.
const (
	RunStatusOK           = "ok"
	RunStatusAuthFailed   = "auth-failed"
	RunStatusEmptyCatalog = "empty-catalog"
	RunStatusNoStock      = "no-stock"
	RunStatusEmptyFeed    = "empty-feed"
	RunStatusWriteFailed  = "write-failed"
)

// SyncRun resultado de una pasada completa, para el diario opcional.
// No persiste stock histórico: solo el desenlace de la corrida.
type SyncRun struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Offers      int
	SkippedZero int
	TotalValue  decimal.Decimal // suma de precio * disponibilidad de las ofertas publicadas
	Digest      string          // SHA-256 del feed canonicalizado (vacío en corridas fallidas)
	Message     string
}
