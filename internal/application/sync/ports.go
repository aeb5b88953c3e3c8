package sync

import (
	"context"
	"time"

	"github.com/jhoicas/kaspi-sync/internal/domain/catalog"
	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

// Puertos de salida del orquestador. La implementación concreta vive en
// internal/infrastructure; para tests se inyectan dobles.

// TokenSource gestiona la credencial de acceso al back-office.
type TokenSource interface {
	// EnsureValid garantiza un token vigente; con forceRefresh descarta el actual.
	EnsureValid(ctx context.Context, forceRefresh bool) error
}

// CatalogSource trae artículos de un tipo, paginando hasta agotar el cursor.
type CatalogSource interface {
	FetchEntities(ctx context.Context, kind entity.ItemKind, useAttributeFilter bool) ([]entity.CatalogItem, error)
}

// StockSource reconstruye el mapa de disponibilidad por producto simple.
type StockSource interface {
	FetchStock(ctx context.Context) (catalog.StockMap, error)
}

// FeedBuilder serializa el documento y calcula su huella de contenido.
type FeedBuilder interface {
	Build(doc entity.FeedDocument) ([]byte, error)
	Digest(xmlBytes []byte) (string, error)
}

// FeedWriter persiste el feed en destino primario y respaldo.
type FeedWriter interface {
	Write(xmlBytes []byte, now time.Time) (string, error)
}

// RunJournal diario opcional de desenlaces de pasada (puede ser nil).
type RunJournal interface {
	Record(ctx context.Context, run entity.SyncRun) error
}
