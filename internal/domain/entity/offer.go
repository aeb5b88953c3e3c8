package entity

import "time"

// ResolvedOffer unidad de salida del ensamblador: solo se crea con
// disponibilidad > 0. Price en unidades mayores (tenge).
type ResolvedOffer struct {
	SKU       string
	Model     string
	Brand     string
	Available int64
	Price     int64
}

// DefaultBrand etiqueta publicada cuando el artículo no tiene marca.
const DefaultBrand = "Без бренда"

// FeedDocument documento de feed: metadatos de cabecera más ofertas en orden
// de entrada. Se escribe con contenido idéntico al destino primario y al
// respaldo con marca de tiempo.
type FeedDocument struct {
	Company    string
	MerchantID string
	StoreID    string
	Date       time.Time
	Offers     []ResolvedOffer
}
