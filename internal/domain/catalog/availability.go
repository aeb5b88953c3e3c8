// Aritmética de disponibilidad: productos simples desde el reporte de almacén,
// complementos derivados de las cantidades de sus componentes.

package catalog

import "github.com/jhoicas/kaspi-sync/internal/domain/entity"

// StockMap disponibilidad por ID de producto simple, reconstruida completa en
// cada pasada a partir del reporte de almacén. No se persiste entre pasadas.
type StockMap map[string]int64

// Available calcula la disponibilidad de un producto simple:
// existencia menos reserva, con piso en cero.
func Available(onHand, reserved int64) int64 {
	if avail := onHand - reserved; avail > 0 {
		return avail
	}
	return 0
}

// ItemAvailability disponibilidad de un artículo según su tipo.
// Producto simple: lectura directa del mapa. Complemento: derivada por componentes.
func ItemAvailability(item entity.CatalogItem, stock StockMap) int64 {
	switch item.Kind {
	case entity.KindProduct:
		return stock[item.ID]
	case entity.KindBundle:
		return BundleAvailability(item.Components, stock)
	default:
		return 0
	}
}

// BundleAvailability mínimo sobre los componentes producto de
// floor(disponible / cantidad requerida). Componentes con cantidad <= 0 no
// limitan; referencias que no son producto (bundle anidado, servicio) se
// ignoran: no hay resolución recursiva. Sin componentes calificados: cero.
func BundleAvailability(components []entity.Component, stock StockMap) int64 {
	var limit int64
	found := false
	for _, comp := range components {
		if !comp.IsProduct || comp.Quantity <= 0 {
			continue
		}
		buildable := stock[comp.ProductID] / comp.Quantity
		if !found || buildable < limit {
			limit = buildable
			found = true
		}
	}
	if !found {
		return 0
	}
	return limit
}
