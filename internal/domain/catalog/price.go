package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

// PriceConfig identificadores configurados para la resolución de precio.
type PriceConfig struct {
	PriceAttributeID string // atributo con precio Kaspi directo (unidades mayores)
	KaspiPriceTypeID string // tipo de precio Kaspi en salePrices (unidades menores)
}

// minorUnitsPerMajor conversión de kopeks/tiyn a unidades mayores.
var minorUnitsPerMajor = decimal.NewFromInt(100)

// ResolvePrice resuelve el precio de venta de un artículo. Función pura, sin
// I/O, que siempre termina en uno de cuatro niveles:
//
//  1. atributo de precio configurado (numérico, cadena numérica u objeto
//     anidado); valores no parseables caen al siguiente nivel
//  2. salePrice cuyo tipo coincide con el tipo de precio Kaspi, /100
//  3. primer salePrice con monto positivo, /100
//  4. cero
//
// Cero es un resultado válido y observable, no un error: el ensamblador
// publica igualmente la oferta si hay disponibilidad.
func ResolvePrice(item entity.CatalogItem, cfg PriceConfig) int64 {
	// Nivel 1: atributo de precio directo, ya en unidades mayores.
	if cfg.PriceAttributeID != "" {
		for _, a := range item.Attributes {
			if !a.Matches(cfg.PriceAttributeID) {
				continue
			}
			if d, ok := a.Value.NumberValue(); ok && d.IsPositive() {
				return d.IntPart()
			}
		}
	}

	// Nivel 2: tipo de precio Kaspi en los registros de venta.
	if cfg.KaspiPriceTypeID != "" {
		for _, sp := range item.SalePrices {
			if sp.PriceTypeID != cfg.KaspiPriceTypeID {
				continue
			}
			if p := toMajor(sp.Value); p > 0 {
				return p
			}
		}
	}

	// Nivel 3: primer precio de venta positivo.
	for _, sp := range item.SalePrices {
		if sp.Value.IsPositive() {
			if p := toMajor(sp.Value); p > 0 {
				return p
			}
		}
	}

	// Nivel 4: sin precio conocido.
	return 0
}

func toMajor(minor decimal.Decimal) int64 {
	return minor.Div(minorUnitsPerMajor).IntPart()
}
