package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ItemKind distingue productos simples de complementos (bundles).
type ItemKind string

const (
	// KindProduct producto simple: su stock sale directo del reporte de almacén.
	KindProduct ItemKind = "product"
	// KindBundle complemento: su disponibilidad se deriva de sus componentes.
	KindBundle ItemKind = "bundle"
)

// CatalogItem representa un artículo del catálogo MoySklad tal como se usa
// en una pasada de sincronización: se carga fresco, nunca se muta y se
// descarta al terminar la pasada. ID es único dentro de una pasada.
type CatalogItem struct {
	ID         string
	Kind       ItemKind
	Name       string
	Code       string // SKU; si está vacío se publica el ID
	Brand      string // opcional
	Attributes []Attribute
	SalePrices []SalePrice
	Components []Component // solo para Kind == KindBundle
}

// SKU devuelve el código publicable del artículo.
func (i CatalogItem) SKU() string {
	if i.Code != "" {
		return i.Code
	}
	return i.ID
}

// Attribute atributo personalizado de un artículo. MetaHref conserva la
// referencia completa porque el marcador de exportación se puede identificar
// tanto por ID propio como por aparición del ID en el href.
type Attribute struct {
	ID       string
	MetaHref string
	Value    AttributeValue
}

// Matches indica si el atributo corresponde al identificador configurado.
func (a Attribute) Matches(attributeID string) bool {
	if attributeID == "" {
		return false
	}
	return a.ID == attributeID || strings.Contains(a.MetaHref, attributeID)
}

// AttributeValueKind etiqueta de la variante de valor de atributo.
type AttributeValueKind int

const (
	AttrEmpty AttributeValueKind = iota
	AttrBool
	AttrNumber
	AttrText
	AttrNested // objeto anidado {"value": ...}; se conserva el valor interno como texto
)

// AttributeValue variante etiquetada para los valores de atributo que la API
// entrega con formas distintas (booleano, número, cadena u objeto anidado).
// La normalización vive aquí y no en cada punto de uso.
type AttributeValue struct {
	Kind   AttributeValueKind
	Bool   bool
	Number decimal.Decimal
	Text   string
}

// BoolValue devuelve un valor booleano: Boolean(true/false)
// o Nested{"value": true}. Cualquier otra forma normaliza a false.
func (v AttributeValue) BoolValue() bool {
	switch v.Kind {
	case AttrBool:
		return v.Bool
	case AttrNested:
		return v.Text == "true"
	default:
		return false
	}
}

// NumberValue intenta normalizar el valor a número: numérico directo,
// cadena numérica o campo anidado numérico. ok=false si no es parseable.
func (v AttributeValue) NumberValue() (decimal.Decimal, bool) {
	switch v.Kind {
	case AttrNumber:
		return v.Number, true
	case AttrText, AttrNested:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Text))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// SalePrice registro de precio de venta; Value en unidades menores (kopeks/tiyn).
type SalePrice struct {
	PriceTypeID string
	Value       decimal.Decimal
}

// Component componente de un complemento: referencia a un producto simple y
// cantidad requerida por unidad del complemento.
type Component struct {
	ProductID string
	IsProduct bool  // false para referencias anidadas (bundle dentro de bundle, servicios)
	Quantity  int64 // cantidad requerida; <= 0 se trata como no limitante
}

// HasExportMarker evalúa el predicado local de exportación: algún atributo
// identificado por attributeID con valor booleano verdadero.
func (i CatalogItem) HasExportMarker(attributeID string) bool {
	for _, a := range i.Attributes {
		if a.Matches(attributeID) && a.Value.BoolValue() {
			return true
		}
	}
	return false
}
