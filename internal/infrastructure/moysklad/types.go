// Estructuras de la API remap 1.2 de MoySklad y su mapeo al dominio.

package moysklad

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type metaJSON struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

type listMeta struct {
	NextHref string `json:"nextHref"`
	Size     int    `json:"size"`
}

type entityListEnvelope struct {
	Meta listMeta    `json:"meta"`
	Rows []entityRow `json:"rows"`
}

type entityRow struct {
	ID         string          `json:"id"`
	Meta       metaJSON        `json:"meta"`
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	Brand      *brandRef       `json:"brand"`
	Attributes []attributeRow  `json:"attributes"`
	SalePrices []salePriceRow  `json:"salePrices"`
	Components json.RawMessage `json:"components"` // lista o sobre {"rows": [...]}
}

type brandRef struct {
	Name string `json:"name"`
}

type attributeRow struct {
	ID    string          `json:"id"`
	Meta  metaJSON        `json:"meta"`
	Value json.RawMessage `json:"value"`
}

type salePriceRow struct {
	Value     float64 `json:"value"` // unidades menores
	PriceType struct {
		ID string `json:"id"`
	} `json:"priceType"`
}

type componentListEnvelope struct {
	Rows []componentRow `json:"rows"`
}

type componentRow struct {
	Quantity   float64         `json:"quantity"`
	Assortment json.RawMessage `json:"assortment"` // objeto con meta, o href directo
}

type assortmentRef struct {
	Meta metaJSON `json:"meta"`
}

type storeListEnvelope struct {
	Rows []storeRow `json:"rows"`
}

type storeRow struct {
	Meta metaJSON `json:"meta"`
}

type stockListEnvelope struct {
	Rows []stockRow `json:"rows"`
}

// stockRow fila del reporte de stock. El contrato canónico trae el par
// stock/reserve; la variante de reporte trae solo quantity.
type stockRow struct {
	Meta     metaJSON `json:"meta"`
	Stock    float64  `json:"stock"`
	Reserve  float64  `json:"reserve"`
	Quantity float64  `json:"quantity"`
}

type attributeMetaEnvelope struct {
	Rows []attributeMetaRow `json:"rows"`
}

type attributeMetaRow struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type string   `json:"type"`
	Meta metaJSON `json:"meta"`
}

// AttributeMeta metadato de atributo de producto, para descubrir el ID del
// marcador de exportación desde cmd/attributes.
type AttributeMeta struct {
	ID   string
	Name string
	Type string
	Href string
}

// ── mapeo a dominio ───────────────────────────────────────────────────────────

// idFromHref extrae el ID de entidad del último segmento de un href,
// descartando la query string.
func idFromHref(href string) string {
	if href == "" {
		return ""
	}
	last := href[strings.LastIndex(href, "/")+1:]
	if q := strings.IndexByte(last, '?'); q >= 0 {
		last = last[:q]
	}
	return last
}

func (r entityRow) toCatalogItem(kind entity.ItemKind) entity.CatalogItem {
	item := entity.CatalogItem{
		ID:   r.ID,
		Kind: kind,
		Name: r.Name,
		Code: r.Code,
	}
	if r.ID == "" {
		item.ID = idFromHref(r.Meta.Href)
	}
	if r.Brand != nil {
		item.Brand = r.Brand.Name
	}
	for _, a := range r.Attributes {
		item.Attributes = append(item.Attributes, entity.Attribute{
			ID:       a.ID,
			MetaHref: a.Meta.Href,
			Value:    parseAttributeValue(a.Value),
		})
	}
	for _, sp := range r.SalePrices {
		item.SalePrices = append(item.SalePrices, entity.SalePrice{
			PriceTypeID: sp.PriceType.ID,
			Value:       decimal.NewFromFloat(sp.Value),
		})
	}
	if kind == entity.KindBundle {
		item.Components = parseComponents(r.Components)
	}
	return item
}

// parseAttributeValue normaliza las formas de valor que entrega la API
// (booleano, número, cadena u objeto anidado {"value": ...}) a la variante
// etiquetada del dominio.
func parseAttributeValue(raw json.RawMessage) entity.AttributeValue {
	if len(raw) == 0 {
		return entity.AttributeValue{Kind: entity.AttrEmpty}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return entity.AttributeValue{Kind: entity.AttrEmpty}
	}
	switch tv := v.(type) {
	case bool:
		return entity.AttributeValue{Kind: entity.AttrBool, Bool: tv}
	case float64:
		return entity.AttributeValue{Kind: entity.AttrNumber, Number: decimal.NewFromFloat(tv)}
	case string:
		return entity.AttributeValue{Kind: entity.AttrText, Text: tv}
	case map[string]any:
		inner, ok := tv["value"]
		if !ok {
			return entity.AttributeValue{Kind: entity.AttrEmpty}
		}
		switch iv := inner.(type) {
		case bool:
			return entity.AttributeValue{Kind: entity.AttrNested, Text: strconv.FormatBool(iv)}
		case float64:
			return entity.AttributeValue{Kind: entity.AttrNested, Text: strconv.FormatFloat(iv, 'f', -1, 64)}
		case string:
			return entity.AttributeValue{Kind: entity.AttrNested, Text: iv}
		default:
			return entity.AttributeValue{Kind: entity.AttrEmpty}
		}
	default:
		return entity.AttributeValue{Kind: entity.AttrEmpty}
	}
}

// parseComponents acepta las dos formas del bloque components (lista directa
// o sobre con rows). Una referencia de assortment sin meta de producto queda
// marcada IsProduct=false y no participa en la disponibilidad.
func parseComponents(raw json.RawMessage) []entity.Component {
	if len(raw) == 0 {
		return nil
	}

	var rows []componentRow
	var env componentListEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Rows != nil {
		rows = env.Rows
	} else if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}

	comps := make([]entity.Component, 0, len(rows))
	for _, row := range rows {
		comp := entity.Component{Quantity: int64(row.Quantity)}
		var ref assortmentRef
		if err := json.Unmarshal(row.Assortment, &ref); err == nil && ref.Meta.Href != "" {
			comp.ProductID = idFromHref(ref.Meta.Href)
			comp.IsProduct = ref.Meta.Type == "product"
		}
		comps = append(comps, comp)
	}
	return comps
}
