package moysklad

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

const (
	entityPageLimit = 100
	expandFields    = "attributes,salePrices,components,components.assortment"

	// maxPages guardia dura: un cursor malformado jamás produce un bucle infinito.
	maxPages = 1000
)

// FetchEntities trae todos los artículos de un tipo (product o bundle)
// siguiendo el cursor nextHref hasta agotarlo.
//
// Filtrado: con useAttributeFilter el filtro de atributo se aplica en el
// servidor y es autoritativo (sin re-chequeo local); en caso contrario cada
// fila se evalúa contra el predicado local del marcador de exportación.
//
// Cualquier página fallida aborta el fetch completo: no hay resultado
// parcial, un feed a medias es peor que conservar el anterior.
func (c *Client) FetchEntities(ctx context.Context, kind entity.ItemKind, useAttributeFilter bool) ([]entity.CatalogItem, error) {
	if err := c.EnsureValid(ctx, false); err != nil {
		return nil, err
	}

	baseURL := c.cfg.BaseURL + "/entity/" + string(kind)
	params := url.Values{}
	params.Set("limit", strconv.Itoa(entityPageLimit))
	params.Set("expand", expandFields)

	filterActive := useAttributeFilter && c.cfg.AttributeID != ""
	if filterActive {
		params.Set("filter", baseURL+"/metadata/attributes/"+c.cfg.AttributeID+"=true")
		c.log.Info().Str("kind", string(kind)).Str("attribute_id", c.cfg.AttributeID).
			Msg("filtro de atributo aplicado en el servidor")
	}

	op := "fetch-" + string(kind)
	items := make([]entity.CatalogItem, 0, entityPageLimit)
	currentURL := baseURL + "?" + params.Encode()
	seen := make(map[string]struct{}, 8)

	for page := 0; currentURL != ""; page++ {
		if page >= maxPages {
			c.log.Warn().Str("kind", string(kind)).Msg("límite de páginas alcanzado, cortando paginación")
			break
		}
		if _, dup := seen[currentURL]; dup {
			c.log.Warn().Str("kind", string(kind)).Str("href", currentURL).
				Msg("cursor nextHref repetido, cortando paginación")
			break
		}
		seen[currentURL] = struct{}{}

		var env entityListEnvelope
		if err := c.getJSON(ctx, op, currentURL, &env); err != nil {
			return nil, err
		}

		kept := 0
		for _, row := range env.Rows {
			item := row.toCatalogItem(kind)
			if filterActive || item.HasExportMarker(c.cfg.AttributeID) {
				items = append(items, item)
				kept++
			}
		}
		c.log.Debug().Str("kind", string(kind)).Int("rows", len(env.Rows)).Int("kept", kept).
			Msg("página de entidades procesada")

		currentURL = env.Meta.NextHref
	}

	c.log.Info().Str("kind", string(kind)).Int("total", len(items)).
		Msg("entidades obtenidas tras filtrado")
	return items, nil
}
