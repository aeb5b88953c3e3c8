package moysklad

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jhoicas/kaspi-sync/internal/domain/catalog"
	"github.com/jhoicas/kaspi-sync/pkg/config"
)

const stockPageLimit = 1000

// FetchStock reconstruye el mapa de disponibilidad por producto simple desde
// el reporte del almacén configurado. Solo filas de tipo product entran al
// mapa; la disponibilidad de complementos se deriva después, fuera de aquí.
//
// Fallo en cualquier punto (almacén inexistente, página no exitosa,
// transporte) devuelve error y el llamador lo trata como "stock desconocido":
// ningún artículo se publica antes que publicar disponibilidad equivocada.
func (c *Client) FetchStock(ctx context.Context) (catalog.StockMap, error) {
	if err := c.EnsureValid(ctx, false); err != nil {
		return nil, err
	}

	storeID, err := c.lookupStoreID(ctx)
	if err != nil {
		return nil, err
	}

	stock := make(catalog.StockMap)
	offset := 0
	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("store.id", storeID)
		q.Set("stockMode", "all")
		q.Set("limit", strconv.Itoa(stockPageLimit))
		q.Set("offset", strconv.Itoa(offset))

		var env stockListEnvelope
		if err := c.getJSON(ctx, "stock-report", c.cfg.BaseURL+"/report/stock/all?"+q.Encode(), &env); err != nil {
			return nil, err
		}

		for _, row := range env.Rows {
			if row.Meta.Type != "product" {
				continue
			}
			id := idFromHref(row.Meta.Href)
			if id == "" {
				continue
			}
			if c.cfg.StockReportMode == config.StockReportModeQty {
				// Variante de reporte: un único campo quantity, sin reserva.
				stock[id] = catalog.Available(int64(row.Quantity), 0)
			} else {
				stock[id] = catalog.Available(int64(row.Stock), int64(row.Reserve))
			}
		}

		if len(env.Rows) < stockPageLimit {
			break
		}
		offset += stockPageLimit
	}

	c.log.Info().Int("products", len(stock)).Str("store_id", storeID).
		Msg("reporte de stock procesado")
	return stock, nil
}

// lookupStoreID resuelve el ID del almacén a partir de su externalCode.
func (c *Client) lookupStoreID(ctx context.Context) (string, error) {
	if c.cfg.StockExternal == "" {
		return "", fmt.Errorf("%w: STOCK_EXTERNAL_CODE no configurado", ErrStoreNotFound)
	}

	q := url.Values{}
	q.Set("filter", "externalCode="+c.cfg.StockExternal)

	var env storeListEnvelope
	if err := c.getJSON(ctx, "store-lookup", c.cfg.BaseURL+"/entity/store?"+q.Encode(), &env); err != nil {
		return "", err
	}
	if len(env.Rows) == 0 {
		return "", fmt.Errorf("%w: externalCode=%s", ErrStoreNotFound, c.cfg.StockExternal)
	}

	id := idFromHref(env.Rows[0].Meta.Href)
	c.log.Debug().Str("store_id", id).Str("external_code", c.cfg.StockExternal).
		Msg("almacén resuelto")
	return id, nil
}
