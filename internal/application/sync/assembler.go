package sync

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kaspi-sync/internal/domain/catalog"
	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
	"github.com/jhoicas/kaspi-sync/pkg/config"
)

// AssembleResult documento ensamblado más métricas de la pasada.
type AssembleResult struct {
	Doc         entity.FeedDocument
	SkippedZero int             // artículos excluidos por disponibilidad cero
	TotalValue  decimal.Decimal // suma de precio * disponibilidad publicada
}

// Assembler une artículos con stock calculado y precio resuelto y produce el
// FeedDocument. Artículos con disponibilidad cero no se publican jamás.
type Assembler struct {
	feedCfg config.FeedConfig
	prices  catalog.PriceConfig
	log     zerolog.Logger
}

// NewAssembler crea el ensamblador.
func NewAssembler(feedCfg config.FeedConfig, prices catalog.PriceConfig, log zerolog.Logger) *Assembler {
	return &Assembler{feedCfg: feedCfg, prices: prices, log: log}
}

// Assemble recorre los artículos en orden de entrada. Devuelve ok=false
// cuando no se produjo ninguna oferta: el orquestador decide entonces
// conservar el feed anterior en lugar de publicar uno vacío.
func (a *Assembler) Assemble(items []entity.CatalogItem, stock catalog.StockMap, now time.Time) (AssembleResult, bool) {
	res := AssembleResult{
		Doc: entity.FeedDocument{
			Company:    a.feedCfg.Company,
			MerchantID: a.feedCfg.MerchantID,
			StoreID:    a.feedCfg.StoreID,
			Date:       now,
		},
		TotalValue: decimal.Zero,
	}

	for _, item := range items {
		available := catalog.ItemAvailability(item, stock)
		if available <= 0 {
			res.SkippedZero++
			a.log.Debug().Str("id", item.ID).Str("name", item.Name).
				Msg("artículo con disponibilidad cero, excluido del feed")
			continue
		}

		price := catalog.ResolvePrice(item, a.prices)
		if price == 0 {
			// Precio cero es observable, no un error: la oferta se publica igual.
			a.log.Warn().Str("id", item.ID).Str("sku", item.SKU()).Str("name", item.Name).
				Msg("artículo sin precio conocido, se publica con precio 0")
		}

		brand := item.Brand
		if brand == "" {
			brand = entity.DefaultBrand
		}
		res.Doc.Offers = append(res.Doc.Offers, entity.ResolvedOffer{
			SKU:       item.SKU(),
			Model:     item.Name,
			Brand:     brand,
			Available: available,
			Price:     price,
		})
		res.TotalValue = res.TotalValue.Add(
			decimal.NewFromInt(price).Mul(decimal.NewFromInt(available)))
	}

	if len(res.Doc.Offers) == 0 {
		a.log.Warn().Int("items", len(items)).Int("skipped_zero", res.SkippedZero).
			Msg("ningún artículo con disponibilidad para publicar")
		return res, false
	}

	a.log.Info().Int("offers", len(res.Doc.Offers)).Int("skipped_zero", res.SkippedZero).
		Msg("feed ensamblado")
	return res, true
}
