package sync_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/kaspi-sync/internal/application/sync"
	"github.com/jhoicas/kaspi-sync/internal/domain/catalog"
	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
	"github.com/jhoicas/kaspi-sync/pkg/config"
)

func newAssembler() *appsync.Assembler {
	return appsync.NewAssembler(
		config.FeedConfig{Company: "ИП ВОЗРОЖДЕНИЕ", MerchantID: "30286450", StoreID: "PP1"},
		catalog.PriceConfig{PriceAttributeID: "pa", KaspiPriceTypeID: "pt-kaspi"},
		zerolog.Nop(),
	)
}

func productoConPrecio(id, name string, precio string) entity.CatalogItem {
	return entity.CatalogItem{
		ID: id, Kind: entity.KindProduct, Name: name,
		Attributes: []entity.Attribute{
			{ID: "pa", Value: entity.AttributeValue{Kind: entity.AttrText, Text: precio}},
		},
	}
}

func TestAssemble_ExcluyeDisponibilidadCeroYPreservaOrden(t *testing.T) {
	a := newAssembler()
	items := []entity.CatalogItem{
		productoConPrecio("p1", "Uno", "1500"),
		productoConPrecio("p2", "Dos", "2000"), // sin stock: excluido
		productoConPrecio("p3", "Tres", "900"),
	}
	stock := catalog.StockMap{"p1": 5, "p3": 2}

	res, ok := a.Assemble(items, stock, time.Now())
	require.True(t, ok)
	require.Len(t, res.Doc.Offers, 2)
	assert.Equal(t, "p1", res.Doc.Offers[0].SKU)
	assert.Equal(t, "p3", res.Doc.Offers[1].SKU, "el orden de entrada se preserva")
	assert.Equal(t, 1, res.SkippedZero)
	assert.True(t, res.TotalValue.Equal(decimal.NewFromInt(5*1500+2*900)),
		"TotalValue = suma de precio * disponibilidad, fue %s", res.TotalValue)
}

func TestAssemble_ComplementoDerivaDeComponentes(t *testing.T) {
	a := newAssembler()
	bundle := entity.CatalogItem{
		ID: "b1", Kind: entity.KindBundle, Name: "Combo",
		Attributes: []entity.Attribute{
			{ID: "pa", Value: entity.AttributeValue{Kind: entity.AttrText, Text: "2500"}},
		},
		Components: []entity.Component{
			{ProductID: "p1", IsProduct: true, Quantity: 2}, // floor(7/2) = 3
		},
	}
	stock := catalog.StockMap{"p1": 7}

	res, ok := a.Assemble([]entity.CatalogItem{bundle}, stock, time.Now())
	require.True(t, ok)
	require.Len(t, res.Doc.Offers, 1)
	assert.EqualValues(t, 3, res.Doc.Offers[0].Available)
}

func TestAssemble_SinOfertasDevuelveNoOK(t *testing.T) {
	a := newAssembler()
	items := []entity.CatalogItem{productoConPrecio("p1", "Uno", "1500")}

	res, ok := a.Assemble(items, catalog.StockMap{}, time.Now())
	assert.False(t, ok, "todo en cero no produce feed publicable")
	assert.Equal(t, 1, res.SkippedZero)
	assert.Empty(t, res.Doc.Offers)
}

func TestAssemble_PrecioDesconocidoPublicaCero(t *testing.T) {
	a := newAssembler()
	item := entity.CatalogItem{ID: "p1", Kind: entity.KindProduct, Name: "Sin precio"}

	res, ok := a.Assemble([]entity.CatalogItem{item}, catalog.StockMap{"p1": 1}, time.Now())
	require.True(t, ok)
	assert.EqualValues(t, 0, res.Doc.Offers[0].Price, "precio no resuelto se publica como 0, no se excluye")
}

func TestAssemble_MarcaVaciaUsaLaGenerica(t *testing.T) {
	a := newAssembler()
	item := productoConPrecio("p1", "Uno", "1500")

	res, ok := a.Assemble([]entity.CatalogItem{item}, catalog.StockMap{"p1": 1}, time.Now())
	require.True(t, ok)
	assert.Equal(t, entity.DefaultBrand, res.Doc.Offers[0].Brand)
}

func TestAssemble_CabeceraDelDocumento(t *testing.T) {
	a := newAssembler()
	now := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	res, ok := a.Assemble([]entity.CatalogItem{productoConPrecio("p1", "Uno", "10")},
		catalog.StockMap{"p1": 1}, now)
	require.True(t, ok)
	assert.Equal(t, "ИП ВОЗРОЖДЕНИЕ", res.Doc.Company)
	assert.Equal(t, "30286450", res.Doc.MerchantID)
	assert.Equal(t, "PP1", res.Doc.StoreID)
	assert.Equal(t, now, res.Doc.Date)
}
