package moysklad

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

func TestIDFromHref(t *testing.T) {
	assert.Equal(t, "abc-123", idFromHref("https://api.example/entity/product/abc-123"))
	assert.Equal(t, "abc-123", idFromHref("https://api.example/entity/product/abc-123?expand=x"))
	assert.Equal(t, "", idFromHref(""))
	assert.Equal(t, "solo", idFromHref("solo"))
}

func TestToCatalogItem_MapeoCompleto(t *testing.T) {
	raw := `{
		"id": "p1",
		"name": "Teléfono",
		"code": "SKU-1",
		"brand": {"name": "Acme"},
		"attributes": [
			{"id": "a1", "meta": {"href": "https://api.example/metadata/attributes/a1"}, "value": true},
			{"id": "a2", "value": "1500.0"},
			{"id": "a3", "value": {"value": 42}}
		],
		"salePrices": [
			{"value": 250000, "priceType": {"id": "pt-kaspi"}}
		]
	}`
	var row entityRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	item := row.toCatalogItem(entity.KindProduct)
	assert.Equal(t, "p1", item.ID)
	assert.Equal(t, "SKU-1", item.SKU())
	assert.Equal(t, "Acme", item.Brand)
	require.Len(t, item.Attributes, 3)
	assert.True(t, item.Attributes[0].Value.BoolValue())

	n, ok := item.Attributes[1].Value.NumberValue()
	require.True(t, ok, "una cadena numérica debe normalizar a número")
	assert.Equal(t, "1500", n.String())

	n, ok = item.Attributes[2].Value.NumberValue()
	require.True(t, ok, "el valor anidado numérico debe normalizar a número")
	assert.Equal(t, "42", n.String())

	require.Len(t, item.SalePrices, 1)
	assert.Equal(t, "pt-kaspi", item.SalePrices[0].PriceTypeID)
}

func TestToCatalogItem_IDDesdeHrefCuandoFalta(t *testing.T) {
	raw := `{"meta": {"href": "https://api.example/entity/product/via-href"}, "name": "X"}`
	var row entityRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	item := row.toCatalogItem(entity.KindProduct)
	assert.Equal(t, "via-href", item.ID)
	assert.Equal(t, "via-href", item.SKU(), "sin code el SKU publicable es el ID")
}

func TestParseComponents_SobreYListaDirecta(t *testing.T) {
	envelope := `{"rows": [
		{"quantity": 2, "assortment": {"meta": {"href": "https://api.example/entity/product/a", "type": "product"}}},
		{"quantity": 1, "assortment": {"meta": {"href": "https://api.example/entity/service/s", "type": "service"}}}
	]}`
	direct := `[
		{"quantity": 3, "assortment": {"meta": {"href": "https://api.example/entity/product/b", "type": "product"}}}
	]`

	comps := parseComponents(json.RawMessage(envelope))
	require.Len(t, comps, 2)
	assert.Equal(t, entity.Component{ProductID: "a", IsProduct: true, Quantity: 2}, comps[0])
	assert.False(t, comps[1].IsProduct, "una referencia a servicio no participa en la disponibilidad")

	comps = parseComponents(json.RawMessage(direct))
	require.Len(t, comps, 1)
	assert.Equal(t, "b", comps[0].ProductID)
}

func TestParseComponents_AssortmentComoHrefTexto(t *testing.T) {
	// Forma degradada observada: assortment como cadena href en vez de objeto.
	raw := `[{"quantity": 1, "assortment": "https://api.example/entity/product/x"}]`
	comps := parseComponents(json.RawMessage(raw))
	require.Len(t, comps, 1)
	assert.False(t, comps[0].IsProduct, "sin meta de producto la referencia queda inerte")
}

func TestParseAttributeValue_FormasDesconocidas(t *testing.T) {
	assert.Equal(t, entity.AttrEmpty, parseAttributeValue(nil).Kind)
	assert.Equal(t, entity.AttrEmpty, parseAttributeValue(json.RawMessage(`null`)).Kind)
	assert.Equal(t, entity.AttrEmpty, parseAttributeValue(json.RawMessage(`{"otra": 1}`)).Kind)
	assert.Equal(t, entity.AttrEmpty, parseAttributeValue(json.RawMessage(`[1,2]`)).Kind)

	v := parseAttributeValue(json.RawMessage(`{"value": true}`))
	assert.Equal(t, entity.AttrNested, v.Kind)
	assert.True(t, v.BoolValue())
}