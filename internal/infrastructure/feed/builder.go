// Construcción del catálogo XML de Kaspi a partir de un FeedDocument.

package feed

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

// Esquema del catálogo Kaspi.
const (
	NsKaspi           = "kaspiShopping"
	nsXsi             = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocationURL = "http://kaspi.kz/kaspishopping.xsd"
)

// Builder serializa un FeedDocument al XML que consume el marketplace.
type Builder struct{}

// NewBuilder crea el servicio.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build genera el []byte del catálogo. El orden de las ofertas se preserva
// tal cual llega: con upstream idéntico el conjunto de ofertas es idéntico
// byte a byte (solo varía el atributo date de la cabecera).
func (b *Builder) Build(doc entity.FeedDocument) ([]byte, error) {
	if len(doc.Offers) == 0 {
		return nil, fmt.Errorf("feed: documento sin ofertas")
	}

	d := etree.NewDocument()
	d.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := d.CreateElement("kaspi_catalog")
	root.CreateAttr("xmlns", NsKaspi)
	root.CreateAttr("xmlns:xsi", nsXsi)
	root.CreateAttr("xsi:schemaLocation", schemaLocationURL)
	root.CreateAttr("date", doc.Date.Format("2006-01-02"))

	root.CreateElement("company").SetText(cleanText(doc.Company))
	root.CreateElement("merchantid").SetText(doc.MerchantID)

	offers := root.CreateElement("offers")
	for _, o := range doc.Offers {
		offer := offers.CreateElement("offer")
		offer.CreateAttr("sku", cleanText(o.SKU))

		offer.CreateElement("model").SetText(cleanText(o.Model))

		brand := o.Brand
		if brand == "" {
			brand = entity.DefaultBrand
		}
		offer.CreateElement("brand").SetText(cleanText(brand))

		avails := offer.CreateElement("availabilities")
		avail := avails.CreateElement("availability")
		avail.CreateAttr("available", "yes")
		avail.CreateAttr("storeId", doc.StoreID)
		avail.CreateAttr("stockCount", strconv.FormatInt(o.Available, 10))

		offer.CreateElement("price").SetText(strconv.FormatInt(o.Price, 10))
	}

	return d.WriteToBytes()
}

// Digest calcula el SHA-256 del documento canonicalizado (C14N), estable
// frente a diferencias de serialización. Sirve para detectar si el contenido
// cambió entre pasadas.
func (b *Builder) Digest(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("feed: canonicalizar documento: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// cleanText normaliza a NFC y elimina caracteres de control que el esquema
// del marketplace rechaza.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
