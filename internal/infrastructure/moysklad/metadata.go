package moysklad

import "context"

// FetchAttributeMetadata lista los metadatos de atributos de producto.
// Lo usa cmd/attributes para descubrir el ID del marcador de exportación.
func (c *Client) FetchAttributeMetadata(ctx context.Context) ([]AttributeMeta, error) {
	if err := c.EnsureValid(ctx, false); err != nil {
		return nil, err
	}

	var env attributeMetaEnvelope
	if err := c.getJSON(ctx, "attribute-metadata", c.cfg.BaseURL+"/entity/product/metadata/attributes", &env); err != nil {
		return nil, err
	}

	metas := make([]AttributeMeta, 0, len(env.Rows))
	for _, row := range env.Rows {
		id := row.ID
		if id == "" {
			id = idFromHref(row.Meta.Href)
		}
		metas = append(metas, AttributeMeta{ID: id, Name: row.Name, Type: row.Type, Href: row.Meta.Href})
	}
	return metas, nil
}
