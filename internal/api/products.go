package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Product is the admin-panel product record. The backend owns the schema;
// unknown fields round-trip through Extra untouched.
type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"categoria"`
	Gender       string          `json:"genero"`
	ClothingType string          `json:"clothing_type"`
	Price        float64         `json:"price"`
	Extra        json.RawMessage `json:"-"`
}

// ProductQuery mirrors the search form.
type ProductQuery struct {
	Name         string `json:"nameProducto"`
	Category     string `json:"categoria"`
	Gender       string `json:"genero"`
	ClothingType string `json:"clothing_type"`
	PriceMin     string `json:"price_min"`
	PriceMax     string `json:"price_max"`
	Sort         string `json:"sort"`
}

// ProductCount returns the number of published products.
func (c *Client) ProductCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"numeroProductos"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/numero-productos", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// SearchProducts runs a product search with the given filters.
func (c *Client) SearchProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	var out struct {
		Found []Product `json:"productosEncontrados"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/buscar-productos", q, &out); err != nil {
		return nil, err
	}
	return out.Found, nil
}

// EditProduct updates one product; a duplicate name surfaces as a
// *FieldError with the conflict status.
func (c *Client) EditProduct(ctx context.Context, id int, p Product) (string, error) {
	payload := map[string]any{"id": id, "data": p}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/editar-producto", payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteProduct removes one product.
func (c *Client) DeleteProduct(ctx context.Context, id int) (string, error) {
	payload := map[string]int{"idEliminar": id}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/eliminar-producto", payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
