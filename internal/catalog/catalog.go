// Package catalog holds the sample declarations shipped with the typesmith
// binary. Applications embedding the CLI register their own set instead.
package catalog

import (
	"fmt"

	"github.com/artpar/typesmith/core/registry"
	"github.com/artpar/typesmith/core/schema"
)

// Declarations builds the sample set in generation order.
//
// Address and Customer live under Shop, Invoice and LineItem under Billing,
// and Settings sits at the output root so every relative import shape
// (sibling, parent directory, child directory) is exercised.
func Declarations() ([]*schema.Declaration, error) {
	address := schema.New("Shop::Address")
	customer := schema.New("Shop::Customer")
	lineItem := schema.New("Billing::LineItem")
	invoice := schema.New("Billing::Invoice")
	settings := schema.New("Settings")

	steps := []struct {
		decl  *schema.Declaration
		build schema.BuildFunc
	}{
		{address, func(b *schema.Builder) {
			b.Field("street", schema.String)
			b.Field("city", schema.String)
			b.Field("postal_code", schema.String, schema.Optional())
			b.Object("country", func(b *schema.Builder) {
				b.Field("code", schema.String)
				b.Field("name", schema.String)
			})
		}},
		{customer, func(b *schema.Builder) {
			b.Field("id", schema.Number)
			b.Field("email", schema.String)
			b.Field("display_name", schema.String, schema.Optional())
			b.Field("billing_address", address)
			b.Field("shipping_addresses", schema.ArrayOf(address))
			b.Field("tags", schema.ArrayOf(schema.String))
			b.Field("created_at", schema.Date)
		}},
		{lineItem, func(b *schema.Builder) {
			b.Field("sku", schema.String)
			b.Field("description", schema.String)
			b.Field("quantity", schema.Number)
			b.Field("unit_price_cents", schema.Number)
			b.Field("attributes", schema.MapOf(schema.String, schema.String), schema.Optional())
		}},
		{invoice, func(b *schema.Builder) {
			b.Field("id", schema.Number)
			b.Field("number", schema.String)
			b.Field("customer", customer)
			b.Field("line_items", schema.ArrayOf(lineItem))
			b.Field("totals", schema.MapOf(schema.String, schema.Number))
			b.Field("paid", schema.Boolean)
			b.Field("issued_at", schema.Date)
			b.Untyped("metadata", schema.Optional())
		}},
		{settings, func(b *schema.Builder) {
			b.Field("locale", schema.String)
			b.Field("default_customer", customer, schema.Optional())
			b.Object("features", func(b *schema.Builder) {
				b.Field("dark_mode", schema.Boolean)
				b.Field("beta_flags", schema.ArrayOf(schema.String))
			})
			b.Field("limits", schema.MapOf(schema.String, schema.ArrayOf(schema.Number)))
		}},
	}

	decls := make([]*schema.Declaration, 0, len(steps))
	for _, s := range steps {
		if err := s.decl.Apply(s.build); err != nil {
			return nil, err
		}
		decls = append(decls, s.decl)
	}
	return decls, nil
}

// Register adds the sample set to reg.
func Register(reg *registry.Registry) error {
	decls, err := Declarations()
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	for _, d := range decls {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("register catalog: %w", err)
		}
	}
	return nil
}
