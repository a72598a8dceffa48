/*
Package schema is the type model of typesmith: record shapes declared in Go,
rendered as TypeScript interfaces and used to validate runtime data.

# Declaring shapes

	var Simple = schema.MustDeclare("Catalog.TestSimple", func(b *schema.Builder) {
		b.Field("id", schema.Number)
		b.Field("name", schema.String)
		b.Field("is_active", schema.Boolean)
		b.Field("created_at", schema.Date)
		b.Field("tags", schema.ArrayOf(schema.String))
	})

	var Complex = schema.MustDeclare("Catalog.TestComplex", func(b *schema.Builder) {
		b.Field("optional_field", schema.String, schema.Optional())
		b.Field("items", schema.ArrayOf(Simple))
		b.Field("metadata", schema.MapOf(schema.String, schema.Any))
		b.Object("user", func(b *schema.Builder) {
			b.Field("id", schema.Number)
		})
	})

Declarations that reference each other are created with New first and
filled with Apply afterwards.

# Type expressions

A Type is a Primitive tag, a *Declaration reference, ArrayOf(T) or
MapOf(K, V). Every leaf is validated when the property is constructed;
an unknown tag fails with an *InvalidTypeError and the enclosing
declaration is not built.

# Rendering

RenderType emits one field per line in declaration order with two spaces
of indentation per nesting level. Field names are lower camel cased:

	export interface TestSimple {
	  id: number;
	  name: string;
	  isActive: boolean;
	  createdAt: Date;
	  tags: string[];
	}

# Instantiation

Instantiate rejects undeclared keys, processes each present value
(references and nested records are instantiated recursively, arrays and
maps are walked, scalars pass through uncoerced) and then reports every
missing required field at once.
*/
package schema
