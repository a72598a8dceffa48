package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	testSimple = MustDeclare("TestSimple", func(b *Builder) {
		b.Field("id", Number)
		b.Field("name", String)
		b.Field("is_active", Boolean)
		b.Field("created_at", Date)
		b.Field("tags", ArrayOf(String))
	})

	testNested = MustDeclare("TestNested", func(b *Builder) {
		b.Object("user", func(b *Builder) {
			b.Field("id", Number)
			b.Field("name", String)
		})
	})

	testIndexed = MustDeclare("TestIndexed", func(b *Builder) {
		b.Field("scores", MapOf(String, Number))
	})

	testComplex = MustDeclare("TestComplex", func(b *Builder) {
		b.Field("id", Number)
		b.Field("name", String)
		b.Field("optional_field", String, Optional())
		b.Field("items", ArrayOf(testSimple))
		b.Field("nested", testNested)
		b.Field("metadata", MapOf(String, Any))
	})
)

func mustRenderType(t *testing.T, d *Declaration) string {
	t.Helper()
	text, err := d.RenderType()
	if err != nil {
		t.Fatalf("RenderType() error: %v", err)
	}
	return text
}

func TestDeclaration_RenderType(t *testing.T) {
	complexNesting := MustDeclare("Deep.TestComplexNesting", func(b *Builder) {
		b.Object("user", func(b *Builder) {
			b.Field("id", Number)
			b.Field("name", String)
			b.Object("address", func(b *Builder) {
				b.Field("street", String)
				b.Field("city", String)
				b.Object("country", func(b *Builder) {
					b.Field("code", String)
					b.Field("name", String)
				})
			})
		})
	})

	indexedArrays := MustDeclare("TestIndexedArrays", func(b *Builder) {
		b.Field("simple_array", MapOf(String, ArrayOf(String)))
		b.Field("complex_array", MapOf(String, ArrayOf(testSimple)))
		b.Field("non_array", MapOf(String, testSimple))
	})

	tests := []struct {
		name     string
		decl     *Declaration
		expected string
	}{
		{
			name: "simple",
			decl: testSimple,
			expected: "export interface TestSimple {\n" +
				"  id: number;\n" +
				"  name: string;\n" +
				"  isActive: boolean;\n" +
				"  createdAt: Date;\n" +
				"  tags: string[];\n" +
				"}",
		},
		{
			name: "nested",
			decl: testNested,
			expected: "export interface TestNested {\n" +
				"  user: {\n" +
				"    id: number;\n" +
				"    name: string;\n" +
				"  };\n" +
				"}",
		},
		{
			name: "indexed",
			decl: testIndexed,
			expected: "export interface TestIndexed {\n" +
				"  scores: { [key: string]: number };\n" +
				"}",
		},
		{
			name: "complex",
			decl: testComplex,
			expected: "export interface TestComplex {\n" +
				"  id: number;\n" +
				"  name: string;\n" +
				"  optionalField?: string;\n" +
				"  items: TestSimple[];\n" +
				"  nested: TestNested;\n" +
				"  metadata: { [key: string]: any };\n" +
				"}",
		},
		{
			name: "complex nesting",
			decl: complexNesting,
			expected: "export interface TestComplexNesting {\n" +
				"  user: {\n" +
				"    id: number;\n" +
				"    name: string;\n" +
				"    address: {\n" +
				"      street: string;\n" +
				"      city: string;\n" +
				"      country: {\n" +
				"        code: string;\n" +
				"        name: string;\n" +
				"      };\n" +
				"    };\n" +
				"  };\n" +
				"}",
		},
		{
			name: "indexed arrays",
			decl: indexedArrays,
			expected: "export interface TestIndexedArrays {\n" +
				"  simpleArray: { [key: string]: string[] };\n" +
				"  complexArray: { [key: string]: TestSimple[] };\n" +
				"  nonArray: { [key: string]: TestSimple };\n" +
				"}",
		},
		{
			name:     "empty",
			decl:     New("Empty"),
			expected: "export interface Empty {\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRenderType(t, tt.decl); got != tt.expected {
				t.Errorf("RenderType() =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestDeclaration_RenderIsStable(t *testing.T) {
	first := mustRenderType(t, testComplex)
	second := mustRenderType(t, testComplex)
	if first != second {
		t.Errorf("RenderType() is not deterministic:\n%s\n---\n%s", first, second)
	}
}

func TestDeclaration_Names(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
	}{
		{"Invoice", "Invoice"},
		{"Billing.LineItem", "LineItem"},
		{"Billing::LineItem", "LineItem"},
		{"billing/LineItem", "LineItem"},
	}
	for _, tt := range tests {
		d := New(tt.name)
		if d.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", d.Name(), tt.name)
		}
		if d.TypeName() != tt.typeName {
			t.Errorf("TypeName(%q) = %q, want %q", tt.name, d.TypeName(), tt.typeName)
		}
		if d.IsAnonymous() {
			t.Errorf("%q should not be anonymous", tt.name)
		}
	}

	anon, err := Anonymous(nil)
	if err != nil {
		t.Fatalf("Anonymous() error: %v", err)
	}
	if !anon.IsAnonymous() || anon.String() != "<anonymous>" {
		t.Errorf("anonymous declaration = %q", anon.String())
	}
}

func TestDeclaration_PropertyDispatch(t *testing.T) {
	d := MustDeclare("Dispatch", func(b *Builder) {
		b.Field("plain", String)
		b.Field("list", ArrayOf(Number))
		b.Field("table", MapOf(String, Boolean))
		b.Untyped("loose")
		b.Object("inline", func(b *Builder) {})
	})

	want := map[string]string{
		"plain":  "*schema.SimpleProperty",
		"list":   "*schema.ArrayProperty",
		"table":  "*schema.IndexedProperty",
		"loose":  "*schema.SimpleProperty",
		"inline": "*schema.NestedProperty",
	}
	for name, typ := range want {
		p, ok := d.Property(name)
		if !ok {
			t.Errorf("Property(%q) not found", name)
			continue
		}
		if got := typeName(p); got != typ {
			t.Errorf("Property(%q) = %s, want %s", name, got, typ)
		}
	}

	loose, _ := d.Property("loose")
	if got := mustRender(t, loose); got != "loose: any;" {
		t.Errorf("untyped Render() = %q, want %q", got, "loose: any;")
	}
}

func typeName(p Property) string {
	switch p.(type) {
	case *SimpleProperty:
		return "*schema.SimpleProperty"
	case *ArrayProperty:
		return "*schema.ArrayProperty"
	case *IndexedProperty:
		return "*schema.IndexedProperty"
	case *NestedProperty:
		return "*schema.NestedProperty"
	}
	return "unknown"
}

func TestDeclaration_RedeclareReplacesInPlace(t *testing.T) {
	d := MustDeclare("Redeclare", func(b *Builder) {
		b.Field("id", Number)
		b.Field("name", String)
		b.Field("id", String, Optional())
	})

	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}
	expected := "export interface Redeclare {\n  id?: string;\n  name: string;\n}"
	if got := mustRenderType(t, d); got != expected {
		t.Errorf("RenderType() =\n%s\nwant\n%s", got, expected)
	}
}

func TestDeclaration_ForwardReferences(t *testing.T) {
	author := New("Blog.Author")
	post := New("Blog.Post")

	if err := post.Apply(func(b *Builder) {
		b.Field("title", String)
		b.Field("author", author)
	}); err != nil {
		t.Fatalf("Apply(post) error: %v", err)
	}
	if err := author.Apply(func(b *Builder) {
		b.Field("name", String)
		b.Field("posts", ArrayOf(post), Optional())
	}); err != nil {
		t.Fatalf("Apply(author) error: %v", err)
	}

	expected := "export interface Author {\n  name: string;\n  posts?: Post[];\n}"
	if got := mustRenderType(t, author); got != expected {
		t.Errorf("RenderType() =\n%s\nwant\n%s", got, expected)
	}

	attrs, err := post.Instantiate(map[string]any{
		"title":  "Hello",
		"author": map[string]any{"name": "Ada"},
	})
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}
	nested, ok := attrs.Value("author").(Attributes)
	if !ok || nested.Declaration() != author {
		t.Errorf("author = %#v, want an Author instance", attrs.Value("author"))
	}
}

func TestDeclaration_BuilderStopsAtFirstError(t *testing.T) {
	var reached bool
	_, err := Declare("Broken", func(b *Builder) {
		b.Field("id", Number)
		b.Field("amount", Primitive("float"))
		b.Field("name", String)
		reached = b.Err() != nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !reached {
		t.Error("Err() should report the failure to the rest of the block")
	}

	var ite *InvalidTypeError
	if !errors.As(err, &ite) {
		t.Fatalf("error = %T, want wrapped *InvalidTypeError", err)
	}
	if ite.Property != "amount" || ite.Type != "float" {
		t.Errorf("InvalidTypeError = %+v", ite)
	}
	if !strings.HasPrefix(err.Error(), "declare Broken: ") {
		t.Errorf("error = %q, want declaration prefix", err.Error())
	}
}

func TestDeclaration_MustDeclarePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDeclare() should panic on an invalid type")
		}
	}()
	MustDeclare("Panics", func(b *Builder) {
		b.Field("x", Primitive("int"))
	})
}

func TestDeclaration_EmptyFieldName(t *testing.T) {
	if _, err := Declare("NoName", func(b *Builder) { b.Field("", String) }); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := Declare("NoName", func(b *Builder) { b.Object("", func(*Builder) {}) }); err == nil {
		t.Error("expected error for empty object name")
	}
}

func TestDeclaration_AnonymousReferenceRejected(t *testing.T) {
	anon, err := Anonymous(func(b *Builder) { b.Field("id", Number) })
	if err != nil {
		t.Fatalf("Anonymous() error: %v", err)
	}

	_, err = Declare("HoldsAnonymous", func(b *Builder) {
		b.Field("ref", anon)
	})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("Declare() error = %v, want ErrInvalidType", err)
	}

	d := New("HoldsAnonymousList")
	if err := d.Field("refs", ArrayOf(anon)); !errors.Is(err, ErrInvalidType) {
		t.Errorf("Field() error = %v, want ErrInvalidType", err)
	}
	if d.Len() != 0 {
		t.Errorf("rejected field was added: %d properties", d.Len())
	}
}

// -----------------------------------------------------------------------------
// Instantiate
// -----------------------------------------------------------------------------

func TestDeclaration_Instantiate(t *testing.T) {
	input := map[string]any{
		"id":   1,
		"name": "Test",
		"items": []any{
			map[string]any{"id": 2, "name": "Item", "is_active": false, "created_at": nil, "tags": []any{}},
		},
		"nested":   map[string]any{"user": map[string]any{"id": 3, "name": "User"}},
		"metadata": map[string]any{"key": "value"},
	}

	attrs, err := testComplex.Instantiate(input)
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}

	if attrs.Value("id") != 1 {
		t.Errorf("id = %v, want 1", attrs.Value("id"))
	}
	if attrs.Value("name") != "Test" {
		t.Errorf("name = %v, want Test", attrs.Value("name"))
	}
	if attrs.Has("optional_field") || attrs.Value("optional_field") != nil {
		t.Error("optional_field should be absent")
	}
	if diff := cmp.Diff(input, attrs.Map()); diff != "" {
		t.Errorf("Instantiate() mismatch (-want +got):\n%s", diff)
	}

	items := attrs.Value("items").([]any)
	item, ok := items[0].(Attributes)
	if !ok {
		t.Fatalf("items[0] = %T, want Attributes", items[0])
	}
	if !item.Has("created_at") || item.Value("created_at") != nil {
		t.Error("explicit nil should be kept for created_at")
	}
}

func TestDeclaration_InstantiateMissingRequired(t *testing.T) {
	_, err := testComplex.Instantiate(map[string]any{"name": "Test"})

	var missing *MissingRequiredAttributeError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingRequiredAttributeError", err)
	}
	want := []string{"id", "items", "nested", "metadata"}
	if diff := cmp.Diff(want, missing.Keys); diff != "" {
		t.Errorf("missing keys mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "missing required attributes: id") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestDeclaration_InstantiateUndefined(t *testing.T) {
	_, err := testComplex.Instantiate(map[string]any{
		"id":        1,
		"name":      "Test",
		"undefined": "value",
		"another":   true,
	})

	var undefined *UndefinedAttributeError
	if !errors.As(err, &undefined) {
		t.Fatalf("error = %v, want *UndefinedAttributeError", err)
	}
	if diff := cmp.Diff([]string{"another", "undefined"}, undefined.Keys); diff != "" {
		t.Errorf("undefined keys mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "undefined") {
		t.Errorf("error = %q, want it to mention the key", err.Error())
	}
}

func TestDeclaration_InstantiateUndefinedBeforeMissing(t *testing.T) {
	_, err := testComplex.Instantiate(map[string]any{"bogus": 1})
	if !errors.Is(err, ErrUndefinedAttribute) {
		t.Errorf("error = %v, want ErrUndefinedAttribute", err)
	}
}

func TestDeclaration_InstantiateExactlyRequired(t *testing.T) {
	attrs, err := testSimple.Instantiate(map[string]any{
		"id":         1,
		"name":       "n",
		"is_active":  true,
		"created_at": "2024-01-01",
		"tags":       []string{"a"},
	})
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}
	if attrs.Len() != 5 {
		t.Errorf("Len() = %d, want 5", attrs.Len())
	}
	if diff := cmp.Diff([]any{"a"}, attrs.Value("tags")); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclaration_InstantiateWrapsFieldErrors(t *testing.T) {
	_, err := testComplex.Instantiate(map[string]any{
		"id":       1,
		"name":     "Test",
		"items":    "not a list",
		"nested":   map[string]any{"user": map[string]any{"id": 1, "name": "x"}},
		"metadata": map[string]any{},
	})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("error = %v, want ErrInvalidValue", err)
	}
	if !strings.HasPrefix(err.Error(), "TestComplex: items: ") {
		t.Errorf("error = %q, want declaration and field prefix", err.Error())
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Declaration != "TestComplex" || fe.Field != "items" {
		t.Errorf("FieldError = %+v", fe)
	}
}

func TestDeclaration_InstantiateNestedErrorPath(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		want  string
		is    error
	}{
		{
			name: "element of a declaration array",
			input: map[string]any{
				"id": 1, "name": "x", "metadata": map[string]any{},
				"nested": map[string]any{"user": map[string]any{"id": 1, "name": "x"}},
				"items":  []any{map[string]any{"id": 1}},
			},
			want: "TestComplex: items: [0]: TestSimple: missing required attributes: name, is_active, created_at, tags",
			is:   ErrMissingRequiredAttribute,
		},
		{
			name: "nested anonymous block",
			input: map[string]any{
				"id": 1, "name": "x", "metadata": map[string]any{}, "items": []any{},
				"nested": map[string]any{"user": map[string]any{"id": 1}},
			},
			want: "TestComplex: nested: TestNested: user: missing required attributes: name",
			is:   ErrMissingRequiredAttribute,
		},
		{
			name: "undefined key two levels down",
			input: map[string]any{
				"id": 1, "name": "x", "metadata": map[string]any{}, "items": []any{},
				"nested": map[string]any{"user": map[string]any{"id": 1, "name": "x", "age": 3}},
			},
			want: "TestComplex: nested: TestNested: user: undefined attributes: age",
			is:   ErrUndefinedAttribute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testComplex.Instantiate(tt.input)
			if !errors.Is(err, tt.is) {
				t.Fatalf("error = %v, want %v", err, tt.is)
			}
			if err.Error() != tt.want {
				t.Errorf("error =\n%s\nwant\n%s", err, tt.want)
			}
		})
	}
}

func TestDeclaration_References(t *testing.T) {
	address := MustDeclare("Refs.Address", nil)
	tag := MustDeclare("Refs.Tag", nil)
	owner := New("Refs.Owner")
	if err := owner.Apply(func(b *Builder) {
		b.Field("id", Number)
		b.Field("self", owner, Optional())
		b.Field("tags", ArrayOf(ArrayOf(tag)))
		b.Field("by_tag", MapOf(String, address))
		b.Object("profile", func(b *Builder) {
			b.Field("home", address)
			b.Field("favorite", tag)
		})
		b.Field("billing", address)
	}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	refs, err := owner.References()
	if err != nil {
		t.Fatalf("References() error: %v", err)
	}
	var names []string
	for _, r := range refs {
		names = append(names, r.Name())
	}
	want := []string{"Refs.Owner", "Refs.Tag", "Refs.Address"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("References() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclaration_ReferencesThroughMapKeys(t *testing.T) {
	code := MustDeclare("Refs.Code", nil)
	label := MustDeclare("Refs.Label", nil)
	lookup := MustDeclare("Refs.Lookup", func(b *Builder) {
		b.Field("labels", MapOf(code, label))
	})

	refs, err := lookup.References()
	if err != nil {
		t.Fatalf("References() error: %v", err)
	}
	var names []string
	for _, r := range refs {
		names = append(names, r.Name())
	}
	if diff := cmp.Diff([]string{"Refs.Code", "Refs.Label"}, names); diff != "" {
		t.Errorf("References() mismatch (-want +got):\n%s", diff)
	}
}
