package mapping

import (
	"cmp"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"

	"ocm-mapper/internal/common"
	"ocm-mapper/internal/match"
	"ocm-mapper/ocmerr"
	"ocm-mapper/primitive"
	"ocm-mapper/proxy"
)

// Registry maps Go struct types to their descriptors. It is filled at startup
// and must not be modified once shared.
type Registry struct {
	byType     map[reflect.Type]*MappingDescriptor
	byTag      map[string]*MappingDescriptor
	converters *ConverterRegistry
}

// NewRegistry creates an empty registry. Converters referenced by field
// mappings are looked up in converters, which may be nil.
func NewRegistry(converters *ConverterRegistry) *Registry {
	if converters == nil {
		converters = NewConverterRegistry()
	}

	return &Registry{
		byType:     make(map[reflect.Type]*MappingDescriptor),
		byTag:      make(map[string]*MappingDescriptor),
		converters: converters,
	}
}

// Converters returns the converter registry used by field mappings.
func (r *Registry) Converters() *ConverterRegistry {
	return r.converters
}

// Register adds the mapping of struct type t (or *t) stored under jcrType.
func (r *Registry) Register(t reflect.Type, jcrType string, fields ...FieldMapping) error {
	if t == nil {
		return ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Message("nil type"))
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	invalid := func(format string, args ...any) error {
		return ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Type(t), ocmerr.Message(format, args...))
	}

	if t.Kind() != reflect.Struct {
		return invalid("only struct types can be mapped")
	}

	if _, exists := r.byType[t]; exists {
		return ocmerr.New(ocmerr.KindDuplicateMapping, ocmerr.Type(t), ocmerr.Message("type already registered"))
	}

	if jcrType == "" {
		return invalid("empty jcrType")
	}

	if other, exists := r.byTag[jcrType]; exists {
		return ocmerr.New(ocmerr.KindDuplicateMapping, ocmerr.Type(t),
			ocmerr.Message("jcrType %q already mapped to %s", jcrType, other.Type))
	}

	d := &MappingDescriptor{
		Type:     t,
		JcrType:  jcrType,
		fields:   slices.Clone(fields),
		bindings: make([]Binding, 0, len(fields)),
	}

	seenFields := make(map[string]struct{}, len(fields))
	seenNames := make(map[string]string, len(fields))

	var identities []int

	for _, fm := range fields {
		if _, dup := seenFields[fm.Field]; dup {
			return invalid("field %s mapped twice", fm.Field)
		}

		seenFields[fm.Field] = struct{}{}

		b, err := r.bind(t, fm)
		if err != nil {
			return err
		}

		if prev, dup := seenNames[b.StoreName]; dup {
			return invalid("fields %s and %s share store path %q", prev, fm.Field, b.StoreName)
		}

		seenNames[b.StoreName] = fm.Field

		if b.Kind == KindIdentity {
			identities = append(identities, len(d.bindings))
		}

		d.bindings = append(d.bindings, b)
	}

	if !common.IsSingle(identities) {
		return invalid("want exactly one identity field, got %d", len(identities))
	}

	d.identity, _ = common.First(identities)

	r.byType[t] = d
	r.byTag[jcrType] = d

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t reflect.Type, jcrType string, fields ...FieldMapping) {
	if err := r.Register(t, jcrType, fields...); err != nil {
		panic(err)
	}
}

// pointerEmbed returns the name of the first embedded pointer on the way to
// the field at index. Such fields cannot be reached on a zero value.
func pointerEmbed(t reflect.Type, index []int) (string, bool) {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return f.Name, true
		}

		t = f.Type
	}

	return "", false
}

// bind resolves fm against struct type t.
func (r *Registry) bind(t reflect.Type, fm FieldMapping) (Binding, error) {
	invalid := func(format string, args ...any) error {
		return ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Type(t),
			ocmerr.Message("field %s: "+format, append([]any{fm.Field}, args...)...))
	}

	sf, ok := t.FieldByName(fm.Field)
	if !ok {
		if hint := match.Suggest(fm.Field, exportedFields(t), 1); len(hint) > 0 {
			return Binding{}, invalid("no such field (did you mean %s?)", hint[0])
		}

		return Binding{}, invalid("no such field")
	}

	if !sf.IsExported() {
		return Binding{}, invalid("field is not exported")
	}

	if via, ok := pointerEmbed(t, sf.Index); ok {
		return Binding{}, invalid("promoted through embedded pointer %s", via)
	}

	b := Binding{
		Mapping:   fm,
		Kind:      fm.Kind,
		StoreName: fm.StoreName(),
		Index:     sf.Index,
		Type:      sf.Type,
	}

	if b.Kind == KindAuto {
		b.Kind = inferKind(fm, sf.Type)
	}

	if b.Kind != KindIdentity && b.StoreName == IdentityPath {
		return Binding{}, invalid("%s is reserved for identity fields", IdentityPath)
	}

	if b.Kind != KindIdentity {
		if _, err := ParsePropertyName(b.StoreName); err != nil {
			return Binding{}, invalid("bad store name: %v", err)
		}
	}

	if fm.Converter != "" {
		if b.Kind != KindProperty {
			return Binding{}, invalid("converters apply to properties only")
		}

		conv, ok := r.converters.Get(fm.Converter)
		if !ok {
			return Binding{}, invalid("unknown converter %q", fm.Converter)
		}

		if conv.FieldType() != sf.Type {
			return Binding{}, invalid("converter %q produces %s, field is %s", fm.Converter, conv.FieldType(), sf.Type)
		}

		b.Converter = conv

		return b, nil
	}

	switch b.Kind {
	case KindIdentity:
		if sf.Type.Kind() != reflect.String {
			return Binding{}, invalid("identity field must be a string, got %s", sf.Type)
		}

	case KindUUID:
		if sf.Type.Kind() != reflect.String && sf.Type != uuidType {
			return Binding{}, invalid("uuid field must be a string or uuid.UUID, got %s", sf.Type)
		}

	case KindRelation, KindCollection:
		target, lazy, ok := referenceTarget(sf.Type, b.Kind == KindCollection)
		if !ok {
			return Binding{}, invalid("%s field has unsupported type %s", b.Kind, sf.Type)
		}

		if fm.Lazy && !lazy {
			return Binding{}, invalid("lazy %s needs a proxy handle, got %s", b.Kind, sf.Type)
		}

		b.Target = target
		b.Lazy = lazy

	case KindProperty:
		if !storable(sf.Type) {
			return Binding{}, invalid("%s cannot be stored as a property", sf.Type)
		}

	default:
		return Binding{}, invalid("unknown kind %s", b.Kind)
	}

	return b, nil
}

var (
	uuidType = reflect.TypeFor[uuid.UUID]()
	timeType = reflect.TypeFor[time.Time]()
)

func inferKind(fm FieldMapping, t reflect.Type) FieldKind {
	if fm.Path == IdentityPath {
		return KindIdentity
	}

	if fm.Converter != "" {
		return KindProperty
	}

	if t == uuidType {
		return KindUUID
	}

	if _, _, ok := referenceTarget(t, false); ok {
		return KindRelation
	}

	if _, _, ok := referenceTarget(t, true); ok {
		return KindCollection
	}

	return KindProperty
}

// referenceTarget returns the struct type a relation or collection field
// points at and whether the field is a proxy handle.
func referenceTarget(t reflect.Type, multiple bool) (reflect.Type, bool, bool) {
	if proxy.IsHandle(t) {
		h := proxy.NewHandle(t)
		if h.Multiple() != multiple || h.TargetType().Kind() != reflect.Struct {
			return nil, false, false
		}

		return h.TargetType(), true, true
	}

	if multiple {
		if t.Kind() != reflect.Slice {
			return nil, false, false
		}

		t = t.Elem()
	}

	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct || t.Elem() == timeType {
		return nil, false, false
	}

	return t.Elem(), false, true
}

// storable reports whether values of t convert to and from property values.
func storable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return true
	}

	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}

	if primitive.FromReflectType(t) != 0 {
		return true
	}

	return primitive.Underlying(t) != nil
}

func exportedFields(t reflect.Type) []string {
	var names []string

	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() {
			names = append(names, f.Name)
		}
	}

	return names
}

// Verify checks that every relation and collection target is registered.
func (r *Registry) Verify() error {
	for _, d := range r.All() {
		for _, b := range d.bindings {
			if b.Target == nil {
				continue
			}

			if _, ok := r.byType[b.Target]; !ok {
				return ocmerr.New(ocmerr.KindInvalidMapping,
					ocmerr.Type(d.Type),
					ocmerr.Message("field %s targets %s", b.Mapping.Field, b.Target),
					ocmerr.Cause(ocmerr.New(ocmerr.KindUnmappedType, ocmerr.Type(b.Target))))
			}
		}
	}

	return nil
}

// Describe returns the descriptor of t or *t.
func (r *Registry) Describe(t reflect.Type) (*MappingDescriptor, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	d, ok := r.byType[t]
	if !ok {
		return nil, ocmerr.New(ocmerr.KindUnmappedType, ocmerr.Type(t), ocmerr.Message("no mapping registered"))
	}

	return d, nil
}

// Lookup returns the descriptor registered for a node type tag.
func (r *Registry) Lookup(jcrType string) (*MappingDescriptor, bool) {
	d, ok := r.byTag[jcrType]
	return d, ok
}

// Has reports whether t or *t is registered.
func (r *Registry) Has(t reflect.Type) bool {
	_, err := r.Describe(t)
	return err == nil
}

// All returns every descriptor ordered by jcrType.
func (r *Registry) All() []*MappingDescriptor {
	all := make([]*MappingDescriptor, 0, len(r.byType))
	for _, d := range r.byType {
		all = append(all, d)
	}

	slices.SortFunc(all, func(a, b *MappingDescriptor) int {
		return cmp.Compare(a.JcrType, b.JcrType)
	})

	return all
}

// Types returns every registered type ordered by jcrType.
func (r *Registry) Types() []reflect.Type {
	all := r.All()

	types := make([]reflect.Type, len(all))
	for i, d := range all {
		types[i] = d.Type
	}

	return types
}

// Register registers T on r.
func Register[T any](r *Registry, jcrType string, fields ...FieldMapping) error {
	return r.Register(reflect.TypeFor[T](), jcrType, fields...)
}

// Describe returns the descriptor of T.
func Describe[T any](r *Registry) (*MappingDescriptor, error) {
	return r.Describe(reflect.TypeFor[T]())
}
