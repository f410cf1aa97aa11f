package mapper

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"ocm-mapper/mapping"
	"ocm-mapper/node"
	"ocm-mapper/ocmerr"
	"ocm-mapper/primitive"
	"ocm-mapper/proxy"
)

// ToNode converts a mapped object, given as T or *T, into a node at the path
// held by its identity field. Zero property fields are left out unless
// required, so a node read by ToObject is written back with the properties it
// had. Proxy handles contribute only their target paths and are never resolved. Empty uuid fields get a fresh UUID, which is
// also written back to obj when it is a pointer.
func (m *Mapper) ToNode(obj any) (*node.Node, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, ocmerr.New(ocmerr.KindIncorrectPersistentClass, ocmerr.Type(v.Type()), ocmerr.Message("nil object"))
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return nil, ocmerr.New(ocmerr.KindIncorrectPersistentClass, ocmerr.Message("nil object"))
	}

	d, err := m.describe(v.Type())
	if err != nil {
		return nil, err
	}

	path := v.FieldByIndex(d.Identity().Index).String()
	if path == "" {
		return nil, ocmerr.New(ocmerr.KindInvalidPath,
			ocmerr.Type(d.Type),
			ocmerr.Message("identity field %s is empty", d.Identity().Mapping.Field))
	}

	if err := node.ValidatePath(path); err != nil {
		return nil, err
	}

	n := node.New(path, d.JcrType)
	if m.tagProp != "" {
		n.Set(m.tagProp, d.JcrType)
	}

	for _, b := range d.Bindings() {
		if b.Kind == mapping.KindIdentity {
			continue
		}

		value, err := m.writeField(v.FieldByIndex(b.Index), b)
		if err != nil {
			return nil, ocmerr.New(ocmerr.KindFieldConversion,
				ocmerr.Type(d.Type),
				ocmerr.Path(path),
				ocmerr.Message("field %s to %s", b.Mapping.Field, b.StoreName),
				ocmerr.Cause(err))
		}

		n.Set(b.StoreName, value)
	}

	return n, nil
}

// writeField returns the store value of one field, or nil when nothing is
// written. A zero property field is absent unless it is required; pointer and
// slice fields keep stored zeros apart from absence.
func (m *Mapper) writeField(fv reflect.Value, b mapping.Binding) (any, error) {
	switch {
	case b.Mapping.OmitEmpty && isEmpty(fv):
		return nil, nil
	case b.Kind == mapping.KindProperty && !b.Mapping.Required && fv.IsZero():
		return nil, nil
	}

	switch b.Kind {
	case mapping.KindUUID:
		return m.writeUUID(fv), nil

	case mapping.KindRelation, mapping.KindCollection:
		paths, err := m.referencePaths(fv, b)
		if err != nil || paths == nil {
			return nil, err
		}

		if b.Kind == mapping.KindRelation {
			return paths[0], nil
		}

		values := make([]any, len(paths))
		for i, p := range paths {
			values[i] = p
		}

		return values, nil
	}

	if b.Converter != nil {
		out, err := b.Converter.Write.Call(fv)
		if err != nil {
			return nil, fmt.Errorf("converter %s: %w", b.Converter.Name, err)
		}

		fv = out
	}

	return primitive.Export(fv, m.allowed)
}

// isEmpty reports whether fv is zero, an empty slice or map, or a pointer to
// a zero value.
func isEmpty(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Slice, reflect.Map:
		return fv.Len() == 0
	case reflect.Pointer:
		return fv.IsNil() || fv.Elem().IsZero()
	default:
		return fv.IsZero()
	}
}

func (m *Mapper) writeUUID(fv reflect.Value) any {
	if fv.Kind() == reflect.String {
		if fv.String() == "" {
			id := uuid.NewString()
			if fv.CanSet() {
				fv.SetString(id)
			}

			return id
		}

		return fv.String()
	}

	id := fv.Interface().(uuid.UUID)
	if id == uuid.Nil {
		id = uuid.New()
		if fv.CanSet() {
			fv.Set(reflect.ValueOf(id))
		}
	}

	return id.String()
}

// referencePaths returns the target paths of a relation or collection field,
// or nil when the field holds no targets.
func (m *Mapper) referencePaths(fv reflect.Value, b mapping.Binding) ([]string, error) {
	if fv.Kind() == reflect.Pointer && fv.IsNil() || fv.Kind() == reflect.Slice && fv.Len() == 0 {
		return nil, nil
	}

	if b.Lazy {
		paths := fv.Interface().(proxy.Handle).TargetPaths()
		if len(paths) == 0 {
			return nil, nil
		}

		return paths, nil
	}

	td, err := m.describe(b.Target)
	if err != nil {
		return nil, err
	}

	identity := td.Identity().Index

	if b.Kind == mapping.KindRelation {
		p := fv.Elem().FieldByIndex(identity).String()
		if p == "" {
			return nil, ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Type(b.Target), ocmerr.Message("related object has no path"))
		}

		return []string{p}, nil
	}

	paths := make([]string, 0, fv.Len())

	for i := range fv.Len() {
		e := fv.Index(i)
		if e.IsNil() {
			continue
		}

		p := e.Elem().FieldByIndex(identity).String()
		if p == "" {
			return nil, ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Type(b.Target), ocmerr.Message("element %d has no path", i))
		}

		paths = append(paths, p)
	}

	return paths, nil
}
