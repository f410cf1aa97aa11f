package mapper

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"ocm-mapper/internal/common"
	"ocm-mapper/mapping"
	"ocm-mapper/node"
	"ocm-mapper/ocmerr"
	"ocm-mapper/primitive"
	"ocm-mapper/proxy"
)

// reader converts one object graph. Objects read eagerly are cached by path
// so cycles between eager relations terminate.
type reader struct {
	m    *Mapper
	seen map[string]reflect.Value
}

func (m *Mapper) newReader() *reader {
	return &reader{m: m, seen: make(map[string]reflect.Value)}
}

func (r *reader) load(ctx context.Context, path string, t reflect.Type) (reflect.Value, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if v, ok := r.seen[path]; ok && v.Type().Elem() == t {
		return v, nil
	}

	n, err := r.m.fetch(ctx, path)
	if err != nil {
		return reflect.Value{}, err
	}

	return r.toObject(ctx, n, t)
}

func (r *reader) toObject(ctx context.Context, n *node.Node, t reflect.Type) (reflect.Value, error) {
	d, err := r.m.describe(t)
	if err != nil {
		return reflect.Value{}, err
	}

	if n == nil {
		return reflect.Value{}, ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Type(d.Type), ocmerr.Message("nil node"))
	}

	if tag := r.m.tags.TypeTag(n); tag != d.JcrType {
		return reflect.Value{}, ocmerr.New(ocmerr.KindIncorrectPersistentClass,
			ocmerr.Type(d.Type),
			ocmerr.Path(n.Path),
			ocmerr.Message("node type %q does not match %q", tag, d.JcrType))
	}

	obj := reflect.New(d.Type)
	r.seen[n.Path] = obj

	for _, b := range d.Bindings() {
		fv := obj.Elem().FieldByIndex(b.Index)

		if err := r.readField(ctx, n, d, b, fv); err != nil {
			delete(r.seen, n.Path)
			return reflect.Value{}, err
		}
	}

	return obj, nil
}

func (r *reader) readField(ctx context.Context, n *node.Node, d *mapping.MappingDescriptor, b mapping.Binding, fv reflect.Value) error {
	if b.Kind == mapping.KindIdentity {
		fv.SetString(n.Path)
		return nil
	}

	raw, ok := n.Get(b.StoreName)
	if !ok && b.Mapping.Required {
		return ocmerr.New(ocmerr.KindPathNotFound,
			ocmerr.Type(d.Type),
			ocmerr.Path(n.Path),
			ocmerr.Message("required property %s is missing", b.StoreName))
	}

	switch b.Kind {
	case mapping.KindUUID:
		if !ok {
			return nil
		}

		return r.readUUID(raw, fv, d, b, n)

	case mapping.KindRelation, mapping.KindCollection:
		paths, err := targetPaths(raw, b.Kind == mapping.KindCollection)
		if err != nil {
			return conversionError(d, b, n, err)
		}

		if b.Lazy {
			return r.bindHandle(fv, b, paths, n)
		}

		return r.readEager(ctx, fv, b, paths, d, n)

	default:
		if !ok {
			return nil
		}

		return r.readProperty(raw, fv, d, b, n)
	}
}

func (r *reader) readProperty(raw any, fv reflect.Value, d *mapping.MappingDescriptor, b mapping.Binding, n *node.Node) error {
	if b.Converter == nil {
		if err := primitive.Convert(raw, fv, r.m.allowed); err != nil {
			return conversionError(d, b, n, err)
		}

		return nil
	}

	stored := reflect.New(b.Converter.StoreType()).Elem()
	if err := primitive.Convert(raw, stored, r.m.allowed); err != nil {
		return conversionError(d, b, n, err)
	}

	out, err := b.Converter.Read.Call(stored)
	if err != nil {
		return conversionError(d, b, n, fmt.Errorf("converter %s: %w", b.Converter.Name, err))
	}

	fv.Set(out)

	return nil
}

func (r *reader) readUUID(raw any, fv reflect.Value, d *mapping.MappingDescriptor, b mapping.Binding, n *node.Node) error {
	s, ok := raw.(string)
	if !ok {
		return conversionError(d, b, n, fmt.Errorf("%w: uuid stored as %T", primitive.ErrUnsupported, raw))
	}

	if fv.Kind() == reflect.String {
		fv.SetString(s)
		return nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return conversionError(d, b, n, fmt.Errorf("%w: %w", primitive.ErrInvalidValue, err))
	}

	fv.Set(reflect.ValueOf(id))

	return nil
}

// bindHandle places an Unresolved handle in fv. A missing relation gets a
// handle with no target, which resolves to Null without fetching.
func (r *reader) bindHandle(fv reflect.Value, b mapping.Binding, paths []string, n *node.Node) error {
	h := proxy.NewHandle(b.Type)

	if !h.Multiple() && len(paths) == 0 {
		paths = []string{""}
	}

	if err := h.BindPaths(paths, r.m); err != nil {
		return err
	}

	r.m.logger.Debug("bound proxy", "path", n.Path, "field", b.Mapping.Field, "targets", paths)

	fv.Set(reflect.ValueOf(h))

	return nil
}

func (r *reader) readEager(ctx context.Context, fv reflect.Value, b mapping.Binding, paths []string, d *mapping.MappingDescriptor, n *node.Node) error {
	if b.Kind == mapping.KindRelation {
		if common.IsEmpty(paths) {
			return nil
		}

		v, err := r.loadTarget(ctx, paths[0], b, d, n)
		if err != nil || !v.IsValid() {
			return err
		}

		fv.Set(v)

		return nil
	}

	out := reflect.MakeSlice(b.Type, 0, len(paths))

	for _, p := range paths {
		v, err := r.loadTarget(ctx, p, b, d, n)
		if err != nil {
			return err
		}

		if v.IsValid() {
			out = reflect.Append(out, v)
		}
	}

	if len(paths) > 0 {
		fv.Set(out)
	}

	return nil
}

// loadTarget loads one eager target. An absent target yields an invalid
// Value unless the field is required. Failures mapping a target that exists
// are returned as they are.
func (r *reader) loadTarget(ctx context.Context, path string, b mapping.Binding, d *mapping.MappingDescriptor, n *node.Node) (reflect.Value, error) {
	v, err := r.load(ctx, path, b.Target)
	if !ocmerr.IsAbsent(err, path) {
		return v, err
	}

	if b.Mapping.Required {
		return reflect.Value{}, ocmerr.New(ocmerr.KindPathNotFound,
			ocmerr.Type(d.Type),
			ocmerr.Path(n.Path),
			ocmerr.Message("required relation %s: target %s is absent", b.StoreName, path),
			ocmerr.Cause(err))
	}

	r.m.logger.Debug("eager target absent", "field", b.Mapping.Field, "target", path)

	return reflect.Value{}, nil
}

// targetPaths reads the target paths stored for a relation or collection.
func targetPaths(raw any, multiple bool) ([]string, error) {
	var values []any

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		values = []any{v}
	case []any:
		if !multiple && common.IsMultiple(v) {
			return nil, fmt.Errorf("%w: %d paths for a single relation", primitive.ErrInvalidValue, len(v))
		}

		values = v
	default:
		return nil, fmt.Errorf("%w: reference stored as %T", primitive.ErrUnsupported, raw)
	}

	paths := make([]string, 0, len(values))

	for _, v := range values {
		p, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: reference stored as %T", primitive.ErrUnsupported, v)
		}

		if err := node.ValidatePath(p); err != nil {
			return nil, err
		}

		paths = append(paths, p)
	}

	return paths, nil
}

func conversionError(d *mapping.MappingDescriptor, b mapping.Binding, n *node.Node, err error) error {
	return ocmerr.New(ocmerr.KindFieldConversion,
		ocmerr.Type(d.Type),
		ocmerr.Path(n.Path),
		ocmerr.Message("field %s from %s", b.Mapping.Field, b.StoreName),
		ocmerr.Cause(err))
}
