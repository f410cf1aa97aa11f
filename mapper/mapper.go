package mapper

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"ocm-mapper/mapping"
	"ocm-mapper/node"
	"ocm-mapper/ocmerr"
	"ocm-mapper/options"
	"ocm-mapper/proxy"
)

// Mapper converts objects to nodes and back. It is safe for concurrent use
// once constructed.
type Mapper struct {
	registry *mapping.Registry
	resolver node.Resolver
	tags     node.TypeTagReader
	tagProp  string
	allowed  options.CategoryEnum
	logger   *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithTypeTagReader sets how a node's type tag is read. Defaults to
// node.PrimaryTypeReader.
func WithTypeTagReader(r node.TypeTagReader) Option {
	return func(m *Mapper) {
		m.tags = r
	}
}

// WithTypeTagProperty reads the type tag from the named property and writes
// it there on ToNode, in addition to Node.TypeTag.
func WithTypeTagProperty(name string) Option {
	return func(m *Mapper) {
		m.tags = node.PropertyTagReader(name)
		m.tagProp = name
	}
}

// WithCategories sets the conversion categories allowed between stored values
// and field types. Defaults to options.CategoryDefault.
func WithCategories(allowed options.CategoryEnum) Option {
	return func(m *Mapper) {
		m.allowed = allowed
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = logger
	}
}

// New creates a Mapper over registry that fetches through resolver. The
// resolver may be nil when only ToObject and ToNode are used.
func New(registry *mapping.Registry, resolver node.Resolver, opts ...Option) *Mapper {
	m := &Mapper{
		registry: registry,
		resolver: resolver,
		tags:     node.PrimaryTypeReader,
		allowed:  options.CategoryDefault,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Registry returns the registry the mapper reads descriptors from.
func (m *Mapper) Registry() *mapping.Registry {
	return m.registry
}

// describe looks up the descriptor of t, reporting a missing one as
// IncorrectPersistentClass.
func (m *Mapper) describe(t reflect.Type) (*mapping.MappingDescriptor, error) {
	d, err := m.registry.Describe(t)
	if err != nil {
		return nil, ocmerr.New(ocmerr.KindIncorrectPersistentClass,
			ocmerr.Type(t),
			ocmerr.Message("type is not mapped"),
			ocmerr.Cause(err))
	}

	return d, nil
}

// ToObject converts n into a new *T, where t is T or *T, and returns it.
func (m *Mapper) ToObject(ctx context.Context, n *node.Node, t reflect.Type) (any, error) {
	v, err := m.newReader().toObject(ctx, n, t)
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

// Load fetches the node at path and converts it into a new *T, where t is T
// or *T. Absence of the node at path is reported with ocmerr.Absent. Load
// implements proxy.Loader.
func (m *Mapper) Load(ctx context.Context, path string, t reflect.Type) (any, error) {
	v, err := m.newReader().load(ctx, path, t)
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

// fetch reads a node through the resolver. It is the only place that reports
// a path as absent, see ocmerr.IsAbsent.
func (m *Mapper) fetch(ctx context.Context, path string) (*node.Node, error) {
	if err := node.ValidatePath(path); err != nil {
		return nil, err
	}

	if m.resolver == nil {
		return nil, errors.New("mapper: no resolver configured")
	}

	m.logger.Debug("fetching node", "path", path)

	n, err := m.resolver.Fetch(ctx, path)

	switch {
	case errors.Is(err, node.ErrNotFound):
		return nil, ocmerr.Absent(path, err)
	case err != nil:
		return nil, err
	case n == nil:
		return nil, ocmerr.Absent(path, node.ErrNotFound)
	}

	return n, nil
}

// Save converts obj with ToNode and writes the node through w.
func (m *Mapper) Save(ctx context.Context, w node.Writer, obj any) (*node.Node, error) {
	n, err := m.ToNode(obj)
	if err != nil {
		return nil, err
	}

	if err := w.Save(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// Get loads the object of type T stored at path.
func Get[T any](ctx context.Context, m *Mapper, path string) (*T, error) {
	v, err := m.Load(ctx, path, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return v.(*T), nil
}

// ToObjectAs converts n into a *T.
func ToObjectAs[T any](ctx context.Context, m *Mapper, n *node.Node) (*T, error) {
	v, err := m.ToObject(ctx, n, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return v.(*T), nil
}

var _ proxy.Loader = (*Mapper)(nil)
