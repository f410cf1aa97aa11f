package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"ocm-mapper/internal/match"
	"ocm-mapper/mapper"
	"ocm-mapper/mapping"
	"ocm-mapper/node"
	"ocm-mapper/proxy"
)

var errNoTypes = errors.New("no Go types are linked into this binary, build it with cli.WithTypes to use --as")

// lookupType finds a linked type by any of its registered names or by an
// unambiguous short name (Person).
func (a *app) lookupType(name string) (reflect.Type, error) {
	if len(a.types) == 0 {
		return nil, errNoTypes
	}

	if t, ok := a.types[name]; ok {
		return t, nil
	}

	names := make([]string, 0, len(a.types))
	for n := range a.types {
		names = append(names, n)
	}

	slices.Sort(names)

	var found []reflect.Type

	for _, n := range names {
		if t := a.types[n]; strings.HasSuffix(n, "."+name) && !slices.Contains(found, t) {
			found = append(found, t)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		if hint := match.Suggest(name, names, 1); len(hint) > 0 {
			return nil, fmt.Errorf("unknown type %q (did you mean %s?)", name, hint[0])
		}

		return nil, fmt.Errorf("unknown type %q", name)
	default:
		return nil, fmt.Errorf("type %q is ambiguous: %v", name, found)
	}
}

// newMapper builds a mapper from the mapping files matched by patterns,
// reading through s.
func (a *app) newMapper(s node.Resolver, patterns []string) (*mapper.Mapper, error) {
	if len(patterns) == 0 {
		patterns = a.cfg.Mappings
	}

	mf, files, err := mapping.LoadGlob(patterns...)
	if err != nil {
		return nil, err
	}

	registry, err := mapping.Build(mf, a.types, a.converters)
	if err != nil {
		return nil, fmt.Errorf("build mappings: %w", err)
	}

	a.logger.Debug("built mappings", "files", len(files), "types", len(registry.All()))

	return mapper.New(registry, s, mapper.WithLogger(a.logger)), nil
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}

// printObject dumps obj. With resolve, each lazy field is resolved and its
// state and target are dumped after the object.
func printObject(ctx context.Context, out io.Writer, obj any, resolve bool) error {
	dumper.Fdump(out, obj)

	if !resolve {
		return nil
	}

	v := reflect.Indirect(reflect.ValueOf(obj))

	for i := range v.NumField() {
		f := v.Type().Field(i)
		if !f.IsExported() || !proxy.IsHandle(f.Type) || v.Field(i).IsNil() {
			continue
		}

		h := v.Field(i).Interface().(proxy.Handle)

		target, err := h.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f.Name, err)
		}

		fmt.Fprintf(out, "%s -> %s\n", f.Name, h.State())

		if target != nil {
			dumper.Fdump(out, target)
		}
	}

	return nil
}
