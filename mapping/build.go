package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"ocm-mapper/internal/match"
	"ocm-mapper/ocmerr"
)

// TypeName returns the short "pkg.Name" form used in mapping files.
func TypeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.String()
}

// TypesOf indexes values' types by TypeName, for use with Build.
func TypesOf(values ...any) map[string]reflect.Type {
	types := make(map[string]reflect.Type, len(values))

	for _, v := range values {
		t := reflect.TypeOf(v)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		types[TypeName(t)] = t
		types[t.PkgPath()+"."+t.Name()] = t
	}

	return types
}

// Build registers every mapping of mf. types resolves the type names used in
// the file; converters supplies the converters the file declares. All
// failures are reported together.
func Build(mf *MappingFile, types map[string]reflect.Type, converters *ConverterRegistry) (*Registry, error) {
	if mf == nil {
		return nil, ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Message("mapping file is nil"))
	}

	r := NewRegistry(converters)

	var errs []error

	for _, def := range mf.Converters {
		if !r.converters.Has(def.Name) {
			errs = append(errs, ocmerr.New(ocmerr.KindInvalidMapping,
				ocmerr.Message("converter %q is declared but not registered", def.Name)))
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}

	slices.Sort(names)

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]

		t, ok := types[tm.Type]
		if !ok {
			msg := fmt.Sprintf("mapping %d: unknown type %q", i, tm.Type)
			if hint := match.Suggest(tm.Type, names, 1); len(hint) > 0 {
				msg += fmt.Sprintf(" (did you mean %s?)", hint[0])
			}

			errs = append(errs, ocmerr.New(ocmerr.KindUnmappedType, ocmerr.Type(tm.Type), ocmerr.Message(msg)))

			continue
		}

		if slices.ContainsFunc(tm.Fields, func(f FieldDef) bool { return f.Converter != "" && !declared(mf, f.Converter) }) {
			errs = append(errs, ocmerr.New(ocmerr.KindInvalidMapping, ocmerr.Type(t),
				ocmerr.Message("uses a converter missing from the converters section")))

			continue
		}

		fields := make([]FieldMapping, len(tm.Fields))
		for j, f := range tm.Fields {
			fields[j] = f.Mapping()
		}

		if err := r.Register(t, tm.JcrType, fields...); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		errs = append(errs, r.Verify())
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return r, nil
}

func declared(mf *MappingFile, converter string) bool {
	return slices.ContainsFunc(mf.Converters, func(c ConverterDef) bool { return c.Name == converter })
}
