package mapping

import (
	"fmt"
	"reflect"
	"slices"

	"ocm-mapper/internal/analyze"
	"ocm-mapper/internal/diagnostic"
	"ocm-mapper/internal/match"
	"ocm-mapper/proxy"
)

var proxyPkgPath = reflect.TypeFor[proxy.State]().PkgPath()

// Validate checks a mapping file against the given type graph without
// compiling the mapped types into the caller. It reports what Build would
// reject plus warnings and notes that Build cannot see.
func Validate(mf *MappingFile, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if graph == nil {
		res.AddError("graph_is_nil", "type graph is nil", "", "")
		return res
	}

	declaredConverters := map[string]struct{}{}

	for _, c := range mf.Converters {
		if c.Name == "" {
			res.AddError("empty_converter_name", "converter must have a name", "", "")
			continue
		}

		if _, ok := declaredConverters[c.Name]; ok {
			res.AddError("duplicate_converter", fmt.Sprintf("duplicate converter %q", c.Name), "", c.Name)
			continue
		}

		declaredConverters[c.Name] = struct{}{}
	}

	seenTypes := map[*analyze.TypeInfo]string{}
	seenTags := map[string]string{}
	mapped := map[*analyze.TypeInfo]struct{}{}

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]

		t := ResolveTypeID(tm.Type, graph)
		switch {
		case t == nil:
			res.AddError("type_not_found", fmt.Sprintf("type %q not found", tm.Type), tm.Type, "",
				match.Suggest(tm.Type, typeNames(graph), 3)...)

			continue
		case t.Kind != analyze.TypeKindStruct:
			res.AddError("type_not_struct", fmt.Sprintf("type %q is a %s, not a struct", tm.Type, t.Kind), tm.Type, "")
			continue
		}

		if prev, ok := seenTypes[t]; ok {
			res.AddError("duplicate_type", fmt.Sprintf("type already mapped as %q", prev), tm.Type, "")
			continue
		}

		seenTypes[t] = tm.Type
		mapped[t] = struct{}{}

		switch prev, ok := seenTags[tm.JcrType]; {
		case tm.JcrType == "":
			res.AddError("missing_jcr_type", "mapping must specify jcrType", tm.Type, "")
		case ok:
			res.AddError("duplicate_jcr_type", fmt.Sprintf("jcrType %q already used by %s", tm.JcrType, prev), tm.Type, "")
		default:
			seenTags[tm.JcrType] = tm.Type
		}
	}

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]

		t := ResolveTypeID(tm.Type, graph)
		if t == nil || t.Kind != analyze.TypeKindStruct || seenTypes[t] != tm.Type {
			continue
		}

		validateFields(res, tm, t, declaredConverters, mapped)
	}

	return res
}

// validateFields checks the fields of one type mapping.
func validateFields(
	res *diagnostic.Diagnostics,
	tm *TypeMapping,
	t *analyze.TypeInfo,
	converters map[string]struct{},
	mapped map[*analyze.TypeInfo]struct{},
) {
	seenFields := map[string]struct{}{}
	storeNames := map[string]string{}
	identities := 0

	for _, fd := range tm.Fields {
		fm := fd.Mapping()

		fi := t.Field(fm.Field)
		if fi == nil {
			res.AddError("field_not_found", fmt.Sprintf("field %q not found", fm.Field), tm.Type, fm.Field,
				match.Suggest(fm.Field, t.FieldNames(), 3)...)

			continue
		}

		if _, dup := seenFields[fm.Field]; dup {
			res.AddError("duplicate_field", "field mapped twice", tm.Type, fm.Field)
			continue
		}

		seenFields[fm.Field] = struct{}{}

		name := fm.StoreName()
		if prev, dup := storeNames[name]; dup {
			res.AddError("duplicate_store_path", fmt.Sprintf("store path %q already used by %s", name, prev), tm.Type, fm.Field)
		}

		storeNames[name] = fm.Field

		kind := fm.Kind
		if kind == KindAuto {
			kind = inferKindFromInfo(fm, fi.Type)
		}

		if kind == KindIdentity {
			identities++
		} else if _, err := ParsePropertyName(name); err != nil {
			res.AddError("invalid_store_name", err.Error(), tm.Type, fm.Field)
		}

		if fm.Converter != "" {
			if _, ok := converters[fm.Converter]; !ok {
				names := make([]string, 0, len(converters))
				for n := range converters {
					names = append(names, n)
				}

				res.AddError("unknown_converter", fmt.Sprintf("converter %q is not declared", fm.Converter), tm.Type, fm.Field,
					match.Suggest(fm.Converter, names, 3)...)
			}

			continue
		}

		validateKind(res, tm, fm, kind, fi.Type, mapped)
	}

	switch {
	case identities == 0:
		res.AddError("missing_identity", fmt.Sprintf("no field maps to %s", IdentityPath), tm.Type, "")
	case identities > 1:
		res.AddError("multiple_identities", fmt.Sprintf("%d fields map to %s", identities, IdentityPath), tm.Type, "")
	}

	for _, name := range t.FieldNames() {
		if _, ok := seenFields[name]; !ok {
			res.AddInfo("unmapped_field", "field is not mapped", tm.Type, name)
		}
	}
}

// validateKind checks that the Go type of a field fits its kind.
func validateKind(
	res *diagnostic.Diagnostics,
	tm *TypeMapping,
	fm FieldMapping,
	kind FieldKind,
	ft *analyze.TypeInfo,
	mapped map[*analyze.TypeInfo]struct{},
) {
	typeStr := analyze.TypeString(ft)

	switch kind {
	case KindIdentity:
		if !ft.IsString() {
			res.AddError("identity_not_string", fmt.Sprintf("identity field must be a string, got %s", typeStr), tm.Type, fm.Field)
		}

	case KindUUID:
		if !ft.IsString() && !(ft.ID.Name == "UUID" && ft.ID.PkgPath == uuidType.PkgPath()) {
			res.AddError("uuid_type", fmt.Sprintf("uuid field must be a string or uuid.UUID, got %s", typeStr), tm.Type, fm.Field)
		}

	case KindRelation, KindCollection:
		target, lazy, ok := referenceInfo(ft, kind == KindCollection)
		if !ok {
			res.AddError("reference_type", fmt.Sprintf("%s field has unsupported type %s",
				kind, typeStr), tm.Type, fm.Field)

			return
		}

		if fm.Lazy && !lazy {
			res.AddError("lazy_without_proxy", fmt.Sprintf("lazy %s needs a proxy handle, got %s", kind, typeStr), tm.Type, fm.Field)
		}

		if _, ok := mapped[target]; !ok && target.Kind == analyze.TypeKindStruct {
			res.AddWarning("target_unmapped", fmt.Sprintf("target %s has no mapping in these files", target.ID.Short()), tm.Type, fm.Field)
		}

	case KindProperty:
		if !storableInfo(ft) {
			res.AddError("not_storable", fmt.Sprintf("%s cannot be stored as a property", typeStr), tm.Type, fm.Field)
		}
	}
}

func inferKindFromInfo(fm FieldMapping, t *analyze.TypeInfo) FieldKind {
	switch {
	case fm.Path == IdentityPath:
		return KindIdentity
	case t.ID.Name == "UUID" && t.ID.PkgPath == uuidType.PkgPath():
		return KindUUID
	}

	if _, _, ok := referenceInfo(t, false); ok {
		return KindRelation
	}

	if _, _, ok := referenceInfo(t, true); ok {
		return KindCollection
	}

	return KindProperty
}

// referenceInfo is referenceTarget for analyzed types.
func referenceInfo(t *analyze.TypeInfo, multiple bool) (*analyze.TypeInfo, bool, bool) {
	if t.Kind == analyze.TypeKindPointer {
		if h := t.ElemType; h != nil && h.ID.PkgPath == proxyPkgPath && len(h.TypeArgs) == 1 {
			want := "Ref"
			if multiple {
				want = "List"
			}

			return h.TypeArgs[0], true, h.ID.Name == want
		}
	}

	if multiple {
		if t.Kind != analyze.TypeKindSlice {
			return nil, false, false
		}

		t = t.ElemType
	}

	if t == nil || t.Kind != analyze.TypeKindPointer || t.ElemType == nil || t.ElemType.Kind != analyze.TypeKindStruct {
		return nil, false, false
	}

	return t.ElemType, false, true
}

// storableInfo is storable for analyzed types.
func storableInfo(t *analyze.TypeInfo) bool {
	t = t.Deref()

	if slices.Contains([]analyze.TypeKind{analyze.TypeKindSlice, analyze.TypeKindArray}, t.Kind) {
		t = t.ElemType.Deref()
	}

	switch t.Kind {
	case analyze.TypeKindBasic, analyze.TypeKindAlias:
		return true
	case analyze.TypeKindExternal:
		return t.ID == analyze.TypeID{PkgPath: "time", Name: "Time"} ||
			t.ID == analyze.TypeID{PkgPath: "time", Name: "Duration"}
	default:
		return false
	}
}
