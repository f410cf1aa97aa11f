package mapping

import (
	"fmt"
	"strings"

	"ocm-mapper/internal/analyze"
	"ocm-mapper/internal/diagnostic"
	"ocm-mapper/internal/match"
)

// Scaffold proposes a mapping file for the named struct types of graph.
// Property names and type tags are derived from Go names under prefix
// (e.g. "ocm:"); a string field named like "Path" becomes the identity.
// Fields that cannot be stored are left out and reported as infos.
func Scaffold(graph *analyze.TypeGraph, prefix string, typeIDs ...string) (*MappingFile, *diagnostic.Diagnostics) {
	mf := &MappingFile{Version: "1"}
	res := &diagnostic.Diagnostics{}

	for _, id := range typeIDs {
		t := ResolveTypeID(id, graph)

		switch {
		case t == nil:
			res.AddError("type_not_found", fmt.Sprintf("type %q not found", id), id, "",
				match.Suggest(id, typeNames(graph), 3)...)

			continue
		case t.Kind != analyze.TypeKindStruct:
			res.AddError("type_not_struct", fmt.Sprintf("type %q is a %s", id, t.Kind), id, "")
			continue
		}

		mf.TypeMappings = append(mf.TypeMappings, scaffoldType(t, prefix, res))
	}

	return mf, res
}

func scaffoldType(t *analyze.TypeInfo, prefix string, res *diagnostic.Diagnostics) TypeMapping {
	name := t.ID.Short()
	tm := TypeMapping{
		Type:    name,
		JcrType: prefix + match.LowerCamel(t.ID.Name),
	}

	identity := false

	for _, f := range t.Fields {
		if !f.Exported || f.Embedded {
			continue
		}

		if !identity && f.Type.IsString() && match.NormalizeIdent(f.Name) == "path" {
			tm.Fields = append(tm.Fields, FieldDef{Field: f.Name, Path: IdentityPath})
			identity = true

			continue
		}

		fd := FieldDef{Field: f.Name, Path: prefix + match.LowerCamel(f.Name)}

		switch inferKindFromInfo(fd.Mapping(), f.Type) {
		case KindUUID:
			fd = FieldDef{Field: f.Name, Kind: KindUUID}

		case KindRelation:
			_, lazy, _ := referenceInfo(f.Type, false)
			fd.Lazy = lazy

		case KindCollection:
			_, lazy, _ := referenceInfo(f.Type, true)
			fd.Lazy = lazy

		default:
			if !storableInfo(f.Type) {
				res.AddInfo("skipped_field", fmt.Sprintf("%s cannot be stored as a property", typeLabel(f.Type)), name, f.Name)
				continue
			}
		}

		tm.Fields = append(tm.Fields, fd)
	}

	if !identity {
		res.AddWarning("missing_identity", "no string Path field, add an identity field before use", name, "")
	}

	return tm
}

func typeLabel(t *analyze.TypeInfo) string {
	if s := analyze.TypeString(t); s != "" {
		return s
	}

	return strings.ToLower(t.Kind.String())
}
