package analyze

import (
	"strings"
)

// TypeString returns a short human-readable representation of a TypeInfo,
// e.g. "*proxy.Ref[testmodel.Detail]" or "[]string".
func TypeString(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case TypeKindBasic:
		return t.GoType.String()

	case TypeKindPointer:
		return "*" + TypeString(t.ElemType)

	case TypeKindSlice:
		return "[]" + TypeString(t.ElemType)

	case TypeKindArray:
		return "[...]" + TypeString(t.ElemType)

	case TypeKindStruct, TypeKindAlias, TypeKindExternal:
		if !t.IsNamed() {
			if t.Kind == TypeKindStruct {
				return "struct{...}"
			}

			return TypeString(t.Underlying)
		}

		name := t.ID.Short()
		if len(t.TypeArgs) == 0 {
			return name
		}

		args := make([]string, len(t.TypeArgs))
		for i, arg := range t.TypeArgs {
			args[i] = TypeString(arg)
		}

		return name + "[" + strings.Join(args, ", ") + "]"

	default:
		if t.GoType != nil {
			return t.GoType.String()
		}

		return "<unknown>"
	}
}
