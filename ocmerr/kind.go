package ocmerr

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind classifies a mapping failure.
type Kind int

const (
	_ Kind = iota // zero value is reserved for "no kind"

	// KindUnmappedType reports a type with no registered descriptor.
	KindUnmappedType
	// KindIncorrectPersistentClass reports a runtime type that has no valid
	// mapping to the persistent node type it is being converted from or to.
	KindIncorrectPersistentClass
	// KindPathNotFound reports that the resolver found nothing at a path.
	KindPathNotFound
	// KindFieldConversion reports a stored value that cannot be converted to
	// the field's type, or the other way around.
	KindFieldConversion
	// KindDuplicateMapping reports a second registration for the same type.
	KindDuplicateMapping
	// KindInvalidMapping reports a descriptor that does not fit its Go type.
	KindInvalidMapping
	// KindInvalidPath reports an empty or malformed store path.
	KindInvalidPath

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// Error lets a Kind be used as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}
