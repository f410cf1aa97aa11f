// Package ocmerr defines the mapping error taxonomy.
//
// Every mapping failure is an *Error carrying a Kind, a message, the offending
// type and store path when known, and an optional underlying cause. There is a
// single constructor, New, configured with options:
//
//	ocmerr.New(ocmerr.KindPathNotFound, ocmerr.Path(p), ocmerr.Cause(err))
//	ocmerr.New(ocmerr.KindFieldConversion, ocmerr.Message("cannot convert %T", v))
//
// Kinds double as errors.Is targets:
//
//	if errors.Is(err, ocmerr.KindIncorrectPersistentClass) { ... }
package ocmerr
