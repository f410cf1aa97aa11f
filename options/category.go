package options

// CategoryEnum is a bit set of conversion families the mapper may apply when a
// stored value and a struct field disagree on type.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int, uint, float when the value survives the conversion unchanged
	CategoryUnsafeNumber                          // int, uint, float with truncation, wrap-around or precision loss
	CategoryTextNumber                            // int, uint, float <-> string: textual number representation
	CategoryNumericBool                           // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                             // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                              // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                           // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                               // float(seconds) <-> time.Duration: numerical (floating-point) duration representation
	CategoryEnumString                            // string <-> enum: string-based enum types, checked with IsValid when available
	CategorySafeArray                             // multi-value <-> array: values fit the array exactly
	CategoryUnsafeArray                           // multi-value <-> array: extra values are cut, missing ones left zero

	CategoryAll  CategoryEnum = (1 << iota) - 1 //all categories combined
	CategoryNone CategoryEnum = 0               // no categories selected

	// CategoryDefault covers every lossless conversion; lossy families are opt-in.
	CategoryDefault = CategorySafeNumber | CategoryTextNumber | CategoryTextualBool |
		CategoryDatetime | CategoryDuration | CategoryEnumString | CategorySafeArray
)

// Has reports whether every category in want is enabled in c.
func (c CategoryEnum) Has(want CategoryEnum) bool {
	return c&want == want
}

// Any reports whether at least one category in want is enabled in c.
func (c CategoryEnum) Any(want CategoryEnum) bool {
	return c&want != 0
}
