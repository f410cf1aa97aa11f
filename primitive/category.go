package primitive

import "ocm-mapper/options"

type ConversionPair struct {
	From, To KindEnum
}

var conversionCategories map[ConversionPair]options.CategoryEnum

func init() {
	conversionCategories = make(map[ConversionPair]options.CategoryEnum)

	add := func(category options.CategoryEnum, pairs ...ConversionPair) {
		for _, pair := range pairs {
			conversionCategories[pair] |= category
		}
	}

	// number <-> number: the value decides whether the conversion is safe
	for fromKind := KindEnum(0); int(fromKind) < KindTotal; fromKind++ {
		if !fromKind.IsNumber() {
			continue
		}

		for toKind := KindEnum(0); int(toKind) < KindTotal; toKind++ {
			if !toKind.IsNumber() {
				continue
			}

			add(options.CategorySafeNumber|options.CategoryUnsafeNumber, ConversionPair{fromKind, toKind})
		}
	}

	for kind := KindEnum(0); int(kind) < KindTotal; kind++ {
		if kind.IsNumber() {
			add(options.CategoryTextNumber,
				ConversionPair{kind, KindString},
				ConversionPair{KindString, kind})
		}

		if kind.IsInteger() {
			add(options.CategoryNumericBool,
				ConversionPair{kind, KindBool},
				ConversionPair{KindBool, kind})
			add(options.CategoryTimestamp,
				ConversionPair{kind, KindTime},
				ConversionPair{KindTime, kind})
			add(options.CategoryNanoseconds,
				ConversionPair{kind, KindDuration},
				ConversionPair{KindDuration, kind})
		}

		if kind.IsFloat() {
			add(options.CategorySeconds,
				ConversionPair{kind, KindDuration},
				ConversionPair{KindDuration, kind})
		}
	}

	add(options.CategoryTextualBool, ConversionPair{KindString, KindBool}, ConversionPair{KindBool, KindString})
	add(options.CategoryDatetime, ConversionPair{KindString, KindTime}, ConversionPair{KindTime, KindString})
	add(options.CategoryDuration, ConversionPair{KindString, KindDuration}, ConversionPair{KindDuration, KindString})
	add(options.CategoryEnumString,
		ConversionPair{KindString, KindPrimitiveEnum},
		ConversionPair{KindPrimitiveEnum, KindString},
		ConversionPair{KindPrimitiveEnum, KindPrimitiveEnum})
}

// CategoriesOf returns the categories that enable a conversion pair. Zero means
// the pair is never convertible.
func CategoriesOf(pair ConversionPair) options.CategoryEnum {
	if pair.From == pair.To && pair.From != 0 {
		return options.CategoryAll
	}

	return conversionCategories[pair]
}
