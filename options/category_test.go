package options_test

import (
	"fmt"

	"ocm-mapper/options"
)

func ExampleCategoryEnum_Has() {
	c := options.CategoryDefault

	fmt.Println(c.Has(options.CategorySafeNumber))
	fmt.Println(c.Has(options.CategorySafeNumber | options.CategoryUnsafeNumber))
	fmt.Println(c.Any(options.CategorySafeNumber | options.CategoryUnsafeNumber))
	fmt.Println(options.CategoryAll.Has(options.CategoryDefault))
	fmt.Println(options.CategoryNone.Any(options.CategoryAll))
	// Output:
	// true
	// false
	// true
	// true
	// false
}
