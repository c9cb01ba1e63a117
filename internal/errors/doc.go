// Package errors provides coded, actionable error messages for the vuey CLI.
//
// Each code maps to a category, a short message, a longer explanation and a
// documentation link. Errors from pkg/store and pkg/persist are classified
// into codes with FromError, so the CLI can print one consistent format:
//
//	err := errors.New("V001").
//	    WithDetail(`store "cart" is already registered`).
//	    WithSuggestion("Pick a different name or reuse the existing store")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR V001: Duplicate store name
//	//
//	//   store "cart" is already registered
//	//
//	//   Hint: Pick a different name or reuse the existing store
//	//
//	//   Learn more: https://vuey.dev/docs/errors/V001
//
// Config errors can carry a file location; Format then prints the lines
// around it.
package errors
