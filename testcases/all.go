package testcases

// All contains all test cases, grouped by category.
// The category name is used as a prefix in generated file names.
var All = map[string][]Case{
	"stroke":    strokeCases,
	"shape":     shapeCases,
	"highlight": highlightCases,
	"mixed":     mixedCases,
}
