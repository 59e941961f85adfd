// Command export writes the markup test cases to JSON files.
//
// testdata/testcases.json lists all test cases together with their page
// sizes.  In addition, the markup of every test case is written to
// testdata/markup/<name>.json, in the format read by the markup command.
package main

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/testcases"
)

const outDir = "testdata"

func main() {
	if err := os.MkdirAll(filepath.Join(outDir, "markup"), 0o755); err != nil {
		panic(err)
	}

	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			jtc := toJSON(category, tc)
			out.TestCases = append(out.TestCases, jtc)

			path := filepath.Join(outDir, "markup", jtc.Name+".json")
			if err := writeJSON(path, jtc.Markup); err != nil {
				panic(err)
			}
		}
	}

	if err := writeJSON(filepath.Join(outDir, "testcases.json"), out); err != nil {
		panic(err)
	}
}

type jsonTestCase struct {
	Name   string     `json:"name"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Items  int        `json:"items"`
	Markup markup.Set `json:"markup"`
}

func toJSON(category string, tc testcases.Case) jsonTestCase {
	return jsonTestCase{
		Name:   category + "_" + tc.Name,
		Width:  tc.Page.URx - tc.Page.LLx,
		Height: tc.Page.URy - tc.Page.LLy,
		Items:  tc.Items(),
		Markup: markup.Set{
			Strokes: markup.StrokesByPage{0: tc.Strokes},
			Shapes:  markup.ShapesByPage{0: tc.Shapes},
		},
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
