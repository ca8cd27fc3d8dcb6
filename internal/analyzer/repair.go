package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RepairResult reports what Repair did to one file.
type RepairResult struct {
	AlreadyValid bool
	Fixed        bool
	CurlyAdded   int
	SquareAdded  int
}

// Repair closes a findings array that was truncated by an interrupted run.
// It appends the missing closing brackets, verifies the result parses, and
// only then writes the file back. Files that already parse are untouched;
// files broken in some other way are left alone and reported as an error.
func Repair(path string) (RepairResult, error) {
	var res RepairResult

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("failed to read %q: %w", path, err)
	}
	content := string(data)

	if json.Valid(data) {
		res.AlreadyValid = true
		return res, nil
	}

	res.CurlyAdded = strings.Count(content, "{") - strings.Count(content, "}")
	res.SquareAdded = strings.Count(content, "[") - strings.Count(content, "]")
	if res.CurlyAdded < 0 {
		res.CurlyAdded = 0
	}
	if res.SquareAdded < 0 {
		res.SquareAdded = 0
	}
	if res.CurlyAdded == 0 && res.SquareAdded == 0 {
		return res, fmt.Errorf("%q is invalid but not truncated, refusing to modify", path)
	}

	fixed := strings.TrimRight(content, " \t\r\n")
	// a partial trailing object cannot be completed, drop it and close the
	// array after the last complete element
	if res.CurlyAdded > 0 {
		if idx := strings.LastIndex(fixed, "},"); idx >= 0 {
			fixed = fixed[:idx+1]
			res.CurlyAdded = strings.Count(fixed, "{") - strings.Count(fixed, "}")
			res.SquareAdded = strings.Count(fixed, "[") - strings.Count(fixed, "]")
		}
	}
	fixed += strings.Repeat("}", res.CurlyAdded)
	fixed += strings.Repeat("]", res.SquareAdded)

	if !json.Valid([]byte(fixed)) {
		return res, fmt.Errorf("could not repair %q: result still invalid", path)
	}

	if err := os.WriteFile(path, []byte(fixed), 0644); err != nil {
		return res, fmt.Errorf("failed to write repaired file: %w", err)
	}
	res.Fixed = true
	return res, nil
}
