package main

import (
	"fmt"
	"os"

	"oilgas-backend/internal/engine"
)

func runValidate(dataDir string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "vdsctl validate: expected exactly one VDS code")
		return 2
	}

	eng, err := engine.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl: configuration error: %v\n", err)
		return 3
	}

	result := eng.Validate(args[0])
	code := writeJSON(result, "")
	if code != 0 {
		return code
	}
	if !result.IsValid {
		return 2
	}
	return 0
}
