package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"oilgas-backend/internal/engine"
)

func runBatch(dataDir string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "vdsctl batch: expected exactly one file-of-vds-codes path")
		return 2
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl batch: reading %s: %v\n", args[0], err)
		return 4
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl batch: reading %s: %v\n", args[0], err)
		return 4
	}

	eng, err := engine.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl: configuration error: %v\n", err)
		return 3
	}

	results := eng.Batch(context.Background(), codes)
	return writeJSON(results, "")
}
