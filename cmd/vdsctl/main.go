// vdsctl is the CLI surface for the VDS datasheet engine.
package main

import (
	"fmt"
	"os"
)

const usage = `vdsctl — VDS datasheet engine CLI

Usage:
  vdsctl generate <vdsNo> [--flat|--structured] [--out path]
  vdsctl batch <file-of-vds-codes>
  vdsctl validate <vdsNo>
  vdsctl serve [--host host] [--port port]

Exit codes: 0 success, 2 invalid VDS, 3 configuration error, 4 I/O error.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	dataDir := os.Getenv("VDS_DATA_DIR")
	if dataDir == "" {
		dataDir = "testdata/data"
	}

	var code int
	switch os.Args[1] {
	case "generate":
		code = runGenerate(dataDir, os.Args[2:])
	case "batch":
		code = runBatch(dataDir, os.Args[2:])
	case "validate":
		code = runValidate(dataDir, os.Args[2:])
	case "serve":
		code = runServe(dataDir, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		code = 0
	default:
		fmt.Fprintf(os.Stderr, "vdsctl: unknown command %q\n\n%s", os.Args[1], usage)
		code = 2
	}
	os.Exit(code)
}
