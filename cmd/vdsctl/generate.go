package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"golang.org/x/term"

	"oilgas-backend/internal/engine"
	"oilgas-backend/internal/vdserr"
	"oilgas-backend/internal/vdsmodel"
)

func runGenerate(dataDir string, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	flat := fs.Bool("flat", false, "emit the flat fieldName->value view")
	structured := fs.Bool("structured", false, "emit the structured, sectioned view (default)")
	out := fs.String("out", "", "write output to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "vdsctl generate: expected exactly one VDS code")
		return 2
	}
	vdsNo := fs.Arg(0)

	eng, err := engine.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl: configuration error: %v\n", err)
		return 3
	}

	var payload interface{}
	if *flat && !*structured {
		fields, meta, err := eng.GenerateFlat(context.Background(), vdsNo)
		if err != nil {
			return reportEngineError(err)
		}
		payload = map[string]interface{}{"fields": fields, "metadata": meta}
	} else {
		sheet, err := eng.Generate(context.Background(), vdsNo)
		if err != nil {
			return reportEngineError(err)
		}
		payload = sheet
	}

	return writeJSON(payload, *out)
}

// reportEngineError prints err and returns the exit code assigned to its
// error kind.
func reportEngineError(err error) int {
	if ve, ok := err.(*vdserr.Error); ok && ve.Kind == vdserr.KindInputError {
		fmt.Fprintf(os.Stderr, "vdsctl: invalid VDS: %v\n", err)
		return 2
	}
	fmt.Fprintf(os.Stderr, "vdsctl: %v\n", err)
	return 3
}

// writeJSON writes payload to path, or stdout when path is empty. A file
// destination and a piped stdout both get raw indented JSON. A stdout
// connected to a terminal (golang.org/x/term) instead goes through
// renderHuman: datasheets get an aligned, human-readable column render,
// while other payloads (batch results, validate results) are still printed
// as indented JSON.
func writeJSON(payload interface{}, path string) int {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl: encoding output: %v\n", err)
		return 4
	}

	if path == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			renderHuman(os.Stdout, payload)
		} else {
			os.Stdout.Write(data)
			os.Stdout.Write([]byte("\n"))
		}
		return 0
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vdsctl: writing %s: %v\n", path, err)
		return 4
	}
	return 0
}

// renderHuman writes payload as tab-aligned "field\tvalue" columns grouped
// by section. It understands a vdsmodel.Datasheet and the flat
// map[string]interface{}{"fields": ..., "metadata": ...} shape produced by
// --flat; anything else falls back to indented JSON.
func renderHuman(w io.Writer, payload interface{}) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch v := payload.(type) {
	case vdsmodel.Datasheet:
		fmt.Fprintf(tw, "VDS\t%s\n", v.Metadata.VDSNo)
		fmt.Fprintf(tw, "STATUS\t%s (%.0f%% complete)\n", v.Metadata.ValidationStatus, v.Metadata.Completion.Percentage)
		for _, section := range v.Sections {
			fmt.Fprintf(tw, "\n%s\t\n", section.Name)
			for _, f := range section.Fields {
				fmt.Fprintf(tw, "  %s\t%s\n", f.DisplayName, f.Value)
			}
		}
	case map[string]interface{}:
		if meta, ok := v["metadata"].(vdsmodel.Metadata); ok {
			fmt.Fprintf(tw, "VDS\t%s\n", meta.VDSNo)
			fmt.Fprintf(tw, "STATUS\t%s (%.0f%% complete)\n", meta.ValidationStatus, meta.Completion.Percentage)
			fmt.Fprintln(tw)
		}
		if fields, ok := v["fields"].(map[string]string); ok {
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(tw, "  %s\t%s\n", name, fields[name])
			}
		} else {
			data, _ := json.MarshalIndent(payload, "", "  ")
			fmt.Fprintln(tw, string(data))
		}
	default:
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintln(tw, string(data))
	}
}
