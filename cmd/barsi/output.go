package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	outputMarkdown = "markdown"
	outputJSON     = "json"
	outputYAML     = "yaml"
)

func outputFlag(f *flag.FlagSet, dst *string) {
	f.StringVar(dst, "o", outputMarkdown, "output format: markdown, json or yaml")
}

// emit writes v in the requested format. markdown is built lazily.
func emit(format string, v any, markdown func() string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputMarkdown, "":
		return render(markdown())
	default:
		return fmt.Errorf("%w: unknown output format %q", errUsage, format)
	}
}

func printList(format string, items []string) error {
	return emit(format, items, func() string {
		var md string
		for _, item := range items {
			md += "- " + item + "\n"
		}
		if md == "" {
			md = "_Nothing to show._\n"
		}
		return md
	})
}
