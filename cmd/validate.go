package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
)

type validationProblem struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type validationResult struct {
	File     string              `json:"file"`
	Valid    bool                `json:"valid"`
	Blocks   int                 `json:"blocks"`
	Problems []validationProblem `json:"problems,omitempty"`
}

var errInvalidDocuments = errors.New("one or more documents are invalid")

func newValidateCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check content documents against the built-in block schemas",
		Long: `Validate reads each JSON document ("-" for stdin) and reports every structural
problem with its JSONPath. It exits non-zero when any document is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q", format)
			}
			var results []validationResult
			for _, name := range args {
				raw, err := readInput(cmd, name)
				if err != nil {
					return err
				}
				results = append(results, validateDocument(catalog.Default(), name, raw))
			}
			if err := printResults(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Valid {
					return errInvalidDocuments
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	return cmd
}

func validateDocument(reg *content.Registry, name string, raw []byte) validationResult {
	res := validationResult{File: name}
	doc, err := content.Validate(reg, raw)
	if err != nil {
		for _, ve := range content.ValidationErrors(err) {
			res.Problems = append(res.Problems, validationProblem{Path: ve.Path, Reason: ve.Reason})
		}
		return res
	}
	res.Valid = true
	doc.Walk(func(content.Block, int) bool {
		res.Blocks++
		return true
	})
	return res
}

func printResults(w io.Writer, format string, results []validationResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "ok    %s (%d blocks)\n", r.File, r.Blocks)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s\n", r.File)
		for _, p := range r.Problems {
			fmt.Fprintf(w, "      %s: %s\n", p.Path, p.Reason)
		}
	}
	return nil
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}
