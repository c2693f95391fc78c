package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keyprune/internal/compiler"
	"github.com/roach88/keyprune/internal/store"
)

// CatalogOptions holds flags shared by the catalog subcommands.
type CatalogOptions struct {
	DBPath string
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the table catalog",
		Long: `Manage the SQLite catalog of table definitions that "keyprune analyze
--db" reads sorting keys from.`,
	}
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "keyprune.db", "catalog database path")

	cmd.AddCommand(newCatalogImportCommand(rootOpts, opts))
	cmd.AddCommand(newCatalogListCommand(rootOpts, opts))
	cmd.AddCommand(newCatalogShowCommand(rootOpts, opts))
	return cmd
}

func newCatalogImportCommand(rootOpts *RootOptions, opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.cue>",
		Short: "Compile, validate and store table definitions",
		Long: `Compile every table in a CUE file, validate it and write it to the
catalog. Tables whose definition is unchanged are left alone.`,
		Example: `  keyprune catalog import schema/hits.cue --db catalog.db`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			path := args[0]

			src, err := os.ReadFile(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read schema", err)
			}
			specs, err := compiler.CompileSource(path, src)
			if err != nil {
				out.Error("E_COMPILE", err.Error(), nil)
				return WrapExitError(ExitFailure, "compilation failed", err)
			}

			var invalid []compiler.ValidationError
			for i := range specs {
				invalid = append(invalid, compiler.Validate(&specs[i])...)
			}
			if len(invalid) > 0 {
				out.Error("E_VALIDATION", fmt.Sprintf("%d validation error(s)", len(invalid)), invalid)
				if out.Format != "json" {
					for _, e := range invalid {
						fmt.Fprintf(out.Writer, "  %s\n", e.Error())
					}
				}
				return NewExitError(ExitFailure, "validation failed")
			}

			st, err := store.Open(opts.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open catalog", err)
			}
			defer st.Close()

			type imported struct {
				Table   string `json:"table"`
				Changed bool   `json:"changed"`
			}
			var data []imported
			var sb strings.Builder
			for _, spec := range specs {
				changed, err := st.WriteTable(ctxOf(cmd), spec)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to write table "+spec.Name, err)
				}
				data = append(data, imported{Table: spec.Name, Changed: changed})
				state := "unchanged"
				if changed {
					state = "written"
				}
				fmt.Fprintf(&sb, "%s: %s\n", spec.Name, state)
			}
			return out.Success(data, sb.String())
		},
	}
}

func newCatalogListCommand(rootOpts *RootOptions, opts *CatalogOptions) *cobra.Command {
	var keyColumn string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			st, err := store.Open(opts.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open catalog", err)
			}
			defer st.Close()

			tables, err := st.ListTables(ctxOf(cmd))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list tables", err)
			}
			if keyColumn != "" {
				names, err := st.TablesByKeyColumn(ctxOf(cmd), keyColumn)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to list tables", err)
				}
				keep := make(map[string]bool, len(names))
				for _, n := range names {
					keep[n] = true
				}
				filtered := tables[:0]
				for _, t := range tables {
					if keep[t.Name] {
						filtered = append(filtered, t)
					}
				}
				tables = filtered
			}

			var sb strings.Builder
			for _, t := range tables {
				fmt.Fprintf(&sb, "%s  ORDER BY %s\n", t.Name, t.SortingKey)
			}
			if len(tables) == 0 {
				sb.WriteString("no tables\n")
			}
			return out.Success(tables, sb.String())
		},
	}
	cmd.Flags().StringVar(&keyColumn, "key-column", "", "only tables whose sorting key has this column")
	return cmd
}

func newCatalogShowCommand(rootOpts *RootOptions, opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <table>",
		Short: "Show a table's columns and sorting key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			st, err := store.Open(opts.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open catalog", err)
			}
			defer st.Close()

			t, err := st.ReadTable(ctxOf(cmd), args[0])
			if errors.Is(err, store.ErrNotFound) {
				out.Error("E_NOT_FOUND", fmt.Sprintf("table %s not found", args[0]), nil)
				return NewExitError(ExitCommandError, "table not found")
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read table", err)
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "table %s (%s)\n", t.Spec.Name, t.Hash)
			for _, c := range t.Spec.Columns {
				fmt.Fprintf(&sb, "  %s %s\n", c.Name, c.Type)
			}
			fmt.Fprintf(&sb, "ORDER BY %s\n", t.Spec.SortingKey)
			for _, k := range t.KeyColumns {
				fmt.Fprintf(&sb, "  [%d] %s %s\n", k.Position, k.Name, k.DataType)
			}

			type keyColumn struct {
				Position int    `json:"position"`
				Name     string `json:"name"`
				DataType string `json:"data_type"`
			}
			keys := make([]keyColumn, len(t.KeyColumns))
			for i, k := range t.KeyColumns {
				keys[i] = keyColumn{Position: k.Position, Name: k.Name, DataType: k.DataType}
			}
			data := struct {
				Table      any         `json:"table"`
				Hash       string      `json:"spec_hash"`
				KeyColumns []keyColumn `json:"key_columns"`
			}{t.Spec, t.Hash, keys}
			return out.Success(data, sb.String())
		},
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
