package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuanzac/submarine/internal/depttree"
)

func newTreeCmd(opts *globalOpts) *cobra.Command {
	var (
		deptCode string
		deptName string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the department tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			page, err := c.DepartmentTree(cmd.Context(), deptCode, deptName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, page)
			}
			if page.ShowAlert {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: department parents are inconsistent, showing a flat list")
			}
			printForest(out, page.Records)
			fmt.Fprintf(out, "total: %d\n", page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&deptCode, "code", "", "Filter by department code (substring)")
	cmd.Flags().StringVar(&deptName, "name", "", "Filter by department name (substring)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSelectCmd(opts *globalOpts) *cobra.Command {
	var disable string
	cmd := &cobra.Command{
		Use:   "select-list",
		Short: "Print the flattened department list used by parent pickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			list, err := c.DepartmentSelectList(cmd.Context(), disable)
			if err != nil {
				return err
			}
			printSelectList(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().StringVar(&disable, "disable", "", "Department code whose subtree is disabled")
	return cmd
}

func newExportCmd(opts *globalOpts) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the department export as xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			data, err := c.ExportDepartments(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "departments.xlsx", "Output file")
	return cmd
}

func printForest(w io.Writer, forest []*depttree.Node) {
	depttree.Walk(forest, func(n *depttree.Node) {
		fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", n.Depth), n.DeptCode, n.DeptName)
	})
}

func printSelectList(w io.Writer, list []depttree.SelectEntry) {
	for _, e := range list {
		mark := " "
		if e.Disabled {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s%s  %s\n", mark, strings.Repeat("  ", e.Depth), e.DeptCode, e.DeptName)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
