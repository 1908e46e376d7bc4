// Command facet evaluates geometry scripts: solids and polyface meshes,
// plane-set clipping and frustum overlap.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/polyface"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "facet",
		Short:        "Evaluate facet geometry scripts",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newEvalCmd())
	return root
}

type evalFlags struct {
	config  string
	stl     string
	json    bool
	verbose bool
}

func newEvalCmd() *cobra.Command {
	var f evalFlags
	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a script and report what it emits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML or YAML settings file")
	cmd.Flags().StringVar(&f.stl, "stl", "", "write the union of emitted solids to this STL file")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")
	return cmd
}

func runEval(cmd *cobra.Command, path string, f evalFlags) error {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return err
		}
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if f.verbose {
		level = slog.LevelDebug
	}
	polyface.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	defer polyface.SetLogger(nil)

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	app := NewAppWithConfig(cfg)
	var result EvalResult
	if f.stl != "" {
		result, err = app.ExportSTL(string(source), f.stl)
	} else {
		result = app.Evaluate(string(source))
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
	} else {
		printSummary(out, result)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %d error(s)", path, len(result.Errors))
	}
	return err
}

func printSummary(w io.Writer, r EvalResult) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	for _, m := range r.Meshes {
		fmt.Fprintf(w, "mesh %s: %d points, %d faces, %d triangles\n", m.Name, m.Points, m.Faces, m.TriangleCount())
	}
	for _, v := range r.Values {
		fmt.Fprintf(w, "%s = %v\n", v.Name, v.Value)
	}
}
