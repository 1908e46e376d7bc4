package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/polyface"
)

// App evaluates scripts and converts the emitted scene for display.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel *sdfx.SdfxKernel
}

// MeshData is the JSON-serializable mesh format sent to viewers.
type MeshData struct {
	kernel.Mesh
	Color  string `json:"color"`
	Points int    `json:"points"` // welded polyface points
	Faces  int    `json:"faces"`  // polyface faces before triangulation
}

// ValueData is an emitted number or boolean.
type ValueData struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation. Slices are never nil
// so they serialize as [].
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Values []ValueData     `json:"values"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App whose engine and sdfx kernel follow cfg.
func NewAppWithConfig(cfg config.Config) *App {
	k := sdfx.New(sdfx.WithCells(cfg.Cells))
	return &App{
		cfg:    cfg,
		kernel: k,
		engine: engine.NewEngine(
			engine.WithKernel(k),
			engine.WithTolerances(cfg.Tolerances),
			engine.WithTriangulate(cfg.Triangulate),
		),
	}
}

// Evaluate takes script source and returns mesh data, values and errors.
func (a *App) Evaluate(source string) EvalResult {
	result, _ := a.evaluate(source)
	return result
}

// evaluate also returns the scene, which is nil when evaluation failed.
func (a *App) evaluate(source string) (EvalResult, *engine.Scene) {
	result := EvalResult{
		Meshes: []MeshData{},
		Values: []ValueData{},
		Errors: []EvalErrorData{},
	}
	log := polyface.Logger()

	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Error("evaluate", slog.Any("error", err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result, nil
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result, nil
	}

	for i, nm := range scene.Meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Mesh:   *kernel.NewMesh(nm.Mesh, nm.Name),
			Color:  a.cfg.Palette[i%len(a.cfg.Palette)],
			Points: nm.Mesh.PointCount(),
			Faces:  nm.Mesh.FaceCount(),
		})
	}
	for _, v := range scene.Values {
		result.Values = append(result.Values, ValueData{Name: v.Name, Value: v.Value})
	}
	log.Debug("evaluate",
		slog.Int("meshes", len(result.Meshes)),
		slog.Int("values", len(result.Values)))
	return result, scene
}

// errNoSolids is returned by ExportSTL when the script emitted no solids.
var errNoSolids = errors.New("script emitted no solids")

// ExportSTL evaluates source and writes the union of every emitted solid
// to path.
func (a *App) ExportSTL(source, path string) (EvalResult, error) {
	result, scene := a.evaluate(source)
	if scene == nil {
		return result, fmt.Errorf("export stl: evaluation failed")
	}
	var solid kernel.Solid
	for _, nm := range scene.Meshes {
		switch {
		case nm.Solid == nil:
		case solid == nil:
			solid = nm.Solid
		default:
			solid = a.kernel.Union(solid, nm.Solid)
		}
	}
	if solid == nil {
		return result, fmt.Errorf("export stl: %w", errNoSolids)
	}
	if err := a.kernel.SaveSTL(path, solid); err != nil {
		return result, fmt.Errorf("export stl: %w", err)
	}
	return result, nil
}
