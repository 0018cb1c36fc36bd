package sat

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// modelFileSolver covers minisat and its descendants, which read a DIMACS file and write the model to a result file
type modelFileSolver struct {
	name string
	path string
}

func NewMinisatSolver(path string) SATSolver {
	return &modelFileSolver{name: Minisat, path: path}
}

func NewGlucoseSimpSolver(path string) SATSolver {
	return &modelFileSolver{name: GlucoseSimp, path: path}
}

func (solver *modelFileSolver) Name() string {
	return solver.name
}

func (solver *modelFileSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	inputFile, err := writeTemp(sat.ToDIMACS())
	if err != nil {
		return nil, err
	}
	defer os.Remove(inputFile)

	outputTempFile, err := os.CreateTemp("", solver.name+"_output-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	outputTempFile.Close()
	defer os.Remove(outputTempFile.Name())

	cmd := exec.CommandContext(ctx, solver.path, "-verb=0", inputFile, outputTempFile.Name())
	_, satisfiable, err := run(ctx, solver.name, cmd)
	if err != nil || !satisfiable {
		return nil, err
	}

	output, err := os.ReadFile(outputTempFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	return parseModelFile(string(output))
}
