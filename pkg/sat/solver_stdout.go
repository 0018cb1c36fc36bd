package sat

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// stdoutSolver covers solvers printing the model to standard output. The formula is fed through
// standard input unless fileInput is set, in which case a temporary DIMACS file is passed as the last argument.
type stdoutSolver struct {
	name      string
	path      string
	args      []string
	fileInput bool
}

func NewKissatSolver(path string) SATSolver {
	return &stdoutSolver{name: Kissat, path: path, args: []string{"-q", "--relaxed"}}
}

func NewCadicalSolver(path string) SATSolver {
	return &stdoutSolver{name: Cadical, path: path, args: []string{"-q"}}
}

func NewCryptominisatSolver(path string) SATSolver {
	return &stdoutSolver{name: Cryptominisat, path: path, args: []string{"--verb", "0"}}
}

func NewSlimeSolver(path string) SATSolver {
	return &stdoutSolver{name: Slime, path: path, fileInput: true}
}

func NewOrtoolsatSolver(path string) SATSolver {
	return &stdoutSolver{name: Ortoolsat, path: path, fileInput: true}
}

func (solver *stdoutSolver) Name() string {
	return solver.name
}

func (solver *stdoutSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	dimacs := sat.ToDIMACS() // Transform SAT into DIMACS-CNF string format

	cmd := exec.CommandContext(ctx, solver.path, solver.args...)
	if solver.fileInput {
		inputFile, err := writeTemp(dimacs)
		if err != nil {
			return nil, err
		}
		defer os.Remove(inputFile)
		cmd.Args = append(cmd.Args, inputFile)
	} else {
		cmd.Stdin = strings.NewReader(dimacs) // Feed dimacs into the solver's standard input
	}

	output, satisfiable, err := run(ctx, solver.name, cmd)
	if err != nil || !satisfiable {
		return nil, err
	}
	return parseSolution(output)
}

func writeTemp(dimacs string) (string, error) {
	inputTempFile, err := os.CreateTemp("", "dimacs-*.cnf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := inputTempFile.WriteString(dimacs); err != nil {
		inputTempFile.Close()
		os.Remove(inputTempFile.Name())
		return "", fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
	}
	if err := inputTempFile.Close(); err != nil {
		os.Remove(inputTempFile.Name())
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}
	return inputTempFile.Name(), nil
}
