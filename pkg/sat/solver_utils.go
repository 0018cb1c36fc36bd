package sat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Exit codes shared by the SAT competition solvers
const (
	satisfiableExitCode   = 10
	unsatisfiableExitCode = 20
)

// run executes a solver and reports whether the instance was found satisfiable
func run(ctx context.Context, name string, cmd *exec.Cmd) (stdout string, satisfiable bool, err error) {
	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", false, fmt.Errorf("cannot execute %v: %w", name, err)
	}
	switch cmd.ProcessState.ExitCode() {
	case satisfiableExitCode:
		return stdOut.String(), true, nil
	case unsatisfiableExitCode:
		return stdOut.String(), false, nil
	}
	return "", false, fmt.Errorf("an error occurred during %v execution: exit code %d: %v", name, cmd.ProcessState.ExitCode(), stderr.String())
}

// parseSolution extracts the model from the "v ..." lines of a solver's standard output
func parseSolution(solverOutput string) (SATSolution, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	return parseLiterals(lo.FlatMap(lines, func(line string, _ int) []string {
		return strings.Fields(line[1:])
	}))
}

// parseModelFile extracts the model from a minisat-style result file ("SAT" followed by the literals)
func parseModelFile(output string) (SATSolution, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty solver result file")
	}
	if fields[0] != "SAT" {
		return nil, fmt.Errorf("unexpected solver result \"%v\"", fields[0])
	}
	return parseLiterals(fields[1:])
}

func parseLiterals(fields []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		literal, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if literal != 0 {
			solution = append(solution, literal)
		}
	}
	return solution, nil
}
