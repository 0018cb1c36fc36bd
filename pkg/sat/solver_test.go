package sat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// (x1 ∨ x2) ∧ (¬x1 ∨ x3) ∧ (¬x2 ∨ ¬x3) ∧ (x2 ∨ x3)
const satisfiableDIMACS = `c small satisfiable instance
p cnf 3 4
1 2 0
-1 3 0
-2 -3 0
2 3 0
`

// x1 ∧ ¬x1
const unsatisfiableDIMACS = `p cnf 1 2
1 0
-1 0
`

func TestToDIMACS(t *testing.T) {
	instance := SAT{Variables: 3, Clauses: [][]int64{{1, -2}, {3}}}

	assert.Equal(t, "p cnf 3 2\n1 -2 0\n3 0\n", instance.ToDIMACS())

	parsed, err := parseDIMACS(instance.ToDIMACS())
	assert.NoError(t, err)
	assert.Equal(t, instance, parsed)
}

func TestParseSolution(t *testing.T) {
	output := "s SATISFIABLE\nv 1 -2 3\nv -4 5 0\n"

	solution, err := parseSolution(output)

	assert.NoError(t, err)
	assert.Equal(t, SATSolution{1, -2, 3, -4, 5}, solution)

	_, err = parseSolution("v 1 x 0\n")
	assert.Error(t, err)
}

func TestParseModelFile(t *testing.T) {
	solution, err := parseModelFile("SAT\n-1 2 3 0\n")
	assert.NoError(t, err)
	assert.Equal(t, SATSolution{-1, 2, 3}, solution)

	_, err = parseModelFile("UNSAT\n")
	assert.Error(t, err)

	_, err = parseModelFile("")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Run("Empty path yields defaults", func(t *testing.T) {
		config, err := LoadConfig("")
		assert.NoError(t, err)
		assert.Equal(t, Config{}, config)
	})

	t.Run("Known keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		assert.NoError(t, os.WriteFile(path, []byte(`{"kissatPath": "/opt/kissat", "minisatPath": "/usr/bin/minisat"}`), 0o644))

		config, err := LoadConfig(path)

		assert.NoError(t, err)
		assert.Equal(t, "/opt/kissat", config.KissatPath)
		assert.Equal(t, "/usr/bin/minisat", config.MinisatPath)
	})

	t.Run("Unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		assert.NoError(t, os.WriteFile(path, []byte(`{"picosatPath": "/usr/bin/picosat"}`), 0o644))

		_, err := LoadConfig(path)

		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}

func TestNewSolver(t *testing.T) {
	for _, name := range []string{Kissat, Cadical, Minisat, Cryptominisat, GlucoseSimp, Slime, Ortoolsat} {
		solver, err := NewSolver(name, Config{})
		assert.NoError(t, err)
		assert.Equal(t, name, solver.Name())
	}

	_, err := NewSolver("picosat", Config{})
	assert.Error(t, err)
}

func TestKissat(t *testing.T) {
	execution(t, NewKissatSolver(lookPath(t, Kissat)))
}

func TestCadical(t *testing.T) {
	execution(t, NewCadicalSolver(lookPath(t, Cadical)))
}

func TestMinisat(t *testing.T) {
	execution(t, NewMinisatSolver(lookPath(t, Minisat)))
}

func TestGlucoseSimp(t *testing.T) {
	execution(t, NewGlucoseSimpSolver(lookPath(t, GlucoseSimp)))
}

func lookPath(t *testing.T, name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%v is not installed", name)
	}
	return path
}

func execution(t *testing.T, solver SATSolver) {
	t.Run("Satisfiable instance", func(t *testing.T) {
		//** Arrange
		instance, err := parseDIMACS(satisfiableDIMACS)
		assert.NoError(t, err)

		//** Act
		solution, err := solver.Solve(context.Background(), instance)

		//** Assert
		assert.NoError(t, err)
		assert.NotNil(t, solution)
		assert.True(t, assertSATSolution(instance, solution))
	})

	t.Run("Unsatisfiable instance", func(t *testing.T) {
		instance, err := parseDIMACS(unsatisfiableDIMACS)
		assert.NoError(t, err)

		solution, err := solver.Solve(context.Background(), instance)

		assert.NoError(t, err)
		assert.Nil(t, solution)
	})
}

func parseDIMACS(content string) (SAT, error) {
	var sat SAT
	scanner := bufio.NewScanner(strings.NewReader(content))

	for scanner.Scan() {
		line := scanner.Text()
		// Skip comments
		if strings.HasPrefix(line, "c") {
			continue
		}
		// Problem line
		if strings.HasPrefix(line, "p cnf") {
			parts := strings.Fields(line)
			if len(parts) != 4 {
				return SAT{}, fmt.Errorf("invalid problem line: %s", line)
			}
			vars, err := strconv.ParseUint(parts[2], 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid variable count: %w", err)
			}
			sat.Variables = vars
			continue
		}
		// Clause line
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var clause []int64
		for _, litStr := range fields {
			lit, err := strconv.ParseInt(litStr, 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid literal '%s': %w", litStr, err)
			}
			if lit == 0 {
				break
			}
			clause = append(clause, lit)
		}
		if len(clause) > 0 {
			sat.Clauses = append(sat.Clauses, clause)
		}
	}

	if err := scanner.Err(); err != nil {
		return SAT{}, fmt.Errorf("error reading instance: %w", err)
	}

	return sat, nil
}

func assertSATSolution(satInstance SAT, satSolution SATSolution) bool {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool)
	for _, literal := range satSolution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	// Check that all clauses are satisfied
	for _, clause := range satInstance.Clauses {
		satisfied := false
		for _, literal := range clause {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}

	return true
}
