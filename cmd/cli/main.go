package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/timetabling-engine/pkg/model"
	"github.com/limaJavier/timetabling-engine/pkg/sat"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	exitOk           = 10
	exitPartial      = 11
	exitVerification = 15
	exitInfeasible   = 20
)

var (
	validStrategies = []string{string(model.StrategyBacktracking), string(model.StrategySAT)}
	validSolvers    = []string{sat.Kissat, sat.Cadical, sat.Minisat, sat.Cryptominisat, sat.GlucoseSimp, sat.Slime, sat.Ortoolsat}
)

func main() {
	// Define arguments
	filePathPtr := flag.String("file", "", "Path to the configuration file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	seedPtr := flag.Int64("seed", 0, "Seed of the random choices; 0 picks one from the clock")
	iterationsPtr := flag.Int("iterations", 0, "Maximum annealing iterations per chain; 0 uses the default")
	timeoutPtr := flag.Duration("timeout", 30*time.Second, "Wall-clock limit of the whole generation")
	chainsPtr := flag.Int("chains", 1, "Independent annealing chains run in parallel")
	strategyPtr := flag.String("strategy", "backtracking", `Strategy to build the initial timetable. Allowed values are:
- "backtracking" (in-process search, the default) and
- "sat" (the whole problem is encoded into CNF and handed to an external SAT solver)`)
	solverPtr := flag.String("solver", sat.Kissat, "SAT-Solver used by the sat strategy. Allowed values are: \"kissat\", \"cadical\", \"minisat\", \"cryptominisat\", \"glucose-simp\", \"slime\", \"ortoolsat\", where \"kissat\" is the default")
	solverConfigPtr := flag.String("solver-config", "", "Path to the solver config.json; if empty, a config.json next to the executable is used when present")
	verbosePtr := flag.Bool("verbose", false, "Log every generation phase to the Standard Error")
	flag.Parse()
	strategy := strings.ToLower(*strategyPtr)
	solverStr := strings.ToLower(*solverPtr)
	filePath := *filePathPtr
	outFile := *outFilePathPtr

	// Validate arguments
	if !slices.Contains(validStrategies, strategy) {
		log.Fatalf("%v is not a valid strategy", strategy)
	} else if !slices.Contains(validSolvers, solverStr) {
		log.Fatalf("%v is not a valid solver", solverStr)
	} else if filePath == "" {
		log.Fatal("an input file must be specified")
	} else if *chainsPtr < 1 {
		log.Fatalf("chains must be positive: %v", *chainsPtr)
	}

	// Extract input
	configuration, err := model.ConfigurationFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	// Initialize engines
	logger := newLogger(*verbosePtr)
	defer logger.Sync() //nolint:errcheck

	var solver sat.SATSolver
	if strategy == string(model.StrategySAT) {
		solverConfig, err := sat.LoadConfig(solverConfigPath(*solverConfigPtr))
		if err != nil {
			log.Fatalf("cannot load solver config: %v", err)
		}
		solver = lo.Must(sat.NewSolver(solverStr, solverConfig))
	}

	timetabler, err := model.NewTimetabler(model.Options{
		Strategy: model.Strategy(strategy),
		Solver:   solver,
		Timeout:  *timeoutPtr,
		Chains:   *chainsPtr,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("cannot initialize the timetabler: %v", err)
	}

	request := model.GenerationRequest{Configuration: configuration, MaxIterations: *iterationsPtr}
	if *seedPtr != 0 {
		request.Seed = seedPtr
	}

	// Build timetable
	response, err := timetabler.Build(context.Background(), request)

	var validationErr *model.ValidationError
	var infeasibleErr *model.InfeasibleError
	if errors.As(err, &validationErr) {
		for _, violation := range validationErr.Violations {
			fmt.Fprintln(os.Stderr, violation)
		}
		os.Exit(1)
	} else if err != nil && !errors.As(err, &infeasibleErr) {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}

	write(response, outFile)

	if response.Status == model.StatusInfeasible {
		os.Exit(exitInfeasible)
	}

	// Verify timetable correctness
	if problems := model.VerifySchedule(configuration, *response.Result); len(problems) > 0 {
		for _, problem := range problems {
			fmt.Fprintln(os.Stderr, problem)
		}
		os.Exit(exitVerification)
	}

	if response.Status == model.StatusPartial {
		os.Exit(exitPartial)
	}
	os.Exit(exitOk)
}

func write(response model.GenerationResponse, outFile string) {
	// Marshal output into json
	responseJson, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if outFile == "" {
		fmt.Println(string(responseJson))
	} else {
		err := os.WriteFile(outFile, responseJson, 0666)
		if err != nil {
			log.Fatalf("an error occurred while writing to the output file: %v", err)
		}
	}
}

func newLogger(verbose bool) *zap.Logger {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Encoding = "console"
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("cannot initialize the logger: %v", err)
	}
	return logger
}

// Returns the explicit solver config, or the config.json next to the executable when there is one
func solverConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("cannot determine executable path: %v", err)
	}
	execPath = path.Dir(execPath)

	files, err := os.ReadDir(execPath)
	if err != nil {
		log.Fatalf("cannot read executable's directory: %v", err)
	}
	fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })
	if !slices.Contains(fileNames, "config.json") {
		return ""
	}
	return execPath + "/config.json"
}
