package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/limaJavier/timetabling-engine/pkg/model"

	"github.com/samber/lo"
)

const (
	defaultExecutablePath = "../../bin/timetable"
	KB                    = 1024
)

type ResultType int

const (
	solved ResultType = iota
	partial
	infeasible
	unverified
)

var resultTypes = map[ResultType]string{
	solved:     "ok",
	partial:    "partial",
	infeasible: "infeasible",
	unverified: "verification-failure",
}

type TestMetadata struct {
	Name     string
	Size     int
	Groups   int
	Teachers int
	Courses  int
	Rooms    int
}

type RunMetadata struct {
	Strategy string
	Solver   string
}

type BenchmarkResult struct {
	Run           RunMetadata
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
	Penalty       int
	Iterations    int
}

func main() {
	executablePath := flag.String("bin", defaultExecutablePath, "Path to the timetable CLI executable")
	sizesStr := flag.String("sizes", "1,2,4,8", "Comma-separated scales of the synthetic configurations")
	solver := flag.String("solver", "", "SAT-Solver for the sat strategy; if empty, only the backtracking strategy is benchmarked")
	seed := flag.Int64("seed", 1, "Seed passed to every run")
	outFile := flag.String("out", "benchmark_results.csv", "Path of the CSV report")
	flag.Parse()

	directory, err := os.MkdirTemp("", "timetable-benchmark")
	if err != nil {
		log.Fatalf("cannot create working directory: %v", err)
	}
	defer os.RemoveAll(directory)

	tests := getTests(directory, parseSizes(*sizesStr))
	runs := getRuns(*solver)
	results := make([]BenchmarkResult, 0, len(tests)*len(runs))

	for _, test := range tests {
		for _, run := range runs {
			fmt.Printf("Benchmarking size %v with strategy \"%v\" and solver \"%v\"\n", test.Size, run.Strategy, run.Solver)

			result := measure(*executablePath, run, test, *seed, directory)
			results = append(results, result)
		}
	}

	toCsv(results, *outFile)
}

func parseSizes(sizesStr string) []int {
	return lo.Map(strings.Split(sizesStr, ","), func(size string, _ int) int {
		value, err := strconv.Atoi(strings.TrimSpace(size))
		if err != nil || value < 1 {
			log.Fatalf("invalid size \"%v\"", size)
		}
		return value
	})
}

func getTests(directory string, sizes []int) []TestMetadata {
	tests := make([]TestMetadata, 0, len(sizes))
	for _, size := range sizes {
		configuration := syntheticConfiguration(size)
		if err := model.Validate(configuration); err != nil {
			log.Fatalf("synthetic configuration of size %v is invalid: %v", size, err)
		}

		filename := filepath.Join(directory, fmt.Sprintf("size-%d.json", size))
		content, err := configuration.ToJson()
		if err != nil {
			log.Fatalf("cannot serialize configuration: %v", err)
		}
		if err := os.WriteFile(filename, content, 0666); err != nil {
			log.Fatalf("cannot write configuration: %v", err)
		}

		tests = append(tests, TestMetadata{
			Name:     filename,
			Size:     size,
			Groups:   len(configuration.Groups),
			Teachers: len(configuration.Teachers),
			Courses:  len(configuration.Courses),
			Rooms:    len(configuration.Rooms),
		})
	}
	return tests
}

func getRuns(solver string) []RunMetadata {
	runs := []RunMetadata{{Strategy: string(model.StrategyBacktracking)}}
	if solver != "" {
		runs = append(runs, RunMetadata{Strategy: string(model.StrategySAT), Solver: solver})
	}
	return runs
}

// syntheticConfiguration builds a school of 2*size groups organized in pairs. Each pair shares a math,
// a science, a lab and a joint seminar course.
func syntheticConfiguration(size int) model.Configuration {
	configuration := model.Configuration{
		TimetableSettings: model.TimetableSettings{
			Days:             []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			PeriodsPerDay:    8,
			MinutesPerPeriod: 45,
			LunchBreakSlot:   4,
			LunchDuration:    45,
		},
		PenaltyWeights: model.PenaltyWeights{
			UseLastPeriodPenalty:        20,
			TeacherDislikePeriodPenalty: 10,
			GroupFirstLastPeriodPenalty: 1,
		},
	}

	labTeachers := (size + 1) / 2
	for i := 1; i <= labTeachers; i++ {
		configuration.Teachers = append(configuration.Teachers, model.Teacher{
			Id: fmt.Sprintf("L%d", i), Name: fmt.Sprintf("Lab teacher %d", i),
			Subjects: []string{}, DislikePeriods: []int{}, MaxPerDay: 2, MaxPerWeek: 8,
		})
		configuration.Rooms = append(configuration.Rooms, model.Room{Id: fmt.Sprintf("LAB%d", i), Type: model.Lab, Capacity: 40})
	}
	for i := 1; i <= size+1; i++ {
		configuration.Rooms = append(configuration.Rooms, model.Room{Id: fmt.Sprintf("R%d", i), Type: model.Lecture, Capacity: 70})
	}

	for pair := 1; pair <= size; pair++ {
		first, second := fmt.Sprintf("T%d", 2*pair-1), fmt.Sprintf("T%d", 2*pair)
		groupA, groupB := fmt.Sprintf("G%d", 2*pair-1), fmt.Sprintf("G%d", 2*pair)
		labTeacher := fmt.Sprintf("L%d", (pair+1)/2)
		math, science, lab, seminar := fmt.Sprintf("MATH%d", pair), fmt.Sprintf("SCI%d", pair), fmt.Sprintf("LAB%d", pair), fmt.Sprintf("SEM%d", pair)
		groups := []string{groupA, groupB}
		courses := []string{math, science, lab, seminar}

		configuration.Teachers = append(configuration.Teachers,
			model.Teacher{Id: first, Name: "Teacher " + first, Subjects: []string{math, seminar}, DislikePeriods: []int{1}, MaxPerDay: 4, MaxPerWeek: 16},
			model.Teacher{Id: second, Name: "Teacher " + second, Subjects: []string{math, science}, DislikePeriods: []int{8}, MaxPerDay: 4, MaxPerWeek: 16},
		)
		configuration.Groups = append(configuration.Groups,
			model.Group{Id: groupA, Size: 30, Courses: courses},
			model.Group{Id: groupB, Size: 30, Courses: courses},
		)
		configuration.Courses = append(configuration.Courses,
			model.Course{Id: math, RequiredPerWeek: 3, RoomType: model.Lecture, EligibleTeachers: []string{first, second}, Groups: groups, Duration: 1},
			model.Course{Id: science, RequiredPerWeek: 2, RoomType: model.Lecture, EligibleTeachers: []string{second}, Groups: groups, Duration: 1},
			model.Course{Id: lab, RequiredPerWeek: 1, RoomType: model.Lab, EligibleTeachers: []string{labTeacher}, Groups: groups, Duration: 2},
			model.Course{Id: seminar, RequiredPerWeek: 1, RoomType: model.Lecture, EligibleTeachers: []string{first}, Groups: groups, Duration: 1, Joint: true},
		)
		// Lab teachers come first
		labTeacherRef := &configuration.Teachers[(pair+1)/2-1]
		labTeacherRef.Subjects = append(labTeacherRef.Subjects, lab)
	}

	return configuration
}

func measure(executablePath string, run RunMetadata, test TestMetadata, seed int64, directory string) BenchmarkResult {
	output := filepath.Join(directory, fmt.Sprintf("size-%d-%s.out.json", test.Size, run.Strategy))
	args := []string{"-v", executablePath, "-strategy", run.Strategy, "-seed", fmt.Sprint(seed), "-file", test.Name, "-out", output}
	if run.Solver != "" {
		args = append(args, "-solver", run.Solver)
	}
	cmd := exec.Command("/usr/bin/time", args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	result, ok := resultFromExitCode(cmd.ProcessState.ExitCode())
	if !ok {
		log.Fatalf("an error occurred during the execution \"timetable\" at test \"%v\" using strategy \"%v\", solver \"%v\": %v\n", test.Name, run.Strategy, run.Solver, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	benchmark := BenchmarkResult{
		Run:           run,
		Test:          test,
		Duration:      parseDurationLine(getLine("wall clock")),
		Memory:        parseMemoryLine(getLine("maximum resident set size")),
		CpuPercentage: parseCpuPercentageLine(getLine("percent of cpu")),
		Result:        result,
	}

	var response model.GenerationResponse
	if content, err := os.ReadFile(output); err == nil && json.Unmarshal(content, &response) == nil {
		benchmark.Penalty = response.Penalty.Total
		benchmark.Iterations = response.Stats.Iterations
	}
	return benchmark
}

func resultFromExitCode(code int) (ResultType, bool) {
	switch code {
	case 10:
		return solved, true
	case 11:
		return partial, true
	case 15:
		return unverified, true
	case 20:
		return infeasible, true
	}
	return 0, false
}

func toCsv(results []BenchmarkResult, path string) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Size", "Strategy", "Solver", "Groups", "Teachers", "Courses", "Rooms", "Status", "Penalty", "Iterations", "Duration(ms)", "Memory(MB)", "CPU(%)"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			fmt.Sprintf("%d", result.Test.Size),
			result.Run.Strategy,
			result.Run.Solver,
			fmt.Sprintf("%d", result.Test.Groups),
			fmt.Sprintf("%d", result.Test.Teachers),
			fmt.Sprintf("%d", result.Test.Courses),
			fmt.Sprintf("%d", result.Test.Rooms),
			resultTypes[result.Result],
			fmt.Sprintf("%d", result.Penalty),
			fmt.Sprintf("%d", result.Iterations),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / KB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
