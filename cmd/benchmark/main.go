package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nicolasgross/libwcttt-sub000/internal/report"
	"github.com/nicolasgross/libwcttt-sub000/pkg/algorithm"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type ResultType int

const (
	optimal ResultType = iota
	exhausted
	timeout
	infeasible
	failed
)

var (
	testDirectory  = "../../testdata"
	outFilePath    = "benchmark_results.csv"
	budget         = 30 * time.Second
	seeds          = 3
	maxGenerations = 0
	resultTypes    = map[ResultType]string{
		optimal:    "optimal",
		exhausted:  "exhausted",
		timeout:    "timeout",
		infeasible: "infeasible",
		failed:     "failed",
	}
)

type Test struct {
	Name     string
	Semester model.Semester
}

func main() {
	cmdBenchmark := &cobra.Command{
		Use:   "benchmark",
		Short: "optimize every semester file of a directory and summarize the runs",
		Run:   CommandBenchmark,
	}
	cmdBenchmark.Flags().StringVarP(&testDirectory, "dir", "d", testDirectory, "directory containing the semester files")
	cmdBenchmark.Flags().StringVarP(&outFilePath, "out", "o", outFilePath, "path to the CSV file the results are written to")
	cmdBenchmark.Flags().DurationVarP(&budget, "budget", "b", budget, "time budget of each run")
	cmdBenchmark.Flags().IntVarP(&seeds, "seeds", "s", seeds, "number of seeded runs per semester")
	cmdBenchmark.Flags().IntVarP(&maxGenerations, "generations", "g", maxGenerations, "maximum number of generations of each run (0 runs until the budget is spent)")
	cmdBenchmark.Execute()
}

func CommandBenchmark(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		log.Fatalf("unknown option: %s", strings.Join(args, " "))
	}
	if seeds < 1 {
		log.Fatal("seeds must be >= 1")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot create logger: %v", err)
	}
	defer logger.Sync()

	tests := getTests(testDirectory)
	results := make([]*report.BenchmarkRow, 0, len(tests)*seeds)
	for _, test := range tests {
		for seed := 1; seed <= seeds; seed++ {
			fmt.Printf("Benchmarking test %q with seed %v\n", test.Name, seed)
			results = append(results, measure(test, uint64(seed), logger))
		}
	}

	if err := report.ExportBenchmark(outFilePath, results); err != nil {
		log.Fatalf("cannot write results: %v", err)
	}
}

func getTests(directory string) []Test {
	files, err := os.ReadDir(directory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	tests := make([]Test, 0, len(files))
	for _, file := range lo.Filter(files, func(file os.DirEntry, _ int) bool { return strings.HasSuffix(file.Name(), ".json") }) {
		filename := filepath.Join(directory, file.Name())
		semester, err := model.SemesterFromJson(filename)
		if err != nil {
			log.Fatalf("cannot parse input file %q: %v", filename, err)
		}
		tests = append(tests, Test{Name: file.Name(), Semester: semester})
	}
	return tests
}

func measure(test Test, seed uint64, logger *zap.Logger) *report.BenchmarkRow {
	parameters := algorithm.DefaultParameters()
	parameters.Seed = seed
	parameters.MaxGenerations = maxGenerations

	optimizer := algorithm.NewTabuBasedMemetic(algorithm.WithLogger(logger.With(zap.String("test", test.Name))))
	timer := time.AfterFunc(budget, optimizer.Cancel)
	start := time.Now()
	timetable, err := optimizer.Start(&test.Semester, parameters)
	duration := time.Since(start)
	timer.Stop()

	row := &report.BenchmarkRow{
		File:           test.Name,
		Sessions:       len(test.Semester.Sessions),
		Seed:           seed,
		Generations:    optimizer.Generations(),
		Seconds:        duration.Seconds(),
		HardViolations: model.NotEvaluated,
		Status:         resultTypes[result(timetable, err, optimizer.IsCancelled())],
	}
	if timetable != nil {
		row.HardViolations = timetable.HardViolations()
		row.Penalty = timetable.Penalty()
	}
	return row
}

func result(timetable *model.Timetable, err error, cancelled bool) ResultType {
	switch {
	case err != nil:
		return failed
	case timetable == nil:
		return infeasible
	case timetable.Penalty() == 0:
		return optimal
	case cancelled:
		return timeout
	default:
		return exhausted
	}
}
