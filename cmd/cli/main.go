package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nicolasgross/libwcttt-sub000/internal/report"
	"github.com/nicolasgross/libwcttt-sub000/pkg/algorithm"
	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	filePath      string
	configPath    string
	outFilePath   string
	timetablePath string
	timeout       = time.Minute
	verbose       bool
	parameters    = algorithm.DefaultParameters()
)

func main() {
	cmdTimetable := &cobra.Command{
		Use:   "timetable",
		Short: "University course timetabling",
		Long: "Builds weekly course timetables that satisfy every hard constraint of a semester\n" +
			"while minimizing the weighted soft constraint penalty",
	}
	cmdTimetable.PersistentFlags().StringVarP(&filePath, "file", "f", "", "path to the semester file")
	cmdTimetable.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every generation")

	cmdSolve := &cobra.Command{
		Use:   "solve",
		Short: "optimize a timetable for the semester",
		Run:   CommandSolve,
	}
	cmdSolve.Flags().StringVarP(&configPath, "config", "c", "", "path to a parameters file; flags override its values")
	cmdSolve.Flags().StringVarP(&outFilePath, "out", "o", "", "path to the CSV file the timetable is written to; if empty, it'll be written into the Standard Output")
	cmdSolve.Flags().DurationVarP(&timeout, "timeout", "t", timeout, "cancel the optimization after this long (0 disables the timeout)")
	cmdSolve.Flags().IntVar(&parameters.PopulationSize, "population", parameters.PopulationSize, "population size")
	cmdSolve.Flags().Float64Var(&parameters.CrossoverRate, "crossover", parameters.CrossoverRate, "crossover rate")
	cmdSolve.Flags().Float64Var(&parameters.MutationRate, "mutation", parameters.MutationRate, "mutation rate")
	cmdSolve.Flags().IntVar(&parameters.TabuListSize, "tabu", parameters.TabuListSize, "tabu list size")
	cmdSolve.Flags().IntVar(&parameters.MaxGenerations, "generations", parameters.MaxGenerations, "maximum number of generations (0 runs until the timeout)")
	cmdSolve.Flags().Uint64Var(&parameters.Seed, "seed", parameters.Seed, "random seed (0 picks one)")
	cmdTimetable.AddCommand(cmdSolve)

	cmdValidate := &cobra.Command{
		Use:   "validate",
		Short: "check the semester file and summarize it",
		Run:   CommandValidate,
	}
	cmdTimetable.AddCommand(cmdValidate)

	cmdScore := &cobra.Command{
		Use:   "score",
		Short: "break the score of a timetable down per constraint",
		Run:   CommandScore,
	}
	cmdScore.Flags().StringVar(&timetablePath, "timetable", "", "path to a timetable CSV file written by solve")
	cmdTimetable.AddCommand(cmdScore)

	cmdTimetable.Execute()
}

func CommandSolve(cmd *cobra.Command, args []string) {
	checkArgs(args)
	semester := loadSemester()
	logger := newLogger()
	defer logger.Sync()

	runParameters := loadParameters(cmd)
	optimizer := algorithm.NewTabuBasedMemetic(algorithm.WithLogger(logger))
	if timeout > 0 {
		timer := time.AfterFunc(timeout, optimizer.Cancel)
		defer timer.Stop()
	}
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		optimizer.Cancel()
	}()

	timetable, err := optimizer.Start(&semester, runParameters)
	if err != nil {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	} else if timetable == nil {
		log.Fatal("the optimization was cancelled before a feasible timetable was found")
	}

	if outFilePath == "" {
		err = report.WriteTimetable(os.Stdout, &semester, timetable)
	} else {
		err = report.ExportTimetable(outFilePath, &semester, timetable)
	}
	if err != nil {
		log.Fatalf("an error occurred while writing the timetable: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Generations: %v\n", optimizer.Generations())
	fmt.Fprintf(os.Stderr, "Penalty: %v\n", timetable.Penalty())
}

func CommandValidate(cmd *cobra.Command, args []string) {
	checkArgs(args)
	semester := loadSemester()

	fmt.Printf("Semester %q is valid\n", semester.Name)
	fmt.Printf("Periods: %v days x %v time slots\n", semester.DaysPerWeek, semester.TimeSlotsPerDay)
	fmt.Printf("Sessions: %v (%v external)\n", len(semester.Sessions), len(semester.ExternalSessions()))
	fmt.Printf("Rooms: %v (%v internal)\n", len(semester.Rooms), len(semester.InternalRooms()))
	fmt.Printf("Teachers: %v\n", len(semester.Teachers))
	fmt.Printf("Courses: %v\n", len(semester.Courses))
	fmt.Printf("Curricula: %v\n", len(semester.Curricula))
}

func CommandScore(cmd *cobra.Command, args []string) {
	checkArgs(args)
	if timetablePath == "" {
		log.Fatal("a timetable file must be specified")
	}
	semester := loadSemester()

	timetable, err := report.ImportTimetable(timetablePath, &semester)
	if err != nil {
		log.Fatalf("cannot read timetable file: %v", err)
	}
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(&semester))
	if err := report.WriteScore(os.Stdout, calculator, timetable); err != nil {
		log.Fatalf("an error occurred while writing the score: %v", err)
	}
}

func checkArgs(args []string) {
	if len(args) > 0 {
		log.Fatalf("unknown option: %s", strings.Join(args, " "))
	}
}

func loadSemester() model.Semester {
	if filePath == "" {
		log.Fatal("a semester file must be specified")
	}
	semester, err := model.SemesterFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot parse semester file: %v", err)
	}
	return semester
}

// loadParameters reads the parameters file, if any, and applies the flags set explicitly
func loadParameters(cmd *cobra.Command) algorithm.Parameters {
	if configPath == "" {
		return parameters
	}
	fromFile, err := algorithm.ParametersFromJson(configPath)
	if err != nil {
		log.Fatalf("cannot parse parameters file: %v", err)
	}

	flags := cmd.Flags()
	overrides := map[string]func(){
		"population":  func() { fromFile.PopulationSize = parameters.PopulationSize },
		"crossover":   func() { fromFile.CrossoverRate = parameters.CrossoverRate },
		"mutation":    func() { fromFile.MutationRate = parameters.MutationRate },
		"tabu":        func() { fromFile.TabuListSize = parameters.TabuListSize },
		"generations": func() { fromFile.MaxGenerations = parameters.MaxGenerations },
		"seed":        func() { fromFile.Seed = parameters.Seed },
	}
	for flag, override := range overrides {
		if flags.Changed(flag) {
			override()
		}
	}
	return fromFile
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("cannot create logger: %v", err)
	}
	return logger
}
