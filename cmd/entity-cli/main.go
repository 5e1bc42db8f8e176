package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v2"

	"yashubustudio/entityclassifier/dataset"
	"yashubustudio/entityclassifier/entity"
	"yashubustudio/entityclassifier/internal/config"
	"yashubustudio/entityclassifier/internal/render"
	"yashubustudio/entityclassifier/stats"
)

type cliOptions struct {
	configPath  string
	inputPath   string
	names       string
	outputPath  string
	outputDir   string
	statsOut    string
	statsPath   string
	nameColumn  string
	rulesPath   string
	writeRules  string
	writeConfig string
	stdout      bool
	explain     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("entity-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("entity-cli: %v", err)
	}
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("entity-cli", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to config.json or config.toml (default: ./config.json)")
	fs.StringVar(&opts.inputPath, "input", "", "CSV/TSV file of entity names to classify")
	fs.StringVar(&opts.names, "name", "", "Comma separated names to classify")
	fs.StringVar(&opts.outputPath, "output", "", "CSV file to write results (default uses --output-dir/result_*.csv)")
	fs.StringVar(&opts.outputDir, "output-dir", "", "Directory where result CSVs are written when --output is omitted")
	fs.StringVar(&opts.statsOut, "stats-out", "", "Write a statistics report for --input to this file")
	fs.StringVar(&opts.statsPath, "stats", "", "Parse a statistics report and print it")
	fs.StringVar(&opts.nameColumn, "name-column", "", "Column name or #index holding entity names")
	fs.StringVar(&opts.rulesPath, "rules", "", "JSON or TOML language keyword overrides; they change detected languages and patterns, not scores or predicted types")
	fs.StringVar(&opts.writeRules, "write-rules", "", "Write the built-in language keyword table to this file and exit")
	fs.StringVar(&opts.writeConfig, "write-config", "", "Write the default config as JSON or TOML to this file and exit")
	fs.BoolVar(&opts.stdout, "stdout", false, "Print every classified record")
	fs.BoolVar(&opts.explain, "explain", false, "Print languages, patterns and scores for --name")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s (--input FILE | --name NAMES | --stats FILE) [options]\n\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	for _, s := range []*string{
		&opts.configPath, &opts.inputPath, &opts.outputPath, &opts.outputDir, &opts.statsOut,
		&opts.statsPath, &opts.nameColumn, &opts.rulesPath, &opts.writeRules, &opts.writeConfig,
	} {
		*s = strings.TrimSpace(*s)
	}
	if opts.inputPath == "" && strings.TrimSpace(opts.names) == "" && opts.statsPath == "" &&
		opts.writeRules == "" && opts.writeConfig == "" {
		fs.Usage()
		return opts, errors.New("one of --input, --name, --stats, --write-rules or --write-config is required")
	}
	if opts.statsOut != "" && opts.inputPath == "" {
		return opts, errors.New("--stats-out needs --input")
	}
	return opts, nil
}

func splitNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func run(opts cliOptions) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if opts.writeRules != "" {
		if err := entity.WriteDefaultRuleSet(opts.writeRules); err != nil {
			return err
		}
		logger.Printf("rule table written to %s", opts.writeRules)
		return nil
	}
	if opts.writeConfig != "" {
		if err := config.Save(opts.writeConfig, config.Default()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		logger.Printf("config written to %s", opts.writeConfig)
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rulesPath := opts.rulesPath
	if rulesPath == "" {
		rulesPath = cfg.RulesPath
	}
	rules, loaded, err := entity.LoadRuleSet(rulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	if loaded {
		logger.Printf("loaded %d language groups from %s (detection only, scores use the built-in table)", len(rules.Languages), rulesPath)
	}
	classifier := entity.NewClassifier(rules)
	printer := render.NewPrinter(os.Stdout)

	if opts.statsPath != "" {
		if err := printStats(opts.statsPath); err != nil {
			return err
		}
	}
	for _, name := range splitNames(opts.names) {
		if opts.explain {
			printer.Analysis(classifier.Analyze(name))
			continue
		}
		printer.Result(name, classifier.Classify(name))
	}
	if opts.inputPath == "" {
		return nil
	}

	records, err := dataset.ReadRecords(opts.inputPath, dataset.ParseOptions{
		NameColumn: opts.nameColumn,
		Candidates: cfg.Columns,
	})
	if err != nil {
		return fmt.Errorf("read input records: %w", err)
	}
	if len(records) == 0 {
		return errors.New("input file does not contain any names")
	}

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("classifying"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	rows := dataset.Classify(classifier, records, func() { _ = bar.Add(1) })
	_ = bar.Finish()

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	outputPath, err := resolveOutputPath(opts.outputPath, outputDir, time.Now())
	if err != nil {
		return err
	}
	if err := dataset.WriteResultsFile(outputPath, rows); err != nil {
		return err
	}
	report := dataset.Summarize(rows)
	printer.Summary(report, outputPath)

	if opts.stdout {
		for _, row := range rows {
			printer.Result(row.Record.Name, row.Result)
		}
	}
	if opts.statsOut != "" {
		if err := writeStats(opts.statsOut, opts.inputPath, rows); err != nil {
			return err
		}
		logger.Printf("stats report written to %s", opts.statsOut)
	}
	return nil
}

func resolveOutputPath(path, dir string, now time.Time) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	filename := fmt.Sprintf("result_%s.csv", now.Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func statsDocument(inputPath string, rows []dataset.ResultRow) stats.Document {
	report := dataset.Summarize(rows)
	var notes []string
	if len(rows) > 0 {
		best, bestCount := "", 0
		for label, n := range report.EntityTypes {
			if n > bestCount || (n == bestCount && label < best) {
				best, bestCount = label, n
			}
		}
		notes = append(notes, "Most entities are classified as "+best)
	}
	noSignal := 0
	for _, row := range rows {
		if !row.Result.HasSignal() {
			noSignal++
		}
	}
	if noSignal > 0 {
		notes = append(notes, fmt.Sprintf("%d names matched no rule and default to Individual", noSignal))
	}
	return stats.Document{
		Title:       filepath.Base(inputPath),
		Report:      report,
		Corrections: dataset.Corrections(rows),
		Notes:       notes,
	}
}

func writeStats(path, inputPath string, rows []dataset.ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stats file: %w", err)
	}
	if err := stats.Format(f, statsDocument(inputPath, rows)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close stats file: %w", err)
	}
	return nil
}

func printStats(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open stats file: %w", err)
	}
	defer f.Close()
	report, err := stats.ParseReader(f)
	if err != nil {
		return err
	}
	out, err := render.Markdown(render.StatsMarkdown(filepath.Base(path), report), "", 80)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
