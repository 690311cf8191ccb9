// cmd/dirlens/main.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"time"

	pflag "github.com/spf13/pflag"
)

const Version = "0.1.0"

// scanPollInterval is how often the consumer loop drains scan messages.
const scanPollInterval = 100 * time.Millisecond

// --- Global Variables for Flags ---
var (
	targetDirFlagValue string
	outputFile         string
	outputFormat       string
	fullContent        bool
	aiTask             string
	aiFile             string
	aiScope            string
	modelFlag          string
	ollamaURLFlag      string
	listModels         bool
	logLevelStr        string
	configFileFlag     string
	versionFlag        bool
)

func init() {
	pflag.StringVarP(&targetDirFlagValue, "directory", "d", ".", "Target directory to analyze.")
	pflag.StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout).")
	pflag.StringVar(&outputFormat, "format", "", "Output format: json or jsonl (overrides config).")
	pflag.BoolVar(&fullContent, "full-content", false, "Include full file contents instead of previews.")
	pflag.StringVar(&aiTask, "ai-task", "", "AI task to run: quality, improve, security, docs, explain.")
	pflag.StringVar(&aiFile, "ai-file", "", "File within the analyzed tree the AI task targets.")
	pflag.StringVar(&aiScope, "ai-scope", "file", "AI task scope: file or project.")
	pflag.StringVarP(&modelFlag, "model", "m", "", "Ollama model name (default: first available).")
	pflag.StringVar(&ollamaURLFlag, "ollama-url", "", "Ollama generate endpoint (overrides config).")
	pflag.BoolVar(&listModels, "list-models", false, "List selectable models and exit.")
	pflag.StringVar(&logLevelStr, "loglevel", "info", "Set logging verbosity (debug, info, warn, error).")
	pflag.StringVarP(&configFileFlag, "config", "c", "", "Path to a custom configuration file.")
	pflag.BoolVarP(&versionFlag, "version", "v", false, "Print version and exit.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [target_directory]
   or: %s [flags]

Analyze a directory tree: classify files, extract previews, aggregate sizes,
and optionally run an AI task against the result.

Flags:
`, os.Args[0], os.Args[0])
		pflag.PrintDefaults()
	}
}

// --- Main Execution ---
func main() {
	pflag.Parse()

	if versionFlag {
		fmt.Printf("dirlens version %s\n", Version)
		os.Exit(0)
	}

	// Setup Logging
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q, defaulting to 'info'.\n", logLevelStr)
		logLevel = slog.LevelInfo
	}
	logOpts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel <= slog.LevelDebug}
	handler := slog.NewTextHandler(os.Stderr, logOpts)
	slog.SetDefault(slog.New(handler))

	// Load Configuration
	appConfig, loadErr := loadConfig(configFileFlag)
	if loadErr != nil {
		slog.Error("Failed to load configuration, using defaults.", "error", loadErr)
		appConfig = defaultConfig
	}

	client := NewOllamaClient(
		tern(ollamaURLFlag != "", ollamaURLFlag, *appConfig.OllamaURL),
		*appConfig.TagsURL,
		*appConfig.MaxTokens,
	)

	if listModels {
		models, err := client.ListModels()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to load models from server: %v\n", err)
			os.Exit(1)
		}
		if len(models) == 0 {
			fmt.Println("No models available")
			os.Exit(0)
		}
		for _, name := range models {
			fmt.Println(name)
		}
		os.Exit(0)
	}

	// Argument Mode Validation
	positionalArgs := pflag.Args()
	finalTargetDirectory := ""
	var conflictingFlagSet bool
	var firstConflict string
	metaFlags := map[string]struct{}{"help": {}, "loglevel": {}, "version": {}, "config": {}}
	pflag.Visit(func(f *pflag.Flag) {
		if _, isMeta := metaFlags[f.Name]; !isMeta {
			conflictingFlagSet = true
			if firstConflict == "" {
				firstConflict = f.Name
			}
		}
	})
	if len(positionalArgs) > 1 {
		fmt.Fprintf(os.Stderr, "Refusing execution: Multiple positional arguments provided: %v.\n", positionalArgs)
		os.Exit(1)
	} else if len(positionalArgs) == 1 {
		if conflictingFlagSet {
			fmt.Fprintf(os.Stderr, "Refusing execution: Cannot mix positional argument '%s' with flag '--%s'.\n", positionalArgs[0], firstConflict)
			os.Exit(1)
		}
		finalTargetDirectory = positionalArgs[0]
		if finalTargetDirectory == "" {
			finalTargetDirectory = "."
		}
		slog.Debug("Using target directory from positional argument.", "path", finalTargetDirectory)
	} else {
		finalTargetDirectory = targetDirFlagValue
		slog.Debug("Using flags mode. Target directory from -d or default.", "path", finalTargetDirectory)
	}

	// Validate Final Target Directory
	absTargetDir, err := filepath.Abs(finalTargetDirectory)
	if err != nil {
		slog.Error("Could not determine absolute path.", "path", finalTargetDirectory, "error", err)
		fmt.Fprintf(os.Stderr, "Error: Invalid target directory path '%s': %v\n", finalTargetDirectory, err)
		os.Exit(1)
	}
	finalTargetDirectory = absTargetDir

	dirInfo, err := os.Stat(finalTargetDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: Target directory '%s' not found.\n", finalTargetDirectory)
		} else {
			fmt.Fprintf(os.Stderr, "Error accessing target directory '%s': %v\n", finalTargetDirectory, err)
		}
		os.Exit(1)
	}
	if !dirInfo.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: Specified target path '%s' is not a directory.\n", finalTargetDirectory)
		os.Exit(1)
	}

	// Determine final settings
	finalFormat := *appConfig.OutputFormat
	if pflag.CommandLine.Changed("format") {
		finalFormat = outputFormat
	}
	if finalFormat != "json" && finalFormat != "jsonl" {
		fmt.Fprintf(os.Stderr, "Error: Invalid output format '%s' (expected json or jsonl).\n", finalFormat)
		os.Exit(1)
	}
	finalIncludeFull := *appConfig.IncludeFullContent
	if pflag.CommandLine.Changed("full-content") {
		finalIncludeFull = fullContent
	}
	slog.Debug("Final settings resolved.", "format", finalFormat, "include_full_content", finalIncludeFull)

	// --- Run the scan on a background goroutine, poll its messages ---
	analyzer := NewAnalyzer(finalIncludeFull, appConfig.TextExtensions)
	queue := StartScan(analyzer, finalTargetDirectory)

	var root *Node
	scanFailure := ""
	ticker := time.NewTicker(scanPollInterval)
	for root == nil && scanFailure == "" {
		<-ticker.C
		for _, msg := range queue.Drain() {
			switch m := msg.(type) {
			case ScanProgress:
				if logLevel <= slog.LevelInfo {
					printStatus(os.Stderr, m.Text)
				}
			case ScanSuccess:
				root = m.Root
			case ScanFailure:
				scanFailure = m.Message
			}
		}
	}
	ticker.Stop()

	if scanFailure != "" {
		slog.Error("Analysis failed.", "path", finalTargetDirectory, "error", scanFailure)
		fmt.Fprintf(os.Stderr, "Error: %s\n", scanFailure)
		os.Exit(1)
	}

	// Determine Output Target and Summary Writer
	var resultWriter io.Writer
	var summaryWriter io.Writer
	var outputFileHandle *os.File
	if outputFile != "" {
		file, errCreate := os.Create(outputFile)
		if errCreate != nil {
			slog.Error("Failed to create output file.", "path", outputFile, "error", errCreate)
			fmt.Fprintf(os.Stderr, "Error creating output file '%s': %v\n", outputFile, errCreate)
			os.Exit(1)
		}
		outputFileHandle = file
		resultWriter = file
		summaryWriter = os.Stdout
		slog.Info("Writing analysis to file.", "path", outputFile, "format", finalFormat)
	} else {
		resultWriter = os.Stdout
		summaryWriter = os.Stderr
		slog.Info("Writing analysis to stdout.", "format", finalFormat)
	}

	writeErr := tern(finalFormat == "jsonl", WriteJSONL, WriteJSON)(resultWriter, root)
	if writeErr != nil {
		slog.Error("Failed to write analysis output.", "error", writeErr)
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", writeErr)
		if outputFileHandle != nil {
			_ = outputFileHandle.Close()
		}
		os.Exit(1)
	}
	if outputFileHandle != nil {
		if errClose := outputFileHandle.Close(); errClose != nil {
			slog.Error("Failed to close output file.", "path", outputFile, "error", errClose)
		}
	}

	printScanSummary(summaryWriter, root)

	// --- Optional AI task ---
	if aiTask != "" {
		if err := runAITask(client, appConfig, root, finalTargetDirectory, summaryWriter); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	slog.Debug("Execution finished.")

	if len(collectErrors(root)) > 0 {
		os.Exit(1)
	}
}

// runAITask resolves the task target (one file node or a project bundle),
// builds the preset prompt, and streams the completion to stdout. Ctrl-C
// sets the request's cancellation flag; the stream stops at the next record.
func runAITask(client *OllamaClient, cfg Config, root *Node, targetDir string, summaryWriter io.Writer) error {
	model := modelFlag
	if model == "" {
		model = *cfg.DefaultModel
	}
	if model == "" {
		models, err := client.ListModels()
		if err != nil {
			return fmt.Errorf("no model selected and model discovery failed: %w", err)
		}
		if len(models) == 0 {
			return fmt.Errorf("no model selected and no models available")
		}
		model = models[0]
		slog.Info("Using first available model.", "model", model)
	}

	var content, language string
	switch aiScope {
	case "file":
		if aiFile == "" {
			return fmt.Errorf("--ai-task with file scope requires --ai-file")
		}
		absFile, err := filepath.Abs(aiFile)
		if err != nil {
			return fmt.Errorf("invalid --ai-file path '%s': %w", aiFile, err)
		}
		node := root.FindByPath(absFile)
		if node == nil {
			return fmt.Errorf("'%s' is not part of the analyzed tree", absFile)
		}
		if node.Kind != NodeFile {
			return fmt.Errorf("'%s' is a directory; the AI task needs a file", absFile)
		}
		if node.Content == nil {
			return fmt.Errorf("'%s' could not be read: %s", absFile, node.Preview)
		}
		content = *node.Content
		language = fallbackLanguage
		if node.Language != nil {
			language = *node.Language
		}
		fmt.Fprintln(summaryWriter)
		fmt.Fprint(summaryWriter, formatNodeDetails(node))
	case "project":
		bundle, included, err := buildProjectBundle(targetDir, processExtensions(cfg.BundleExtensions), *cfg.UseGitignore)
		if err != nil {
			return err
		}
		if included == 0 {
			return fmt.Errorf("no project files matched the bundle extensions")
		}
		slog.Info("Built project bundle for AI task.", "files", included, "bytes", len(bundle))
		content = bundle
		language = "project"
	default:
		return fmt.Errorf("invalid --ai-scope '%s' (expected file or project)", aiScope)
	}

	prompt, err := buildTaskPrompt(aiTask, language, content)
	if err != nil {
		return err
	}

	// Scope the cancellation flag to this one request.
	var cancel atomic.Bool
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		if _, ok := <-interrupts; ok {
			cancel.Store(true)
			fmt.Fprintln(summaryWriter, "\nAI task stopped by user.")
		}
	}()
	defer func() {
		signal.Stop(interrupts)
		close(interrupts)
	}()

	fmt.Fprintf(summaryWriter, "\n--- AI: %s (%s) ---\n", aiTask, model)
	client.Generate(model, prompt, &cancel, func(chunk string) {
		fmt.Print(chunk)
	})
	fmt.Println()
	return nil
}
