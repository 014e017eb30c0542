// Command execution for CLI commands.
//
// Information Hiding:
// - Service and registry bootstrap hidden
// - Run recording hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cleesmith/writers-toolkit-v2/config"
	"github.com/cleesmith/writers-toolkit-v2/llm"
	"github.com/cleesmith/writers-toolkit-v2/storage"
	"github.com/cleesmith/writers-toolkit-v2/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider     string
	SaveDir      string
	SkipThinking bool
	DBPath       string
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		DBPath: ".wtk/wtk.db",
	}
}

// bootstrap builds the runner and registry a command executes against.
// The caller owns the returned store.
func bootstrap(opts Options) (*tools.Runner, *tools.Registry, *storage.Store, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, err
	}

	service, err := llm.NewService(opts.Provider, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := storage.Open(opts.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}

	runner := tools.NewRunner(service, cfg, tools.NewFileCache(), store, func(s string) {
		fmt.Print(s)
	})
	registry := tools.WithDefaults(runner)
	return runner, registry, store, nil
}

// RunTool executes a single tool. docs maps document option keys
// (e.g. "manuscript_file") to file paths.
func RunTool(ctx context.Context, toolID string, docs map[string]string, opts Options) error {
	runner, registry, store, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	service := runner.Service()
	fmt.Printf("Running %s with %s (%s)...\n\n", toolID, service.Name(), service.Model())

	result, err := registry.ExecuteByID(ctx, toolID, toolOptions(docs, opts))
	if err != nil {
		return err
	}

	if err := recordRun(store, toolID, result); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
	}

	fmt.Printf("\nReport files:\n")
	for _, path := range result.OutputFiles {
		fmt.Printf("  %s\n", path)
	}
	return nil
}

func toolOptions(docs map[string]string, opts Options) tools.Options {
	toolOpts := make(tools.Options, len(docs)+2)
	for key, path := range docs {
		toolOpts[key] = path
	}
	if opts.SaveDir != "" {
		toolOpts[tools.OptSaveDir] = opts.SaveDir
	}
	if opts.SkipThinking {
		toolOpts[tools.OptSkipThinking] = true
	}
	return toolOpts
}

func recordRun(store *storage.Store, toolID string, result tools.Result) error {
	return store.RecordRun(storage.RunRecord{
		RunID:          result.Stats.RunID,
		ToolID:         toolID,
		OutputPaths:    result.OutputFiles,
		PromptTokens:   result.Stats.PromptTokens,
		ResponseTokens: result.Stats.ResponseTokens,
		ElapsedSeconds: result.Stats.ElapsedSeconds,
	})
}

// toolSummaries describes each bundled tool for listing. Kept in
// registration order.
var toolSummaries = []struct {
	id, docs, what string
}{
	{"tokens_words_counter", "--manuscript", "Count words and tokens, report whether the prompt fits the budget"},
	{"manuscript_consistency_checker", "--manuscript --world", "Audit the manuscript against its world reference document"},
	{"character_analyzer", "--manuscript", "Catalog characters, roles, and arcs"},
	{"plot_thread_tracker", "--manuscript --outline", "Track plot threads against the outline"},
	{"prose_polish_check", "--manuscript", "Line-level prose audit"},
}

// ListTools prints the bundled tool catalog.
func ListTools(verbose bool) {
	fmt.Println("Available tools:")
	for _, s := range toolSummaries {
		if verbose {
			fmt.Printf("  %-32s %s\n%36s(inputs: %s)\n", s.id, s.what, "", s.docs)
		} else {
			fmt.Printf("  %-32s %s\n", s.id, s.what)
		}
	}
}

// SetProject records path as the current project, the default save
// directory for reports.
func SetProject(path, dbPath string) error {
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetCurrentProject(path); err != nil {
		return err
	}
	fmt.Printf("Current project: %s\n", path)
	return nil
}

// ShowProject prints the current project path.
func ShowProject(dbPath string) error {
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.CurrentProject()
	if err != nil {
		return err
	}
	fmt.Printf("Current project: %s\n", path)
	return nil
}

// ShowRuns prints the recorded run history for a tool, newest first.
func ShowRuns(toolID, dbPath string) error {
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.RunsFor(toolID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No recorded runs for %s\n", toolID)
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), rec.RunID)
		fmt.Printf("  prompt %d tokens, response %d tokens, %.1fs\n",
			rec.PromptTokens, rec.ResponseTokens, rec.ElapsedSeconds)
		for _, path := range rec.OutputPaths {
			fmt.Printf("  %s\n", path)
		}
	}
	return nil
}

// Session starts an interactive session. Tools run against a shared
// runner, so provider switches take effect for subsequent runs.
func Session(ctx context.Context, opts Options) error {
	runner, registry, store, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	service := runner.Service()
	fmt.Printf("writers-toolkit session. Provider: %s (%s).\n", service.Name(), service.Model())
	fmt.Println("Commands: tools, provider <name>, project <path>, run <tool_id> [key=path ...], exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "exit", "quit":
			return nil

		case "tools":
			ListTools(true)

		case "provider":
			if len(fields) != 2 {
				fmt.Println("Usage: provider <name>")
				continue
			}
			next, err := llm.NewService(fields[1], runner.Settings())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			runner.SwapService(next)
			fmt.Printf("Provider: %s (%s)\n", next.Name(), next.Model())

		case "project":
			if len(fields) != 2 {
				fmt.Println("Usage: project <path>")
				continue
			}
			if err := store.SetCurrentProject(fields[1]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Printf("Current project: %s\n", fields[1])

		case "run":
			if len(fields) < 2 {
				fmt.Println("Usage: run <tool_id> [key=path ...]")
				continue
			}
			docs := make(map[string]string)
			for _, kv := range fields[2:] {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					fmt.Printf("Ignoring malformed option %q (want key=path)\n", kv)
					continue
				}
				docs[key] = value
			}
			result, err := registry.ExecuteByID(ctx, fields[1], toolOptions(docs, opts))
			if err != nil {
				continue // runner already emitted the error
			}
			if err := recordRun(store, fields[1], result); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command %q\n", fields[0])
		}
	}
	return scanner.Err()
}
