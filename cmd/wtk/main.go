// Package main provides the wtk CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cleesmith/writers-toolkit-v2/cli"
)

var (
	// Global flags
	provider string
	dbPath   string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "wtk",
		Short: "AI manuscript analysis tools for fiction writers",
		Long: `A CLI for running AI-powered manuscript analysis tools.

Each tool reads your manuscript (and supporting documents), streams an
analysis from the configured model, and writes a plain-text report plus
an optional AI-thinking transcript next to your project.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (anthropic, openai, gemini)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cli.DefaultOptions().DBPath, "Path to the project database")

	// Add commands
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(sessionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var manuscript string
	var world string
	var outline string
	var saveDir string
	var skipThinking bool

	cmd := &cobra.Command{
		Use:   "run [tool_id]",
		Short: "Execute an analysis tool against your manuscript",
		Long: `Execute one analysis tool.

Reports land in --save-dir when given, otherwise in the current project
directory (see 'wtk project'). Use 'wtk tools -V' to see which input
documents each tool requires.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:     provider,
				SaveDir:      saveDir,
				SkipThinking: skipThinking,
				DBPath:       dbPath,
			}
			docs := make(map[string]string)
			if manuscript != "" {
				docs["manuscript_file"] = manuscript
			}
			if world != "" {
				docs["world_file"] = world
			}
			if outline != "" {
				docs["outline_file"] = outline
			}
			return cli.RunTool(context.Background(), args[0], docs, opts)
		},
	}

	cmd.Flags().StringVarP(&manuscript, "manuscript", "m", "", "Path to the manuscript file")
	cmd.Flags().StringVarP(&world, "world", "w", "", "Path to the world reference document")
	cmd.Flags().StringVarP(&outline, "outline", "o", "", "Path to the outline document")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "Directory for report files (default: current project)")
	cmd.Flags().BoolVar(&skipThinking, "skip-thinking", false, "Do not write the AI thinking transcript")

	return cmd
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show required input documents")

	return cmd
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project [path]",
		Short: "Show or set the current project directory",
		Long: `Show or set the current project directory.

With no argument, prints the current project. With a path, makes it the
default save directory for reports.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cli.ShowProject(dbPath)
			}
			return cli.SetProject(args[0], dbPath)
		},
	}

	return cmd
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [tool_id]",
		Short: "Show the recorded run history for a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ShowRuns(args[0], dbPath)
		},
	}

	return cmd
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start an interactive session",
		Long: `Start an interactive session.

Run tools, switch providers, and change the current project without
restarting. Type 'exit' to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider: provider,
				DBPath:   dbPath,
			}
			return cli.Session(context.Background(), opts)
		},
	}

	return cmd
}
