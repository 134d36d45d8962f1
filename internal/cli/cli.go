// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ptree/internal/config"
	"github.com/temirov/ptree/internal/output"
	"github.com/temirov/ptree/internal/services/clipboard"
	"github.com/temirov/ptree/internal/services/stream"
	"github.com/temirov/ptree/internal/tokenizer"
	"github.com/temirov/ptree/internal/tree"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

const (
	versionFlagName      = "version"
	verboseFlagName      = "verbose"
	configFlagName       = "config"
	versionTemplate      = "ptree version: %s\n"
	defaultPath          = "."
	rootUse              = "ptree"
	rootShortDescription = "ptree command line interface"
	rootLongDescription  = `ptree builds an in-memory tree of a project directory and aggregates
file sizes, line counts and optional token estimates bottom-up.
Use plant to build, summarize and render a tree, tree to list the structure,
info to show the project header and init to write a configuration file.`
	versionFlagDescription = "display application version"
	verboseFlagDescription = "log metric fallbacks and progress at debug level"
	configFlagDescription  = "path to a configuration file (default ./" + utils.ConfigFileName + ")"

	plantUse              = "plant [path]"
	treeUse               = "tree [path]"
	infoUse               = "info [path]"
	initUse               = "init"
	plantAlias            = "p"
	treeAlias             = "t"
	infoAlias             = "i"
	plantShortDescription = "build, summarize and render a project tree (" + plantAlias + ")"
	treeShortDescription  = "list the project structure without metrics (" + treeAlias + ")"
	infoShortDescription  = "show the project header (" + infoAlias + ")"
	initShortDescription  = "write a default configuration file"

	// plantLongDescription provides detailed help for the plant command.
	plantLongDescription = `Build the tree rooted at path, compute sizes and line counts for every file
and directory, and render the result. Use --format to select raw, json, xml or yaml output.
Unreadable files count as zero unless --strict is set.`
	// plantUsageExample demonstrates plant command usage.
	plantUsageExample = `  # Summarize the current directory as JSON
  ptree plant --format json

  # Respect .gitignore, skip vendor and count tokens
  ptree plant --gitignore -e vendor/ --tokens ./service`

	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # List only Go sources
  ptree tree --include '*.go' .`

	initLongDescription = `Write the default configuration template to ./` + utils.ConfigFileName + `
or, with --global, to ~/` + utils.GlobalConfigDirectoryName + `/` + utils.ConfigFileName + `.`

	exclusionFlagName  = "e"
	includeFlagName    = "include"
	gitignoreFlagName  = "gitignore"
	ignoreFlagName     = "ignore"
	includeGitFlagName = "git"
	formatFlagName     = "format"
	strictFlagName     = "strict"
	summaryFlagName    = "summary"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	cacheSizeFlagName  = "cache-size"
	clipboardFlagName  = "clipboard"
	nameFlagName       = "name"
	globalFlagName     = "global"
	forceFlagName      = "force"

	exclusionFlagDescription  = "exclude path pattern (repeatable)"
	includeFlagDescription    = "include only files matching pattern (repeatable)"
	gitignoreFlagDescription  = "exclude paths listed in .gitignore files"
	ignoreFlagDescription     = "exclude paths listed in .ignore files"
	includeGitFlagDescription = "include the .git directory"
	formatFlagDescription     = "output format: raw, json, xml or yaml"
	strictFlagDescription     = "fail on the first unreadable file instead of counting it as zero"
	summaryFlagDescription    = "include sizes, line counts and totals in the output"
	tokensFlagDescription     = "include token counts"
	modelFlagDescription      = "tokenizer model to use for token counting"
	cacheSizeFlagDescription  = "number of line counts kept in memory (0 disables the cache)"
	clipboardFlagDescription  = "copy the rendered output to the clipboard"
	nameFlagDescription       = "project name (default: base name of path)"
	globalFlagDescription     = "write the global configuration file"
	forceFlagDescription      = "overwrite an existing configuration file"

	invalidFormatMessage        = "invalid format value '%s'"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loadIgnorePatternsFormat    = "load ignore patterns for %s: %w"
	configurationWrittenFormat  = "Configuration written to %s\n"

	logBuildingMessage      = "building project tree"
	logSummarizedMessage    = "project tree summarized"
	logClipboardUnavailable = "clipboard unavailable, output not copied"
	logClipboardCopied      = "output copied to clipboard"
	logFieldPath            = "path"
	logFieldFormat          = "format"
	logFieldStrict          = "strict"
	logFieldTokens          = "tokens"
	logFieldPatterns        = "exclude_patterns"
	logFieldBytes           = "bytes"
	logFieldCacheHits       = "line_cache_hits"
	logFieldFallbacks       = "metric_fallbacks"
)

// application carries state shared by every subcommand once the root
// command's pre-run hook has executed.
type application struct {
	logger        *zap.Logger
	configuration config.ApplicationConfiguration
	copier        clipboard.Copier
	configPath    string
	verbose       bool
}

// Execute runs the ptree application.
func Execute() error {
	rootCommand := createRootCommand(&application{copier: clipboard.NewSystemCopier()})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			return app.initialize()
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createPlantCommand(app),
		createTreeCommand(app),
		createInfoCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// initialize builds the logger and loads configuration files.
func (app *application) initialize() error {
	if app.logger == nil {
		level := zapcore.InfoLevel
		if app.verbose {
			level = zapcore.DebugLevel
		}
		logger, loggerError := utils.NewApplicationLoggerWithLevel(level)
		if loggerError != nil {
			return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
		}
		app.logger = logger
	}
	if app.copier == nil {
		app.copier = clipboard.NewSystemCopier()
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: app.configPath,
	})
	if loadError != nil {
		return loadError
	}
	app.configuration = configuration
	return nil
}

// createPlantCommand returns the plant subcommand.
func createPlantCommand(app *application) *cobra.Command {
	flags := &treeFlagValues{}

	plantCommand := &cobra.Command{
		Use:     plantUse,
		Aliases: []string{plantAlias},
		Short:   plantShortDescription,
		Long:    plantLongDescription,
		Example: plantUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options, resolveError := resolveTreeOptions(command, flags, app.configuration.Tree, rootPathArgument(arguments))
			if resolveError != nil {
				return resolveError
			}
			return runPlant(command.Context(), app, options, command.OutOrStdout(), command.ErrOrStderr())
		},
	}

	addFilterFlags(plantCommand, flags)
	plantCommand.Flags().StringVar(&flags.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(plantCommand.Flags(), &flags.strict, strictFlagName, false, strictFlagDescription)
	registerBooleanFlag(plantCommand.Flags(), &flags.summary, summaryFlagName, true, summaryFlagDescription)
	registerBooleanFlag(plantCommand.Flags(), &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	plantCommand.Flags().StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	plantCommand.Flags().IntVar(&flags.cacheSize, cacheSizeFlagName, config.DefaultCacheSize, cacheSizeFlagDescription)
	registerBooleanFlag(plantCommand.Flags(), &flags.clipboard, clipboardFlagName, false, clipboardFlagDescription)
	plantCommand.Flags().StringVar(&flags.name, nameFlagName, "", nameFlagDescription)
	return plantCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(app *application) *cobra.Command {
	flags := &treeFlagValues{}

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options, resolveError := resolveTreeOptions(command, flags, app.configuration.Tree, rootPathArgument(arguments))
			if resolveError != nil {
				return resolveError
			}
			project, buildError := buildProject(app, options)
			if buildError != nil {
				return buildError
			}
			return project.PrintTree(command.OutOrStdout())
		},
	}

	addFilterFlags(treeCommand, flags)
	treeCommand.Flags().StringVar(&flags.name, nameFlagName, "", nameFlagDescription)
	return treeCommand
}

// createInfoCommand returns the info subcommand.
func createInfoCommand(app *application) *cobra.Command {
	var projectName string

	infoCommand := &cobra.Command{
		Use:     infoUse,
		Aliases: []string{infoAlias},
		Short:   infoShortDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := rootPathArgument(arguments)
			project := tree.New(projectNameOrDefault(projectName, rootPath), rootPath, nil)
			return project.Show(command.OutOrStdout())
		},
	}
	infoCommand.Flags().StringVar(&projectName, nameFlagName, "", nameFlagDescription)
	return infoCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, destinationPath)
			return writeError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// addFilterFlags registers path-filtering flags on the command.
func addFilterFlags(command *cobra.Command, flags *treeFlagValues) {
	command.Flags().StringArrayVarP(&flags.exclude, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	command.Flags().StringArrayVar(&flags.include, includeFlagName, nil, includeFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.useIgnoreFile, ignoreFlagName, false, ignoreFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.includeGit, includeGitFlagName, false, includeGitFlagDescription)
}

func rootPathArgument(arguments []string) string {
	if len(arguments) == 0 {
		return defaultPath
	}
	return arguments[0]
}

func projectNameOrDefault(name string, rootPath string) string {
	if name != "" {
		return name
	}
	absolutePath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return filepath.Base(rootPath)
	}
	return filepath.Base(absolutePath)
}

// buildProject loads ignore patterns and builds, but does not summarize, the
// project tree.
func buildProject(app *application, options treeOptions) (*tree.ProjectTree, error) {
	projectConfig, configError := projectConfiguration(options)
	if configError != nil {
		return nil, configError
	}
	return newBuiltProject(app, options, projectConfig, tree.ProjectOptions{})
}

// plantProject builds the project tree with the metric collaborators the
// options select and summarizes it.
func plantProject(app *application, options treeOptions) (*tree.ProjectTree, error) {
	projectConfig, configError := projectConfiguration(options)
	if configError != nil {
		return nil, configError
	}

	metrics, metricsError := tree.NewDiskMetrics(options.cacheSize)
	if metricsError != nil {
		return nil, metricsError
	}
	aggregatorOptions := tree.AggregatorOptions{
		Metrics: metrics,
		Logger:  app.logger,
	}
	if options.strict {
		aggregatorOptions.Policy = tree.PolicyStrict
	}
	if options.tokens {
		counter, _, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.model})
		if counterError != nil {
			return nil, counterError
		}
		aggregatorOptions.TokenCounter = counter
	}

	project, buildError := newBuiltProject(app, options, projectConfig, tree.ProjectOptions{
		Aggregator: tree.NewAggregator(aggregatorOptions),
	})
	if buildError != nil {
		return nil, buildError
	}
	if summarizeError := project.Summarize(); summarizeError != nil {
		return nil, summarizeError
	}
	app.logger.Debug(logSummarizedMessage,
		zap.Uint64(logFieldCacheHits, metrics.CacheHits()),
		zap.Int(logFieldFallbacks, len(project.Fallbacks())),
	)
	return project, nil
}

func newBuiltProject(app *application, options treeOptions, projectConfig *tree.ProjectConfig, projectOptions tree.ProjectOptions) (*tree.ProjectTree, error) {
	app.logger.Debug(logBuildingMessage,
		zap.String(logFieldPath, options.rootPath),
		zap.String(logFieldFormat, options.format),
		zap.Bool(logFieldStrict, options.strict),
		zap.Bool(logFieldTokens, options.tokens),
		zap.Strings(logFieldPatterns, projectConfig.Exclude),
	)
	project := tree.NewWithOptions(options.name, options.rootPath, projectConfig, projectOptions)
	if buildError := project.Build(); buildError != nil {
		return nil, buildError
	}
	return project, nil
}

// projectConfiguration merges explicit patterns with the contents of ignore files.
// Ignore files are only consulted for directory roots; a missing root is left
// for the tree builder to report.
func projectConfiguration(options treeOptions) (*tree.ProjectConfig, error) {
	projectConfig := tree.NewProjectConfig().AddIncludes(options.include...)

	rootInfo, statError := os.Stat(options.rootPath)
	if statError != nil || !rootInfo.IsDir() {
		return projectConfig.AddExcludes(options.exclude...), nil
	}

	patterns, loadError := config.LoadIgnorePatterns(options.rootPath, config.IgnoreOptions{
		UseGitignore:  options.useGitignore,
		UseIgnoreFile: options.useIgnoreFile,
		IncludeGit:    options.includeGit,
		Exclude:       options.exclude,
	})
	if loadError != nil {
		return nil, fmt.Errorf(loadIgnorePatternsFormat, options.rootPath, loadError)
	}
	return projectConfig.AddExcludes(patterns...), nil
}

// runPlant builds, summarizes and renders the project tree.
func runPlant(ctx context.Context, app *application, options treeOptions, stdout io.Writer, stderr io.Writer) (err error) {
	project, plantError := plantProject(app, options)
	if plantError != nil {
		return plantError
	}

	var rendered bytes.Buffer
	destination := stdout
	if options.clipboard {
		destination = io.MultiWriter(stdout, &rendered)
	}

	renderer, rendererError := output.NewStreamRenderer(options.format, destination, stderr, options.summary)
	if rendererError != nil {
		return rendererError
	}

	producer := func(streamCtx context.Context, ch chan<- stream.Event) error {
		return stream.StreamProject(streamCtx, project, stream.StreamOptions{Command: types.CommandPlant, TokenModel: tokenModelFor(options)}, ch)
	}
	if dispatchError := dispatchStream(ctx, producer, renderer.Handle); dispatchError != nil {
		return dispatchError
	}
	if flushError := renderer.Flush(); flushError != nil {
		return flushError
	}

	if options.clipboard {
		if !app.copier.Available() {
			app.logger.Warn(logClipboardUnavailable)
			return nil
		}
		if copyError := app.copier.Copy(rendered.String()); copyError != nil {
			return copyError
		}
		app.logger.Debug(logClipboardCopied, zap.Int(logFieldBytes, rendered.Len()))
	}
	return nil
}

func tokenModelFor(options treeOptions) string {
	if !options.tokens {
		return ""
	}
	return options.model
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
