package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/ptree/internal/config"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

// treeFlagValues receives raw flag values before configuration is applied.
type treeFlagValues struct {
	exclude       []string
	include       []string
	useGitignore  bool
	useIgnoreFile bool
	includeGit    bool
	format        string
	strict        bool
	summary       bool
	tokens        bool
	model         string
	cacheSize     int
	clipboard     bool
	name          string
}

// treeOptions is the resolved invocation: explicit flags first, then
// configuration files and environment, then flag defaults.
type treeOptions struct {
	rootPath      string
	name          string
	exclude       []string
	include       []string
	useGitignore  bool
	useIgnoreFile bool
	includeGit    bool
	format        string
	strict        bool
	summary       bool
	tokens        bool
	model         string
	cacheSize     int
	clipboard     bool
}

func resolveTreeOptions(command *cobra.Command, flags *treeFlagValues, configuration config.TreeConfiguration, rootPath string) (treeOptions, error) {
	changed := func(flagName string) bool {
		flag := command.Flags().Lookup(flagName)
		return flag != nil && flag.Changed
	}
	stringSetting := func(flagName string, flagValue string, configured string) string {
		if changed(flagName) || configured == "" {
			return flagValue
		}
		return configured
	}
	boolSetting := func(flagName string, flagValue bool, configured *bool) bool {
		if changed(flagName) || configured == nil {
			return flagValue
		}
		return *configured
	}
	patternSetting := func(flagName string, flagValues []string, configured []string) []string {
		if changed(flagName) {
			return utils.DeduplicatePatterns(flagValues)
		}
		return utils.DeduplicatePatterns(configured)
	}

	options := treeOptions{
		rootPath:      rootPath,
		name:          projectNameOrDefault(flags.name, rootPath),
		exclude:       patternSetting(exclusionFlagName, flags.exclude, configuration.Exclude),
		include:       patternSetting(includeFlagName, flags.include, configuration.Include),
		useGitignore:  boolSetting(gitignoreFlagName, flags.useGitignore, configuration.UseGitignore),
		useIgnoreFile: boolSetting(ignoreFlagName, flags.useIgnoreFile, configuration.UseIgnoreFile),
		includeGit:    boolSetting(includeGitFlagName, flags.includeGit, configuration.IncludeGit),
		format:        strings.ToLower(strings.TrimSpace(stringSetting(formatFlagName, flags.format, configuration.Format))),
		strict:        boolSetting(strictFlagName, flags.strict, configuration.Strict),
		summary:       boolSetting(summaryFlagName, flags.summary, configuration.Summary),
		tokens:        boolSetting(tokensFlagName, flags.tokens, configuration.Tokens.Enabled),
		model:         stringSetting(modelFlagName, flags.model, configuration.Tokens.Model),
		cacheSize:     flags.cacheSize,
		clipboard:     boolSetting(clipboardFlagName, flags.clipboard, configuration.Clipboard),
	}
	if !changed(cacheSizeFlagName) && configuration.CacheSize != nil {
		options.cacheSize = *configuration.CacheSize
	}

	switch options.format {
	case "":
		options.format = types.FormatRaw
	case types.FormatRaw, types.FormatJSON, types.FormatXML, types.FormatYAML:
	default:
		return treeOptions{}, fmt.Errorf(invalidFormatMessage, options.format)
	}
	return options, nil
}
