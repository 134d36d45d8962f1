package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/ptree/internal/utils"
)

const (
	treeFormatKey       = "tree.format"
	treeSummaryKey      = "tree.summary"
	treeStrictKey       = "tree.strict"
	treeIncludeKey      = "tree.include"
	treeExcludeKey      = "tree.exclude"
	treeUseGitignoreKey = "tree.use_gitignore"
	treeUseIgnoreKey    = "tree.use_ignore"
	treeIncludeGitKey   = "tree.include_git"
	treeCacheSizeKey    = "tree.cache_size"
	treeClipboardKey    = "tree.clipboard"
	treeTokensKey       = "tree.tokens.enabled"
	treeTokenModelKey   = "tree.tokens.model"

	environmentKeySeparator = "_"
	configurationKeyDot     = "."

	errorWorkingDirectoryFormat  = "determine working directory: %w"
	errorResolveConfigFormat     = "resolve configuration path %s: %w"
	errorStatConfigFormat        = "stat configuration %s: %w"
	errorConfigIsDirectoryFormat = "configuration path %s is a directory"
	errorReadConfigFormat        = "read configuration from %s: %w"
	errorDecodeConfigFormat      = "decode configuration from %s: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Tree TreeConfiguration `mapstructure:"tree" yaml:"tree"`
}

// TreeConfiguration defines the defaults of the plant, tree and info commands.
// Pointer fields distinguish "unset" from an explicit false or zero.
type TreeConfiguration struct {
	Format        string             `mapstructure:"format" yaml:"format"`
	Summary       *bool              `mapstructure:"summary" yaml:"summary"`
	Strict        *bool              `mapstructure:"strict" yaml:"strict"`
	Include       []string           `mapstructure:"include" yaml:"include"`
	Exclude       []string           `mapstructure:"exclude" yaml:"exclude"`
	UseGitignore  *bool              `mapstructure:"use_gitignore" yaml:"use_gitignore"`
	UseIgnoreFile *bool              `mapstructure:"use_ignore" yaml:"use_ignore"`
	IncludeGit    *bool              `mapstructure:"include_git" yaml:"include_git"`
	CacheSize     *int               `mapstructure:"cache_size" yaml:"cache_size"`
	Clipboard     *bool              `mapstructure:"clipboard" yaml:"clipboard"`
	Tokens        TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// LoadApplicationConfiguration loads configuration from the global file, the
// local file and PTREE_* environment variables, later sources overriding earlier ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged = merged.Merge(loadEnvironmentConfiguration())

	merged.Tree.Include = utils.DeduplicatePatterns(merged.Tree.Include)
	merged.Tree.Exclude = utils.DeduplicatePatterns(merged.Tree.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolveConfigFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatConfigFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorConfigIsDirectoryFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadConfigFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfigFormat, path, decodeErr)
	}
	return config, nil
}

// loadEnvironmentConfiguration reads PTREE_TREE_* variables, for example
// PTREE_TREE_FORMAT=json or PTREE_TREE_EXCLUDE="vendor/ dist/".
func loadEnvironmentConfiguration() ApplicationConfiguration {
	reader := viper.New()
	reader.SetEnvPrefix(utils.EnvironmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(configurationKeyDot, environmentKeySeparator))
	reader.AutomaticEnv()

	var config ApplicationConfiguration
	if reader.IsSet(treeFormatKey) {
		config.Tree.Format = reader.GetString(treeFormatKey)
	}
	config.Tree.Summary = environmentBool(reader, treeSummaryKey)
	config.Tree.Strict = environmentBool(reader, treeStrictKey)
	if reader.IsSet(treeIncludeKey) {
		config.Tree.Include = reader.GetStringSlice(treeIncludeKey)
	}
	if reader.IsSet(treeExcludeKey) {
		config.Tree.Exclude = reader.GetStringSlice(treeExcludeKey)
	}
	config.Tree.UseGitignore = environmentBool(reader, treeUseGitignoreKey)
	config.Tree.UseIgnoreFile = environmentBool(reader, treeUseIgnoreKey)
	config.Tree.IncludeGit = environmentBool(reader, treeIncludeGitKey)
	if reader.IsSet(treeCacheSizeKey) {
		cacheSize := reader.GetInt(treeCacheSizeKey)
		config.Tree.CacheSize = &cacheSize
	}
	config.Tree.Clipboard = environmentBool(reader, treeClipboardKey)
	config.Tree.Tokens.Enabled = environmentBool(reader, treeTokensKey)
	if reader.IsSet(treeTokenModelKey) {
		config.Tree.Tokens.Model = reader.GetString(treeTokenModelKey)
	}
	return config
}

func environmentBool(reader *viper.Viper, key string) *bool {
	if !reader.IsSet(key) {
		return nil
	}
	value := reader.GetBool(key)
	return &value
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Strict != nil {
		result.Strict = cloneBool(override.Strict)
	}
	if len(override.Include) > 0 {
		result.Include = append([]string{}, utils.DeduplicatePatterns(override.Include)...)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.IncludeGit != nil {
		result.IncludeGit = cloneBool(override.IncludeGit)
	}
	if override.CacheSize != nil {
		result.CacheSize = cloneInt(override.CacheSize)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
