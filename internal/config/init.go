package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ptree/internal/tokenizer"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	// DefaultCacheSize is the number of per-file metric entries kept in memory.
	DefaultCacheSize = 1024

	configurationDirectoryPermissions = 0o755
	configurationFilePermissions      = 0o600

	errorInitWorkingDirectoryFormat  = "determine working directory for configuration: %w"
	errorInitHomeDirectoryFormat     = "resolve home directory for configuration: %w"
	errorInitCreateDirectoryFormat   = "create configuration directory %s: %w"
	errorInitUnsupportedTargetFormat = "unsupported init target %q"
	errorInitExistsFormat            = "configuration file already exists at %s (use --force to overwrite)"
	errorInitEncodeFormat            = "encode default configuration: %w"
	errorInitWriteFormat             = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultApplicationConfiguration returns every setting at its built-in value.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	enabled, disabled := true, false
	cacheSize := DefaultCacheSize
	return ApplicationConfiguration{Tree: TreeConfiguration{
		Format:        types.FormatRaw,
		Summary:       &enabled,
		Strict:        &disabled,
		Include:       []string{},
		Exclude:       []string{},
		UseGitignore:  &disabled,
		UseIgnoreFile: &disabled,
		IncludeGit:    &disabled,
		CacheSize:     &cacheSize,
		Clipboard:     &disabled,
		Tokens:        TokenConfiguration{Enabled: &disabled, Model: tokenizer.DefaultModel},
	}}
}

// InitializeConfiguration writes the default configuration to the requested
// target and returns the written path. An existing file is only replaced when
// Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveError := initDestination(options)
	if resolveError != nil {
		return "", resolveError
	}

	template, encodeError := yaml.Marshal(DefaultApplicationConfiguration())
	if encodeError != nil {
		return "", fmt.Errorf(errorInitEncodeFormat, encodeError)
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !options.Force {
		openFlags |= os.O_EXCL
	}
	fileHandle, openError := os.OpenFile(destinationPath, openFlags, configurationFilePermissions)
	if openError != nil {
		if errors.Is(openError, fs.ErrExist) {
			return "", fmt.Errorf(errorInitExistsFormat, destinationPath)
		}
		return "", fmt.Errorf(errorInitWriteFormat, destinationPath, openError)
	}
	_, writeError := fileHandle.Write(template)
	if closeError := fileHandle.Close(); writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		return "", fmt.Errorf(errorInitWriteFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case InitTargetLocal, "":
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(errorInitWorkingDirectoryFormat, err)
			}
			workingDirectory = currentDirectory
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(errorInitHomeDirectoryFormat, err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, configurationDirectoryPermissions); err != nil {
			return "", fmt.Errorf(errorInitCreateDirectoryFormat, configurationDirectory, err)
		}
		return filepath.Join(configurationDirectory, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf(errorInitUnsupportedTargetFormat, options.Target)
	}
}
