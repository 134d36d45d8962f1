package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName       = "bool"
	toggleFlagImplicitValue  = "true"
	toggleFlagAcceptedValues = "true/false, yes/no, on/off, 1/0"
	toggleFlagLongPrefix     = "--"
	toggleFlagTerminator     = "--"

	toggleFlagUnboundFormat = "flag value %q has no destination"
	toggleFlagInvalidFormat = "invalid value %q for --%s (expected %s)"
)

// parseToggleLiteral accepts the spellings people type for on/off switches.
func parseToggleLiteral(literal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(literal)) {
	case "", "true", "t", "1", "yes", "y", "on":
		return true, true
	case "false", "f", "0", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// toggleFlag is a pflag.Value reporting type "bool" so it can be given bare
// (--summary) or with a literal (--summary=off, --summary off).
type toggleFlag struct {
	destination *bool
	name        string
}

func (flag *toggleFlag) Set(input string) error {
	if flag == nil || flag.destination == nil {
		return fmt.Errorf(toggleFlagUnboundFormat, input)
	}
	parsed, recognized := parseToggleLiteral(input)
	if !recognized {
		return fmt.Errorf(toggleFlagInvalidFormat, input, flag.name, toggleFlagAcceptedValues)
	}
	*flag.destination = parsed
	return nil
}

func (flag *toggleFlag) String() string {
	if flag == nil || flag.destination == nil {
		return toggleFlagImplicitValue
	}
	return strconv.FormatBool(*flag.destination)
}

func (flag *toggleFlag) Type() string {
	return toggleFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, destination *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || destination == nil {
		return
	}
	*destination = defaultValue
	registered := flagSet.VarPF(&toggleFlag{destination: destination, name: name}, name, "", usage)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleFlagImplicitValue
}

// normalizeBooleanFlagArguments joins "--flag literal" into "--flag=literal" for
// boolean flags anywhere in the command tree, since pflag never consumes a
// separate value for a flag with NoOptDefVal. Arguments after "--" are untouched.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	toggleNames := make(map[string]struct{})
	gatherToggleNames(command, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == toggleFlagTerminator {
			return append(normalized, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(argument, toggleFlagLongPrefix)
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isToggle := toggleNames[flagName]; isToggle {
				literal := arguments[index+1]
				if _, recognized := parseToggleLiteral(literal); recognized && literal != "" && !strings.HasPrefix(literal, "-") {
					normalized = append(normalized, argument+"="+literal)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func gatherToggleNames(command *cobra.Command, names map[string]struct{}) {
	record := func(flag *pflag.Flag) {
		if flag.Value != nil && flag.Value.Type() == toggleFlagTypeName {
			names[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, subcommand := range command.Commands() {
		gatherToggleNames(subcommand, names)
	}
}
