package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName          = "toggle"
	toggleFlagImplicitValue     = "true"
	toggleFlagAcceptedLiterals  = "true, false, yes, no, on, off, 1, 0"
	toggleFlagInvalidValueError = "invalid value %q for --%s; accepted values: %s"
)

var toggleFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseToggleLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleFlagImplicitValue
	}
	parsed, ok := toggleFlagLiterals[normalized]
	return parsed, ok
}

// toggleFlagValue is a boolean flag that also accepts yes/no style literals,
// either as --name=value or, after normalization, as --name value.
type toggleFlagValue struct {
	target *bool
	name   string
}

func (value *toggleFlagValue) Set(input string) error {
	parsed, ok := parseToggleLiteral(input)
	if !ok {
		return fmt.Errorf(toggleFlagInvalidValueError, input, value.name, toggleFlagAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&toggleFlagValue{target: target, name: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = toggleFlagImplicitValue
	}
}

// normalizeToggleArguments rewrites "--name literal" into "--name=literal"
// for toggle flags so that pflag does not treat the literal as a positional
// argument. Everything after "--" is left alone.
func normalizeToggleArguments(root *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	collectToggleFlagNames(root, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(current, "--") && !strings.Contains(current, "=") && index+1 < len(arguments) {
			name := strings.TrimPrefix(current, "--")
			next := arguments[index+1]
			if _, isToggle := toggleNames[name]; isToggle && !strings.HasPrefix(next, "-") {
				if _, isLiteral := parseToggleLiteral(next); isLiteral && next != "" {
					normalized = append(normalized, current+"="+next)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func collectToggleFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if flag.Value.Type() == toggleFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectToggleFlagNames(child, target)
	}
}
