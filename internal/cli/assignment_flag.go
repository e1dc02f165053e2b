package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	assignmentFlagTypeName  = "Name=Value"
	assignmentSeparator     = "="
	assignmentListSeparator = ","
	parameterSigil          = "$"
	parameterDash           = "-"
	implicitAssignmentValue = "true"
	errorAssignmentFormat   = "%w: %q"
)

// errMalformedAssignment reports a --set value without a parameter name.
var errMalformedAssignment = errors.New("expected Name=Value")

// assignment is one --set value.
type assignment struct {
	name  string
	value string
}

// assignmentFlagValue collects repeated --set flags in command line order.
// A bare name sets the parameter to true, which is how switches are turned on.
type assignmentFlagValue struct {
	target *[]assignment
}

func (value *assignmentFlagValue) Set(input string) error {
	name, raw, found := strings.Cut(input, assignmentSeparator)
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(strings.TrimPrefix(name, parameterDash), parameterSigil)
	if name == "" {
		return fmt.Errorf(errorAssignmentFormat, errMalformedAssignment, input)
	}
	if !found {
		raw = implicitAssignmentValue
	}
	*value.target = append(*value.target, assignment{name: name, value: raw})
	return nil
}

func (value *assignmentFlagValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	rendered := make([]string, 0, len(*value.target))
	for _, entry := range *value.target {
		rendered = append(rendered, entry.name+assignmentSeparator+entry.value)
	}
	return strings.Join(rendered, assignmentListSeparator)
}

func (value *assignmentFlagValue) Type() string {
	return assignmentFlagTypeName
}

func registerAssignmentFlag(flagSet *pflag.FlagSet, target *[]assignment) {
	flagSet.VarP(&assignmentFlagValue{target: target}, setFlagName, setFlagShorthand, setFlagDescription)
}
