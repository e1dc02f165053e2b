package output

import (
	"github.com/temirov/psrun/internal/form"
	"github.com/temirov/psrun/internal/params"
	"github.com/temirov/psrun/internal/scripts"
	"github.com/temirov/psrun/internal/types"
)

// DescribeScript converts a catalog entry. A nil form leaves the parameters out.
func DescribeScript(descriptor scripts.Descriptor, inputForm *form.Form) types.ScriptOutput {
	scriptOutput := types.ScriptOutput{Name: descriptor.DisplayName, Path: descriptor.Path}
	if inputForm != nil {
		scriptOutput.Parameters = DescribeParameters(inputForm)
	}
	return scriptOutput
}

// DescribeParameters lists the form fields in order with their current state.
func DescribeParameters(inputForm *form.Form) []types.ParameterOutput {
	fields := inputForm.Fields()
	parameterOutputs := make([]types.ParameterOutput, 0, len(fields))
	for _, field := range fields {
		declaration := field.Declaration
		parameterOutput := types.ParameterOutput{
			Name:         declaration.Name,
			Type:         declaration.Type.String(),
			DeclaredType: declaration.TypeName,
			DependsOn:    declaration.DependsOn,
			Control:      string(field.Control),
			Value:        params.FormatValue(field.Value),
			Enabled:      inputForm.Enabled(declaration.Name),
		}
		if declaration.HasDefault() {
			formatted := params.FormatValue(declaration.Default)
			parameterOutput.Default = &formatted
		}
		parameterOutputs = append(parameterOutputs, parameterOutput)
	}
	return parameterOutputs
}

// DescribeArguments converts serialized arguments in order.
func DescribeArguments(arguments params.Arguments) []types.ArgumentOutput {
	entries := arguments.Entries()
	argumentOutputs := make([]types.ArgumentOutput, 0, len(entries))
	for _, entry := range entries {
		argumentOutputs = append(argumentOutputs, types.ArgumentOutput{Name: entry.Name, Value: params.FormatValue(entry.Value)})
	}
	return argumentOutputs
}
