// Package output renders scripts, parameters and commands as raw text, JSON,
// YAML or XML.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/psrun/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	xmlHeader         = xml.Header
	xmlScriptsElement = "scripts"

	rawNoScripts         = "(no scripts)"
	rawNoParameters      = "  (no parameters)"
	rawParameterFormat   = "  -%s [%s]"
	rawDefaultFormat     = " = %s"
	rawDependsOnFormat   = " (depends on %s)"
	rawDisabledMarker    = " (disabled)"
	rawErrorFormat       = "  error: %s"
	rawCommandLineLabel  = "Command: "
	rawAdministratorNote = "Running as administrator"
	rawLaunchedFormat    = "Launched %s"

	errorUnsupportedFormat = "%w: %q (expected one of %s)"
)

// ErrUnsupportedFormat reports an unknown --format value.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ValidateFormat checks that format is one of types.SupportedFormats.
func ValidateFormat(format string) error {
	for _, supported := range types.SupportedFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf(errorUnsupportedFormat, ErrUnsupportedFormat, format, strings.Join(types.SupportedFormats, ", "))
}

// RenderScripts renders a script listing.
func RenderScripts(format string, scriptOutputs []types.ScriptOutput) (string, error) {
	switch format {
	case types.FormatRaw:
		return renderScriptsRaw(scriptOutputs), nil
	case types.FormatXML:
		wrapper := struct {
			XMLName xml.Name             `xml:""`
			Scripts []types.ScriptOutput `xml:"script"`
		}{
			XMLName: xml.Name{Local: xmlScriptsElement},
			Scripts: scriptOutputs,
		}
		return renderXML(wrapper)
	default:
		if scriptOutputs == nil {
			scriptOutputs = []types.ScriptOutput{}
		}
		return renderStructured(format, scriptOutputs)
	}
}

// RenderScript renders a single script with its parameters.
func RenderScript(format string, scriptOutput types.ScriptOutput) (string, error) {
	switch format {
	case types.FormatRaw:
		var buffer bytes.Buffer
		writeScriptRaw(&buffer, scriptOutput, true)
		return buffer.String(), nil
	case types.FormatXML:
		return renderXML(scriptOutput)
	default:
		return renderStructured(format, scriptOutput)
	}
}

// RenderCommand renders a prepared or launched command. The raw form of a
// prepared command is the bare command line so it can be pasted into a
// terminal.
func RenderCommand(format string, commandOutput types.CommandOutput) (string, error) {
	switch format {
	case types.FormatRaw:
		return renderCommandRaw(commandOutput), nil
	case types.FormatXML:
		return renderXML(commandOutput)
	default:
		if commandOutput.Arguments == nil {
			commandOutput.Arguments = []types.ArgumentOutput{}
		}
		return renderStructured(format, commandOutput)
	}
}

func renderStructured(format string, value any) (string, error) {
	switch format {
	case types.FormatJSON:
		encoded, jsonEncodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
		if jsonEncodeError != nil {
			return "", jsonEncodeError
		}
		return string(encoded) + "\n", nil
	case types.FormatYAML:
		var buffer bytes.Buffer
		encoder := yaml.NewEncoder(&buffer)
		encoder.SetIndent(yamlIndent)
		if yamlEncodeError := encoder.Encode(value); yamlEncodeError != nil {
			return "", yamlEncodeError
		}
		if closeError := encoder.Close(); closeError != nil {
			return "", closeError
		}
		return buffer.String(), nil
	default:
		return "", ValidateFormat(format)
	}
}

func renderXML(value any) (string, error) {
	encoded, xmlMarshalError := xml.MarshalIndent(value, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded) + "\n", nil
}

func renderScriptsRaw(scriptOutputs []types.ScriptOutput) string {
	if len(scriptOutputs) == 0 {
		return rawNoScripts + "\n"
	}
	var buffer bytes.Buffer
	for _, scriptOutput := range scriptOutputs {
		writeScriptRaw(&buffer, scriptOutput, false)
	}
	return buffer.String()
}

func writeScriptRaw(buffer *bytes.Buffer, scriptOutput types.ScriptOutput, showEmpty bool) {
	buffer.WriteString(scriptOutput.Name + "\n")
	if scriptOutput.Error != "" {
		buffer.WriteString(fmt.Sprintf(rawErrorFormat, scriptOutput.Error) + "\n")
		return
	}
	if len(scriptOutput.Parameters) == 0 {
		if showEmpty {
			buffer.WriteString(rawNoParameters + "\n")
		}
		return
	}
	for _, parameter := range scriptOutput.Parameters {
		buffer.WriteString(fmt.Sprintf(rawParameterFormat, parameter.Name, parameter.DeclaredType))
		if parameter.Default != nil {
			buffer.WriteString(fmt.Sprintf(rawDefaultFormat, *parameter.Default))
		}
		if parameter.DependsOn != "" {
			buffer.WriteString(fmt.Sprintf(rawDependsOnFormat, parameter.DependsOn))
			if !parameter.Enabled {
				buffer.WriteString(rawDisabledMarker)
			}
		}
		buffer.WriteString("\n")
	}
}

func renderCommandRaw(commandOutput types.CommandOutput) string {
	var buffer bytes.Buffer
	if commandOutput.Launched {
		buffer.WriteString(fmt.Sprintf(rawLaunchedFormat, commandOutput.Script) + "\n")
		if commandOutput.Administrator {
			buffer.WriteString(rawAdministratorNote + "\n")
		}
		buffer.WriteString(rawCommandLineLabel)
	}
	buffer.WriteString(commandOutput.CommandLine + "\n")
	return buffer.String()
}
