// Package types defines the rendered shapes shared by the output renderers
// and the psrun commands.
package types

import "encoding/xml"

const (
	CommandList    = "list"
	CommandParams  = "params"
	CommandCommand = "command"
	CommandRun     = "run"
	CommandWatch   = "watch"
	CommandInit    = "init"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXML  = "xml"
)

// SupportedFormats lists every accepted --format value.
var SupportedFormats = []string{FormatRaw, FormatJSON, FormatYAML, FormatXML}

// ScriptOutput describes one script, optionally with its parameters.
type ScriptOutput struct {
	XMLName    xml.Name          `json:"-" yaml:"-" xml:"script"`
	Name       string            `json:"name" yaml:"name" xml:"name"`
	Path       string            `json:"path" yaml:"path" xml:"path"`
	Parameters []ParameterOutput `json:"parameters,omitempty" yaml:"parameters,omitempty" xml:"parameters>parameter,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty" xml:"error,omitempty"`
}

// ParameterOutput is one declared parameter with the form state derived from it.
type ParameterOutput struct {
	Name         string  `json:"name" yaml:"name" xml:"name"`
	Type         string  `json:"type" yaml:"type" xml:"type"`
	DeclaredType string  `json:"declaredType" yaml:"declaredType" xml:"declaredType"`
	Default      *string `json:"default,omitempty" yaml:"default,omitempty" xml:"default,omitempty"`
	DependsOn    string  `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty" xml:"dependsOn,omitempty"`
	Control      string  `json:"control" yaml:"control" xml:"control"`
	Value        string  `json:"value" yaml:"value" xml:"value"`
	Enabled      bool    `json:"enabled" yaml:"enabled" xml:"enabled"`
}

// ArgumentOutput is one serialized argument.
type ArgumentOutput struct {
	Name  string `json:"name" yaml:"name" xml:"name"`
	Value string `json:"value" yaml:"value" xml:"value"`
}

// CommandOutput is the result of the command and run commands.
type CommandOutput struct {
	XMLName       xml.Name         `json:"-" yaml:"-" xml:"command"`
	Script        string           `json:"script" yaml:"script" xml:"script"`
	Path          string           `json:"path" yaml:"path" xml:"path"`
	Arguments     []ArgumentOutput `json:"arguments" yaml:"arguments" xml:"arguments>argument"`
	CommandLine   string           `json:"commandLine" yaml:"commandLine" xml:"commandLine"`
	Administrator bool             `json:"administrator" yaml:"administrator" xml:"administrator"`
	Launched      bool             `json:"launched" yaml:"launched" xml:"launched"`
}
