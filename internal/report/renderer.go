package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	lineTerminatorConstant                    = "\n"
	directoryStructureHeadingConstant         = "### Directory Structure:"
	fileContentsHeadingConstant               = "### File Contents:"
	fileHeadingTemplateConstant               = "#### %s:"
	codeFenceCharacterConstant                = '`'
	minimumCodeFenceLengthConstant            = 3
	jsonIndentConstant                        = "  "
	yamlIndentConstant                        = 2
	renderErrorTemplateConstant               = "render %s output: %w"
	unsupportedRendererFormatTemplateConstant = "%w: %q"
)

// Renderer writes a Document in one output format.
type Renderer interface {
	Render(writer io.Writer, document Document) error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatText:
		return TextRenderer{}, nil
	case FormatMarkdown:
		return MarkdownRenderer{}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatYAML:
		return YAMLRenderer{}, nil
	default:
		return nil, fmt.Errorf(unsupportedRendererFormatTemplateConstant, ErrUnsupportedFormat, format)
	}
}

// TextRenderer writes the outline lines only.
type TextRenderer struct{}

// Render writes one outline line per row.
func (TextRenderer) Render(writer io.Writer, document Document) error {
	var builder strings.Builder
	writeLines(&builder, document.Lines)
	if _, writeError := io.WriteString(writer, builder.String()); writeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, FormatText, writeError)
	}
	return nil
}

// MarkdownRenderer writes the evaluation bundle: the directory structure
// followed by one fenced block per collected file. The file section is omitted
// when the document carries no files.
type MarkdownRenderer struct{}

// Render writes the bundle.
func (MarkdownRenderer) Render(writer io.Writer, document Document) error {
	var builder strings.Builder
	builder.WriteString(directoryStructureHeadingConstant + lineTerminatorConstant + lineTerminatorConstant)
	writeLines(&builder, document.Lines)

	if len(document.Files) > 0 {
		builder.WriteString(lineTerminatorConstant + fileContentsHeadingConstant + lineTerminatorConstant)
		for _, file := range document.Files {
			writeFileSection(&builder, file)
		}
	}

	if _, writeError := io.WriteString(writer, builder.String()); writeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, FormatMarkdown, writeError)
	}
	return nil
}

// JSONRenderer writes the document as indented JSON.
type JSONRenderer struct{}

// Render encodes the document.
func (JSONRenderer) Render(writer io.Writer, document Document) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, FormatJSON, encodeError)
	}
	return nil
}

// YAMLRenderer writes the document as YAML.
type YAMLRenderer struct{}

// Render encodes the document.
func (YAMLRenderer) Render(writer io.Writer, document Document) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, FormatYAML, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, FormatYAML, closeError)
	}
	return nil
}

func writeLines(builder *strings.Builder, lines []string) {
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString(lineTerminatorConstant)
	}
}

func writeFileSection(builder *strings.Builder, file FileContent) {
	fence := codeFenceFor(file.Content)
	builder.WriteString(lineTerminatorConstant)
	builder.WriteString(fmt.Sprintf(fileHeadingTemplateConstant, file.Path) + lineTerminatorConstant)
	builder.WriteString(lineTerminatorConstant)
	builder.WriteString(fence + lineTerminatorConstant)
	builder.WriteString(file.Content)
	if len(file.Content) > 0 && !strings.HasSuffix(file.Content, lineTerminatorConstant) {
		builder.WriteString(lineTerminatorConstant)
	}
	builder.WriteString(fence + lineTerminatorConstant)
}

// codeFenceFor returns a backtick fence longer than any backtick run in content.
func codeFenceFor(content string) string {
	longestRun := 0
	currentRun := 0
	for _, character := range content {
		if character == codeFenceCharacterConstant {
			currentRun++
			longestRun = max(longestRun, currentRun)
			continue
		}
		currentRun = 0
	}
	return strings.Repeat(string(codeFenceCharacterConstant), max(minimumCodeFenceLengthConstant, longestRun+1))
}
