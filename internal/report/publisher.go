package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/changetree/internal/clipboard"
)

const (
	outputWriterNotConfiguredMessageConstant = "output writer not configured"
	clipboardNotConfiguredMessageConstant    = "clipboard copier not configured"
	outputDirectoryErrorTemplateConstant     = "create output directory %s: %w"
	outputFileErrorTemplateConstant          = "write output file %s: %w"
	clipboardCopyErrorTemplateConstant       = "copy output: %w"
	savedNoticeTemplateConstant              = "Output saved to %s.\n"
	outputWrittenLogMessageConstant          = "report written"
	outputCopiedLogMessageConstant           = "report copied to clipboard"
	formatLogFieldConstant                   = "format"
	destinationLogFieldConstant              = "destination"
	byteCountLogFieldConstant                = "bytes"
	standardOutputDestinationConstant        = "stdout"
	outputDirectoryPermissionsConstant       = 0o755
	outputFilePermissionsConstant            = 0o644
)

var (
	// ErrOutputWriterNotConfigured indicates a Publisher without a standard output writer.
	ErrOutputWriterNotConfigured = errors.New(outputWriterNotConfiguredMessageConstant)
	// ErrClipboardNotConfigured indicates a copy was requested without a clipboard copier.
	ErrClipboardNotConfigured = errors.New(clipboardNotConfiguredMessageConstant)
)

// PublishOptions selects where a rendered document goes.
type PublishOptions struct {
	Format          Format
	OutputPath      string
	CopyToClipboard bool
}

// Publisher renders documents and delivers them to standard output, a file
// and optionally the clipboard.
type Publisher struct {
	standardOutput io.Writer
	copier         clipboard.Copier
	logger         *zap.Logger
}

// NewPublisher constructs a Publisher. The copier may be nil when copies are never requested.
func NewPublisher(standardOutput io.Writer, copier clipboard.Copier, logger *zap.Logger) (*Publisher, error) {
	if standardOutput == nil {
		return nil, ErrOutputWriterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{standardOutput: standardOutput, copier: copier, logger: logger}, nil
}

// Publish renders document in options.Format. With an OutputPath the rendered
// bytes go to that file and a short notice goes to standard output; otherwise
// they go to standard output. A requested clipboard copy receives the same bytes.
func (publisher *Publisher) Publish(document Document, options PublishOptions) error {
	if options.CopyToClipboard && publisher.copier == nil {
		return ErrClipboardNotConfigured
	}

	renderer, rendererError := NewRenderer(options.Format)
	if rendererError != nil {
		return rendererError
	}

	var renderedOutput bytes.Buffer
	if renderError := renderer.Render(&renderedOutput, document); renderError != nil {
		return renderError
	}

	destination := standardOutputDestinationConstant
	if len(options.OutputPath) > 0 {
		destination = options.OutputPath
		if writeError := writeOutputFile(options.OutputPath, renderedOutput.Bytes()); writeError != nil {
			return writeError
		}
		if _, noticeError := fmt.Fprintf(publisher.standardOutput, savedNoticeTemplateConstant, options.OutputPath); noticeError != nil {
			return noticeError
		}
	} else if _, writeError := publisher.standardOutput.Write(renderedOutput.Bytes()); writeError != nil {
		return writeError
	}

	publisher.logger.Debug(
		outputWrittenLogMessageConstant,
		zap.String(formatLogFieldConstant, string(options.Format)),
		zap.String(destinationLogFieldConstant, destination),
		zap.Int(byteCountLogFieldConstant, renderedOutput.Len()),
	)

	if !options.CopyToClipboard {
		return nil
	}
	if copyError := publisher.copier.Copy(renderedOutput.String()); copyError != nil {
		return fmt.Errorf(clipboardCopyErrorTemplateConstant, copyError)
	}
	publisher.logger.Debug(outputCopiedLogMessageConstant, zap.Int(byteCountLogFieldConstant, renderedOutput.Len()))
	return nil
}

func writeOutputFile(outputPath string, content []byte) error {
	if directoryError := os.MkdirAll(filepath.Dir(outputPath), outputDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(outputDirectoryErrorTemplateConstant, outputPath, directoryError)
	}
	if writeError := os.WriteFile(outputPath, content, outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(outputFileErrorTemplateConstant, outputPath, writeError)
	}
	return nil
}
