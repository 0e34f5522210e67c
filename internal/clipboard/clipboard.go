// Package clipboard copies rendered output to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const (
	clipboardUnsupportedMessageConstant = "system clipboard is not available"
	clipboardWriteErrorTemplateConstant = "copy to clipboard: %w"
)

// ErrClipboardUnsupported indicates no clipboard utility is available on this system.
var ErrClipboardUnsupported = errors.New(clipboardUnsupportedMessageConstant)

// Copier copies text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier with github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	if writeError := clipboard.WriteAll(text); writeError != nil {
		return fmt.Errorf(clipboardWriteErrorTemplateConstant, writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
