package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultTokenEncoding is the tiktoken encoding used when none is configured.
	DefaultTokenEncoding = "cl100k_base"

	encodingLoadErrorTemplateConstant = "load token encoding %q: %w"
	nilEncodingMessageConstant        = "token encoding not loaded"
)

// ErrTokenEncodingNotLoaded indicates a TiktokenCounter without an encoding.
var ErrTokenEncodingNotLoaded = errors.New(nilEncodingMessageConstant)

// TokenCounter estimates how many model tokens a text occupies.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// TiktokenCounter counts tokens with a tiktoken BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the named encoding, or DefaultTokenEncoding when
// encodingName is blank. Loading may download the encoding ranks on first use
// unless TIKTOKEN_CACHE_DIR points at a populated cache.
func NewTiktokenCounter(encodingName string) (*TiktokenCounter, error) {
	resolvedName := strings.TrimSpace(encodingName)
	if len(resolvedName) == 0 {
		resolvedName = DefaultTokenEncoding
	}
	encoding, encodingError := tiktoken.GetEncoding(resolvedName)
	if encodingError != nil {
		return nil, fmt.Errorf(encodingLoadErrorTemplateConstant, resolvedName, encodingError)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// CountTokens returns the number of tokens in text.
func (counter *TiktokenCounter) CountTokens(text string) (int, error) {
	if counter == nil || counter.encoding == nil {
		return 0, ErrTokenEncodingNotLoaded
	}
	return len(counter.encoding.Encode(text, nil, nil)), nil
}
