// Package tokenizer estimates language-model token counts for file contents.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config selects the tokenizer model.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	fallbackEncoding    = "cl100k_base"
	errorEncodingFormat = "load %s encoding: %w"
)

var errNilEncoding = errors.New("tokenizer encoding is not loaded")

// NewCounter returns a Counter for cfg.Model together with the name of the
// model or encoding it resolved to. Models tiktoken does not know are counted
// with the cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	if model == "" {
		model = DefaultModel
	}
	if encoding, modelError := tiktoken.EncodingForModel(model); modelError == nil {
		return tiktokenCounter{encoding: encoding, name: model}, model, nil
	}
	encoding, encodingError := tiktoken.GetEncoding(fallbackEncoding)
	if encodingError != nil {
		return nil, "", fmt.Errorf(errorEncodingFormat, fallbackEncoding, encodingError)
	}
	return tiktokenCounter{encoding: encoding, name: fallbackEncoding}, fallbackEncoding, nil
}

// tiktokenCounter counts BPE tokens with a loaded tiktoken encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
