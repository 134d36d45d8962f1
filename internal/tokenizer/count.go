package tokenizer

import (
	"bytes"
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// sniffLength bounds how much of a file is inspected before deciding it is binary.
const sniffLength = 8000

// ErrNilCounter is returned when counting is requested without a Counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a file or byte slice.
// Counted is false for binary content, which is skipped rather than estimated.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data using counter.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	if looksBinary(data) {
		return CountResult{}, nil
	}
	tokens, countError := counter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountFile estimates the token count of the file at path. The leading bytes
// are inspected first so binary files are skipped without being read whole.
//
// #nosec G304
func CountFile(counter Counter, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return CountResult{}, openError
	}
	defer fileHandle.Close()

	head := make([]byte, sniffLength)
	headLength, headError := io.ReadFull(fileHandle, head)
	if headError != nil && !errors.Is(headError, io.EOF) && !errors.Is(headError, io.ErrUnexpectedEOF) {
		return CountResult{}, headError
	}
	head = head[:headLength]
	if looksBinary(trimPartialRune(head, headLength == sniffLength)) {
		return CountResult{}, nil
	}

	rest, restError := io.ReadAll(fileHandle)
	if restError != nil {
		return CountResult{}, restError
	}
	return CountBytes(counter, append(head, rest...))
}

// looksBinary reports content that is not UTF-8 or contains NUL bytes.
func looksBinary(data []byte) bool {
	return !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0
}

// trimPartialRune drops a multi-byte rune cut off at the end of a truncated sniff buffer.
func trimPartialRune(data []byte, truncated bool) []byte {
	if !truncated {
		return data
	}
	for cut := 1; cut < utf8.UTFMax && cut <= len(data); cut++ {
		if utf8.RuneStart(data[len(data)-cut]) {
			if !utf8.FullRune(data[len(data)-cut:]) {
				return data[:len(data)-cut]
			}
			return data
		}
	}
	return data
}
