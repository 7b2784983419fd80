//go:build !gosseract

package ocr

import (
	"context"
	"errors"
)

// ErrGosseractNotEnabled is returned when the gosseract engine is requested
// from a binary built without -tags gosseract.
var ErrGosseractNotEnabled = errors.New("gosseract engine not enabled; rebuild with -tags gosseract")

// GosseractEngine is unavailable in this build.
type GosseractEngine struct{}

func NewGosseractEngine(Config) (*GosseractEngine, error) {
	return nil, ErrGosseractNotEnabled
}

func (*GosseractEngine) Recognize(context.Context, string) (string, error) {
	return "", ErrGosseractNotEnabled
}

func (*GosseractEngine) Close() error { return nil }
