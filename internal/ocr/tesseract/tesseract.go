// Package tesseract implements ocr.Recognizer on top of the tesseract C library.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs tesseract with a fresh client per image. At most maxInFlight
// tesseract calls run at once, counting calls abandoned by a canceled caller
// until they actually finish.
type Recognizer struct {
	clientFactory func() *gosseract.Client
	run           func(image []byte, lang string) (string, error)
	slots         chan struct{}
}

// NewRecognizer constructs a tesseract-backed recognizer. maxInFlight <= 0 means 1.
func NewRecognizer(maxInFlight int) *Recognizer {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	r := &Recognizer{
		clientFactory: gosseract.NewClient,
		slots:         make(chan struct{}, maxInFlight),
	}
	r.run = r.recognize
	return r
}

type result struct {
	text string
	err  error
}

// Recognize returns the plain text of image. The tesseract call itself cannot be
// interrupted, so on cancellation it is left to finish in the background and keeps
// its slot until then.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	select {
	case r.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	done := make(chan result, 1)
	go func() {
		defer func() { <-r.slots }()
		text, err := r.run(image, lang)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (r *Recognizer) recognize(image []byte, lang string) (string, error) {
	c := r.clientFactory()
	defer c.Close()

	if lang != "" {
		if err := c.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
