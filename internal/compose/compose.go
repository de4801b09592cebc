// Package compose renders announcement text from the post template.
package compose

import (
	"bytes"
	"errors"
	"text/template"
	"unicode/utf8"

	"github.com/spysats/spysats/internal/model"
)

// MaxLength is the character cap the feed enforces on a post.
const MaxLength = 240

// ErrTooLong is returned when the rendered post exceeds MaxLength characters.
var ErrTooLong = errors.New("rendered post exceeds the feed length limit")

// Composer renders post text from a template.
type Composer struct {
	template *template.Template
}

// Load parses the post template from a file.
func Load(path string) (*Composer, error) {
	tmpl, err := template.ParseFiles(path)

	if err != nil {
		return nil, err
	}

	return &Composer{template: tmpl}, nil
}

// New parses the post template from a string.
func New(text string) (*Composer, error) {
	tmpl, err := template.New("post").Parse(text)

	if err != nil {
		return nil, err
	}

	return &Composer{template: tmpl}, nil
}

// Render produces the post text for a data bundle.
//
// Windows without a baseline are rendered by the template's fallback
// branches, so absent fields never fail the render.
func (composer *Composer) Render(data model.PostData) (string, error) {
	var buffer bytes.Buffer

	if err := composer.template.Execute(&buffer, data); err != nil {
		return "", err
	}

	text := buffer.String()

	if utf8.RuneCountInString(text) > MaxLength {
		return "", ErrTooLong
	}

	return text, nil
}
