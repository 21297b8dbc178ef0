package mailservice

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown email template")

// Every template file defines these three blocks.
var templateBlocks = [...]string{"subject", "plainBody", "htmlBody"}

// NewTemplate parses every embedded template. The files ship with the binary, so a
// parse failure is a programming error and panics.
func NewTemplate() *Template {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	sets := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		sets[name] = template.Must(template.New(name).ParseFS(templateFS, file))
	}

	return &Template{sets: sets}
}

// ParseTemplate renders the subject, plain text body and HTML body of the named template.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, ok := tp.sets[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var out [len(templateBlocks)]*bytes.Buffer
	for i, block := range templateBlocks {
		out[i] = new(bytes.Buffer)
		if err := t.ExecuteTemplate(out[i], block, data); err != nil {
			return nil, nil, nil, fmt.Errorf("render %s of %s: %w", block, name, err)
		}
	}

	return out[0], out[1], out[2], nil
}
