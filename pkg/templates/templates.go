package templates

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultTemplatesPath = "templates.yaml"

// Set is one title/description template family. Titles are rotated by the
// caller; all strings are text/template bodies rendered with Params.
type Set struct {
	Titles      []string `yaml:"titles"`
	Description string   `yaml:"description"`
	Hashtags    string   `yaml:"hashtags"`
	Tags        []string `yaml:"tags"`
}

// Library holds every shipped template family: the studio set used by the
// default automation policy and the difficulty-keyed sets used by the
// daypart policy.
type Library struct {
	Studio  Set            `yaml:"studio"`
	Daypart map[string]Set `yaml:"daypart"`
}

// Params feeds template rendering.
type Params struct {
	Questions int
	Score     int
	Total     int
	Hashtags  string
}

// Load reads templates.yaml from the working directory, falling back to the
// built-in sets when the file does not exist.
func Load() (*Library, error) {
	lib, err := LoadFrom(defaultTemplatesPath)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return lib, err
}

// LoadFrom reads a template library from an explicit path. Sections left
// empty in the file keep their built-in values.
func LoadFrom(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}

	applyDefaults(&lib)
	return &lib, nil
}

// Title renders the rotation slot for a one-based iteration index, wrapping
// modulo the set size.
func (s Set) Title(iteration int, params Params) (string, error) {
	if len(s.Titles) == 0 {
		return "", fmt.Errorf("template set has no titles")
	}
	idx := (iteration - 1) % len(s.Titles)
	if idx < 0 {
		idx += len(s.Titles)
	}
	return render(s.Titles[idx], params)
}

// Describe renders the set's description body.
func (s Set) Describe(params Params) (string, error) {
	return render(s.Description, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("post").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
