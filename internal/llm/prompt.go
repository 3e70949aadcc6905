package llm

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// PromptKey identifies an embedded prompt template.
type PromptKey string

const (
	ReviewPrompt PromptKey = "review"
)

type promptData struct {
	RepoFullName string
	PRTitle      string
	Diff         string
}

// PromptManager loads the embedded prompt templates at startup.
type PromptManager struct {
	prompts map[PromptKey]*template.Template
}

// NewPromptManager parses all embedded *.prompt files.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[PromptKey]*template.Template)}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		name := file.Name()
		key := PromptKey(strings.TrimSuffix(name, filepath.Ext(name)))

		content, err := promptFiles.ReadFile("prompts/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt file %s: %w", name, err)
		}

		tmpl, err := template.New(string(key)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", name, err)
		}
		pm.prompts[key] = tmpl
	}

	return pm, nil
}

// Render executes the template for the given key.
func (pm *PromptManager) Render(key PromptKey, data any) (string, error) {
	tmpl, ok := pm.prompts[key]
	if !ok {
		return "", fmt.Errorf("no prompt found for key %q", key)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", key, err)
	}
	return buf.String(), nil
}
