package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/fitai/fitai-server/pkg/types"
)

// Prompt names in the embedded catalogue.
const (
	PromptChatPersona       = "chat_persona"
	PromptGenerateWorkout   = "generate_workout"
	PromptGenerateDiet      = "generate_diet"
	PromptAnalyzeFoodImage  = "analyze_food_image"
	PromptAnalyzeFoodName   = "analyze_food_name"
	PromptWeeklySuggestions = "weekly_suggestions"
	PromptMealPlan          = "meal_plan"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptDef struct {
	System string   `yaml:"system"`
	User   []string `yaml:"user"`
}

type compiledPrompt struct {
	system *template.Template
	user   []*template.Template
}

// Catalog renders named prompts into chat messages.
type Catalog struct {
	prompts map[string]compiledPrompt
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// ParseCatalog compiles a YAML prompt catalogue.
func ParseCatalog(data []byte) (*Catalog, error) {
	var defs map[string]promptDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse prompt catalogue: %w", err)
	}

	c := &Catalog{prompts: make(map[string]compiledPrompt, len(defs))}
	for name, def := range defs {
		var cp compiledPrompt
		var err error
		if def.System != "" {
			if cp.system, err = template.New(name + ".system").Funcs(templateFuncs).Option("missingkey=error").Parse(def.System); err != nil {
				return nil, fmt.Errorf("prompt %s: %w", name, err)
			}
		}
		for i, u := range def.User {
			t, err := template.New(fmt.Sprintf("%s.user%d", name, i)).Funcs(templateFuncs).Option("missingkey=error").Parse(u)
			if err != nil {
				return nil, fmt.Errorf("prompt %s: %w", name, err)
			}
			cp.user = append(cp.user, t)
		}
		c.prompts[name] = cp
	}
	return c, nil
}

var defaultCatalog = func() *Catalog {
	c, err := ParseCatalog(promptsYAML)
	if err != nil {
		panic(err)
	}
	return c
}()

// DefaultCatalog returns the embedded prompt catalogue.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Names lists the prompt names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.prompts))
	for n := range c.prompts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render executes the named prompt with data. The system message, when
// present, comes first.
func (c *Catalog) Render(name string, data any) ([]types.ChatMessage, error) {
	p, ok := c.prompts[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt %q", name)
	}

	var msgs []types.ChatMessage
	if p.system != nil {
		text, err := execute(p.system, data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, types.ChatMessage{Role: types.RoleSystem, Content: text})
	}
	for _, t := range p.user {
		text, err := execute(t, data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, types.ChatMessage{Role: types.RoleUser, Content: text})
	}
	return msgs, nil
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
