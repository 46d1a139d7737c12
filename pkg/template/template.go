package template

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

// Render substitutes {name} placeholders in text with values. Literal braces
// are written as {{ and }}.
func Render(text string, values map[string]any) (string, error) {
	out, err := prompts.RenderTemplate(text, prompts.TemplateFormatFString, values)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}

// Validate checks that text renders with nothing but the required placeholder
// and vars bound, and that the value bound to required reaches the output.
// An escaped {{required}} renders as a literal and does not count.
func Validate(text, required string, vars ...string) error {
	inputs := append([]string{required}, vars...)
	if err := prompts.CheckValidTemplate(text, prompts.TemplateFormatFString, inputs); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	sentinel := "\x00" + required + "\x00"
	values := make(map[string]any, len(inputs))
	for _, v := range vars {
		values[v] = ""
	}
	values[required] = sentinel
	out, err := Render(text, values)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	if !strings.Contains(out, sentinel) {
		return fmt.Errorf("template is missing the {%s} placeholder", required)
	}
	return nil
}
