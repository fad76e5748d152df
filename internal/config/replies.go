package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Replies holds the assistant instructions and the fixed apology texts sent
// when the completion service fails. Defaults are the Spanish texts of the
// Armonie building assistant; a YAML file can override any field.
type Replies struct {
	SystemPrompt string `yaml:"systemPrompt"`

	ApologyConfig      string `yaml:"apologyConfig"`
	ApologyAuth        string `yaml:"apologyAuth"`
	ApologyNotFound    string `yaml:"apologyNotFound"`
	ApologyRateLimited string `yaml:"apologyRateLimited"`
	ApologyBadRequest  string `yaml:"apologyBadRequest"`
	ApologyUnknown     string `yaml:"apologyUnknown"`
}

// DefaultReplies returns the built-in reply texts.
func DefaultReplies() Replies {
	return Replies{
		SystemPrompt: `Eres un asistente virtual del edificio Armonie. Tu trabajo es responder preguntas sobre el manual de convivencia y normas del edificio de manera amable, clara y concisa.

INSTRUCCIONES:
- Responde siempre en español
- Sé amable y profesional
- Si no tienes información específica sobre algo, indica que pueden contactar a la administración
- Mantén las respuestas concisas pero útiles
- Si la pregunta no está relacionada con el edificio, redirige amablemente hacia temas del edificio`,

		ApologyConfig:      "Lo siento, hay un problema de configuración. Por favor contacta a la administración del edificio.",
		ApologyAuth:        "Lo siento, hay un problema de autenticación con el sistema. Por favor contacta a la administración del edificio.",
		ApologyNotFound:    "Lo siento, no encuentro la información del edificio en este momento. Por favor contacta a la administración.",
		ApologyRateLimited: "El sistema está temporalmente sobrecargado. Por favor intenta nuevamente en unos minutos.",
		ApologyBadRequest:  "Lo siento, no pude procesar tu consulta. Por favor intenta formularla de otra manera.",
		ApologyUnknown:     "Lo siento, hay un problema técnico temporal. Por favor contacta a la administración del edificio o intenta nuevamente más tarde.",
	}
}

// LoadReplies reads reply overrides from a YAML file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadReplies(path string) (Replies, error) {
	replies := DefaultReplies()
	if path == "" {
		return replies, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return replies, fmt.Errorf("cannot read replies file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &replies); err != nil {
		return replies, fmt.Errorf("cannot parse replies file %s: %w", path, err)
	}
	return replies, nil
}
