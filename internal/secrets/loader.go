// Package secrets resolves API credentials for job sources and AI providers.
// Keys are normally mounted as files so they stay out of config files and
// process listings; inline values are a fallback for local runs.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source names a credential and the places it may come from. File wins over
// Value when both are set.
type Source struct {
	// Name labels the credential in error messages, e.g. "gemini api key".
	Name string
	// Value is an inline credential from configuration or flags.
	Value string
	// File is a path to a file holding the credential.
	File string
}

// Load resolves the credential, preferring File over Value, and trims
// surrounding whitespace. A source that yields nothing usable is an error.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	value := src.Value
	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	if secret == "" {
		if file != "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
