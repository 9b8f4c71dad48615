package model

import (
	"errors"
	"fmt"

	"mailcraft/config"
)

var (
	// ErrMissingCredential is returned before any provider call when the
	// selected provider needs an API key and none is stored.
	ErrMissingCredential = errors.New("API Key is missing")

	ErrGenerationFailed   = errors.New("generation failed")
	ErrGenerationInFlight = errors.New("a template is already being generated")
	ErrEmptyInput         = errors.New("nothing to send")
	ErrNoTemplate         = errors.New("no template has been generated yet")
)

// CredentialError reports a missing API key for a provider. It matches
// ErrMissingCredential with errors.Is.
type CredentialError struct {
	ProviderID string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("API Key is missing. Please enter your %s API Key in the settings (alt+s) or run `mailcraft key set`.",
		config.ProviderDisplayName(e.ProviderID))
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// GenerationError wraps any failure raised while creating the provider or
// consuming its stream.
type GenerationError struct {
	ProviderID string
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s API Error: %v", apiLabel(e.ProviderID), e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

func apiLabel(providerID string) string {
	switch providerID {
	case "gemini":
		return "Gemini"
	case "":
		return "Model"
	default:
		return config.ProviderDisplayName(providerID)
	}
}

func wrapGenerationError(providerID string, err error) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerationError{ProviderID: providerID, Err: err}
}

// DescribeFailure is the text appended to the conversation for a failed
// exchange.
func DescribeFailure(err error) string {
	if err == nil || err.Error() == "" {
		return GenericFailureMessage
	}
	return err.Error()
}
