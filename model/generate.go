package model

import (
	"context"
	"strings"

	"mailcraft/config"
	"mailcraft/stream"
)

// Generate runs one exchange against a freshly built provider and feeds the
// fragments through stream.Consume. The credential check happens before the
// factory or the provider is touched.
func Generate(ctx context.Context, factory ProviderFactory, req GenerateRequest, onUpdate func(display string)) (stream.Result, error) {
	if RequiresCredential(req.ProviderID) && strings.TrimSpace(req.APIKey) == "" {
		return stream.Result{}, &CredentialError{ProviderID: req.ProviderID}
	}

	p, err := factory(req.ProviderID, req.APIKey, req.Model)
	if err != nil {
		return stream.Result{}, wrapGenerationError(req.ProviderID, err)
	}

	produce := func(ctx context.Context, emit func(string) error) error {
		return p.Generate(ctx, req, StreamCallback(emit))
	}

	res, err := stream.Consume(ctx, produce, onUpdate)
	if err != nil {
		config.DebugLog.Debugw("stream ended with error",
			"provider", req.ProviderID, "fragments", res.Fragments, "err", err)
		return res, wrapGenerationError(req.ProviderID, err)
	}

	config.DebugLog.Debugw("stream complete",
		"provider", req.ProviderID, "model", req.Model, "fragments", res.Fragments, "bytes", len(res.Final))
	return res, nil
}

// Exchange submits text and drives the whole exchange synchronously,
// calling onUpdate with each live display value. The returned error is nil
// on success, a Submit rejection, or the failure already recorded in the
// conversation.
func (m *Model) Exchange(ctx context.Context, text string, onUpdate func(display string)) error {
	req, err := m.Submit(text)
	if err != nil {
		return err
	}

	res, err := Generate(ctx, m.NewProvider, req, func(display string) {
		m.ApplyDisplay(display)
		if onUpdate != nil {
			onUpdate(display)
		}
	})
	if err != nil {
		m.Fail(err)
		return err
	}

	m.Complete(res.Final)
	return nil
}
