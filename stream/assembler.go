package stream

import (
	"context"
	"strings"
)

// Assembler accumulates fragments in arrival order and keeps the live
// display value in sync with the full accumulated text.
//
// The display is always recomputed from the whole accumulator, so a fence
// opener split across two fragments is still stripped once it completes.
type Assembler struct {
	raw       strings.Builder
	display   string
	fragments int
}

// Append adds a fragment and returns the new display value.
func (a *Assembler) Append(fragment string) string {
	a.raw.WriteString(fragment)
	a.fragments++
	a.display = StripLeadingFence(a.raw.String())
	return a.display
}

func (a *Assembler) Display() string { return a.display }

func (a *Assembler) Raw() string { return a.raw.String() }

func (a *Assembler) Fragments() int { return a.fragments }

// Final returns the cleaned template. Only meaningful once the source is exhausted.
func (a *Assembler) Final() string {
	return Clean(a.raw.String())
}

// Producer yields fragments to emit until the underlying sequence is
// exhausted or fails. A non-nil error from emit must stop the producer and
// be returned unchanged.
type Producer func(ctx context.Context, emit func(fragment string) error) error

// Result is the outcome of a Consume call.
type Result struct {
	Raw       string
	Display   string
	Final     string
	Fragments int
}

// Consume drives a producer through an Assembler, calling onUpdate with the
// live display value once per fragment. onUpdate may be nil.
//
// When the producer fails, Consume returns the partial result gathered so
// far (Final left empty) together with the producer's error.
func Consume(ctx context.Context, produce Producer, onUpdate func(display string)) (Result, error) {
	var asm Assembler

	err := produce(ctx, func(fragment string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		display := asm.Append(fragment)
		if onUpdate != nil {
			onUpdate(display)
		}
		return nil
	})

	res := Result{
		Raw:       asm.Raw(),
		Display:   asm.Display(),
		Fragments: asm.Fragments(),
	}
	if err != nil {
		return res, err
	}

	res.Final = asm.Final()
	return res, nil
}
