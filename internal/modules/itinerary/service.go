// README: Itinerary service sends one-shot prompts to the model and keeps each owner's current trip.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Generator returns the raw structured-output text for a trip prompt.
type Generator interface {
	GenerateItinerary(ctx context.Context, prompt string) (string, error)
}

// CurrentStore keeps the latest itinerary per owner.
type CurrentStore interface {
	Save(ctx context.Context, owner string, it *TripItinerary) error
	Get(ctx context.Context, owner string) (*TripItinerary, error)
	Delete(ctx context.Context, owner string) error
}

// GenerationError is returned by Generate for every failure. It is always
// recoverable: the caller may re-prompt.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generate itinerary: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Service struct {
	gen   Generator
	store CurrentStore
	log   zerolog.Logger
}

// NewService builds a Service. store may be nil, in which case current-trip
// operations report ErrNotFound and generation still works.
func NewService(gen Generator, store CurrentStore, log zerolog.Logger) *Service {
	return &Service{gen: gen, store: store, log: log.With().Str("module", "itinerary").Logger()}
}

// Generate issues a single structured-output request and parses the result.
// There is no caching and no retry.
func (s *Service) Generate(ctx context.Context, prompt string) (*TripItinerary, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &GenerationError{Err: ErrEmptyPrompt}
	}

	raw, err := s.gen.GenerateItinerary(ctx, prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("trip generation failed")
		return nil, &GenerationError{Err: fmt.Errorf("provider: %w", err)}
	}

	it, err := Parse(raw)
	if err != nil {
		s.log.Warn().Err(err).Int("payload_bytes", len(raw)).Msg("unparseable itinerary payload")
		return nil, &GenerationError{Err: err}
	}

	s.log.Debug().
		Str("destination", it.Destination).
		Int("days", len(it.Days)).
		Msg("itinerary generated")
	return it, nil
}

// GenerateFor generates an itinerary and records it as owner's current trip.
// A failing store is logged and does not fail the generation.
func (s *Service) GenerateFor(ctx context.Context, owner, prompt string) (*TripItinerary, error) {
	it, err := s.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, owner, it); err != nil {
			s.log.Warn().Err(err).Str("owner", owner).Msg("failed to store current itinerary")
		}
	}
	return it, nil
}

// Current returns owner's latest itinerary.
func (s *Service) Current(ctx context.Context, owner string) (*TripItinerary, error) {
	if s.store == nil {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, owner)
}

// Discard drops owner's current itinerary ("New Trip"). Discarding when
// nothing is stored is not an error.
func (s *Service) Discard(ctx context.Context, owner string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, owner); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
