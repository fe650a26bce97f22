// Package catalog defines the title catalog: the starter titles a new
// slip opens with and the titles people have typed before.
package catalog

import (
	"context"
	"errors"

	"payslip/internal/core"
)

var ErrUnsupportedVersion = errors.New("catalog: unsupported seed file version")

// Ports for outbound adapters.
type (
	SeedReader interface {
		// Seed returns the titles a new slip starts with, in display order.
		Seed(ctx context.Context) (core.Seed, error)
	}

	SuggestionReader interface {
		// Suggestions returns known titles for kind, most used first.
		Suggestions(ctx context.Context, kind core.Kind) ([]string, error)
	}

	TitleRecorder interface {
		Record(ctx context.Context, kind core.Kind, title string) error
	}

	// Catalog is everything the draft service needs from a backend.
	Catalog interface {
		SeedReader
		SuggestionReader
		TitleRecorder
	}
)
