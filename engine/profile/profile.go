package profile

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/marklens/marklens/engine/item"
	"github.com/marklens/marklens/pkg/fn"
)

// Profile is a user's aggregate interest vector in the TF-IDF space of
// the vectorizer it was built with. It is created once per run and read
// only afterwards.
type Profile struct {
	Vector []float64
}

// CombinedText is the text field the profile is built from and candidates
// are scored on: title and URL concatenated. Using the same field on both
// sides keeps vectors comparable.
func CombinedText(r item.Record) string {
	return r.Title + " " + r.URL
}

// Build fits a vectorizer on the bookmark corpus and averages the
// resulting vectors into one profile. An empty bookmark set returns
// (nil, nil, nil): a recoverable "no profile" signal, not a failure.
func Build(ctx context.Context, bookmarks []item.Record) (*Vectorizer, *Profile, error) {
	_, span := otel.Tracer("engine/profile").Start(ctx, "profile.build")
	defer span.End()

	if len(bookmarks) == 0 {
		return nil, nil, nil
	}

	corpus := fn.Map(bookmarks, CombinedText)

	vec := NewVectorizer(nil)
	if err := vec.Fit(corpus); err != nil {
		return nil, nil, err
	}

	matrix, err := vec.Transform(corpus)
	if err != nil {
		return nil, nil, err
	}

	return vec, &Profile{Vector: mean(matrix)}, nil
}

// mean computes the element-wise mean of equal-length vectors.
func mean(matrix [][]float64) []float64 {
	if len(matrix) == 0 {
		return nil
	}
	out := make([]float64, len(matrix[0]))
	for _, row := range matrix {
		for i, v := range row {
			out[i] += v
		}
	}
	n := float64(len(matrix))
	for i := range out {
		out[i] /= n
	}
	return out
}
