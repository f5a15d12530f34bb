// Package rank scores candidate records against a user profile by cosine
// similarity and selects the top N.
package rank

import (
	"context"
	"math"
	"sort"

	"go.opentelemetry.io/otel"

	"github.com/marklens/marklens/engine/item"
	"github.com/marklens/marklens/engine/profile"
	"github.com/marklens/marklens/pkg/fn"
)

// Ranked is a candidate with its relevance score. Scores are cosine
// similarities in [-1, 1]; with non-negative TF-IDF vectors they land
// in [0, 1].
type Ranked struct {
	item.Record
	Score float64
}

// Rank transforms candidates with the already-fitted vectorizer, scores
// them against the profile, and returns the topN by score. The vectorizer
// is never re-fit here: re-fitting on candidates would change the vector
// space and make scores incomparable.
//
// Missing inputs (no candidates, nil vectorizer, nil profile) yield
// Ok(nil): a "nothing to rank" state. A transform failure yields Err so
// callers and tests can tell "nothing scored" from "nothing to score",
// even though both render the same to an end user.
func Rank(ctx context.Context, candidates []item.Record, vec *profile.Vectorizer, prof *profile.Profile, topN int) fn.Result[[]Ranked] {
	_, span := otel.Tracer("engine/rank").Start(ctx, "rank.tfidf")
	defer span.End()

	if len(candidates) == 0 || vec == nil || prof == nil {
		return fn.Ok[[]Ranked](nil)
	}

	texts := fn.Map(candidates, profile.CombinedText)
	matrix, err := vec.Transform(texts)
	if err != nil {
		return fn.Err[[]Ranked](err)
	}

	scored := make([]Ranked, len(candidates))
	for i, c := range candidates {
		scored[i] = Ranked{Record: c, Score: Cosine(matrix[i], prof.Vector)}
	}
	return fn.Ok(topByScore(scored, topN))
}

// RankEmbedding scores candidates in the embedding profile's combined
// space. Same outcome semantics as Rank.
func RankEmbedding(ctx context.Context, candidates []item.Record, prof *profile.EmbeddingProfile, embedder profile.Embedder, topN int) fn.Result[[]Ranked] {
	_, span := otel.Tracer("engine/rank").Start(ctx, "rank.embedding")
	defer span.End()

	if len(candidates) == 0 || prof == nil || embedder == nil {
		return fn.Ok[[]Ranked](nil)
	}

	scored := make([]Ranked, len(candidates))
	for i, c := range candidates {
		vec, err := prof.Vectorize(ctx, c, embedder)
		if err != nil {
			return fn.Err[[]Ranked](err)
		}
		scored[i] = Ranked{Record: c, Score: Cosine(vec, prof.Vector)}
	}
	return fn.Ok(topByScore(scored, topN))
}

// topByScore sorts descending by score and keeps the first topN. The sort
// is stable, so ties keep their original insertion order.
func topByScore(scored []Ranked, topN int) []Ranked {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return fn.Truncate(scored, topN)
}

// Cosine computes the cosine similarity of two equal-length vectors.
// Either vector being zero yields 0.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
