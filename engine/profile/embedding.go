package profile

import (
	"context"
	"fmt"

	"github.com/marklens/marklens/engine/item"
)

// Embedder maps text to a fixed-size dense vector via a pre-trained
// sentence-embedding model. pkg/ollama provides the HTTP-backed
// implementation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DomainMap assigns each source domain seen during profile construction
// a one-hot index. Domains unseen at scoring time map to a zero block,
// never an error.
type DomainMap map[string]int

// EmbeddingProfile is the embedding-variant user profile: the mean of
// the bookmarks' combined embedding+domain vectors, plus the domain
// mapping needed to vectorize candidates into the same space.
type EmbeddingProfile struct {
	Vector    []float64
	Domains   DomainMap
	embedDims int
}

// embeddingText is the text side of the embedding variant: title plus
// description, since embeddings gain nothing from raw URL tokens.
func embeddingText(r item.Record) string {
	if r.Description == "" {
		return r.Title
	}
	return r.Title + " " + r.Description
}

// BuildEmbedding constructs the embedding-variant profile. An empty
// bookmark set returns (nil, nil), mirroring Build.
func BuildEmbedding(ctx context.Context, bookmarks []item.Record, embedder Embedder) (*EmbeddingProfile, error) {
	if len(bookmarks) == 0 {
		return nil, nil
	}

	domains := make(DomainMap)
	for _, b := range bookmarks {
		if _, ok := domains[b.Source]; !ok {
			domains[b.Source] = len(domains)
		}
	}

	p := &EmbeddingProfile{Domains: domains}

	var sum []float64
	for i, b := range bookmarks {
		emb, err := embedder.Embed(ctx, embeddingText(b))
		if err != nil {
			return nil, fmt.Errorf("profile: embed bookmark %d: %w", i, err)
		}
		if p.embedDims == 0 {
			p.embedDims = len(emb)
		} else if len(emb) != p.embedDims {
			return nil, fmt.Errorf("profile: embedding dims changed from %d to %d", p.embedDims, len(emb))
		}

		vec := p.combine(emb, b.Source)
		if sum == nil {
			sum = make([]float64, len(vec))
		}
		for j, v := range vec {
			sum[j] += v
		}
	}

	n := float64(len(bookmarks))
	for j := range sum {
		sum[j] /= n
	}
	p.Vector = sum
	return p, nil
}

// Vectorize maps a candidate into the profile's combined space.
func (p *EmbeddingProfile) Vectorize(ctx context.Context, rec item.Record, embedder Embedder) ([]float64, error) {
	emb, err := embedder.Embed(ctx, embeddingText(rec))
	if err != nil {
		return nil, err
	}
	if len(emb) != p.embedDims {
		return nil, fmt.Errorf("profile: embedding dims %d do not match profile %d", len(emb), p.embedDims)
	}
	return p.combine(emb, rec.Source), nil
}

// combine appends the one-hot domain block to the embedding. Unknown
// domains leave the block all-zero.
func (p *EmbeddingProfile) combine(emb []float32, source string) []float64 {
	out := make([]float64, p.embedDims+len(p.Domains))
	for i, v := range emb {
		out[i] = float64(v)
	}
	if idx, ok := p.Domains[source]; ok {
		out[p.embedDims+idx] = 1
	}
	return out
}
