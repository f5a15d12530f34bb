package profile

import (
	"context"
	"testing"

	"github.com/marklens/marklens/engine/item"
)

func TestBuildEmptyBookmarks(t *testing.T) {
	vec, prof, err := Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty bookmark set is not an error, got %v", err)
	}
	if vec != nil || prof != nil {
		t.Fatal("empty bookmark set must return (nil, nil)")
	}
}

func TestBuildProfileDimensions(t *testing.T) {
	bookmarks := []item.Record{
		{Title: "Raspberry Pi Pico tutorial", URL: "https://example.com/pico", Source: "example.com"},
		{Title: "Go concurrency patterns", URL: "https://go.dev/blog/pipelines", Source: "go.dev"},
	}

	vec, prof, err := Build(context.Background(), bookmarks)
	if err != nil {
		t.Fatal(err)
	}
	if vec == nil || prof == nil {
		t.Fatal("non-empty bookmarks must produce a vectorizer and profile")
	}
	if len(prof.Vector) != vec.Dims() || vec.Dims() == 0 {
		t.Fatalf("profile dims %d must match vectorizer dims %d (non-zero)", len(prof.Vector), vec.Dims())
	}

	nonZero := false
	for _, v := range prof.Vector {
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("profile vector should not be all zeros")
	}
}

func TestBuildDeterministic(t *testing.T) {
	bookmarks := []item.Record{
		{Title: "Pico projects", URL: "https://example.com/a", Source: "example.com"},
		{Title: "More pico", URL: "https://example.com/b", Source: "example.com"},
	}
	_, p1, err := Build(context.Background(), bookmarks)
	if err != nil {
		t.Fatal(err)
	}
	_, p2, err := Build(context.Background(), bookmarks)
	if err != nil {
		t.Fatal(err)
	}
	if len(p1.Vector) != len(p2.Vector) {
		t.Fatal("profiles differ in length between runs")
	}
	for i := range p1.Vector {
		if p1.Vector[i] != p2.Vector[i] {
			t.Fatal("profile construction must be deterministic")
		}
	}
}

// stubEmbedder returns a fixed-dimension vector derived from text length.
type stubEmbedder struct{ dims int }

func (s stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	out := make([]float32, s.dims)
	for i := range out {
		out[i] = float32(len(text)%7) + float32(i)
	}
	return out, nil
}

func TestBuildEmbeddingEmpty(t *testing.T) {
	p, err := BuildEmbedding(context.Background(), nil, stubEmbedder{dims: 4})
	if err != nil || p != nil {
		t.Fatal("empty bookmark set must return (nil, nil)")
	}
}

func TestBuildEmbeddingCombinesDomains(t *testing.T) {
	bookmarks := []item.Record{
		{Title: "a", URL: "https://x.com/1", Source: "x.com", Description: "first"},
		{Title: "b", URL: "https://y.com/2", Source: "y.com"},
	}
	p, err := BuildEmbedding(context.Background(), bookmarks, stubEmbedder{dims: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(p.Domains))
	}
	if len(p.Vector) != 4+2 {
		t.Fatalf("combined vector should be embedding dims + domain count, got %d", len(p.Vector))
	}
}

func TestVectorizeUnseenDomainZeroBlock(t *testing.T) {
	bookmarks := []item.Record{
		{Title: "a", URL: "https://x.com/1", Source: "x.com"},
	}
	emb := stubEmbedder{dims: 3}
	p, err := BuildEmbedding(context.Background(), bookmarks, emb)
	if err != nil {
		t.Fatal(err)
	}

	vec, err := p.Vectorize(context.Background(), item.Record{Title: "new", URL: "https://z.com", Source: "z.com"}, emb)
	if err != nil {
		t.Fatal(err)
	}
	// Domain block (trailing len(Domains) entries) must be all-zero.
	for _, v := range vec[3:] {
		if v != 0 {
			t.Fatal("unseen domain must contribute a zero block")
		}
	}
}
