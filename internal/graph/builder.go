package graph

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Benkendorfer/HEP-paper-graph/internal/inspire"
)

// ErrNoSeeds is returned when none of the seeds could be ingested.
var ErrNoSeeds = errors.New("no seed could be fetched")

// DefaultDepth expands seeds only.
const DefaultDepth = 1

// Source provides records and titles. *inspire.Client implements it.
type Source interface {
	ArxivRecord(ctx context.Context, arxivID string, useCache bool) (*inspire.Record, error)
	LiteratureRecord(ctx context.Context, recordID string, useCache bool) (*inspire.Record, error)
	ResolveTitle(ctx context.Context, recordID string, useCache bool) string
}

// Builder crawls from seeds to a citation graph. A Builder is used for one
// sequential run at a time.
type Builder struct {
	src      Source
	useCache bool
	depth    int
	logger   zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithCache controls whether the response and title caches are used.
func WithCache(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.useCache = enabled
	}
}

// WithDepth sets how many reference levels are expanded from the seeds.
func WithDepth(depth int) BuilderOption {
	return func(b *Builder) {
		if depth > 0 {
			b.depth = depth
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a builder reading from src. Caching is on by default.
func NewBuilder(src Source, opts ...BuilderOption) *Builder {
	b := &Builder{
		src:      src,
		useCache: true,
		depth:    DefaultDepth,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stats summarizes a build.
type Stats struct {
	SeedsRequested int `json:"seeds_requested"`
	SeedsIngested  int `json:"seeds_ingested"`
	Candidates     int `json:"candidates"`
	Nodes          int `json:"nodes"`
	CitationEdges  int `json:"citation_edges"`
	FailedFetches  int `json:"failed_fetches"`
}

// run holds the state of one Build call.
type run struct {
	*Builder
	titles map[string]string
	stats  Stats
}

// Build ingests the seeds, expands their references, merges duplicates and
// then discovers citations among the non-seed nodes. Individual fetch
// failures are logged and skipped.
func (b *Builder) Build(ctx context.Context, seeds []string) (*Graph, Stats, error) {
	r := &run{Builder: b, titles: make(map[string]string)}
	r.stats.SeedsRequested = len(seeds)

	candidates, seedRecords, err := r.ingestSeeds(ctx, seeds)
	if err != nil {
		return nil, r.stats, err
	}

	refs, err := r.expand(ctx, seedRecords)
	if err != nil {
		return nil, r.stats, err
	}
	candidates = append(candidates, refs...)
	r.stats.Candidates = len(candidates)

	g := NewGraph(candidates)
	r.stats.Nodes = g.Len()
	r.logger.Info().
		Int("candidates", len(candidates)).
		Int("nodes", g.Len()).
		Msg("merged duplicate records")

	if err := r.discoverCitations(ctx, g); err != nil {
		return nil, r.stats, err
	}
	return g, r.stats, nil
}

type ingested struct {
	node   *Node
	record *inspire.Record
}

func (r *run) ingestSeeds(ctx context.Context, seeds []string) ([]*Node, []ingested, error) {
	var nodes []*Node
	var records []ingested
	for _, arxivID := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec, err := r.src.ArxivRecord(ctx, arxivID, r.useCache)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			r.stats.FailedFetches++
			r.logger.Warn().Err(err).Str("seed", arxivID).Msg("skipping seed")
			continue
		}

		id := rec.RecordID()
		if id == "" {
			id = "arxiv:" + arxivID
		}
		title, err := rec.PrimaryTitle()
		if err != nil {
			r.logger.Warn().Str("seed", arxivID).Msg("seed has no title")
			title = inspire.NoTitle
		}

		n := NewNode(id, title, RoleSeed)
		nodes = append(nodes, n)
		records = append(records, ingested{node: n, record: rec})
		r.logger.Info().Str("seed", arxivID).Str("record", id).Str("title", title).Msg("ingested seed")
	}

	r.stats.SeedsIngested = len(nodes)
	if len(nodes) == 0 {
		return nil, nil, ErrNoSeeds
	}
	return nodes, records, nil
}

// expand turns the references of the seeds into candidates, then walks
// further levels up to the configured depth.
func (r *run) expand(ctx context.Context, seeds []ingested) ([]*Node, error) {
	var candidates []*Node
	expanded := make(map[string]bool)
	var frontier []*Node

	for _, s := range seeds {
		expanded[s.node.Key()] = true
		refs, err := r.references(ctx, s.node.Key(), s.record)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, refs...)
		frontier = append(frontier, refs...)
	}

	for level := 2; level <= r.depth; level++ {
		var next []*Node
		for _, n := range frontier {
			if expanded[n.Key()] {
				continue
			}
			expanded[n.Key()] = true

			rec, err := r.src.LiteratureRecord(ctx, n.Key(), r.useCache)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				r.stats.FailedFetches++
				r.logger.Warn().Err(err).Str("record", n.Key()).Msg("skipping reference expansion")
				continue
			}
			refs, err := r.references(ctx, n.Key(), rec)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, refs...)
			next = append(next, refs...)
		}
		frontier = next
	}
	return candidates, nil
}

// references builds one REFERENCE candidate per linked reference of rec,
// each with parent as its only parent.
func (r *run) references(ctx context.Context, parent string, rec *inspire.Record) ([]*Node, error) {
	linked := rec.LinkedReferences()
	r.logger.Info().
		Str("record", parent).
		Int("references", len(rec.Metadata.References)).
		Int("linked", len(linked)).
		Msg("expanding references")

	nodes := make([]*Node, 0, len(linked))
	for _, ref := range linked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, _ := ref.RecordID()
		n := NewNode(id, r.title(ctx, ref), RoleReference)
		n.AddParent(parent)
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// title resolves a reference title once per run, falling back to the
// free-form citation text when the resolver has nothing.
func (r *run) title(ctx context.Context, ref inspire.Reference) string {
	id, _ := ref.RecordID()
	if t, ok := r.titles[id]; ok {
		return t
	}
	t := r.src.ResolveTitle(ctx, id, r.useCache)
	if t == inspire.NoTitle {
		if misc := ref.MiscText(); misc != "" {
			t = misc
		}
	}
	r.titles[id] = t
	return t
}

// discoverCitations re-reads the references of every non-seed node and adds
// an edge for each reference that is already in the graph. Seeds are only
// skipped as citers; they remain valid targets.
func (r *run) discoverCitations(ctx context.Context, g *Graph) error {
	added := 0
	for _, citer := range g.Nodes() {
		if citer.IsSeed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.src.LiteratureRecord(ctx, citer.Key(), r.useCache)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.stats.FailedFetches++
			r.logger.Warn().Err(err).Str("record", citer.Key()).Msg("skipping citation discovery")
			continue
		}
		for _, ref := range rec.LinkedReferences() {
			id, _ := ref.RecordID()
			cited, ok := g.Lookup(id)
			if !ok || cited == citer || cited.HasParent(citer.Key()) {
				continue
			}
			cited.AddParent(citer.Key())
			added++
		}
	}
	r.stats.CitationEdges = added
	r.logger.Info().Int("edges", added).Msg("discovered citations between references")
	return nil
}
