// Package cluster groups analyzed reports into exact and near-duplicate groups.
package cluster

import (
	"context"
	"sort"
	"sync"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/huangsam/sqlscope/schema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
)

// Default similarity thresholds, in percent.
const (
	DefaultNearThreshold = 85.0
	DefaultConsolidateAt = 95.0
)

// Options tunes duplicate detection.
type Options struct {
	NearThreshold float64 // inclusive lower bound for near duplicates
	ConsolidateAt float64 // near pairs at or above this recommend consolidation
	Workers       int     // goroutines used for the pairwise stage
	Weights       algo.SimilarityWeights
}

// DefaultOptions returns the standard thresholds with a single worker.
func DefaultOptions() Options {
	return Options{
		NearThreshold: DefaultNearThreshold,
		ConsolidateAt: DefaultConsolidateAt,
		Workers:       1,
		Weights:       algo.DefaultSimilarityWeights(),
	}
}

// Result holds the groups of one batch.
type Result struct {
	Exact []schema.DuplicateGroup
	Near  []schema.DuplicateGroup

	// Representatives are the first report index of every distinct non-empty
	// fingerprint, in first-seen order.
	Representatives []int
}

// Groups returns exact groups followed by near groups.
func (r Result) Groups() []schema.DuplicateGroup {
	groups := make([]schema.DuplicateGroup, 0, len(r.Exact)+len(r.Near))
	groups = append(groups, r.Exact...)
	return append(groups, r.Near...)
}

// Detect partitions reports by fingerprint and then compares every pair of
// canonical representatives once. The pairwise stage is O(U²) in the number of
// distinct fingerprints.
func Detect(ctx context.Context, reports []schema.AnalyzedReport, opts Options) (Result, error) {
	partitions := partition(reports)

	var res Result
	for pair := partitions.Oldest(); pair != nil; pair = pair.Next() {
		members := pair.Value
		res.Representatives = append(res.Representatives, members[0])
		if len(members) > 1 {
			res.Exact = append(res.Exact, newGroup(reports, members, schema.ExactGroup, 100, schema.ExactRecommendation))
		}
	}

	near, err := nearPairs(ctx, reports, res.Representatives, opts)
	if err != nil {
		return Result{}, err
	}
	res.Near = near
	return res, nil
}

// partition maps fingerprint to member indices in first-insertion order.
// Empty fingerprints are never grouped.
func partition(reports []schema.AnalyzedReport) *orderedmap.OrderedMap[string, []int] {
	partitions := orderedmap.New[string, []int]()
	for i, r := range reports {
		if r.Fingerprint == "" {
			continue
		}
		members, _ := partitions.Get(r.Fingerprint)
		partitions.Set(r.Fingerprint, append(members, i))
	}
	return partitions
}

type scoredPair struct {
	i, j int // positions in the representative list, i < j
	sim  float64
}

// nearPairs scores the pair space row by row on an errgroup. Rows report into
// one collector and the result is sorted so output does not depend on scheduling.
func nearPairs(ctx context.Context, reports []schema.AnalyzedReport, reps []int, opts Options) ([]schema.DuplicateGroup, error) {
	if len(reps) < 2 {
		return nil, nil
	}
	if opts.Weights == (algo.SimilarityWeights{}) {
		opts.Weights = algo.DefaultSimilarityWeights()
	}

	sets := make([]sqltext.TokenSet, len(reps))
	for k, idx := range reps {
		sets[k] = toSet(reports[idx].TokenSet)
	}

	var (
		mu    sync.Mutex
		found []scoredPair
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i := 0; i < len(reps)-1; i++ {
		g.Go(func() error {
			var row []scoredPair
			a := reports[reps[i]]
			for j := i + 1; j < len(reps); j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				b := reports[reps[j]]
				sim := algo.SimilarityOf(a.NormalizedSQL, b.NormalizedSQL, sets[i], sets[j], opts.Weights)
				if sim >= opts.NearThreshold && sim < 100 {
					row = append(row, scoredPair{i: i, j: j, sim: sim})
				}
			}
			if len(row) > 0 {
				mu.Lock()
				found = append(found, row...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(found, func(x, y int) bool {
		if found[x].i != found[y].i {
			return found[x].i < found[y].i
		}
		return found[x].j < found[y].j
	})
	groups := make([]schema.DuplicateGroup, len(found))
	for k, p := range found {
		members := []int{reps[p.i], reps[p.j]}
		groups[k] = newGroup(reports, members, schema.NearGroup, p.sim, schema.NearRecommendation(p.sim, opts.ConsolidateAt))
	}
	return groups, nil
}

func newGroup(reports []schema.AnalyzedReport, members []int, kind schema.GroupKind, sim float64, rec string) schema.DuplicateGroup {
	g := schema.DuplicateGroup{
		Type:              kind,
		SimilarityPercent: sim,
		MemberIDs:         make([]string, len(members)),
		MemberNames:       make([]string, len(members)),
		Recommendation:    rec,
		Members:           members,
	}
	for k, idx := range members {
		g.MemberIDs[k] = reports[idx].ID
		g.MemberNames[k] = reports[idx].Name
	}
	return g
}

func toSet(tokens []string) sqltext.TokenSet {
	set := make(sqltext.TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
