// Package hugure is an ephemeral candidate search engine: an iterative
// optimizer that discovers high-quality configurations in combinatorially
// large solution spaces without ever materializing those spaces.
//
// Each iteration samples a bounded batch of candidates inside a moving
// window, scores them along three jointly-minimized distance axes, extracts
// durable directional insights, and throws the batch away. Insights are the
// only long-lived artifact; a shared insight cache transfers them across
// unrelated problem domains by structural signature. Peak memory is bounded
// by batch size plus cache capacity, independent of the solution-space size
// and of how many iterations run.
//
//	engine, _ := hugure.New(hugure.WithBatchSize(64))
//	result, err := engine.Run(ctx, hugure.Problem{
//	    Domain:     "layout",
//	    Dimensions: 2,
//	    Target:     []float64{0, 0},
//	    Origin:     []float64{10, 10},
//	    Radius:     5,
//	}, hugure.Budget{MaxIterations: 500, Epsilon: 0.01})
//
// Multiple engines (or concurrent runs on one engine) may share a cache:
//
//	cache, _ := hugure.NewCache(100_000)
//	a, _ := hugure.New(hugure.WithCache(cache))
//	b, _ := hugure.New(hugure.WithCache(cache))
//
// Insights learned by a transfer to b when the problems share structure.
package hugure
