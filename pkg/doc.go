// Package pkg provides the core libraries for treeseq, an explorer for the
// TREE(n) problem.
//
// # Overview
//
// treeseq enumerates rooted ordered trees whose nodes carry labels from 1..n
// and searches for long bad sequences: sequences in which no earlier tree
// topologically embeds into a later one. The pkg directory is organized into
// three areas:
//
//  1. Domain logic: [tree], [combin], [enum] and [search]
//  2. Infrastructure: [cache], [pool], [checkpoint] and [config]
//  3. Output and instrumentation: [render], [observability] and [buildinfo]
//
// # Architecture
//
// The data flow of one search:
//
//	[combin] compositions and Cartesian products
//	         ↓
//	[enum] trees of each size, memoized and persisted through [cache]
//	         ↓
//	[search] depth-first extension of the current sequence
//	         ↓
//	[pool] embedding tests ([tree.Embeds]) on worker goroutines
//	         ↓
//	[checkpoint] and [render] for the best sequence found
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/treeseq/pkg/cache"
//	    "github.com/matzehuels/treeseq/pkg/enum"
//	    "github.com/matzehuels/treeseq/pkg/pool"
//	    "github.com/matzehuels/treeseq/pkg/search"
//	)
//
//	store := cache.NewTreeStore(cache.NewMemoryCache(), nil, nil)
//	engine := enum.NewEngine(store, nil)
//	workers := pool.New(pool.Config{Workers: 4})
//	defer workers.Terminate()
//
//	ctrl, _ := search.New(engine, workers, search.Options{Labels: 2, MaxSize: 3})
//	res, _ := ctrl.Run(ctx)
//	fmt.Println(res.Best)
package pkg
