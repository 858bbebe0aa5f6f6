// Package testutil provides testing utilities for blockcache.
//
// This package is intended for use in tests, benchmarks and cmd/blockbench.
// It provides deterministic random data and access patterns.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	block := make([]byte, 4096)
//	rng.FillBytes(block)
//
//	ints := rng.Int32s(100000)        // the blockbench payload
//	raw := testutil.EncodeInt32s(ints) // little-endian, 4 bytes each
//
// # Skewed Access
//
//	offs := rng.ZipfOffsets(10000, 256, 4096, 1.5) // hot low blocks
package testutil
