// Package multiset implements the unordered, non-relocating collection
// used to hold entities that cannot tolerate being moved once stored.
// In this module only pkg/transport's subscription tree stores its
// records in a Multiset; reassembly state, TX queue items and response
// promises are kept in ordinary maps, heaps and structs.
//
// The original C++ container backs storage with a static slab plus a
// chain of pool-allocated chunks so that no element's address ever
// changes between Add and Remove. In Go, pointer identity already
// gives us that guarantee for free: the garbage collector may move the
// *backing bytes* of a value during a stack-to-heap promotion, but
// never after a pointer to it has escaped to the heap, which every
// element here does immediately. So Multiset here is a thin, bounded
// wrapper around a pool.Allocator, keeping the *bounded, failable,
// in-place* allocation discipline and the predicate-based Find/Remove
// operations, not manual layout.
package multiset
