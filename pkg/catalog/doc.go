// Package catalog implements a media-content catalog: content records live
// in a relational repository, binary payloads live in a blob store, and the
// lifecycle service keeps the two in agreement across create, update, delete
// and streaming operations.
//
// The package is storage-agnostic. Concrete backends live in subpackages
// (repo/postgres, repo/memory, storage/s3, storage/memory) and are injected
// through functional options:
//
//	svc, err := catalog.New(
//	    catalog.WithRepository(repo),
//	    catalog.WithBlobStore(store),
//	)
package catalog
