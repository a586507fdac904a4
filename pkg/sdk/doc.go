// Package lodestone provides an embedded Go client for the lodestone
// semantic entity index, backed by Redis with search modules.
//
// The client wires the same pipeline the HTTP service runs: tenant-scoped
// index resolution, embedding derivation on every content change, hybrid
// vector+filter retrieval and an audit trail on Redis Streams. Bring your
// own embedding provider via the Embedder interface.
//
//	client, _ := lodestone.New(ctx,
//	    lodestone.WithRedis("localhost:6379", ""),
//	    lodestone.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	scope := lodestone.Tenant{ClientName: "acme", AppName: "portal", Stack: "prod"}
//	entities := client.Entities(scope, "document")
//	_, _ = entities.Create(ctx, lodestone.EntityInput{
//	    ID: "doc-1", Name: "Rollback guide", ContentText: "...",
//	})
//	hits, _ := client.Search(scope, "document").Query(ctx, lodestone.SearchQuery{
//	    Query: "how do I roll back a deploy",
//	})
package lodestone
