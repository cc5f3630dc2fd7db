// Package vecspace is the in-process Go API for vecspace: it translates
// canonical filters into the native syntax of Qdrant, Pinecone, Weaviate,
// Chroma, LanceDB and Grafeo, normalizes their raw responses into one point
// model, and answers distance and nearest-neighbor queries over that model.
//
//	client, _ := vecspace.New(vecspace.WithMetric(vecspace.Cosine))
//
//	where, _ := client.TranslateFilter("chroma", []vecspace.Condition{
//	    {Field: "category", Op: "=", Value: "tech"},
//	})
//
//	points, _ := client.Normalize("qdrant", rawResponse, vecspace.NormalizeOptions{})
//	nearest, _ := client.Neighbors(points, vecspace.NeighborQuery{ReferenceID: "7", K: 5})
//
// Host-executed backends plug in through WithExecutor, which lets Execute
// run native queries against a client the host process owns.
package vecspace
