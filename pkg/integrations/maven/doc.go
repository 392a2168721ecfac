// Package maven looks up artifacts on Maven Central.
//
// devflow only needs one fact from Maven Central: the latest published
// version of a groupId:artifactId pair. The runtime-compatibility evidence
// check reports it next to the version mined from search results, so a
// reader can tell whether the search snippets are stale.
//
// # Usage
//
//	client := maven.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchArtifact(ctx, "com.google.guava", "guava", false)
//	fmt.Println(info.Coordinate(), info.Version)
//
// Responses are cached under the "maven" namespace. Pass refresh=true to
// bypass the cache.
package maven
