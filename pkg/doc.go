// Package pkg provides the libraries behind devflow, a resolver that answers
// which versions of a package run on a given framework or runtime.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Domain logic: [framework] (identifier normalization and the
//     compatibility graph), [version] (parsing and ordering), [resolver]
//     (registry-backed answers) and [evidence] (search-backed answers).
//  2. Infrastructure: [cache], [store], [config], [observability].
//  3. Integrations: [integrations] clients for NuGet, Maven Central and web search.
//  4. Surfaces: [service] (uniform result envelope) and [api] (HTTP).
//
// # Architecture
//
// A compatible-versions request flows through:
//
//	NuGet registration API
//	         ↓
//	    [integrations/nuget] (fetch + cache version catalog)
//	         ↓
//	    [resolver] (filter by [framework] graph, order by [version])
//	         ↓
//	    [service] (validate, time out, envelope; search fallback via [evidence])
//	         ↓
//	    CLI / [api] JSON
//
// # Quick Start
//
//	src := nuget.NewClient(cache.NewNullCache(), time.Hour)
//	r := resolver.New(src, vuln.NewPlaceholderProvider(), nil)
//	svc := service.New(r, nil, store.NewMemoryStore(0), nil)
//
//	res := svc.GetCompatibleVersions(ctx, "Newtonsoft.Json", "net48", service.CompatibleOptions{})
//	if res.OK() {
//	    fmt.Println(res.LatestCompatible)
//	}
//
// [framework]: github.com/matzehuels/devflow/pkg/framework
// [version]: github.com/matzehuels/devflow/pkg/version
// [resolver]: github.com/matzehuels/devflow/pkg/resolver
// [evidence]: github.com/matzehuels/devflow/pkg/evidence
// [cache]: github.com/matzehuels/devflow/pkg/cache
// [store]: github.com/matzehuels/devflow/pkg/store
// [config]: github.com/matzehuels/devflow/pkg/config
// [observability]: github.com/matzehuels/devflow/pkg/observability
// [integrations]: github.com/matzehuels/devflow/pkg/integrations
// [integrations/nuget]: github.com/matzehuels/devflow/pkg/integrations/nuget
// [service]: github.com/matzehuels/devflow/pkg/service
// [api]: github.com/matzehuels/devflow/pkg/api
package pkg
