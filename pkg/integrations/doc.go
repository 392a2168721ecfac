// Package integrations provides HTTP clients for the remote data sources
// devflow resolves against.
//
// # Overview
//
// Each data source has its own subpackage:
//
//   - [nuget]: NuGet registration API (version catalog, dependency groups, metadata)
//   - [search]: Google Custom Search (text evidence for compatibility checks)
//   - [maven]: Maven Central search (latest published artifact version)
//
// # Client Pattern
//
// Registry clients embed the shared [Client] and follow one shape:
//
//	client := nuget.NewClient(backend, 24*time.Hour)
//	records, err := client.FetchVersionCatalog(ctx, "Newtonsoft.Json")
//
// The shared client handles:
//   - Response caching through a [cache.Cache] with a per-registry namespace
//   - Retry with exponential backoff for network errors and 5xx responses
//   - Request, response and cache events reported to [observability] hooks
//
// Errors are classified with [ErrNotFound], [ErrNetwork], [ErrMalformed] and
// [ErrRateLimited] so callers can map them onto error codes.
//
// [nuget]: github.com/matzehuels/devflow/pkg/integrations/nuget
// [search]: github.com/matzehuels/devflow/pkg/integrations/search
// [maven]: github.com/matzehuels/devflow/pkg/integrations/maven
// [cache.Cache]: github.com/matzehuels/devflow/pkg/cache.Cache
// [observability]: github.com/matzehuels/devflow/pkg/observability
package integrations
