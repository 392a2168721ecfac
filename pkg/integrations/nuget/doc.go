// Package nuget fetches package version catalogs from the NuGet
// registration API.
//
// The registration index (registration5-gz-semver2) lists every published
// version of a package grouped into pages. Small packages inline all pages;
// large ones (hundreds of versions) only inline page references, which this
// client follows by their "@id" URL.
//
// Each catalog entry becomes a [registry.VersionRecord] carrying the
// version string, publish date, dependency groups per target framework and
// descriptive metadata. [Client] implements [registry.Source].
//
// [registry.VersionRecord]: github.com/matzehuels/devflow/pkg/registry.VersionRecord
// [registry.Source]: github.com/matzehuels/devflow/pkg/registry.Source
package nuget
