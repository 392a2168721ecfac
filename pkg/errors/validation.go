package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
//
// Registry-specific validation is layered on top (see [ValidatePackageID]).
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// nugetIDRegex matches NuGet package ids (letters, digits, '.', '-', '_').
var nugetIDRegex = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_])?$`)

// ValidatePackageID validates a NuGet package id such as "Newtonsoft.Json".
func ValidatePackageID(id string) error {
	if err := ValidatePackageName(id); err != nil {
		return err
	}
	if len(id) > 100 {
		return New(ErrCodeInvalidPackage, "package id too long (max 100 characters)")
	}
	if !nugetIDRegex.MatchString(id) {
		return New(ErrCodeInvalidPackage, "invalid package id: %q", id)
	}
	return nil
}

// frameworkRegex matches raw framework identifiers before normalization,
// e.g. "net48", ".NETStandard2.0", "netcoreapp3.1", "java-17", "Java 11".
var frameworkRegex = regexp.MustCompile(`^\.?[A-Za-z][A-Za-z0-9. \-]*$`)

// ValidateFramework validates a raw target framework or runtime identifier.
func ValidateFramework(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return New(ErrCodeInvalidFramework, "framework cannot be empty")
	}
	if len(raw) > 64 {
		return New(ErrCodeInvalidFramework, "framework too long (max 64 characters)")
	}
	if !frameworkRegex.MatchString(raw) {
		return New(ErrCodeInvalidFramework, "invalid framework identifier: %q", raw)
	}
	return nil
}

// mavenPartRegex matches a Maven groupId or artifactId.
var mavenPartRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidateCoordinate validates a Maven groupId/artifactId pair.
func ValidateCoordinate(groupID, artifactID string) error {
	if groupID == "" || artifactID == "" {
		return New(ErrCodeInvalidCoordinate, "group id and artifact id are required")
	}
	if !mavenPartRegex.MatchString(groupID) {
		return New(ErrCodeInvalidCoordinate, "invalid group id: %q", groupID)
	}
	if !mavenPartRegex.MatchString(artifactID) {
		return New(ErrCodeInvalidCoordinate, "invalid artifact id: %q", artifactID)
	}
	return nil
}

// ValidateVersionString validates a version string for use in a request.
// It does not require the version to be well-formed semver; unparseable
// versions are tolerated downstream.
func ValidateVersionString(v string) error {
	if v == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if len(v) > 128 {
		return New(ErrCodeInvalidVersion, "version too long (max 128 characters)")
	}
	for _, r := range v {
		if unicode.IsControl(r) || unicode.IsSpace(r) || r == '/' || r == '\\' {
			return New(ErrCodeInvalidVersion, "version contains invalid characters: %q", v)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
