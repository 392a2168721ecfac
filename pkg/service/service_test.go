package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/integrations"
	"github.com/matzehuels/devflow/pkg/integrations/search"
	"github.com/matzehuels/devflow/pkg/observability"
	"github.com/matzehuels/devflow/pkg/registry"
	"github.com/matzehuels/devflow/pkg/resolver"
	"github.com/matzehuels/devflow/pkg/store"
	"github.com/matzehuels/devflow/pkg/vuln"
)

type sourceFunc func(ctx context.Context, id string) ([]registry.VersionRecord, error)

func (f sourceFunc) FetchVersionCatalog(ctx context.Context, id string) ([]registry.VersionRecord, error) {
	return f(ctx, id)
}

func staticSource(records ...registry.VersionRecord) sourceFunc {
	return func(context.Context, string) ([]registry.VersionRecord, error) { return records, nil }
}

func errSource(err error) sourceFunc {
	return func(context.Context, string) ([]registry.VersionRecord, error) { return nil, err }
}

func rec(v string, frameworks ...string) registry.VersionRecord {
	r := registry.VersionRecord{
		Version:   v,
		Published: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Downloads: 10,
		Metadata:  registry.Metadata{ID: "Pkg", Version: v, Authors: []string{"me"}},
	}
	for _, f := range frameworks {
		r.DependencyGroups = append(r.DependencyGroups, registry.DependencyGroup{
			TargetFramework: f,
			Dependencies:    []registry.Dependency{{ID: "Dep", Range: "[1.0.0, )"}},
		})
	}
	return r
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []search.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) (*search.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Query: query, Results: f.results}, nil
}

func newService(src registry.Source, s search.Searcher) *Service {
	var checker *evidence.Checker
	if s != nil {
		checker = evidence.NewChecker(s, nil)
	}
	return New(resolver.New(src, vuln.NewPlaceholderProvider(), nil), checker, store.NewMemoryStore(10), nil)
}

func TestGetVersions(t *testing.T) {
	svc := newService(staticSource(rec("1.0.0"), rec("not-a-version"), rec("10.0.0"), rec("9.0.1")), nil)

	got := svc.GetVersions(context.Background(), "  Pkg ")
	if !got.OK() {
		t.Fatalf("status = %s: %s", got.Status, got.Message)
	}
	var versions []string
	for _, v := range got.Versions {
		versions = append(versions, v.Version)
	}
	if !slices.Equal(versions, []string{"10.0.0", "9.0.1", "1.0.0"}) {
		t.Errorf("versions = %v", versions)
	}
	if got.PackageID != "Pkg" {
		t.Errorf("package id = %q, want trimmed", got.PackageID)
	}
}

func TestGetVersionsNotFound(t *testing.T) {
	svc := newService(errSource(fmt.Errorf("fetch: %w", integrations.ErrNotFound)), nil)
	got := svc.GetVersions(context.Background(), "missing")
	if !got.OK() {
		t.Fatalf("not found should be success, got %+v", got.Envelope)
	}
	if got.Versions == nil || len(got.Versions) != 0 {
		t.Errorf("versions = %#v, want empty", got.Versions)
	}
}

func TestTransportFailure(t *testing.T) {
	svc := newService(errSource(integrations.Retryable(fmt.Errorf("%w: status 500", integrations.ErrNetwork))), nil)

	got := svc.GetCompatibleVersions(context.Background(), "pkg", "net48", CompatibleOptions{})
	if got.OK() {
		t.Fatal("expected error envelope")
	}
	if got.Code != dferrors.ErrCodeNetwork || got.Message == "" {
		t.Errorf("envelope = %+v", got.Envelope)
	}
	if got.Compatibility != nil {
		t.Error("no partial result expected")
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "compatible_versions") {
		t.Errorf("error payload should not carry results: %s", data)
	}
}

func TestValidation(t *testing.T) {
	svc := newService(staticSource(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		env  Envelope
		want dferrors.Code
	}{
		{"empty package", svc.GetVersions(ctx, " ").Envelope, dferrors.ErrCodeInvalidPackage},
		{"bad framework", svc.GetCompatibleVersions(ctx, "pkg", "4.8!", CompatibleOptions{}).Envelope, dferrors.ErrCodeInvalidFramework},
		{"bad current", svc.GetCompatibleVersions(ctx, "pkg", "net48", CompatibleOptions{CurrentVersion: "1 0"}).Envelope, dferrors.ErrCodeInvalidVersion},
		{"empty version", svc.GetMetadata(ctx, "pkg", "").Envelope, dferrors.ErrCodeInvalidVersion},
		{"bad coordinate", svc.CheckMavenCompatibility(ctx, "", "a", "1.0", "java11").Envelope, dferrors.ErrCodeInvalidCoordinate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env.OK() || tt.env.Code != tt.want {
				t.Errorf("envelope = %+v, want code %s", tt.env, tt.want)
			}
		})
	}
}

func TestGetCompatibleVersions(t *testing.T) {
	svc := newService(staticSource(rec("1.0.0", ".NETFramework4.5"), rec("2.0.0", ".NETStandard2.0")), nil)

	got := svc.GetCompatibleVersions(context.Background(), "pkg", "net48", CompatibleOptions{CurrentVersion: "0.9.0"})
	if !got.OK() {
		t.Fatalf("status = %s: %s", got.Status, got.Message)
	}
	if !slices.Equal(got.CompatibleVersions, []string{"1.0.0"}) || got.Source != SourceRegistry {
		t.Errorf("got %v from %s", got.CompatibleVersions, got.Source)
	}
	if got.UpgradeAvailable == nil || !*got.UpgradeAvailable {
		t.Error("upgrade should be available from 0.9.0")
	}
}

func TestGetCompatibleVersionsFallback(t *testing.T) {
	s := &fakeSearcher{results: []search.Result{
		{Title: "pkg on net60", Snippet: "pkg 3.1.0 is compatible with net60"},
	}}
	src := staticSource(rec("1.0.0", ".NETFramework4.5"))

	t.Run("enabled", func(t *testing.T) {
		got := newService(src, s).GetCompatibleVersions(context.Background(), "pkg", "net60", CompatibleOptions{})
		if !got.OK() {
			t.Fatalf("status = %s: %s", got.Status, got.Message)
		}
		if len(got.CompatibleVersions) != 0 {
			t.Errorf("registry versions = %v, want none", got.CompatibleVersions)
		}
		if got.Source != SourceSearch || got.Fallback == nil || !slices.Equal(got.Fallback.CompatibleVersions, []string{"3.1.0"}) {
			t.Errorf("fallback = %+v, source = %s", got.Fallback, got.Source)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		before := s.calls
		got := newService(src, s).GetCompatibleVersions(context.Background(), "pkg", "net60", CompatibleOptions{NoFallback: true})
		if !got.OK() || got.Fallback != nil || got.Source != SourceRegistry {
			t.Errorf("got %+v", got)
		}
		if s.calls != before {
			t.Error("search should not be called")
		}
	})

	t.Run("failing search keeps registry answer", func(t *testing.T) {
		failing := &fakeSearcher{err: errors.New("quota")}
		got := newService(src, failing).GetCompatibleVersions(context.Background(), "pkg", "net60", CompatibleOptions{})
		if !got.OK() || got.Fallback != nil {
			t.Errorf("got %+v", got)
		}
	})
}

func TestGetDependenciesAndMetadata(t *testing.T) {
	svc := newService(staticSource(rec("1.0.0", ".NETFramework4.5")), nil)
	ctx := context.Background()

	deps := svc.GetDependencies(ctx, "pkg", "1.0.0", "net45")
	if !deps.OK() || !deps.Found || len(deps.Dependencies) != 1 || deps.Dependencies[0].ID != "Dep" {
		t.Errorf("dependencies = %+v", deps)
	}

	md := svc.GetMetadata(ctx, "pkg", "1.0.0")
	if !md.OK() || !md.Found || md.Metadata == nil || md.Metadata.Authors[0] != "me" {
		t.Errorf("metadata = %+v", md)
	}

	missing := svc.GetMetadata(ctx, "pkg", "3.0.0")
	if !missing.OK() || missing.Found {
		t.Errorf("missing version = %+v", missing)
	}
}

func TestGetVulnerabilities(t *testing.T) {
	svc := newService(staticSource(rec("9.0.1"), rec("13.0.3")), nil)
	got := svc.GetVulnerabilities(context.Background(), "Newtonsoft.Json", "9.0.1")
	if !got.OK() || !got.Found || len(got.Vulnerabilities) != 1 || got.Vulnerabilities[0].ID != "CVE-2023-1234" {
		t.Errorf("got %+v", got)
	}
	clean := svc.GetVulnerabilities(context.Background(), "Newtonsoft.Json", "13.0.3")
	if !clean.OK() || clean.Vulnerabilities == nil || len(clean.Vulnerabilities) != 0 {
		t.Errorf("got %+v", clean)
	}
}

func TestGetVulnerabilitiesRegistryPolicy(t *testing.T) {
	ctx := context.Background()

	missing := newService(errSource(integrations.ErrNotFound), nil).GetVulnerabilities(ctx, "Newtonsoft.Json", "9.0.1")
	if !missing.OK() || missing.Found || missing.Vulnerabilities == nil || len(missing.Vulnerabilities) != 0 {
		t.Errorf("unknown package = %+v", missing)
	}

	down := newService(errSource(integrations.ErrNetwork), nil).GetVulnerabilities(ctx, "Newtonsoft.Json", "9.0.1")
	if down.OK() || down.Code != dferrors.ErrCodeNetwork {
		t.Errorf("transport failure = %+v", down.Envelope)
	}
}

func TestTimeout(t *testing.T) {
	blocking := sourceFunc(func(ctx context.Context, _ string) ([]registry.VersionRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := newService(blocking, nil)
	svc.Timeout = 10 * time.Millisecond

	got := svc.GetVersions(context.Background(), "pkg")
	if got.OK() || got.Code != dferrors.ErrCodeTimeout {
		t.Errorf("envelope = %+v, want TIMEOUT", got.Envelope)
	}
}

func TestPanicRecovery(t *testing.T) {
	svc := newService(sourceFunc(func(context.Context, string) ([]registry.VersionRecord, error) {
		panic("boom")
	}), nil)

	got := svc.GetVersions(context.Background(), "pkg")
	if got.OK() || got.Code != dferrors.ErrCodeInternal || !strings.Contains(got.Message, "boom") {
		t.Errorf("envelope = %+v", got.Envelope)
	}
}

func TestCheckCompatibility(t *testing.T) {
	s := &fakeSearcher{results: []search.Result{
		{Title: "Pkg", Snippet: "Pkg 2.0.0 supported on net48, see CVE-2024-1111 (low)", Link: "https://x.example"},
	}}
	svc := newService(staticSource(), s)
	ctx := context.Background()

	got := svc.CheckCompatibility(ctx, "Pkg", "2.0.0", "net48")
	if !got.OK() {
		t.Fatalf("status = %s: %s", got.Status, got.Message)
	}
	if !got.Compatibility.IsCompatible || !got.Vulnerabilities.HasVulnerabilities {
		t.Errorf("report = %+v", got.Report)
	}
	if got.CheckID == "" {
		t.Error("check should be recorded")
	}

	hist := svc.RecentChecks(ctx, 5)
	if !hist.OK() || len(hist.Checks) != 1 || hist.Checks[0].ID != got.CheckID || hist.Checks[0].Kind != store.KindNuGet {
		t.Errorf("history = %+v", hist)
	}
}

func TestCheckArtifactVariants(t *testing.T) {
	s := &fakeSearcher{}
	svc := newService(staticSource(), s)
	ctx := context.Background()

	maven := svc.CheckMavenCompatibility(ctx, "org.example", "lib", "1.0.0", "java11")
	gradle := svc.CheckGradleCompatibility(ctx, "org.example", "lib", "1.0.0", "java11")
	if !maven.OK() || !gradle.OK() {
		t.Fatalf("maven = %+v, gradle = %+v", maven.Envelope, gradle.Envelope)
	}
	if maven.Ecosystem != evidence.EcosystemMaven || gradle.Ecosystem != evidence.EcosystemGradle {
		t.Errorf("ecosystems = %s, %s", maven.Ecosystem, gradle.Ecosystem)
	}

	hist := svc.RecentChecks(ctx, 0)
	if len(hist.Checks) != 2 || hist.Checks[0].Kind != store.KindGradle || hist.Checks[1].Kind != store.KindMaven {
		t.Errorf("history = %+v", hist.Checks)
	}
}

func TestEvidenceFailures(t *testing.T) {
	ctx := context.Background()

	unconfigured := newService(staticSource(), nil)
	got := unconfigured.CheckCompatibility(ctx, "pkg", "1.0.0", "net48")
	if got.OK() || got.Code != dferrors.ErrCodeConfiguration {
		t.Errorf("envelope = %+v, want CONFIGURATION", got.Envelope)
	}

	failing := newService(staticSource(), &fakeSearcher{err: fmt.Errorf("%w: status 503", integrations.ErrNetwork)})
	fb := failing.CompatibleVersionsFallback(ctx, "pkg", "net48")
	if fb.OK() || fb.Code != dferrors.ErrCodeNetwork {
		t.Errorf("envelope = %+v, want NETWORK_ERROR", fb.Envelope)
	}
}

func TestSearchFailureHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL + "/cse"
	server.Close()

	client, err := search.NewClient(search.Config{APIKey: "SECRET-KEY-123", EngineID: "cx", Endpoint: endpoint})
	if err != nil {
		t.Fatal(err)
	}
	svc := newService(staticSource(), client)

	fb := svc.CompatibleVersionsFallback(context.Background(), "pkg", "net48")
	if fb.OK() || fb.Code != dferrors.ErrCodeNetwork {
		t.Fatalf("envelope = %+v, want NETWORK_ERROR", fb.Envelope)
	}
	body, _ := json.Marshal(fb)
	if strings.Contains(fb.Message, "SECRET-KEY-123") || strings.Contains(string(body), "SECRET-KEY-123") {
		t.Errorf("envelope leaks the API key: %s", body)
	}
}

func TestCompatibleVersionsFallbackEmpty(t *testing.T) {
	svc := newService(staticSource(), &fakeSearcher{})
	got := svc.CompatibleVersionsFallback(context.Background(), "pkg", "net48")
	if !got.OK() || got.Source != SourceSearch || len(got.CompatibleVersions) != 0 {
		t.Errorf("got %+v", got)
	}
}

type recordingHooks struct {
	observability.NoopResolverHooks
	ops []string
}

func (h *recordingHooks) OnResolveComplete(_ context.Context, op, _ string, _ int, _ time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "err"
	}
	h.ops = append(h.ops, op+":"+status)
}

func TestResolverHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetResolverHooks(h)
	defer observability.Reset()

	svc := newService(staticSource(rec("1.0.0")), nil)
	svc.GetVersions(context.Background(), "pkg")
	svc.GetVersions(context.Background(), "")

	if !slices.Equal(h.ops, []string{"versions:ok", "versions:err"}) {
		t.Errorf("ops = %v", h.ops)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want dferrors.Code
	}{
		{dferrors.New(dferrors.ErrCodeInvalidPackage, "x"), dferrors.ErrCodeInvalidPackage},
		{fmt.Errorf("wrap: %w", context.DeadlineExceeded), dferrors.ErrCodeTimeout},
		{integrations.ErrRateLimited, dferrors.ErrCodeRateLimited},
		{fmt.Errorf("decode: %w", integrations.ErrMalformed), dferrors.ErrCodeMalformedData},
		{integrations.Retryable(integrations.ErrNetwork), dferrors.ErrCodeNetwork},
		{integrations.ErrNotFound, dferrors.ErrCodeNotFound},
		{search.ErrMissingCredentials, dferrors.ErrCodeConfiguration},
		{errors.New("mystery"), dferrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
