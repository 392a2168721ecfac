package registry

import (
	"slices"
	"testing"
)

func TestSupportedFrameworks(t *testing.T) {
	r := VersionRecord{
		Version: "1.0.0",
		DependencyGroups: []DependencyGroup{
			{TargetFramework: ".NETStandard2.0"},
			{TargetFramework: "net45"},
			{TargetFramework: "NET45"},
			{TargetFramework: ""},
		},
	}
	got := r.SupportedFrameworks().Strings()
	if want := []string{"net45", "netstandard20"}; !slices.Equal(got, want) {
		t.Errorf("SupportedFrameworks() = %v, want %v", got, want)
	}
}

func TestFind(t *testing.T) {
	recs := []VersionRecord{{Version: "1.0.0"}, {Version: "2.0.0"}}
	if r, ok := Find(recs, "2.0.0"); !ok || r.Version != "2.0.0" {
		t.Errorf("Find(2.0.0) = %v, %v", r, ok)
	}
	if _, ok := Find(recs, "3.0.0"); ok {
		t.Error("Find(3.0.0) should miss")
	}
}
