package vuln

import (
	"context"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"critical", SeverityCritical, false},
		{"HIGH", SeverityHigh, false},
		{"Moderate", SeverityMedium, false},
		{"medium", SeverityMedium, false},
		{" low ", SeverityLow, false},
		{"severe", SeverityUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeverity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeverityRank(t *testing.T) {
	order := []Severity{SeverityUnknown, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}
}

func TestPlaceholderProvider(t *testing.T) {
	p := NewPlaceholderProvider()
	ctx := context.Background()

	recs, err := p.Vulnerabilities(ctx, "Newtonsoft.Json", "9.0.1")
	if err != nil {
		t.Fatalf("Vulnerabilities() error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "CVE-2023-1234" || recs[0].Severity != SeverityHigh {
		t.Errorf("unexpected records: %+v", recs)
	}

	recs, _ = p.Vulnerabilities(ctx, "newtonsoft.json", "13.0.1")
	if len(recs) != 0 {
		t.Errorf("expected no records for 13.0.1, got %+v", recs)
	}
}

func TestProviderFunc(t *testing.T) {
	var called bool
	p := ProviderFunc(func(ctx context.Context, id, v string) ([]Record, error) {
		called = true
		return nil, nil
	})
	if _, err := p.Vulnerabilities(context.Background(), "a", "1"); err != nil || !called {
		t.Errorf("ProviderFunc not invoked: called=%v err=%v", called, err)
	}
}
