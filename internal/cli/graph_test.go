package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/devflow/pkg/framework"
)

func runGraph(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"graph"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestGraphChain(t *testing.T) {
	out, err := runGraph(t, "--chain", "net3.5")
	if err != nil {
		t.Fatalf("graph --chain: %v", err)
	}
	if want := "net35: net35 → net20\n"; out != want {
		t.Errorf("graph --chain = %q, want %q", out, want)
	}
}

func TestGraphJavaChain(t *testing.T) {
	out, err := runGraph(t, "--family", "java", "--chain", "11")
	if err != nil {
		t.Fatalf("graph --chain: %v", err)
	}
	if want := "java11: java8\n"; out != want {
		t.Errorf("graph --chain = %q, want %q", out, want)
	}
}

func TestGraphText(t *testing.T) {
	out, err := runGraph(t)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(framework.DotNet.Keys()) {
		t.Errorf("graph printed %d lines, want %d", len(lines), len(framework.DotNet.Keys()))
	}
}

func TestGraphDOT(t *testing.T) {
	out, err := runGraph(t, "--format", "dot")
	if err != nil {
		t.Fatalf("graph --format dot: %v", err)
	}
	if !strings.HasPrefix(out, `digraph "dotnet"`) {
		t.Errorf("dot output should start with the digraph header:\n%s", out)
	}
}

func TestGraphErrors(t *testing.T) {
	tests := [][]string{
		{"--family", "cobol"},
		{"--chain", "net99"},
		{"--format", "png"},
	}
	for _, args := range tests {
		if _, err := runGraph(t, args...); err == nil {
			t.Errorf("graph %v: expected error", args)
		}
	}
}
