package resolve

import (
	"testing"

	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/registry"
)

func TestParse(t *testing.T) {
	expr := Parse("libc6 (>= 2.31), foo | bar (= 1.0), baz")
	if len(expr) != 3 {
		t.Fatalf("got %d alternatives, want 3", len(expr))
	}
	if expr[0][0].Name != "libc6" || expr[0][0].Op != ">=" || expr[0][0].Constraint != "2.31" {
		t.Errorf("alt0 atom0 = %+v", expr[0][0])
	}
	if len(expr[1]) != 2 || expr[1][0].Name != "foo" || expr[1][1].Name != "bar" {
		t.Errorf("alt1 = %+v", expr[1])
	}
	if expr[2][0].Name != "baz" {
		t.Errorf("alt2 = %+v", expr[2])
	}
}

func TestParseEmpty(t *testing.T) {
	if expr := Parse(""); len(expr) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", expr)
	}
}

func TestEvaluateSatisfiedByInstalled(t *testing.T) {
	installed := registry.New()
	installed.Insert("libc6", &deb.Record{Name: "libc6", Version: "2.31"})
	inflight := registry.New()

	expr := Parse("libc6 (>= 2.0)")
	unsatisfied, err := Evaluate(expr, Options{Installed: installed, InFlight: inflight})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(unsatisfied) != 0 {
		t.Errorf("unsatisfied = %v, want none", unsatisfied)
	}
}

func TestEvaluateUnsatisfiedWithoutForce(t *testing.T) {
	installed := registry.New()
	inflight := registry.New()

	expr := Parse("missing-pkg")
	unsatisfied, err := Evaluate(expr, Options{Installed: installed, InFlight: inflight})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(unsatisfied) != 1 || unsatisfied[0].Name != "missing-pkg" {
		t.Errorf("unsatisfied = %v", unsatisfied)
	}
}

func TestEvaluateForceSkipsUnsatisfied(t *testing.T) {
	installed := registry.New()
	inflight := registry.New()

	expr := Parse("missing-pkg")
	unsatisfied, err := Evaluate(expr, Options{Installed: installed, InFlight: inflight, Force: true})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(unsatisfied) != 0 {
		t.Errorf("unsatisfied = %v, want none under force", unsatisfied)
	}
}

func TestCandidateNameAndVersion(t *testing.T) {
	if got := candidateName("libfoo_1.2.3_amd64.deb"); got != "libfoo" {
		t.Errorf("candidateName = %q", got)
	}
	if got := candidateVersion("libfoo_1.2.3_amd64.deb"); got != "1.2.3" {
		t.Errorf("candidateVersion = %q", got)
	}
}
