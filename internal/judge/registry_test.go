package judge

import (
	"slices"
	"testing"
)

func TestRegistryDetect(t *testing.T) {
	r := NewRegistry(nil)
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://codeforces.com/problemset/problem/1850/A", "codeforces"},
		{"https://codeforces.com/contest/1850/problem/B", "codeforces"},
		{"https://codeforces.com/gym/104520/problem/C", "codeforces"},
		{"https://codeforces.com/group/MWSDmqGsZm/contest/219158/problem/A", "codeforces"},
		{"https://atcoder.jp/contests/abc300/tasks/abc300_a", "atcoder"},
		{"https://cses.fi/problemset/task/1068", "cses"},
		{"https://judge.yosupo.jp/problem/aplusb", "yosupo"},
		{"https://vjudge.net/problem/CodeForces-1850A", "vjudge"},
	}
	for _, tt := range tests {
		j, ok := r.Detect(tt.rawURL)
		if !ok {
			t.Errorf("Detect(%q) found no judge, want %q", tt.rawURL, tt.want)
			continue
		}
		if j.Name() != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.rawURL, j.Name(), tt.want)
		}
	}
}

func TestRegistryDetectUnknown(t *testing.T) {
	r := NewRegistry(nil)
	for _, rawURL := range []string{"https://example.org/problem/1", "not a url", ""} {
		if j, ok := r.Detect(rawURL); ok {
			t.Errorf("Detect(%q) = %q, want no match", rawURL, j.Name())
		}
	}
}

func TestRegistryOrder(t *testing.T) {
	var names []string
	for _, j := range NewRegistry(nil).Judges() {
		names = append(names, j.Name())
	}
	want := []string{"codeforces", "atcoder", "cses", "yosupo", "vjudge"}
	if !slices.Equal(names, want) {
		t.Errorf("registry order = %v, want %v", names, want)
	}
}

// fakeJudge overrides detection; everything else comes from the embedded stub.
type fakeJudge struct {
	*Vjudge
	name string
}

func (f *fakeJudge) Name() string       { return f.name }
func (f *fakeJudge) Detect(string) bool { return true }

func TestRegistryFirstMatchWins(t *testing.T) {
	r := NewRegistryWith(
		&fakeJudge{name: "first"},
		&fakeJudge{name: "second"},
	)
	j, ok := r.Detect("https://anything.example")
	if !ok {
		t.Fatal("Detect() found no judge")
	}
	if j.Name() != "first" {
		t.Errorf("Detect() = %q, want the earliest matching judge", j.Name())
	}
}
