package version

import "testing"

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("expected non-empty version")
	}
	if len(info.GitCommit) > 7 {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
}

func TestStringWithoutCommit(t *testing.T) {
	info := Info{Version: "1.2.3"}
	if got := info.String(); got != "1.2.3" {
		t.Errorf("expected '1.2.3', got %q", got)
	}
}

func TestStringWithCommit(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc1234"}
	if got := info.String(); got != "1.2.3 (abc1234)" {
		t.Errorf("unexpected string: %q", got)
	}
}
