package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	if got := UserAgent(); got != "changetower/v1.2.3" {
		t.Errorf("UserAgent() = %q, want %q", got, "changetower/v1.2.3")
	}
	if !strings.Contains(Template(), "v1.2.3") {
		t.Errorf("Template() = %q, missing version", Template())
	}
}

func TestGet(t *testing.T) {
	oldCommit := Commit
	defer func() { Commit = oldCommit }()

	Commit = "abc1234"
	if got := Get(); got.Commit != "abc1234" || got.Version != Version {
		t.Errorf("Get() = %+v", got)
	}
}
