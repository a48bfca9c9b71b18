package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const defaultConfig = `
cvsroot:		/cvsroot
git_repo:		/git/repo
default_branch:		master
branch_mappings:
`

func checkValue(t *testing.T, fieldname, val, expected string) {
	if val != expected {
		t.Fatalf("Error parsing %s, expected '%v' got '%v'", fieldname, expected, val)
	}
}

func TestValidConfig(t *testing.T) {
	cfg := loadOrFail(t, defaultConfig)
	checkValue(t, "CVSRoot", cfg.CVSRoot, "/cvsroot")
	checkValue(t, "GitRepo", cfg.GitRepo, "/git/repo")
	checkValue(t, "DefaultBranch", cfg.DefaultBranch, "master")
	assert.Empty(t, cfg.BranchMappings)
	assert.Equal(t, int64(DefaultWindow), cfg.Window)
}

func TestEmptyConfig(t *testing.T) {
	cfg := loadOrFail(t, "")
	checkValue(t, "DefaultBranch", cfg.DefaultBranch, DefaultBranch)
	assert.Empty(t, cfg.CVSRoot)
	assert.False(t, cfg.IgnoreFileErrors)
}

func TestBranchMapping(t *testing.T) {
	const cfgString = `
branch_mappings:
- name: 	vendor.*
  prefix:	imports/
`
	cfg := loadOrFail(t, cfgString)
	require := assert.New(t)
	require.Equal(1, len(cfg.BranchMappings))
	require.Equal("vendor.*", cfg.BranchMappings[0].Name)
	require.Equal("imports/vendor_drop", cfg.MapBranch("vendor_drop"))
	require.Equal("release", cfg.MapBranch("release"))
}

func TestWindowOverride(t *testing.T) {
	cfg := loadOrFail(t, "window_seconds: 60\n")
	assert.Equal(t, int64(60), cfg.Window)
}

func TestNegativeWindowRejected(t *testing.T) {
	ensureFail(t, "window_seconds: -1\n", "negative window")
}

func TestInvalidBranchMappingRegex(t *testing.T) {
	const cfgString = `
branch_mappings:
- name: 	main.*[
  prefix:	fred
`
	ensureFail(t, cfgString, "bad regex")
}

func ensureFail(t *testing.T, cfgString, desc string) {
	_, err := Unmarshal([]byte(cfgString))
	if err == nil {
		t.Fatalf("Expected config err not found: %s", desc)
	}
	t.Logf("Config err: %v", err)
}

func loadOrFail(t *testing.T, cfgString string) *Config {
	cfg, err := Unmarshal([]byte(cfgString))
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	return cfg
}
