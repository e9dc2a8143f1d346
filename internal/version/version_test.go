package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	result := Full()

	assert.Contains(t, result, Name)
	assert.Contains(t, result, Version)
	assert.Contains(t, result, GitCommit)
	assert.Contains(t, result, runtime.Version())
	assert.Contains(t, result, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestIsDev(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		version string
		want    bool
	}{
		{"dev", true},
		{"", true},
		{"1.2.0", false},
		{"v1.2.0.4", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			assert.Equal(t, tt.want, IsDev())
		})
	}
}

func TestGet(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "1.4.2.0"

	info := Get()

	assert.Equal(t, Name, info.Name)
	assert.Equal(t, "1.4.2.0", info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Equal(t, BuildTime, info.BuildTime)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.False(t, info.Dev)
	assert.Contains(t, info.String(), "1.4.2.0")
}
