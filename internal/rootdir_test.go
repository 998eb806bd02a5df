package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindRootDir(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantRoot string
	}{
		{
			name: "simple root",
			args: []string{
				"test/a.txt",
				"test/path/b.txt",
				"test/another/path/c.txt",
			},
			wantRoot: "test/",
		},
		{
			name: "no root",
			args: []string{
				"a.txt",
				"path/b.txt",
				"another/path/c.txt",
			},
			wantRoot: "",
		},
		{
			name: "different roots",
			args: []string{
				"test/a.txt",
				"other/b.txt",
			},
			wantRoot: "",
		},
		{
			name: "window paths",
			args: []string{
				"test\\a.txt",
				"test\\path\\b.txt",
				"test\\another\\path\\c.txt",
			},
			wantRoot: "test/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRoot := FindZipRootDir(tt.args)
			assert.Equalf(t, RootDir(tt.wantRoot), gotRoot, "FindZipRootDir(%v) got = %v, want = %v", tt.args, gotRoot, tt.wantRoot)
		})
	}
}

func TestRootDir_Join(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "path", "b.txt"), RootDir("test/").Join("out", "test/path/b.txt"))
	assert.Equal(t, filepath.Join("out", "path", "b.txt"), RootDir("test/").Join("out", `test\path\b.txt`))
	assert.Equal(t, filepath.Join("out", "test", "a.txt"), RootDir("").Join("out", "test/a.txt"))
}
