package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseAsset(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin amd64", "darwin", "amd64", "lernpath_Darwin_all.tar.gz", false},
		{"darwin arm64", "darwin", "arm64", "lernpath_Darwin_all.tar.gz", false},
		{"linux amd64", "linux", "amd64", "lernpath_Linux_x86_64.tar.gz", false},
		{"linux arm64", "linux", "arm64", "lernpath_Linux_arm64.tar.gz", false},
		{"linux 386", "linux", "386", "lernpath_Linux_i386.tar.gz", false},
		{"windows amd64", "windows", "amd64", "lernpath_Windows_x86_64.zip", false},
		{"windows arm64", "windows", "arm64", "lernpath_Windows_arm64.zip", false},
		{"unsupported os", "freebsd", "amd64", "", true},
		{"unsupported arch", "linux", "mips", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := releaseAsset(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "normal",
			input: "abc123  lernpath_Darwin_all.tar.gz\ndef456  lernpath_Linux_x86_64.tar.gz\n",
			want: map[string]string{
				"lernpath_Darwin_all.tar.gz":   "abc123",
				"lernpath_Linux_x86_64.tar.gz": "def456",
			},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "malformed lines skipped",
			input: "abc123  file.tar.gz\nbadline\n  \nfoo  bar  baz\nghi789  other.tar.gz\n",
			want: map[string]string{
				"file.tar.gz":  "abc123",
				"other.tar.gz": "ghi789",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChecksums([]byte(tt.input)))
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, verifyChecksum(data, hex.EncodeToString(sum[:])))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := verifyChecksum(data, "0000000000000000000000000000000000000000000000000000000000000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestExtractBinary(t *testing.T) {
	binaryContent := []byte("#!/bin/sh\necho lernpath")

	t.Run("tar.gz", func(t *testing.T) {
		archive := buildTarGz(t, "lernpath", binaryContent)
		got, err := extractBinary(archive, "lernpath_Darwin_all.tar.gz")
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("zip", func(t *testing.T) {
		archive := buildZip(t, "lernpath.exe", binaryContent)
		got, err := extractBinary(archive, "lernpath_Windows_x86_64.zip")
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		archive := buildTarGz(t, "other-file", binaryContent)
		_, err := extractBinary(archive, "lernpath_Darwin_all.tar.gz")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestApplyUpdate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "lernpath")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))

	newData := []byte("new-binary-content")
	h := sha256.Sum256(newData)
	require.NoError(t, applyUpdate(newData, target, h[:]))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, newData, got)

	// The original executable bit survives the swap.
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCheck(t *testing.T) {
	t.Run("newer release available", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/abhisek/lernpath/releases/latest", r.URL.Path)
			_, _ = w.Write([]byte(`{"tag_name":"v2.1.0","html_url":"https://example.com/v2.1.0"}`))
		}))
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL))
		result, err := checker.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
		require.NoError(t, err)
		assert.True(t, result.UpdateAvailable)
		assert.Equal(t, "v2.1.0", result.LatestVersion)
		assert.Equal(t, "https://example.com/v2.1.0", result.ReleaseURL)
	})

	t.Run("same version", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name":"v1.0.0","html_url":"https://example.com/v1.0.0"}`))
		}))
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL))
		result, err := checker.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
		require.NoError(t, err)
		assert.False(t, result.UpdateAvailable)
	})

	t.Run("non-semver current version", func(t *testing.T) {
		checker := NewChecker()
		_, err := checker.Check(context.Background(), &CheckInput{Version: "(devel)"})
		assert.ErrorIs(t, err, ErrDevBuild)
	})
}

// releaseServer serves the release API plus the given download files.
func releaseServer(t *testing.T, tag string, files map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/abhisek/lernpath/releases/latest" {
			fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
			return
		}
		prefix := fmt.Sprintf("/abhisek/lernpath/releases/download/%s/", tag)
		if name, ok := strings.CutPrefix(r.URL.Path, prefix); ok {
			if body, found := files[name]; found {
				_, _ = w.Write(body)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

func TestUpdate(t *testing.T) {
	binaryContent := []byte("new-lernpath-binary")
	asset, err := releaseAsset(runtime.GOOS, runtime.GOARCH)
	require.NoError(t, err)
	var archive []byte
	if strings.HasSuffix(asset, ".zip") {
		archive = buildZip(t, "lernpath.exe", binaryContent)
	} else {
		archive = buildTarGz(t, "lernpath", binaryContent)
	}
	archiveHash := sha256.Sum256(archive)
	goodManifest := fmt.Sprintf("%s  %s\n", hex.EncodeToString(archiveHash[:]), asset)

	t.Run("happy path", func(t *testing.T) {
		dir := t.TempDir()
		execPath := filepath.Join(dir, "lernpath")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0755))

		server := releaseServer(t, "v2.0.0", map[string][]byte{
			asset:           archive,
			"checksums.txt": []byte(goodManifest),
		})
		defer server.Close()

		checker := NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			withExecPath(func() (string, error) { return execPath, nil }),
		)

		var stages []string
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)
	})

	t.Run("dev build", func(t *testing.T) {
		checker := NewChecker()
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := releaseServer(t, "v1.0.0", nil)
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		badManifest := fmt.Sprintf("%s  %s\n",
			"0000000000000000000000000000000000000000000000000000000000000000", asset)
		server := releaseServer(t, "v2.0.0", map[string][]byte{
			asset:           archive,
			"checksums.txt": []byte(badManifest),
		})
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("download failure", func(t *testing.T) {
		server := releaseServer(t, "v2.0.0", nil)
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})
}

// buildTarGz creates a tar.gz archive holding a single file.
func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name,
		Size: int64(len(content)),
		Mode: 0755,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// buildZip creates a zip archive holding a single file.
func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(name)
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
