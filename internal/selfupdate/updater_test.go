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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linuxAMD64 = Platform{OS: "linux", Arch: "amd64"}

func TestPlatformAsset(t *testing.T) {
	tests := []struct {
		platform Platform
		tag      string
		want     string
		wantErr  bool
	}{
		{Platform{"linux", "amd64"}, "v1.4.0", "mathstep_1.4.0_linux_amd64.tar.gz", false},
		{Platform{"linux", "arm64"}, "1.4.0", "mathstep_1.4.0_linux_arm64.tar.gz", false},
		{Platform{"darwin", "arm64"}, "v2.0.0-rc.1", "mathstep_2.0.0-rc.1_darwin_arm64.tar.gz", false},
		{Platform{"darwin", "amd64"}, "v2.0.0", "mathstep_2.0.0_darwin_amd64.tar.gz", false},
		{Platform{"windows", "amd64"}, "v1.4.0", "mathstep_1.4.0_windows_amd64.zip", false},
		{Platform{"freebsd", "amd64"}, "v1.4.0", "", true},
		{Platform{"linux", "386"}, "v1.4.0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.platform.OS+"/"+tt.platform.Arch, func(t *testing.T) {
			got, err := tt.platform.Asset(tt.tag)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	in := "ABC123  mathstep_1.4.0_linux_amd64.tar.gz\n" +
		"def456 *mathstep_1.4.0_windows_amd64.zip\n" +
		"\n" +
		"garbage\n" +
		"a b c\n"
	assert.Equal(t, map[string]string{
		"mathstep_1.4.0_linux_amd64.tar.gz": "abc123",
		"mathstep_1.4.0_windows_amd64.zip":  "def456",
	}, parseChecksums([]byte(in)))
	assert.Empty(t, parseChecksums(nil))
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("mathstep")
	sum := sha256.Sum256(data)
	good := hex.EncodeToString(sum[:])

	assert.NoError(t, verifyChecksum(data, good))
	assert.NoError(t, verifyChecksum(data, strings.ToUpper(good)))
	assert.ErrorIs(t, verifyChecksum(data, strings.Repeat("0", 64)), ErrChecksum)
}

func TestUnpack(t *testing.T) {
	bin := []byte("#!/bin/sh\necho mathstep")

	got, err := unpack(tarGz(t, "mathstep_1.4.0_linux_amd64/mathstep", bin), "mathstep_1.4.0_linux_amd64.tar.gz", "mathstep")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	got, err = unpack(zipped(t, "mathstep.exe", bin), "mathstep_1.4.0_windows_amd64.zip", "mathstep.exe")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = unpack(tarGz(t, "README.md", bin), "mathstep_1.4.0_linux_amd64.tar.gz", "mathstep")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = unpack([]byte("not an archive"), "x.tar.gz", "mathstep")
	assert.Error(t, err)
}

func TestInstall_ReplacesAndKeepsMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "mathstep")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	require.NoError(t, install([]byte("new build"), target))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new build", string(got))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestInstall_MissingTarget(t *testing.T) {
	assert.Error(t, install([]byte("x"), filepath.Join(t.TempDir(), "absent")))
}

// releaseServer serves one release of tag for linux/amd64. checksum
// overrides the listed archive hash when set.
func releaseServer(t *testing.T, tag string, archive []byte, checksum string) *httptest.Server {
	t.Helper()
	asset, err := linuxAMD64.Asset(tag)
	require.NoError(t, err)
	if checksum == "" {
		sum := sha256.Sum256(archive)
		checksum = hex.EncodeToString(sum[:])
	}
	dl := "/abhisek/mathstep/releases/download/" + tag + "/"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/abhisek/mathstep/releases/latest":
			fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
		case dl + asset:
			_, _ = w.Write(archive)
		case dl + "checksums.txt":
			fmt.Fprintf(w, "%s  %s\n", checksum, asset)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testChecker(srv *httptest.Server, execPath string) *Checker {
	return NewChecker(
		WithBaseURL(srv.URL),
		WithDownloadBaseURL(srv.URL),
		WithPlatform(linuxAMD64),
		withExecPath(func() (string, error) { return execPath, nil }),
	)
}

func TestResolve(t *testing.T) {
	srv := releaseServer(t, "v1.5.0", nil, "")
	c := testChecker(srv, "")
	ctx := context.Background()

	rel, err := c.Resolve(ctx, &UpdateInput{CurrentVersion: "v1.4.0"})
	require.NoError(t, err)
	assert.Equal(t, "v1.5.0", rel.Tag)
	assert.Equal(t, "mathstep_1.5.0_linux_amd64.tar.gz", rel.Asset)
	assert.Equal(t, srv.URL+"/abhisek/mathstep/releases/download/v1.5.0/mathstep_1.5.0_linux_amd64.tar.gz", rel.ArchiveURL)
	assert.Equal(t, srv.URL+"/abhisek/mathstep/releases/download/v1.5.0/checksums.txt", rel.ChecksumsURL)

	rel, err = c.Resolve(ctx, &UpdateInput{CurrentVersion: "v1.5.0", TargetVersion: "1.3.2"})
	require.NoError(t, err, "an explicit older target is allowed")
	assert.Equal(t, "v1.3.2", rel.Tag)

	_, err = c.Resolve(ctx, &UpdateInput{CurrentVersion: "v1.5.0"})
	assert.ErrorIs(t, err, ErrAlreadyLatest)
	_, err = c.Resolve(ctx, &UpdateInput{CurrentVersion: "v1.4.0", TargetVersion: "v1.4.0"})
	assert.ErrorIs(t, err, ErrAlreadyLatest)
	_, err = c.Resolve(ctx, &UpdateInput{CurrentVersion: "v1.4.0", TargetVersion: "latest"})
	assert.Error(t, err)
	_, err = c.Resolve(ctx, &UpdateInput{CurrentVersion: DevVersion})
	assert.ErrorIs(t, err, ErrDevBuild)

	_, err = NewChecker(WithBaseURL(srv.URL), WithPlatform(Platform{"plan9", "amd64"})).
		Resolve(ctx, &UpdateInput{CurrentVersion: "v1.4.0"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestUpdate(t *testing.T) {
	bin := []byte("mathstep v1.5.0")
	archive := tarGz(t, "mathstep", bin)

	t.Run("installs latest", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "mathstep")
		require.NoError(t, os.WriteFile(execPath, []byte("v1.4.0"), 0o755))
		c := testChecker(releaseServer(t, "v1.5.0", archive, ""), execPath)

		var stages []string
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "1.4.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"resolve", "download", "verify", "extract", "install", "done"}, stages)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, bin, got)
	})

	t.Run("nil progress", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "mathstep")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))
		c := testChecker(releaseServer(t, "v1.5.0", archive, ""), execPath)
		require.NoError(t, c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.4.0"}, nil))
	})

	t.Run("checksum mismatch leaves binary alone", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "mathstep")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))
		c := testChecker(releaseServer(t, "v1.5.0", archive, strings.Repeat("0", 64)), execPath)

		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.4.0"}, nil)
		require.ErrorIs(t, err, ErrChecksum)
		got, _ := os.ReadFile(execPath)
		assert.Equal(t, "old", string(got))
	})

	t.Run("missing asset", func(t *testing.T) {
		srv := releaseServer(t, "v1.5.0", archive, "")
		c := testChecker(srv, "")
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.4.0", TargetVersion: "v9.9.9"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: DevVersion}, nil)
		assert.ErrorIs(t, err, ErrDevBuild)
	})
}

func tarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o755, Typeflag: tar.TypeReg}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func zipped(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
