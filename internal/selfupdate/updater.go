package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
	ErrUnsupported   = errors.New("no release build for this platform")
)

// binaryName is the executable inside release archives.
const binaryName = "mathstep"

// maxArchiveBytes bounds a release download.
const maxArchiveBytes = 200 << 20

// UpdateInput selects the build to install. An empty TargetVersion means
// the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateProgress is reported once per stage: resolve, download, verify,
// extract, install, done.
type UpdateProgress struct {
	Stage   string
	Message string
}

// Platform is an OS/architecture pair as named by Go.
type Platform struct {
	OS   string
	Arch string
}

// CurrentPlatform is the platform of the running binary.
func CurrentPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func (p Platform) supported() bool {
	switch p.OS {
	case "linux", "darwin", "windows":
	default:
		return false
	}
	switch p.Arch {
	case "amd64", "arm64":
		return true
	}
	return false
}

// executable is the file name of the binary inside the archive.
func (p Platform) executable() string {
	if p.OS == "windows" {
		return binaryName + ".exe"
	}
	return binaryName
}

// Asset is the release archive name for version tag, e.g.
// mathstep_1.4.0_linux_amd64.tar.gz.
func (p Platform) Asset(tag string) (string, error) {
	if !p.supported() {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupported, p.OS, p.Arch)
	}
	ext := ".tar.gz"
	if p.OS == "windows" {
		ext = ".zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s%s", binaryName, strings.TrimPrefix(tag, "v"), p.OS, p.Arch, ext), nil
}

// Release is one resolved build to install.
type Release struct {
	Tag          string
	Asset        string
	ArchiveURL   string
	ChecksumsURL string
}

// Resolve picks the release to install for input without downloading it.
func (c *Checker) Resolve(ctx context.Context, input *UpdateInput) (*Release, error) {
	if input.CurrentVersion == DevVersion || input.CurrentVersion == "" {
		return nil, ErrDevBuild
	}

	tag := canonical(input.TargetVersion)
	if tag == "" {
		result, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return nil, fmt.Errorf("check for updates: %w", err)
		}
		if !result.UpdateAvailable {
			return nil, ErrAlreadyLatest
		}
		tag = canonical(result.LatestVersion)
	} else {
		if !semver.IsValid(tag) {
			return nil, fmt.Errorf("target version %q is not a semantic version", input.TargetVersion)
		}
		if semver.Compare(tag, canonical(input.CurrentVersion)) == 0 {
			return nil, ErrAlreadyLatest
		}
	}

	asset, err := c.platform.Asset(tag)
	if err != nil {
		return nil, err
	}
	base := fmt.Sprintf("%s/%s/%s/releases/download/%s",
		strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag)
	return &Release{
		Tag:          tag,
		Asset:        asset,
		ArchiveURL:   base + "/" + asset,
		ChecksumsURL: base + "/checksums.txt",
	}, nil
}

// Update replaces the running executable with the release selected by
// input. progress may be nil.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	report := func(stage, format string, args ...any) {
		if progress != nil {
			progress(UpdateProgress{Stage: stage, Message: fmt.Sprintf(format, args...)})
		}
	}

	report("resolve", "Looking up release...")
	rel, err := c.Resolve(ctx, input)
	if err != nil {
		return err
	}

	report("download", "Downloading %s (%s)...", rel.Tag, rel.Asset)
	archive, err := c.fetch(ctx, rel.ArchiveURL)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report("verify", "Verifying checksum...")
	sums, err := c.fetch(ctx, rel.ChecksumsURL)
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(sums)[rel.Asset]
	if !ok {
		return fmt.Errorf("%w: %s not listed in checksums.txt", ErrChecksum, rel.Asset)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return err
	}

	report("extract", "Extracting %s...", c.platform.executable())
	bin, err := unpack(archive, rel.Asset, c.platform.executable())
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report("install", "Installing...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	if err := install(bin, target); err != nil {
		return fmt.Errorf("install: %w", err)
	}

	report("done", "Updated to %s", rel.Tag)
	return nil
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", path.Base(url), resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxArchiveBytes {
		return nil, fmt.Errorf("GET %s: larger than %d bytes", path.Base(url), maxArchiveBytes)
	}
	return data, nil
}

// parseChecksums reads sha256sum output. A leading '*' on the file name
// (binary mode) is ignored.
func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	for line := range strings.Lines(string(data)) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		sums[strings.TrimPrefix(fields[1], "*")] = strings.ToLower(fields[0])
	}
	return sums
}

func verifyChecksum(data []byte, wantHex string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != strings.ToLower(wantHex) {
		return fmt.Errorf("%w: want %s, got %s", ErrChecksum, wantHex, got)
	}
	return nil
}

// unpack returns the contents of the file called name inside the archive.
func unpack(archive []byte, asset, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(asset, ".zip") {
		data, err = fromZip(archive, name)
	} else {
		data, err = fromTarGz(archive, name)
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s not found in %s", name, asset)
	}
	return data, nil
}

func fromTarGz(archive []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, err
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == name {
			return io.ReadAll(tr)
		}
	}
}

func fromZip(archive []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		return data, err
	}
	return nil, nil
}

// install writes bin next to target, keeping target's mode, and renames it
// over target. The written file is hashed while writing and checked before
// the rename.
func install(bin []byte, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), bytes.NewReader(bin)); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if want := sha256.Sum256(bin); !bytes.Equal(h.Sum(nil), want[:]) {
		return fmt.Errorf("%w: short write to %s", ErrChecksum, tmpName)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
