package engine

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/user/clip-trimmer/logging"
)

const (
	pathScheme    = "path:"
	systemBaseURL = "system"
	lockFileName  = ".fetch.lock"
	lockRetry     = 250 * time.Millisecond
)

// ResourceNames are the file names of the three resources under a base location.
type ResourceNames struct {
	Core   string
	Binary string
	Worker string
}

// ResolveResources joins names onto base. An empty base or "system" resolves the
// executables from $PATH and skips manifest verification.
func ResolveResources(base string, names ResourceNames) (Resources, error) {
	base = strings.TrimSpace(base)
	if names.Core == "" || names.Binary == "" {
		return Resources{}, errors.New("core and binary resource names are required")
	}
	if base == "" || base == systemBaseURL {
		return Resources{
			Core:   pathScheme + names.Core,
			Binary: pathScheme + names.Binary,
		}, nil
	}

	var join func(name string) string
	if strings.Contains(base, "://") {
		u, err := url.Parse(base)
		if err != nil {
			return Resources{}, fmt.Errorf("parse base url: %w", err)
		}
		join = func(name string) string { return u.JoinPath(name).String() }
	} else {
		join = func(name string) string { return filepath.Join(base, name) }
	}

	res := Resources{Core: join(names.Core), Binary: join(names.Binary)}
	if names.Worker != "" {
		res.Worker = join(names.Worker)
	}
	return res, nil
}

// fetchedResources are the local paths an engine runs from.
type fetchedResources struct {
	Core   string
	Binary string
}

// fetcher materializes resources into a cache directory.
type fetcher struct {
	client   *http.Client
	cacheDir string
	logger   zerolog.Logger
}

// fetchAll resolves every resource, reporting overall progress through onProgress.
func (f *fetcher) fetchAll(ctx context.Context, res Resources, onProgress ProgressFunc) (fetchedResources, error) {
	if res.Core == "" || res.Binary == "" {
		return fetchedResources{}, errors.New("core and binary resources are required")
	}

	locations := []string{res.Core, res.Binary}
	if res.Worker != "" {
		locations = append(locations, res.Worker)
	}

	if needsCache(locations) {
		if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
			return fetchedResources{}, fmt.Errorf("create cache dir: %w", err)
		}
		lock := flock.New(filepath.Join(f.cacheDir, lockFileName))
		locked, err := lock.TryLockContext(ctx, lockRetry)
		if err != nil {
			return fetchedResources{}, fmt.Errorf("lock cache dir: %w", err)
		}
		if !locked {
			return fetchedResources{}, errors.New("cache dir is locked by another process")
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				f.logger.Warn().Err(err).Msg("failed to release cache lock")
			}
		}()
	}

	paths := make([]string, len(locations))
	count := float64(len(locations))
	for i, loc := range locations {
		step := func(done, total int64) {
			frac := 1.0
			if total > 0 {
				frac = float64(done) / float64(total)
			}
			if frac > 1 {
				frac = 1
			}
			onProgress((float64(i) + frac) / count)
		}
		p, err := f.fetch(ctx, loc, i < 2, step)
		if err != nil {
			return fetchedResources{}, fmt.Errorf("fetch %s: %w", loc, err)
		}
		f.logger.Debug().Str(logging.FieldResource, loc).Str(logging.FieldPath, p).Msg("resource ready")
		paths[i] = p
	}

	out := fetchedResources{Core: paths[0], Binary: paths[1]}
	if res.Worker == "" {
		return out, nil
	}

	manifest, err := os.ReadFile(paths[2])
	if err != nil {
		return fetchedResources{}, fmt.Errorf("read manifest: %w", err)
	}
	sums := parseManifest(manifest)
	for _, p := range []string{out.Core, out.Binary} {
		if err := verifyChecksum(p, sums); err != nil {
			if isCached(f.cacheDir, p) {
				_ = os.Remove(p)
			}
			return fetchedResources{}, err
		}
	}
	return out, nil
}

// fetch returns a local path for location, downloading remote resources into the cache.
func (f *fetcher) fetch(ctx context.Context, location string, executable bool, progress func(done, total int64)) (string, error) {
	if name, ok := strings.CutPrefix(location, pathScheme); ok {
		resolved, err := exec.LookPath(name)
		if err != nil {
			return "", err
		}
		progress(1, 1)
		return resolved, nil
	}

	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", err
		}
		location = filepath.FromSlash(u.Path)
	}

	if !strings.Contains(location, "://") {
		info, err := os.Stat(location)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", location)
		}
		progress(info.Size(), info.Size())
		return location, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(f.cacheDir, path.Base(u.Path))
	if executable {
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			progress(info.Size(), info.Size())
			return dest, nil
		}
	}

	if err := f.download(ctx, location, dest, executable, progress); err != nil {
		return "", err
	}
	return dest, nil
}

func (f *fetcher) download(ctx context.Context, location, dest string, executable bool, progress func(done, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return err
	}
	client := f.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	mode := os.FileMode(0o644)
	if executable {
		mode = 0o755
	}
	tmp, err := renameio.TempFile("", dest)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()
	if err := tmp.Chmod(mode); err != nil {
		return err
	}

	body := &countingReader{r: resp.Body, total: resp.ContentLength, progress: progress}
	if _, err := io.Copy(tmp, body); err != nil {
		return err
	}
	if resp.ContentLength <= 0 {
		progress(1, 1)
	}
	return tmp.CloseAtomicallyReplace()
}

// countingReader reports bytes read so far.
type countingReader struct {
	r        io.Reader
	done     int64
	total    int64
	progress func(done, total int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.done += int64(n)
		if c.total > 0 {
			c.progress(c.done, c.total)
		}
	}
	return n, err
}

// parseManifest reads sha256sum output: "<hex>  <name>" or "<hex> *<name>".
func parseManifest(data []byte) map[string]string {
	sums := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		name := path.Base(strings.TrimPrefix(fields[1], "*"))
		sums[name] = strings.ToLower(fields[0])
	}
	return sums
}

func verifyChecksum(p string, sums map[string]string) error {
	name := filepath.Base(p)
	want, ok := sums[name]
	if !ok {
		return fmt.Errorf("manifest has no entry for %s", name)
	}
	file, err := os.Open(p)
	if err != nil {
		return err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return err
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", name, got, want)
	}
	return nil
}

func needsCache(locations []string) bool {
	for _, loc := range locations {
		if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
			return true
		}
	}
	return false
}

func isCached(cacheDir, p string) bool {
	rel, err := filepath.Rel(cacheDir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
