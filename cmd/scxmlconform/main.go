// Command scxmlconform downloads the W3C SCXML IRP conformance test
// suite's manifest and referenced test files, for use as fixtures
// against the interpreter in internal/interp.
package main

import (
	"context"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type assertions struct {
	XMLName xml.Name `xml:"assertions"`
	Asserts []assert `xml:"assert"`
}

type assert struct {
	ID   string `xml:"id,attr"`
	Test test   `xml:"test"`
}

type test struct {
	ID          string `xml:"id,attr"`
	Conformance string `xml:"conformance,attr"`
	Manual      string `xml:"manual,attr"`
	Starts      []ref  `xml:"start"`
	Deps        []ref  `xml:"dep"`
}

type ref struct {
	URI string `xml:"uri,attr"`
}

const (
	baseURL      = "https://www.w3.org/Voice/2013/scxml-irp/"
	manifestURL  = baseURL + "manifest.xml"
	testBaseURL  = baseURL
	maxRetries   = 5
	baseDelay    = time.Second
	workerCount  = 8
	httpTimeout  = 30 * time.Second
)

var httpClient = &http.Client{Timeout: httpTimeout}

func downloadWithBackoff(ctx context.Context, url, localPath string) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := tryDownload(ctx, url, localPath)
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			return fmt.Errorf("after %d retries: %w", maxRetries, err)
		}
		delay := time.Duration(math.Pow(2, float64(attempt))) * baseDelay
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("max retries exceeded")
}

func tryDownload(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

func downloadManifest(ctx context.Context, manifestPath string, force bool) error {
	if !force {
		if _, err := os.Stat(manifestPath); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return downloadWithBackoff(ctx, manifestURL, manifestPath)
}

func testURIs(manifestPath string) ([]string, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var parsed assertions
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	seen := make(map[string]struct{})
	for _, a := range parsed.Asserts {
		for _, s := range a.Test.Starts {
			seen[s.URI] = struct{}{}
		}
		for _, d := range a.Test.Deps {
			seen[d.URI] = struct{}{}
		}
	}
	uris := make([]string, 0, len(seen))
	for u := range seen {
		uris = append(uris, u)
	}
	sort.Strings(uris)
	return uris, nil
}

type result struct {
	uri       string
	localPath string
	skipped   bool
	err       error
}

// fetchAll downloads uris into destDir using a bounded worker pool
// instead of the teacher's serial loop, so a conformance-suite refresh
// doesn't take one HTTP round trip at a time.
func fetchAll(ctx context.Context, logger *slog.Logger, uris []string, destDir string, force bool) []result {
	jobs := make(chan string)
	results := make([]result, len(uris))

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for uri := range jobs {
				idx := sort.SearchStrings(uris, uri)
				localPath := filepath.Join(destDir, uri)

				if _, err := os.Stat(localPath); err == nil && !force {
					results[idx] = result{uri: uri, localPath: localPath, skipped: true}
					continue
				}
				if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
					results[idx] = result{uri: uri, err: fmt.Errorf("mkdir: %w", err)}
					continue
				}
				if err := downloadWithBackoff(ctx, testBaseURL+uri, localPath); err != nil {
					results[idx] = result{uri: uri, err: err}
					logger.Warn("download failed", slog.String("uri", uri), slog.Any("error", err))
					continue
				}
				results[idx] = result{uri: uri, localPath: localPath}
			}
		}()
	}

	for _, uri := range uris {
		jobs <- uri
	}
	close(jobs)
	wg.Wait()
	return results
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-f] [-dir DIR]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  -f        force re-download of manifest and tests\n")
		fmt.Fprintf(os.Stderr, "  -dir DIR  directory to save downloaded test files (default \".\")\n")
	}
	force := flag.Bool("f", false, "force re-download of manifest and tests")
	dir := flag.String("dir", ".", "directory to save downloaded test files")
	flag.Parse()

	if len(flag.Args()) > 0 {
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	manifestPath := filepath.Join("pkg", "scxml_test_suite", "manifest.xml")

	if err := downloadManifest(ctx, manifestPath, *force); err != nil {
		logger.Error("ensure manifest", slog.Any("error", err))
		os.Exit(1)
	}

	uris, err := testURIs(manifestPath)
	if err != nil {
		logger.Error("parse manifest", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("manifest parsed", slog.Int("uris", len(uris)))

	results := fetchAll(ctx, logger, uris, *dir, *force)

	var downloaded, skipped, failed int
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
		case r.skipped:
			skipped++
		default:
			downloaded++
		}
	}
	logger.Info("fetch complete",
		slog.Int("downloaded", downloaded),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
		slog.Int("total", len(uris)),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
