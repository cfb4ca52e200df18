package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dupefinder/scanner"
	"dupefinder/testsupport"
)

func TestScanFolderFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteBytes(t, filepath.Join(dir, "b.PNG"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(dir, "a.jpg"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(dir, "c.webp"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(dir, "d.bmp"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(dir, "notes.txt"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(dir, "anim.gif"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(dir, "nested", "deep.png"), []byte("x"))
	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	entries, err := scanner.ScanFolder(dir)
	if err != nil {
		t.Fatalf("ScanFolder returned error: %v", err)
	}

	want := []string{"a.jpg", "b.PNG", "c.webp", "d.bmp"}
	if len(entries) != len(want) {
		t.Fatalf("ScanFolder returned %d entries: %+v", len(entries), entries)
	}
	for i, entry := range entries {
		if entry.Name != want[i] {
			t.Errorf("entry %d = %s, want %s", i, entry.Name, want[i])
		}
		if entry.Path != filepath.Join(dir, want[i]) {
			t.Errorf("entry %d path = %s", i, entry.Path)
		}
	}
}

func TestScanFolderErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := scanner.ScanFolder(filepath.Join(dir, "missing")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing dir error = %v, want fs.ErrNotExist", err)
	}

	file := testsupport.WriteBytes(t, filepath.Join(dir, "file.png"), []byte("x"))
	if _, err := scanner.ScanFolder(file); !errors.Is(err, scanner.ErrNotDirectory) {
		t.Fatalf("file target error = %v, want ErrNotDirectory", err)
	}
}

func TestBuildIndexSkipsUnreadable(t *testing.T) {
	dir := testsupport.DuplicateDir(t)
	testsupport.WriteBytes(t, filepath.Join(dir, "broken.jpg"), []byte("garbage"))

	result, err := scanner.BuildIndex(context.Background(), dir, scanner.BuildOptions{Workers: 2})
	if err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}

	if result.Len() != 3 {
		t.Fatalf("indexed %d records, want 3", result.Len())
	}
	wantOrder := []string{"A.png", "B.png", "C.png"}
	for i, record := range result.Records {
		if filepath.Base(record.Path) != wantOrder[i] {
			t.Fatalf("record %d = %s, want %s", i, record.Path, wantOrder[i])
		}
	}
	if len(result.Skipped) != 1 || filepath.Base(result.Skipped[0].Path) != "broken.jpg" || result.Skipped[0].Error == nil {
		t.Fatalf("Skipped = %+v", result.Skipped)
	}

	a, b := result.Records[0], result.Records[1]
	if !a.Fingerprint.Equal(b.Fingerprint) {
		t.Fatal("identical images must share a fingerprint")
	}
	if got := result.Exact.Get(a.Fingerprint); len(got) != 2 {
		t.Fatalf("exact table holds %d records for A, want 2", len(got))
	}
	if result.Exact.Len() != 3 || result.Metric.Len() != 3 {
		t.Fatalf("index sizes exact=%d metric=%d", result.Exact.Len(), result.Metric.Len())
	}
	if got := result.Metric.Search(a.Fingerprint, 5); len(got) != 2 {
		t.Fatalf("metric search returned %d records, want 2", len(got))
	}
}

func TestBuildIndexDeterministicAcrossWorkers(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		name := filepath.Join(dir, string(rune('a'+i))+".png")
		testsupport.SaveImage(t, name, testsupport.Noise(40, 40, uint32(i+1)))
	}

	serial, err := scanner.BuildIndex(context.Background(), dir, scanner.BuildOptions{Workers: 1})
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := scanner.BuildIndex(context.Background(), dir, scanner.BuildOptions{Workers: 8})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if serial.Len() != parallel.Len() {
		t.Fatalf("lengths differ: %d vs %d", serial.Len(), parallel.Len())
	}
	for i := range serial.Records {
		s, p := serial.Records[i], parallel.Records[i]
		if s.Path != p.Path || !s.Fingerprint.Equal(p.Fingerprint) {
			t.Fatalf("record %d differs: %+v vs %+v", i, s, p)
		}
	}
}

func TestBuildIndexEmptyDir(t *testing.T) {
	result, err := scanner.BuildIndex(context.Background(), t.TempDir(), scanner.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}
	if result.Len() != 0 || result.Metric.Nodes() != 0 {
		t.Fatalf("expected empty index, got %d records", result.Len())
	}
}

func TestBuildIndexInvalidFingerprintSize(t *testing.T) {
	if _, err := scanner.BuildIndex(context.Background(), t.TempDir(), scanner.BuildOptions{FingerprintSize: 12}); err == nil {
		t.Fatal("expected error for fingerprint size 12")
	}
}

func TestBuildIndexCancelled(t *testing.T) {
	dir := testsupport.DuplicateDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := scanner.BuildIndex(ctx, dir, scanner.BuildOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	total    int
	results  []scanner.ProcessImageResult
	finished bool
}

func (r *recordingReporter) Start(total int) { r.total = total }

func (r *recordingReporter) Increment(result scanner.ProcessImageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recordingReporter) Finish() { r.finished = true }

func TestBuildIndexReportsProgress(t *testing.T) {
	dir := testsupport.DuplicateDir(t)
	testsupport.WriteBytes(t, filepath.Join(dir, "broken.png"), []byte("garbage"))
	reporter := &recordingReporter{}

	if _, err := scanner.BuildIndex(context.Background(), dir, scanner.BuildOptions{Progress: reporter, Verbose: true}); err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}
	if reporter.total != 4 || len(reporter.results) != 4 || !reporter.finished {
		t.Fatalf("reporter saw total=%d results=%d finished=%v", reporter.total, len(reporter.results), reporter.finished)
	}
	failures := 0
	for _, r := range reporter.results {
		if !r.Success {
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("reporter saw %d failures, want 1", failures)
	}
}

func TestProgressTrackerCounts(t *testing.T) {
	reporter := &recordingReporter{}
	tracker := scanner.NewProgressTracker(scanner.FileStats{Total: 3}, nil, false, reporter)

	var wg sync.WaitGroup
	for i, ok := range []bool{true, false, true} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record(scanner.ProcessImageResult{Path: fmt.Sprintf("%d.png", i), Success: ok})
		}()
	}
	wg.Wait()
	tracker.Stop()

	if tracker.Processed() != 3 || tracker.Errors() != 1 {
		t.Fatalf("processed=%d errors=%d, want 3 and 1", tracker.Processed(), tracker.Errors())
	}
	if reporter.total != 3 || len(reporter.results) != 3 || !reporter.finished {
		t.Fatalf("reporter saw total=%d results=%d finished=%v", reporter.total, len(reporter.results), reporter.finished)
	}
}
