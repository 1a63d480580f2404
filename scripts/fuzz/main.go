// Fuzz runner for WHM.
//
// Finds every Fuzz* target in the module's test files, runs each for a
// configurable duration and writes a summary to target/reports/fuzz.txt.
// Exits non-zero if any target finds a failing input.
//
// Usage:
//
//	go run ./scripts/fuzz
//	FUZZ_TIME=60s go run ./scripts/fuzz
//	FUZZ_MATCH=Sensors go run ./scripts/fuzz
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"
)

type target struct {
	Func string
	Pkg  string // ./relative/dir/
}

type result struct {
	target
	Elapsed time.Duration
	Execs   int64
	PerSec  int64
	Passed  bool
}

var (
	reFuzzFunc = regexp.MustCompile(`^func (Fuzz\w+)\(f \*testing\.F\)`)
	reExecs    = regexp.MustCompile(`execs:\s+(\d+)\s+\((\d+)/sec\)`)
)

func main() {
	root := projectRoot()
	fuzzTime := envOr("FUZZ_TIME", "30s")
	match := os.Getenv("FUZZ_MATCH")

	targets, err := discover(root)
	if err != nil {
		log.Fatalf("finding fuzz targets: %v", err)
	}
	if match != "" {
		targets = filter(targets, match)
	}
	if len(targets) == 0 {
		log.Fatal("no fuzz targets found")
	}

	fmt.Printf("Running %d fuzz targets (fuzztime=%s each)\n\n", len(targets), fuzzTime)
	results := make([]result, 0, len(targets))
	for _, t := range targets {
		r := runTarget(root, t, fuzzTime)
		results = append(results, r)
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Printf("%s %s %s (%d execs)\n", status, t.Pkg, t.Func, r.Execs)
	}

	reportDir := filepath.Join(root, "target", "reports")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		log.Fatalf("creating report directory: %v", err)
	}
	reportPath := filepath.Join(reportDir, "fuzz.txt")
	if err := os.WriteFile(reportPath, []byte(report(results, fuzzTime)), 0o644); err != nil {
		log.Fatalf("writing fuzz report: %v", err)
	}
	fmt.Printf("\nFuzz report: %s\n", reportPath)

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}

// discover scans test files under root for fuzz functions.
func discover(root string) ([]target, error) {
	var out []target
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "target" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}
		funcs, err := fuzzFuncs(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		for _, fn := range funcs {
			out = append(out, target{Func: fn, Pkg: "./" + filepath.ToSlash(rel) + "/"})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pkg != out[j].Pkg {
			return out[i].Pkg < out[j].Pkg
		}
		return out[i].Func < out[j].Func
	})
	return out, err
}

func fuzzFuncs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var funcs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if m := reFuzzFunc.FindStringSubmatch(sc.Text()); m != nil {
			funcs = append(funcs, m[1])
		}
	}
	return funcs, sc.Err()
}

func filter(targets []target, match string) []target {
	var out []target
	for _, t := range targets {
		if strings.Contains(t.Func, match) {
			out = append(out, t)
		}
	}
	return out
}

func runTarget(root string, t target, fuzzTime string) result {
	start := time.Now()
	cmd := exec.Command("go", "test",
		"-run=^$",
		fmt.Sprintf("-fuzz=^%s$", t.Func),
		fmt.Sprintf("-fuzztime=%s", fuzzTime),
		t.Pkg,
	)
	cmd.Dir = root

	var buf bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &buf)
	cmd.Stderr = io.MultiWriter(os.Stderr, &buf)
	err := cmd.Run()
	out := buf.String()

	r := result{target: t, Elapsed: time.Since(start)}
	// The last progress line carries the final counters.
	if all := reExecs.FindAllStringSubmatch(out, -1); len(all) > 0 {
		last := all[len(all)-1]
		r.Execs, _ = strconv.ParseInt(last[1], 10, 64)
		r.PerSec, _ = strconv.ParseInt(last[2], 10, 64)
	}
	// A deadline race at the end of -fuzztime is not a finding; a finding
	// always writes its input to testdata.
	r.Passed = err == nil ||
		(strings.Contains(out, "context deadline exceeded") && !strings.Contains(out, "Failing input written to"))
	return r
}

func report(results []result, fuzzTime string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "WHM fuzz report\n")
	fmt.Fprintf(&sb, "generated  %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&sb, "go         %s\n", goVersion())
	fmt.Fprintf(&sb, "platform   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "fuzztime   %s per target\n\n", fuzzTime)

	fmt.Fprintf(&sb, "%-6s %-28s %-24s %12s %10s %10s\n", "STATUS", "PACKAGE", "TARGET", "EXECS", "EXECS/S", "ELAPSED")
	var total int64
	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		}
		total += r.Execs
		fmt.Fprintf(&sb, "%-6s %-28s %-24s %12d %10d %10s\n",
			status, r.Pkg, r.Func, r.Execs, r.PerSec, r.Elapsed.Round(time.Second))
	}
	fmt.Fprintf(&sb, "\n%d targets, %d failed, %d executions\n", len(results), failed, total)
	return sb.String()
}

func goVersion() string {
	out, err := exec.Command("go", "version").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func projectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		log.Fatal("could not determine script directory")
	}
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			log.Fatal("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
