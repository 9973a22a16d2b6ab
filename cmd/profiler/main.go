// Command profiler runs the container codec in a loop under pprof, fgprof or
// the execution tracer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/felixge/fgprof"

	"github.com/meigma/fsop"
	fsopcore "github.com/meigma/fsop/core"
)

type config struct {
	mode       string
	entries    int
	blobSize   int
	pattern    string
	format     string
	dedup      bool
	fgProfile  string
	duration   time.Duration
	iterations int
	pprofAddr  string
	cpuProfile string
	memProfile string
	traceFile  string
	tempDir    string
	keepTemp   bool
	randomSeed int64
}

//nolint:unused // sink variables prevent compiler optimizations in profiling
var (
	sinkBytes   []byte
	sinkShaders []fsopcore.Shader
)

//nolint:gocognit // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	format, ok := fsopcore.ParseFormat(cfg.format)
	if !ok {
		log.Fatalf("unknown format: %s", cfg.format)
	}
	shaders := makeShaders(cfg.entries, cfg.blobSize, cfg.pattern, cfg.randomSeed)

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	var stopFG func() error
	if cfg.fgProfile != "" {
		fgFile, fgErr := os.Create(cfg.fgProfile)
		if fgErr != nil {
			log.Fatal(fgErr) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
		}
		stopFG = fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				log.Printf("fgprof stop error: %v", err)
			}
			_ = fgFile.Close()
		}()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, format, shaders, dir)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("mode=%s format=%s ops=%d bytes=%d elapsed=%s throughput=%.2f MB/s\n",
		cfg.mode,
		format,
		stats.ops,
		stats.bytes,
		stats.elapsed,
		float64(stats.bytes)/(1024*1024)/stats.elapsed.Seconds(),
	)
}

type profileStats struct {
	ops     int
	bytes   int64
	elapsed time.Duration
}

//nolint:gocognit,gocritic // complexity is inherent to multi-mode profiler dispatch; hugeParam acceptable for profiler
func runProfile(cfg config, format fsopcore.Format, shaders []fsopcore.Shader, rootDir string) (profileStats, error) {
	codecOpts := []fsopcore.Option{fsopcore.WithFormat(format), fsopcore.WithDedup(cfg.dedup)}
	container, err := fsopcore.Encode(shaders, codecOpts...)
	if err != nil {
		return profileStats{}, err
	}

	start := time.Now()
	ops := 0
	var byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < cfg.iterations
		}
		return time.Since(start) < cfg.duration
	}

	switch cfg.mode {
	case "encode":
		for shouldContinue() {
			out, err := fsopcore.Encode(shaders, codecOpts...)
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = out
			byteCount += int64(len(out))
			ops++
		}

	case "decode":
		for shouldContinue() {
			out, err := fsopcore.Decode(container, codecOpts...)
			if err != nil {
				return profileStats{}, err
			}
			sinkShaders = out
			byteCount += int64(len(container))
			ops++
		}

	case "unpack", "pack":
		src := filepath.Join(rootDir, "profile.fsop")
		if err := os.WriteFile(src, container, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
			return profileStats{}, err
		}
		unpacked := filepath.Join(rootDir, "profile_unpacked")
		opts := []fsop.Option{fsop.WithFormat(format), fsop.WithDedup(cfg.dedup), fsop.WithOverwrite(true)}
		if _, err := fsop.UnpackFile(context.Background(), src, unpacked, opts...); err != nil {
			return profileStats{}, err
		}

		start = time.Now()
		for shouldContinue() {
			var res *fsop.Result
			if cfg.mode == "unpack" {
				res, err = fsop.UnpackFile(context.Background(), src, unpacked, opts...)
			} else {
				res, err = fsop.PackDir(context.Background(), unpacked, src, opts...)
			}
			if err != nil {
				return profileStats{}, err
			}
			byteCount += int64(res.Bytes)
			ops++
		}

	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	return profileStats{
		ops:     ops,
		bytes:   byteCount,
		elapsed: time.Since(start),
	}, nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "decode", "mode: encode, decode, pack, unpack")
	flag.IntVar(&cfg.entries, "entries", 512, "number of shader entries")
	flag.IntVar(&cfg.blobSize, "blob-size", 4<<10, "shader blob size in bytes")
	flag.StringVar(&cfg.pattern, "pattern", "random", "pattern: random or repeated (repeated blobs dedup)")
	flag.StringVar(&cfg.format, "format", "table", "container format: table or stream")
	flag.BoolVar(&cfg.dedup, "dedup", true, "share data ranges between identical blobs")
	flag.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory for pack and unpack modes")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	return cfg
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "fsop-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

// makeShaders builds entries named shader00000... with both slots present.
// The repeated pattern cycles through eight blobs per slot.
func makeShaders(count, size int, pattern string, seed int64) []fsopcore.Shader {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // intentional use for reproducible benchmarks
	blob := func(i int) []byte {
		b := make([]byte, size)
		switch pattern {
		case "repeated":
			for j := range b {
				b[j] = byte('a' + i%8)
			}
		default:
			_, _ = rng.Read(b)
		}
		return b
	}

	shaders := make([]fsopcore.Shader, count)
	for i := range shaders {
		shaders[i] = fsopcore.Shader{
			Name:   fmt.Sprintf("shader%05d", i),
			Vertex: blob(i),
			Pixel:  blob(i + 1),
		}
	}
	return shaders
}
