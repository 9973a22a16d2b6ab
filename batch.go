package fsop

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Mode selects what a Job does.
type Mode uint8

const (
	// ModeUnpack extracts the container at Input into the directory Output.
	ModeUnpack Mode = iota

	// ModePack builds the container Output from the directory Input.
	ModePack
)

// String returns "unpack" or "pack".
func (m Mode) String() string {
	if m == ModePack {
		return "pack"
	}
	return "unpack"
}

// Job is one container to pack or unpack.
type Job struct {
	Mode   Mode
	Input  string
	Output string
}

// Batch runs independent jobs concurrently, at most WithWorkers at a time.
// The first failure cancels jobs that have not started and is returned
// wrapped with the job's input path. Results are returned in job order; the
// entry for a job that did not finish is nil.
//
// A ProgressFunc passed to Batch is called from several goroutines.
func Batch(ctx context.Context, jobs []Job, opts ...Option) ([]*Result, error) {
	cfg := newConfig(opts)
	log := cfg.log()

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Debug("starting job",
				"mode", job.Mode.String(),
				"input", job.Input,
				"output", job.Output)

			var (
				res *Result
				err error
			)
			switch job.Mode {
			case ModePack:
				res, err = PackDir(ctx, job.Input, job.Output, opts...)
			default:
				res, err = UnpackFile(ctx, job.Input, job.Output, opts...)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", job.Mode, job.Input, err)
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}
