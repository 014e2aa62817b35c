package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/abhandary/JLPT/internal"
	"github.com/abhandary/JLPT/internal/audio"
	"github.com/abhandary/JLPT/internal/wordlist"
)

// Job is a loaded and projected input file, ready to process
type Job struct {
	Path        string
	Base        string
	Mode        wordlist.Mode
	Projections []wordlist.Projection
	Entries     []wordlist.Entry
}

// Pipeline processes batches of word lists
type Pipeline struct {
	cfg       Config
	deps      Deps
	layout    Layout
	assembler *audio.Assembler
	out       io.Writer
	log       zerolog.Logger
}

// New creates a pipeline, checking that deps cover the enabled outputs
func New(cfg Config, deps Deps, log zerolog.Logger) (*Pipeline, error) {
	if cfg.Format == (audio.Format{}) {
		cfg.Format = audio.Canonical
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = "."
	}
	if err := cfg.validate(deps); err != nil {
		return nil, err
	}

	assembler, err := audio.NewAssembler(cfg.Format, cfg.Silence)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		deps:      deps,
		layout:    Layout{Root: cfg.OutputRoot},
		assembler: assembler,
		out:       defaultOut(deps.Out),
		log:       log,
	}, nil
}

// Prepare loads and projects every file. Any load or row error fails the
// whole batch before anything is written.
func (p *Pipeline) Prepare(files []string) ([]*Job, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	jobs := make([]*Job, 0, len(files))
	for _, path := range files {
		list, err := wordlist.Load(path)
		if err != nil {
			return nil, err
		}

		mode := list.DetectMode(p.cfg.AllowTriple)
		projections, err := list.Project(mode)
		if err != nil {
			return nil, err
		}

		job := &Job{
			Path:        path,
			Base:        internal.BaseName(path),
			Mode:        mode,
			Projections: projections,
			Entries:     wordlist.Entries(mode, projections),
		}
		p.log.Debug().
			Str("file", path).
			Str("mode", mode.String()).
			Int("pairs", len(job.Entries)).
			Msg("prepared word list")
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Run prepares every file, then processes them one after the other. A
// failing file is recorded and the batch moves on; the returned error is a
// *BatchError when any file failed.
func (p *Pipeline) Run(ctx context.Context, files []string) (*Summary, error) {
	jobs, err := p.Prepare(files)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.cfg.OutputRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{}
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			summary.Files = append(summary.Files, FileResult{Path: job.Path, Base: job.Base, Err: err})
			continue
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s (%s, %d pair(s))\n", i+1, len(jobs), job.Path, job.Mode, len(job.Entries))

		result, err := p.ProcessFile(ctx, job)
		if err != nil {
			p.log.Error().Err(err).Str("file", job.Path).Msg("file failed")
		}
		summary.Files = append(summary.Files, *result)
	}

	return summary, summary.batchError()
}
