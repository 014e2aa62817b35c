package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhandary/JLPT/internal"
	"github.com/abhandary/JLPT/internal/anki"
	"github.com/abhandary/JLPT/internal/audio"
	"github.com/abhandary/JLPT/internal/media"
	"github.com/abhandary/JLPT/internal/wordlist"
)

// durationTolerance is the accepted gap between the probed video length
// and the sum of its segments; container framing adds a little per segment
const durationTolerance = 250 * time.Millisecond

// pairOutput is what one spoken pair left in the work directory
type pairOutput struct {
	entry    wordlist.Entry
	track    string
	duration time.Duration
}

// fileRun holds the state of one ProcessFile call
type fileRun struct {
	p        *Pipeline
	job      *Job
	result   *FileResult
	work     string
	wav      *audio.TrackWriter
	pairs    []pairOutput
	segments []media.Segment
}

// ProcessFile writes every enabled artifact for one prepared file. The
// result is always non-nil; its Err matches the returned error.
func (p *Pipeline) ProcessFile(ctx context.Context, job *Job) (*FileResult, error) {
	result := &FileResult{Path: job.Path, Base: job.Base, Mode: job.Mode, Pairs: len(job.Entries)}

	run := &fileRun{p: p, job: job, result: result}
	if err := run.execute(ctx); err != nil {
		result.Err = err
		return result, err
	}
	return result, nil
}

func (r *fileRun) execute(ctx context.Context) error {
	p := r.p

	if p.cfg.Debug {
		r.echo()
	}

	if p.cfg.GenerateCSV {
		for _, projection := range r.job.Projections {
			path := p.layout.CSV(projection.Name, r.job.Base)
			if err := wordlist.WriteCSV(path, projection.Pairs); err != nil {
				return err
			}
			r.result.CSVs = append(r.result.CSVs, path)
			p.log.Debug().Str("file", path).Int("pairs", len(projection.Pairs)).Msg("wrote projected CSV")
		}
	}

	if !p.cfg.speaks() || len(r.job.Entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.layout.TempRoot(), 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	work, err := os.MkdirTemp(p.layout.TempRoot(), internal.SanitizeFilename(r.job.Base)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	r.work = work

	if err := r.speakAll(ctx); err != nil {
		r.abort()
		return err
	}

	// every finisher runs even when another one failed
	var errs []error
	if p.cfg.GenerateAudio {
		if err := r.finishAudio(ctx); err != nil {
			r.logFailure(err, "audio track incomplete")
			errs = append(errs, err)
		}
	}
	if p.cfg.GenerateAnki {
		if err := r.exportAnki(); err != nil {
			r.logFailure(err, "anki deck incomplete")
			errs = append(errs, err)
		}
	}
	if p.cfg.GenerateVideo {
		if err := r.finishVideo(ctx); err != nil {
			r.logFailure(err, "video incomplete")
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		r.keepWork()
		return err
	}

	if p.cfg.KeepTemp {
		r.keepWork()
		return nil
	}
	if err := os.RemoveAll(r.work); err != nil {
		p.log.Warn().Err(err).Str("dir", r.work).Msg("failed to remove work directory")
	}
	return nil
}

// logFailure logs err with the failing command line when a media tool
// caused it
func (r *fileRun) logFailure(err error, msg string) {
	event := r.p.log.Error().Err(err).Str("file", r.job.Path)
	var renderErr *media.RenderError
	if errors.As(err, &renderErr) {
		event = event.Str("command", renderErr.Command())
	}
	event.Msg(msg)
}

// echo prints every projected pair
func (r *fileRun) echo() {
	for _, projection := range r.job.Projections {
		fmt.Fprintf(r.p.out, "  [%s]\n", projection.Name)
		for _, pair := range projection.Pairs {
			fmt.Fprintf(r.p.out, "    %s -> %s\n", pair.Source, pair.Target)
		}
	}
}

// speakAll synthesizes, assembles and renders every pair in order
func (r *fileRun) speakAll(ctx context.Context) error {
	p := r.p

	if p.cfg.GenerateAudio {
		wav, err := audio.CreateTrack(p.layout.WAV(r.job.Base), p.cfg.Format)
		if err != nil {
			return err
		}
		r.wav = wav
	}

	total := len(r.job.Entries)
	for i, entry := range r.job.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(p.out, "  %d/%d: %s -> %s\n", i+1, total, entry.Pair.Source, entry.Pair.Target)

		track, err := r.speak(ctx, i, entry)
		if err != nil {
			return fmt.Errorf("%s pair %d (%q): %w", r.job.Base, i+1, entry.Pair.Source, err)
		}

		trackPath := filepath.Join(r.work, fmt.Sprintf("pair_%04d.wav", i))
		if err := audio.WriteWAVFile(trackPath, track.Clip); err != nil {
			return err
		}
		r.pairs = append(r.pairs, pairOutput{entry: entry, track: trackPath, duration: track.Duration})
		r.result.Duration += track.Duration

		if r.wav != nil {
			if err := r.wav.Append(track.Clip); err != nil {
				return err
			}
		}

		if p.cfg.GenerateVideo {
			if err := r.render(ctx, i, entry, trackPath, track.Duration); err != nil {
				return fmt.Errorf("%s pair %d (%q): %w", r.job.Base, i+1, entry.Pair.Source, err)
			}
		}
	}
	return nil
}

func (r *fileRun) speak(ctx context.Context, index int, entry wordlist.Entry) (*audio.Track, error) {
	p := r.p

	source, err := p.deps.Synth.Synthesize(ctx, entry.Pair.Source, p.cfg.SourceVoice)
	if err != nil {
		return nil, err
	}
	target, err := p.deps.Synth.Synthesize(ctx, entry.Pair.Target, p.cfg.TargetVoice)
	if err != nil {
		return nil, err
	}

	track, err := p.assembler.Assemble(index == 0, source, target)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Int("pair", index+1).
		Dur("source", source.Duration()).
		Dur("target", target.Duration()).
		Dur("track", track.Duration).
		Msg("assembled pair")
	return track, nil
}

// render draws one segment per caption, all sharing the pair's track
func (r *fileRun) render(ctx context.Context, index int, entry wordlist.Entry, trackPath string, duration time.Duration) error {
	for j, caption := range entry.Captions {
		name := fmt.Sprintf("segment_%04d.mp4", index)
		if len(entry.Captions) > 1 {
			name = fmt.Sprintf("segment_%04d_%d.mp4", index, j+1)
		}
		path := filepath.Join(r.work, name)

		err := r.p.deps.Renderer.RenderSegment(ctx, media.SegmentSpec{
			Caption:    caption,
			AudioPath:  trackPath,
			Duration:   duration,
			OutputPath: path,
		})
		if err != nil {
			return err
		}
		r.segments = append(r.segments, media.Segment{Path: path, Index: len(r.segments), Duration: duration})
	}
	r.result.Segments = len(r.segments)
	return nil
}

func (r *fileRun) finishAudio(ctx context.Context) error {
	p := r.p

	if err := r.wav.Close(); err != nil {
		return err
	}
	r.result.WAV = r.wav.Path()
	r.wav = nil

	aac := p.layout.AAC(r.job.Base)
	if err := p.deps.Encoder.EncodeAAC(ctx, r.result.WAV, aac); err != nil {
		return fmt.Errorf("failed to encode audio track: %w", err)
	}
	r.result.AAC = aac
	p.log.Info().Str("file", aac).Msg("audio track written")
	return nil
}

func (r *fileRun) exportAnki() error {
	p := r.p

	deck := p.cfg.DeckName
	if deck == "" {
		deck = r.job.Base
	}

	gen := anki.NewGenerator(&anki.GeneratorOptions{
		OutputPath:     p.layout.Anki(r.job.Base, true),
		IncludeHeaders: true,
	})
	for _, pair := range r.pairs {
		gen.AddCard(cardFor(r.job.Mode, pair, r.job.Base))
	}

	path := p.layout.Anki(r.job.Base, p.cfg.AnkiCSV)
	var err error
	if p.cfg.AnkiCSV {
		err = gen.GenerateCSV()
	} else {
		err = gen.GenerateAPKG(path, deck)
	}
	if err != nil {
		return fmt.Errorf("failed to export Anki deck: %w", err)
	}
	r.result.Anki = path
	p.log.Info().Str("file", path).Int("cards", len(r.pairs)).Msg("anki deck written")
	return nil
}

// cardFor shows the written form on the card; in the triple layout the
// spoken pair is reading/gloss and the first caption is the grapheme
func cardFor(mode wordlist.Mode, pair pairOutput, base string) anki.Card {
	card := anki.Card{
		Source:    pair.entry.Pair.Source,
		Target:    pair.entry.Pair.Target,
		AudioFile: pair.track,
		MediaName: internal.SanitizeFilename(base) + "_" + filepath.Base(pair.track),
	}
	if mode == wordlist.ModeTriple && len(pair.entry.Captions) > 1 {
		card.Source = pair.entry.Captions[0]
		card.Reading = pair.entry.Captions[1]
	}
	return card
}

func (r *fileRun) finishVideo(ctx context.Context) error {
	p := r.p

	paths := make([]string, len(r.segments))
	var expected time.Duration
	for i, seg := range r.segments {
		paths[i] = seg.Path
		expected += seg.Duration
	}

	output, err := p.deps.Concat.Concatenate(ctx, paths, p.layout.Video(r.job.Base))
	if err != nil {
		return err
	}
	r.result.Video = output

	if p.deps.Verifier != nil {
		got, ok, err := p.deps.Verifier.VerifyDuration(ctx, output, expected, durationTolerance)
		switch {
		case err != nil:
			p.log.Warn().Err(err).Str("file", output).Msg("could not probe video duration")
		case !ok:
			p.log.Warn().Str("file", output).Dur("got", got).Dur("want", expected).Msg("video duration differs from segment total")
		}
	}

	p.log.Info().Str("file", output).Int("segments", len(r.segments)).Msg("video written")
	return nil
}

// abort closes and removes a partial audio track and keeps the work
// directory for inspection
func (r *fileRun) abort() {
	if r.wav != nil {
		path := r.wav.Path()
		r.wav.Close()
		os.Remove(path)
		r.wav = nil
	}
	r.keepWork()
}

func (r *fileRun) keepWork() {
	if r.work == "" {
		return
	}
	r.result.WorkDir = r.work
	r.p.log.Debug().Str("dir", r.work).Msg("keeping work directory")
}
