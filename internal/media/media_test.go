package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeRunner struct {
	commands []Command
	results  map[string]*Result // keyed by binary
	err      error
	onRun    func(cmd Command)
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	f.commands = append(f.commands, cmd)
	if f.onRun != nil {
		f.onRun(cmd)
	}
	result := f.results[cmd.Binary]
	if result == nil {
		result = &Result{}
	}
	return result, f.err
}

func newTestToolchain(runner *fakeRunner) *Toolchain {
	return &Toolchain{FFmpeg: "ffmpeg", FFprobe: "ffprobe", Runner: runner, Log: zerolog.Nop()}
}

func indexOf(args []string, want string) int {
	for i, arg := range args {
		if arg == want {
			return i
		}
	}
	return -1
}

func TestNewToolchainDefaults(t *testing.T) {
	tools := NewToolchain(" ", "", zerolog.Nop())
	if tools.FFmpeg != "ffmpeg" || tools.FFprobe != "ffprobe" {
		t.Errorf("NewToolchain() = %q/%q, want ffmpeg/ffprobe", tools.FFmpeg, tools.FFprobe)
	}
	if _, ok := tools.Runner.(ExecRunner); !ok {
		t.Errorf("NewToolchain() runner = %T, want ExecRunner", tools.Runner)
	}
}

func TestCaptionStyleValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*CaptionStyle)
		wantErr bool
	}{
		{"default", func(s *CaptionStyle) {}, false},
		{"zero font size", func(s *CaptionStyle) { s.FontSize = 0 }, true},
		{"odd width", func(s *CaptionStyle) { s.Width = 1279 }, true},
		{"zero height", func(s *CaptionStyle) { s.Height = 0 }, true},
		{"zero fps", func(s *CaptionStyle) { s.FPS = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultCaptionStyle()
			tt.modify(&style)
			err := style.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderSegment(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "pair_0000.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	style := DefaultCaptionStyle()
	style.Font = "NoSuchFontFamily"
	composer, err := NewComposer(newTestToolchain(runner), style)
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	output := filepath.Join(dir, "segment_0000.mp4")
	err = composer.RenderSegment(context.Background(), SegmentSpec{
		Caption:    "日本: 'quote'",
		AudioPath:  audioPath,
		Duration:   4250 * time.Millisecond,
		OutputPath: output,
	})
	if err != nil {
		t.Fatalf("RenderSegment() error = %v", err)
	}

	caption, err := os.ReadFile(filepath.Join(dir, "segment_0000.txt"))
	if err != nil {
		t.Fatalf("caption file not written: %v", err)
	}
	if string(caption) != "日本: 'quote'" {
		t.Errorf("caption file = %q, want %q", caption, "日本: 'quote'")
	}

	if len(runner.commands) != 1 {
		t.Fatalf("ran %d commands, want 1", len(runner.commands))
	}
	args := runner.commands[0].Args
	if args[len(args)-1] != output {
		t.Errorf("last arg = %q, want %q", args[len(args)-1], output)
	}

	i := indexOf(args, "-t")
	if i < 0 || args[i+1] != "4.250" {
		t.Errorf("-t argument missing or wrong in %v", args)
	}

	i = indexOf(args, "lavfi")
	if i < 0 || !strings.HasPrefix(args[i+2], "color=c=black:s=1280x720:r=25:d=4.250") {
		t.Errorf("background input wrong in %v", args)
	}

	i = indexOf(args, "-vf")
	if i < 0 {
		t.Fatalf("no -vf in %v", args)
	}
	filter := args[i+1]
	for _, want := range []string{"font=NoSuchFontFamily", "textfile=", "expansion=none", "fontcolor=white", "fontsize=50"} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter %q does not contain %q", filter, want)
		}
	}
}

func TestRenderSegmentErrors(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{
		results: map[string]*Result{"ffmpeg": {ExitCode: 1, Stderr: []byte("first\nUnknown encoder 'libx264'")}},
		err:     errors.New("exit status 1"),
	}
	composer, err := NewComposer(newTestToolchain(runner), DefaultCaptionStyle())
	if err != nil {
		t.Fatal(err)
	}

	err = composer.RenderSegment(context.Background(), SegmentSpec{Caption: "x", AudioPath: audioPath, Duration: 0, OutputPath: filepath.Join(dir, "s.mp4")})
	if err == nil {
		t.Error("RenderSegment() with zero duration should fail")
	}

	err = composer.RenderSegment(context.Background(), SegmentSpec{Caption: "x", AudioPath: filepath.Join(dir, "missing.wav"), Duration: time.Second, OutputPath: filepath.Join(dir, "s.mp4")})
	if err == nil {
		t.Error("RenderSegment() with missing audio should fail")
	}

	err = composer.RenderSegment(context.Background(), SegmentSpec{Caption: "x", AudioPath: audioPath, Duration: time.Second, OutputPath: filepath.Join(dir, "s.mp4")})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("RenderSegment() error = %v, want *RenderError", err)
	}
	if renderErr.ExitCode != 1 || renderErr.Tool != "ffmpeg" {
		t.Errorf("RenderError = %+v, want ffmpeg exit 1", renderErr)
	}
	if !strings.HasSuffix(renderErr.Error(), "Unknown encoder 'libx264'") {
		t.Errorf("Error() = %q, want last stderr line", renderErr.Error())
	}
	if !strings.HasPrefix(renderErr.Command(), "ffmpeg -hide_banner") {
		t.Errorf("Command() = %q, want the ffmpeg command line", renderErr.Command())
	}
}

func TestResolveFontExistingFile(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "font.ttc")
	if err := os.WriteFile(font, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got := resolveFont(font)
	if got != "fontfile="+escapeFilterValue(font) {
		t.Errorf("resolveFont(%q) = %q", font, got)
	}
	if resolveFont("") != "font=Sans" {
		t.Errorf("resolveFont(\"\") = %q, want font=Sans", resolveFont(""))
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/a.txt", "/tmp/a.txt"},
		{"C:/x", `C\\\:/x`},
		{"a,b;c", `a\,b\;c`},
		{"it's", `it\\\'s`},
		{`back\slash`, `back\\\\slash`},
		{"[x]", `\[x\]`},
		{"/tmp/50%/a.txt", "/tmp/50%/a.txt"},
	}

	for _, tt := range tests {
		if got := escapeFilterValue(tt.in); got != tt.want {
			t.Errorf("escapeFilterValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	segments := []string{
		filepath.Join(dir, "segment_0000.mp4"),
		filepath.Join(dir, "segment_0001.mp4"),
		filepath.Join(dir, "it's.mp4"),
	}
	manifest := filepath.Join(dir, ManifestName)

	if err := WriteManifest(manifest, segments); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("manifest has %d lines, want 3", len(lines))
	}
	if lines[0] != "file '"+segments[0]+"'" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "file '"+segments[1]+"'" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], `it'\''s.mp4'`) {
		t.Errorf("line 2 = %q, want escaped quote", lines[2])
	}
}

func TestConcatenate(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "temp", "words-1")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}
	segments := []string{filepath.Join(work, "segment_0000.mp4"), filepath.Join(work, "segment_0001.mp4")}

	output := filepath.Join(dir, "video", "words.mp4")
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(output, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	runner.onRun = func(cmd Command) {
		if _, err := os.Stat(output); !os.IsNotExist(err) {
			t.Error("existing output was not removed before concatenation")
		}
	}

	got, err := NewConcatenator(newTestToolchain(runner)).Concatenate(context.Background(), segments, output)
	if err != nil {
		t.Fatalf("Concatenate() error = %v", err)
	}
	if got != output {
		t.Errorf("Concatenate() = %q, want %q", got, output)
	}

	args := runner.commands[0].Args
	manifest := filepath.Join(work, ManifestName)
	want := []string{"-f", "concat", "-safe", "0", "-i", manifest, "-c", "copy", output}
	tail := args[len(args)-len(want):]
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("args tail = %v, want %v", tail, want)
			break
		}
	}

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if strings.Index(string(data), "segment_0000") > strings.Index(string(data), "segment_0001") {
		t.Error("manifest order does not match segment order")
	}
}

func TestConcatenateFailure(t *testing.T) {
	dir := t.TempDir()
	segments := []string{filepath.Join(dir, "segment_0000.mp4")}
	runner := &fakeRunner{
		results: map[string]*Result{"ffmpeg": {ExitCode: 1, Stderr: []byte("Invalid data")}},
		err:     errors.New("exit status 1"),
	}

	_, err := NewConcatenator(newTestToolchain(runner)).Concatenate(context.Background(), segments, filepath.Join(dir, "out.mp4"))
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Concatenate() error = %v, want *RenderError", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestName)); err != nil {
		t.Error("manifest should be left on disk after failure")
	}

	if _, err := NewConcatenator(newTestToolchain(runner)).Concatenate(context.Background(), nil, "out.mp4"); err == nil {
		t.Error("Concatenate() with no segments should fail")
	}
}

func TestProbe(t *testing.T) {
	runner := &fakeRunner{results: map[string]*Result{"ffprobe": {Stdout: []byte(`{
		"streams": [{"index": 0, "codec_type": "video", "codec_name": "h264"}, {"index": 1, "codec_type": "audio", "codec_name": "aac"}],
		"format": {"filename": "x.mp4", "nb_streams": 2, "duration": "12.500000"}
	}`)}}}
	tools := newTestToolchain(runner)

	probe, err := tools.Probe(context.Background(), "x.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if probe.Duration() != 12500*time.Millisecond {
		t.Errorf("Duration() = %v, want 12.5s", probe.Duration())
	}
	if probe.StreamCount("audio") != 1 || probe.StreamCount("video") != 1 {
		t.Errorf("StreamCount() = %d audio, %d video", probe.StreamCount("audio"), probe.StreamCount("video"))
	}

	got, ok, err := tools.VerifyDuration(context.Background(), "x.mp4", 12400*time.Millisecond, 200*time.Millisecond)
	if err != nil || !ok || got != 12500*time.Millisecond {
		t.Errorf("VerifyDuration() = %v, %v, %v", got, ok, err)
	}
	_, ok, _ = tools.VerifyDuration(context.Background(), "x.mp4", 10*time.Second, 200*time.Millisecond)
	if ok {
		t.Error("VerifyDuration() should report a mismatch")
	}

	if _, err := tools.Probe(context.Background(), " "); err == nil {
		t.Error("Probe() with empty path should fail")
	}
}

func TestProbeDurationMissing(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"N/A", 0},
		{"-1", 0},
		{"1.5", 1500 * time.Millisecond},
	}
	for _, tt := range tests {
		r := ProbeResult{Format: ProbeFormat{Duration: tt.in}}
		if got := r.Duration(); got != tt.want {
			t.Errorf("Duration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEncodeAAC(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "words.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{}
	out := filepath.Join(dir, "audio", "words.m4a")

	if err := newTestToolchain(runner).EncodeAAC(context.Background(), wav, out); err != nil {
		t.Fatalf("EncodeAAC() error = %v", err)
	}
	args := runner.commands[0].Args
	if args[len(args)-1] != out || indexOf(args, wav) < 0 || indexOf(args, "aac") < 0 {
		t.Errorf("EncodeAAC() args = %v", args)
	}
	if _, err := os.Stat(filepath.Dir(out)); err != nil {
		t.Error("output directory not created")
	}

	if err := newTestToolchain(runner).EncodeAAC(context.Background(), filepath.Join(dir, "none.wav"), out); err == nil {
		t.Error("EncodeAAC() with missing input should fail")
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := (ExecRunner{}).Run(context.Background(), Command{}); err == nil {
		t.Error("Run() without binary should fail")
	}

	result, err := (ExecRunner{}).Run(context.Background(), Command{Binary: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}})
	if err == nil {
		t.Fatal("Run() should report the non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if strings.TrimSpace(string(result.Stdout)) != "out" || strings.TrimSpace(string(result.Stderr)) != "err" {
		t.Errorf("Stdout/Stderr = %q/%q", result.Stdout, result.Stderr)
	}
}
