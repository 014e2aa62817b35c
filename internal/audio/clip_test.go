package audio

import (
	"reflect"
	"testing"
	"time"
)

func TestSilence(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		duration   time.Duration
		wantFrames int
		wantValue  int
	}{
		{"mono 16 bit", Canonical, 1500 * time.Millisecond, 36000, 0},
		{"stereo 44.1k", Format{44100, 2, 2}, time.Second, 44100, 0},
		{"8 bit is unsigned", Format{8000, 1, 1}, 500 * time.Millisecond, 4000, 128},
		{"zero length", Canonical, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := Silence(tt.format, tt.duration)
			if got := clip.Frames(); got != tt.wantFrames {
				t.Errorf("Frames() = %d, want %d", got, tt.wantFrames)
			}
			if got := clip.Duration(); got != tt.duration {
				t.Errorf("Duration() = %v, want %v", got, tt.duration)
			}
			for i, s := range clip.Samples {
				if s != tt.wantValue {
					t.Fatalf("Samples[%d] = %d, want %d", i, s, tt.wantValue)
				}
			}
		})
	}
}

func TestConcat(t *testing.T) {
	a := &Clip{Format: Canonical, Samples: []int{1, 2}}
	b := &Clip{Format: Canonical, Samples: []int{3}}

	got, err := Concat(a, b, a)
	if err != nil {
		t.Fatalf("Concat() unexpected error: %v", err)
	}
	if want := []int{1, 2, 3, 1, 2}; !reflect.DeepEqual(got.Samples, want) {
		t.Errorf("Concat() samples = %v, want %v", got.Samples, want)
	}

	if _, err := Concat(a, &Clip{Format: Format{16000, 1, 2}}); err == nil {
		t.Error("Concat() with mismatched formats should fail")
	}
	if _, err := Concat(); err == nil {
		t.Error("Concat() with no clips should fail")
	}
}

func TestTrimTrailingSilence(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		in     []int
		want   []int
	}{
		{"mono trailing zeros", Canonical, []int{5, -3, 0, 0, 0}, []int{5, -3}},
		{"inner zeros kept", Canonical, []int{0, 4, 0, 7}, []int{0, 4, 0, 7}},
		{"all silent", Canonical, []int{0, 0, 0}, []int{}},
		{"stereo keeps frame with one loud channel", Format{24000, 2, 2}, []int{1, 1, 0, 9, 0, 0}, []int{1, 1, 0, 9}},
		{"8 bit silence is 128", Format{8000, 1, 1}, []int{200, 128, 128}, []int{200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimTrailingSilence(&Clip{Format: tt.format, Samples: tt.in})
			if !reflect.DeepEqual(got.Samples, tt.want) {
				t.Errorf("TrimTrailingSilence() = %v, want %v", got.Samples, tt.want)
			}
		})
	}
}

func TestPCMRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		samples []int
	}{
		{"8 bit", Format{8000, 1, 1}, []int{0, 128, 255}},
		{"16 bit", Canonical, []int{-32768, -1, 0, 1, 32767}},
		{"24 bit", Format{48000, 1, 3}, []int{-8388608, -2, 0, 8388607}},
		{"32 bit stereo", Format{48000, 2, 4}, []int{-2147483648, 2147483647}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := &Clip{Format: tt.format, Samples: tt.samples}
			got, err := FromPCM(clip.PCM(), tt.format)
			if err != nil {
				t.Fatalf("FromPCM() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Samples, tt.samples) {
				t.Errorf("FromPCM(PCM()) = %v, want %v", got.Samples, tt.samples)
			}
		})
	}
}

func TestFromPCMRejectsPartialFrames(t *testing.T) {
	if _, err := FromPCM([]byte{1, 2, 3}, Canonical); err == nil {
		t.Error("FromPCM() with a partial sample should fail")
	}
	if _, err := FromPCM([]byte{1, 2}, Format{24000, 0, 2}); err == nil {
		t.Error("FromPCM() with zero channels should fail")
	}
}
