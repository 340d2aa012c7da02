package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseVolume(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{
			"typical pactl output",
			"Volume: front-left: 39321 /  60% / -13.31 dB,   front-right: 39321 /  60% / -13.31 dB",
			0.60, true,
		},
		{"full", "Volume: mono: 65536 / 100% / 0.00 dB", 1.0, true},
		{"muted", "Volume: mono: 0 / 0% / -inf dB", 0.0, true},
		{"over-amplified clamps", "Volume: mono: 98304 / 150% / 9.96 dB", 1.0, true},
		{"no percentage", "Volume: mono: 65536 / 0.00 dB", 0, false},
		{"empty", "", 0, false},
		{"garbage percent", "Volume: abc% more", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVolume(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("volume = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuerier_CurrentDevice(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "pactl")
	script := `#!/bin/sh
case "$1" in
get-default-sink) echo "alsa_output.pci-0000_00_1f.3.analog-stereo" ;;
get-sink-volume) echo "Volume: front-left: 49152 /  75% / -7.50 dB" ;;
esac
`
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	q := NewQuerier(bin, nil)
	device := q.CurrentDevice()
	if device == nil {
		t.Fatalf("expected a device")
	}
	if device.Name != "alsa_output.pci-0000_00_1f.3.analog-stereo" {
		t.Fatalf("name = %q", device.Name)
	}
	if device.Volume != 0.75 {
		t.Fatalf("volume = %v, want 0.75", device.Volume)
	}
}

func TestQuerier_NoSinkResolvesToNil(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "pactl")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	q := NewQuerier(bin, nil)
	if device := q.CurrentDevice(); device != nil {
		t.Fatalf("expected nil device on query failure, got %+v", device)
	}
}

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Event 'change' on sink #52", true},
		{"Event 'new' on sink #3", true},
		{"Event 'remove' on sink #3", true},
		{"Event 'change' on server #0", true},
		{"Event 'change' on client #118", false},
		{"Event 'change' on sink-input #201", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := relevantEvent(tt.line); got != tt.want {
			t.Fatalf("relevantEvent(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
