//go:build unix

package debug

import (
	"runtime"
	"runtime/metrics"
	"testing"
)

func TestMaxRSSBytes(t *testing.T) {
	want := int64(2048)
	if runtime.GOOS == "darwin" {
		want = 2
	}
	if got := maxRSSBytes(2); got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestSampleUintUnsupported(t *testing.T) {
	samples := []metrics.Sample{{Name: "/does/not:exist"}}
	metrics.Read(samples)
	if sampleUint(samples[0]) != 0 {
		t.Fatalf("unsupported metric must read 0")
	}
}
