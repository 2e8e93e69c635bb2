package keyframe

import (
	"math"
	"testing"
)

func lerpFloat(a, b float64, pos float64) float64 {
	return a + (b-a)*pos
}

func newFloatTrack() *Track[float64] {
	return NewTrack[float64](30, lerpFloat)
}

func TestSetKeepsOrder(t *testing.T) {
	tr := newFloatTrack()
	for _, f := range []int{20, 5, 40, 10} {
		if !tr.Set(f, float64(f)) {
			t.Fatalf("Set(%d) failed", f)
		}
	}

	keys := tr.Keyframes()
	want := []int{5, 10, 20, 40}
	if len(keys) != len(want) {
		t.Fatalf("len = %d, want %d", len(keys), len(want))
	}
	for i, k := range keys {
		if k.Frame != want[i] {
			t.Errorf("keys[%d].Frame = %d, want %d", i, k.Frame, want[i])
		}
	}
}

func TestSetOverwritesDuplicateFrame(t *testing.T) {
	tr := newFloatTrack()
	tr.Set(10, 1.0)
	tr.Set(10, 2.0)

	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
	if v, _ := tr.At(10); v != 2.0 {
		t.Errorf("At(10) = %v, want 2.0", v)
	}
}

func TestSetRejectsNegativeFrame(t *testing.T) {
	tr := newFloatTrack()
	if tr.Set(-1, 1.0) {
		t.Error("negative frame should be rejected")
	}
}

func TestRemove(t *testing.T) {
	tr := newFloatTrack()
	tr.Set(10, 1.0)
	tr.Set(20, 2.0)

	if !tr.Remove(10) {
		t.Fatal("Remove(10) failed")
	}
	if tr.Remove(10) {
		t.Error("second Remove(10) should report false")
	}
	if tr.Has(10) || !tr.Has(20) {
		t.Error("wrong keyframe removed")
	}
}

func TestRemoveRange(t *testing.T) {
	tr := newFloatTrack()
	for f := 0; f <= 50; f += 10 {
		tr.Set(f, float64(f))
	}

	if got := tr.RemoveRange(10, 30); got != 3 {
		t.Errorf("RemoveRange(10, 30) = %d, want 3", got)
	}
	if tr.Len() != 3 {
		t.Errorf("Len = %d, want 3", tr.Len())
	}
	if tr.Has(20) || !tr.Has(0) || !tr.Has(40) {
		t.Error("wrong keyframes survived the range deletion")
	}
	if got := tr.RemoveRange(30, 10); got != 0 {
		t.Errorf("inverted range should remove nothing, got %d", got)
	}
}

func TestValueAtInterpolation(t *testing.T) {
	tr := newFloatTrack()
	tr.Set(10, 100.0)
	tr.Set(20, 200.0)

	tests := []struct {
		name    string
		seconds float64
		want    float64
	}{
		{"midpoint", 0.5, 150.0},          // frame 15
		{"exact first", 10.0 / 30.0, 100}, // frame 10
		{"exact last", 20.0 / 30.0, 200},  // frame 20
		{"held before first", 5.0 / 30.0, 100},
		{"held after last", 25.0 / 30.0, 200},
		{"quarter", 12.5 / 30.0, 130}, // rounds to frame 13 -> 30% along
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.ValueAt(tt.seconds)
			if !ok {
				t.Fatal("ValueAt reported a miss")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ValueAt(%v) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestValueAtEmptyTrack(t *testing.T) {
	tr := newFloatTrack()
	if _, ok := tr.ValueAt(1.0); ok {
		t.Error("empty track must report a miss")
	}
}

func TestCopyPaste(t *testing.T) {
	tr := newFloatTrack()
	tr.Set(10, 42.0)

	if tr.Paste(30) {
		t.Error("paste with empty clipboard should fail")
	}
	if tr.Copy(99) {
		t.Error("copy of a missing keyframe should fail")
	}
	if !tr.Copy(10) {
		t.Fatal("Copy(10) failed")
	}
	if !tr.Paste(30) {
		t.Fatal("Paste(30) failed")
	}
	if v, _ := tr.At(30); v != 42.0 {
		t.Errorf("pasted value = %v, want 42.0", v)
	}

	// Paste is independent of the source frame and overwrites.
	tr.Set(50, 7.0)
	tr.Paste(50)
	if v, _ := tr.At(50); v != 42.0 {
		t.Errorf("paste should overwrite, got %v", v)
	}
}

func TestFirstLastFrame(t *testing.T) {
	tr := newFloatTrack()
	if _, ok := tr.FirstFrame(); ok {
		t.Error("empty track has no first frame")
	}
	tr.Set(30, 1)
	tr.Set(10, 1)
	if f, _ := tr.FirstFrame(); f != 10 {
		t.Errorf("FirstFrame = %d, want 10", f)
	}
	if f, _ := tr.LastFrame(); f != 30 {
		t.Errorf("LastFrame = %d, want 30", f)
	}
}

func TestReset(t *testing.T) {
	tr := newFloatTrack()
	tr.Set(10, 1)
	tr.Copy(10)
	tr.Reset()
	if tr.Len() != 0 {
		t.Error("Reset should drop keyframes")
	}
	if tr.Paste(5) {
		t.Error("Reset should drop the clipboard")
	}
}
