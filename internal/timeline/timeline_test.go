package timeline

import (
	"math"
	"testing"
)

const epsilon = 1.0 / 30.0 // one frame at the default rate

func newInitialized(t *testing.T, duration float64) *Timeline {
	t.Helper()
	tl := New(30)
	if !tl.Initialize(duration) {
		t.Fatalf("Initialize(%v) failed", duration)
	}
	return tl
}

// Builds the reference scenario: 100s source, boundary at 40, first
// segment at 1.0x, second at 2.0x.
func newTwoSpeedTimeline(t *testing.T) *Timeline {
	t.Helper()
	tl := newInitialized(t, 100)
	if !tl.AddBoundary(40) {
		t.Fatal("AddBoundary(40) failed")
	}
	if !tl.SetSegmentSpeed(1, 2.0) {
		t.Fatal("SetSegmentSpeed(1, 2.0) failed")
	}
	return tl
}

func TestInitialize(t *testing.T) {
	tl := New(30)
	if tl.Initialized() {
		t.Error("fresh timeline should not be initialized")
	}
	if !tl.Initialize(60) {
		t.Fatal("Initialize(60) failed")
	}
	segs := tl.Segments()
	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	if segs[0].Start != 0 || segs[0].End != 60 || segs[0].Speed != 1 || segs[0].UserTrimmed {
		t.Errorf("seed segment = %+v", segs[0])
	}
}

func TestInitializeRejectsBadDuration(t *testing.T) {
	for _, d := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		tl := New(30)
		if tl.Initialize(d) {
			t.Errorf("Initialize(%v) should fail", d)
		}
	}
}

func TestUninitializedOperationsAreNoOps(t *testing.T) {
	tl := New(30)
	if tl.AddBoundary(10) || tl.RemoveBoundary(10) || tl.SetSegmentSpeed(0, 2) ||
		tl.ToggleTrimSegment(0) || tl.SetTrimRange(0, 10) || tl.DetrimStart() || tl.DetrimEnd() {
		t.Error("mutations on an uninitialized timeline must be rejected")
	}
	if tl.SourceToVisual(5) != 0 || tl.VisualToSource(5) != 0 || tl.VisualDuration() != 0 {
		t.Error("queries on an uninitialized timeline must return zero")
	}
	if tl.IsTimeVisible(5) {
		t.Error("nothing is visible before initialization")
	}
}

func TestAddBoundarySplitsSegment(t *testing.T) {
	tl := newInitialized(t, 100)
	tl.SetSegmentSpeed(0, 1.5)
	tl.ToggleTrimSegment(0)

	if !tl.AddBoundary(40) {
		t.Fatal("AddBoundary(40) failed")
	}
	segs := tl.Segments()
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	for i, s := range segs {
		if s.Speed != 1.5 || !s.UserTrimmed {
			t.Errorf("segment %d did not inherit speed/trim: %+v", i, s)
		}
	}
	if segs[0].End != 40 || segs[1].Start != 40 {
		t.Errorf("split point wrong: %+v", segs)
	}
}

func TestAddBoundaryRejectsCoincident(t *testing.T) {
	tl := newInitialized(t, 100)
	tl.AddBoundary(40)

	if tl.AddBoundary(40) {
		t.Error("duplicate boundary should be rejected")
	}
	if tl.AddBoundary(40 + epsilon/2) {
		t.Error("boundary within one frame of an existing cut should be rejected")
	}
	if tl.AddBoundary(0) || tl.AddBoundary(100) {
		t.Error("boundaries at the source endpoints should be rejected")
	}
	if len(tl.Segments()) != 2 {
		t.Errorf("segments = %d, want 2", len(tl.Segments()))
	}
}

func TestSplitMergeInverse(t *testing.T) {
	tl := newInitialized(t, 100)
	tl.SetSegmentSpeed(0, 1.7)

	if !tl.AddBoundary(33) {
		t.Fatal("AddBoundary failed")
	}
	tl.SetSegmentSpeed(1, 3.0)
	if !tl.RemoveBoundary(33) {
		t.Fatal("RemoveBoundary failed")
	}

	segs := tl.Segments()
	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	// Left segment's speed wins the merge.
	if segs[0].Speed != 1.7 {
		t.Errorf("merged speed = %v, want 1.7 (left wins)", segs[0].Speed)
	}
	if segs[0].Start != 0 || segs[0].End != 100 {
		t.Errorf("merged span = [%v, %v], want [0, 100]", segs[0].Start, segs[0].End)
	}
}

func TestRemoveBoundaryPicksNearest(t *testing.T) {
	tl := newInitialized(t, 100)
	tl.AddBoundary(20)
	tl.AddBoundary(80)

	if !tl.RemoveBoundary(70) {
		t.Fatal("RemoveBoundary failed")
	}
	segs := tl.Segments()
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if segs[0].End != 20 {
		t.Errorf("boundary at 20 should survive, got end %v", segs[0].End)
	}
}

func TestSetSegmentSpeedValidation(t *testing.T) {
	tl := newInitialized(t, 100)
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if tl.SetSegmentSpeed(0, bad) {
			t.Errorf("speed %v should be rejected", bad)
		}
	}
	if tl.SetSegmentSpeed(5, 2) {
		t.Error("out-of-range index should be rejected")
	}
	if tl.Segments()[0].Speed != 1 {
		t.Error("rejected updates must leave state unchanged")
	}
}

func TestTwoSpeedScenario(t *testing.T) {
	tl := newTwoSpeedTimeline(t)

	if got := tl.VisualDuration(); math.Abs(got-70) > 1e-9 {
		t.Errorf("VisualDuration() = %v, want 70", got)
	}
	if got := tl.SourceToVisual(40); math.Abs(got-40) > 1e-9 {
		t.Errorf("SourceToVisual(40) = %v, want 40", got)
	}
	if got := tl.SourceToVisual(70); math.Abs(got-55) > 1e-9 {
		t.Errorf("SourceToVisual(70) = %v, want 55", got)
	}
	if got := tl.VisualToSource(55); math.Abs(got-70) > 1e-9 {
		t.Errorf("VisualToSource(55) = %v, want 70", got)
	}
}

func TestTrimStartSnapsForward(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	if !tl.SetTrimRange(10, 100) {
		t.Fatal("SetTrimRange failed")
	}

	if got := tl.SourceToVisual(5); got != 0 {
		t.Errorf("SourceToVisual(5) = %v, want 0 (snap to first visible)", got)
	}
	want := 30 + 30.0 // (40-10)/1 + 60/2
	if got := tl.VisualDuration(); math.Abs(got-want) > 1e-9 {
		t.Errorf("VisualDuration() = %v, want %v", got, want)
	}
	if tl.IsTimeVisible(5) {
		t.Error("t=5 is inside the trimmed head")
	}
	if got := tl.ClampToVisibleRange(5); got != 10 {
		t.Errorf("ClampToVisibleRange(5) = %v, want 10", got)
	}
}

func TestRoundTripOnVisibleTimes(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	tl.SetTrimRange(10, 90)
	tl.AddBoundary(60)
	tl.ToggleTrimSegment(1) // [40, 60) is user-trimmed

	for src := 0.0; src <= 100; src += 0.5 {
		if !tl.IsTimeVisible(src) {
			continue
		}
		back := tl.VisualToSource(tl.SourceToVisual(src))
		if math.Abs(back-src) > epsilon {
			t.Fatalf("round trip %v -> %v", src, back)
		}
	}
}

func TestRoundTripAtTrimSeam(t *testing.T) {
	// Trimmed material in the middle: [40, 60) is hidden, so the
	// visual extent before t=60 exactly exhausts the first span's
	// budget. The seam must resolve to the span that starts at 60.
	tl := newTwoSpeedTimeline(t)
	if !tl.AddBoundary(60) {
		t.Fatal("AddBoundary(60) failed")
	}
	if !tl.ToggleTrimSegment(1) {
		t.Fatal("ToggleTrimSegment(1) failed")
	}

	v := tl.SourceToVisual(60)
	if got := tl.VisualToSource(v); math.Abs(got-60) > 1e-9 {
		t.Errorf("VisualToSource(SourceToVisual(60)) = %v, want 60", got)
	}

	// t=40 is owned by the hidden segment [40, 60); t=60 by the span
	// that follows it.
	if tl.IsTimeVisible(40) {
		t.Error("t=40 borders trimmed material and is not visible")
	}
	if !tl.IsTimeVisible(60) {
		t.Error("t=60 starts a visible span")
	}
	if got := tl.ClampToVisibleRange(40); got != 60 {
		t.Errorf("ClampToVisibleRange(40) = %v, want 60 (snap forward)", got)
	}

	// End of the timeline still clamps to the last visible source time.
	if got := tl.VisualToSource(tl.VisualDuration()); math.Abs(got-100) > 1e-9 {
		t.Errorf("VisualToSource(VisualDuration()) = %v, want 100", got)
	}
}

func TestSourceToVisualMonotonic(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	tl.SetTrimRange(5, 95)
	tl.ToggleTrimSegment(0)

	prev := -1.0
	for src := 0.0; src <= 100; src += 0.25 {
		v := tl.SourceToVisual(src)
		if v < prev-1e-9 {
			t.Fatalf("SourceToVisual not monotonic at %v: %v < %v", src, v, prev)
		}
		prev = v
	}
}

func TestDurationInvariant(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	edits := []func(){
		func() { tl.AddBoundary(75) },
		func() { tl.SetSegmentSpeed(2, 0.5) },
		func() { tl.SetTrimRange(10, 95) },
		func() { tl.ToggleTrimSegment(1) },
		func() { tl.ToggleTrimSegment(1) },
		func() { tl.DetrimStart() },
	}
	for i, edit := range edits {
		edit()
		if got, want := tl.SourceToVisual(tl.SourceDuration()), tl.VisualDuration(); math.Abs(got-want) > 1e-9 {
			t.Fatalf("after edit %d: SourceToVisual(end) = %v, VisualDuration = %v", i, got, want)
		}
	}
}

func TestToggleTrimExcludesSegment(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	tl.ToggleTrimSegment(0)

	if got := tl.VisualDuration(); math.Abs(got-30) > 1e-9 {
		t.Errorf("VisualDuration() = %v, want 30", got)
	}
	if got := tl.SourceToVisual(20); got != 0 {
		t.Errorf("SourceToVisual inside trimmed segment = %v, want 0", got)
	}
	// Detrim restores it.
	tl.ToggleTrimSegment(0)
	if got := tl.VisualDuration(); math.Abs(got-70) > 1e-9 {
		t.Errorf("after detrim VisualDuration() = %v, want 70", got)
	}
}

func TestDetrimDistinguishesCauses(t *testing.T) {
	tl := newTwoSpeedTimeline(t)

	// Range-trimmed head: DetrimStart restores it.
	tl.SetTrimRange(10, 100)
	if !tl.DetrimStart() {
		t.Fatal("DetrimStart should undo a range trim")
	}
	if tl.Trim().Start != 0 {
		t.Errorf("trim start = %v, want 0", tl.Trim().Start)
	}

	// User-toggled head: DetrimStart must not touch it.
	tl.ToggleTrimSegment(0)
	tl.SetTrimRange(10, 100)
	if tl.DetrimStart() {
		t.Error("DetrimStart must be a no-op when the edge segment was toggled off")
	}

	// Tail side.
	tl2 := newTwoSpeedTimeline(t)
	tl2.SetTrimRange(0, 90)
	if !tl2.DetrimEnd() {
		t.Fatal("DetrimEnd should undo a range trim")
	}
	if tl2.Trim().End != 100 {
		t.Errorf("trim end = %v, want 100", tl2.Trim().End)
	}
	if tl2.DetrimEnd() {
		t.Error("DetrimEnd with nothing trimmed should be a no-op")
	}
}

func TestTrimmedDuration(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	tl.SetTrimRange(10, 100)
	if got := tl.TrimmedDuration(); math.Abs(got-10) > 1e-9 {
		t.Errorf("TrimmedDuration() = %v, want 10", got)
	}
	tl.ToggleTrimSegment(1)
	if got := tl.TrimmedDuration(); math.Abs(got-70) > 1e-9 {
		t.Errorf("TrimmedDuration() = %v, want 70", got)
	}
}

func TestSegmentAt(t *testing.T) {
	tl := newTwoSpeedTimeline(t)

	idx, seg := tl.SegmentAt(10)
	if idx != 0 || seg == nil || seg.Speed != 1 {
		t.Errorf("SegmentAt(10) = %d, %+v", idx, seg)
	}
	idx, seg = tl.SegmentAt(40)
	if idx != 1 || seg == nil || seg.Speed != 2 {
		t.Errorf("SegmentAt(40) = %d, %+v (boundary belongs to the right segment)", idx, seg)
	}
	idx, _ = tl.SegmentAt(100)
	if idx != 1 {
		t.Errorf("SegmentAt(end) = %d, want last segment", idx)
	}
	idx, _ = tl.SegmentAt(250)
	if idx != 1 {
		t.Errorf("SegmentAt past end = %d, want clamped to last", idx)
	}
}

func TestExportRestoreIdempotence(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	tl.AddBoundary(75)
	tl.SetSegmentSpeed(2, 0.25)
	tl.ToggleTrimSegment(1)
	tl.SetTrimRange(5, 95)

	data := tl.ExportData()

	fresh := New(30)
	if !fresh.Restore(data, 100) {
		t.Fatal("Restore failed")
	}

	if got, want := fresh.VisualDuration(), tl.VisualDuration(); math.Abs(got-want) > 1e-9 {
		t.Errorf("restored VisualDuration = %v, want %v", got, want)
	}
	for src := 0.0; src <= 100; src += 1.0 {
		if got, want := fresh.SourceToVisual(src), tl.SourceToVisual(src); math.Abs(got-want) > 1e-9 {
			t.Fatalf("restored SourceToVisual(%v) = %v, want %v", src, got, want)
		}
	}
}

func TestRestoreToleratesLegacyData(t *testing.T) {
	fresh := New(30)
	ok := fresh.Restore(SegmentsData{
		Boundaries:    []float64{-3, 40, 40.001, 250, math.NaN()},
		SegmentSpeeds: map[int]float64{0: 0.5, 7: 2, 1: -1},
		TrimRange:     &TrimRange{Start: 50, End: 20},
	}, 100)
	if !ok {
		t.Fatal("Restore failed")
	}

	segs := fresh.Segments()
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2 (invalid boundaries dropped)", len(segs))
	}
	if segs[0].Speed != 0.5 {
		t.Errorf("segment 0 speed = %v, want 0.5", segs[0].Speed)
	}
	if segs[1].Speed != 1 {
		t.Errorf("segment 1 speed = %v, want default 1 (invalid speed dropped)", segs[1].Speed)
	}
	if fresh.Trim() != nil {
		t.Error("inverted trim range should be dropped")
	}
}

func TestVisualToSourceEdges(t *testing.T) {
	tl := newTwoSpeedTimeline(t)
	tl.SetTrimRange(10, 90)

	if got := tl.VisualToSource(0); got != 10 {
		t.Errorf("VisualToSource(0) = %v, want 10 (first visible source)", got)
	}
	end := tl.VisualToSource(tl.VisualDuration())
	if math.Abs(end-90) > 1e-9 {
		t.Errorf("VisualToSource(visualDuration) = %v, want 90", end)
	}
	if got := tl.VisualToSource(1e9); math.Abs(got-90) > 1e-9 {
		t.Errorf("VisualToSource past end = %v, want 90", got)
	}
}
