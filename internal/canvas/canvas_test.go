package canvas

import (
	"image"
	"math"
	"testing"
)

func TestCommitDraft(t *testing.T) {
	tests := []struct {
		name   string
		from   image.Point
		to     image.Point
		commit bool
		want   image.Rectangle
	}{
		{"large drag", image.Pt(10, 10), image.Pt(100, 80), true, image.Rect(10, 10, 100, 80)},
		{"exactly minimum", image.Pt(0, 0), image.Pt(20, 20), false, image.Rectangle{}},
		{"one over minimum", image.Pt(0, 0), image.Pt(21, 21), true, image.Rect(0, 0, 21, 21)},
		{"too narrow", image.Pt(0, 0), image.Pt(10, 100), false, image.Rectangle{}},
		{"too short", image.Pt(0, 0), image.Pt(100, 10), false, image.Rectangle{}},
		{"reversed drag normalizes", image.Pt(100, 80), image.Pt(10, 10), true, image.Rect(10, 10, 100, 80)},
		{"click", image.Pt(50, 50), image.Pt(50, 50), false, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(800, 600)
			v.SetImage(1000, 1000)
			if !v.BeginDraft(tt.from) {
				t.Fatal("BeginDraft refused from idle")
			}
			v.UpdateDraft(tt.to)
			region, ok := v.CommitDraft()
			if ok != tt.commit {
				t.Fatalf("commit = %v, want %v", ok, tt.commit)
			}
			if ok && region.Rect != tt.want {
				t.Errorf("region = %v, want %v", region.Rect, tt.want)
			}
			if v.State() != StateIdle {
				t.Errorf("state after commit = %v, want idle", v.State())
			}
		})
	}
}

func TestBeginDraftOnlyFromIdle(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(1000, 1000)
	if !v.BeginDraft(image.Pt(0, 0)) {
		t.Fatal("first BeginDraft refused")
	}
	if v.BeginDraft(image.Pt(50, 50)) {
		t.Fatal("BeginDraft accepted while drawing")
	}
	v.UpdateDraft(image.Pt(30, 30))
	if got := v.Draft(); got != image.Rect(0, 0, 30, 30) {
		t.Errorf("draft = %v, anchor moved by second press", got)
	}
}

func TestCancelDraft(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(1000, 1000)
	v.BeginDraft(image.Pt(0, 0))
	v.UpdateDraft(image.Pt(300, 300))
	v.CancelDraft()
	if v.State() != StateIdle {
		t.Fatalf("state = %v after cancel, want idle", v.State())
	}
	if _, ok := v.CommitDraft(); ok {
		t.Fatal("canceled draft still committed")
	}
}

func TestCommitDraftWithoutDraft(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(1000, 1000)
	if _, ok := v.CommitDraft(); ok {
		t.Fatal("CommitDraft reported a region with no draft in progress")
	}
}

func TestZoomStepRoundTrip(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(800, 600)
	start := v.Zoom
	anchor := image.Pt(400, 300)
	for i := 0; i < 5; i++ {
		v.ZoomStep(true, anchor)
	}
	for i := 0; i < 5; i++ {
		v.ZoomStep(false, anchor)
	}
	if math.Abs(v.Zoom-start) > 0.01*start {
		t.Errorf("zoom after 5 in + 5 out = %v, want about %v", v.Zoom, start)
	}
}

func TestZoomStepKeepsAnchorFixed(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(1600, 1200)
	anchor := image.Pt(250, 130)
	before := v.ViewToImage(anchor)
	v.ZoomStep(true, anchor)
	after := v.ViewToImage(anchor)
	if dx, dy := after.X-before.X, after.Y-before.Y; dx < -2 || dx > 2 || dy < -2 || dy > 2 {
		t.Errorf("anchor image point moved from %v to %v", before, after)
	}
}

func TestFitCenters(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(400, 600)
	// Height-limited: zoom 1, image 400 wide in an 800 viewport.
	if v.Zoom != 1 {
		t.Fatalf("zoom = %v, want 1", v.Zoom)
	}
	if v.Offset != image.Pt(200, 0) {
		t.Errorf("offset = %v, want (200,0)", v.Offset)
	}
}

func TestScrollBy(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(800, 600)
	before := v.Offset
	v.ScrollBy(-30, 12)
	if got, want := v.Offset, before.Add(image.Pt(-30, 12)); got != want {
		t.Errorf("offset = %v, want %v", got, want)
	}
}

func TestRegionAtTopmost(t *testing.T) {
	regions := []Region{
		{Rect: image.Rect(0, 0, 100, 100)},
		{Rect: image.Rect(50, 50, 150, 150)},
	}
	if got := RegionAt(regions, image.Pt(60, 60)); got != 1 {
		t.Errorf("RegionAt overlap = %d, want 1", got)
	}
	if got := RegionAt(regions, image.Pt(10, 10)); got != 0 {
		t.Errorf("RegionAt lower = %d, want 0", got)
	}
	if got := RegionAt(regions, image.Pt(200, 200)); got != -1 {
		t.Errorf("RegionAt outside = %d, want -1", got)
	}
}

func TestMovePreservesSize(t *testing.T) {
	v := NewView(800, 600)
	v.SetImage(1000, 1000)
	regions := []Region{{Rect: image.Rect(100, 100, 200, 160)}}
	v.BeginMove(regions, 0, image.Pt(120, 120))
	v.UpdateMove(regions, image.Pt(150, 95))
	v.EndMove()

	got := regions[0].Rect
	if got.Dx() != 100 || got.Dy() != 60 {
		t.Fatalf("size changed during move: %v", got)
	}
	if want := image.Rect(130, 75, 230, 135); got != want {
		t.Errorf("moved rect = %v, want %v", got, want)
	}
	if v.Moving() != -1 {
		t.Errorf("Moving() = %d after EndMove, want -1", v.Moving())
	}
}
