package ui

import (
	"testing"
	"time"
)

func TestOfferPaintReplacesPending(t *testing.T) {
	ch := make(chan paintState, 1)
	offerPaint(ch, paintState{width: 1})
	offerPaint(ch, paintState{width: 2})
	select {
	case st := <-ch:
		if st.width != 2 {
			t.Fatalf("delivered width = %d, want the newest snapshot", st.width)
		}
	default:
		t.Fatal("no snapshot pending after offerPaint")
	}
}

func TestOfferPaintNeverBlocks(t *testing.T) {
	ch := make(chan paintState, 1)
	ch <- paintState{width: 1}

	done := make(chan struct{})
	go func() {
		// Full channel with no consumer: the replace path must still
		// return promptly.
		offerPaint(ch, paintState{width: 2})
		offerPaint(ch, paintState{width: 3})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("offerPaint blocked the sender")
	}
	if st := <-ch; st.width != 3 {
		t.Fatalf("delivered width = %d, want 3", st.width)
	}
}
