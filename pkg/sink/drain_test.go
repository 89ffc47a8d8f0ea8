package sink

import "testing"

func TestDrainStateClosingAfterStartDraining(t *testing.T) {
	// S6: two channels; start_draining(); close first -> Pending;
	// close second -> Drained.
	d := NewDrainState(2)
	d.StartDraining()
	if got := d.ChannelClosedIsDrained(); got != Pending {
		t.Fatalf("first close: got %v, want Pending", got)
	}
	if got := d.ChannelClosedIsDrained(); got != Drained {
		t.Fatalf("second close: got %v, want Drained", got)
	}
}

func TestDrainStateClosingBeforeStartDraining(t *testing.T) {
	// S6: closing both channels before start_draining() returns
	// AllClosed for the last close.
	d := NewDrainState(2)
	if got := d.ChannelClosedIsDrained(); got != Pending {
		t.Fatalf("first close: got %v, want Pending", got)
	}
	if got := d.ChannelClosedIsDrained(); got != AllClosed {
		t.Fatalf("second close: got %v, want AllClosed", got)
	}
}
