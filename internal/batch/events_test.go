package batch

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEventProgressFieldSerialization(t *testing.T) {
	zero, err := json.Marshal(Event{
		Type:           EventProgress,
		SequenceNumber: 1,
		Status:         StatusGenerating,
		Percent:        Pct(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(zero), `"progress":0`) {
		t.Errorf("0%% tick = %s, want progress field present", zero)
	}

	for _, ev := range []Event{
		{Type: EventWarning, Message: "m"},
		{Type: EventFinished},
		{Type: EventImageReady},
	} {
		b, err := json.Marshal(ev)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(b), "progress") {
			t.Errorf("%s event = %s, want no progress field", ev.Type, b)
		}
	}
}
