package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	var out bytes.Buffer
	writeHistogram(&out, "x", "help", snap)

	for _, want := range []string{
		`x_bucket{le="10"} 1`,
		`x_bucket{le="100"} 2`,
		`x_bucket{le="+Inf"} 3`,
		`x_sum 555`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestRenderIncludesStageLabels(t *testing.T) {
	IncEmotionStage("cascade")
	IncEmotionStage("aligned")
	out := Render()
	if !strings.Contains(out, `emotion_stage_hits_total{stage="aligned"}`) {
		t.Fatalf("missing aligned stage:\n%s", out)
	}
	if !strings.Contains(out, `emotion_stage_hits_total{stage="cascade"}`) {
		t.Fatalf("missing cascade stage:\n%s", out)
	}
	if strings.Index(out, `stage="aligned"`) > strings.Index(out, `stage="cascade"`) {
		t.Fatalf("expected labels sorted")
	}
}
