package sink

import (
	"testing"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

func TestRenderJSONMatchesScenarioS2(t *testing.T) {
	rec := data.NewRecord()
	rec.Push(data.Owned(data.DataField{Name: "method", Value: data.Chars("GET")}))
	rec.Push(data.Owned(data.DataField{Name: "path", Value: data.Chars("/index")}))

	out, err := RenderRecord(rec, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"method":"GET","path":"/index"}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}
