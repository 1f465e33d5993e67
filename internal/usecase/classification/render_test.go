package classification

import (
	"strings"
	"testing"

	domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
)

func strp(s string) *string { return &s }

func intp(n int) *int { return &n }

func mustReq(t *testing.T, query string, limit int) *request.Request {
	t.Helper()
	r, err := request.New(query, limit, request.DefaultBounds())
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func pacemaker() domclass.Record {
	return domclass.NewRecord(
		strp("Pacemaker, Cardiac, Implantable"),
		strp("3"),
		strp("Cardiovascular"),
		strp("870.3610"),
		strp("DXY"),
	)
}

func TestRender_SingleRecord(t *testing.T) {
	resp := domclass.NewResponse([]domclass.Record{pacemaker()}, intp(42))

	got := Render(mustReq(t, "pacemaker", 1), &resp)
	want := "# FDA Device Classifications\n" +
		"**Search Query:** pacemaker\n" +
		"**Results:** Showing 1 of 42 total\n" +
		"\n" +
		"## 1. Pacemaker, Cardiac, Implantable\n" +
		"- **Device Class:** 3\n" +
		"- **Medical Specialty:** Cardiovascular\n" +
		"- **Regulation Number:** 870.3610\n" +
		"- **Product Code:** DXY"
	if got != want {
		t.Errorf("Render() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_FieldOrder(t *testing.T) {
	resp := domclass.NewResponse([]domclass.Record{pacemaker()}, nil)
	got := Render(mustReq(t, "", 10), &resp)

	order := []string{"Device Class:** 3", "Medical Specialty:** Cardiovascular", "Regulation Number:** 870.3610", "Product Code:** DXY"}
	last := -1
	for _, s := range order {
		idx := strings.Index(got, s)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", s, got)
		}
		if idx < last {
			t.Errorf("%q out of order", s)
		}
		last = idx
	}
}

func TestRender_Empty(t *testing.T) {
	resp := domclass.NewResponse(nil, intp(0))
	got := Render(mustReq(t, "zzzz", 10), &resp)

	want := "# FDA Device Classifications\n" +
		"**Search Query:** zzzz\n" +
		"**Results:** Showing 0 of 0 total\n" +
		"\n" +
		"No classifications found matching your search criteria."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if strings.Contains(got, "## 1.") {
		t.Error("empty report must not contain numbered blocks")
	}
}

func TestRender_NoQueryOmitsQueryLine(t *testing.T) {
	resp := domclass.NewResponse([]domclass.Record{pacemaker()}, intp(7))
	got := Render(mustReq(t, "   ", 10), &resp)

	if strings.Contains(got, "Search Query") {
		t.Errorf("query line must be omitted:\n%s", got)
	}
	if !strings.HasPrefix(got, "# FDA Device Classifications\n**Results:** Showing 1 of 7 total\n\n") {
		t.Errorf("unexpected header:\n%s", got)
	}
}

func TestRender_MissingFieldsAreNA(t *testing.T) {
	rec := domclass.NewRecord(strp("Stethoscope"), strp("2"), strp("Cardiovascular"), strp("870.1875"), nil)
	resp := domclass.NewResponse([]domclass.Record{rec}, nil)
	got := Render(mustReq(t, "", 10), &resp)

	if !strings.HasSuffix(got, "- **Product Code:** N/A") {
		t.Errorf("expected N/A product code:\n%s", got)
	}

	bare := domclass.NewRecord(nil, nil, nil, nil, nil)
	resp = domclass.NewResponse([]domclass.Record{bare}, nil)
	got = Render(mustReq(t, "", 10), &resp)
	if !strings.Contains(got, "## 1. N/A\n") {
		t.Errorf("expected N/A device name:\n%s", got)
	}
	if c := strings.Count(got, "N/A"); c != 5 {
		t.Errorf("expected 5 N/A values, got %d", c)
	}
}

func TestRender_EmptyStringIsKept(t *testing.T) {
	rec := domclass.NewRecord(strp("X"), strp(""), strp("General"), strp("880.1"), strp("ABC"))
	resp := domclass.NewResponse([]domclass.Record{rec}, nil)
	got := Render(mustReq(t, "", 10), &resp)

	if !strings.Contains(got, "- **Device Class:** \n") {
		t.Errorf("present empty field should render empty:\n%s", got)
	}
}

func TestRender_TotalFallsBackToCount(t *testing.T) {
	resp := domclass.NewResponse([]domclass.Record{pacemaker(), pacemaker()}, nil)
	got := Render(mustReq(t, "", 10), &resp)
	if !strings.Contains(got, "**Results:** Showing 2 of 2 total") {
		t.Errorf("unexpected results line:\n%s", got)
	}
}

func TestRender_BlocksSeparatedInUpstreamOrder(t *testing.T) {
	second := domclass.NewRecord(strp("Stethoscope"), strp("2"), strp("Cardiovascular"), strp("870.1875"), strp("DQD"))
	resp := domclass.NewResponse([]domclass.Record{pacemaker(), second}, intp(2))
	got := Render(mustReq(t, "", 10), &resp)

	if !strings.Contains(got, "- **Product Code:** DXY\n\n## 2. Stethoscope\n") {
		t.Errorf("blocks not separated by one blank line:\n%s", got)
	}
	if strings.Index(got, "## 1. Pacemaker") > strings.Index(got, "## 2. Stethoscope") {
		t.Error("records reordered")
	}
}

func TestRender_Deterministic(t *testing.T) {
	resp := domclass.NewResponse([]domclass.Record{pacemaker(), pacemaker()}, intp(10))
	req := mustReq(t, "device_class:3", 2)

	a := Render(req, &resp)
	b := Render(req, &resp)
	if a != b {
		t.Error("Render is not deterministic")
	}
}
