package classification

import (
	"strconv"
	"strings"

	domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
)

const (
	reportTitle  = "# FDA Device Classifications"
	noResultsMsg = "No classifications found matching your search criteria."
	missingField = "N/A"
)

// Render formats a search response as a text report.
// The output depends only on its inputs.
func Render(req *request.Request, resp *domclass.Response) string {
	records := resp.Records()

	var b strings.Builder
	b.WriteString(reportTitle)
	b.WriteByte('\n')
	if req.HasQuery() {
		b.WriteString("**Search Query:** ")
		b.WriteString(req.Query())
		b.WriteByte('\n')
	}
	b.WriteString("**Results:** Showing ")
	b.WriteString(strconv.Itoa(len(records)))
	b.WriteString(" of ")
	b.WriteString(strconv.Itoa(resp.Total()))
	b.WriteString(" total\n\n")

	if len(records) == 0 {
		b.WriteString(noResultsMsg)
		return b.String()
	}

	for i := range records {
		if i > 0 {
			b.WriteString("\n\n")
		}
		writeRecord(&b, i+1, &records[i])
	}
	return b.String()
}

func writeRecord(b *strings.Builder, n int, r *domclass.Record) {
	b.WriteString("## ")
	b.WriteString(strconv.Itoa(n))
	b.WriteString(". ")
	b.WriteString(orMissing(r.DeviceName()))
	writeField(b, "Device Class", orMissing(r.DeviceClass()))
	writeField(b, "Medical Specialty", orMissing(r.MedicalSpecialty()))
	writeField(b, "Regulation Number", orMissing(r.RegulationNumber()))
	writeField(b, "Product Code", orMissing(r.ProductCode()))
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString("\n- **")
	b.WriteString(label)
	b.WriteString(":** ")
	b.WriteString(value)
}

func orMissing(v string, ok bool) string {
	if !ok {
		return missingField
	}
	return v
}
