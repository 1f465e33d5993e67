package openfda

import domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"

// Classification is one device classification record.
// Fields openFDA did not return are empty.
type Classification struct {
	DeviceName       string
	DeviceClass      string
	MedicalSpecialty string
	RegulationNumber string
	ProductCode      string
}

// Result is one page of classification search results.
type Result struct {
	// Total is the number of matches reported by openFDA, or the number of
	// returned records when openFDA did not report one.
	Total           int
	Classifications []Classification
}

func resultFromDomain(resp *domclass.Response) *Result {
	records := resp.Records()
	out := &Result{
		Total:           resp.Total(),
		Classifications: make([]Classification, len(records)),
	}
	for i := range records {
		out.Classifications[i] = classificationFromDomain(&records[i])
	}
	return out
}

func classificationFromDomain(r *domclass.Record) Classification {
	name, _ := r.DeviceName()
	class, _ := r.DeviceClass()
	specialty, _ := r.MedicalSpecialty()
	regulation, _ := r.RegulationNumber()
	code, _ := r.ProductCode()
	return Classification{
		DeviceName:       name,
		DeviceClass:      class,
		MedicalSpecialty: specialty,
		RegulationNumber: regulation,
		ProductCode:      code,
	}
}
