// Package classification holds the typed openFDA device classification payload.
package classification

// Record is a single device classification. Every field is optional upstream;
// a nil field means the key was absent or null.
type Record struct {
	deviceName       *string
	deviceClass      *string
	medicalSpecialty *string
	regulationNumber *string
	productCode      *string
}

// NewRecord creates a classification record.
func NewRecord(deviceName, deviceClass, medicalSpecialty, regulationNumber, productCode *string) Record {
	return Record{
		deviceName:       deviceName,
		deviceClass:      deviceClass,
		medicalSpecialty: medicalSpecialty,
		regulationNumber: regulationNumber,
		productCode:      productCode,
	}
}

// DeviceName returns the device name and whether it was present.
func (r *Record) DeviceName() (string, bool) { return deref(r.deviceName) }

// DeviceClass returns the regulatory class ("1", "2", "3", ...) and whether it was present.
func (r *Record) DeviceClass() (string, bool) { return deref(r.deviceClass) }

// MedicalSpecialty returns the medical specialty description and whether it was present.
func (r *Record) MedicalSpecialty() (string, bool) { return deref(r.medicalSpecialty) }

// RegulationNumber returns the CFR regulation number and whether it was present.
func (r *Record) RegulationNumber() (string, bool) { return deref(r.regulationNumber) }

// ProductCode returns the three-letter product code and whether it was present.
func (r *Record) ProductCode() (string, bool) { return deref(r.productCode) }

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// Response is a decoded upstream search response.
type Response struct {
	records  []Record
	total    int
	hasTotal bool
}

// NewResponse creates a response. total is nil when upstream did not report one.
func NewResponse(records []Record, total *int) Response {
	r := Response{records: records}
	if total != nil {
		r.total = *total
		r.hasTotal = true
	}
	return r
}

// Records returns the records in upstream order.
func (r *Response) Records() []Record { return r.records }

// Total returns the upstream-reported total, falling back to the number of
// returned records when upstream omitted it.
func (r *Response) Total() int {
	if r.hasTotal {
		return r.total
	}
	return len(r.records)
}
