package openfda

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Top-level keys of an openFDA response.
const (
	metaKey    = "meta"
	resultsKey = "results"
)

type metaDTO struct {
	Disclaimer  string `json:"disclaimer"`
	LastUpdated string `json:"last_updated"`
	Results     *struct {
		Skip  int  `json:"skip"`
		Limit int  `json:"limit"`
		Total *int `json:"total"`
	} `json:"results"`
}

// recordDTO holds the classification fields the report uses; openFDA sends many more.
type recordDTO struct {
	DeviceName                  *string `json:"device_name"`
	DeviceClass                 *string `json:"device_class"`
	MedicalSpecialtyDescription *string `json:"medical_specialty_description"`
	RegulationNumber            *string `json:"regulation_number"`
	ProductCode                 *string `json:"product_code"`
}

func (d *recordDTO) toDomain() classification.Record {
	return classification.NewRecord(
		d.DeviceName, d.DeviceClass, d.MedicalSpecialtyDescription, d.RegulationNumber, d.ProductCode,
	)
}

func (m *metaDTO) total() *int {
	if m == nil || m.Results == nil {
		return nil
	}
	return m.Results.Total
}
