package irradiance

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sample is the average irradiation of one month in W/m^2.
type Sample struct {
	Month       time.Month
	Irradiation float64
}

// Series holds one Sample per month, January first.
type Series [12]Sample

// Verify the samples can be marshaled
var _ json.Marshaler = Sample{}

// Name returns the English name of the sample's month.
func (s Sample) Name() string {
	return s.Month.String()
}

func (s Sample) String() string {
	return fmt.Sprintf("%s: %.2f W/m^2", s.Name(), s.Irradiation)
}

type sampleJSON struct {
	Month       string  `json:"month"`
	Irradiation float64 `json:"irradiation"`
}

func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(sampleJSON{s.Name(), s.Irradiation})
}

// Values returns the irradiation of each month in order.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i := range s {
		vals[i] = s[i].Irradiation
	}
	return vals
}
