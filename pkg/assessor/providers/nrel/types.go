package nrel

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
)

// optionalFloat normalizes the inconsistently-typed numeric fields in NREL
// responses: a field may arrive as a scalar, as a single-element array, as
// the string sentinel "no data", or be absent entirely. After unmarshaling
// the value is either present or nil; nothing downstream branches on shape.
type optionalFloat struct {
	Value *float64
}

func (o *optionalFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	// Single-element array: use the first element.
	if data[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		if len(arr) == 0 {
			o.Value = nil
			return nil
		}
		return o.UnmarshalJSON(arr[0])
	}

	// String: only the "no data" sentinel is tolerated.
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == common.NoDataSentinel {
			o.Value = nil
			return nil
		}
		return fmt.Errorf("unexpected string value %q", s)
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// PVWattsOutput is the normalized outputs block of a PVWatts v8 response.
// Nil fields were missing upstream; callers decide whether that is fatal.
type PVWattsOutput struct {
	ACAnnualKWh          *float64
	SolradAnnualKWhM2Day *float64
	CapacityFactorPct    *float64
}

// UtilityRatesOutput is the normalized outputs block of a utility-rates v3
// response. Nil rates were missing or carried the "no data" sentinel.
type UtilityRatesOutput struct {
	UtilityName string
	Residential *float64
	Commercial  *float64
	Industrial  *float64
}

type pvwattsResponse struct {
	Outputs *struct {
		ACAnnual       optionalFloat `json:"ac_annual"`
		SolradAnnual   optionalFloat `json:"solrad_annual"`
		CapacityFactor optionalFloat `json:"capacity_factor"`
	} `json:"outputs"`
	Errors []string `json:"errors"`
}

type utilityRatesResponse struct {
	Outputs *struct {
		UtilityName string        `json:"utility_name"`
		Residential optionalFloat `json:"residential"`
		Commercial  optionalFloat `json:"commercial"`
		Industrial  optionalFloat `json:"industrial"`
	} `json:"outputs"`
	Errors []string `json:"errors"`
}
