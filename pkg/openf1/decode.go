package openf1

import (
	"fmt"

	"github.com/ohler55/ojg/oj"

	"github.com/tyrelab/tyredeg/pkg/model"
)

// The OpenF1 API delivers arrays of loosely typed records; numeric fields
// may arrive as integers, floats or null. Records missing their key
// attributes are dropped here without further notice.

func parseRecords(data []byte) ([]map[string]any, error) {
	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	arr, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON array, got %T", parsed)
	}
	ret := make([]map[string]any, 0, len(arr))
	for i := range arr {
		if m, ok := arr[i].(map[string]any); ok {
			ret = append(ret, m)
		}
	}
	return ret, nil
}

func intVal(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func floatPtr(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case int64:
		f := float64(v)
		return &f
	case float64:
		return &v
	default:
		return nil
	}
}

func strVal(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolVal(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func decodeSessions(data []byte) ([]model.Session, error) {
	records, err := parseRecords(data)
	if err != nil {
		return nil, err
	}
	ret := make([]model.Session, 0, len(records))
	for _, m := range records {
		key, ok := intVal(m, "session_key")
		if !ok {
			continue
		}
		year, _ := intVal(m, "year")
		ret = append(ret, model.Session{
			SessionKey:  key,
			SessionType: strVal(m, "session_type"),
			CountryName: strVal(m, "country_name"),
			Year:        year,
		})
	}
	return ret, nil
}

func decodeStints(data []byte, sessionKey int) ([]model.StintRecord, error) {
	records, err := parseRecords(data)
	if err != nil {
		return nil, err
	}
	ret := make([]model.StintRecord, 0, len(records))
	for _, m := range records {
		driver, ok := intVal(m, "driver_number")
		if !ok {
			continue
		}
		start, ok := intVal(m, "lap_start")
		if !ok {
			continue
		}
		end, ok := intVal(m, "lap_end")
		if !ok {
			continue
		}
		age, _ := intVal(m, "tyre_age_at_start")
		num, _ := intVal(m, "stint_number")
		ret = append(ret, model.StintRecord{
			SessionKey:     sessionKey,
			DriverNumber:   driver,
			Compound:       strVal(m, "compound"),
			LapStart:       start,
			LapEnd:         end,
			TyreAgeAtStart: age,
			StintNumber:    num,
		})
	}
	return ret, nil
}

func decodeLaps(data []byte, sessionKey int) ([]model.LapRecord, error) {
	records, err := parseRecords(data)
	if err != nil {
		return nil, err
	}
	ret := make([]model.LapRecord, 0, len(records))
	for _, m := range records {
		driver, ok := intVal(m, "driver_number")
		if !ok {
			continue
		}
		lapNo, ok := intVal(m, "lap_number")
		if !ok {
			continue
		}
		ret = append(ret, model.LapRecord{
			SessionKey:   sessionKey,
			DriverNumber: driver,
			LapNumber:    lapNo,
			Sector1:      floatPtr(m, "duration_sector_1"),
			Sector2:      floatPtr(m, "duration_sector_2"),
			Sector3:      floatPtr(m, "duration_sector_3"),
			PitOutLap:    boolVal(m, "is_pit_out_lap"),
		})
	}
	return ret, nil
}
