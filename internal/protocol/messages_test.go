package protocol

import (
	"testing"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
)

func TestParseMessage_Identify(t *testing.T) {
	line := `{"type":"identify","station_id":"station-gulshan","location":"Gulshan, Dhaka"}`

	msg, err := ParseMessage([]byte(line))
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	identify, ok := msg.(*IdentifyMessage)
	if !ok {
		t.Fatalf("expected *IdentifyMessage, got %T", msg)
	}
	if identify.StationID != "station-gulshan" {
		t.Errorf("StationID = %s, want station-gulshan", identify.StationID)
	}
	if identify.Location != "Gulshan, Dhaka" {
		t.Errorf("Location = %s, want Gulshan, Dhaka", identify.Location)
	}
}

func TestParseMessage_IdentifyMissingStation(t *testing.T) {
	line := `{"type":"identify","location":"Gulshan, Dhaka"}`

	if _, err := ParseMessage([]byte(line)); err == nil {
		t.Error("identify without station_id should fail validation")
	}
}

func TestParseMessage_Reading(t *testing.T) {
	line := `{"type":"reading","data":{"timestamp":"2026-08-20T14:00:00Z","pm25":35.5,"o3":48.0,"temperature":31.2}}`

	msg, err := ParseMessage([]byte(line))
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	reading, ok := msg.(*ReadingMessage)
	if !ok {
		t.Fatalf("expected *ReadingMessage, got %T", msg)
	}

	if reading.Data.PM25 == nil || *reading.Data.PM25 != 35.5 {
		t.Error("pm25 should be 35.5")
	}
	// Absent channels stay nil so "not measured" survives the wire
	if reading.Data.CO != nil {
		t.Error("co was not sent and should be nil")
	}
}

func TestParseMessage_ReadingBadTimestamp(t *testing.T) {
	line := `{"type":"reading","data":{"timestamp":"20-08-2026 14:00","pm25":35.5}}`

	if _, err := ParseMessage([]byte(line)); err == nil {
		t.Error("non-RFC3339 timestamp should fail validation")
	}
}

func TestParseMessage_UnknownType(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":"telemetry"}`)); err == nil {
		t.Error("unknown message type should fail")
	}
}

func TestParseMessage_InvalidJSON(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Error("invalid JSON should fail")
	}
}

func TestReadingDataReading(t *testing.T) {
	pm25 := 40.0
	co := 0.0
	data := &ReadingData{PM25: &pm25, CO: &co}

	reading := data.Reading()

	if v, ok := reading[aqi.PM25]; !ok || v != 40.0 {
		t.Errorf("pm25 = %.1f/%v, want 40.0/true", v, ok)
	}
	// A measured zero is present in the reading; the engine decides
	// whether it counts
	if _, ok := reading[aqi.CO]; !ok {
		t.Error("measured co should be present")
	}
	if _, ok := reading[aqi.NO2]; ok {
		t.Error("unmeasured no2 should be absent")
	}
}

func TestEncodeDecodeReadingMessage(t *testing.T) {
	pm25 := 55.0
	msg := &StationReadingMessage{
		ConnectionID: "conn-1",
		StationID:    "station-mirpur",
		Location:     "Mirpur, Dhaka",
		Data:         ReadingData{Timestamp: "2026-08-20T14:00:00Z", PM25: &pm25},
	}

	encoded, err := EncodeReadingMessage(msg)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeReadingMessage(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.StationID != msg.StationID {
		t.Errorf("StationID = %s, want %s", decoded.StationID, msg.StationID)
	}
	if decoded.Data.PM25 == nil || *decoded.Data.PM25 != 55.0 {
		t.Error("pm25 should survive the round trip")
	}
}
