package mqtt

import (
	"errors"
	"testing"
)

type samplePayload struct {
	Sensor string  `json:"sensor" msgpack:"sensor"`
	Value  float64 `json:"value" msgpack:"value"`
	Seq    uint64  `json:"seq" msgpack:"seq"`
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", "json", false},
		{"json", "json", false},
		{"msgpack", "msgpack", false},
		{"protobuf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			codec, err := NewCodec(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("NewCodec(%q) error = %v, want ErrUnsupportedFormat", tt.format, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCodec(%q) error = %v", tt.format, err)
			}
			if codec.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", codec.Name(), tt.want)
			}
		})
	}
}

func TestCodec_Decodable(t *testing.T) {
	in := samplePayload{Sensor: "mcp9808", Value: 21.5, Seq: 7}

	for _, format := range []string{"json", "msgpack"} {
		t.Run(format, func(t *testing.T) {
			codec, err := NewCodec(format)
			if err != nil {
				t.Fatalf("NewCodec() error = %v", err)
			}

			data, err := codec.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var out samplePayload
			if err := codec.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if out != in {
				t.Errorf("decoded %+v, want %+v", out, in)
			}
		})
	}
}

func TestMsgpackCodec_Compact(t *testing.T) {
	tests := []struct {
		name string
		in   samplePayload
	}{
		{"float32 exact", samplePayload{Sensor: "mcp9808", Value: 21.5, Seq: 7}},
		{"float64 only", samplePayload{Sensor: "mcp9808", Value: 21.6, Seq: 70000}},
		{"negative", samplePayload{Sensor: "mcp9808", Value: -0.0625, Seq: 1 << 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := jsonCodec{}.Marshal(tt.in)
			if err != nil {
				t.Fatalf("json Marshal() error = %v", err)
			}
			m, err := msgpackCodec{}.Marshal(tt.in)
			if err != nil {
				t.Fatalf("msgpack Marshal() error = %v", err)
			}
			if len(m) >= len(j) {
				t.Errorf("msgpack payload %d bytes, json %d bytes", len(m), len(j))
			}

			var out samplePayload
			if err := (msgpackCodec{}).Unmarshal(m, &out); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if out != tt.in {
				t.Errorf("decoded %+v, want %+v", out, tt.in)
			}
		})
	}
}
