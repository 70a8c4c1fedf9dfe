package sgio

import (
	"encoding/binary"
	"fmt"
	"testing"
)

func identifyFixture(words map[int]uint16, model string) []byte {
	raw := make([]byte, 512)
	for w, v := range words {
		binary.LittleEndian.PutUint16(raw[w*2:], v)
	}
	// ATA strings are stored byte-swapped per word
	m := []byte(fmt.Sprintf("%-40s", model))
	for i := 0; i < 40; i += 2 {
		raw[54+i] = m[i+1]
		raw[54+i+1] = m[i]
	}
	return raw
}

func TestParseIdentify(t *testing.T) {
	testCases := []struct {
		name  string
		words map[int]uint16
		epcS  bool
		epcE  bool
		apmS  bool
		apmE  bool
	}{
		{"Nothing", map[int]uint16{}, false, false, false, false},
		{"EPC enabled", map[int]uint16{119: 0x4080, 120: 0x4080}, true, true, false, false},
		{"EPC supported only", map[int]uint16{119: 0x4080, 120: 0x4000}, true, false, false, false},
		{"EPC bits without valid signature", map[int]uint16{119: 0x0080, 120: 0x0080}, false, false, false, false},
		{"APM enabled", map[int]uint16{83: 0x4008, 86: 0x0008}, false, false, true, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseIdentify(identifyFixture(tc.words, "WDC WD40EFRX-68N32N0  "))
			if err != nil {
				t.Fatalf("ParseIdentify() failed: %v", err)
			}
			if id.EPCSupported() != tc.epcS || id.EPCEnabled() != tc.epcE {
				t.Errorf("EPC supported/enabled = %v/%v; want %v/%v", id.EPCSupported(), id.EPCEnabled(), tc.epcS, tc.epcE)
			}
			if id.APMSupported() != tc.apmS || id.APMEnabled() != tc.apmE {
				t.Errorf("APM supported/enabled = %v/%v; want %v/%v", id.APMSupported(), id.APMEnabled(), tc.apmS, tc.apmE)
			}
			if got := id.ModelNumber(); got != "WDC WD40EFRX-68N32N0" {
				t.Errorf("ModelNumber() = %q", got)
			}
		})
	}
}

func TestParseIdentifyShort(t *testing.T) {
	if _, err := ParseIdentify(make([]byte, 100)); err == nil {
		t.Errorf("ParseIdentify() of short buffer succeeded")
	}
}
