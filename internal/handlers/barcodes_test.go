package handlers

import (
	"reflect"
	"testing"
)

func TestBarcodeCodeFormat(t *testing.T) {
	if got := barcodeCode(1000); got != "iSANS1000" {
		t.Fatalf("expected iSANS1000, got %s", got)
	}
	if got := barcodeCode(0); got != "iSANS0" {
		t.Fatalf("expected iSANS0, got %s", got)
	}
}

func TestGenerateBarcodeCodesSequence(t *testing.T) {
	got := generateBarcodeCodes(1000, 3)
	want := []string{"iSANS1000", "iSANS1001", "iSANS1002"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGenerateBarcodeCodesNoDuplicatesInBatch(t *testing.T) {
	codes := generateBarcodeCodes(500, 200)
	if len(codes) != 200 {
		t.Fatalf("expected 200 codes, got %d", len(codes))
	}
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			t.Fatalf("duplicate code in batch: %s", code)
		}
		seen[code] = struct{}{}
	}
}

func TestGenerateBarcodeCodesZeroCount(t *testing.T) {
	if got := generateBarcodeCodes(1000, 0); len(got) != 0 {
		t.Fatalf("expected empty batch, got %v", got)
	}
}
