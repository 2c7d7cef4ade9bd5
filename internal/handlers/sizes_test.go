package handlers

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeSizesUppercasesAndDeduplicates(t *testing.T) {
	got, err := normalizeSizes([]string{" xs", "XS", "m", "fs", "M"})
	if err != nil {
		t.Fatalf("normalizeSizes returned error: %v", err)
	}
	want := []string{"XS", "M", "FS"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeSizesSkipsEmptyEntries(t *testing.T) {
	got, err := normalizeSizes([]string{"", "  ", "L"})
	if err != nil {
		t.Fatalf("normalizeSizes returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"L"}) {
		t.Fatalf("expected [L], got %v", got)
	}
}

func TestNormalizeSizesReportsEveryInvalidCode(t *testing.T) {
	_, err := normalizeSizes([]string{"XS", "XXL", "M", "TINY"})
	if err == nil {
		t.Fatal("expected error for unrecognized size codes")
	}

	var sizesErr invalidSizesError
	if !errors.As(err, &sizesErr) {
		t.Fatalf("expected invalidSizesError, got %T", err)
	}
	want := []string{"TINY", "XXL"}
	if !reflect.DeepEqual(sizesErr.Invalid, want) {
		t.Fatalf("expected invalid codes %v, got %v", want, sizesErr.Invalid)
	}
}

func TestIsValidSizeAcceptsFreeSize(t *testing.T) {
	if !isValidSize("FS") {
		t.Fatal("expected FS to be a valid size")
	}
	if isValidSize("fs") {
		t.Fatal("expected size check to be case sensitive, normalization handles case")
	}
}
