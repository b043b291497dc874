package pagepdf

import (
	"errors"
	"testing"
)

func TestVerifyPageCount(t *testing.T) {
	t.Parallel()

	pdf, pages, err := composeTiled(testRaster(t, 515, 1600, ImageFormatJPEG), a4Geometry(t), pdfMeta{})
	if err != nil {
		t.Fatalf("composeTiled() unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		want    int
		wantErr bool
	}{
		{"matching count", pdf, pages, false},
		{"unknown count", pdf, 0, false},
		{"short document", pdf, pages + 1, true},
		{"not a PDF", []byte("<html>oops</html>"), 0, true},
		{"empty", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := verifyPageCount(tt.data, tt.want)
			if tt.wantErr {
				if !errors.Is(err, ErrIncompletePagination) {
					t.Errorf("verifyPageCount() error = %v, want ErrIncompletePagination", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("verifyPageCount() unexpected error: %v", err)
			}
			if got != pages {
				t.Errorf("verifyPageCount() = %d, want %d", got, pages)
			}
		})
	}
}
