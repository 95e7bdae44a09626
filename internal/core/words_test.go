package core

import "testing"

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "không"},
		{5, "năm"},
		{10, "mười"},
		{15, "mười lăm"},
		{21, "hai mươi mốt"},
		{24, "hai mươi tư"},
		{25, "hai mươi lăm"},
		{100, "một trăm"},
		{105, "một trăm lẻ năm"},
		{110, "một trăm mười"},
		{1000, "một nghìn"},
		{12000, "mười hai nghìn"},
		{45000, "bốn mươi lăm nghìn"},
		{1000005, "một triệu không trăm lẻ năm"},
		{1234567, "một triệu hai trăm ba mươi tư nghìn năm trăm sáu mươi bảy"},
		{2000000000, "hai tỷ"},
		{-15, "âm mười lăm"},
	}

	for _, tt := range tests {
		if got := NumberToWords(tt.in); got != tt.want {
			t.Errorf("NumberToWords(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountInWords(t *testing.T) {
	got := AmountInWords(Money{Dong: 45000})
	want := "Bốn mươi lăm nghìn đồng"
	if got != want {
		t.Errorf("AmountInWords = %q, want %q", got, want)
	}
}
