// Vietnamese number-to-words rendering for amount confirmation.
//
// Follows the bank-receipt convention: groups of three digits read with
// "nghìn", "triệu", "tỷ" scales, "lẻ" for a skipped tens place, "mốt"/"tư"/
// "lăm" variants after "mươi", and "không trăm" spelled out in inner groups.
package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var digitWords = [10]string{
	"không", "một", "hai", "ba", "bốn", "năm", "sáu", "bảy", "tám", "chín",
}

var scaleWords = []string{"", " nghìn", " triệu", " tỷ", " nghìn tỷ", " triệu tỷ"}

// NumberToWords renders n in Vietnamese words.
//
//	NumberToWords(0)       -> "không"
//	NumberToWords(105)     -> "một trăm lẻ năm"
//	NumberToWords(1234567) -> "một triệu hai trăm ba mươi tư nghìn năm trăm sáu mươi bảy"
func NumberToWords(n int64) string {
	if n == 0 {
		return digitWords[0]
	}
	prefix := ""
	if n < 0 {
		prefix = "âm "
		n = -n
	}

	// Split into groups of three, least significant first.
	var groups []int
	for n > 0 {
		groups = append(groups, int(n%1000))
		n /= 1000
	}

	var parts []string
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			continue
		}
		// Inner groups read the full form, including a leading "không trăm".
		full := i < len(groups)-1
		parts = append(parts, readTriple(g, full)+scaleWords[i])
	}
	return prefix + strings.Join(parts, " ")
}

// AmountInWords renders a money amount the way a receipt would print it,
// capitalized and suffixed with the currency unit.
func AmountInWords(m Money) string {
	words := NumberToWords(m.Dong) + " đồng"
	r, size := utf8.DecodeRuneInString(words)
	return string(unicode.ToUpper(r)) + words[size:]
}

// readTriple renders a 1..999 group. When full is set the hundreds place is
// always spelled, so 5 in an inner group reads "không trăm lẻ năm".
func readTriple(g int, full bool) string {
	h, t, u := g/100, g/10%10, g%10

	var parts []string
	if h > 0 || full {
		parts = append(parts, digitWords[h], "trăm")
	}

	switch {
	case t > 1:
		parts = append(parts, digitWords[t], "mươi")
		switch u {
		case 0:
		case 1:
			parts = append(parts, "mốt")
		case 4:
			parts = append(parts, "tư")
		case 5:
			parts = append(parts, "lăm")
		default:
			parts = append(parts, digitWords[u])
		}
	case t == 1:
		parts = append(parts, "mười")
		switch u {
		case 0:
		case 5:
			parts = append(parts, "lăm")
		default:
			parts = append(parts, digitWords[u])
		}
	default: // t == 0
		if u > 0 {
			if h > 0 || full {
				parts = append(parts, "lẻ")
			}
			parts = append(parts, digitWords[u])
		}
	}
	return strings.Join(parts, " ")
}
