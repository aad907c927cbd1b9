package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPrice renders an amount in minor units (cents/paise) with thousand
// separators and two decimals, e.g. 125000 -> "1,250.00".
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%s.%02d", sign, formatThousand(minor/100), minor%100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
