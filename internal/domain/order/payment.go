package order

import "strconv"

const DeliveryFee int64 = 1000

const (
	PaymentOrangeMoney = "orange_money"
	PaymentWave        = "wave"
	PaymentFreeMoney   = "free_money"
)

func PaymentLabel(method string) string {
	switch method {
	case PaymentOrangeMoney:
		return "Orange Money"
	case PaymentWave:
		return "Wave"
	case PaymentFreeMoney:
		return "Free Money"
	default:
		return method
	}
}

// Total is what a buyer pays for a subtotal.
func Total(subtotal int64) int64 {
	return subtotal + DeliveryFee
}

// FormatXOF renders whole francs with a space every three digits,
// e.g. 12500 -> "12 500 F CFA".
func FormatXOF(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b = append(b, ' ')
		}
		b = append(b, s[i])
	}
	if neg {
		return "-" + string(b) + " F CFA"
	}
	return string(b) + " F CFA"
}
