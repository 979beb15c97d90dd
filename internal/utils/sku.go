package utils

import (
	"fmt"
	"math/rand"
	"strings"
)

// GenerateSKU builds a variant code like LX-SA-RE-CO-4821 from the first
// two letters of category, color and fabric plus a random 4-digit
// suffix. Uniqueness is the caller's problem (retry on collision).
func GenerateSKU(category, color, fabric string) string {
	return fmt.Sprintf("LX-%s-%s-%s-%d",
		skuPart(category), skuPart(color), skuPart(fabric),
		1000+rand.Intn(9000))
}

func skuPart(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 2 {
		s = s[:2]
	}
	return strings.ToUpper(s)
}
