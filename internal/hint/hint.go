package hint

import (
	"fmt"
	"strings"
)

// Mask оставляет первую и последнюю букву, середину заменяет на "_".
// Слова короче трёх букв закрываются целиком.
func Mask(word string) string {
	runes := []rune(word)
	n := len(runes)
	if n < 3 {
		return strings.Repeat("_", n)
	}
	return string(runes[0]) + strings.Repeat("_", n-2) + string(runes[n-1])
}

func Sentence(word string) string {
	var first, last string
	if runes := []rune(word); len(runes) > 0 {
		first, last = string(runes[0]), string(runes[len(runes)-1])
	}
	return fmt.Sprintf("Starts with '%s', ends with '%s' • Pattern: %s", first, last, Mask(word))
}
