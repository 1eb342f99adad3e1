package gallery

const ellipsis = "..."

// Truncate keeps the last maxLength characters of input behind a "..."
// prefix, so long paths still show their file name. Inputs that already
// fit are returned unchanged.
func Truncate(input string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}

	runes := []rune(input)
	if len(runes) <= maxLength {
		return input
	}

	return ellipsis + string(runes[len(runes)-maxLength:])
}
