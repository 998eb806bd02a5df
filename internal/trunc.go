package internal

// TruncateRightWithSuffix keeps the first len number of runes of text and only appends the suffix if truncation happens.
func TruncateRightWithSuffix(text string, len int, suffix string) string {
	if len <= 0 {
		return suffix
	}

	rs := make([]rune, 0, len)
	i := 0
	for _, r := range text {
		if i == len {
			return string(append(rs, []rune(suffix)...))
		}

		rs = append(rs, r)
		i++
	}

	return string(rs)
}
