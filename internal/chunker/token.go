package chunker

import "strings"

// EstimateTokens approximates a token count at ~1.33 tokens per word.
func EstimateTokens(text string) int {
	return tokensForWords(len(strings.Fields(text)))
}

func tokensForWords(words int) int {
	if words == 0 {
		return 0
	}
	return max(int(float64(words)*1.33), 1)
}
