package chunker

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// NewTiktokenCounter returns a TokenCounter backed by the tokenizer of the
// given chat model, so chunk sizing matches the model's real context budget.
// Unknown models fall back to the cl100k_base encoding.
func NewTiktokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// RuneCounter approximates tokens as runes/4, the rough heuristic for English
// text. Used when no tokenizer data is available.
func RuneCounter(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
