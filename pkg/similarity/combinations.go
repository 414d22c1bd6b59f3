package similarity

// shortTokenMax is the length at or below which a token may be glued to a
// neighbor. Particles ("de", "la", "van") and initialisms ("JSC") fall here.
const shortTokenMax = 3

// GenerateCombinations produces the token groupings a name is scored under.
// The original tokenization always comes first. A forward variant merges each
// short token into its right neighbor; a backward variant merges into the
// left neighbor and is kept only when a forward variant exists and differs,
// so a lone trailing short token yields nothing. At most three variants, no
// combinatorial growth.
func GenerateCombinations(tokens []string) [][]string {
	variants := [][]string{tokens}

	forward, mergedForward := forwardCombine(tokens)
	if !mergedForward {
		return variants
	}
	variants = append(variants, forward)

	backward, mergedBackward := backwardCombine(tokens)
	if mergedBackward && !sameTokens(backward, forward) {
		variants = append(variants, backward)
	}
	return variants
}

func forwardCombine(tokens []string) ([]string, bool) {
	out := make([]string, 0, len(tokens))
	merged := false
	for i := 0; i < len(tokens); {
		if len(tokens[i]) <= shortTokenMax && i+1 < len(tokens) {
			out = append(out, tokens[i]+tokens[i+1])
			i += 2
			merged = true
		} else {
			out = append(out, tokens[i])
			i++
		}
	}
	return out, merged
}

func backwardCombine(tokens []string) ([]string, bool) {
	out := make([]string, 0, len(tokens))
	merged := false
	for i, tok := range tokens {
		if len(tok) <= shortTokenMax && i > 0 {
			out[len(out)-1] += tok
			merged = true
		} else {
			out = append(out, tok)
		}
	}
	return out, merged
}

func sameTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
