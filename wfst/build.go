package wfst

// LetterRange records where a letter's rules begin in the combined rule
// table, the value the C emitter's letter index points into.
type LetterRange struct {
	Letter string
	Start  int
}

// BuildRules runs ParseWFSTFile over every letter in order, concatenating
// their rule rows into one contiguous table and recording each letter's
// starting index, matching spec §4.8/§4.9's "flat array of packed rules,
// the letter index pointing into it" shape.
func BuildRules(wfstPath func(letter string) string, letters []string) ([]Rule, []LetterRange, *PhoneTable, error) {
	phones := NewPhoneTable()
	var all []Rule
	var ranges []LetterRange
	index := 0
	for _, letter := range letters {
		ranges = append(ranges, LetterRange{Letter: letter, Start: index})
		rules, next, err := ParseWFSTFile(wfstPath(letter), index, phones)
		if err != nil {
			return nil, nil, nil, err
		}
		all = append(all, rules...)
		index = next
	}
	return all, ranges, phones, nil
}
