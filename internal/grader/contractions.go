package grader

import "strings"

// contractions maps common English contractions to their long form.
var contractions = map[string]string{
	"i'm":       "i am",
	"you're":    "you are",
	"we're":     "we are",
	"they're":   "they are",
	"it's":      "it is",
	"he's":      "he is",
	"she's":     "she is",
	"that's":    "that is",
	"what's":    "what is",
	"there's":   "there is",
	"here's":    "here is",
	"where's":   "where is",
	"let's":     "let us",
	"i've":      "i have",
	"you've":    "you have",
	"we've":     "we have",
	"they've":   "they have",
	"i'll":      "i will",
	"you'll":    "you will",
	"he'll":     "he will",
	"she'll":    "she will",
	"it'll":     "it will",
	"we'll":     "we will",
	"they'll":   "they will",
	"i'd":       "i would",
	"you'd":     "you would",
	"he'd":      "he would",
	"she'd":     "she would",
	"we'd":      "we would",
	"they'd":    "they would",
	"don't":     "do not",
	"doesn't":   "does not",
	"didn't":    "did not",
	"isn't":     "is not",
	"aren't":    "are not",
	"wasn't":    "was not",
	"weren't":   "were not",
	"haven't":   "have not",
	"hasn't":    "has not",
	"hadn't":    "had not",
	"won't":     "will not",
	"wouldn't":  "would not",
	"can't":     "cannot",
	"couldn't":  "could not",
	"shouldn't": "should not",
	"mustn't":   "must not",
}

// ExpandContractions lower-cases s and replaces known contractions with
// their long form. Surrounding punctuation on a word is preserved.
func ExpandContractions(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "’", "'"))
	fields := strings.Fields(s)
	for i, f := range fields {
		core := strings.TrimLeft(f, "\"(“'")
		lead := f[:len(f)-len(core)]
		word := strings.TrimRight(core, ".,!?;:\")”'")
		trail := core[len(word):]
		if long, ok := contractions[word]; ok {
			fields[i] = lead + long + trail
		}
	}
	return strings.Join(fields, " ")
}
