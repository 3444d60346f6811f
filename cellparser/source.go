package cellparser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var nonIDChars = regexp.MustCompile(`[^a-z0-9]+`)

// StringToID turns arbitrary text into an identifier: transliterated to ASCII,
// lowercased, with every run of other characters collapsed to "_".
func StringToID(s string) string {
	id := strings.ToLower(unidecode.Unidecode(s))
	id = nonIDChars.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}

// ResolveSource parses a citation such as "{4}" or "{Smith 1990: p. 12}" into
// a source id namespaced by language and an optional context. When text is
// blank, defaultSource is used instead; when that is blank too the zero
// Reference is returned.
func ResolveSource(text, language, defaultSource string) (Reference, []*ParseError) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = strings.TrimSpace(defaultSource)
		if text == "" {
			return Reference{}, nil
		}
	}

	var diags []*ParseError
	body := strings.TrimPrefix(text, "{")
	body, closed := strings.CutSuffix(body, "}")

	key, context, hasContext := strings.Cut(body, ":")
	if !closed {
		msg := fmt.Sprintf("source citation %q has no closing '}'", text)
		if hasContext {
			msg += ", split into source and context may be wrong"
		}
		diags = append(diags, NewParseError(KindMalformedSource, msg).
			WithSuggestion(fmt.Sprintf("%s}", text)))
	}

	id := StringToID(key)
	if id == "" {
		diags = append(diags, NewParseError(KindMalformedSource,
			fmt.Sprintf("source citation %q has no usable key", text)))
		return Reference{}, diags
	}

	ref := Reference{ID: language + "_s" + id}
	if hasContext {
		c := strings.TrimSpace(strings.ReplaceAll(context, "}", ""))
		if c != "" {
			ref.Context = &c
		}
	}
	return ref, diags
}
