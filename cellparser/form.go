package cellparser

import (
	"sort"
	"strings"
)

// Reference ties a form to a source, optionally with a page or other context.
type Reference struct {
	ID      string  `json:"id" yaml:"id"`
	Context *string `json:"context,omitempty" yaml:"context,omitempty"`
}

// ContextString returns the context or "" when there is none.
func (r Reference) ContextString() string {
	if r.Context == nil {
		return ""
	}
	return *r.Context
}

func (r Reference) key() string {
	if r.Context == nil {
		return r.ID + "\x00"
	}
	return r.ID + "\x00\x01" + *r.Context
}

// Form is one parsed form-description. Once handed out by a Parser it is not
// modified again; callers that need a changed copy use Clone.
type Form struct {
	Language string            `json:"language" yaml:"language"`
	Value    string            `json:"value" yaml:"value"`
	Cell     string            `json:"cell,omitempty" yaml:"cell,omitempty"`
	Fields   map[string]string `json:"fields" yaml:"fields"`
	Sources  []Reference       `json:"sources,omitempty" yaml:"sources,omitempty"`
	Variants []string          `json:"variants,omitempty" yaml:"variants,omitempty"`
}

func newForm(language, value, cell string) *Form {
	return &Form{
		Language: language,
		Value:    value,
		Cell:     cell,
		Fields:   make(map[string]string),
	}
}

// Get returns a field value and whether it is set.
func (f *Form) Get(field string) (string, bool) {
	v, ok := f.Fields[field]
	return v, ok
}

// Transcriptions returns the non-empty transcription fields of f under cfg.
func (f *Form) Transcriptions(cfg Config) map[string]string {
	out := make(map[string]string)
	for _, name := range cfg.TranscriptionFields() {
		if v := strings.TrimSpace(f.Fields[name]); v != "" {
			out[name] = v
		}
	}
	return out
}

// HasSource reports whether f cites the given source id.
func (f *Form) HasSource(id string) bool {
	for _, r := range f.Sources {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of f.
func (f *Form) Clone() *Form {
	c := &Form{
		Language: f.Language,
		Value:    f.Value,
		Cell:     f.Cell,
		Fields:   make(map[string]string, len(f.Fields)),
	}
	for k, v := range f.Fields {
		c.Fields[k] = v
	}
	for _, r := range f.Sources {
		if r.Context != nil {
			ctx := *r.Context
			r.Context = &ctx
		}
		c.Sources = append(c.Sources, r)
	}
	c.Variants = append(c.Variants, f.Variants...)
	return c
}

// addSource inserts r unless an equal reference is already present, keeping
// Sources sorted by id and then context.
func (f *Form) addSource(r Reference) {
	for _, have := range f.Sources {
		if have.key() == r.key() {
			return
		}
	}
	f.Sources = append(f.Sources, r)
	sort.Slice(f.Sources, func(i, j int) bool {
		return f.Sources[i].key() < f.Sources[j].key()
	})
}

// addVariant appends v unless it is already listed.
func (f *Form) addVariant(v string) {
	for _, have := range f.Variants {
		if have == v {
			return
		}
	}
	f.Variants = append(f.Variants, v)
}
