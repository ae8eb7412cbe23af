package metrics

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Metric is one recognized clinical measurement: a stable name plus the
// keyword synonyms that trigger it.
type Metric struct {
	Name     string
	Keywords []string
}

// DefaultVocabulary lists the metrics recognized out of the box, in report
// order. Adding an entry extends recognition without touching the parser.
var DefaultVocabulary = []Metric{
	{Name: "glucose", Keywords: []string{"glucose", "blood sugar", "glc"}},
	{Name: "cholesterol", Keywords: []string{"cholesterol", "ldl", "hdl"}},
	{Name: "alt", Keywords: []string{"alt", "sgpt"}},
	{Name: "ast", Keywords: []string{"ast", "sgot"}},
	{Name: "triglycerides", Keywords: []string{"triglyceride"}},
	{Name: "hemoglobin", Keywords: []string{"hemoglobin", "hgb"}},
	{Name: "creatinine", Keywords: []string{"creatinine"}},
}

// Value is a single extracted reading. Found=false means the metric was
// mentioned but no numeric token could be read off the line, which callers
// can distinguish from a metric that never appeared at all.
type Value struct {
	Number float64
	Found  bool
}

// Set is an ordered mapping from metric name to extracted value. Order is
// insertion order of first match; a Set is built once per request and never
// mutated afterwards.
type Set struct {
	names  []string
	values map[string]Value
}

func newSet() *Set {
	return &Set{values: make(map[string]Value)}
}

// add records a value for name unless one was already seen (first-seen-wins).
func (s *Set) add(name string, v Value) {
	if _, ok := s.values[name]; ok {
		return
	}
	s.names = append(s.names, name)
	s.values[name] = v
}

// Names returns metric names in insertion order of first match.
func (s *Set) Names() []string {
	return s.names
}

func (s *Set) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *Set) Len() int {
	return len(s.names)
}

// MarshalJSON emits an object in insertion order, with null for metrics that
// were mentioned but unreadable.
func (s *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v := s.values[name]
		if v.Found {
			buf.WriteString(strconv.FormatFloat(v.Number, 'f', -1, 64))
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Parser scans extracted report text for recognized metrics. It is stateless
// and safe for concurrent use.
type Parser struct {
	vocab []Metric
}

func NewParser(vocab []Metric) *Parser {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary
	}
	return &Parser{vocab: vocab}
}

// Parse walks the text line by line, case-insensitively. A line matches a
// metric when it contains any of its trigger substrings; the first
// decimal-or-integer token on the line becomes the value. Metrics are
// independent, so one line can satisfy several.
func (p *Parser) Parse(text string) *Set {
	set := newSet()
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		scanned := false
		var num float64
		var numOK bool

		for _, m := range p.vocab {
			if !containsAny(lower, m.Keywords) {
				continue
			}
			if !scanned {
				scanned = true
				if tok := numberRe.FindString(line); tok != "" {
					if parsed, err := strconv.ParseFloat(tok, 64); err == nil {
						num, numOK = parsed, true
					}
				}
			}
			if numOK {
				set.add(m.Name, Value{Number: num, Found: true})
			} else {
				set.add(m.Name, Value{})
			}
		}
	}
	return set
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
