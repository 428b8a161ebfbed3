package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

// Extractor turns one raw detail document into a normalized offer.
type Extractor interface {
	Extract(document string) (*domain.Offer, error)
}

// New returns the extractor for portal p.
func New(p domain.Portal, logger *zap.Logger) (Extractor, error) {
	logger = logger.With(zap.String("portal", p.Key()))
	switch p {
	case domain.Allegro:
		return &allegroExtractor{logger: logger}, nil
	case domain.Olx:
		return &olxExtractor{logger: logger}, nil
	case domain.Otomoto:
		return &otomotoExtractor{logger: logger}, nil
	case domain.AutoScout24:
		return &autoscout24Extractor{logger: logger}, nil
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrUnknownPortal, p)
}

func parse(document string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// labelField binds a markup label to the offer field it fills.
type labelField struct {
	label string
	set   func(o *domain.Offer, v string)
}

// labelTable describes how a portal lays out its parameter list: an element of
// kind labelTag whose text is the label, followed by a sibling matching valueSel.
type labelTable struct {
	labelTag string
	suffix   string
	valueSel string
	fields   []labelField
}

// fill sets every field of the table from container. A missing label or value
// sets the field to domain.Null; transform, when given, rewrites found values.
func (t labelTable) fill(container *goquery.Selection, o *domain.Offer, logger *zap.Logger, transform func(label, value string) string) {
	for _, f := range t.fields {
		value, ok := siblingValue(container, t.labelTag, f.label+t.suffix, t.valueSel)
		if !ok {
			logger.Debug("label not found", zap.String("label", f.label))
			value = domain.Null
		} else if transform != nil {
			value = transform(f.label, value)
		}
		f.set(o, value)
	}
}

// siblingValue finds the innermost labelTag element whose text equals label and
// returns the trimmed text of its next sibling matching valueSel.
func siblingValue(container *goquery.Selection, labelTag, label, valueSel string) (string, bool) {
	matches := func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == label
	}
	anchor := container.Find(labelTag).FilterFunction(func(i int, s *goquery.Selection) bool {
		return matches(i, s) && s.Find(labelTag).FilterFunction(matches).Length() == 0
	}).First()
	if anchor.Length() == 0 {
		return "", false
	}
	value := anchor.NextAllFiltered(valueSel).First()
	if value.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(value.Text()), true
}

// textOr returns the trimmed text of the first match of selector, or domain.Null.
func textOr(doc *goquery.Selection, selector string) string {
	s := doc.Find(selector).First()
	if s.Length() == 0 {
		return domain.Null
	}
	return strings.TrimSpace(s.Text())
}

// scriptContaining returns the text of the first script element for which match holds.
func scriptContaining(doc *goquery.Document, match func(string) bool) (string, bool) {
	var found string
	ok := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := s.Text(); match(text) {
			found, ok = text, true
			return false
		}
		return true
	})
	return found, ok
}

// blob is a JSON object recovered from an embedded script.
type blob map[string]any

// decodeBlob decodes the JSON object starting at the first '{' at or after marker.
// Decoding stops at the object's matching closing brace, so trailing script is ignored.
func decodeBlob(text, marker string) (blob, error) {
	start := strings.Index(text, marker)
	if start < 0 {
		return nil, domain.Structural(fmt.Sprintf("marker %q", marker))
	}
	brace := strings.IndexByte(text[start:], '{')
	if brace < 0 {
		return nil, domain.Structural(fmt.Sprintf("object after %q", marker))
	}

	dec := json.NewDecoder(strings.NewReader(text[start+brace:]))
	dec.UseNumber()
	var b blob
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decoding object after %q: %v", domain.ErrStructural, marker, err)
	}
	return b, nil
}

// get returns the value of key rendered as text.
func (b blob) get(key string) (string, bool) {
	switch v := b[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

// getOr returns the value of key, or domain.Null when absent.
func (b blob) getOr(key string) string {
	if v, ok := b.get(key); ok {
		return v
	}
	return domain.Null
}

// require returns the value of key or a structural error naming it.
func (b blob) require(key string) (string, error) {
	if v, ok := b.get(key); ok && v != "" {
		return v, nil
	}
	return "", domain.Structural(key)
}

func (b blob) object(key string) (blob, bool) {
	m, ok := b[key].(map[string]any)
	return blob(m), ok
}
