package billing

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/crm/backend/internal/domain/shared"
)

// MaxSequence is the largest sequence value that fits the 6-digit format
const MaxSequence int64 = 999999

// DocumentKind identifies a numbered document family
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindQuote   DocumentKind = "quote"
)

var numberPatterns = map[DocumentKind]*regexp.Regexp{
	KindInvoice: regexp.MustCompile(`INV-(\d+)`),
	KindQuote:   regexp.MustCompile(`QUO-(\d+)`),
}

// IsValid checks if the kind is known
func (k DocumentKind) IsValid() bool {
	_, ok := numberPatterns[k]
	return ok
}

// Prefix returns the number prefix for the kind
func (k DocumentKind) Prefix() string {
	switch k {
	case KindInvoice:
		return "INV"
	case KindQuote:
		return "QUO"
	}
	return ""
}

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// FormatNumber renders seq as PREFIX-NNNNNN
func FormatNumber(kind DocumentKind, seq int64) (string, error) {
	if !kind.IsValid() {
		return "", shared.NewDomainError("INVALID_DOCUMENT_KIND", fmt.Sprintf("Unknown document kind %q", kind))
	}
	if seq < 1 {
		return "", shared.NewDomainError("INVALID_SEQUENCE", "Sequence value must be positive")
	}
	if seq > MaxSequence {
		return "", shared.ErrSequenceExhausted
	}
	return fmt.Sprintf("%s-%06d", kind.Prefix(), seq), nil
}

// ParseSequence extracts the numeric suffix of a document number.
// Numbers that do not match the kind's pattern yield 0.
func ParseSequence(kind DocumentKind, number string) int64 {
	re, ok := numberPatterns[kind]
	if !ok {
		return 0
	}
	m := re.FindStringSubmatch(number)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// HighestSequence returns the largest parsed suffix among numbers
func HighestSequence(kind DocumentKind, numbers []string) int64 {
	var highest int64
	for _, n := range numbers {
		if v := ParseSequence(kind, n); v > highest {
			highest = v
		}
	}
	return highest
}
