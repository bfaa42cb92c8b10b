package domain

import (
	"fmt"

	"github.com/relaydns/relay-dns/internal/dns/common/utils"
)

// Question represents one entry of a DNS question section.
type Question struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuestion constructs a Question with a canonical name and validates it.
func NewQuestion(name string, rrtype RRType, class RRClass) (Question, error) {
	q := Question{
		Name:  utils.CanonicalDNSName(name),
		Type:  rrtype,
		Class: class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks whether the Question fields are structurally valid.
// Unknown type and class codes are deliberately allowed; they are carried
// through unmodified for transparent relay.
func (q Question) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("question name must not be empty")
	}
	return nil
}

func (q Question) String() string {
	return fmt.Sprintf("%s %s %s", q.Name, q.Class, q.Type)
}
