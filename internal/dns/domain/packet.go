package domain

import "fmt"

// Packet is a structured DNS message: header plus the question and answer
// sections. Authority and additional sections are counted in the header but
// not carried; this server neither populates nor relays them.
type Packet struct {
	Header    Header
	Questions []Question
	Answers   []Record
}

// Validate checks that the header section counts agree with the entries
// actually present. The wire encoder trusts the counts and indexes up to
// them, so a mismatch is a construction error, caught here.
func (p Packet) Validate() error {
	if int(p.Header.QuestionCount) != len(p.Questions) {
		return fmt.Errorf("header declares %d questions, packet holds %d", p.Header.QuestionCount, len(p.Questions))
	}
	if int(p.Header.AnswerCount) != len(p.Answers) {
		return fmt.Errorf("header declares %d answers, packet holds %d", p.Header.AnswerCount, len(p.Answers))
	}
	return nil
}
