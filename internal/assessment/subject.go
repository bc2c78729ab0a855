package assessment

import (
	"fmt"
	"strings"
)

type Subject string

const (
	SubjectAngular Subject = "ANGULAR"
	SubjectNestJS  Subject = "NESTJS"
	SubjectRxJS    Subject = "RXJS"
)

// AllSubjects is the closed set of known subjects.
var AllSubjects = []Subject{SubjectAngular, SubjectNestJS, SubjectRxJS}

func (s Subject) Valid() bool {
	for _, k := range AllSubjects {
		if s == k {
			return true
		}
	}
	return false
}

func (s Subject) String() string { return string(s) }

// ParseSubject accepts a known subject name, case-insensitively.
func ParseSubject(raw string) (Subject, error) {
	s := Subject(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", invalidInput(fmt.Sprintf("unknown subject %q", raw))
	}
	return s, nil
}

// ParseSubjects parses each value, splitting comma-separated lists.
// Order and duplicates are preserved.
func ParseSubjects(values ...string) ([]Subject, error) {
	out := make([]Subject, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			s, err := ParseSubject(part)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, invalidInput("at least one subject is required")
	}
	return out, nil
}

// SubjectSet restricts which of the known subjects are served.
type SubjectSet map[Subject]struct{}

func NewSubjectSet(subjects ...Subject) SubjectSet {
	set := make(SubjectSet, len(subjects))
	for _, s := range subjects {
		set[s] = struct{}{}
	}
	return set
}

// Check returns an invalid-input error for subjects outside the set.
// A nil set allows every known subject.
func (set SubjectSet) Check(subjects ...Subject) error {
	for _, s := range subjects {
		if !s.Valid() {
			return invalidInput(fmt.Sprintf("unknown subject %q", string(s)))
		}
		if set == nil {
			continue
		}
		if _, ok := set[s]; !ok {
			return invalidInput(fmt.Sprintf("subject %s is not enabled", s))
		}
	}
	return nil
}
