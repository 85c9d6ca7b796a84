package topic

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type policyKind int

const (
	ignorePolicy policyKind = iota
	retryPolicy
	failPolicy
)

// Policy tells an Ensurer what to do when a topic cannot be created.
// The zero Policy is Ignore.
type Policy struct {
	kind    policyKind
	retries int
}

// Ignore logs the failure, registers the topic as if it had been
// created and carries on.
func Ignore() Policy {
	return Policy{kind: ignorePolicy}
}

// Retry tries creating the topic n more times, waiting an exponentially
// growing delay between attempts. When all attempts fail it behaves like
// Fail.
func Retry(n int) Policy {
	if n < 0 {
		n = 0
	}
	return Policy{kind: retryPolicy, retries: n}
}

// Fail returns the creation error and leaves the topic unregistered, so
// that the next attempt to ensure it goes to the cluster again.
func Fail() Policy {
	return Policy{kind: failPolicy}
}

// ParsePolicy parses the String form of a Policy: "ignore", "fail" or
// "retry:<n>".
func ParsePolicy(s string) (Policy, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); {
	case s == "" || s == "ignore":
		return Ignore(), nil
	case s == "fail":
		return Fail(), nil
	case strings.HasPrefix(s, "retry:"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "retry:"))
		if err != nil || n < 0 {
			return Policy{}, errors.Errorf("invalid retry count in policy %q", s)
		}
		return Retry(n), nil
	}
	return Policy{}, errors.Errorf("unknown create failure policy %q", s)
}

// attempts returns how many times creation is tried.
func (p Policy) attempts() int {
	if p.kind == retryPolicy {
		return p.retries + 1
	}
	return 1
}

func (p Policy) String() string {
	switch p.kind {
	case retryPolicy:
		return "retry:" + strconv.Itoa(p.retries)
	case failPolicy:
		return "fail"
	}
	return "ignore"
}
