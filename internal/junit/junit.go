// Package junit extracts per-test outcomes from JUnit-style XML reports.
//
// Only <testcase> elements matter; they are found at any depth, so both a
// bare <testsuite> root and nested <testsuites> documents are accepted. The
// order of results is document order.
package junit

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mirror/internal/model"
)

// MalformedReportError means the report could not be turned into
// well-formed (test, outcome) pairs.
type MalformedReportError struct {
	Path string
	Err  error
}

func (e *MalformedReportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed test report: %v", e.Err)
	}
	return fmt.Sprintf("malformed test report %s: %v", e.Path, e.Err)
}

func (e *MalformedReportError) Unwrap() error { return e.Err }

// Property is a <property name=".." value=".."/> attached to a testcase.
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Result is one parsed testcase.
type Result struct {
	ID         model.TestID
	ClassName  string
	Name       string
	Outcome    model.Outcome
	Time       string
	Message    string // failure or error message, if any
	Properties []Property
}

// Pair returns the (id, outcome) observation for the history store.
func (r Result) Pair() model.Pair {
	return model.Pair{ID: r.ID, Outcome: r.Outcome}
}

// PropertyValues returns every value of the named property, in order.
func (r Result) PropertyValues(name string) []string {
	var out []string
	for _, p := range r.Properties {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}

type xmlTestcase struct {
	ClassName  string     `xml:"classname,attr"`
	Name       string     `xml:"name,attr"`
	Time       string     `xml:"time,attr"`
	Failure    *xmlIssue  `xml:"failure"`
	Error      *xmlIssue  `xml:"error"`
	Skipped    *xmlIssue  `xml:"skipped"`
	Properties []Property `xml:"properties>property"`
}

type xmlIssue struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// ParseFile opens and parses the report at path.
func ParseFile(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MalformedReportError{Path: path, Err: err}
	}
	defer f.Close()

	results, err := Parse(f)
	if err != nil {
		var mre *MalformedReportError
		if errors.As(err, &mre) {
			mre.Path = path
		}
		return nil, err
	}
	return results, nil
}

// Parse reads a JUnit XML document from r.
func Parse(r io.Reader) ([]Result, error) {
	dec := xml.NewDecoder(r)
	var (
		results []Result
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedReportError{Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			sawRoot = true
			if n := start.Name.Local; n != "testsuites" && n != "testsuite" && n != "testcase" {
				return nil, &MalformedReportError{Err: fmt.Errorf("unexpected root element <%s>", n)}
			}
		}
		if start.Name.Local != "testcase" {
			continue
		}
		var tc xmlTestcase
		if err := dec.DecodeElement(&tc, &start); err != nil {
			return nil, &MalformedReportError{Err: err}
		}
		if strings.TrimSpace(tc.Name) == "" {
			return nil, &MalformedReportError{Err: fmt.Errorf("testcase #%d in class %q has no name", len(results)+1, tc.ClassName)}
		}
		results = append(results, toResult(tc))
	}
	if !sawRoot {
		return nil, &MalformedReportError{Err: errors.New("empty document")}
	}
	return results, nil
}

// Pairs flattens results into history observations, preserving order.
func Pairs(results []Result) []model.Pair {
	out := make([]model.Pair, len(results))
	for i, r := range results {
		out[i] = r.Pair()
	}
	return out
}

func toResult(tc xmlTestcase) Result {
	r := Result{
		ID:         model.TestID(tc.ClassName + "." + tc.Name),
		ClassName:  tc.ClassName,
		Name:       tc.Name,
		Time:       tc.Time,
		Properties: tc.Properties,
	}
	// failure wins over error, error over skipped.
	switch {
	case tc.Failure != nil:
		r.Outcome = model.OutcomeFail
		r.Message = tc.Failure.text()
	case tc.Error != nil:
		r.Outcome = model.OutcomeError
		r.Message = tc.Error.text()
	case tc.Skipped != nil:
		r.Outcome = model.OutcomeSkip
		r.Message = tc.Skipped.text()
	default:
		r.Outcome = model.OutcomePass
	}
	return r
}

func (i *xmlIssue) text() string {
	if i.Message != "" {
		return i.Message
	}
	return strings.TrimSpace(i.Body)
}
