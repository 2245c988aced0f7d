package asn1

import "fmt"

// ErrorKind is the closed taxonomy of failures this module and der/x509cert/
// cms report. It is deliberately small and flat so that callers can switch
// on it rather than on error strings.
type ErrorKind int

const (
	SchemaSyntax ErrorKind = iota
	SchemaReference
	Truncated
	UnexpectedTag
	LengthMismatch
	ChoiceNoMatch
	InvalidData
	InvalidCmsObject
	DuplicateValue
	NoData
	ValueNotFound
	NoValue
	InvalidValue
	InvalidIndex
	InvalidState
	Conflict
	MissingAction
	UnknownCmsObject
	UnsupportedCmsObject
	UnknownAlgorithm
	NotImplemented
	OutOfMemory
	Bug
)

func (k ErrorKind) String() string {
	names := [...]string{
		"SchemaSyntax", "SchemaReference", "Truncated", "UnexpectedTag",
		"LengthMismatch", "ChoiceNoMatch", "InvalidData", "InvalidCmsObject",
		"DuplicateValue", "NoData", "ValueNotFound", "NoValue", "InvalidValue",
		"InvalidIndex", "InvalidState", "Conflict", "MissingAction",
		"UnknownCmsObject", "UnsupportedCmsObject", "UnknownAlgorithm",
		"NotImplemented", "OutOfMemory", "Bug",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Error is the single error type returned across asn1/ber/der/x509cert/cms.
// Kind is what callers should switch on; Pos/Src (when non-empty) locate
// the failure in a parsed ASN.1 source the way the teacher's ParseError did.
type Error struct {
	Kind ErrorKind
	Msg  string
	Src  string
	Pos  int
	Err  error
}

func (e *Error) Error() string {
	if e.Src != "" {
		line, col := lineCol(e.Src, e.Pos)
		return fmt.Sprintf("%s: %s (line %d, col %d)", e.Kind, e.Msg, line, col)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, asn1.Error{Kind: X}) work without requiring the
// caller to construct a full Error value with matching Msg/Pos.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func lineCol(src string, pos int) (line, col int) {
	line = 1
	col = 1
	for i := 0; i < pos && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// NewError is a convenience constructor for packages outside asn1 (der,
// x509cert, cms) that share this error taxonomy.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap annotates an underlying error with a Kind.
func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
