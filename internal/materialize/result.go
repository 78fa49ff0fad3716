package materialize

import (
	"errors"
	"fmt"
)

// ErrMaterializationFailed marks output that was expected to be a document
// but did not decode into one.
var ErrMaterializationFailed = errors.New("response is not a valid UI document")

// Kind tags which variant a Result holds.
type Kind int

const (
	KindPlainText Kind = iota
	KindDocument
	KindMaterializationFailed
)

func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "text"
	case KindDocument:
		return "document"
	case KindMaterializationFailed:
		return "materialization_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the interpreted outcome of a generation call.
// Raw always holds the text exactly as the model returned it.
type Result struct {
	Kind     Kind
	Raw      string
	Document *Document
	Err      error
}

// Text wraps raw output that is meant to be displayed as-is.
func Text(raw string) Result {
	return Result{Kind: KindPlainText, Raw: raw}
}

// Structured materializes raw and reports a failure variant, carrying the raw
// text, when no document can be built.
func Structured(raw string) Result {
	doc := Materialize(raw)
	if doc == nil {
		return Result{
			Kind: KindMaterializationFailed,
			Raw:  raw,
			Err:  ErrMaterializationFailed,
		}
	}
	return Result{Kind: KindDocument, Raw: raw, Document: doc}
}

// Failed reports whether the result is the materialization failure variant.
func (r Result) Failed() bool {
	return r.Kind == KindMaterializationFailed
}
