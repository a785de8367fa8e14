package ollama

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Variant classifies which response fields carried the generated text.
// Thinking models (gpt-oss, DeepSeek R1, QwQ) emit a reasoning trace in a
// "thinking" field, sometimes alongside a final "response", sometimes
// instead of it.
type Variant int

const (
	// VariantEmpty means no text was found in any known field.
	VariantEmpty Variant = iota

	// VariantAnswerOnly means only the final answer field carried text.
	VariantAnswerOnly

	// VariantTraceOnly means only the reasoning trace carried text.
	VariantTraceOnly

	// VariantTraceAndAnswer means both fields carried text.
	VariantTraceAndAnswer
)

// TraceSeparator divides the reasoning trace from the final answer when
// both are present.
const TraceSeparator = "\n\n---\n\n"

// fallbackFields is the ordered list of alternative output fields probed
// when neither the answer nor the trace field carries text.
var fallbackFields = []string{"content", "text", "output", "message", "generated_text"}

// Result is one completed generation.
type Result struct {
	Variant  Variant
	Thinking string
	Answer   string

	// Truncated is set when the stop reason indicates the output token
	// limit was reached. The output is still usable, just incomplete.
	Truncated bool

	DoneReason string
	EvalCount  int
	Duration   time.Duration
	RequestID  string
	Raw        json.RawMessage
}

// Output returns the text to present: trace first, then a visible
// separator, then the answer, for whichever parts exist.
func (r *Result) Output() string {
	switch r.Variant {
	case VariantTraceAndAnswer:
		return r.Thinking + TraceSeparator + r.Answer
	case VariantTraceOnly:
		return r.Thinking
	case VariantAnswerOnly:
		return r.Answer
	default:
		return ""
	}
}

// extract pulls generated text and diagnostics out of a raw /api/generate
// response body. It never fails: an unrecognized payload yields an empty
// result with the raw bytes preserved.
func extract(body []byte) *Result {
	result := &Result{
		Raw:        json.RawMessage(body),
		DoneReason: gjson.GetBytes(body, "done_reason").String(),
		EvalCount:  int(gjson.GetBytes(body, "eval_count").Int()),
		Duration:   time.Duration(gjson.GetBytes(body, "total_duration").Int()),
	}
	result.Truncated = result.DoneReason == "length"

	result.Thinking = gjson.GetBytes(body, "thinking").String()
	result.Answer = gjson.GetBytes(body, "response").String()

	switch {
	case result.Thinking != "" && result.Answer != "":
		result.Variant = VariantTraceAndAnswer
	case result.Thinking != "":
		result.Variant = VariantTraceOnly
	case result.Answer != "":
		result.Variant = VariantAnswerOnly
	default:
		// Neither primary field: probe the alternatives some backends use.
		for _, field := range fallbackFields {
			v := gjson.GetBytes(body, field)
			if v.Type == gjson.String && v.String() != "" {
				result.Answer = v.String()
				result.Variant = VariantAnswerOnly
				break
			}
			if v.IsObject() {
				if content := v.Get("content"); content.Type == gjson.String && content.String() != "" {
					result.Answer = content.String()
					result.Variant = VariantAnswerOnly
					break
				}
			}
		}
	}

	return result
}
