package value

// Kind is the JSON-level class of a value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindTime
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "composite"
	}
}

// Scalar classifies v and normalizes scalars: numbers become int64,
// uint64 or float64, named string and bool types their base type.
// Strings are NFC normalized.
// Composites and times are returned unchanged.
func Scalar(v any) (Kind, any) {
	if isNil(v) {
		return KindNull, nil
	}
	if n, ok := asNumber(v); ok {
		switch n.kind {
		case numInt:
			return KindNumber, n.i
		case numUint:
			return KindNumber, n.u
		default:
			return KindNumber, n.f
		}
	}
	if s, ok := asString(v); ok {
		return KindString, NFC(s)
	}
	if b, ok := asBool(v); ok {
		return KindBool, b
	}
	if _, ok := asTime(v); ok {
		return KindTime, v
	}
	return KindComposite, v
}
