package typeenc

type Kind uint8

const (
	KindVoid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindCString
	KindObject
	KindClass
	KindSelector
	KindUnknown
	KindPointer
	KindStruct
)

var kindNames = [...]string{
	KindVoid:     "void",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindBool:     "bool",
	KindCString:  "cstring",
	KindObject:   "object",
	KindClass:    "class",
	KindSelector: "selector",
	KindUnknown:  "unknown",
	KindPointer:  "pointer",
	KindStruct:   "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsPrimitive reports whether k is encoded by a single character.
func (k Kind) IsPrimitive() bool {
	return k <= KindUnknown
}

func (k Kind) IsSigned() bool {
	return k >= KindInt8 && k <= KindInt64
}

func (k Kind) IsUnsigned() bool {
	return k >= KindUint8 && k <= KindUint64
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsHandle reports whether values of k are foreign handles (object, class, selector).
func (k Kind) IsHandle() bool {
	return k == KindObject || k == KindClass || k == KindSelector
}
