// Package typeenc decodes Objective-C type encodings into type descriptors.
//
// The runtime describes every method return and argument with a compact
// encoding string: "i" for int, "@" for an object, "^d" for a pointer to
// double, "r*" for a const C string, "{CGRect=...}" for a struct. Decode turns
// one such unit into a *Type, which also knows the Go type used to pass the
// value through a dynamic send.
//
// # Supported Forms
//
//   - Primitives: c s i l q C S I L Q f d B v * @ # : ?
//   - Pointers: ^T, nested to any depth
//   - Qualifiers: r n N o O R V (dropped)
//   - Structs: {Name=...} (opaque, fields are not decoded)
//
// Anything else (unions, arrays, bitfields, blocks) is a decode error.
package typeenc
