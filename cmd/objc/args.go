package main

import (
	"fmt"
	"strconv"
	"strings"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/dispatch"
	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/introspect"
	"github.com/wippyai/objc-runtime/object"
	"github.com/wippyai/objc-runtime/typeenc"
)

var paramDecoder = typeenc.NewDecoder()

// methodRow is one entry of a resolved method table, ready for display.
type methodRow struct {
	name      string
	selector  string
	signature string
	params    []string
	outError  bool
}

// methodRows lists the instance or class methods of className, sorted by selector.
func methodRows(reg *object.Registry, className string, classSide bool) ([]methodRow, error) {
	rt := reg.Runtime()
	cls := rt.GetClass(className)
	if cls == 0 {
		return nil, errors.ClassNotFound(className)
	}
	if classSide {
		cls = rt.ObjectClass(objc.ID(cls))
	}

	table, err := reg.MethodTable(cls)
	if err != nil {
		return nil, err
	}

	rows := make([]methodRow, 0, len(table))
	for _, sel := range table.Selectors() {
		sig, _ := table.Lookup(sel)
		rows = append(rows, newMethodRow(reg.Engine(), sel, sig))
	}
	return rows, nil
}

func newMethodRow(engine *dispatch.Engine, sel string, sig introspect.Signature) methodRow {
	row := methodRow{
		name:     strings.ReplaceAll(sel, ":", "_"),
		selector: sel,
	}

	explicit := sig.Explicit()
	if params, err := paramDecoder.DecodeAll(explicit); err == nil {
		row.outError = engine.IsOutError(sel, params)
	}
	if row.outError {
		explicit = explicit[:len(explicit)-1]
	}
	for _, enc := range explicit {
		row.params = append(row.params, typeLabel(enc))
	}

	row.signature = "(" + strings.Join(row.params, ", ") + ") -> " + typeLabel(sig.Return)
	if row.outError {
		row.signature += " !error"
	}
	return row
}

// typeLabel renders an encoding for display, keeping undecodable text as-is.
func typeLabel(enc string) string {
	t, err := typeenc.Decode(enc)
	if err != nil {
		return enc + "?"
	}
	return t.String()
}

// invoke resolves method on target and sends it with command-line arguments
// converted to the declared parameter types.
func invoke(reg *object.Registry, target *object.Object, method string, raw []string) (dispatch.Result, error) {
	m, err := target.Method(method)
	if err != nil {
		return dispatch.Result{}, err
	}
	th := m.Thunk()
	if len(raw) != th.Arity() {
		return dispatch.Result{}, errors.ArgumentCount(th.Selector(), th.Arity(), len(raw))
	}

	args := make([]any, len(raw))
	for i, text := range raw {
		if args[i], err = parseArg(reg, text, th.Params()[i]); err != nil {
			return dispatch.Result{}, err
		}
	}
	return m.Call(args...)
}

// parseArg converts command-line text into a value for a parameter of type t.
func parseArg(reg *object.Registry, text string, t *typeenc.Type) (any, error) {
	var (
		v   any
		err error
	)
	switch {
	case t.Kind.IsSigned():
		v, err = strconv.ParseInt(text, 0, 64)
	case t.Kind.IsUnsigned():
		v, err = strconv.ParseUint(text, 0, 64)
	case t.Kind.IsFloat():
		v, err = strconv.ParseFloat(text, 64)
	case t.Kind == typeenc.KindBool:
		v, err = strconv.ParseBool(text)
	case t.Kind == typeenc.KindCString, t.Kind == typeenc.KindSelector:
		return text, nil
	case t.Kind == typeenc.KindObject:
		if text == "nil" {
			return nil, nil
		}
		return text, nil
	case t.Kind == typeenc.KindClass:
		return reg.FromClassName(text)
	default:
		return nil, errors.Unsupported(errors.PhaseCoerce,
			fmt.Sprintf("%s arguments cannot be given on the command line", t))
	}
	if err != nil {
		return nil, errors.New(errors.PhaseCoerce, errors.KindInvalidInput).
			Encoding(t.Encoding).
			Value(text).
			Cause(err).
			Build()
	}
	return v, nil
}

// describe renders a send result value.
func describe(reg *object.Registry, v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case *object.Object:
		if x.Responds("UTF8String") {
			if s, err := reg.ToString(x); err == nil {
				return strconv.Quote(s)
			}
		}
		if x.Responds("localizedDescription") {
			if res, err := x.Call("localizedDescription"); err == nil {
				if s, err := reg.ToString(res.Value); err == nil {
					return x.ClassName() + ": " + s
				}
			}
		}
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}
