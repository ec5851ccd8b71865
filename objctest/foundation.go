package objctest

import (
	"fmt"
	"unicode/utf16"

	objc "github.com/wippyai/objc-runtime"
)

// NSUTF8StringEncoding is the NSStringEncoding value for UTF-8.
const NSUTF8StringEncoding = 4

// ErrorValue is the Go value attached to a simulated NSError.
type ErrorValue struct {
	Domain      string
	Description string
	Code        int64
}

// NewString creates an NSString holding s.
func (r *Runtime) NewString(s string) objc.ID {
	return r.newInstance("NSString", s)
}

// NewError creates an NSError with the given domain, code and description.
func (r *Runtime) NewError(domain string, code int64, description string) objc.ID {
	return r.newInstance("NSError", ErrorValue{Domain: domain, Code: code, Description: description})
}

func (r *Runtime) newInstance(className string, value any) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newObjectLocked(r.classes[className], value)
}

// instantiate allocates an instance of the class whose class object is self.
func (r *Runtime) instantiate(self objc.ID) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byHandle[objc.Class(self)]
	if c == nil || c.isMeta {
		return 0
	}
	return r.newObjectLocked(c, nil)
}

func (r *Runtime) retain(id objc.ID) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.objects[id]; o != nil {
		o.refs++
	}
	return id
}

func (r *Runtime) release(id objc.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.objects[id]; o != nil {
		o.refs--
		o.releases++
	}
}

func (r *Runtime) respondsTo(self objc.ID, sel objc.SEL) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, _ := r.lookupLocked(self, r.selNames[sel])
	return m != nil
}

func (r *Runtime) stringValue(id objc.ID) string {
	s, _ := r.Value(id).(string)
	return s
}

func defineFoundation(r *Runtime) {
	r.DefineClass("NSObject", "").
		ClassMethod("alloc", "@", nil, func(c *Call) any {
			return c.Runtime.instantiate(c.Self)
		}).
		ClassMethod("new", "@", nil, func(c *Call) any {
			return c.Runtime.instantiate(c.Self)
		}).
		ClassMethod("class", "#", nil, func(c *Call) any {
			return c.Class()
		}).
		Method("init", "@", nil, func(c *Call) any {
			return c.Self
		}).
		Method("retain", "@", nil, func(c *Call) any {
			return c.Runtime.retain(c.Self)
		}).
		Method("release", "Vv", nil, func(c *Call) any {
			c.Runtime.release(c.Self)
			return nil
		}).
		Method("retainCount", "Q", nil, func(c *Call) any {
			return c.Runtime.RetainCount(c.Self)
		}).
		Method("class", "#", nil, func(c *Call) any {
			return c.Runtime.ObjectClass(c.Self)
		}).
		Method("respondsToSelector:", "B", []string{":"}, func(c *Call) any {
			sel, _ := c.Args[0].(objc.SEL)
			return c.Runtime.respondsTo(c.Self, sel)
		}).
		Method("description", "@", nil, func(c *Call) any {
			return c.Runtime.NewString(fmt.Sprintf("<%s: 0x%x>", c.Runtime.ObjectClassName(c.Self), uintptr(c.Self)))
		})

	r.DefineClass("NSString", "NSObject").
		ClassMethod("stringWithUTF8String:", "@", []string{"r*"}, func(c *Call) any {
			return c.Runtime.NewString(c.String(0))
		}).
		ClassMethod("string", "@", nil, func(c *Call) any {
			return c.Runtime.NewString("")
		}).
		Method("UTF8String", "r*", nil, func(c *Call) any {
			return c.Runtime.CString(c.Runtime.stringValue(c.Self))
		}).
		Method("length", "Q", nil, func(c *Call) any {
			return len(utf16.Encode([]rune(c.Runtime.stringValue(c.Self))))
		}).
		Method("lengthOfBytesUsingEncoding:", "Q", []string{"Q"}, func(c *Call) any {
			if c.Uint(0) != NSUTF8StringEncoding {
				return 0
			}
			return len(c.Runtime.stringValue(c.Self))
		}).
		Method("stringByAppendingString:", "@", []string{"@"}, func(c *Call) any {
			return c.Runtime.NewString(c.Runtime.stringValue(c.Self) + c.String(0))
		}).
		Method("isEqualToString:", "B", []string{"@"}, func(c *Call) any {
			return c.Runtime.stringValue(c.Self) == c.String(0)
		}).
		Method("description", "@", nil, func(c *Call) any {
			return c.Self
		})

	r.DefineClass("NSError", "NSObject").
		ClassMethod("errorWithDomain:code:userInfo:", "@", []string{"@", "q", "@"}, func(c *Call) any {
			return c.Runtime.NewError(c.String(0), c.Int(1), "")
		}).
		Method("domain", "@", nil, func(c *Call) any {
			ev, _ := c.Runtime.Value(c.Self).(ErrorValue)
			return c.Runtime.NewString(ev.Domain)
		}).
		Method("code", "q", nil, func(c *Call) any {
			ev, _ := c.Runtime.Value(c.Self).(ErrorValue)
			return ev.Code
		}).
		Method("localizedDescription", "@", nil, func(c *Call) any {
			ev, _ := c.Runtime.Value(c.Self).(ErrorValue)
			desc := ev.Description
			if desc == "" {
				desc = fmt.Sprintf("The operation couldn't be completed. (%s error %d.)", ev.Domain, ev.Code)
			}
			return c.Runtime.NewString(desc)
		})

	r.DefineClass("NSArray", "NSObject").
		ClassMethod("arrayWithObjects:count:", "@", []string{"r^@", "Q"}, func(c *Call) any {
			ids := readIDs(c.Pointer(0), int(c.Uint(1)))
			return c.Runtime.newInstance("NSArray", ids)
		}).
		Method("count", "Q", nil, func(c *Call) any {
			ids, _ := c.Runtime.Value(c.Self).([]objc.ID)
			return len(ids)
		}).
		Method("objectAtIndex:", "@", []string{"Q"}, func(c *Call) any {
			ids, _ := c.Runtime.Value(c.Self).([]objc.ID)
			i := c.Uint(0)
			if i >= uint64(len(ids)) {
				panic(fmt.Sprintf("objctest: index %d beyond bounds [0 .. %d]", i, len(ids)))
			}
			return ids[i]
		})
}
