package objctest

import (
	"strings"

	objc "github.com/wippyai/objc-runtime"
)

// GreeterErrorDomain is the NSError domain used by Greeter failures.
const GreeterErrorDomain = "GreeterErrorDomain"

// Demo defines the Greeter family on r:
//
//	Greeter : NSObject
//	  +greeterWithName:            (@ <- @)
//	  -sayHello:                   (* <- *)   echoes its argument
//	  -name / -setName:            (@ / v <- @)
//	  -doThing:withValue:          (q <- @, q) string length plus value
//	  -loadData:error:             (@ <- @, ^@) fails on empty input
//	LoudGreeter : Greeter
//	  -sayHello:                   upper-cases the echo
func Demo(r *Runtime) {
	r.DefineClass("Greeter", "NSObject").
		ClassMethod("greeterWithName:", "@", []string{"@"}, func(c *Call) any {
			id := c.Runtime.instantiate(c.Self)
			c.Runtime.SetValue(id, c.Runtime.NewString(c.String(0)))
			return id
		}).
		Method("sayHello:", "*", []string{"*"}, func(c *Call) any {
			return c.Runtime.CString(c.String(0))
		}).
		Method("name", "@", nil, func(c *Call) any {
			id, _ := c.Runtime.Value(c.Self).(objc.ID)
			return id
		}).
		Method("setName:", "v", []string{"@"}, func(c *Call) any {
			c.Runtime.SetValue(c.Self, c.ID(0))
			return nil
		}).
		Method("doThing:withValue:", "q", []string{"@", "q"}, func(c *Call) any {
			return int64(len(c.String(0))) + c.Int(1)
		}).
		Method("loadData:error:", "@", []string{"@", "^@"}, func(c *Call) any {
			data := c.String(0)
			if data == "" {
				c.SetOutError(1, c.Runtime.NewError(GreeterErrorDomain, 1, "no data"))
				return nil
			}
			return c.Runtime.NewString("loaded:" + data)
		})

	r.DefineClass("LoudGreeter", "Greeter").
		Method("sayHello:", "*", []string{"*"}, func(c *Call) any {
			return c.Runtime.CString(strings.ToUpper(c.String(0)))
		})
}
