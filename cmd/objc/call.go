package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/object"
)

var callCmd = &cobra.Command{
	Use:   "call <Class> <method> [args...]",
	Short: "Send a message to a class or a fresh instance",
	Long: `Send a message and print the result. Method names use '_' for ':' so
stringWithUTF8String_ sends stringWithUTF8String:. Arguments are parsed
according to the method's declared parameter types.`,
	Example: `  objc call NSString stringWithUTF8String_ hello
  objc --sim call Greeter sayHello_ world --new`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance, _ := cmd.Flags().GetBool("new")

		target, err := callTarget(current.reg, args[0], instance)
		if err != nil {
			return err
		}

		res, err := invoke(current.reg, target, args[1], args[2:])
		if err != nil {
			return err
		}
		if res.Failed() {
			color.New(color.FgRed).Printf("error: %s\n", describe(current.reg, res.OutError))
			return nil
		}
		fmt.Println(describe(current.reg, res.Value))
		return nil
	},
}

func init() {
	callCmd.Flags().Bool("new", false, "send to a new instance instead of the class")
}

// callTarget returns the class handle, or a +1 instance made with new.
func callTarget(reg *object.Registry, className string, instance bool) (*object.Object, error) {
	cls, err := reg.FromClassName(className)
	if err != nil {
		return nil, err
	}
	if !instance {
		return cls, nil
	}
	defer cls.Release()

	res, err := cls.Call("new")
	if err != nil {
		return nil, err
	}
	obj, ok := object.AsObject(res.Value)
	if !ok {
		return nil, errors.NilHandle(className + " new")
	}
	return obj, nil
}
