package actor

import (
	"reflect"
	"sync"
)

type msgTyper interface{ MsgType() string }

var msgTypeCache sync.Map // reflect.Type -> string

// msgTypeOf names a message for metrics and logs. Messages may override the
// reflected name by implementing MsgType() string.
func msgTypeOf(x any) string {
	if mt, ok := x.(msgTyper); ok {
		return mt.MsgType()
	}
	t := reflect.TypeOf(x)
	if t == nil {
		return "<nil>"
	}
	if n, ok := msgTypeCache.Load(t); ok {
		return n.(string)
	}

	et := t
	if et.Kind() == reflect.Pointer {
		et = et.Elem()
	}
	name := et.String()
	if et.Name() != "" && et.PkgPath() != "" {
		name = et.PkgPath() + "." + et.Name()
	}
	msgTypeCache.Store(t, name)
	return name
}
