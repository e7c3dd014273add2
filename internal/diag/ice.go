package diag

import "github.com/pkg/errors"

// icePanic wraps the stack-carrying error so RecoverICE can tell an
// internal-compiler-error abort apart from any other panic.
type icePanic struct {
	err error
}

func (p icePanic) Error() string { return p.err.Error() }

// ICE aborts the calling pass on a caller contract violation, such as
// malformed IR reaching a transfer function. The panic value carries a
// stack trace; recover it at a pass-driver boundary with RecoverICE.
func ICE(pass, format string, args ...interface{}) {
	prefixed := append([]interface{}{pass}, args...)
	panic(icePanic{err: errors.Errorf("internal compiler error in %s: "+format, prefixed...)})
}

// RecoverICE inspects a recover() value. An ICE panic is returned as its
// error; nil stays nil; anything else resumes panicking.
//
//	defer func() {
//		if err, ok := diag.RecoverICE(recover()); ok {
//			// report err
//		}
//	}()
func RecoverICE(r interface{}) (error, bool) {
	if r == nil {
		return nil, false
	}
	if p, ok := r.(icePanic); ok {
		return p.err, true
	}
	panic(r)
}
