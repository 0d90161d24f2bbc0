package eval

import "errors"

var errDivideByZero = errors.New("division by zero")
