// Package interpreter evaluates parsed forms in two steps. Translation turns
// each AST node into a runtime expression without evaluating anything;
// reduction then resolves symbols against the scope chain and dispatches
// calls to builtins, special forms, or functions defined with defun. The
// first error aborts evaluation and carries the call stack at the failure.
package interpreter
