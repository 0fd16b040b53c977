package machine

// callFrame records a user function call so RETURN knows where to resume.
// Orus has no separate locals array (see lang/compiler's DEFINE_GLOBAL
// doc), so a frame carries only the return address and the called
// function's name: parameters and
// function-local `let` bindings live in the shared globals table and need
// no per-frame storage.
type callFrame struct {
	returnPC int
	funcName string
}

// tryFrame is pushed by TRY_PUSH and records everything needed to unwind to
// the handler when a runtime error is raised inside the protected block:
// the handler's entry point, the depth to truncate the operand and call
// stacks to, and the global slot the caught error value is bound to.
type tryFrame struct {
	handlerPC  int
	errSlot    int
	stackDepth int
	callDepth  int
}
