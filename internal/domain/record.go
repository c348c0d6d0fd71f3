package domain

// Record is one formatted log entry awaiting dispatch. The text is
// rendered by the caller's formatter before it reaches the intake
// queue; mailbuf treats it as opaque and never mutates it.
type Record string
