// Package audit provides the asynchronous audit pipeline for session
// lifecycle events: a small event model, pluggable sinks, and a buffered
// dispatcher that decouples sink latency from login, verification, and
// refresh paths.
package audit
