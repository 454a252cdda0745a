/*
Package example contains an example use of this library:

/server		a runnable end-session provider with an in-memory application store,
		yaml/env configuration and a handler terminating a cookie based session
*/
package example
