// Package main provides the gosolve command line.
//
// gosolve serves the solver over HTTP and solves input from the command
// line.
//
// Usage:
//
//	gosolve serve --listen :5000
//	gosolve solve "x**2 - 4 = 0" "(2)#x = 3"
//	gosolve solve --system "x + y = 5" "x - y = 1"
//	gosolve normalize "2(3)#x"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
