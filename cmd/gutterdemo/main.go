// Gutterdemo shows a file in a text view with a line number gutter.
//
// The gutter can be driven from outside through the 9P service named
// by --service and follows file:line messages on the plumber's edit
// port.
package main

func main() {
	Execute()
}
