// Package dial starts phone calls and text messages by opening tel: and sms:
// URIs.
//
// Call and Text reject a blank number with ErrMissingNumber before anything
// runs. Display formatting such as spaces, dashes and parentheses is dropped
// from the number.
// The URI is handed to an Opener; CommandOpener runs the platform URL opener
// ("open" on macOS, "xdg-open" elsewhere) or a configured command.
package dial
