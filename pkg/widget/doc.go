// Package widget models the server-described form fields of a dataset: the
// immutable Spec received from the backend, the live Value edited by the
// user, and the Input a control reports when a change is committed.
package widget
