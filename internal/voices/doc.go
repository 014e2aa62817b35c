// Package voices prints the voices a speech backend offers, grouped by
// language, to help pick values for the language profiles.
package voices
