// Package dialect knows the diagnostic text shapes of the supported compilers.
//
// Each Kind has a Profile: a Matcher that turns a raw log line into an enter,
// exit or backtrace event, plus the commit and depth policies the tree builder
// applies for that compiler. Evidence and Classifier score the head of a log
// against every matcher so the CLI can pick a dialect when none is given.
package dialect
