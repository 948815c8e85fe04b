// Package flow defines the shared vocabulary for interactive setup flows.
//
// A flow advances in steps: each non-terminal step emits a [Form] describing
// the input it needs, the host renders it and submits an [Input], and the
// step produces a [Result] that is either another form (possibly annotated
// with field errors), a created record, or an abort with a reason.
//
// The package holds only data types and rendering hints. The state machines
// that drive flows live in pkg/link; the renderer lives with the host
// front end (for the shipped binary, the readline wizard in
// cmd/homeline-cloud/interactive).
package flow
