// Package graphicsstate tracks the current transformation matrix while a
// page's drawing operators are walked.
//
// A [Stack] is seeded with a base transform (usually the viewport transform)
// and mirrors the q / Q / cm operators of a content stream:
//
//	st := graphicsstate.NewStack(viewport.Transform)
//	st.Save()                          // q
//	st.Concat(model.Translate(50, 50)) // cm
//	st.Concat(model.Scale(100, 100))   // cm
//	ctm := st.Current()
//	st.Restore()                       // Q
//
// Restoring an empty stack resets the current transform to the base
// instead of failing, so unbalanced streams never abort a walk.
package graphicsstate
