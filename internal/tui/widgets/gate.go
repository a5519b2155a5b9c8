// ABOUTME: Structural gate that shows or hides a rendered subtree
// ABOUTME: Callers pass an already-computed permission, the gate never checks roles itself

package widgets

// VisibleIf returns render() when cond holds and an empty string otherwise.
// render is not called when the subtree is hidden.
func VisibleIf(cond bool, render func() string) string {
	if !cond || render == nil {
		return ""
	}
	return render()
}
