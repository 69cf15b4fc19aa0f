package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithTransparentFramebuffer requests a per-pixel transparent framebuffer so
// undrawn overlay pixels show the desktop behind the window.
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTransparentFramebuffer() WindowBuilderOption {
	return func(w *engineWindow) {
		w.transparent = true
	}
}

// WithUndecorated removes the title bar and window borders.
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithUndecorated() WindowBuilderOption {
	return func(w *engineWindow) {
		w.undecorated = true
	}
}

// WithAlwaysOnTop keeps the window above normal windows.
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithAlwaysOnTop() WindowBuilderOption {
	return func(w *engineWindow) {
		w.alwaysOnTop = true
	}
}
