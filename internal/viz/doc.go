// Package viz renders the arm in the terminal with Bubble Tea.
//
//   - [Model]: live playback of a [playback.Controller], with the arm drawn
//     as a braille wireframe, per-joint torque bars and a torque graph
//   - [Picker]: preset menu that launches a [Model]
//   - [Canvas]: braille sub-pixel canvas
//
// # Key Bindings
//
//	Space - Start/stop continuous random moves
//	Tab   - Select joint for the torque graph
//	x/y   - Orbit the camera
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
