// Package viz provides terminal visualization for stored and fresh runs.
//
// [Replay] is a Bubble Tea model that plays a run back sample by sample,
// redrawing the velocity chart as it goes.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first sample
//	+/-   - Change playback speed
//	←/→   - Step one sample while paused
//	Q     - Quit
package viz
