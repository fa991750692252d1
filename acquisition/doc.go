// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package acquisition runs the periodic sample, convert, compose and present
// cycle.
//
// A Loop owns the sample cell, the framebuffer, the render area and the DMA
// channel. Each cycle walks
//
//	Idle → Converting → AwaitingTransfer → Rendering → Sleeping → Idle
//
// strictly sequentially. A transfer that fails or does not complete within
// Opts.TransferTimeout skips the rest of the cycle, and so does a failed
// presentation. The next cycle starts after the usual interval.
//
// New checks the layout against the Presenter geometry; a mismatch is a
// ConfigurationError, not a failure of every cycle.
package acquisition
