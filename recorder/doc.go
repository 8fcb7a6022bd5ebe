/*
Package recorder implements live automation recording: it captures the
changes a user makes to parameters while the transport is playing and commits
them to the parameters' automation curves.

The Manager owns one recording session per parameter. A session is opened
(punch-in) by the first change of a parameter whose mode records, buffers the
following changes, and is drained into the curve periodically by the
FlushScheduler. When the transport has looped since the previous flush, the
buffer is split at the loop seam: the part before the wrap is written up to
the loop end, the part after the wrap from the loop start. At punch-out the
remaining buffer is flushed, the curve glides back into the automation that
was there before the recording, and the recorded ranges are simplified.

None of the operations return errors: when a precondition is not met (no
open session, deleted parameter, empty range), the operation does nothing.
Losing a fragment of a gesture is acceptable, corrupting a curve is not.

All mutation goes through the Manager's lock, so the entry points can be
called from the control loop, the scheduler, timers and input goroutines.
Control inputs (MIDI, OSC) are usually funneled through a Broker to a single
control goroutine running RunControlLoop.
*/
package recorder
