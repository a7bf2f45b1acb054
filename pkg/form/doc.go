// Package form holds the interactive state of a single form: current values,
// validation messages, touched flags and the submitting flag. A Session is
// configured with a Timing strategy that decides when validation feedback
// becomes visible:
//
//   - OnChange validates every change and shows the result immediately.
//   - OnBlur stays silent until a field loses focus for the first time, then
//     revalidates that field on every subsequent change.
//
// Submission validates every field regardless of timing, marks all fields as
// touched and, when the form is clean, hands the values to a Submitter. The
// bundled SimulatedSubmitter only waits a fixed delay.
package form
