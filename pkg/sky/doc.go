// Package sky runs a calibration program over every cell of the grid and
// counts the clouds that form where the program's output is positive.
//
// A survey has two phases. The Evaluator runs the program once per
// coordinate, summing the results into the calibration number and marking
// cells whose result is strictly positive as active. The cloud counter then
// partitions the active cells into maximal groups connected through shared
// faces (6-connectivity).
//
// Evaluation may be split across workers. Cloud counting is always
// sequential because it mutates a shared visited grid.
package sky
