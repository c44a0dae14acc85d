package main

// RunSummary stores summary information of a sampling run.
type RunSummary struct {
	// Version stores armsgibbs version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Density is the name of the sampled density.
	Density string `json:"density"`
	// NSweeps is the number of completed sweeps.
	NSweeps int `json:"nSweeps"`
	// NCoordinates is the dimensionality of the chain.
	NCoordinates int `json:"nCoordinates"`
	// NEvaluations is the total number of log-density evaluations.
	NEvaluations int `json:"nEvaluations"`
	// Mean is the sample mean of the first coordinate.
	Mean float64 `json:"mean"`
	// SD is the sample standard deviation of the first coordinate.
	SD float64 `json:"sd"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
}
