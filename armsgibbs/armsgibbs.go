/*

Armsgibbs draws samples from a built-in density using adaptive
rejection metropolis sampling, optionally as a multi-coordinate gibbs
chain of independent copies.

The basic usage looks like this:

	armsgibbs normal

, this will draw 1000 samples from a standard normal truncated to the
bounds and print them to stdout.

A non-log-concave target needs the metropolis correction:

	armsgibbs -metropolis -lower -6 -upper 6 -init=-3,0,3 mixture

To see all the options run:

	armsgibbs -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat"
	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/arms/checkpoint"
	"bitbucket.org/Davydov/arms/dist"
	"bitbucket.org/Davydov/arms/gibbs"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("armsgibbs")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("armsgibbs", "adaptive rejection metropolis sampler").Version(version)

	// target density
	density = app.Arg("density", "density to sample (normal, mixture, gamma or beta)").Required().String()
	mean    = app.Flag("mean", "mean of the normal density (or the first mixture component)").Default("0").Float64()
	sd      = app.Flag("sd", "standard deviation of the normal density (or the first mixture component)").Default("1").Float64()
	mean2   = app.Flag("mean2", "mean of the second mixture component").Default("3").Float64()
	sd2     = app.Flag("sd2", "standard deviation of the second mixture component").Default("1").Float64()
	weight  = app.Flag("weight", "weight of the first mixture component").Default("0.5").Float64()
	shape   = app.Flag("shape", "shape of the gamma density").Default("2").Float64()
	scale   = app.Flag("scale", "scale of the gamma density").Default("1").Float64()
	betaP   = app.Flag("p", "p of the beta density").Default("2").Float64()
	betaQ   = app.Flag("q", "q of the beta density").Default("2").Float64()

	// sampler parameters
	lower      = app.Flag("lower", "lower bound of the support").Default("-5").Float64()
	upper      = app.Flag("upper", "upper bound of the support").Default("5").Float64()
	initPoints = app.Flag("init", "comma-separated initial abscissas (at least three, strictly inside the bounds)").Default("-1,0,1").String()
	convex     = app.Flag("convex", "adjustment for convexity").Default("0").Float64()
	maxPoints  = app.Flag("maxpoints", "maximum number of envelope points").Default("100").Int()
	metropolis = app.Flag("metropolis", "enable the metropolis correction (for non-log-concave densities)").Bool()

	// chain parameters
	nSweeps = app.Flag("n", "number of sweeps (samples per coordinate)").Default("1000").Int()
	dim     = app.Flag("dim", "number of independent coordinates").Default("1").Int()
	start   = app.Flag("start", "starting value for every coordinate").Default("0").Float64()

	// technical
	seed = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()

	// input/output
	outLogF     = app.Flag("log", "write log to a file").String()
	outF        = app.Flag("out", "write the trajectory to a file").String()
	jsonF       = app.Flag("json", "write json summary to a file").String()
	plotF       = app.Flag("plot", "write a histogram of the first coordinate to a png file").String()
	checkpointF = app.Flag("checkpoint", "checkpoint file").String()
	checkpointT = app.Flag("cptime", "checkpoint interval in seconds").Default("30").Float64()
	logLevel    = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
)

// readFloats converts a comma-separated string into a slice of
// float64.
func readFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	result := make([]float64, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		result = append(result, x)
	}
	return result, nil
}

// getDensityFromString returns a log-density from a string and the
// density parameter flags.
func getDensityFromString(density string) (func(float64) float64, error) {
	switch density {
	case "normal":
		log.Infof("Normal density, mean=%v, sd=%v", *mean, *sd)
		return dist.Normal(*mean, *sd), nil
	case "mixture":
		log.Infof("Normal mixture, w=%v, N(%v, %v^2) and N(%v, %v^2)",
			*weight, *mean, *sd, *mean2, *sd2)
		return dist.NormalMixture(*weight, *mean, *sd, *mean2, *sd2), nil
	case "gamma":
		log.Infof("Gamma density, shape=%v, scale=%v", *shape, *scale)
		return dist.Gamma(*shape, *scale), nil
	case "beta":
		log.Infof("Beta density, p=%v, q=%v", *betaP, *betaQ)
		return dist.Beta(*betaP, *betaQ), nil
	}
	return nil, fmt.Errorf("Unknown density: %s", density)
}

func run() (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{Density: *density}

	lpdf, err := getDensityFromString(*density)
	if err != nil {
		log.Fatal(err)
	}

	xinit, err := readFloats(*initPoints)
	if err != nil {
		log.Fatal("Error parsing initial points:", err)
	}

	if *dim < 1 {
		log.Fatal("Number of coordinates should be at least 1")
	}

	// independent coordinates, the conditional ignores the rest of
	// the state
	conditional := func(state []float64, i int) float64 {
		return lpdf(state[i])
	}

	settings := &gibbs.Settings{
		Lower:      []float64{*lower},
		Upper:      []float64{*upper},
		Initial:    [][]float64{xinit},
		Convex:     []float64{*convex},
		MaxPoints:  []int{*maxPoints},
		Metropolis: []bool{*metropolis},
	}

	startState := make([]float64, *dim)
	for i := range startState {
		startState[i] = *start
	}

	rng := rand.New(rand.NewSource(*seed))
	sampler := gibbs.NewSampler(conditional, rng, startState, settings)

	if *checkpointF != "" {
		db, err := bolt.Open(*checkpointF, 0666, nil)
		if err != nil {
			log.Fatal("Error opening checkpoint file:", err)
		}
		defer db.Close()
		sampler.SetCheckpointIO(checkpoint.NewChainIO(db, []byte("chain"), *checkpointT))
		found, err := sampler.RestoreCheckpoint()
		if err != nil {
			log.Fatal("Error restoring checkpoint:", err)
		}
		if found {
			log.Noticef("Resuming from sweep %d", sampler.Sweep())
		}
	}

	sampler.WatchSignals(os.Interrupt)

	samples, err := sampler.Run(*nSweeps)
	if err != nil {
		log.Fatal(err)
	}

	f := os.Stdout
	if *outF != "" {
		f, err = os.Create(*outF)
		if err != nil {
			log.Fatal("Error creating trajectory file:", err)
		}
		defer f.Close()
	}
	printTrajectory(f, samples)

	n, _ := samples.Dims()
	first := mat64.Col(nil, 0, samples)

	summary.Seed = *seed
	summary.NSweeps = n
	summary.NCoordinates = *dim
	summary.NEvaluations = sampler.NEvaluations()
	summary.Mean = stat.Mean(first, nil)
	summary.SD = stat.StdDev(first, nil)

	log.Noticef("mean=%f, sd=%f, %d evaluations", summary.Mean, summary.SD, summary.NEvaluations)

	if *plotF != "" {
		if err := plotHistogram(first, *plotF); err != nil {
			log.Error("Error plotting histogram:", err)
		}
	}

	endTime := time.Now()

	deltaT := endTime.Sub(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	return
}

// printTrajectory writes the sample matrix as a tab-separated table.
func printTrajectory(f *os.File, samples *mat64.Dense) {
	n, nc := samples.Dims()
	fmt.Fprint(f, "sweep")
	for p := 0; p < nc; p++ {
		fmt.Fprintf(f, "\tx%d", p)
	}
	fmt.Fprintln(f)
	for i := 0; i < n; i++ {
		fmt.Fprint(f, i)
		for p := 0; p < nc; p++ {
			fmt.Fprintf(f, "\t%s", strconv.FormatFloat(samples.At(i, p), 'f', 6, 64))
		}
		fmt.Fprintln(f)
	}
}

// plotHistogram saves a histogram of the draws to a png file.
func plotHistogram(xs []float64, fn string) error {
	p := plot.New()
	p.Title.Text = *density
	h, err := plotter.NewHist(plotter.Values(xs), 40)
	if err != nil {
		return err
	}
	h.Normalize(1)
	p.Add(h)
	return p.Save(4*vg.Inch, 4*vg.Inch, fn)
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "armsgibbs")
	logging.SetLevel(level, "arms")
	logging.SetLevel(level, "gibbs")
	logging.SetLevel(level, "checkpoint")

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	summary := run()
	summary.Version = version
	summary.CommandLine = os.Args

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
