package estimator

import (
	"fmt"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"gonum.org/v1/gonum/stat/distuv"

	"vouchercli/internal/cohort"
)

// InterceptName is the name of the constant column added to every design
// matrix.
const InterceptName = "intercept"

// design is a column major dataset ready for the GLM, with the response
// first and an explicit intercept leading the predictors.
type design struct {
	cols   [][]float64
	names  []string
	yname  string
	xnames []string
	n      int
}

// predictor is one named column of the design matrix
type predictor struct {
	name   string
	values []float64
}

// newDesign assembles a design matrix from the cohort. ycol and xcols name
// cohort columns; extras carry derived columns such as the stage-one fitted
// values. Predictor order is intercept, derived extras, cohort columns, so
// the variable of interest leads its covariates in every model.
func newDesign(students []cohort.Student, ycol string, xcols []string, extras ...predictor) (*design, error) {
	n := len(students)
	if n == 0 {
		return nil, fmt.Errorf("empty design matrix")
	}

	y, err := cohort.Column(students, ycol)
	if err != nil {
		return nil, err
	}

	intercept := make([]float64, n)
	for i := range intercept {
		intercept[i] = 1
	}

	d := &design{
		cols:   [][]float64{y, intercept},
		names:  []string{ycol, InterceptName},
		yname:  ycol,
		xnames: []string{InterceptName},
		n:      n,
	}

	add := func(name string, values []float64) error {
		if len(values) != n {
			return fmt.Errorf("column %s has %d values for %d students", name, len(values), n)
		}
		d.cols = append(d.cols, values)
		d.names = append(d.names, name)
		d.xnames = append(d.xnames, name)
		return nil
	}

	for _, extra := range extras {
		if err := add(extra.name, extra.values); err != nil {
			return nil, err
		}
	}
	for _, col := range xcols {
		values, err := cohort.Column(students, col)
		if err != nil {
			return nil, err
		}
		if err := add(col, values); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// formula renders the design as a human readable model formula
func (d *design) formula() string {
	out := d.yname + " ~"
	for i, x := range d.xnames {
		if i > 0 {
			out += " +"
		}
		out += " " + x
	}
	return out
}

// logitFit is one fitted binomial GLM plus the summary text the underlying
// library renders for it.
type logitFit struct {
	params  []float64
	stderr  []float64
	summary string
}

// fitLogit fits a logistic regression on the design. The solver panics on
// singular designs, so the panic is converted into a FitError here.
func fitLogit(name string, d *design) (fit *logitFit, err error) {
	defer func() {
		if r := recover(); r != nil {
			fit = nil
			err = FitError{Model: name, Reason: fmt.Sprintf("solver panic: %v", r)}
		}
	}()

	dataset := statmodel.NewDataset(d.cols, d.names, d.yname, d.xnames)

	c := glm.DefaultConfig()
	c.Family = glm.NewFamily(glm.BinomialFamily)

	model := glm.NewGLM(dataset, c)
	rslt := model.Fit()

	params := rslt.Params()
	stderr := rslt.StdErr()
	if len(params) != len(d.xnames) || len(stderr) != len(d.xnames) {
		return nil, FitError{Model: name, Reason: fmt.Sprintf("got %d parameters for %d predictors", len(params), len(d.xnames))}
	}
	for i := range params {
		if math.IsNaN(params[i]) || math.IsInf(params[i], 0) {
			return nil, FitError{Model: name, Reason: fmt.Sprintf("parameter %s is not finite, likely perfect separation", d.xnames[i])}
		}
		if math.IsNaN(stderr[i]) || math.IsInf(stderr[i], 0) || stderr[i] <= 0 {
			return nil, FitError{Model: name, Reason: fmt.Sprintf("standard error for %s is unusable (%v)", d.xnames[i], stderr[i])}
		}
	}

	smry := rslt.Summary()
	text := smry.String()
	smry = smry.SetScale(math.Exp, "Parameters are shown as odds ratios")
	text += "\n" + smry.String()

	return &logitFit{
		params:  append([]float64(nil), params...),
		stderr:  append([]float64(nil), stderr...),
		summary: text,
	}, nil
}

// buildModel turns a fit into the coefficient table the report consumes.
// z statistics use the standard normal reference; intervals are two sided at
// the given confidence level.
func buildModel(name string, d *design, fit *logitFit, confidence float64) Model {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	zq := norm.Quantile(1 - (1-confidence)/2)

	coefs := make([]Coefficient, len(fit.params))
	for i := range fit.params {
		est, se := fit.params[i], fit.stderr[i]
		z := est / se
		lower, upper := est-zq*se, est+zq*se

		coefs[i] = Coefficient{
			Name:      d.xnames[i],
			Estimate:  est,
			StdErr:    se,
			Z:         z,
			P:         2 * norm.CDF(-math.Abs(z)),
			Lower:     lower,
			Upper:     upper,
			OddsRatio: OddsRatio(est),
			ORLower:   OddsRatio(lower),
			ORUpper:   OddsRatio(upper),
		}
	}

	return Model{
		Name:         name,
		Formula:      d.formula(),
		N:            d.n,
		Confidence:   confidence,
		Coefficients: coefs,
		libSummary:   fit.summary,
	}
}

// fittedProbabilities applies the inverse logit to the linear predictor of
// every row. With finite parameters and bounded covariates the result is
// strictly inside (0,1); extreme linear predictors can still round to the
// boundary in float64, which callers treat as a failed fit.
func fittedProbabilities(d *design, params []float64) []float64 {
	xcols := make([][]float64, len(d.xnames))
	for j, name := range d.xnames {
		xcols[j] = d.cols[columnIndex(d, name)]
	}

	fitted := make([]float64, d.n)
	for row := 0; row < d.n; row++ {
		var eta float64
		for j := range xcols {
			eta += params[j] * xcols[j][row]
		}
		fitted[row] = 1 / (1 + math.Exp(-eta))
	}
	return fitted
}

func columnIndex(d *design, name string) int {
	for i, n := range d.names {
		if n == name {
			return i
		}
	}
	return -1
}
