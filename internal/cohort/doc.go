// Package cohort loads and summarizes the school voucher lottery cohort.
//
// The package owns the data side of the study: the Student record, strict
// CSV loading, per-row validation, describe-style summary tables and the
// lottery/aid compliance cross-tab. Estimation lives in internal/estimator
// and consumes the types defined here.
//
// # Input Format
//
// Cohort files are CSV with one row per student and a header naming these
// columns (order does not matter, extra columns are ignored):
//
//   - student_id: positive unique integer
//   - won_lottery: 1 if the student won a voucher in the lottery
//   - sex: 1 = male, 0 = female
//   - age: age in years at the time of the lottery
//   - finished_grade: 1 if the student finished 8th grade
//   - used_fin_aid: 1 if the student actually used financial aid
//
// Loading is strict. The first malformed value, out-of-domain field or
// duplicate student id aborts the load with the offending row number, so a
// successful Load means every downstream estimator sees clean data.
//
// # Usage
//
//	students, err := cohort.Load("data/cohort.csv", slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	overall, err := cohort.Describe("all students", students)
//	noAid, aid, err := cohort.DescribeBy(students, cohort.Student.Treated,
//	    "did not use aid", "used aid")
//
//	table := cohort.Compliance(students)
//	fmt.Printf("take-up gap: %.3f\n", table.TakeupGap())
package cohort
